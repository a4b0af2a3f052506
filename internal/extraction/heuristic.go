package extraction

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
)

// dateTokenRe matches D/M/Y and D-M-Y tokens with a 2- or 4-digit year.
var dateTokenRe = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})\b`)

// amountTokenRe matches amounts with optional thousands separators and
// exactly two decimal places, e.g. "45.50" or "1,234.56".
var amountTokenRe = regexp.MustCompile(`\b(?:\d{1,3}(?:,\d{3})+|\d+)\.\d{2}\b`)

// expenseKeywords classify a line as money out when any of them appears in
// its lowercased text.
var expenseKeywords = []string{"debit", "dr", "withdrawal"}

// descriptionCleanRe collapses everything non-alphanumeric to spaces.
var descriptionCleanRe = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// HeuristicParser is the deterministic, rule-based extraction path. It has
// no external dependencies and never fails: lines that don't look like
// transactions are skipped, and zero matches yield an empty batch.
type HeuristicParser struct {
	log zerolog.Logger
}

// NewHeuristicParser creates a heuristic parser that logs through the given
// logger.
func NewHeuristicParser(log zerolog.Logger) *HeuristicParser {
	return &HeuristicParser{log: log}
}

// Parse scans line-oriented statement text for date/amount pairs and emits
// provisional drafts in input order, capped at 20. Parsing is pure: the same
// text always yields the same sequence.
func (p *HeuristicParser) Parse(text string) []TransactionDraft {
	drafts := make([]TransactionDraft, 0, maxHeuristicDrafts)

	for _, line := range strings.Split(text, "\n") {
		if len(drafts) >= maxHeuristicDrafts {
			break
		}

		draft, ok := parseLine(line)
		if !ok {
			continue
		}
		drafts = append(drafts, draft)
	}

	p.log.Debug().
		Int("drafts", len(drafts)).
		Msg("heuristic parse complete")

	return drafts
}

// parseLine extracts one provisional draft from a single statement line.
// It returns ok=false when the line lacks a date token, lacks an amount
// token, carries an amount at or under the noise threshold, or has an
// invalid calendar date.
func parseLine(line string) (TransactionDraft, bool) {
	dateTok := dateTokenRe.FindString(line)
	if dateTok == "" {
		return TransactionDraft{}, false
	}

	amountTok := amountTokenRe.FindString(line)
	if amountTok == "" {
		return TransactionDraft{}, false
	}

	amount, err := strconv.ParseFloat(strings.ReplaceAll(amountTok, ",", ""), 64)
	if err != nil || amount <= minHeuristicAmount {
		return TransactionDraft{}, false
	}

	date, ok := parseDayFirstDate(dateTok)
	if !ok {
		return TransactionDraft{}, false
	}

	kind := KindIncome
	lower := strings.ToLower(line)
	for _, kw := range expenseKeywords {
		if strings.Contains(lower, kw) {
			kind = KindExpense
			break
		}
	}

	return TransactionDraft{
		Kind:        kind,
		Amount:      amount,
		Category:    CategoryOther,
		Description: cleanDescription(line, dateTok, amountTok),
		OccurredOn:  date,
		Provenance:  ProvenanceHeuristicPDF,
	}, true
}

// parseDayFirstDate parses a D/M/Y or D-M-Y token. Two-digit years map into
// the 2000s. Impossible calendar dates are rejected.
func parseDayFirstDate(token string) (civil.Date, bool) {
	m := dateTokenRe.FindStringSubmatch(token)
	if m == nil {
		return civil.Date{}, false
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if year < 100 {
		year += 2000
	}

	date := civil.Date{Year: year, Month: time.Month(month), Day: day}
	if !date.IsValid() {
		return civil.Date{}, false
	}
	return date, true
}

// cleanDescription derives the free-text description from a matched line:
// the date and amount substrings are removed, the remainder is reduced to
// space-separated alphanumerics and capped, and an empty result falls back
// to a fixed placeholder.
func cleanDescription(line, dateTok, amountTok string) string {
	s := strings.Replace(line, dateTok, " ", 1)
	s = strings.Replace(s, amountTok, " ", 1)
	s = descriptionCleanRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	if len(s) > maxDescriptionLen {
		s = strings.TrimSpace(s[:maxDescriptionLen])
	}
	if s == "" {
		return heuristicPlaceholder
	}
	return s
}
