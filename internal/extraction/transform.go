package extraction

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
)

// modelPlaceholder fills in when a model candidate carries an empty
// description.
const modelPlaceholder = "Imported transaction"

// carveJSON extracts the first balanced JSON value opening with the given
// bracket from free-form model output. Models occasionally wrap replies in
// prose or code fences despite instructions; bracket matching (string- and
// escape-aware) recovers the JSON without trusting the surrounding text.
// Returns ok=false when no balanced value is present.
func carveJSON(s string, open, closing byte) (string, bool) {
	start := strings.IndexByte(s, open)
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}

// carveJSONArray pulls the first JSON array out of a model reply.
func carveJSONArray(s string) (string, bool) {
	return carveJSON(s, '[', ']')
}

// carveJSONObject pulls the first JSON object out of a model reply.
func carveJSONObject(s string) (string, bool) {
	return carveJSON(s, '{', '}')
}

// candidateToDraft validates one untyped model candidate and builds a typed
// draft from it. Field presence and types are never trusted implicitly:
// every check here guards an invariant the rest of the system relies on.
// fallbackDate, when non-nil, substitutes for a missing or unparseable
// date (the receipt path's "default to today"); otherwise such candidates
// are rejected.
func candidateToDraft(item interface{}, provenance Provenance, fallbackDate *civil.Date) (TransactionDraft, error) {
	obj, ok := item.(map[string]interface{})
	if !ok {
		return TransactionDraft{}, fmt.Errorf("candidate is %T, want object", item)
	}

	kindStr, err := stringField(obj, "type")
	if err != nil {
		return TransactionDraft{}, err
	}
	kind := Kind(strings.ToLower(strings.TrimSpace(kindStr)))
	if !kind.Valid() {
		return TransactionDraft{}, fmt.Errorf("field \"type\" is %q, want income or expense", kindStr)
	}

	amount, err := amountField(obj, "amount")
	if err != nil {
		return TransactionDraft{}, err
	}
	if amount <= 0 {
		return TransactionDraft{}, fmt.Errorf("field \"amount\" is %v, want positive", amount)
	}

	category, err := stringField(obj, "category")
	if err != nil {
		return TransactionDraft{}, err
	}

	description, err := stringField(obj, "description")
	if err != nil {
		return TransactionDraft{}, err
	}
	description = strings.TrimSpace(description)
	if description == "" {
		description = modelPlaceholder
	}

	date, err := dateField(obj, "date")
	if err != nil {
		if fallbackDate == nil {
			return TransactionDraft{}, err
		}
		date = *fallbackDate
	}

	return TransactionDraft{
		Kind:        kind,
		Amount:      amount,
		Category:    NormalizeCategory(category),
		Description: description,
		OccurredOn:  date,
		Provenance:  provenance,
	}, nil
}

// decodeCandidates parses a carved JSON array and validates each element,
// dropping invalid candidates individually rather than rejecting the batch.
// Rejections are reported back so the caller can log them.
func decodeCandidates(raw string, provenance Provenance) ([]TransactionDraft, []error) {
	var items []interface{}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, []error{fmt.Errorf("unmarshal candidates: %w", err)}
	}

	drafts := make([]TransactionDraft, 0, len(items))
	var rejected []error

	for i, item := range items {
		draft, err := candidateToDraft(item, provenance, nil)
		if err != nil {
			rejected = append(rejected, fmt.Errorf("candidate %d: %w", i, err))
			continue
		}
		drafts = append(drafts, draft)
	}

	return drafts, rejected
}

func stringField(m map[string]interface{}, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", fmt.Errorf("missing required field %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
	return s, nil
}

// amountField coerces the amount to float64. JSON numbers are the normal
// case; quoted numbers show up often enough in model output to accept.
func amountField(m map[string]interface{}, key string) (float64, error) {
	v, ok := m[key]
	if !ok {
		return 0, fmt.Errorf("missing required field %q", key)
	}
	switch val := v.(type) {
	case float64:
		return val, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, fmt.Errorf("field %q is %q, want number", key, val)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("field %q has type %T, want number", key, v)
	}
}

// dateField parses a required "YYYY-MM-DD" date field.
func dateField(m map[string]interface{}, key string) (civil.Date, error) {
	s, err := stringField(m, key)
	if err != nil {
		return civil.Date{}, err
	}
	d, err := civil.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return civil.Date{}, fmt.Errorf("field %q is %q, want YYYY-MM-DD", key, s)
	}
	return d, nil
}
