package extraction

import "strings"

// CategoryOther is the fallback label used whenever a category cannot be
// resolved against the fixed set.
const CategoryOther = "Other"

// Categories is the fixed, closed set of allowed category labels. The model
// prompt is constrained to this set and everything it returns is validated
// against it; the heuristic path always uses CategoryOther.
var Categories = []string{
	"Food",
	"Transportation",
	"Shopping",
	"Bills",
	"Entertainment",
	"Healthcare",
	"Education",
	"Investment",
	"Salary",
	"Business",
	CategoryOther,
}

var categoryIndex = func() map[string]string {
	m := make(map[string]string, len(Categories))
	for _, c := range Categories {
		m[strings.ToLower(c)] = c
	}
	return m
}()

// NormalizeCategory maps a raw category string onto the fixed label set.
// Matching is case-insensitive with whitespace trimmed; anything outside the
// set collapses to CategoryOther.
func NormalizeCategory(raw string) string {
	if c, ok := categoryIndex[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return c
	}
	return CategoryOther
}
