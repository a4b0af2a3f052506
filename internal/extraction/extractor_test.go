package extraction

import (
	"context"
	"errors"
	"math"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
)

// newHeuristicOnlyExtractor builds an orchestrator with no model configured.
func newHeuristicOnlyExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := New(context.Background(), Config{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return e
}

// newModelBackedExtractor builds an orchestrator whose AI path talks to the
// given fake instead of a real client.
func newModelBackedExtractor(model ModelClient) *Extractor {
	return &Extractor{
		ai:        newTestAIExtractor(model),
		heuristic: NewHeuristicParser(zerolog.Nop()),
		log:       zerolog.Nop(),
	}
}

func TestExtractor_HeuristicFallback(t *testing.T) {
	e := newHeuristicOnlyExtractor(t)

	drafts := e.ExtractFromDocumentText(context.Background(), "12/07/2024 Debit Card Purchase 45.50")
	if len(drafts) != 1 {
		t.Fatalf("got %d drafts, want 1", len(drafts))
	}
	if drafts[0].Provenance != ProvenanceHeuristicPDF {
		t.Errorf("Provenance = %q, want %q", drafts[0].Provenance, ProvenanceHeuristicPDF)
	}
}

func TestExtractor_AISupersedesHeuristic(t *testing.T) {
	// The statement text would also match the heuristic parser; with a
	// model configured, only the AI result must come back.
	model := &fakeModel{
		reply: `[{"type":"expense","amount":50.25,"category":"Food","description":"Restaurant ABC","date":"2024-01-15"}]`,
	}
	e := newModelBackedExtractor(model)

	drafts := e.ExtractFromDocumentText(context.Background(), "12/07/2024 Debit Card Purchase 45.50")
	if len(drafts) != 1 {
		t.Fatalf("got %d drafts, want 1", len(drafts))
	}
	if drafts[0].Provenance != ProvenanceAIPDF {
		t.Errorf("Provenance = %q, want %q", drafts[0].Provenance, ProvenanceAIPDF)
	}
	if drafts[0].Description != "Restaurant ABC" {
		t.Errorf("Description = %q, want the model's draft", drafts[0].Description)
	}
}

func TestExtractor_ImageRequiresModel(t *testing.T) {
	e := newHeuristicOnlyExtractor(t)

	_, err := e.ExtractFromImage(context.Background(), []byte{1, 2, 3}, "image/jpeg")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestExtractor_ImageMediaTypeChecked(t *testing.T) {
	model := &fakeModel{reply: `{}`}
	e := newModelBackedExtractor(model)

	_, err := e.ExtractFromImage(context.Background(), []byte{1, 2, 3}, "application/zip")
	if !errors.Is(err, ErrUnsupportedMediaType) {
		t.Errorf("err = %v, want ErrUnsupportedMediaType", err)
	}
}

func TestExtractor_ExtractFromDocument_Image(t *testing.T) {
	model := &fakeModel{
		reply: `{"type":"expense","amount":23.40,"category":"Food","description":"Corner Cafe","date":"2024-05-12"}`,
	}
	e := newModelBackedExtractor(model)

	drafts, err := e.ExtractFromDocument(context.Background(), []byte{0xFF, 0xD8}, "image/jpeg")
	if err != nil {
		t.Fatalf("ExtractFromDocument failed: %v", err)
	}
	if len(drafts) != 1 {
		t.Fatalf("got %d drafts, want 1", len(drafts))
	}
	if drafts[0].Provenance != ProvenanceAIImage {
		t.Errorf("Provenance = %q, want %q", drafts[0].Provenance, ProvenanceAIImage)
	}
}

func TestExtractor_ExtractFromDocument_ImageNoResult(t *testing.T) {
	model := &fakeModel{reply: "not a receipt"}
	e := newModelBackedExtractor(model)

	drafts, err := e.ExtractFromDocument(context.Background(), []byte{0xFF, 0xD8}, "image/jpeg")
	if err != nil {
		t.Fatalf("zero results must be a success, got error: %v", err)
	}
	if len(drafts) != 0 {
		t.Errorf("got %d drafts, want 0", len(drafts))
	}
}

func TestExtractor_ExtractFromDocument_UnsupportedType(t *testing.T) {
	e := newHeuristicOnlyExtractor(t)

	_, err := e.ExtractFromDocument(context.Background(), []byte("hello"), "text/plain")
	if !errors.Is(err, ErrUnsupportedMediaType) {
		t.Errorf("err = %v, want ErrUnsupportedMediaType", err)
	}
}

func TestSummarize(t *testing.T) {
	drafts := []TransactionDraft{
		{Kind: KindExpense, Amount: 100},
		{Kind: KindIncome, Amount: 300},
	}

	s := Summarize(drafts)
	if math.Abs(s.TotalIncome-300) > 1e-9 {
		t.Errorf("TotalIncome = %v, want 300", s.TotalIncome)
	}
	if math.Abs(s.TotalExpense-100) > 1e-9 {
		t.Errorf("TotalExpense = %v, want 100", s.TotalExpense)
	}
	if s.Count != 2 {
		t.Errorf("Count = %d, want 2", s.Count)
	}
}

func TestExtractor_SummarizeIncomeExpense(t *testing.T) {
	e := newHeuristicOnlyExtractor(t)

	text := "12/07/2024 Debit Card Purchase 45.50\n" +
		"25/07/2024 Salary 2,500.00\n"

	s := e.SummarizeIncomeExpense(context.Background(), text)
	if math.Abs(s.TotalExpense-45.50) > 1e-9 {
		t.Errorf("TotalExpense = %v, want 45.50", s.TotalExpense)
	}
	if math.Abs(s.TotalIncome-2500) > 1e-9 {
		t.Errorf("TotalIncome = %v, want 2500", s.TotalIncome)
	}
	if s.Count != 2 {
		t.Errorf("Count = %d, want 2", s.Count)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.TotalIncome != 0 || s.TotalExpense != 0 || s.Count != 0 {
		t.Errorf("Summarize(nil) = %+v, want zero value", s)
	}
}

func TestKindValid(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{KindIncome, true},
		{KindExpense, true},
		{Kind("transfer"), false},
		{Kind(""), false},
	}

	for _, tt := range tests {
		if got := tt.kind.Valid(); got != tt.want {
			t.Errorf("Kind(%q).Valid() = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

// Drafts carry a calendar date with no time-of-day; make sure the JSON
// shape persists it as YYYY-MM-DD for the caller.
func TestTransactionDraft_DateJSON(t *testing.T) {
	d := TransactionDraft{
		Kind:       KindExpense,
		Amount:     45.50,
		Category:   "Other",
		OccurredOn: civil.Date{Year: 2024, Month: 7, Day: 12},
		Provenance: ProvenanceHeuristicPDF,
	}
	if got := d.OccurredOn.String(); got != "2024-07-12" {
		t.Errorf("OccurredOn.String() = %q, want 2024-07-12", got)
	}
}
