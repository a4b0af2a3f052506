package extraction

import (
	"cloud.google.com/go/civil"
)

// Kind classifies a draft as money in or money out.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Valid reports whether k is one of the two allowed values.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Provenance records which extraction path produced a draft.
// It is set by the pipeline and never user-editable.
type Provenance string

const (
	// ProvenanceManual marks drafts constructed directly by callers,
	// outside this pipeline.
	ProvenanceManual Provenance = "manual"

	// ProvenanceHeuristicPDF marks drafts from the deterministic line parser.
	ProvenanceHeuristicPDF Provenance = "heuristic-pdf"

	// ProvenanceAIPDF marks drafts from the model-assisted statement path.
	ProvenanceAIPDF Provenance = "ai-pdf"

	// ProvenanceAIImage marks the single draft from the receipt-photo path.
	ProvenanceAIImage Provenance = "ai-image"
)

// TransactionDraft is a transiently computed, unsaved transaction record.
// Drafts are immutable once built; the caller's persistence layer owns
// turning them into stored transactions.
type TransactionDraft struct {
	Kind        Kind       `json:"kind"`
	Amount      float64    `json:"amount"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	OccurredOn  civil.Date `json:"occurredOn"`
	Provenance  Provenance `json:"provenance"`
}

// Summary is the reduction of a draft batch by kind.
type Summary struct {
	TotalIncome  float64 `json:"totalIncome"`
	TotalExpense float64 `json:"totalExpense"`
	Count        int     `json:"transactionCount"`
}

// Summarize reduces a batch of drafts by summing amounts grouped by kind.
func Summarize(drafts []TransactionDraft) Summary {
	var s Summary
	for _, d := range drafts {
		switch d.Kind {
		case KindIncome:
			s.TotalIncome += d.Amount
		case KindExpense:
			s.TotalExpense += d.Amount
		}
		s.Count++
	}
	return s
}
