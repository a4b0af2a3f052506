package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Extractor is the single entry point for turning uploaded documents into
// transaction drafts. Exactly one extraction path executes per call: the
// model-assisted path supersedes the heuristic one whenever it is
// configured. Each invocation is independent; there is no shared mutable
// state across calls.
type Extractor struct {
	cfg       Config
	ai        *AIExtractor
	heuristic *HeuristicParser
	log       zerolog.Logger
}

// New creates an extractor. With an API key configured the model-assisted
// path is used for text and images; without one, text extraction falls back
// to the heuristic parser and image extraction is unavailable.
func New(ctx context.Context, cfg Config, log zerolog.Logger) (*Extractor, error) {
	e := &Extractor{
		cfg:       cfg,
		heuristic: NewHeuristicParser(log),
		log:       log,
	}

	if cfg.AIConfigured() {
		ai, err := NewAIExtractor(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("extraction.New: %w", err)
		}
		e.ai = ai
	}

	return e, nil
}

// ExtractFromDocument acquires the document and routes it to the right
// path: PDFs are decoded to text and run through ExtractFromDocumentText;
// images go to the model-assisted receipt path, whose single draft (if any)
// comes back as a one-element batch.
func (e *Extractor) ExtractFromDocument(ctx context.Context, data []byte, mediaType string) ([]TransactionDraft, error) {
	payload, err := AcquireDocument(data, mediaType)
	if err != nil {
		return nil, err
	}

	if payload.IsImage() {
		draft, err := e.ExtractFromImage(ctx, payload.Image, payload.MediaType)
		if errors.Is(err, ErrNoTransactionFound) {
			return []TransactionDraft{}, nil
		}
		if err != nil {
			return nil, err
		}
		return []TransactionDraft{*draft}, nil
	}

	return e.ExtractFromDocumentText(ctx, payload.Text), nil
}

// ExtractFromDocumentText extracts drafts from statement text. It runs the
// model-assisted extractor when configured, otherwise the heuristic parser;
// never both. Empty input or zero matches yield an empty batch, which is a
// successful outcome.
func (e *Extractor) ExtractFromDocumentText(ctx context.Context, text string) []TransactionDraft {
	runLog := e.log.With().Str("run_id", uuid.NewString()).Logger()

	var drafts []TransactionDraft
	if e.ai != nil {
		drafts = e.ai.ExtractStatementText(ctx, text)
		runLog.Info().Int("drafts", len(drafts)).Str("path", string(ProvenanceAIPDF)).Msg("extraction complete")
	} else {
		drafts = e.heuristic.Parse(text)
		runLog.Info().Int("drafts", len(drafts)).Str("path", string(ProvenanceHeuristicPDF)).Msg("extraction complete")
	}
	return drafts
}

// ExtractFromImage extracts at most one draft from a photographed receipt.
// There is no heuristic fallback for images: without a configured model the
// call fails with ErrNotConfigured before anything else happens.
func (e *Extractor) ExtractFromImage(ctx context.Context, image []byte, mediaType string) (*TransactionDraft, error) {
	if e.ai == nil {
		return nil, ErrNotConfigured
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMediaType, mediaType)
	}

	runLog := e.log.With().Str("run_id", uuid.NewString()).Logger()

	draft, err := e.ai.ExtractReceiptImage(ctx, image, mediaType)
	if err != nil {
		return nil, err
	}
	runLog.Info().Str("path", string(ProvenanceAIImage)).Msg("extraction complete")
	return draft, nil
}

// SummarizeIncomeExpense extracts drafts from statement text and reduces
// the batch to income/expense totals.
func (e *Extractor) SummarizeIncomeExpense(ctx context.Context, text string) Summary {
	return Summarize(e.ExtractFromDocumentText(ctx, text))
}
