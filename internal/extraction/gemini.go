package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// ModelClient sends a multimodal prompt to a generative model and returns
// the raw text of its reply. This interface enables mocking of the model
// call in tests.
type ModelClient interface {
	Generate(ctx context.Context, parts []*genai.Part) (string, error)
}

// geminiClient is the genai-backed ModelClient.
type geminiClient struct {
	client *genai.Client
	model  string
}

func newGeminiClient(ctx context.Context, cfg Config) (*geminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
		// API version v1 is what docs use for current Gemini models.
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &geminiClient{client: client, model: cfg.ModelName()}, nil
}

func (g *geminiClient) Generate(ctx context.Context, parts []*genai.Part) (string, error) {
	contents := []*genai.Content{{Role: "user", Parts: parts}}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}

// AIExtractor delegates semantic extraction to a generative model
// constrained to return machine-parseable JSON. Malformed model output is
// never propagated: it is logged and absorbed into an empty result.
type AIExtractor struct {
	model ModelClient
	log   zerolog.Logger
	today func() civil.Date
}

// NewAIExtractor creates the model-assisted extractor. It fails with
// ErrNotConfigured when no API key is present, before any network call.
func NewAIExtractor(ctx context.Context, cfg Config, log zerolog.Logger) (*AIExtractor, error) {
	if !cfg.AIConfigured() {
		return nil, ErrNotConfigured
	}
	client, err := newGeminiClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &AIExtractor{
		model: client,
		log:   log,
		today: func() civil.Date { return civil.DateOf(time.Now()) },
	}, nil
}

// ExtractStatementText runs the text mode: a bounded prefix of the
// statement text goes to the model with a strict-JSON-array instruction,
// and the reply is carved, parsed, and validated candidate by candidate.
// The returned batch is capped at 25. A failed model call or an
// unparseable reply yields an empty batch, not an error.
func (e *AIExtractor) ExtractStatementText(ctx context.Context, text string) []TransactionDraft {
	if len(text) > maxStatementChars {
		// Cut on a rune boundary so the prompt never carries a split
		// multi-byte character.
		cut := maxStatementChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	reply, err := e.model.Generate(ctx, []*genai.Part{
		{Text: statementPrompt(text)},
	})
	if err != nil {
		e.log.Warn().Err(err).Msg("statement model call failed, returning no results")
		return nil
	}

	raw, ok := carveJSONArray(reply)
	if !ok {
		e.log.Warn().Msg("no JSON array in model reply, returning no results")
		return nil
	}

	drafts, rejected := decodeCandidates(raw, ProvenanceAIPDF)
	for _, rerr := range rejected {
		e.log.Warn().Err(rerr).Msg("dropped model candidate")
	}

	if len(drafts) > maxModelDrafts {
		drafts = drafts[:maxModelDrafts]
	}
	return drafts
}

// ExtractReceiptImage runs the image mode: the raw image bytes go to the
// model inline, and the reply is read as a single JSON object describing
// exactly one transaction. ErrNoTransactionFound signals the legitimate
// zero-result outcome; it is not a failure.
func (e *AIExtractor) ExtractReceiptImage(ctx context.Context, image []byte, mediaType string) (*TransactionDraft, error) {
	reply, err := e.model.Generate(ctx, []*genai.Part{
		{Text: receiptPrompt()},
		{
			InlineData: &genai.Blob{
				MIMEType: mediaType,
				Data:     image,
			},
		},
	})
	if err != nil {
		e.log.Warn().Err(err).Msg("receipt model call failed, returning no results")
		return nil, ErrNoTransactionFound
	}

	raw, ok := carveJSONObject(reply)
	if !ok {
		e.log.Warn().Msg("no JSON object in model reply")
		return nil, ErrNoTransactionFound
	}

	var item interface{}
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		e.log.Warn().Err(err).Msg("unparseable receipt candidate")
		return nil, ErrNoTransactionFound
	}

	today := e.today()
	draft, err := candidateToDraft(item, ProvenanceAIImage, &today)
	if err != nil {
		e.log.Warn().Err(err).Msg("dropped receipt candidate")
		return nil, ErrNoTransactionFound
	}
	return &draft, nil
}
