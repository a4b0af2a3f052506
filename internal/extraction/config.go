package extraction

// Config carries the generative-capability settings. It is passed in at
// construction; nothing in the pipeline reads ambient/global state.
type Config struct {
	// APIKey is the Gemini API key. Empty means the model-assisted path is
	// unavailable and text extraction falls back to the heuristic parser.
	APIKey string

	// Model is the Gemini model identifier. Empty selects DefaultModelName.
	Model string
}

// AIConfigured reports whether the model-assisted path can run.
func (c Config) AIConfigured() bool {
	return c.APIKey != ""
}

// ModelName returns the configured model identifier or the default.
func (c Config) ModelName() string {
	if c.Model == "" {
		return DefaultModelName
	}
	return c.Model
}
