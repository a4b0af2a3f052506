package extraction

// Default values and limits for the extraction pipeline.
const (
	// DefaultModelName is the default Gemini model used for extraction.
	DefaultModelName = "gemini-2.5-flash"

	// maxHeuristicDrafts caps the deterministic line parser's output.
	maxHeuristicDrafts = 20

	// maxModelDrafts caps a single statement-text model response.
	maxModelDrafts = 25

	// minHeuristicAmount filters noise like balances and fees on the
	// deterministic path. Lines at or below it emit nothing.
	minHeuristicAmount = 10.0

	// maxStatementChars bounds the statement-text prefix sent to the model.
	maxStatementChars = 4000

	// maxDescriptionLen caps draft descriptions from the heuristic path.
	maxDescriptionLen = 50

	// pdfTextLimit caps the text pulled out of a PDF, mirroring the
	// request-size cap the caller applies to uploads.
	pdfTextLimit = 1 << 20
)

// heuristicPlaceholder fills in when a line yields an empty description.
const heuristicPlaceholder = "PDF Transaction"
