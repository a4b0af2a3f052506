package extraction

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MediaTypePDF is the only page-structured document format accepted.
const MediaTypePDF = "application/pdf"

// Payload is the output of document acquisition: either plain text pulled
// out of a PDF, or the untouched image bytes headed for the multimodal path.
type Payload struct {
	Text      string
	Image     []byte
	MediaType string
}

// IsImage reports whether the payload carries raw image bytes.
func (p Payload) IsImage() bool {
	return p.Image != nil
}

// AcquireDocument turns a byte buffer tagged with its media type into the
// next stage's input. PDFs are decoded to UTF-8 text; image subtypes pass
// through unchanged. Anything else fails with ErrUnsupportedMediaType.
func AcquireDocument(data []byte, mediaType string) (Payload, error) {
	switch {
	case mediaType == MediaTypePDF:
		text, err := extractPDFText(data)
		if err != nil {
			return Payload{}, err
		}
		return Payload{Text: text, MediaType: mediaType}, nil
	case strings.HasPrefix(mediaType, "image/"):
		return Payload{Image: data, MediaType: mediaType}, nil
	default:
		return Payload{}, fmt.Errorf("%w: %q", ErrUnsupportedMediaType, mediaType)
	}
}

// extractPDFText decodes PDF bytes into plain text. The pdf library panics
// on some malformed inputs, so decoding is wrapped in recover and every
// failure mode collapses into ErrUnreadableDocument.
func extractPDFText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: panic decoding PDF: %v", ErrUnreadableDocument, r)
		}
	}()

	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty input", ErrUnreadableDocument)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}

	raw, err := io.ReadAll(io.LimitReader(plain, pdfTextLimit))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}

	return string(raw), nil
}
