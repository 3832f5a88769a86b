package extract

import (
	"context"
	"time"

	"github.com/mathsight/grader/internal/ingest"
)

// Engine names as they appear in results and logs.
const (
	MethodVision    = "vision"
	MethodTesseract = "tesseract"
)

// Extraction is the text pulled out of a gated image.
type Extraction struct {
	Text       string
	Method     string // MethodVision | MethodTesseract
	Model      string // model name or OCR language
	Confidence float32
	Duration   time.Duration
	Warnings   []string
}

// Extractor turns a gated image into text. Empty text is a valid outcome;
// an error means the engine itself could not run.
type Extractor interface {
	Extract(ctx context.Context, payload ingest.ImagePayload) (Extraction, error)
}
