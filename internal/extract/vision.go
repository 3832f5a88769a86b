// Package extract turns gated images into text. Two engines implement the
// same contract: a vision model that transcribes the page and a local
// tesseract fallback for offline runs.
package extract

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/mathsight/grader/internal/common"
	"github.com/mathsight/grader/internal/ingest"
	"github.com/mathsight/grader/internal/llm"
	"github.com/mathsight/grader/internal/normalize"
)

// visionInstruction asks for a literal transcription as a single JSON object.
// The image goes out exactly once; grading runs on the returned text.
const visionInstruction = "Extract the textual content from the image. The image contains:\n" +
	"- A typed (printed) math problem (short English text, may include math notation/equations).\n" +
	"- Possibly a student's handwritten attempt/solution (may contain multiple lines and arrows like '->').\n\n" +
	"Return EXACTLY one JSON object and nothing else with one key:\n" +
	"  { \"extracted_text\": \"...\" }\n\n" +
	"The value of 'extracted_text' should be a single string containing all text you see in the image, " +
	"preserving line breaks. Do not correct the math or the student's steps here. " +
	"Be literal and include arrows, punctuation, and math symbols as present.\n" +
	"IMPORTANT: This is the only call that uses the image. Do not call image/vision again.\n"

const visionMaxTokens = 1400

// VisionEngine extracts text with one vision-model call per image.
type VisionEngine struct {
	client llm.Client
	model  string
	logger *slog.Logger
}

func NewVisionEngine(client llm.Client, model string, logger *slog.Logger) *VisionEngine {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &VisionEngine{client: client, model: model, logger: logger}
}

func (v *VisionEngine) Extract(ctx context.Context, payload ingest.ImagePayload) (Extraction, error) {
	start := time.Now()

	req := llm.ChatRequest{
		Model:     v.model,
		MaxTokens: visionMaxTokens,
		Messages: []llm.ChatMessage{
			llm.TextMessage(llm.RoleSystem, "You are a precise extractor. Return results strictly as instructed."),
			llm.ImageMessage(visionInstruction, llm.DataURL(payload.Data, payload.MediaType)),
		},
	}
	content, err := v.client.Complete(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Extraction{}, ctxErr
		}
		return Extraction{Method: MethodVision},
			common.ExtractionFailureError("vision extraction", err)
	}

	text, warn := parseExtractedText(content)
	v.logger.Debug("extract.vision.ok",
		"source", payload.SourcePath,
		"model", v.model,
		"text_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	return Extraction{
		Text:     text,
		Method:   MethodVision,
		Model:    v.model,
		Duration: time.Since(start),
		Warnings: warn,
	}, nil
}

// parseExtractedText pulls extracted_text out of the model reply. A reply
// that is not the requested JSON is used verbatim rather than discarded.
func parseExtractedText(content string) (string, []string) {
	cleaned := normalize.StripCodeFences(content)
	if js, ok := normalize.ExtractJSONValue(cleaned); ok {
		var out struct {
			ExtractedText *string `json:"extracted_text"`
		}
		if err := json.Unmarshal([]byte(js), &out); err == nil && out.ExtractedText != nil {
			return *out.ExtractedText, nil
		}
	}
	return strings.TrimSpace(cleaned), []string{"vision reply was not the expected JSON; used raw text"}
}
