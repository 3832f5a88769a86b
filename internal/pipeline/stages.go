package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mathsight/grader/internal/common"
	"github.com/mathsight/grader/internal/entity"
	"github.com/mathsight/grader/internal/extract"
	"github.com/mathsight/grader/internal/grade"
	"github.com/mathsight/grader/internal/ingest"
	"github.com/mathsight/grader/internal/llm"
	"github.com/mathsight/grader/internal/normalize"
)

// ExtractStage runs the gated image through the configured extraction engine.
type ExtractStage struct {
	Extractor extract.Extractor
	Logger    *slog.Logger
}

func NewExtractStage(ex extract.Extractor, logger *slog.Logger) *ExtractStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractStage{Extractor: ex, Logger: logger}
}

// Run extracts text from a gated payload. Empty text is a valid outcome and
// does not fail the stage; only an engine that could not run is an error.
func (s *ExtractStage) Run(ctx context.Context, payload ingest.ImagePayload) (extract.Extraction, error) {
	start := time.Now()
	logger := common.LoggerFromContext(ctx)

	res, err := s.Extractor.Extract(ctx, payload)
	if err != nil {
		logger.Error("pipeline.extract.failed", "source", payload.SourcePath, "error", err)
		return res, fmt.Errorf("extract stage: %w", err)
	}

	logger.Info("pipeline.extract.ok",
		"source", payload.SourcePath,
		"method", res.Method,
		"text_len", len(res.Text),
		"confidence", res.Confidence,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// GradeStage sends the extracted text to the grading model and turns
// whatever comes back into a graded result. A transport failure is fatal;
// any response that arrived, however malformed, is absorbed by the
// normalizer and graded.
type GradeStage struct {
	Client llm.Client
	Cfg    common.LLMConfig
	Logger *slog.Logger
}

func NewGradeStage(client llm.Client, cfg common.LLMConfig, logger *slog.Logger) *GradeStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &GradeStage{Client: client, Cfg: cfg, Logger: logger}
}

func (s *GradeStage) Run(ctx context.Context, extractedText string) (entity.GraderResult, error) {
	start := time.Now()
	logger := common.LoggerFromContext(ctx)

	req := llm.ChatRequest{
		Model:       s.Cfg.UnderstandingModel,
		Temperature: s.Cfg.Temperature,
		ForceJSON:   true,
		Messages:    llm.BuildGradingMessages(extractedText, s.Cfg.MaxPromptChars),
	}
	content, err := s.Client.Complete(ctx, req)
	if err != nil {
		logger.Error("pipeline.grade.call_failed", "error", err)
		return entity.GraderResult{}, fmt.Errorf("grade stage: %w", err)
	}

	normalized := normalize.Normalize([]byte(content), logger)
	graded := grade.Apply(normalized)

	logger.Info("pipeline.grade.ok",
		"score", graded.Score,
		"hints", len(graded.HintsSorted),
		"flags", graded.Flags,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return graded, nil
}
