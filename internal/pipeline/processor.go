// Package pipeline wires the grading stages into one pass per request:
// gate the image, extract its text, call the grading model, normalize and
// grade the response, and assemble the final artifact. A Processor holds no
// per-request state and is safe for concurrent use.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mathsight/grader/internal/common"
	"github.com/mathsight/grader/internal/entity"
	"github.com/mathsight/grader/internal/extract"
	"github.com/mathsight/grader/internal/ingest"
	"github.com/mathsight/grader/internal/llm"
	"github.com/mathsight/grader/internal/result"
)

// Processor coordinates gate → extract → grade → assemble.
type Processor struct {
	Logger  *slog.Logger
	Gate    *ingest.Gate
	Extract *ExtractStage
	Grade   *GradeStage

	now func() time.Time
}

func NewProcessor(logger *slog.Logger, gate *ingest.Gate, ex *ExtractStage, gr *GradeStage) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Gate: gate, Extract: ex, Grade: gr, now: time.Now}
}

// NewDefaultProcessor builds a processor from configuration: the gate, the
// configured extraction engine, and the grading stage sharing one client.
func NewDefaultProcessor(cfg common.Config, client llm.Client, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	var ex extract.Extractor
	if cfg.Extract.Engine == common.EngineTesseract {
		ex = extract.NewTesseractEngine(cfg.Extract, logger)
	} else {
		ex = extract.NewVisionEngine(client, cfg.LLM.ExtractionModel, logger)
	}
	return NewProcessor(logger,
		ingest.NewGate(cfg.Gate, logger),
		NewExtractStage(ex, logger),
		NewGradeStage(client, cfg.LLM, logger),
	)
}

// GradeFile reads and grades one image file.
func (p *Processor) GradeFile(ctx context.Context, path string) (entity.GradingResult, error) {
	ctx = p.requestContext(ctx)
	payload, err := p.Gate.AcceptFile(path)
	if err != nil {
		return entity.GradingResult{}, err
	}
	return p.run(ctx, payload)
}

// GradeImage grades in-memory image bytes. source identifies the upload in
// logs and in the assembled result.
func (p *Processor) GradeImage(ctx context.Context, data []byte, source string) (entity.GradingResult, error) {
	ctx = p.requestContext(ctx)
	payload, err := p.Gate.Accept(data, source)
	if err != nil {
		return entity.GradingResult{}, err
	}
	return p.run(ctx, payload)
}

func (p *Processor) run(ctx context.Context, payload ingest.ImagePayload) (entity.GradingResult, error) {
	start := time.Now()
	logger := common.LoggerFromContext(ctx)

	extraction, err := p.Extract.Run(ctx, payload)
	if err != nil {
		return entity.GradingResult{}, err
	}

	graded, err := p.Grade.Run(ctx, extraction.Text)
	if err != nil {
		return entity.GradingResult{}, err
	}

	res := result.Assemble(graded, payload.SourcePath, p.now())
	logger.Info("pipeline.complete",
		"source", payload.SourcePath,
		"score", res.GraderResult.Score,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// requestContext gives every pass its own request ID and scoped logger
// unless the caller already attached one.
func (p *Processor) requestContext(ctx context.Context) context.Context {
	if common.RequestIDFromContext(ctx) != "" {
		return ctx
	}
	reqID := uuid.New().String()
	logger := p.Logger.With("req_id", reqID)
	return common.WithLogger(common.WithRequestID(ctx, reqID), logger)
}
