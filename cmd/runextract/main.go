package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mathsight/grader/internal/common"
	"github.com/mathsight/grader/internal/extract"
	"github.com/mathsight/grader/internal/ingest"
	"github.com/mathsight/grader/internal/llm/openai"
)

// runextract runs only the gate and the extraction engine on one file and
// prints the text. Useful when tuning prompts or checking OCR quality
// without spending a grading call.
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runextract <image-path>")
		os.Exit(2)
	}
	path := os.Args[1]

	cfg := common.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gate := ingest.NewGate(cfg.Gate, logger)
	payload, err := gate.AcceptFile(path)
	if err != nil {
		logger.Error("gate rejected file", "path", path, "error", err)
		os.Exit(1)
	}
	logger.Info("gate ok",
		"media_type", payload.MediaType,
		"original_bytes", payload.OriginalBytes,
		"final_bytes", payload.FinalBytes,
		"width", payload.Width,
		"height", payload.Height,
	)

	var engine extract.Extractor
	if cfg.Extract.Engine == common.EngineTesseract {
		engine = extract.NewTesseractEngine(cfg.Extract, logger)
	} else {
		client := openai.NewClient(openai.Config{
			APIKey:       cfg.LLM.APIKey,
			BaseURL:      cfg.LLM.BaseURL,
			Timeout:      cfg.LLM.Timeout,
			MaxRetries:   cfg.LLM.MaxRetries,
			RetryBackoff: cfg.LLM.RetryBackoff,
		}, logger)
		engine = extract.NewVisionEngine(client, cfg.LLM.ExtractionModel, logger)
	}

	start := time.Now()
	res, err := engine.Extract(ctx, payload)
	if err != nil {
		logger.Error("extraction failed", "path", path, "error", err, "duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}

	logger.Info("extraction OK",
		"method", res.Method,
		"model", res.Model,
		"bytes", len(res.Text),
		"confidence", res.Confidence,
		"duration_ms", res.Duration.Milliseconds(),
	)
	for _, w := range res.Warnings {
		logger.Warn("extraction warning", "warning", w)
	}
	fmt.Println(res.Text)
}
