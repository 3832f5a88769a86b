package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mathsight/grader/internal/common"
	"github.com/mathsight/grader/internal/llm/openai"
	"github.com/mathsight/grader/internal/pipeline"
	"github.com/mathsight/grader/internal/result"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		image   = flag.String("image", "", "path to the image to grade (required)")
		out     = flag.String("out", "", "directory for the result artifact (default from config)")
		timeout = flag.Duration("timeout", 3*time.Minute, "overall run timeout")
	)
	flag.Parse()

	if *image == "" {
		printError("Error: -image is required\n")
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if *out != "" {
		cfg.Output.Dir = *out
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := openai.NewClient(openai.Config{
		APIKey:       cfg.LLM.APIKey,
		BaseURL:      cfg.LLM.BaseURL,
		Timeout:      cfg.LLM.Timeout,
		MaxRetries:   cfg.LLM.MaxRetries,
		RetryBackoff: cfg.LLM.RetryBackoff,
	}, logger)
	proc := pipeline.NewDefaultProcessor(cfg, client, logger)

	res, err := proc.GradeFile(ctx, *image)
	if err != nil {
		logger.Error("grading failed", "image", *image, "error", err)
		os.Exit(1)
	}

	path, err := result.WriteArtifact(res, cfg.Output.Dir)
	if err != nil {
		logger.Error("write artifact failed", "error", err)
		os.Exit(1)
	}

	gr := res.GraderResult
	fmt.Printf("Graded %s\n", *image)
	fmt.Printf("- Topic: %s\n", orDash(gr.Topic))
	fmt.Printf("- Difficulty: %s\n", orDash(gr.DifficultyAssessment))
	fmt.Printf("- Score: %.1f (understanding %.0f, execution %.0f, accuracy %.0f)\n",
		gr.Score,
		gr.ComponentScores.Understanding,
		gr.ComponentScores.Execution,
		gr.ComponentScores.Accuracy,
	)
	fmt.Printf("- First hint: %s\n", gr.FirstHint)
	for _, f := range gr.Flags {
		fmt.Printf("- Flag: %s\n", f)
	}
	fmt.Printf("- Artifact: %s\n", path)
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
