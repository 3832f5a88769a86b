package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/mathsight/grader/internal/async"
	"github.com/mathsight/grader/internal/common"
	"github.com/mathsight/grader/internal/entity"
	"github.com/mathsight/grader/internal/export"
	"github.com/mathsight/grader/internal/ingest"
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
		dir     = flag.String("dir", "", "directory of images to grade (required)")
		out     = flag.String("out", "", "directory for result artifacts (default from config)")
		xlsx    = flag.String("xlsx", "", "gradebook XLSX output path (optional, defaults next to -dir)")
		watch   = flag.Bool("watch", false, "keep watching -dir and grade new images as they appear")
		workers = flag.Int("workers", 4, "concurrent grading workers")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: -dir is required\n")
		os.Exit(1)
	}
	if *xlsx == "" {
		*xlsx = filepath.Join(filepath.Dir(*dir), "gradebook.xlsx")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := openai.NewClient(openai.Config{
		APIKey:       cfg.LLM.APIKey,
		BaseURL:      cfg.LLM.BaseURL,
		Timeout:      cfg.LLM.Timeout,
		MaxRetries:   cfg.LLM.MaxRetries,
		RetryBackoff: cfg.LLM.RetryBackoff,
	}, logger)
	proc := pipeline.NewDefaultProcessor(cfg, client, logger)

	// results are collected for the gradebook; the mutex is the only shared
	// state across workers
	var (
		mu       sync.Mutex
		results  []entity.GradingResult
		failures int
	)
	handler := func(ctx context.Context, job async.Job) error {
		res, err := proc.GradeFile(ctx, job.Path)
		if err != nil {
			mu.Lock()
			failures++
			mu.Unlock()
			return err
		}
		if _, err := result.WriteArtifact(res, cfg.Output.Dir); err != nil {
			return err
		}
		mu.Lock()
		results = append(results, res)
		mu.Unlock()
		return nil
	}

	queue := async.NewQueue(handler, logger, async.WithWorkers(*workers))

	logger.Info("scanning directory", "dir", *dir)
	paths, stats, err := ingest.DiscoverImages(*dir, true)
	if err != nil {
		logger.Error("directory scan failed", "dir", *dir, "error", err)
		os.Exit(1)
	}
	logger.Info("scan complete",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)
	for _, p := range paths {
		_ = queue.Enqueue(ctx, async.Job{Path: p, SubmittedAt: time.Now()})
	}

	if *watch {
		evCh, errCh, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:    []string{*dir},
			Debounce: 500 * time.Millisecond,
		})
		if err != nil {
			logger.Error("watcher start failed", "error", err)
			os.Exit(1)
		}
		logger.Info("watching for new images", "dir", *dir)

	watchLoop:
		for {
			select {
			case <-ctx.Done():
				break watchLoop
			case p, ok := <-evCh:
				if !ok {
					break watchLoop
				}
				_ = queue.Enqueue(ctx, async.Job{Path: p, SubmittedAt: time.Now()})
			case werr, ok := <-errCh:
				if ok && werr != nil {
					logger.Warn("watcher error", "error", werr)
				}
			}
		}
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	queue.Shutdown(drainCtx)

	if len(results) > 0 {
		xlsxBytes, err := export.NewService(logger).GradebookXLSX(results)
		if err != nil {
			logger.Error("gradebook export failed", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*xlsx, xlsxBytes, 0644); err != nil {
			logger.Error("write gradebook failed", "path", *xlsx, "error", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Batch grading complete!\n")
	fmt.Printf("- Images graded: %d\n", len(results))
	fmt.Printf("- Failures: %d\n", failures)
	if len(results) > 0 {
		fmt.Printf("- Gradebook: %s\n", *xlsx)
	}
}
