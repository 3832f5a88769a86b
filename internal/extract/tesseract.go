package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/mathsight/grader/internal/common"
	"github.com/mathsight/grader/internal/ingest"
)

// TesseractEngine extracts text by shelling out to the tesseract binary.
// The gated image is piped over stdin so downsized payloads never touch disk.
type TesseractEngine struct {
	cfg    common.ExtractConfig
	runner Runner
	logger *slog.Logger
}

func NewTesseractEngine(cfg common.ExtractConfig, logger *slog.Logger) *TesseractEngine {
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TesseractEngine{cfg: cfg, runner: execRunner{}, logger: logger}
}

func (e *TesseractEngine) Extract(ctx context.Context, payload ingest.ImagePayload) (Extraction, error) {
	start := time.Now()

	txt, warn, err := e.ocr(ctx, payload.Data)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Extraction{}, ctxErr
		}
		return Extraction{Method: MethodTesseract, Warnings: warn},
			common.ExtractionFailureError("tesseract run", err)
	}
	txt = normalizeText(txt)

	// compute confidence
	var ocrConf float32
	if c, w, err2 := e.tsvConfidence(ctx, payload.Data); err2 == nil {
		ocrConf = c
		warn = append(warn, w...)
	} else {
		warn = append(warn, err2.Error())
	}
	heurConf := heuristicConfidence(txt)

	// blend: weight OCR higher if present
	conf := heurConf
	if ocrConf > 0 {
		conf = 0.7*ocrConf + 0.3*heurConf
	}
	if conf > 1.0 {
		conf = 1.0
	}

	e.logger.Debug("extract.tesseract.ok",
		"source", payload.SourcePath,
		"text_len", len(txt),
		"confidence", conf,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	return Extraction{
		Text:       txt,
		Method:     MethodTesseract,
		Model:      e.cfg.TesseractLang,
		Confidence: conf,
		Duration:   time.Since(start),
		Warnings:   warn,
	}, nil
}

func (e *TesseractEngine) ocr(ctx context.Context, image []byte) (string, []string, error) {
	args := []string{"stdin", "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	// tesseract stdin stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, image, e.cfg.Tesseract, args...)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil, nil
}

// tsvConfidence runs tesseract in TSV mode and returns mean word conf in 0..1.
func (e *TesseractEngine) tsvConfidence(ctx context.Context, image []byte) (float32, []string, error) {
	args := []string{"stdin", "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	// TSV output
	args = append(args, "tsv")

	out, errb, err := e.runner.Run(ctx, image, e.cfg.Tesseract, args...)
	if err != nil {
		return 0, []string{string(errb)}, fmt.Errorf("tesseract TSV: %w", err)
	}
	lines := strings.Split(string(out), "\n")
	// locate the conf column by header name; the text column comes after it
	var sum, n float64
	confIdx := -1
	for i, ln := range lines {
		if len(ln) == 0 {
			continue
		}
		cols := strings.Split(ln, "\t")
		if i == 0 {
			for j, name := range cols {
				if strings.TrimSpace(name) == "conf" {
					confIdx = j
				}
			}
			continue
		}
		if confIdx < 0 || len(cols) <= confIdx {
			continue
		}
		confStr := strings.TrimSpace(cols[confIdx])
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, nil, nil
	}
	mean := sum / n // 0..100
	return float32(mean / 100.0), nil, nil
}

// normalizeText cleans OCR output: CRLF to LF, trailing whitespace stripped
// per line, runs of blank lines collapsed to one.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, ln := range lines {
		ln = strings.TrimRight(ln, " \t")
		if ln == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, ln)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
