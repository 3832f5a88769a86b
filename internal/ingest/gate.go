// Package ingest accepts grading input: it validates image format and size,
// downsizes oversized images, and discovers files for batch runs.
package ingest

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gabriel-vasile/mimetype"

	// decoders for the allowed formats
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"

	"github.com/mathsight/grader/constants"
	"github.com/mathsight/grader/internal/common"
)

// ImagePayload is the gate's output: image bytes ready for extraction.
type ImagePayload struct {
	Data          []byte
	MediaType     string
	SourcePath    string
	OriginalBytes int64
	FinalBytes    int64
	Width         int
	Height        int
}

// Gate bounds grading input before any external call is made.
type Gate struct {
	maxBytes int64
	logger   *slog.Logger
}

func NewGate(cfg common.GateConfig, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	max := cfg.MaxImageBytes
	if max <= 0 {
		max = 1 << 20
	}
	return &Gate{maxBytes: max, logger: logger}
}

// AcceptFile reads a file and gates its contents.
func (g *Gate) AcceptFile(path string) (ImagePayload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImagePayload{}, common.NewAppError(common.CodeInvalidInput, fmt.Sprintf("read %s", path), err)
	}
	return g.Accept(data, path)
}

// Accept validates the sniffed media type against the allowed set and
// enforces the size ceiling, downsizing when the image is over it. Images at
// or under the ceiling pass through byte-identical.
func (g *Gate) Accept(data []byte, sourcePath string) (ImagePayload, error) {
	if len(data) == 0 {
		return ImagePayload{}, common.InvalidInputError("empty image data")
	}

	mt := detectMIME(data)
	if !constants.IsAllowedMIME(mt) {
		g.logger.Warn("gate.rejected", "media_type", mt, "source", sourcePath, "bytes", len(data))
		return ImagePayload{}, common.UnsupportedFormatError(fmt.Sprintf("media type %q", mt), nil)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		g.logger.Warn("gate.decode_failed", "media_type", mt, "source", sourcePath, "error", err)
		return ImagePayload{}, common.UnsupportedFormatError(fmt.Sprintf("undecodable %s image", mt), err)
	}

	payload := ImagePayload{
		Data:          data,
		MediaType:     mt,
		SourcePath:    sourcePath,
		OriginalBytes: int64(len(data)),
		FinalBytes:    int64(len(data)),
		Width:         img.Bounds().Dx(),
		Height:        img.Bounds().Dy(),
	}
	if payload.OriginalBytes <= g.maxBytes {
		return payload, nil
	}

	start := time.Now()
	reduced, w, h, err := reduceToBudget(img, payload.OriginalBytes, g.maxBytes)
	if err != nil {
		return ImagePayload{}, fmt.Errorf("downsize image: %w", err)
	}
	g.logger.Info("gate.downsize",
		"source", sourcePath,
		"from_bytes", payload.OriginalBytes,
		"to_bytes", len(reduced),
		"width", w,
		"height", h,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	payload.Data = reduced
	payload.FinalBytes = int64(len(reduced))
	payload.MediaType = "image/jpeg"
	payload.Width = w
	payload.Height = h
	return payload, nil
}

// detectMIME determines a media type using stdlib detection first and
// falling back to the broader mimetype library when ambiguous.
func detectMIME(head []byte) string {
	if len(head) == 0 {
		return "application/octet-stream"
	}
	mt := http.DetectContentType(head)
	if mt != "application/octet-stream" {
		return mt
	}
	return mimetype.Detect(head).String()
}
