package result

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mathsight/grader/internal/entity"
)

// WriteArtifact serializes a grading result to disk as
// grader_output_<source>_<timestamp>.json and returns the written path.
// The pipeline itself never persists results; this is a caller-side helper
// for the CLIs.
func WriteArtifact(res entity.GradingResult, dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}

	name := fmt.Sprintf("grader_output_%s_%s.json",
		slug(res.SourceFile),
		res.GeneratedAt.UTC().Format("20060102_150405"),
	)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}

// slug reduces a source identifier to a safe filename fragment.
func slug(source string) string {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		return "result"
	}
	var b strings.Builder
	b.Grow(len(base))
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
