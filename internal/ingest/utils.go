package ingest

import (
	"path/filepath"
	"strings"

	"github.com/mathsight/grader/constants"
)

// AllowedExt checks if a path carries one of the supported image extensions.
func AllowedExt(path string) bool {
	return constants.IsAllowedExt(filepath.Ext(path))
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}
