// Package result assembles and serializes the final grading artifact.
package result

import (
	"time"

	"github.com/mathsight/grader/internal/entity"
)

// Assemble builds the immutable GradingResult from a graded result and the
// request metadata. The timestamp is normalized to UTC and second precision
// so serialization round-trips byte-for-byte.
func Assemble(gr entity.GraderResult, sourceFile string, now time.Time) entity.GradingResult {
	return entity.GradingResult{
		GraderResult: gr,
		GeneratedAt:  now.UTC().Truncate(time.Second),
		SourceFile:   sourceFile,
	}
}
