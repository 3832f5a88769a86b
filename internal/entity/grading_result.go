package entity

import "time"

// GradingResult is the final artifact for one request: the graded result plus
// request metadata. Constructed once by the assembler and immutable after;
// the caller owns serialization and storage.
type GradingResult struct {
	GraderResult GraderResult `json:"grader_result"`
	GeneratedAt  time.Time    `json:"generated_at"`
	SourceFile   string       `json:"source_file"`
}
