package entity

// Solution is the worked solution the service produced for the problem.
type Solution struct {
	Steps       []string `json:"steps"`
	FinalAnswer string   `json:"final_answer"`
}

// NormalizedResult is the canonical shape distilled from a raw service
// response. Every field has a defined default when absent from the raw
// response; no field is ever left as a raw/untyped value past normalization.
type NormalizedResult struct {
	ProblemText          string             `json:"problem_text"`
	Topic                string             `json:"topic"`
	DifficultyAssessment string             `json:"difficulty_assessment"`
	Solution             Solution           `json:"solution"`
	StudentAttempt       *string            `json:"student_attempt"`
	ComponentScores      map[string]float64 `json:"component_scores"`
	Hints                []string           `json:"hints"`
}

// HasAttempt reports whether the response carried any student work.
func (n *NormalizedResult) HasAttempt() bool {
	return n.StudentAttempt != nil && *n.StudentAttempt != ""
}

// RubricScores holds the per-component scores of the fixed grading rubric.
// Values are always in [0,100].
type RubricScores struct {
	Understanding float64 `json:"understanding"`
	Execution     float64 `json:"execution"`
	Accuracy      float64 `json:"accuracy"`
}

// GraderResult is the graded view of a normalized response.
type GraderResult struct {
	ProblemText          string       `json:"problem_text"`
	Topic                string       `json:"topic"`
	DifficultyAssessment string       `json:"difficulty_assessment"`
	Solution             Solution     `json:"solution"`
	StudentAttempt       *string      `json:"student_attempt"`
	Score                float64      `json:"score"`
	ComponentScores      RubricScores `json:"component_scores"`
	HintsSorted          []string     `json:"hints_sorted"`
	FirstHint            string       `json:"first_hint"`
	Flags                []string     `json:"flags"`
}
