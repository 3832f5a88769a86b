// Package grade computes the overall score, per-component scores, and ranked
// hints from a normalized service response.
package grade

import (
	"github.com/mathsight/grader/constants"
	"github.com/mathsight/grader/internal/entity"
)

// Grade resolves the normalized component mapping onto the fixed rubric and
// computes the overall score as the arithmetic mean of the three components.
// A component absent from the mapping counts as 0 rather than being excluded
// from the average, keeping scores comparable across requests. When the
// response carried no student attempt, every score is forced to 0 and the
// no-attempt flag is raised so callers can report that instead of a
// misleading grade.
func Grade(n entity.NormalizedResult) (entity.RubricScores, float64, []string) {
	flags := []string{}
	if !n.HasAttempt() {
		return entity.RubricScores{}, 0, append(flags, constants.FlagNoAttempt)
	}

	scores := entity.RubricScores{
		Understanding: componentOrZero(n.ComponentScores, constants.Understanding),
		Execution:     componentOrZero(n.ComponentScores, constants.Execution),
		Accuracy:      componentOrZero(n.ComponentScores, constants.Accuracy),
	}
	overall := (scores.Understanding + scores.Execution + scores.Accuracy) / 3
	return scores, overall, flags
}

func componentOrZero(m map[string]float64, c constants.Component) float64 {
	if v, ok := m[string(c)]; ok {
		return v
	}
	return 0
}

// Apply grades a normalized result and ranks its hints, producing the graded
// view the assembler wraps into the final artifact.
func Apply(n entity.NormalizedResult) entity.GraderResult {
	scores, overall, flags := Grade(n)
	hints, first := RankHints(n.Hints)
	return entity.GraderResult{
		ProblemText:          n.ProblemText,
		Topic:                n.Topic,
		DifficultyAssessment: n.DifficultyAssessment,
		Solution:             n.Solution,
		StudentAttempt:       n.StudentAttempt,
		Score:                overall,
		ComponentScores:      scores,
		HintsSorted:          hints,
		FirstHint:            first,
		Flags:                flags,
	}
}
