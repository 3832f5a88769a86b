package grade

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mathsight/grader/constants"
	"github.com/mathsight/grader/internal/entity"
)

func attempt(s string) *string { return &s }

func normalized(attempt *string, scores map[string]float64) entity.NormalizedResult {
	if scores == nil {
		scores = map[string]float64{}
	}
	return entity.NormalizedResult{
		Solution:        entity.Solution{Steps: []string{}},
		StudentAttempt:  attempt,
		ComponentScores: scores,
		Hints:           []string{},
	}
}

func TestGrade(t *testing.T) {
	t.Run("Should average the three rubric components", func(t *testing.T) {
		n := normalized(attempt("x=2"), map[string]float64{
			"understanding": 90,
			"execution":     85,
			"accuracy":      87.5,
		})
		scores, overall, flags := Grade(n)
		assert.InDelta(t, 87.5, overall, 1e-9)
		assert.Equal(t, entity.RubricScores{Understanding: 90, Execution: 85, Accuracy: 87.5}, scores)
		assert.Empty(t, flags)
	})

	t.Run("Should count an absent component as zero", func(t *testing.T) {
		n := normalized(attempt("x=2"), map[string]float64{"understanding": 90})
		scores, overall, _ := Grade(n)
		assert.InDelta(t, 30.0, overall, 1e-9)
		assert.Equal(t, 0.0, scores.Execution)
		assert.Equal(t, 0.0, scores.Accuracy)
	})

	t.Run("Should force all scores to zero without an attempt", func(t *testing.T) {
		n := normalized(nil, map[string]float64{
			"understanding": 90,
			"execution":     85,
			"accuracy":      100,
		})
		scores, overall, flags := Grade(n)
		assert.Equal(t, 0.0, overall)
		assert.Equal(t, entity.RubricScores{}, scores)
		assert.Equal(t, []string{constants.FlagNoAttempt}, flags)
	})

	t.Run("Should treat an empty attempt like an absent one", func(t *testing.T) {
		n := normalized(attempt(""), map[string]float64{"accuracy": 100})
		_, overall, flags := Grade(n)
		assert.Equal(t, 0.0, overall)
		assert.Contains(t, flags, constants.FlagNoAttempt)
	})

	t.Run("Should ignore components outside the rubric", func(t *testing.T) {
		n := normalized(attempt("x=2"), map[string]float64{
			"understanding": 60,
			"neatness":      100,
		})
		_, overall, _ := Grade(n)
		assert.InDelta(t, 20.0, overall, 1e-9)
	})

	t.Run("Should keep the overall score in range", func(t *testing.T) {
		n := normalized(attempt("x=2"), map[string]float64{
			"understanding": 100,
			"execution":     100,
			"accuracy":      100,
		})
		_, overall, _ := Grade(n)
		assert.Equal(t, 100.0, overall)
	})
}

func TestApply(t *testing.T) {
	t.Run("Should carry normalized fields into the graded result", func(t *testing.T) {
		n := normalized(attempt("2x=4 -> x=2"), map[string]float64{
			"understanding": 90, "execution": 80, "accuracy": 70,
		})
		n.ProblemText = "solve 2x+3=7"
		n.Topic = "algebra"
		n.Hints = []string{" hint ", "hint", "another"}

		got := Apply(n)
		assert.Equal(t, "solve 2x+3=7", got.ProblemText)
		assert.Equal(t, "algebra", got.Topic)
		assert.InDelta(t, 80.0, got.Score, 1e-9)
		assert.Equal(t, []string{"hint", "another"}, got.HintsSorted)
		assert.Equal(t, "hint", got.FirstHint)
		assert.Empty(t, got.Flags)
	})

	t.Run("Should flag and zero a result without an attempt", func(t *testing.T) {
		got := Apply(normalized(nil, map[string]float64{"accuracy": 100}))
		assert.Equal(t, 0.0, got.Score)
		assert.Equal(t, entity.RubricScores{}, got.ComponentScores)
		assert.Equal(t, []string{constants.FlagNoAttempt}, got.Flags)
		assert.Equal(t, constants.NoHintSentinel, got.FirstHint)
	})
}
