package result

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathsight/grader/internal/entity"
)

func sampleResult(t *testing.T) entity.GradingResult {
	t.Helper()
	attempt := "2x = 4 -> x = 2"
	gr := entity.GraderResult{
		ProblemText:          "Solve 2x+3=7",
		Topic:                "algebra",
		DifficultyAssessment: "Easy",
		Solution: entity.Solution{
			Steps:       []string{"subtract 3", "divide by 2"},
			FinalAnswer: "x=2",
		},
		StudentAttempt:  &attempt,
		Score:           87.5,
		ComponentScores: entity.RubricScores{Understanding: 90, Execution: 85, Accuracy: 87.5},
		HintsSorted:     []string{"isolate x"},
		FirstHint:       "isolate x",
		Flags:           []string{},
	}
	return Assemble(gr, "worksheet.png", time.Date(2025, 3, 14, 15, 9, 26, 535897932, time.UTC))
}

func TestAssemble(t *testing.T) {
	t.Run("Should stamp UTC second-precision metadata", func(t *testing.T) {
		res := sampleResult(t)
		assert.Equal(t, "worksheet.png", res.SourceFile)
		assert.Equal(t, time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC), res.GeneratedAt)
		assert.Equal(t, time.UTC, res.GeneratedAt.Location())
	})

	t.Run("Should normalize a non-UTC timestamp", func(t *testing.T) {
		loc := time.FixedZone("UTC+2", 2*3600)
		res := Assemble(entity.GraderResult{}, "x.png", time.Date(2025, 1, 1, 12, 0, 0, 0, loc))
		assert.Equal(t, time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), res.GeneratedAt)
	})
}

func TestRoundTrip(t *testing.T) {
	t.Run("Should survive marshal-unmarshal-marshal byte for byte", func(t *testing.T) {
		res := sampleResult(t)

		first, err := json.Marshal(res)
		require.NoError(t, err)

		var parsed entity.GradingResult
		require.NoError(t, json.Unmarshal(first, &parsed))
		assert.Equal(t, res, parsed)

		second, err := json.Marshal(parsed)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("Should serialize an absent attempt as null", func(t *testing.T) {
		res := Assemble(entity.GraderResult{}, "x.png", time.Now())
		b, err := json.Marshal(res)
		require.NoError(t, err)
		assert.Contains(t, string(b), `"student_attempt":null`)
	})
}

func TestWriteArtifact(t *testing.T) {
	t.Run("Should write the artifact into the output dir", func(t *testing.T) {
		dir := t.TempDir()
		res := sampleResult(t)

		path, err := WriteArtifact(res, dir)
		require.NoError(t, err)
		assert.Equal(t, dir, filepath.Dir(path))
		assert.True(t, strings.HasPrefix(filepath.Base(path), "grader_output_worksheet_"))
		assert.True(t, strings.HasSuffix(path, ".json"))

		b, err := os.ReadFile(path)
		require.NoError(t, err)
		var parsed entity.GradingResult
		require.NoError(t, json.Unmarshal(b, &parsed))
		assert.Equal(t, res, parsed)
	})

	t.Run("Should slug awkward source names", func(t *testing.T) {
		res := sampleResult(t)
		res.SourceFile = "some dir/uploaded photo (1).png"
		path, err := WriteArtifact(res, t.TempDir())
		require.NoError(t, err)
		assert.Contains(t, filepath.Base(path), "uploaded_photo__1_")
	})

	t.Run("Should fail on an unwritable dir", func(t *testing.T) {
		res := sampleResult(t)
		_, err := WriteArtifact(res, filepath.Join(t.TempDir(), "missing", "nested"))
		assert.Error(t, err)
	})
}
