package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathsight/grader/internal/common"
	"github.com/mathsight/grader/internal/ingest"
)

// stubRunner answers OCR and TSV invocations from canned output.
type stubRunner struct {
	text    string
	tsv     string
	err     error
	lastCmd []string
}

func (s *stubRunner) Run(_ context.Context, _ []byte, name string, args ...string) ([]byte, []byte, error) {
	s.lastCmd = append([]string{name}, args...)
	if s.err != nil {
		return nil, []byte("boom"), s.err
	}
	for _, a := range args {
		if a == "tsv" {
			return []byte(s.tsv), nil, nil
		}
	}
	return []byte(s.text), nil, nil
}

func newStubEngine(r Runner) *TesseractEngine {
	e := NewTesseractEngine(common.ExtractConfig{}, nil)
	e.runner = r
	return e
}

func tsvWithConfs(confs ...string) string {
	var b strings.Builder
	b.WriteString("level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n")
	for _, c := range confs {
		b.WriteString("5\t1\t1\t1\t1\t1\t10\t10\t50\t20\t" + c + "\tword\n")
	}
	return b.String()
}

func TestTesseractEngine(t *testing.T) {
	payload := ingest.ImagePayload{Data: []byte("img"), SourcePath: "w.png"}

	t.Run("Should extract and normalize text", func(t *testing.T) {
		r := &stubRunner{
			text: "Solve 2x+3=7\r\n\r\n\r\n2x = 4 -> x = 2  \n",
			tsv:  tsvWithConfs("96", "88"),
		}
		res, err := newStubEngine(r).Extract(context.Background(), payload)
		require.NoError(t, err)
		assert.Equal(t, "Solve 2x+3=7\n\n2x = 4 -> x = 2", res.Text)
		assert.Equal(t, MethodTesseract, res.Method)
		assert.Greater(t, res.Confidence, float32(0))
		assert.LessOrEqual(t, res.Confidence, float32(1))
	})

	t.Run("Should report extraction failure when the binary fails", func(t *testing.T) {
		r := &stubRunner{err: errors.New("exit status 1")}
		_, err := newStubEngine(r).Extract(context.Background(), payload)
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrExtractionFailure)
	})

	t.Run("Should propagate cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		r := &stubRunner{err: context.Canceled}
		_, err := newStubEngine(r).Extract(ctx, payload)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Should tolerate empty OCR output", func(t *testing.T) {
		r := &stubRunner{text: "", tsv: tsvWithConfs()}
		res, err := newStubEngine(r).Extract(context.Background(), payload)
		require.NoError(t, err)
		assert.Empty(t, res.Text)
	})

	t.Run("Should read confidence from the conf column, not the last", func(t *testing.T) {
		// text column holds a numeric math token; only conf may be averaged
		tsv := "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
			"5\t1\t1\t1\t1\t1\t10\t10\t50\t20\t50\t100\n" +
			"5\t1\t1\t1\t1\t2\t70\t10\t50\t20\t50\t42\n"
		e := newStubEngine(&stubRunner{tsv: tsv})

		conf, warns, err := e.tsvConfidence(context.Background(), payload.Data)
		require.NoError(t, err)
		assert.Empty(t, warns)
		assert.InDelta(t, 0.5, float64(conf), 1e-6)
	})

	t.Run("Should pass the language flag", func(t *testing.T) {
		r := &stubRunner{text: "x", tsv: tsvWithConfs("90")}
		e := NewTesseractEngine(common.ExtractConfig{TesseractLang: "deu"}, nil)
		e.runner = r

		_, err := e.Extract(context.Background(), payload)
		require.NoError(t, err)
		assert.Contains(t, r.lastCmd, "-l")
		assert.Contains(t, r.lastCmd, "deu")
	})
}

func TestHeuristicConfidence(t *testing.T) {
	t.Run("Should score math-looking text higher than prose", func(t *testing.T) {
		math := heuristicConfidence("solve 2x + 3 = 7")
		prose := heuristicConfidence("hello there")
		assert.Greater(t, math, prose)
	})

	t.Run("Should stay within the unit interval", func(t *testing.T) {
		long := strings.Repeat("2x + 3 = 7 solve ", 20)
		c := heuristicConfidence(long)
		assert.LessOrEqual(t, c, float32(1))
		assert.Greater(t, c, float32(0))
	})
}
