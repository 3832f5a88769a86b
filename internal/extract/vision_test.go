package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathsight/grader/internal/common"
	"github.com/mathsight/grader/internal/ingest"
	"github.com/mathsight/grader/internal/llm"
)

// fakeClient returns a canned completion.
type fakeClient struct {
	content string
	err     error
	lastReq llm.ChatRequest
}

func (f *fakeClient) Complete(_ context.Context, req llm.ChatRequest) (string, error) {
	f.lastReq = req
	return f.content, f.err
}

func TestVisionEngine(t *testing.T) {
	payload := ingest.ImagePayload{
		Data:      []byte{0x89, 0x50},
		MediaType: "image/png",
	}

	t.Run("Should parse the extracted_text reply", func(t *testing.T) {
		c := &fakeClient{content: `{"extracted_text": "Solve 2x+3=7\n2x = 4 -> x = 2"}`}
		res, err := NewVisionEngine(c, "gpt-4o-mini", nil).Extract(context.Background(), payload)
		require.NoError(t, err)
		assert.Equal(t, "Solve 2x+3=7\n2x = 4 -> x = 2", res.Text)
		assert.Equal(t, MethodVision, res.Method)
		assert.Empty(t, res.Warnings)
	})

	t.Run("Should parse a fenced reply", func(t *testing.T) {
		c := &fakeClient{content: "```json\n{\"extracted_text\": \"x+1=2\"}\n```"}
		res, err := NewVisionEngine(c, "", nil).Extract(context.Background(), payload)
		require.NoError(t, err)
		assert.Equal(t, "x+1=2", res.Text)
	})

	t.Run("Should fall back to the raw reply with a warning", func(t *testing.T) {
		c := &fakeClient{content: "The image says: solve 2x+3=7"}
		res, err := NewVisionEngine(c, "", nil).Extract(context.Background(), payload)
		require.NoError(t, err)
		assert.Equal(t, "The image says: solve 2x+3=7", res.Text)
		assert.NotEmpty(t, res.Warnings)
	})

	t.Run("Should accept an empty transcription", func(t *testing.T) {
		c := &fakeClient{content: `{"extracted_text": ""}`}
		res, err := NewVisionEngine(c, "", nil).Extract(context.Background(), payload)
		require.NoError(t, err)
		assert.Empty(t, res.Text)
	})

	t.Run("Should report extraction failure when the call fails", func(t *testing.T) {
		c := &fakeClient{err: errors.New("connection refused")}
		_, err := NewVisionEngine(c, "", nil).Extract(context.Background(), payload)
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrExtractionFailure)
	})

	t.Run("Should propagate cancellation over extraction failure", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		c := &fakeClient{err: context.Canceled}
		_, err := NewVisionEngine(c, "", nil).Extract(ctx, payload)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, common.ErrExtractionFailure)
	})

	t.Run("Should send the image inline exactly once", func(t *testing.T) {
		c := &fakeClient{content: `{"extracted_text": "x"}`}
		_, err := NewVisionEngine(c, "gpt-4o-mini", nil).Extract(context.Background(), payload)
		require.NoError(t, err)

		require.Len(t, c.lastReq.Messages, 2)
		assert.Equal(t, "gpt-4o-mini", c.lastReq.Model)
		parts, ok := c.lastReq.Messages[1].Content.([]map[string]any)
		require.True(t, ok)
		require.Len(t, parts, 2)
		assert.Equal(t, "image_url", parts[1]["type"])
	})
}
