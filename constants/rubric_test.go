package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRubricComponents(t *testing.T) {
	t.Run("Should list the fixed rubric in report order", func(t *testing.T) {
		assert.Equal(t, []string{"understanding", "execution", "accuracy"}, RubricComponents())
	})
}

func TestCanonicalComponent(t *testing.T) {
	t.Run("Should match canonical names case-insensitively", func(t *testing.T) {
		c, ok := CanonicalComponent(" Understanding ")
		assert.True(t, ok)
		assert.Equal(t, Understanding, c)
	})

	t.Run("Should map synonyms onto the rubric", func(t *testing.T) {
		cases := map[string]Component{
			"comprehension": Understanding,
			"method":        Execution,
			"working":       Execution,
			"correctness":   Accuracy,
			"Final Answer":  Accuracy,
		}
		for in, want := range cases {
			c, ok := CanonicalComponent(in)
			assert.True(t, ok, in)
			assert.Equal(t, want, c, in)
		}
	})

	t.Run("Should reject unknown labels", func(t *testing.T) {
		_, ok := CanonicalComponent("neatness")
		assert.False(t, ok)
		_, ok = CanonicalComponent("")
		assert.False(t, ok)
	})
}

func TestFileConstants(t *testing.T) {
	t.Run("Should accept the allowed formats only", func(t *testing.T) {
		assert.True(t, IsAllowedExt(".PNG"))
		assert.True(t, IsAllowedExt("jpg"))
		assert.False(t, IsAllowedExt(".gif"))
		assert.False(t, IsAllowedExt(".pdf"))

		assert.True(t, IsAllowedMIME("image/png"))
		assert.True(t, IsAllowedMIME("image/x-ms-bmp"))
		assert.True(t, IsAllowedMIME("IMAGE/JPEG; charset=binary"))
		assert.False(t, IsAllowedMIME("application/pdf"))
	})
}
