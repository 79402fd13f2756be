package mock

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicVector(t *testing.T) {
	t.Run("same text produces same vector", func(t *testing.T) {
		a := DeterministicVector("the warranty covers accidental damage", 384)
		b := DeterministicVector("the warranty covers accidental damage", 384)
		assert.Equal(t, a, b)
	})

	t.Run("different texts diverge", func(t *testing.T) {
		a := DeterministicVector("first", 384)
		b := DeterministicVector("second", 384)
		assert.NotEqual(t, a, b)
	})

	t.Run("vectors are unit length", func(t *testing.T) {
		for _, text := range []string{"a", "warranty terms", "longer input with several words"} {
			v := DeterministicVector(text, 384)

			var sumSquares float64
			for _, x := range v {
				sumSquares += float64(x) * float64(x)
			}
			assert.InDelta(t, 1.0, math.Sqrt(sumSquares), 1e-3, "norm for %q", text)
		}
	})
}

func TestMockEmbedder_CallCount(t *testing.T) {
	m := NewMockEmbedder()
	ctx := context.Background()

	_, err := m.EmbedText(ctx, "one")
	require.NoError(t, err)
	_, err = m.EmbedTexts(ctx, []string{"two", "three"})
	require.NoError(t, err)

	assert.Equal(t, 2, m.CallCount())

	m.Reset()
	assert.Equal(t, 0, m.CallCount())
}
