package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pradeep-Chandra-G/Spectron/extract"
)

func testConfig() Config {
	return Config{
		ChunkSize:     20,
		Overlap:       5,
		MinChunkSize:  3,
		MaxChunkSize:  40,
		KeepSeparator: true,
	}
}

func sentenceText(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "Sentence number %d carries a handful of ordinary words. ", i)
	}
	return b.String()
}

func TestConfigValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		require.NoError(t, DefaultConfig().Validate())
	})

	t.Run("rejects zero chunk size", func(t *testing.T) {
		cfg := testConfig()
		cfg.ChunkSize = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects overlap at or above chunk size", func(t *testing.T) {
		cfg := testConfig()
		cfg.Overlap = cfg.ChunkSize
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects max below chunk size", func(t *testing.T) {
		cfg := testConfig()
		cfg.MaxChunkSize = cfg.ChunkSize - 1
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects negative overlap", func(t *testing.T) {
		cfg := testConfig()
		cfg.Overlap = -1
		assert.Error(t, cfg.Validate())
	})
}

func TestSplitEmptyInput(t *testing.T) {
	s, err := New(testConfig())
	require.NoError(t, err)

	t.Run("no segments", func(t *testing.T) {
		_, err := s.Split(nil)
		assert.ErrorIs(t, err, ErrEmptyInput)
	})

	t.Run("whitespace only", func(t *testing.T) {
		_, err := s.Split([]extract.Segment{{Content: "   \n\t  ", Page: 1}})
		assert.ErrorIs(t, err, ErrEmptyInput)
	})
}

func TestSplitDeterministic(t *testing.T) {
	s, err := New(testConfig())
	require.NoError(t, err)

	segs := []extract.Segment{
		{Content: sentenceText(30), Page: 1},
		{Content: sentenceText(12), Page: 2},
	}

	first, err := s.Split(segs)
	require.NoError(t, err)
	second, err := s.Split(segs)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i], second[i], "piece %d differs between runs", i)
	}
}

func TestSplitBounds(t *testing.T) {
	cfg := testConfig()
	s, err := New(cfg)
	require.NoError(t, err)

	pieces, err := s.Split([]extract.Segment{{Content: sentenceText(50), Page: 1}})
	require.NoError(t, err)
	require.NotEmpty(t, pieces)

	for i, p := range pieces {
		n := tokenCount(p.Content)
		assert.LessOrEqual(t, n, cfg.MaxChunkSize, "piece %d exceeds hard bound", i)
		if i < len(pieces)-1 {
			assert.GreaterOrEqual(t, n, cfg.MinChunkSize, "non-final piece %d below minimum", i)
		}
	}
}

func TestSplitBoundsDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	s, err := New(cfg)
	require.NoError(t, err)

	// ~2700 words, enough for several chunks at the shipped size.
	pieces, err := s.Split([]extract.Segment{{Content: sentenceText(300), Page: 1}})
	require.NoError(t, err)
	require.Greater(t, len(pieces), 1)

	for i, p := range pieces {
		n := tokenCount(p.Content)
		assert.LessOrEqual(t, n, cfg.MaxChunkSize, "piece %d exceeds hard bound", i)
		if i < len(pieces)-1 {
			assert.GreaterOrEqual(t, n, cfg.MinChunkSize, "non-final piece %d below minimum", i)
		}
	}

	for i := 1; i < len(pieces); i++ {
		prev := strings.Fields(pieces[i-1].Content)
		tail := strings.Join(prev[len(prev)-cfg.Overlap:], " ")
		assert.True(t, strings.HasPrefix(pieces[i].Content, tail),
			"piece %d does not start with the tail of piece %d", i, i-1)
	}
}

func TestSplitOverlap(t *testing.T) {
	cfg := testConfig()
	s, err := New(cfg)
	require.NoError(t, err)

	pieces, err := s.Split([]extract.Segment{{Content: sentenceText(40), Page: 1}})
	require.NoError(t, err)
	require.Greater(t, len(pieces), 1)

	for i := 1; i < len(pieces); i++ {
		prev := strings.Fields(pieces[i-1].Content)
		tail := strings.Join(prev[len(prev)-cfg.Overlap:], " ")
		assert.True(t, strings.HasPrefix(pieces[i].Content, tail),
			"piece %d does not start with the tail of piece %d", i, i-1)
	}
}

func TestSplitShortInput(t *testing.T) {
	s, err := New(testConfig())
	require.NoError(t, err)

	pieces, err := s.Split([]extract.Segment{{Content: "tiny doc", Page: 1}})
	require.NoError(t, err)
	require.Len(t, pieces, 1)
	assert.Equal(t, "tiny doc", pieces[0].Content)
	assert.Equal(t, 1, pieces[0].Page)
}

func TestSplitForceSplitsOversizedText(t *testing.T) {
	cfg := testConfig()
	s, err := New(cfg)
	require.NoError(t, err)

	// One giant run with no sentence boundary at all.
	words := make([]string, 200)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	pieces, err := s.Split([]extract.Segment{{Content: strings.Join(words, " "), Page: 1}})
	require.NoError(t, err)
	require.Greater(t, len(pieces), 1)

	for i, p := range pieces {
		assert.LessOrEqual(t, tokenCount(p.Content), cfg.MaxChunkSize, "piece %d", i)
	}
}

func TestSplitSegmentsStayApart(t *testing.T) {
	s, err := New(testConfig())
	require.NoError(t, err)

	pieces, err := s.Split([]extract.Segment{
		{Content: "Alpha beta gamma delta epsilon.", Page: 1},
		{Content: "Zeta eta theta iota kappa.", Page: 2},
	})
	require.NoError(t, err)
	require.Len(t, pieces, 2)
	assert.Equal(t, 1, pieces[0].Page)
	assert.Equal(t, 2, pieces[1].Page)
	assert.NotContains(t, pieces[0].Content, "Zeta")
	assert.NotContains(t, pieces[1].Content, "epsilon")
}
