package milvus

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	valid := Config{Address: "localhost:19530", Collection: "chunks", Dimension: 768}
	require.NoError(t, valid.Validate())

	t.Run("missing address", func(t *testing.T) {
		cfg := valid
		cfg.Address = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing collection", func(t *testing.T) {
		cfg := valid
		cfg.Collection = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive dimension", func(t *testing.T) {
		cfg := valid
		cfg.Dimension = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestTruncate(t *testing.T) {
	t.Run("short string untouched", func(t *testing.T) {
		assert.Equal(t, "abc", truncate("abc", 10))
	})

	t.Run("bounded at limit", func(t *testing.T) {
		assert.Equal(t, "abcde", truncate("abcdefgh", 5))
	})

	t.Run("never splits a rune", func(t *testing.T) {
		s := strings.Repeat("x", 4) + "世界"
		got := truncate(s, 5)
		assert.True(t, utf8.ValidString(got))
		assert.Equal(t, "xxxx", got)
	})
}

func TestChunkIDExpr(t *testing.T) {
	expr := chunkIDExpr([]string{"7_chunk_0", "7_chunk_1"})
	assert.Equal(t, `chunk_id in ["7_chunk_0", "7_chunk_1"]`, expr)
}
