package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pradeep-Chandra-G/Spectron/ai/mock"
	"github.com/Pradeep-Chandra-G/Spectron/core"
	"github.com/Pradeep-Chandra-G/Spectron/vectorstore"
)

func testChunk(docID core.ID, index int, content string) core.Chunk {
	return core.Chunk{
		ChunkID:     core.MakeChunkID(docID, index),
		DocumentID:  docID,
		Index:       index,
		TotalChunks: 3,
		Content:     content,
		FileType:    "txt",
		UploadedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewRequiresEmbedder(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestAddAndQuery(t *testing.T) {
	ctx := context.Background()
	s, err := New(mock.NewMockEmbedder())
	require.NoError(t, err)

	chunks := []core.Chunk{
		testChunk(1, 0, "the solar panel converts sunlight into electricity"),
		testChunk(1, 1, "battery storage smooths out cloudy afternoons"),
		testChunk(1, 2, "the inverter feeds surplus power back to the grid"),
	}
	require.NoError(t, s.Add(ctx, chunks))
	assert.Equal(t, 3, s.Len())

	matches, err := s.Query(ctx, "the solar panel converts sunlight into electricity", 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	// An exact text match embeds to the same vector, so it must rank first
	// with distance zero.
	assert.Equal(t, "1_chunk_0", matches[0].Chunk.ChunkID)
	assert.InDelta(t, 0, matches[0].Distance, 1e-5)
	assert.True(t, matches[0].HasDistance)
	assert.LessOrEqual(t, matches[0].Distance, matches[1].Distance)
}

func TestAddReplacesExistingChunk(t *testing.T) {
	ctx := context.Background()
	s, err := New(mock.NewMockEmbedder())
	require.NoError(t, err)

	require.NoError(t, s.Add(ctx, []core.Chunk{testChunk(1, 0, "first version")}))
	require.NoError(t, s.Add(ctx, []core.Chunk{testChunk(1, 0, "second version")}))
	assert.Equal(t, 1, s.Len())

	matches, err := s.Query(ctx, "second version", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "second version", matches[0].Chunk.Content)
}

func TestAddEmptyIsNoop(t *testing.T) {
	s, err := New(mock.NewMockEmbedder())
	require.NoError(t, err)
	require.NoError(t, s.Add(context.Background(), nil))
	assert.Equal(t, 0, s.Len())
}

func TestAddEmbedderFailure(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(_ context.Context, _ []string) ([][]float32, error) {
		return nil, errors.New("model offline")
	}
	s, err := New(embedder)
	require.NoError(t, err)

	err = s.Add(context.Background(), []core.Chunk{testChunk(1, 0, "text")})
	assert.ErrorIs(t, err, vectorstore.ErrStoreWrite)
	assert.Equal(t, 0, s.Len())
}

func TestQueryTopKValidation(t *testing.T) {
	s, err := New(mock.NewMockEmbedder())
	require.NoError(t, err)

	_, err = s.Query(context.Background(), "anything", 0)
	assert.ErrorIs(t, err, vectorstore.ErrInvalidTopK)
}

func TestQueryFewerThanTopK(t *testing.T) {
	ctx := context.Background()
	s, err := New(mock.NewMockEmbedder())
	require.NoError(t, err)

	require.NoError(t, s.Add(ctx, []core.Chunk{testChunk(1, 0, "only one chunk")}))
	matches, err := s.Query(ctx, "query", 5)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestDeleteByDocument(t *testing.T) {
	ctx := context.Background()
	s, err := New(mock.NewMockEmbedder())
	require.NoError(t, err)

	var chunks []core.Chunk
	for i := 0; i < 3; i++ {
		chunks = append(chunks, testChunk(1, i, fmt.Sprintf("doc one chunk %d", i)))
	}
	chunks = append(chunks, testChunk(2, 0, "doc two chunk"))
	require.NoError(t, s.Add(ctx, chunks))

	require.NoError(t, s.DeleteByDocument(ctx, 1))
	assert.Equal(t, 1, s.Len())

	t.Run("unknown document is a no-op", func(t *testing.T) {
		require.NoError(t, s.DeleteByDocument(ctx, 99))
		assert.Equal(t, 1, s.Len())
	})
}

func TestCosineDistance(t *testing.T) {
	t.Run("identical vectors", func(t *testing.T) {
		assert.InDelta(t, 0, cosineDistance([]float32{1, 0}, []float32{1, 0}), 1e-6)
	})
	t.Run("orthogonal vectors", func(t *testing.T) {
		assert.InDelta(t, 1, cosineDistance([]float32{1, 0}, []float32{0, 1}), 1e-6)
	})
	t.Run("opposite vectors", func(t *testing.T) {
		assert.InDelta(t, 2, cosineDistance([]float32{1, 0}, []float32{-1, 0}), 1e-6)
	})
	t.Run("mismatched lengths", func(t *testing.T) {
		assert.Equal(t, float32(1), cosineDistance([]float32{1}, []float32{1, 0}))
	})
}
