package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessingStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to ProcessingStatus
		ok       bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusCompleted, false},
		{StatusPending, StatusFailed, false},
		{StatusProcessing, StatusCompleted, true},
		{StatusProcessing, StatusFailed, true},
		{StatusProcessing, StatusPending, false},
		{StatusCompleted, StatusProcessing, false},
		{StatusCompleted, StatusFailed, false},
		{StatusFailed, StatusProcessing, false},
		{StatusFailed, StatusCompleted, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestProcessingStatus_Terminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
}

func TestMakeChunkID(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, MakeChunkID(42, 0), MakeChunkID(42, 0))
		assert.Equal(t, "42_chunk_7", MakeChunkID(42, 7))
	})

	t.Run("distinct per document and index", func(t *testing.T) {
		assert.NotEqual(t, MakeChunkID(1, 0), MakeChunkID(2, 0))
		assert.NotEqual(t, MakeChunkID(1, 0), MakeChunkID(1, 1))
	})

	t.Run("negative index panics", func(t *testing.T) {
		assert.Panics(t, func() { MakeChunkID(1, -1) })
	})
}

func TestTruncateErrorBasic(t *testing.T) {
	assert.Equal(t, "short", TruncateError("short"))

	long := make([]byte, MaxErrorMessageLen*2)
	for i := range long {
		long[i] = 'x'
	}
	got := TruncateError(string(long))
	require.Len(t, got, MaxErrorMessageLen)
}
