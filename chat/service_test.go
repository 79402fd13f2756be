package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pradeep-Chandra-G/Spectron/ai/mock"
	"github.com/Pradeep-Chandra-G/Spectron/core"
	"github.com/Pradeep-Chandra-G/Spectron/storage"
	storagebadger "github.com/Pradeep-Chandra-G/Spectron/storage/badger"
	"github.com/Pradeep-Chandra-G/Spectron/vectorstore"
)

func newTestService(t *testing.T, store *stubStore, generator *mock.MockGenerator) (*Service, storage.ChatMessageRepository) {
	t.Helper()

	docs, chats, backend, err := storagebadger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		docs.Close()
		chats.Close()
		backend.Close()
	})

	retriever, err := NewRetriever(store)
	require.NoError(t, err)

	service, err := NewService(retriever, generator, chats)
	require.NoError(t, err)
	return service, chats
}

func TestAnswer(t *testing.T) {
	ctx := context.Background()
	store := &stubStore{matches: []vectorstore.Match{
		scoredMatch("a", 0.1),
		scoredMatch("b", 0.2),
	}}
	generator := mock.NewMockGenerator()
	service, chats := newTestService(t, store, generator)

	msg, err := service.Answer(ctx, "what does the warranty cover?")
	require.NoError(t, err)
	assert.NotZero(t, msg.Id)
	assert.Equal(t, "what does the warranty cover?", msg.Question)
	assert.NotEmpty(t, msg.Answer)
	assert.Contains(t, msg.Context, "content of a")

	// The generator saw the assembled prompt, not the raw question alone.
	assert.Contains(t, generator.LastSystemPrompt(), "content of a")
	assert.Equal(t, "what does the warranty cover?", generator.LastUserMessage())

	recent, err := chats.RecentMessages(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, msg.Answer, recent[0].Answer)
}

func TestAnswerEmptyQuestion(t *testing.T) {
	service, _ := newTestService(t, &stubStore{}, mock.NewMockGenerator())

	_, err := service.Answer(context.Background(), "   ")
	assert.ErrorIs(t, err, core.ErrEmptyQuestion)
}

func TestAnswerRetrievalFailure(t *testing.T) {
	ctx := context.Background()
	store := &stubStore{err: errors.New("backend down")}
	service, chats := newTestService(t, store, mock.NewMockGenerator())

	msg, err := service.Answer(ctx, "a fine question")
	require.NoError(t, err)
	assert.Equal(t, ApologyAnswer, msg.Answer)

	// The apology is part of the history too.
	recent, err := chats.RecentMessages(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, ApologyAnswer, recent[0].Answer)
}

func TestAnswerGenerationFailure(t *testing.T) {
	ctx := context.Background()
	store := &stubStore{matches: []vectorstore.Match{scoredMatch("a", 0.1)}}
	generator := mock.NewMockGenerator()
	generator.CompleteFunc = func(_ context.Context, _, _ string) (string, error) {
		return "", errors.New("model offline")
	}
	service, chats := newTestService(t, store, generator)

	msg, err := service.Answer(ctx, "a fine question")
	require.NoError(t, err)
	assert.Equal(t, ApologyAnswer, msg.Answer)
	assert.Contains(t, msg.Context, "content of a")

	recent, err := chats.RecentMessages(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
}

func TestAnswerNoMatchesUsesNoContextPrompt(t *testing.T) {
	ctx := context.Background()
	generator := mock.NewMockGenerator()
	service, _ := newTestService(t, &stubStore{}, generator)

	msg, err := service.Answer(ctx, "anything?")
	require.NoError(t, err)
	assert.Empty(t, msg.Context)
	assert.Contains(t, generator.LastSystemPrompt(), "No relevant document excerpts")
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	generator := mock.NewMockGenerator()
	service, _ := newTestService(t, &stubStore{}, generator)

	questions := []string{"first?", "second?", "third?"}
	for _, q := range questions {
		_, err := service.Answer(ctx, q)
		require.NoError(t, err)
	}

	t.Run("newest first", func(t *testing.T) {
		history, err := service.History(ctx, 2)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, "third?", history[0].Question)
		assert.Equal(t, "second?", history[1].Question)
	})

	t.Run("default limit", func(t *testing.T) {
		history, err := service.History(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, history, 3)
	})
}
