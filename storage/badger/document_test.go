package badger

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pradeep-Chandra-G/Spectron/core"
	"github.com/Pradeep-Chandra-G/Spectron/storage"
)

func newTestDocRepo(t *testing.T) storage.DocumentRepository {
	t.Helper()
	docs, chats, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		docs.Close()
		chats.Close()
		backend.Close()
	})
	return docs
}

func pendingDoc(name string, uploadedAt time.Time) *core.Document {
	return &core.Document{
		Filename:     "stored_" + name,
		OriginalName: name,
		ContentType:  "text/plain",
		FileSize:     128,
		FilePath:     "/tmp/uploads/stored_" + name,
		UploadedAt:   uploadedAt,
		Status:       core.StatusPending,
	}
}

func TestAddAndGetDocument(t *testing.T) {
	ctx := context.Background()
	docs := newTestDocRepo(t)

	doc, err := docs.AddDocument(ctx, pendingDoc("notes.txt", time.Now().UTC().Add(-time.Hour)))
	require.NoError(t, err)
	require.NotZero(t, doc.Id)

	got, err := docs.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, doc.Id, got.Id)
	assert.Equal(t, "notes.txt", got.OriginalName)
	assert.Equal(t, core.StatusPending, got.Status)
}

func TestGetDocumentNotFound(t *testing.T) {
	docs := newTestDocRepo(t)
	_, err := docs.GetDocument(context.Background(), 9999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAddDocumentSetsUploadTime(t *testing.T) {
	ctx := context.Background()
	docs := newTestDocRepo(t)

	doc, err := docs.AddDocument(ctx, pendingDoc("a.txt", time.Time{}))
	require.NoError(t, err)
	assert.False(t, doc.UploadedAt.IsZero())
}

func TestListDocumentsNewestFirst(t *testing.T) {
	ctx := context.Background()
	docs := newTestDocRepo(t)

	base := time.Now().UTC().Add(-time.Hour)
	names := []string{"first.txt", "second.txt", "third.txt"}
	for i, name := range names {
		_, err := docs.AddDocument(ctx, pendingDoc(name, base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	listed, err := docs.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "third.txt", listed[0].OriginalName)
	assert.Equal(t, "second.txt", listed[1].OriginalName)
	assert.Equal(t, "first.txt", listed[2].OriginalName)
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	docs := newTestDocRepo(t)

	doc, err := docs.AddDocument(ctx, pendingDoc("doc.txt", time.Now().UTC().Add(-time.Hour)))
	require.NoError(t, err)

	t.Run("pending to processing", func(t *testing.T) {
		updated, err := docs.UpdateStatus(ctx, doc.Id, core.StatusProcessing)
		require.NoError(t, err)
		assert.Equal(t, core.StatusProcessing, updated.Status)
	})

	t.Run("processing to pending is rejected", func(t *testing.T) {
		_, err := docs.UpdateStatus(ctx, doc.Id, core.StatusPending)
		assert.ErrorIs(t, err, core.ErrInvalidTransition)
	})

	t.Run("unknown document", func(t *testing.T) {
		_, err := docs.UpdateStatus(ctx, 9999, core.StatusProcessing)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestSetCompleted(t *testing.T) {
	ctx := context.Background()
	docs := newTestDocRepo(t)

	doc, err := docs.AddDocument(ctx, pendingDoc("doc.txt", time.Now().UTC().Add(-time.Hour)))
	require.NoError(t, err)
	_, err = docs.UpdateStatus(ctx, doc.Id, core.StatusProcessing)
	require.NoError(t, err)

	updated, err := docs.SetCompleted(ctx, doc.Id, 7)
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, updated.Status)
	assert.Equal(t, 7, updated.ChunkCount)

	t.Run("completed is terminal", func(t *testing.T) {
		_, err := docs.UpdateStatus(ctx, doc.Id, core.StatusProcessing)
		assert.ErrorIs(t, err, core.ErrInvalidTransition)
	})
}

func TestSetFailed(t *testing.T) {
	ctx := context.Background()
	docs := newTestDocRepo(t)

	doc, err := docs.AddDocument(ctx, pendingDoc("doc.txt", time.Now().UTC().Add(-time.Hour)))
	require.NoError(t, err)
	_, err = docs.UpdateStatus(ctx, doc.Id, core.StatusProcessing)
	require.NoError(t, err)

	longMsg := strings.Repeat("x", core.MaxErrorMessageLen+500)
	updated, err := docs.SetFailed(ctx, doc.Id, longMsg)
	require.NoError(t, err)
	assert.Equal(t, core.StatusFailed, updated.Status)
	assert.Len(t, updated.ErrorMessage, core.MaxErrorMessageLen)

	got, err := docs.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusFailed, got.Status)
}

func TestDeleteDocument(t *testing.T) {
	ctx := context.Background()
	docs := newTestDocRepo(t)

	doc, err := docs.AddDocument(ctx, pendingDoc("doc.txt", time.Now().UTC().Add(-time.Hour)))
	require.NoError(t, err)

	require.NoError(t, docs.DeleteDocument(ctx, doc.Id))

	_, err = docs.GetDocument(ctx, doc.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	listed, err := docs.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)

	t.Run("unknown document", func(t *testing.T) {
		assert.ErrorIs(t, docs.DeleteDocument(ctx, 9999), storage.ErrNotFound)
	})
}
