package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/Pradeep-Chandra-G/Spectron/core"
	"github.com/Pradeep-Chandra-G/Spectron/storage"
)

// ChatMessageRepository implements storage.ChatMessageRepository for
// BadgerDB.
type ChatMessageRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ChatMessageRepository = (*ChatMessageRepository)(nil)

// NewChatMessageRepository creates a new ChatMessageRepository.
func NewChatMessageRepository(backend *Backend) (*ChatMessageRepository, error) {
	idSeq, err := backend.GetSequence(chatMessageIDSeq)
	if err != nil {
		return nil, err
	}

	return &ChatMessageRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ChatMessageRepository) Close() error {
	return r.idSeq.Release()
}

// AddMessage stores a question/answer exchange.
func (r *ChatMessageRepository) AddMessage(ctx context.Context, msg *core.ChatMessage) (*core.ChatMessage, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		nextID, err := r.idSeq.Next()
		if err != nil {
			return err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if nextID == 0 {
			nextID, err = r.idSeq.Next()
			if err != nil {
				return err
			}
		}
		msg.Id = core.ID(nextID)

		if msg.Timestamp.IsZero() {
			msg.Timestamp = time.Now().UTC()
		}
		if err := core.ValidateChatMessage(msg); err != nil {
			return err
		}

		value, err := storage.MarshalChatMessage(msg)
		if err != nil {
			return err
		}
		if err := tx.Set(makeChatMessageKey(msg.Id), value); err != nil {
			return err
		}

		dateKey := makeChatMessageDateKey(msg.Timestamp, msg.Id)
		if err := tx.Set(dateKey, storage.MarshalID(msg.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return msg, err
}

// RecentMessages retrieves up to limit messages, newest first.
func (r *ChatMessageRepository) RecentMessages(ctx context.Context, limit int) ([]*core.ChatMessage, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.ChatMessage
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(chatMessageDate + ":")
		count := 0
		for iter.Seek(maxDateSeekKey(chatMessageDate)); iter.Valid() && count < limit; iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			var msgID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				msgID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			msg, err := readChatMessage(tx, makeChatMessageKey(msgID))
			if err != nil {
				return err
			}
			if msg != nil {
				results = append(results, msg)
				count++
			}
		}
		return nil
	}, false)

	return results, err
}

// readChatMessage reads a chat message from the transaction. Returns
// nil, nil when the key is absent.
func readChatMessage(tx *badger.Txn, key []byte) (*core.ChatMessage, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var msg *core.ChatMessage
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		msg, unmarshalErr = storage.UnmarshalChatMessage(val)
		return unmarshalErr
	})
	return msg, err
}
