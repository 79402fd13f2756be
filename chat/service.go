package chat

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Pradeep-Chandra-G/Spectron/ai"
	"github.com/Pradeep-Chandra-G/Spectron/core"
	"github.com/Pradeep-Chandra-G/Spectron/storage"
)

// ApologyAnswer is the fixed answer returned when any stage of answering
// fails. The exchange is still persisted so the history reflects what the
// user actually saw.
const ApologyAnswer = "I'm sorry, I wasn't able to answer your question right now. Please try again in a moment."

// DefaultHistoryLimit is how many exchanges History returns when the caller
// doesn't say.
const DefaultHistoryLimit = 20

// Service answers questions over the ingested documents and keeps the
// exchange history.
type Service struct {
	retriever *Retriever
	generator ai.Generator
	messages  storage.ChatMessageRepository
	logger    *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger used by the service.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger.With("component", "chat")
		}
	}
}

// NewService creates a chat service.
func NewService(
	retriever *Retriever,
	generator ai.Generator,
	messages storage.ChatMessageRepository,
	opts ...ServiceOption,
) (*Service, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}
	if messages == nil {
		return nil, ErrMessageRepositoryRequired
	}
	s := &Service{
		retriever: retriever,
		generator: generator,
		messages:  messages,
		logger:    slog.Default().With("component", "chat"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Answer retrieves relevant chunks, assembles a prompt, and generates an
// answer. Every exchange is persisted, including the apology produced when
// retrieval or generation fails; only an empty question is an error.
func (s *Service) Answer(ctx context.Context, question string) (*core.ChatMessage, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, core.ErrEmptyQuestion
	}

	matches, err := s.retriever.Retrieve(ctx, question)
	if err != nil {
		s.logger.Error("error retrieving chunks", "err", err)
		return s.apologize(ctx, question, ""), nil
	}

	prompt := Assemble(question, matches)

	answer, err := s.generator.Complete(ctx, prompt.System, prompt.User)
	if err != nil {
		s.logger.Error("error generating answer", "err", err)
		return s.apologize(ctx, question, prompt.Context), nil
	}

	return s.persist(ctx, &core.ChatMessage{
		Question: question,
		Answer:   answer,
		Context:  prompt.Context,
	}), nil
}

// History returns the most recent exchanges, newest first. A non-positive
// limit uses DefaultHistoryLimit.
func (s *Service) History(ctx context.Context, limit int) ([]*core.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.messages.RecentMessages(ctx, limit)
}

// apologize builds and persists the fixed apology exchange.
func (s *Service) apologize(ctx context.Context, question, contextBlock string) *core.ChatMessage {
	return s.persist(ctx, &core.ChatMessage{
		Question: question,
		Answer:   ApologyAnswer,
		Context:  contextBlock,
	})
}

// persist stores the exchange. Persistence failures are logged, not
// surfaced: the user already has their answer.
func (s *Service) persist(ctx context.Context, msg *core.ChatMessage) *core.ChatMessage {
	stored, err := s.messages.AddMessage(ctx, msg)
	if err != nil {
		s.logger.Error("error persisting chat message", "err", err)
		return msg
	}
	return stored
}
