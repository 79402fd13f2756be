package mock

import (
	"context"
	"fmt"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via a function field.
type MockGenerator struct {
	// CompleteFunc is called by Complete if set.
	// If nil, uses default deterministic behavior.
	CompleteFunc func(ctx context.Context, systemPrompt, userMessage string) (string, error)

	callCount int
	lastSys   string
	lastUser  string
}

// NewMockGenerator creates a mock generator with default deterministic
// behavior. Returns concrete type to allow test assertions.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Complete records the prompts and returns a canned answer unless
// CompleteFunc is set.
func (m *MockGenerator) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	m.callCount++
	m.lastSys = systemPrompt
	m.lastUser = userMessage

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, systemPrompt, userMessage)
	}

	return fmt.Sprintf("mock answer to: %s", userMessage), nil
}

// CallCount returns the number of times Complete was called.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// LastSystemPrompt returns the system prompt from the most recent call.
func (m *MockGenerator) LastSystemPrompt() string {
	return m.lastSys
}

// LastUserMessage returns the user message from the most recent call.
func (m *MockGenerator) LastUserMessage() string {
	return m.lastUser
}

// Reset clears the call count, recorded prompts and injected behavior.
func (m *MockGenerator) Reset() {
	m.callCount = 0
	m.lastSys = ""
	m.lastUser = ""
	m.CompleteFunc = nil
}
