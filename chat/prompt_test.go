package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Pradeep-Chandra-G/Spectron/vectorstore"
)

func TestAssembleWithContext(t *testing.T) {
	matches := []vectorstore.Match{
		scoredMatch("a", 0.1),
		scoredMatch("b", 0.2),
	}

	p := Assemble("what is covered?", matches)

	assert.Equal(t, "what is covered?", p.User)
	assert.Equal(t, "content of a\n\ncontent of b", p.Context)
	assert.Contains(t, p.System, "content of a")
	assert.Contains(t, p.System, "content of b")
	assert.NotContains(t, p.System, "No relevant document excerpts")
}

func TestAssembleWithoutContext(t *testing.T) {
	p := Assemble("anything in there?", nil)

	assert.Equal(t, "anything in there?", p.User)
	assert.Empty(t, p.Context)
	assert.Contains(t, p.System, "No relevant document excerpts")
}

func TestAssembleIsPure(t *testing.T) {
	matches := []vectorstore.Match{scoredMatch("a", 0.1)}
	first := Assemble("q", matches)
	second := Assemble("q", matches)
	assert.Equal(t, first, second)
}
