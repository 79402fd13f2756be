package chat

import (
	"fmt"
	"strings"

	"github.com/Pradeep-Chandra-G/Spectron/vectorstore"
)

// Prompt is a fully assembled generation request.
type Prompt struct {
	System  string
	User    string
	Context string
}

const systemWithContext = `You are a helpful assistant answering questions about the user's documents.

Use the following document excerpts to answer the question. Prefer the excerpts over your general knowledge. If the excerpts do not contain the answer, say so and then answer from general knowledge, making clear that the answer did not come from the documents.

Document excerpts:
%s`

const systemNoContext = `You are a helpful assistant answering questions about the user's documents.

No relevant document excerpts were found for this question. Tell the user that nothing in their documents matches the question, then answer from general knowledge if you can, making clear that the answer did not come from the documents.`

// Assemble builds the prompt for a question. With matches present the
// context block holds their chunk texts in retrieval order; with none, the
// no-context template is used so the model doesn't hallucinate sources.
// Assemble is pure: it never touches the store or the model.
func Assemble(question string, matches []vectorstore.Match) Prompt {
	if len(matches) == 0 {
		return Prompt{
			System: systemNoContext,
			User:   question,
		}
	}

	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.Chunk.Content
	}
	contextBlock := strings.Join(texts, "\n\n")

	return Prompt{
		System:  fmt.Sprintf(systemWithContext, contextBlock),
		User:    question,
		Context: contextBlock,
	}
}
