// Package chat implements the retrieval-augmented answer pipeline: fetch
// the chunks most similar to a question, filter them by relevance, assemble
// a prompt, generate a completion, and persist the exchange.
package chat
