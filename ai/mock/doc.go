// Package mock provides test doubles for the ai interfaces.
//
// The mocks default to deterministic behavior (hash-derived embeddings,
// canned completions) and support behavior injection via function fields
// for failure-path testing.
package mock
