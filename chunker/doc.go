// Package chunker splits extracted document text into bounded, overlapping
// pieces sized for embedding.
package chunker
