// Package vectorstore defines the similarity store contract shared by the
// ingestion and retrieval pipelines. The memory subpackage provides an
// in-process implementation; the milvus subpackage backs the store with a
// Milvus collection.
package vectorstore
