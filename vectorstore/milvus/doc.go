// Package milvus backs the vector store with a Milvus collection using an
// IVF_FLAT index over L2 distance.
package milvus
