// Package ingest provides pipeline orchestration for processing uploaded
// documents.
//
// The Service type manages the ingestion workflow:
//   - Storing the uploaded file and creating a pending document record
//   - Extracting text, chunking, and tagging asynchronously
//   - Embedding and writing chunks to the vector store
//
// Processing runs on a worker pool. Failures during async processing are
// recorded on the document record rather than returned to the uploader.
package ingest
