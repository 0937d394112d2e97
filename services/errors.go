package services

import "errors"

// Validation errors are returned to the caller as-is and never retried.
var (
	ErrInvalidSubject    = errors.New("invalid subject name")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrInvalidFlashcard  = errors.New("invalid flashcard")
)

var (
	ErrAlreadyExists    = errors.New("subject already exists")
	ErrExtractionFailed = errors.New("text extraction failed")
	// ErrStorage wraps failures reported by the vector store.
	ErrStorage = errors.New("storage error")
	// ErrEmbedding wraps failures reported by the embedding provider.
	ErrEmbedding = errors.New("embedding error")
)
