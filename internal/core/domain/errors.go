package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyContent indicates an article with empty content reached
	// the chunker. Callers must filter empty articles upstream.
	ErrEmptyContent = errors.New("empty content")

	// ErrDuplicateID indicates a vector record id already exists in
	// the collection. Conflicts are rejected, never overwritten.
	ErrDuplicateID = errors.New("duplicate record id")

	// ErrDimensionMismatch indicates a vector whose dimensionality
	// differs from the collection's configured dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Vectorization and semantic search are disabled.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the generation service is not
	// configured. Grounded answering is disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrVectorStoreUnavailable indicates the vector store is not
	// configured.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")
)

// ServiceError wraps a failure from an external service call
// (embedding, generation, vector store transport). Network, auth and
// quota failures all surface through this type; the caller decides
// whether to retry.
type ServiceError struct {
	// Service names the failing collaborator ("openai-embeddings",
	// "openai-llm", "chroma").
	Service string

	// Err is the underlying failure.
	Err error
}

// NewServiceError wraps err as a failure of the named service.
func NewServiceError(service string, err error) *ServiceError {
	return &ServiceError{Service: service, Err: err}
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

// Unwrap exposes the underlying error to errors.Is / errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// IsServiceError reports whether err is (or wraps) a ServiceError.
func IsServiceError(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}
