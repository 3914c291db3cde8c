package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	// Generation requests rejected as too large are reported with this error.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIndexNotFound indicates no vector index has been built yet.
	// Question answering and search require a successful reindex first.
	ErrIndexNotFound = errors.New("index not found")

	// ErrExtraction indicates text could not be extracted from a document.
	// Reported per document; other documents in the batch still index.
	ErrExtraction = errors.New("text extraction failed")

	// ErrStorage indicates the vector index could not be read or written.
	ErrStorage = errors.New("index storage failed")

	// ErrNoPassages indicates a reindex produced no passages to store.
	// The existing index is left untouched.
	ErrNoPassages = errors.New("no passages to index")

	// ErrEmbeddingMismatch indicates the index was built with a different
	// embedding model or vector size than the one configured now.
	ErrEmbeddingMismatch = errors.New("embedding model mismatch")

	// ErrLLMUnavailable indicates the generative model is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrOverloaded indicates the model service is temporarily saturated.
	ErrOverloaded = errors.New("model overloaded")

	// ErrTimeout indicates a model call exceeded its deadline.
	ErrTimeout = errors.New("model call timed out")

	// ErrWorkspaceNotFound indicates the named workspace does not exist.
	ErrWorkspaceNotFound = errors.New("workspace not found")
)

// FailureKind classifies a generation failure.
type FailureKind string

// Generation failure kinds.
const (
	// FailureOverloaded means the provider is saturated (HTTP 429/503).
	FailureOverloaded FailureKind = "overloaded"

	// FailureTimeout means the call exceeded its deadline.
	FailureTimeout FailureKind = "timeout"

	// FailureInvalidInput means the request was rejected as malformed or too large.
	FailureInvalidInput FailureKind = "invalid_input"

	// FailureUnknown covers every other provider failure.
	FailureUnknown FailureKind = "unknown"
)

// Retryable reports whether a failure of this kind is worth retrying.
// Unknown failures are treated as transient.
func (k FailureKind) Retryable() bool {
	return k != FailureInvalidInput
}

// String returns the string representation.
func (k FailureKind) String() string {
	return string(k)
}

// GenerationError is a classified failure from a generative model call.
type GenerationError struct {
	// Kind classifies the failure.
	Kind FailureKind

	// Attempts is the number of calls made before giving up.
	Attempts int

	// Exhausted is true when the retry budget ran out.
	Exhausted bool

	// Err is the underlying provider error.
	Err error
}

// NewGenerationError wraps err with the given failure kind.
func NewGenerationError(kind FailureKind, err error) *GenerationError {
	return &GenerationError{Kind: kind, Attempts: 1, Err: err}
}

func (e *GenerationError) Error() string {
	switch {
	case e.Exhausted:
		return fmt.Sprintf("generation failed: %s after %d attempts: %v", e.Kind, e.Attempts, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("generation failed: %s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("generation failed: %s", e.Kind)
	}
}

// Unwrap returns the underlying provider error.
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error that corresponds to the failure kind.
func (e *GenerationError) Is(target error) bool {
	switch target {
	case ErrOverloaded:
		return e.Kind == FailureOverloaded
	case ErrTimeout:
		return e.Kind == FailureTimeout
	case ErrInvalidInput:
		return e.Kind == FailureInvalidInput
	}
	return false
}

// KindOf returns the failure kind carried by err, or FailureUnknown.
func KindOf(err error) FailureKind {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Kind
	}
	switch {
	case errors.Is(err, ErrOverloaded):
		return FailureOverloaded
	case errors.Is(err, ErrTimeout):
		return FailureTimeout
	case errors.Is(err, ErrInvalidInput):
		return FailureInvalidInput
	}
	return FailureUnknown
}

// User-facing guidance for terminal failures.
const (
	GuidanceNoIndex    = "No documents indexed yet. Index your documents first (paperpilot index <dir>)."
	GuidanceTransient  = "The model service is busy or slow. Wait a moment and retry, or reduce the input size."
	GuidanceTooLarge   = "The request was rejected as too large or malformed. Shorten the input and try again."
	GuidanceExtraction = "The PDF could not be read. Check the file is a valid, text-based PDF."
	GuidanceStorage    = "The index could not be read or written. Check disk space and permissions, then re-index."
	GuidanceMismatch   = "The index was built with a different embedding model. Re-index your documents."
)

// Guidance returns the corrective action for a terminal error.
// Returns an empty string when no specific advice applies.
func Guidance(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrIndexNotFound):
		return GuidanceNoIndex
	case errors.Is(err, ErrEmbeddingMismatch):
		return GuidanceMismatch
	case errors.Is(err, ErrExtraction):
		return GuidanceExtraction
	case errors.Is(err, ErrStorage):
		return GuidanceStorage
	}

	var genErr *GenerationError
	if errors.As(err, &genErr) {
		if genErr.Kind == FailureInvalidInput {
			return GuidanceTooLarge
		}
		return GuidanceTransient
	}
	if errors.Is(err, ErrInvalidInput) {
		return GuidanceTooLarge
	}
	return ""
}
