package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
)

// ErrMissingQAService is returned when the QA service is not provided.
var ErrMissingQAService = errors.New("httpapi: QA service is required")

// errNoIndexing is reported when uploads arrive but no indexing service is wired.
var errNoIndexing = errors.New("indexing is not enabled on this server")

// retryAfterSeconds is sent with 503 responses for transient model failures.
const retryAfterSeconds = 10

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error    string `json:"error"`
	Kind     string `json:"kind,omitempty"`
	Guidance string `json:"guidance,omitempty"`
}

// statusFor maps a domain error to its HTTP status.
func statusFor(err error) int {
	var genErr *domain.GenerationError
	switch {
	case errors.Is(err, errNoIndexing):
		return http.StatusNotImplemented
	case errors.Is(err, domain.ErrIndexNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmbeddingMismatch):
		return http.StatusConflict
	case errors.As(err, &genErr) && genErr.Kind == domain.FailureInvalidInput:
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrOverloaded), errors.Is(err, domain.ErrTimeout), errors.As(err, &genErr):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrLLMUnavailable), errors.Is(err, domain.ErrEmbeddingUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrNoPassages), errors.Is(err, domain.ErrExtraction):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// abortWithError writes err as JSON and stops the handler chain.
func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusServiceUnavailable {
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
	}

	resp := errorResponse{
		Error:    err.Error(),
		Guidance: domain.Guidance(err),
	}
	var genErr *domain.GenerationError
	if errors.As(err, &genErr) {
		resp.Kind = genErr.Kind.String()
	}
	c.AbortWithStatusJSON(status, resp)
}
