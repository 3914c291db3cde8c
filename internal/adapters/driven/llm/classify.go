// Package llm holds helpers shared by the generative model adapters.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
)

// maxErrorBody bounds how much of a provider error body is kept.
const maxErrorBody = 512

// KindForStatus maps an HTTP status code to a failure kind.
func KindForStatus(status int) domain.FailureKind {
	switch status {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusBadGateway, 529:
		return domain.FailureOverloaded
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return domain.FailureTimeout
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnprocessableEntity:
		return domain.FailureInvalidInput
	default:
		return domain.FailureUnknown
	}
}

// StatusError builds a classified error from a provider's HTTP error response.
func StatusError(provider string, status int, body []byte) *domain.GenerationError {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody] + "..."
	}
	return domain.NewGenerationError(KindForStatus(status),
		fmt.Errorf("%s error (status %d): %s", provider, status, msg))
}

// TransportError classifies a failure to get any response at all.
// Deadlines and network timeouts are Timeout; cancellation and everything
// else is Unknown.
func TransportError(provider string, err error) *domain.GenerationError {
	kind := domain.FailureUnknown
	var nerr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = domain.FailureTimeout
	case errors.As(err, &nerr) && nerr.Timeout():
		kind = domain.FailureTimeout
	}
	return domain.NewGenerationError(kind, fmt.Errorf("%s: send request: %w", provider, err))
}

// Classify wraps an unclassified error, keeping an existing classification.
func Classify(provider string, err error) error {
	if err == nil {
		return nil
	}
	var genErr *domain.GenerationError
	if errors.As(err, &genErr) {
		return err
	}
	return TransportError(provider, err)
}
