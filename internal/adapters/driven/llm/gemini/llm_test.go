package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
)

func newTestGenerator(t *testing.T, handler http.HandlerFunc) *Generator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g, err := NewGenerator(context.Background(), Config{APIKey: "test-key", BaseURL: srv.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)
	return g
}

func TestNewGenerator_RequiresKey(t *testing.T) {
	_, err := NewGenerator(context.Background(), Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestGenerate_Success(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-flash:generateContent"), r.URL.Path)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Dataset X "},{"text":"[doc1.pdf]"}]}}]}`))
	})

	out, err := g.Generate(context.Background(), "What dataset was used?")
	require.NoError(t, err)
	assert.Equal(t, "Dataset X [doc1.pdf]", out)
	assert.Equal(t, "gemini-2.5-flash", g.ModelName())
}

func TestGenerate_ClassifiesErrors(t *testing.T) {
	tests := []struct {
		status int
		want   domain.FailureKind
	}{
		{http.StatusTooManyRequests, domain.FailureOverloaded},
		{http.StatusServiceUnavailable, domain.FailureOverloaded},
		{http.StatusBadRequest, domain.FailureInvalidInput},
		{http.StatusGatewayTimeout, domain.FailureTimeout},
		{http.StatusForbidden, domain.FailureUnknown},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			g := newTestGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = fmt.Fprintf(w, `{"error":{"code":%d,"message":"failure"}}`, tt.status)
			})

			_, err := g.Generate(context.Background(), "prompt")
			assert.Equal(t, tt.want, domain.KindOf(err))
		})
	}
}

func TestGenerate_BlockedPrompt(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
	})

	_, err := g.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGenerate_NoCandidates(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := g.Generate(context.Background(), "prompt")
	assert.Equal(t, domain.FailureUnknown, domain.KindOf(err))
}
