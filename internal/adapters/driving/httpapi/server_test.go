package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperpilot/internal/adapters/driven/config/file"
	"github.com/custodia-labs/paperpilot/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/paperpilot/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/paperpilot/internal/core/domain"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driving"
	"github.com/custodia-labs/paperpilot/internal/core/services"
	"github.com/custodia-labs/paperpilot/internal/normalisers/plaintext"
	"github.com/custodia-labs/paperpilot/internal/postprocessors/chunker"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type stubGenerator struct {
	reply string
	err   error
}

func (g *stubGenerator) Generate(context.Context, string) (string, error) { return g.reply, g.err }
func (g *stubGenerator) ModelName() string                                { return "stub" }
func (g *stubGenerator) Ping(context.Context) error                       { return nil }
func (g *stubGenerator) Close() error                                     { return nil }

type fixture struct {
	server    *Server
	generator *stubGenerator
	index     *memory.IndexStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	prompts, err := file.NewPromptStore(t.TempDir())
	require.NoError(t, err)

	f := &fixture{
		generator: &stubGenerator{reply: "Adam was used [a.txt]."},
		index:     memory.NewIndexStore(hashing.NewEmbeddingService(hashing.Config{Dimensions: 128})),
	}
	ports := &Ports{
		QA: services.NewQAService(f.index, f.generator, prompts, 0),
		QAForK: func(k int) driving.QAService {
			return services.NewQAService(f.index, f.generator, prompts, k)
		},
		Indexing: services.NewIndexingService(plaintext.New(), chunker.New(chunker.WithChunkSize(50), chunker.WithOverlap(5)), f.index),
	}

	f.server, err = NewServer(ports)
	require.NoError(t, err)
	return f
}

func (f *fixture) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (f *fixture) postJSON(t *testing.T, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return f.do(t, req)
}

func (f *fixture) upload(t *testing.T, files map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	for name, content := range files {
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/index", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return f.do(t, req)
}

func (f *fixture) indexPapers(t *testing.T) {
	t.Helper()
	rec := f.upload(t, map[string]string{
		"a.txt": "The model was optimised with Adam on the WMT 2014 English-German dataset.",
		"b.md":  "We measure BLEU on newstest2014 and compare with recurrent baselines.",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestNewServer_RequiresQA(t *testing.T) {
	_, err := NewServer(&Ports{})
	assert.ErrorIs(t, err, ErrMissingQAService)

	_, err = NewServer(nil)
	assert.ErrorIs(t, err, ErrMissingQAService)
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGetIndex_NotFound(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/v1/index", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decode[errorResponse](t, rec)
	assert.Equal(t, domain.GuidanceNoIndex, resp.Guidance)
}

func TestPostIndex(t *testing.T) {
	f := newFixture(t)

	rec := f.upload(t, map[string]string{
		"a.txt":     "The model was optimised with Adam on the WMT 2014 English-German dataset.",
		"empty.txt": "   ",
		"bad.txt":   "\xff\xfe",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[indexResponse](t, rec)
	assert.Equal(t, []string{"a.txt"}, resp.Indexed)
	assert.Equal(t, []string{"empty.txt"}, resp.Empty)
	require.Len(t, resp.Failed, 1)
	assert.Equal(t, "bad.txt", resp.Failed[0].Name)
	require.NotNil(t, resp.Status)
	assert.Equal(t, 128, resp.Status.Dimensions)
	assert.Positive(t, resp.Status.Passages)

	status := f.do(t, httptest.NewRequest(http.MethodGet, "/v1/index", nil))
	require.Equal(t, http.StatusOK, status.Code)
	assert.Equal(t, []string{"a.txt"}, decode[statusResponse](t, status).Documents)
}

func TestPostIndex_NoFiles(t *testing.T) {
	f := newFixture(t)

	rec := f.upload(t, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPostIndex_NotMultipart(t *testing.T) {
	f := newFixture(t)

	rec := f.postJSON(t, "/v1/index", `{}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPostIndex_OnlyEmptyDocuments(t *testing.T) {
	f := newFixture(t)

	rec := f.upload(t, map[string]string{"empty.txt": "\n\n"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	_, err := f.index.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)
}

func TestPostIndex_NoIndexingService(t *testing.T) {
	f := newFixture(t)
	f.server.ports.Indexing = nil

	rec := f.upload(t, map[string]string{"a.txt": "text"})

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Contains(t, rec.Body.String(), errNoIndexing.Error())
}

func TestPostAsk(t *testing.T) {
	f := newFixture(t)
	f.indexPapers(t)

	rec := f.postJSON(t, "/v1/ask", `{"question": "Which optimiser was used?"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[askResponse](t, rec)
	assert.Equal(t, "Which optimiser was used?", resp.Question)
	assert.Equal(t, "Adam was used [a.txt].", resp.Answer)
	assert.NotEmpty(t, resp.Sources)
	assert.LessOrEqual(t, len(resp.Sources), domain.DefaultRetrievalK)
}

func TestPostAsk_K(t *testing.T) {
	f := newFixture(t)
	f.indexPapers(t)

	rec := f.postJSON(t, "/v1/ask", `{"question": "Which optimiser was used?", "k": 1}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[askResponse](t, rec).Sources, 1)
}

func TestPostAsk_Errors(t *testing.T) {
	tests := []struct {
		name       string
		index      bool
		genErr     error
		body       string
		wantStatus int
		wantKind   string
		retryAfter bool
	}{
		{
			name:       "missing question",
			index:      true,
			body:       `{}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "malformed json",
			index:      true,
			body:       `{"question":`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "no index",
			body:       `{"question": "why?"}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:  "overloaded",
			index: true,
			genErr: &domain.GenerationError{
				Kind: domain.FailureOverloaded, Attempts: 3, Exhausted: true, Err: errors.New("429"),
			},
			body:       `{"question": "why?"}`,
			wantStatus: http.StatusServiceUnavailable,
			wantKind:   "overloaded",
			retryAfter: true,
		},
		{
			name:       "too large",
			index:      true,
			genErr:     domain.NewGenerationError(domain.FailureInvalidInput, errors.New("400")),
			body:       `{"question": "why?"}`,
			wantStatus: http.StatusRequestEntityTooLarge,
			wantKind:   "invalid_input",
		},
		{
			name:       "unclassified",
			index:      true,
			genErr:     errors.New("boom"),
			body:       `{"question": "why?"}`,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.index {
				f.indexPapers(t)
			}
			f.generator.err = tt.genErr

			rec := f.postJSON(t, "/v1/ask", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			resp := decode[errorResponse](t, rec)
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, tt.wantKind, resp.Kind)
			if tt.retryAfter {
				assert.Equal(t, fmt.Sprint(retryAfterSeconds), rec.Header().Get("Retry-After"))
				assert.Equal(t, domain.GuidanceTransient, resp.Guidance)
			} else {
				assert.Empty(t, rec.Header().Get("Retry-After"))
			}
		})
	}
}

func TestPostSearch(t *testing.T) {
	f := newFixture(t)
	f.indexPapers(t)

	rec := f.postJSON(t, "/v1/search", `{"query": "BLEU newstest2014", "k": 2}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	results := decode[searchResponse](t, rec).Results
	require.Len(t, results, 2)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	assert.NotEmpty(t, results[0].Source)
}

func TestPostSearch_BlankQuery(t *testing.T) {
	f := newFixture(t)
	f.indexPapers(t)

	rec := f.postJSON(t, "/v1/search", `{"query": "   "}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrIndexNotFound, http.StatusNotFound},
		{domain.ErrEmbeddingMismatch, http.StatusConflict},
		{domain.ErrTimeout, http.StatusServiceUnavailable},
		{domain.ErrLLMUnavailable, http.StatusServiceUnavailable},
		{domain.ErrNoPassages, http.StatusUnprocessableEntity},
		{fmt.Errorf("wrap: %w", domain.ErrExtraction), http.StatusUnprocessableEntity},
		{domain.ErrStorage, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- f.server.Run(ctx, "127.0.0.1:0") }()
	cancel()

	assert.NoError(t, <-done)
}
