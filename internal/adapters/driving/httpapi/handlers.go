package httpapi

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driving"
)

type askRequest struct {
	Question string `json:"question" binding:"required"`
	K        int    `json:"k"`
}

type searchRequest struct {
	Query string `json:"query" binding:"required"`
	K     int    `json:"k"`
}

type hitResponse struct {
	Source   string  `json:"source"`
	Position int     `json:"position"`
	Score    float64 `json:"score"`
	Text     string  `json:"text"`
}

type askResponse struct {
	Question string        `json:"question"`
	Answer   string        `json:"answer"`
	Sources  []hitResponse `json:"sources"`
}

type searchResponse struct {
	Results []hitResponse `json:"results"`
}

type statusResponse struct {
	Generation string    `json:"generation"`
	Model      string    `json:"model"`
	Dimensions int       `json:"dimensions"`
	CreatedAt  time.Time `json:"created_at"`
	Documents  []string  `json:"documents"`
	Passages   int       `json:"passages"`
}

type failureResponse struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

type indexResponse struct {
	Indexed []string          `json:"indexed"`
	Empty   []string          `json:"empty,omitempty"`
	Failed  []failureResponse `json:"failed,omitempty"`
	Status  *statusResponse   `json:"status,omitempty"`
}

func (s *Server) getIndex(c *gin.Context) {
	if s.ports.Indexing == nil {
		abortWithError(c, errNoIndexing)
		return
	}
	status, err := s.ports.Indexing.Status(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStatus(status))
}

// postIndex rebuilds the index from the uploaded "files" parts.
func (s *Server) postIndex(c *gin.Context) {
	if s.ports.Indexing == nil {
		abortWithError(c, errNoIndexing)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes)
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, errorResponse{
				Error: fmt.Sprintf("upload exceeds %d bytes", MaxUploadBytes),
			})
			return
		}
		abortWithError(c, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err))
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		abortWithError(c, fmt.Errorf("%w: no files uploaded", domain.ErrInvalidInput))
		return
	}

	docs := make([]domain.Document, 0, len(files))
	for _, fh := range files {
		data, err := readPart(fh)
		if err != nil {
			abortWithError(c, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, fh.Filename, err))
			return
		}
		docs = append(docs, domain.Document{Name: filepath.Base(fh.Filename), Data: data})
	}

	report, err := s.ports.Indexing.Reindex(c.Request.Context(), docs)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toIndexResponse(report))
}

func (s *Server) postAsk(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err))
		return
	}

	answer, err := s.qaFor(req.K).AnswerWithSources(c.Request.Context(), req.Question)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, askResponse{
		Question: answer.Question,
		Answer:   answer.Text,
		Sources:  toHits(answer.Sources),
	})
}

func (s *Server) postSearch(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err))
		return
	}

	hits, err := s.ports.QA.Search(c.Request.Context(), req.Query, req.K)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, searchResponse{Results: toHits(hits)})
}

func (s *Server) qaFor(k int) driving.QAService {
	if k > 0 && s.ports.QAForK != nil {
		return s.ports.QAForK(k)
	}
	return s.ports.QA
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func toHits(hits []domain.RetrievalHit) []hitResponse {
	out := make([]hitResponse, len(hits))
	for i, hit := range hits {
		out[i] = hitResponse{
			Source:   hit.Passage.Source,
			Position: hit.Passage.Position,
			Score:    hit.Score,
			Text:     hit.Passage.Text,
		}
	}
	return out
}

func toStatus(status domain.IndexStatus) *statusResponse {
	return &statusResponse{
		Generation: status.Generation,
		Model:      status.Model,
		Dimensions: status.Dimensions,
		CreatedAt:  status.CreatedAt,
		Documents:  status.Documents,
		Passages:   status.Passages,
	}
}

func toIndexResponse(report *domain.IndexReport) indexResponse {
	resp := indexResponse{
		Indexed: report.Indexed,
		Empty:   report.Empty,
		Status:  toStatus(report.Status),
	}
	for _, f := range report.Failed {
		resp.Failed = append(resp.Failed, failureResponse{Name: f.Name, Error: f.Err.Error()})
	}
	return resp
}
