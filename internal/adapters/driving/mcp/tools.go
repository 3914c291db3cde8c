package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed papers"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string          `json:"answer"`
	Sources []PassageOutput `json:"sources"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the text to find similar passages for"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of passages to return (default 4)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []PassageOutput `json:"results"`
	Count   int             `json:"count"`
}

// PassageOutput represents a single retrieved passage.
type PassageOutput struct {
	Source   string  `json:"source"`
	Position int     `json:"position"`
	Score    float64 `json:"score"`
	Text     string  `json:"text"`
}

// ReindexInput is the input schema for the reindex tool.
type ReindexInput struct {
	Dir string `json:"dir" jsonschema:"directory holding the PDF and text papers to index"`
}

// ReindexOutput is the output schema for the reindex tool.
type ReindexOutput struct {
	Indexed  []string        `json:"indexed"`
	Empty    []string        `json:"empty,omitempty"`
	Failed   []FailureOutput `json:"failed,omitempty"`
	Passages int             `json:"passages"`
}

// FailureOutput describes a document that could not be indexed.
type FailureOutput struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// StatusInput is the (empty) input schema for the index_status tool.
type StatusInput struct{}

// StatusOutput is the output schema for the index_status tool.
type StatusOutput struct {
	Generation string    `json:"generation"`
	Model      string    `json:"model"`
	Dimensions int       `json:"dimensions"`
	CreatedAt  time.Time `json:"created_at"`
	Documents  []string  `json:"documents"`
	Passages   int       `json:"passages"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using only passages from the indexed papers",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find the passages most similar to a query without calling the language model",
	}, s.handleSearch)

	if s.ports.Indexing == nil {
		return
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reindex",
		Description: "Rebuild the index from every supported paper in a directory",
	}, s.handleReindex)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "index_status",
		Description: "Describe the current index: documents, passages and embedding model",
	}, s.handleStatus)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.QA.AnswerWithSources(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, toolError(err)
	}

	return nil, AskOutput{
		Answer:  answer.Text,
		Sources: passageOutputs(answer.Sources),
	}, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	hits, err := s.ports.QA.Search(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, SearchOutput{}, toolError(err)
	}

	return nil, SearchOutput{
		Results: passageOutputs(hits),
		Count:   len(hits),
	}, nil
}

// handleReindex handles the reindex tool invocation.
func (s *Server) handleReindex(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReindexInput,
) (*mcp.CallToolResult, ReindexOutput, error) {
	if s.ports.Indexing == nil {
		return nil, ReindexOutput{}, ErrMissingIndexingService
	}

	report, err := s.ports.Indexing.ReindexDir(ctx, input.Dir)
	if err != nil {
		return nil, ReindexOutput{}, toolError(err)
	}

	output := ReindexOutput{
		Indexed:  report.Indexed,
		Empty:    report.Empty,
		Passages: report.Status.Passages,
	}
	for _, f := range report.Failed {
		output.Failed = append(output.Failed, FailureOutput{Name: f.Name, Error: f.Err.Error()})
	}
	return nil, output, nil
}

// handleStatus handles the index_status tool invocation.
func (s *Server) handleStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	if s.ports.Indexing == nil {
		return nil, StatusOutput{}, ErrMissingIndexingService
	}

	status, err := s.ports.Indexing.Status(ctx)
	if err != nil {
		return nil, StatusOutput{}, toolError(err)
	}
	return nil, statusOutput(status), nil
}

func passageOutputs(hits []domain.RetrievalHit) []PassageOutput {
	out := make([]PassageOutput, len(hits))
	for i, h := range hits {
		out[i] = PassageOutput{
			Source:   h.Passage.Source,
			Position: h.Passage.Position,
			Score:    h.Score,
			Text:     h.Passage.Text,
		}
	}
	return out
}

func statusOutput(status domain.IndexStatus) StatusOutput {
	return StatusOutput{
		Generation: status.Generation,
		Model:      status.Model,
		Dimensions: status.Dimensions,
		CreatedAt:  status.CreatedAt,
		Documents:  status.Documents,
		Passages:   status.Passages,
	}
}
