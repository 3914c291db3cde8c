package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for PaperPilot resources.
	uriScheme = "paperpilot://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource describing the index.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "index",
		Name:        "index",
		Description: "Status of the current passage index",
		MIMEType:    "application/json",
	}, s.handleIndexResource)

	// Static resource for listing saved workspaces.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "workspaces",
		Name:        "workspaces",
		Description: "List of saved research workspaces",
		MIMEType:    "application/json",
	}, s.handleWorkspacesResource)

	// Template for a single workspace.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "workspaces/{filename}",
		Name:        "workspace",
		Description: "A saved research session with its question history",
		MIMEType:    "application/json",
	}, s.handleWorkspaceResource)
}

// handleIndexResource returns the index status, or null when nothing is indexed.
func (s *Server) handleIndexResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Indexing == nil {
		return jsonResult(req.Params.URI, nil)
	}

	status, err := s.ports.Indexing.Status(ctx)
	if errors.Is(err, domain.ErrIndexNotFound) {
		return jsonResult(req.Params.URI, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("reading index status: %w", err)
	}
	return jsonResult(req.Params.URI, statusOutput(status))
}

// handleWorkspacesResource returns a list of all saved workspaces.
func (s *Server) handleWorkspacesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Workspace == nil {
		return jsonResult(req.Params.URI, []any{})
	}

	infos, err := s.ports.Workspace.List()
	if err != nil {
		return nil, fmt.Errorf("listing workspaces: %w", err)
	}

	// Build simplified workspace list.
	type workspaceInfo struct {
		Filename  string    `json:"filename"`
		Name      string    `json:"name"`
		CreatedAt time.Time `json:"created_at"`
		URI       string    `json:"uri"`
	}

	list := make([]workspaceInfo, len(infos))
	for i, info := range infos {
		list[i] = workspaceInfo{
			Filename:  info.Filename,
			Name:      info.Name,
			CreatedAt: info.CreatedAt,
			URI:       uriScheme + "workspaces/" + info.Filename,
		}
	}
	return jsonResult(req.Params.URI, list)
}

// handleWorkspaceResource returns one workspace.
func (s *Server) handleWorkspaceResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Workspace == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	filename := extractWorkspaceName(req.Params.URI)
	if filename == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	ws, err := s.ports.Workspace.Load(filename)
	if errors.Is(err, domain.ErrWorkspaceNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("loading workspace: %w", err)
	}
	return jsonResult(req.Params.URI, ws)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractWorkspaceName extracts the file name from a URI like paperpilot://workspaces/{filename}.
func extractWorkspaceName(uri string) string {
	const prefix = uriScheme + "workspaces/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	name := strings.TrimPrefix(uri, prefix)
	if strings.Contains(name, "/") {
		return ""
	}
	return name
}
