package mcp

import (
	"context"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
)

// mockQAService implements driving.QAService for testing.
type mockQAService struct {
	answer    *domain.Answer
	hits      []domain.RetrievalHit
	err       error
	lastQuery string
	lastK     int
}

func (m *mockQAService) Answer(ctx context.Context, question string) (string, error) {
	a, err := m.AnswerWithSources(ctx, question)
	if err != nil {
		return "", err
	}
	return a.Text, nil
}

func (m *mockQAService) AnswerWithSources(_ context.Context, question string) (*domain.Answer, error) {
	m.lastQuery = question
	if m.err != nil {
		return nil, m.err
	}
	if m.answer != nil {
		return m.answer, nil
	}
	return &domain.Answer{Question: question}, nil
}

func (m *mockQAService) Search(_ context.Context, query string, k int) ([]domain.RetrievalHit, error) {
	m.lastQuery = query
	m.lastK = k
	return m.hits, m.err
}

// mockIndexingService implements driving.IndexingService for testing.
type mockIndexingService struct {
	report  *domain.IndexReport
	status  domain.IndexStatus
	err     error
	lastDir string
}

func (m *mockIndexingService) Reindex(_ context.Context, _ []domain.Document) (*domain.IndexReport, error) {
	return m.report, m.err
}

func (m *mockIndexingService) ReindexDir(_ context.Context, dir string) (*domain.IndexReport, error) {
	m.lastDir = dir
	return m.report, m.err
}

func (m *mockIndexingService) Documents(_ string) ([]domain.Document, error) {
	return nil, m.err
}

func (m *mockIndexingService) Status(_ context.Context) (domain.IndexStatus, error) {
	return m.status, m.err
}

func (m *mockIndexingService) NeedsReindex(_ context.Context, _ []domain.Document) (bool, error) {
	return false, m.err
}

// mockWorkspaceService implements driving.WorkspaceService for testing.
type mockWorkspaceService struct {
	workspaces map[string]*domain.Workspace
	infos      []domain.WorkspaceInfo
	err        error
}

func (m *mockWorkspaceService) Save(_ string, _ domain.Session) (string, error) {
	return "", m.err
}

func (m *mockWorkspaceService) Load(filename string) (*domain.Workspace, error) {
	if m.err != nil {
		return nil, m.err
	}
	ws, ok := m.workspaces[filename]
	if !ok {
		return nil, domain.ErrWorkspaceNotFound
	}
	return ws, nil
}

func (m *mockWorkspaceService) List() ([]domain.WorkspaceInfo, error) {
	return m.infos, m.err
}

func (m *mockWorkspaceService) Delete(_ string) error {
	return m.err
}

func (m *mockWorkspaceService) Clear() (int, error) {
	return 0, m.err
}

func (m *mockWorkspaceService) Export(_, _ string) ([]byte, error) {
	return nil, m.err
}

func (m *mockWorkspaceService) Import(_ string, _ []byte) (string, error) {
	return "", m.err
}
