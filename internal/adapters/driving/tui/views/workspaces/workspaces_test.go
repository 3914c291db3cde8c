package workspaces

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperpilot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/paperpilot/internal/core/domain"
)

type mockWorkspaceService struct {
	infos   []domain.WorkspaceInfo
	listErr error
	deleted []string
	loaded  string
}

func (m *mockWorkspaceService) Save(string, domain.Session) (string, error) { return "", nil }

func (m *mockWorkspaceService) Load(filename string) (*domain.Workspace, error) {
	m.loaded = filename
	return &domain.Workspace{Name: "loaded", Version: domain.WorkspaceVersion}, nil
}

func (m *mockWorkspaceService) List() ([]domain.WorkspaceInfo, error) {
	return m.infos, m.listErr
}

func (m *mockWorkspaceService) Delete(filename string) error {
	m.deleted = append(m.deleted, filename)
	return nil
}

func (m *mockWorkspaceService) Clear() (int, error)                        { return 0, nil }
func (m *mockWorkspaceService) Export(string, string) ([]byte, error)      { return nil, nil }
func (m *mockWorkspaceService) Import(n string, _ []byte) (string, error) { return n, nil }

func sampleInfos() []domain.WorkspaceInfo {
	return []domain.WorkspaceInfo{
		{Filename: "survey_20260102_100000.json", Name: "survey", CreatedAt: time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)},
		{Filename: "old.json", Name: "Unnamed"},
	}
}

func loadedView(t *testing.T, svc *mockWorkspaceService) *View {
	t.Helper()
	v := NewView(nil, nil, svc)
	cmd := v.Init()
	require.NotNil(t, cmd)
	v.Update(cmd())
	return v
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, nil)

	require.NotNil(t, v)
	assert.Nil(t, v.SelectedWorkspace())
}

func TestView_Init_Loads(t *testing.T) {
	v := loadedView(t, &mockWorkspaceService{infos: sampleInfos()})

	assert.Len(t, v.Workspaces(), 2)
	require.NotNil(t, v.SelectedWorkspace())
	assert.Equal(t, "survey", v.SelectedWorkspace().Name)

	out := v.View()
	assert.Contains(t, out, "survey")
	assert.Contains(t, out, "unknown")
}

func TestView_Init_NoService(t *testing.T) {
	v := NewView(nil, nil, nil)

	v.Update(v.Init()())

	assert.ErrorIs(t, v.Err(), ErrNoWorkspaceService)
	assert.Contains(t, v.View(), "Error")
}

func TestView_Init_ListError(t *testing.T) {
	v := loadedView(t, &mockWorkspaceService{listErr: errors.New("permission denied")})

	assert.Contains(t, v.View(), "permission denied")
}

func TestView_Empty(t *testing.T) {
	v := loadedView(t, &mockWorkspaceService{})

	assert.Contains(t, v.View(), "No workspaces saved")
}

func TestView_Navigation(t *testing.T) {
	v := loadedView(t, &mockWorkspaceService{infos: sampleInfos()})

	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "old.json", v.SelectedWorkspace().Filename)

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, "survey_20260102_100000.json", v.SelectedWorkspace().Filename)
}

func TestView_EnterOpensWorkspace(t *testing.T) {
	svc := &mockWorkspaceService{infos: sampleInfos()}
	v := loadedView(t, svc)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	opened, ok := cmd().(messages.WorkspaceOpened)
	require.True(t, ok)
	assert.Equal(t, "survey_20260102_100000.json", svc.loaded)
	assert.Equal(t, "loaded", opened.Workspace.Name)
}

func TestView_DeleteReloads(t *testing.T) {
	svc := &mockWorkspaceService{infos: sampleInfos()}
	v := loadedView(t, svc)
	v.Update(tea.KeyMsg{Type: tea.KeyDown})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, []string{"old.json"}, svc.deleted)

	svc.infos = svc.infos[:1]
	_, reload := v.Update(msg)
	require.NotNil(t, reload)
	v.Update(reload())

	assert.Len(t, v.Workspaces(), 1)
	assert.Equal(t, "survey", v.SelectedWorkspace().Name)
	assert.Contains(t, v.View(), "Deleted old.json")
}

func TestView_EscBack(t *testing.T) {
	v := NewView(nil, nil, &mockWorkspaceService{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_EnterOnEmptyListDoesNothing(t *testing.T) {
	v := loadedView(t, &mockWorkspaceService{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
}
