// Package workspaces provides the saved session browser for the TUI.
package workspaces

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/paperpilot/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/paperpilot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/paperpilot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/paperpilot/internal/core/domain"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driving"
)

// View lists saved workspaces. Enter opens one in the ask view, d deletes it.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	service driving.WorkspaceService

	items    []domain.WorkspaceInfo
	selected int
	loading  bool
	message  string
	err      error
	width    int
	height   int
}

// NewView creates a new workspace browser.
func NewView(s *styles.Styles, km *keymap.KeyMap, service driving.WorkspaceService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:  s,
		keymap:  km,
		service: service,
		width:   80,
		height:  24,
	}
}

// Init loads the workspace list.
func (v *View) Init() tea.Cmd {
	v.loading = true
	v.message = ""
	return v.load()
}

func (v *View) load() tea.Cmd {
	return func() tea.Msg {
		if v.service == nil {
			return messages.WorkspacesLoaded{Err: ErrNoWorkspaceService}
		}
		infos, err := v.service.List()
		return messages.WorkspacesLoaded{Workspaces: infos, Err: err}
	}
}

// Update handles messages for the workspace browser.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.WorkspacesLoaded:
		v.loading = false
		v.err = msg.Err
		v.items = msg.Workspaces
		if v.selected >= len(v.items) {
			v.selected = max(len(v.items)-1, 0)
		}

	case messages.WorkspaceDeleted:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.message = "Deleted " + msg.Filename
		return v, v.load()

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case keymap.Matches(key, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
		}
	case keymap.Matches(key, v.keymap.Down):
		if v.selected < len(v.items)-1 {
			v.selected++
		}
	case keymap.Matches(key, v.keymap.Select):
		if info := v.SelectedWorkspace(); info != nil {
			return v, v.open(info.Filename)
		}
	case keymap.Matches(key, v.keymap.Delete):
		if info := v.SelectedWorkspace(); info != nil {
			return v, v.remove(info.Filename)
		}
	}
	return v, nil
}

func (v *View) open(filename string) tea.Cmd {
	return func() tea.Msg {
		ws, err := v.service.Load(filename)
		return messages.WorkspaceOpened{Workspace: ws, Err: err}
	}
}

func (v *View) remove(filename string) tea.Cmd {
	return func() tea.Msg {
		return messages.WorkspaceDeleted{Filename: filename, Err: v.service.Delete(filename)}
	}
}

// View renders the workspace browser.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Workspaces"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.items) == 0:
		b.WriteString(v.styles.Muted.Render("No workspaces saved. Press ctrl+s in the ask view to save one."))
	default:
		for i, info := range v.items {
			saved := "unknown"
			if !info.CreatedAt.IsZero() {
				saved = info.CreatedAt.Local().Format("2006-01-02 15:04")
			}
			line := fmt.Sprintf("%-28s %s", info.Name, saved)
			if i == v.selected {
				b.WriteString(v.styles.Selected.Render("> " + line))
			} else {
				b.WriteString(v.styles.Normal.Render("  " + line))
			}
			b.WriteString("\n")
		}
	}

	if v.message != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Success.Render(v.message))
	}

	hints := make([]string, 0, 3)
	for _, binding := range v.keymap.WorkspacesHelp() {
		h := binding.Help()
		hints = append(hints, fmt.Sprintf("[%s] %s", h.Key, h.Desc))
	}
	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render(strings.Join(hints, "  ")))

	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Workspaces returns the listed workspaces.
func (v *View) Workspaces() []domain.WorkspaceInfo {
	return v.items
}

// SelectedWorkspace returns the highlighted workspace, or nil if the list is empty.
func (v *View) SelectedWorkspace() *domain.WorkspaceInfo {
	if v.selected < 0 || v.selected >= len(v.items) {
		return nil
	}
	return &v.items[v.selected]
}

// Err returns the last error, if any.
func (v *View) Err() error {
	return v.err
}
