package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/paperpilot/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/paperpilot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/paperpilot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/paperpilot/internal/adapters/driving/tui/views/ask"
	"github.com/custodia-labs/paperpilot/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/paperpilot/internal/adapters/driving/tui/views/workspaces"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	menuView       *menu.View
	askView        *ask.View
	workspacesView *workspaces.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
// It opens on the ask view.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:          ports,
		ctx:            context.Background(),
		styles:         s,
		keymap:         km,
		menuView:       menu.NewView(s),
		askView:        ask.NewView(s, km, ports.QA, ports.Indexing, ports.Workspace),
		workspacesView: workspaces.NewView(s, km, ports.Workspace),
		currentView:    messages.ViewAsk,
	}, nil
}

// WithContext sets the context used for service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.askView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("paperpilot"),
		a.askView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a, a.updateCurrent(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewWorkspaces {
			return a, a.workspacesView.Init()
		}
		return a, nil

	case messages.WorkspaceOpened:
		if msg.Err != nil {
			a.err = msg.Err
			a.askView.Update(messages.ErrorOccurred{Err: msg.Err})
		} else {
			a.err = nil
			a.askView.Restore(msg.Workspace)
		}
		a.currentView = messages.ViewAsk
		return a, nil

	case messages.AnswerReceived, messages.IndexStatusLoaded, messages.WorkspaceSaved:
		a.askView, cmd = a.askView.Update(msg)
		a.err = a.askView.Err()
		return a, cmd

	case messages.WorkspacesLoaded, messages.WorkspaceDeleted:
		a.workspacesView, cmd = a.workspacesView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, a.updateCurrent(msg)

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.updateCurrent(msg)
}

func (a *App) updateCurrent(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewAsk:
		a.askView, cmd = a.askView.Update(msg)
	case messages.ViewWorkspaces:
		a.workspacesView, cmd = a.workspacesView.Update(msg)
	case messages.ViewHelp:
		if k, ok := msg.(tea.KeyMsg); ok && keymap.Matches(k.String(), a.keymap.Back) {
			a.currentView = messages.ViewMenu
		}
	}
	return cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewMenu:
		return a.menuView.View()
	case messages.ViewWorkspaces:
		return a.workspacesView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.askView.View()
	}
}

func (a *App) viewHelp() string {
	return `Help

Ask:
  (type)      Enter a question
  enter       Ask
  tab         Move between the question box and the sources
  j/k, ↑/↓    Browse sources
  pgup/pgdn   Scroll the transcript
  ctrl+s      Save the session as a workspace
  esc         Menu

Workspaces:
  j/k, ↑/↓    Navigate
  enter       Open in the ask view
  d           Delete
  esc         Menu

  ctrl+c      Quit

[esc] back to menu`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// AskView returns the question and answer view.
func (a *App) AskView() *ask.View {
	return a.askView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.askView.SetDimensions(width, height)
	a.workspacesView.SetDimensions(width, height)
}
