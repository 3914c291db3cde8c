// Package ask provides the question and answer view for the TUI.
package ask

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/paperpilot/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/paperpilot/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/paperpilot/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/paperpilot/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/paperpilot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/paperpilot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/paperpilot/internal/core/domain"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driving"
)

// DefaultWorkspaceName names sessions that were not restored from a workspace.
const DefaultWorkspaceName = "research-session"

// View shows the question box, the transcript of the session and the
// passages behind the latest answer.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.QuestionInput
	transcript viewport.Model
	sources    *list.SourceList
	statusbar  *status.Bar

	qa        driving.QAService
	indexing  driving.IndexingService
	workspace driving.WorkspaceService
	ctx       context.Context

	// session carries the restored workspace fields this view does not edit.
	session       domain.Session
	workspaceName string
	history       []domain.QAExchange
	papers        []string
	pending       string

	width        int
	height       int
	ready        bool
	err          error
	focusSources bool
}

// NewView creates a new ask view. Only qa is required.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	qa driving.QAService,
	indexing driving.IndexingService,
	workspace driving.WorkspaceService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewQuestionInput(s),
		transcript:    viewport.New(80, 10),
		sources:       list.NewSourceList(s),
		statusbar:     status.NewBar(s, km),
		qa:            qa,
		indexing:      indexing,
		workspace:     workspace,
		ctx:           context.Background(),
		workspaceName: DefaultWorkspaceName,
		width:         80,
		height:        24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts the cursor and loads the index summary.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.input.Init(), v.loadIndexStatus())
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.IndexStatusLoaded:
		v.handleIndexStatus(msg)
		return v, nil

	case messages.WorkspaceSaved:
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.statusbar.SetState(status.StateSaved)
		v.statusbar.SetMessage("Saved " + msg.Filename)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()

	switch {
	case keymap.Matches(key, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case keymap.Matches(key, v.keymap.Save):
		return v, v.saveSession()

	case keymap.Matches(key, v.keymap.ToggleFocus):
		v.toggleFocus()
		return v, nil

	case keymap.Matches(key, v.keymap.ScrollUp), keymap.Matches(key, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd
	}

	if v.focusSources {
		v.sources, _ = v.sources.Update(msg)
		return v, nil
	}

	if msg.Type == tea.KeyEnter {
		question := v.input.Question()
		if question == "" || v.pending != "" {
			return v, nil
		}
		v.pending = question
		v.err = nil
		v.input.Reset()
		v.statusbar.SetState(status.StateThinking)
		v.refreshTranscript()
		return v, v.ask(question)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) toggleFocus() {
	if !v.focusSources && v.sources.Count() == 0 {
		return
	}
	v.focusSources = !v.focusSources
	if v.focusSources {
		v.input.Blur()
		v.statusbar.SetState(status.StateSources)
		return
	}
	v.input.Focus()
	v.statusbar.SetState(status.StateReady)
}

func (v *View) ask(question string) tea.Cmd {
	return func() tea.Msg {
		if v.qa == nil {
			return messages.AnswerReceived{Question: question, Err: ErrNoQAService}
		}
		answer, err := v.qa.AnswerWithSources(v.ctx, question)
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.pending = ""
	if msg.Err != nil {
		v.input.SetValue(msg.Question)
		v.setError(msg.Err)
		v.refreshTranscript()
		return
	}

	v.err = nil
	v.history = append(v.history, domain.QAExchange{
		Question: msg.Question,
		Answer:   msg.Answer.Text,
		Sources:  msg.Answer.SourceNames(),
		AskedAt:  time.Now().UTC(),
	})
	v.sources.SetHits(msg.Answer.Sources)
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage(fmt.Sprintf("%d passages retrieved", len(msg.Answer.Sources)))
	v.refreshTranscript()
	v.layout()
	v.transcript.GotoBottom()
}

func (v *View) loadIndexStatus() tea.Cmd {
	if v.indexing == nil {
		return nil
	}
	return func() tea.Msg {
		st, err := v.indexing.Status(v.ctx)
		return messages.IndexStatusLoaded{Status: st, Err: err}
	}
}

func (v *View) handleIndexStatus(msg messages.IndexStatusLoaded) {
	if msg.Err != nil {
		if errors.Is(msg.Err, domain.ErrIndexNotFound) {
			v.statusbar.SetMessage(domain.Guidance(msg.Err))
			return
		}
		v.setError(msg.Err)
		return
	}
	v.papers = msg.Status.Documents
	v.statusbar.SetMessage(fmt.Sprintf("%d papers, %d passages", len(msg.Status.Documents), msg.Status.Passages))
}

func (v *View) saveSession() tea.Cmd {
	if v.workspace == nil {
		return func() tea.Msg { return messages.WorkspaceSaved{Err: ErrNoWorkspaceService} }
	}
	session := v.Session()
	if session.IsEmpty() {
		return func() tea.Msg { return messages.WorkspaceSaved{Err: ErrEmptySession} }
	}
	name := v.workspaceName
	return func() tea.Msg {
		filename, err := v.workspace.Save(name, session)
		return messages.WorkspaceSaved{Filename: filename, Err: err}
	}
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// Session returns the current research state for saving.
func (v *View) Session() domain.Session {
	s := v.session
	s.UploadedPapers = v.papers
	s.QueryInput = v.input.Value()
	s.QAHistory = v.history
	return s
}

// Restore replaces the session with a saved workspace.
func (v *View) Restore(ws *domain.Workspace) {
	v.session = ws.Data
	v.workspaceName = ws.Name
	v.history = append([]domain.QAExchange(nil), ws.Data.QAHistory...)
	if len(ws.Data.UploadedPapers) > 0 {
		v.papers = ws.Data.UploadedPapers
	}
	v.input.SetValue(ws.Data.QueryInput)
	v.sources.SetHits(nil)
	v.focusSources = false
	v.input.Focus()
	v.err = nil
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage("Opened " + ws.Name)
	v.refreshTranscript()
	v.layout()
	v.transcript.GotoBottom()
}

func (v *View) refreshTranscript() {
	v.transcript.SetContent(v.renderTranscript())
}

func (v *View) renderTranscript() string {
	if len(v.history) == 0 && v.pending == "" {
		return v.styles.Muted.Render("Ask anything about the indexed papers. Answers cite the passages they use.")
	}

	answerStyle := v.styles.Answer.Width(max(v.width-4, 20))
	blocks := make([]string, 0, len(v.history)+1)
	for _, qa := range v.history {
		block := v.styles.Question.Render("Q: "+qa.Question) + "\n" + answerStyle.Render(qa.Answer)
		if len(qa.Sources) > 0 {
			block += "\n" + v.styles.Citation.Render("  Sources: "+strings.Join(qa.Sources, ", "))
		}
		blocks = append(blocks, block)
	}
	if v.pending != "" {
		blocks = append(blocks, v.styles.Question.Render("Q: "+v.pending)+"\n"+v.styles.Muted.Render("  ..."))
	}
	return strings.Join(blocks, "\n\n")
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render("PaperPilot"), "")
	sections = append(sections, v.transcript.View(), "")

	if v.sources.Count() > 0 {
		sections = append(sections, v.sources.View(), "")
	}

	if v.err != nil {
		errView := v.styles.Error.Render("Error: " + v.err.Error())
		if guidance := domain.Guidance(v.err); guidance != "" {
			errView += "\n" + v.styles.Warning.Render(guidance)
		}
		sections = append(sections, errView, "")
	}

	sections = append(sections, v.input.View(), v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.layout()
	v.refreshTranscript()
}

// layout splits the height between the transcript and the sources panel.
// Title, input box, status bar and separators take ten lines.
func (v *View) layout() {
	sourcesHeight := 0
	if v.sources.Count() > 0 {
		sourcesHeight = v.height / 3
	}
	v.sources.SetDimensions(v.width, sourcesHeight)

	transcriptHeight := v.height - 10 - sourcesHeight
	if transcriptHeight < 3 {
		transcriptHeight = 3
	}
	v.transcript.Width = v.width
	v.transcript.Height = transcriptHeight
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// History returns the question and answer exchanges of the session.
func (v *View) History() []domain.QAExchange {
	return v.history
}

// Pending returns the question awaiting an answer, or "".
func (v *View) Pending() string {
	return v.pending
}

// Sources returns the passages behind the latest answer.
func (v *View) Sources() []domain.RetrievalHit {
	return v.sources.Hits()
}

// SourcesFocused returns whether the sources list has focus.
func (v *View) SourcesFocused() bool {
	return v.focusSources
}

// Question returns the text in the question box.
func (v *View) Question() string {
	return v.input.Value()
}

// SetQuestion sets the text in the question box.
func (v *View) SetQuestion(q string) {
	v.input.SetValue(q)
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Status returns the status bar state.
func (v *View) Status() status.State {
	return v.statusbar.State()
}

// StatusMessage returns the status bar message.
func (v *View) StatusMessage() string {
	return v.statusbar.Message()
}

// WorkspaceName returns the name the session is saved under.
func (v *View) WorkspaceName() string {
	return v.workspaceName
}
