// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/paperpilot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/paperpilot/internal/core/domain"
)

// SourceList displays the passages behind an answer in a navigable list.
// The selected passage is shown in full, the others as a one-line preview.
type SourceList struct {
	hits     []domain.RetrievalHit
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewSourceList creates an empty source list.
func NewSourceList(s *styles.Styles) *SourceList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &SourceList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the source list.
func (l *SourceList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *SourceList) Update(msg tea.Msg) (*SourceList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the source list.
func (l *SourceList) View() string {
	if len(l.hits) == 0 {
		return l.styles.Muted.Render("No sources")
	}

	lines := make([]string, 0, len(l.hits)+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Sources (%d)", len(l.hits))))

	for i := range l.hits {
		lines = append(lines, l.renderHit(i, &l.hits[i]))
	}

	return strings.Join(lines, "\n")
}

func (l *SourceList) renderHit(index int, hit *domain.RetrievalHit) string {
	label := fmt.Sprintf("[%d] %s #%d", index+1, hit.Passage.Source, hit.Passage.Position)
	score := fmt.Sprintf("%.2f", hit.Score)

	maxLabel := l.width - 12
	if maxLabel < 10 {
		maxLabel = 10
	}
	label = truncate(label, maxLabel)

	if index != l.selected {
		return l.styles.Normal.Render("  "+label+"  ") + l.styles.Muted.Render(score)
	}

	title := l.styles.Selected.Render(fmt.Sprintf("> %s  %s", label, score))
	textWidth := l.width - 4
	if textWidth < 20 {
		textWidth = 20
	}
	body := wrap(hit.Passage.Text, textWidth, l.height-len(l.hits)-2)
	return title + "\n" + l.styles.Muted.Render(indent(body, "    "))
}

// SetHits replaces the listed passages and resets the selection.
func (l *SourceList) SetHits(hits []domain.RetrievalHit) {
	l.hits = hits
	l.selected = 0
}

// Hits returns the listed passages.
func (l *SourceList) Hits() []domain.RetrievalHit {
	return l.hits
}

// Selected returns the index of the selected passage.
func (l *SourceList) Selected() int {
	return l.selected
}

// SelectedHit returns the selected passage, or nil if the list is empty.
func (l *SourceList) SelectedHit() *domain.RetrievalHit {
	if l.selected < 0 || l.selected >= len(l.hits) {
		return nil
	}
	return &l.hits[l.selected]
}

// MoveUp moves selection up.
func (l *SourceList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *SourceList) MoveDown() {
	if l.selected < len(l.hits)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *SourceList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of passages.
func (l *SourceList) Count() int {
	return len(l.hits)
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}

// wrap breaks text into lines of at most width runes, keeping at most maxLines
// lines (minimum 1). Whitespace runs are collapsed.
func wrap(text string, width, maxLines int) string {
	if maxLines < 1 {
		maxLines = 1
	}
	words := strings.Fields(text)
	var lines []string
	var line strings.Builder
	for _, w := range words {
		if line.Len() > 0 && len([]rune(line.String()))+1+len([]rune(w)) > width {
			lines = append(lines, line.String())
			line.Reset()
			if len(lines) == maxLines {
				lines[maxLines-1] = truncate(lines[maxLines-1]+" ...", width)
				return strings.Join(lines, "\n")
			}
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(w)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

func indent(s, prefix string) string {
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}
