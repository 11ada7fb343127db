// Package history shows the signed-in user's most recently saved answers and
// the result derived from them.
package history

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/philocompass/compass/internal/nav"
	"github.com/philocompass/compass/internal/quiz"
	"github.com/philocompass/compass/internal/screen"
	"github.com/philocompass/compass/internal/screens/summary"
	"github.com/philocompass/compass/internal/ui/components"
	"github.com/philocompass/compass/internal/ui/layout"
	"github.com/philocompass/compass/internal/ui/theme"
)

// Source is the machine state the history screen reads.
type Source interface {
	History() nav.HistoryView
	Busy() bool
}

// HistoryScreen displays the saved answers and their result.
type HistoryScreen struct {
	src      Source
	vp       viewport.Model
	expanded bool
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(src Source) *HistoryScreen {
	return &HistoryScreen{src: src, vp: viewport.New()}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return nil
}

func (s *HistoryScreen) Title() string {
	return "Saved Result"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Enter", Description: "Toggle answers"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "esc", "backspace", "left":
			return s, screen.Raise(nav.BackFromHistory{})
		case "enter":
			s.expanded = !s.expanded
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.vp, cmd = s.vp.Update(msg)
	return s, cmd
}

func (s *HistoryScreen) View(width, height int) string {
	h := s.src.History()

	switch {
	case !h.Loaded && s.src.Busy():
		return centered(width, height, theme.Hint.Render("Loading your saved result..."))
	case h.Empty:
		return centered(width, height,
			theme.Body.Render("No saved result yet.")+"\n\n"+
				theme.Hint.Render("Finish the quiz while signed in and choose Save."))
	case !h.Loaded:
		return centered(width, height, theme.Hint.Render("Nothing to show."))
	}

	var b strings.Builder
	b.WriteString(renderAnswers(h.Answers, s.expanded, components.ContentWidth(width)))
	b.WriteString("\n")
	b.WriteString(summary.Render(h.Result, width))

	s.vp.SetWidth(width)
	s.vp.SetHeight(height)
	s.vp.SetContent(b.String())
	return s.vp.View()
}

func centered(width, height int, content string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// renderAnswers lists the saved answers in display order. Collapsed, it
// shows one compact line of values.
func renderAnswers(v quiz.Vector, expanded bool, cw int) string {
	if !expanded {
		vals := make([]string, quiz.Size)
		for i, a := range v {
			vals[i] = fmt.Sprintf("%+d", a)
		}
		return components.TitledPanel("Your answers", strings.Join(vals, " "), cw)
	}

	var b strings.Builder
	for i, q := range quiz.Questions {
		line := fmt.Sprintf("Q%-2d %-18s %s", q.ID, quiz.OptionLabel(v[i]), q.Text)
		b.WriteString(lipgloss.NewStyle().Width(cw - 6).MaxHeight(1).Render(line))
		if i < quiz.Size-1 {
			b.WriteString("\n")
		}
	}
	return components.TitledPanel("Your answers", b.String(), cw)
}
