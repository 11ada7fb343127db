// Package question shows one statement at a time with the five Likert
// options.
package question

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/philocompass/compass/internal/nav"
	"github.com/philocompass/compass/internal/quiz"
	"github.com/philocompass/compass/internal/screen"
	"github.com/philocompass/compass/internal/ui/components"
	"github.com/philocompass/compass/internal/ui/layout"
	"github.com/philocompass/compass/internal/ui/theme"
)

// Source is the machine state the question screen reads.
type Source interface {
	CurrentQuestion() (q quiz.Question, index int, prior *int)
	Progress() quiz.Progress
	Busy() bool
	Authenticated() bool
}

// QuestionScreen renders the current question. It rebuilds its selector
// whenever the machine moves to a different index.
type QuestionScreen struct {
	src    Source
	index  int
	choice components.Choice
}

var _ screen.Screen = (*QuestionScreen)(nil)
var _ screen.KeyHintProvider = (*QuestionScreen)(nil)

// New creates a QuestionScreen.
func New(src Source) *QuestionScreen {
	s := &QuestionScreen{src: src, index: -1}
	s.sync()
	return s
}

func options() []components.ChoiceOption {
	opts := make([]components.ChoiceOption, len(quiz.Options))
	for i, o := range quiz.Options {
		opts[i] = components.ChoiceOption{Label: o.Label, Value: o.Value}
	}
	return opts
}

func (s *QuestionScreen) sync() {
	_, idx, prior := s.src.CurrentQuestion()
	if idx == s.index {
		return
	}
	s.index = idx
	s.choice = components.NewChoice(options(), prior, func(v int) tea.Cmd {
		return screen.Raise(nav.Answer{Value: v})
	})
}

func (s *QuestionScreen) Init() tea.Cmd {
	return nil
}

func (s *QuestionScreen) Title() string {
	return fmt.Sprintf("Question %d of %d", s.index+1, quiz.Size)
}

func (s *QuestionScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "1-5", Description: "Answer"},
		{Key: "↑↓ Enter", Description: "Choose"},
	}
	if s.index > 0 {
		hints = append(hints, layout.KeyHint{Key: "←", Description: "Previous"})
	}
	if s.src.Authenticated() {
		hints = append(hints, layout.KeyHint{Key: "h", Description: "Saved result"})
	}
	return hints
}

func (s *QuestionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.sync()

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || s.src.Busy() {
		return s, nil
	}

	switch kmsg.String() {
	case "left", "backspace":
		if s.index > 0 {
			return s, screen.Raise(nav.GoBack{})
		}
		return s, nil
	case "h":
		if s.src.Authenticated() {
			return s, screen.Raise(nav.OpenHistory{})
		}
		return s, nil
	}

	var cmd tea.Cmd
	s.choice, cmd = s.choice.Update(msg)
	return s, cmd
}

func (s *QuestionScreen) View(width, height int) string {
	s.sync()
	q, idx, _ := s.src.CurrentQuestion()
	cw := components.ContentWidth(width)

	var b strings.Builder

	bar := components.NewProgressBar("Progress", s.src.Progress().Answered(), quiz.Size, cw)
	b.WriteString(bar.View())
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("Q%d  ·  %s", q.ID, q.Category)))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(cw).
		Foreground(theme.Text).
		Bold(true).
		Render(q.Text))
	b.WriteString("\n\n")

	if s.src.Busy() {
		b.WriteString(theme.Hint.Render("Submitting your answers..."))
	} else {
		b.WriteString(s.choice.View())
		if idx == quiz.Size-1 {
			b.WriteString("\n")
			b.WriteString(theme.Hint.Render("This is the last question. Answering it submits the quiz."))
		}
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, b.String())
}
