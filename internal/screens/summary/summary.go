// Package summary is the result screen shown after a submission.
package summary

import (
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/philocompass/compass/internal/nav"
	"github.com/philocompass/compass/internal/result"
	"github.com/philocompass/compass/internal/screen"
	"github.com/philocompass/compass/internal/ui/components"
	"github.com/philocompass/compass/internal/ui/layout"
	"github.com/philocompass/compass/internal/ui/theme"
)

// Source is the machine state the result screen reads.
type Source interface {
	Result() *result.Derived
	Authenticated() bool
	Saved() bool
	Busy() bool
	Notice() string
}

// SummaryScreen displays the derived result in a scrollable pane with a
// save prompt for signed-in users.
type SummaryScreen struct {
	src Source
	vp  viewport.Model
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(src Source) *SummaryScreen {
	return &SummaryScreen{src: src, vp: viewport.New()}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Your Result"
}

func (s *SummaryScreen) canSave() bool {
	return s.src.Authenticated() && !s.src.Saved() && s.src.Notice() == ""
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "↑↓", Description: "Scroll"}}
	if s.canSave() {
		hints = append(hints,
			layout.KeyHint{Key: "s", Description: "Save"},
			layout.KeyHint{Key: "n", Description: "Don't save"})
	}
	if s.src.Authenticated() {
		hints = append(hints,
			layout.KeyHint{Key: "h", Description: "Saved result"},
			layout.KeyHint{Key: "x", Description: "Sign out"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Home"})
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	if !s.src.Busy() {
		switch kmsg.String() {
		case "s":
			if s.canSave() {
				return s, screen.Raise(nav.SaveResult{})
			}
			return s, nil
		case "n":
			if s.canSave() {
				return s, screen.Raise(nav.SkipSave{})
			}
			return s, nil
		case "h":
			if s.src.Authenticated() {
				return s, screen.Raise(nav.OpenHistory{})
			}
			return s, nil
		case "x":
			if s.src.Authenticated() {
				return s, screen.Raise(nav.Logout{})
			}
			return s, nil
		case "esc":
			return s, screen.Raise(nav.BackToWelcome{})
		}
	}

	var cmd tea.Cmd
	s.vp, cmd = s.vp.Update(msg)
	return s, cmd
}

func (s *SummaryScreen) View(width, height int) string {
	status := s.statusLine()
	body := height - lipgloss.Height(status) - 1
	if body < 1 {
		body = 1
	}

	s.vp.SetWidth(width)
	s.vp.SetHeight(body)
	s.vp.SetContent(Render(s.src.Result(), width))

	return s.vp.View() + "\n" + components.Center(status, width)
}

func (s *SummaryScreen) statusLine() string {
	switch {
	case s.src.Busy():
		return theme.Hint.Render("Saving your result...")
	case s.src.Notice() != "":
		return theme.Notice.Render(s.src.Notice())
	case s.canSave():
		return theme.Body.Render("Save this result to your account?  [s] Save   [n] Don't save")
	case !s.src.Authenticated():
		return theme.Hint.Render("Sign in to save results to an account.")
	}
	return ""
}
