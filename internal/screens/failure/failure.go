// Package failure is the single error state. Every failed network flow ends
// here; the only ways out are reloading or signing out.
package failure

import (
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/philocompass/compass/internal/api"
	"github.com/philocompass/compass/internal/nav"
	"github.com/philocompass/compass/internal/screen"
	"github.com/philocompass/compass/internal/ui/layout"
	"github.com/philocompass/compass/internal/ui/theme"
)

// FailureScreen shows what went wrong and offers a reload.
type FailureScreen struct {
	err error
}

var _ screen.Screen = (*FailureScreen)(nil)
var _ screen.KeyHintProvider = (*FailureScreen)(nil)

// New creates a FailureScreen for err.
func New(err error) *FailureScreen {
	return &FailureScreen{err: err}
}

func (f *FailureScreen) Init() tea.Cmd {
	return nil
}

func (f *FailureScreen) Title() string {
	return "Something went wrong"
}

func (f *FailureScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "r", Description: "Reload"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (f *FailureScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "r", "enter":
			return f, screen.Raise(nav.Reload{})
		}
	}
	return f, nil
}

func (f *FailureScreen) View(width, height int) string {
	lines := []string{
		theme.Problem.Render("╌╌ Something went wrong ╌╌"),
		"",
		theme.Body.Render(Describe(f.err)),
		"",
		theme.Hint.Render("Press r to reload."),
	}
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}

// Describe turns a flow error into one user-facing sentence.
func Describe(err error) string {
	var (
		se *api.StatusError
		ie *api.InvalidResponseError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, api.ErrUnauthorized):
		return "Your session is no longer valid. Sign out and sign in again."
	case errors.As(err, &ie):
		return "The server sent a response this client does not understand."
	case errors.As(err, &se) && se.Message != "":
		return se.Message
	case errors.As(err, &se):
		return "The server could not complete the request."
	}
	return "Could not reach the server. Check your connection."
}
