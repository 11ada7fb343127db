// Package welcome is the entry screen. It offers sign-in, registration and
// guest play, or for a signed-in user the quiz, history and sign-out.
package welcome

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/philocompass/compass/internal/nav"
	"github.com/philocompass/compass/internal/screen"
	"github.com/philocompass/compass/internal/ui/components"
	"github.com/philocompass/compass/internal/ui/layout"
	"github.com/philocompass/compass/internal/ui/theme"
)

const tagline = "Sixteen questions. Four axes. One philosophical bearing."

// Source is the machine state the welcome screen reads.
type Source interface {
	Authenticated() bool
	Busy() bool
	Pending() string
	FormError() string
}

// WelcomeScreen shows the banner and the entry menu.
type WelcomeScreen struct {
	src     Source
	menu    components.Menu
	authURL string
}

var _ screen.Screen = (*WelcomeScreen)(nil)
var _ screen.KeyHintProvider = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen. authURL is the Google sign-in page; when it
// is empty the Google option is not offered.
func New(src Source, authURL string) *WelcomeScreen {
	w := &WelcomeScreen{src: src, authURL: authURL}
	w.menu = components.NewMenu(w.items())
	return w
}

func (w *WelcomeScreen) items() []components.MenuItem {
	if w.src.Authenticated() {
		return []components.MenuItem{
			{Label: "Start the quiz", Key: "s", Action: raise(nav.ChooseGuest{})},
			{Label: "View my saved result", Key: "h", Action: raise(nav.OpenHistory{})},
			{Label: "Sign out", Key: "x", Action: raise(nav.Logout{})},
			{Label: "Quit", Key: "q", Action: func() tea.Cmd { return tea.Quit }},
		}
	}
	return []components.MenuItem{
		{Label: "Sign in", Key: "l", Action: raise(nav.ChooseLogin{})},
		{Label: "Create an account", Key: "r", Action: raise(nav.ChooseRegister{})},
		{Label: "Sign in with Google", Key: "o", Action: raise(nav.BeginOAuth{}), Disabled: w.authURL == ""},
		{Label: "Continue as guest", Key: "g", Action: raise(nav.ChooseGuest{})},
		{Label: "Quit", Key: "q", Action: func() tea.Cmd { return tea.Quit }},
	}
}

func raise(in nav.Intent) func() tea.Cmd {
	return func() tea.Cmd { return screen.Raise(in) }
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return nil
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) KeyHints() []layout.KeyHint {
	if w.src.Pending() == "oauth" {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Cancel"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return w, nil
	}
	if w.src.Busy() {
		if kmsg.String() == "esc" {
			return w, screen.Raise(nav.BackToWelcome{})
		}
		return w, nil
	}

	var cmd tea.Cmd
	w.menu, cmd = w.menu.Update(msg)
	return w, cmd
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	sections = append(sections, RenderBanner(width))
	sections = append(sections, "")
	sections = append(sections, theme.Subtitle.Render(tagline))
	sections = append(sections, "")

	if w.src.Pending() == "oauth" {
		sections = append(sections, w.renderOAuthWait(width))
	} else {
		cw := components.ContentWidth(width)
		sections = append(sections, components.Panel(w.menu.View(), min(cw, 44)))
	}

	if msg := w.src.FormError(); msg != "" {
		sections = append(sections, "", theme.Problem.Render(msg))
	}

	content := strings.Join(sections, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (w *WelcomeScreen) renderOAuthWait(width int) string {
	body := theme.Body.Render("Open this address in your browser to sign in with Google:") +
		"\n\n" + theme.Label.Render(w.authURL) +
		"\n\n" + theme.Hint.Render("Waiting for the sign-in to finish. Press Esc to cancel.")
	return components.Panel(body, components.ContentWidth(width))
}
