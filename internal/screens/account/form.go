// Package account holds the sign-in and registration forms.
package account

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

// Source is the machine state the forms read.
type Source interface {
	Busy() bool
	Pending() string
	FormError() string
}

// FormScreen is a column of inputs followed by a submit button. Tab and the
// arrow keys move focus; Enter on the last input or the button submits.
type FormScreen struct {
	src    Source
	title  string
	inputs []components.TextInput
	button components.Button
	focus  int

	submit func(values []string) nav.Intent
	// other switches to the sibling form.
	other     nav.Intent
	otherHint string
	googleURL string
}

var _ screen.Screen = (*FormScreen)(nil)
var _ screen.KeyHintProvider = (*FormScreen)(nil)

// NewLogin creates the sign-in form.
func NewLogin(src Source, googleURL string) *FormScreen {
	f := &FormScreen{
		src:   src,
		title: "Sign in",
		inputs: []components.TextInput{
			components.NewTextInput("Username", "your username", false, 50),
			components.NewTextInput("Password", "", true, 128),
		},
		submit: func(v []string) nav.Intent {
			return nav.SubmitLogin{Username: v[0], Password: v[1]}
		},
		other:     nav.SwitchToRegister{},
		otherHint: "Create account",
		googleURL: googleURL,
	}
	f.button = components.NewButton("Sign in", f.raiseSubmit)
	return f
}

// NewRegister creates the registration form.
func NewRegister(src Source, googleURL string) *FormScreen {
	f := &FormScreen{
		src:   src,
		title: "Create an account",
		inputs: []components.TextInput{
			components.NewTextInput("Username", "3 to 50 characters, no spaces", false, 50),
			components.NewTextInput("Email", "you@example.com", false, 254),
			components.NewTextInput("Password", "at least 6 characters", true, 128),
			components.NewTextInput("Confirm password", "", true, 128),
		},
		submit: func(v []string) nav.Intent {
			return nav.SubmitRegister{Username: v[0], Email: v[1], Password: v[2], Confirm: v[3]}
		},
		other:     nav.SwitchToLogin{},
		otherHint: "Sign in instead",
		googleURL: googleURL,
	}
	f.button = components.NewButton("Create account", f.raiseSubmit)
	return f
}

func (f *FormScreen) raiseSubmit() tea.Cmd {
	return screen.Raise(f.submit(f.Values()))
}

func (f *FormScreen) Init() tea.Cmd {
	return f.setFocus(0)
}

func (f *FormScreen) Title() string {
	return f.title
}

func (f *FormScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Submit"},
		{Key: "Ctrl+S", Description: f.otherHint},
	}
	if f.googleURL != "" {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+G", Description: "Google"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

// Values returns the current input values in order.
func (f *FormScreen) Values() []string {
	v := make([]string, len(f.inputs))
	for i, in := range f.inputs {
		v[i] = in.Value()
		if !in.Secret() {
			v[i] = strings.TrimSpace(v[i])
		}
	}
	return v
}

// setFocus moves focus to slot i; len(inputs) is the button.
func (f *FormScreen) setFocus(i int) tea.Cmd {
	n := len(f.inputs) + 1
	f.focus = (i%n + n) % n

	var cmd tea.Cmd
	for j := range f.inputs {
		if j == f.focus {
			cmd = f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
	f.button.Focused = f.focus == len(f.inputs)
	return cmd
}

func (f *FormScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return f, f.forward(msg)
	}

	key := kmsg.String()
	if f.src.Busy() {
		if key == "esc" {
			return f, screen.Raise(nav.BackToWelcome{})
		}
		return f, nil
	}

	switch key {
	case "esc":
		return f, screen.Raise(nav.BackToWelcome{})
	case "tab", "down":
		return f, f.setFocus(f.focus + 1)
	case "shift+tab", "up":
		return f, f.setFocus(f.focus - 1)
	case "ctrl+s":
		return f, screen.Raise(f.other)
	case "ctrl+g":
		if f.googleURL != "" {
			return f, screen.Raise(nav.BeginOAuth{})
		}
		return f, nil
	case "enter":
		switch {
		case f.focus == len(f.inputs):
			var cmd tea.Cmd
			f.button, cmd = f.button.Update(msg)
			return f, cmd
		case f.focus == len(f.inputs)-1:
			return f, f.raiseSubmit()
		}
		return f, f.setFocus(f.focus + 1)
	}

	return f, f.forward(msg)
}

func (f *FormScreen) forward(msg tea.Msg) tea.Cmd {
	if f.focus >= len(f.inputs) {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *FormScreen) View(width, height int) string {
	cw := min(components.ContentWidth(width), 56)

	var b strings.Builder
	for _, in := range f.inputs {
		b.WriteString(in.View())
		b.WriteString("\n\n")
	}
	b.WriteString(f.button.View())

	var sections []string
	sections = append(sections, theme.Title.Render(f.title), "")
	sections = append(sections, components.Panel(b.String(), cw))

	switch {
	case f.src.Pending() == "oauth":
		sections = append(sections, "",
			theme.Body.Render("Open this address in your browser:"),
			theme.Label.Render(f.googleURL),
			theme.Hint.Render("Waiting for Google sign-in. Esc cancels."))
	case f.src.Busy():
		sections = append(sections, "", theme.Hint.Render("Contacting the server..."))
	}
	if msg := f.src.FormError(); msg != "" {
		sections = append(sections, "", theme.Problem.Render(msg))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		strings.Join(sections, "\n"))
}
