package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/philocompass/compass/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with a label and Compass styling.
type TextInput struct {
	Label string
	Model textinput.Model
}

// NewTextInput creates a new styled, unfocused text input. Secret inputs
// echo bullets instead of the typed characters.
func NewTextInput(label, placeholder string, secret bool, limit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	if limit > 0 {
		ti.CharLimit = limit
	}
	return TextInput{Label: label, Model: ti}
}

// Focus focuses the input and returns the cursor blink command.
func (t *TextInput) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur removes focus.
func (t *TextInput) Blur() {
	t.Model.Blur()
}

// Focused reports whether the input has focus.
func (t TextInput) Focused() bool {
	return t.Model.Focused()
}

// Update handles messages.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the label above the input.
func (t TextInput) View() string {
	style := lipgloss.NewStyle().Foreground(theme.TextDim)
	if t.Focused() {
		style = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	}
	return style.Render(t.Label) + "\n" + t.Model.View()
}

// Secret reports whether the input masks its value.
func (t TextInput) Secret() bool {
	return t.Model.EchoMode == textinput.EchoPassword
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// Reset clears the value.
func (t *TextInput) Reset() {
	t.Model.SetValue("")
}
