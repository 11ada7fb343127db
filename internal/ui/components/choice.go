package components

import (
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/philocompass/compass/internal/ui/theme"
)

// ChoiceOption is one selectable value.
type ChoiceOption struct {
	Label string
	Value int
}

// Choice is a single-answer selector. Options can be picked with the arrow
// keys and Enter or directly by their 1-based number.
type Choice struct {
	Options  []ChoiceOption
	Selected int
	// Prior is the index of a previously recorded answer, or -1.
	Prior  int
	OnPick func(value int) tea.Cmd
}

// NewChoice creates a selector. When prior matches an option's value, that
// option starts selected and is marked.
func NewChoice(options []ChoiceOption, prior *int, onPick func(int) tea.Cmd) Choice {
	c := Choice{Options: options, Prior: -1, OnPick: onPick}
	if prior != nil {
		for i, o := range options {
			if o.Value == *prior {
				c.Prior = i
				c.Selected = i
			}
		}
	}
	return c
}

// Update handles keyboard navigation and selection.
func (c Choice) Update(msg tea.Msg) (Choice, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if c.Selected > 0 {
			c.Selected--
		}
	case "down", "j":
		if c.Selected < len(c.Options)-1 {
			c.Selected++
		}
	case "enter":
		return c, c.pick(c.Selected)
	default:
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(c.Options) {
			c.Selected = n - 1
			return c, c.pick(n - 1)
		}
	}
	return c, nil
}

func (c Choice) pick(i int) tea.Cmd {
	if c.OnPick == nil || i < 0 || i >= len(c.Options) {
		return nil
	}
	return c.OnPick(c.Options[i].Value)
}

// View renders the options, one per line.
func (c Choice) View() string {
	var b strings.Builder
	for i, opt := range c.Options {
		prefix := "  "
		if i == c.Selected {
			prefix = "▸ "
		}
		mark := ""
		if i == c.Prior {
			mark = "  •"
		}
		line := fmt.Sprintf("%s%d)  %s%s", prefix, i+1, opt.Label, mark)

		if i == c.Selected {
			b.WriteString(theme.Selected.Render(line))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
