package components

import (
	"charm.land/lipgloss/v2"

	"github.com/philocompass/compass/internal/ui/theme"
)

// ContentWidth returns the uniform inner width used by screen panels so
// stacked boxes line up.
func ContentWidth(frameWidth int) int {
	w := frameWidth - 6
	if w > 76 {
		w = 76
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Panel wraps content in a rounded-border card at the given content width.
func Panel(content string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw - 2).
		Padding(0, 2).
		Render(content)
}

// TitledPanel is a Panel with a bold heading line.
func TitledPanel(title, content string, cw int) string {
	return Panel(theme.Label.Render(title)+"\n"+content, cw)
}

// Center places s horizontally centered in width.
func Center(s string, width int) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
}
