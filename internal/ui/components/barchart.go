package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/philocompass/compass/internal/ui/theme"
)

// Bar is one row of a BarChart.
type Bar struct {
	Label     string
	Count     int
	Highlight bool
}

// BarChart renders horizontal bars scaled to the largest count. Highlighted
// bars are drawn in the accent color and tagged.
type BarChart struct {
	Bars  []Bar
	Width int
	// Tag marks highlighted rows, e.g. "you".
	Tag string
}

// NewBarChart creates a chart that fits in width columns.
func NewBarChart(bars []Bar, width int, tag string) BarChart {
	return BarChart{Bars: bars, Width: width, Tag: tag}
}

// View renders the chart, one bar per line.
func (c BarChart) View() string {
	if len(c.Bars) == 0 {
		return theme.Hint.Render("no data")
	}

	labelWidth, countWidth, maxCount := 0, 0, 0
	for _, b := range c.Bars {
		labelWidth = max(labelWidth, lipgloss.Width(b.Label))
		countWidth = max(countWidth, len(fmt.Sprint(b.Count)))
		maxCount = max(maxCount, b.Count)
	}

	tag := ""
	if c.Tag != "" {
		tag = " ◂ " + c.Tag
	}
	barWidth := c.Width - labelWidth - countWidth - lipgloss.Width(tag) - 4
	if barWidth < 4 {
		barWidth = 4
	}

	var b strings.Builder
	for i, bar := range c.Bars {
		n := 0
		if maxCount > 0 {
			n = bar.Count * barWidth / maxCount
		}
		if bar.Count > 0 && n == 0 {
			n = 1
		}

		style := theme.BarOther
		suffix := ""
		if bar.Highlight {
			style = theme.BarUser.Bold(true)
			suffix = tag
		}

		label := fmt.Sprintf("%*s", labelWidth, bar.Label)
		line := label + " │" + style.Render(strings.Repeat("█", n)) +
			fmt.Sprintf(" %d", bar.Count) + style.Render(suffix)
		b.WriteString(line)
		if i < len(c.Bars)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
