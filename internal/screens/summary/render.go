package summary

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/philocompass/compass/internal/quiz"
	"github.com/philocompass/compass/internal/result"
	"github.com/philocompass/compass/internal/ui/components"
	"github.com/philocompass/compass/internal/ui/layout"
	"github.com/philocompass/compass/internal/ui/theme"
)

// Render draws a derived result: the label, the closest philosopher, the
// neighbour counts and one chart per category with the user's own score
// highlighted. It is shared by the result and history screens.
func Render(d *result.Derived, width int) string {
	if d == nil {
		return ""
	}
	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, renderLabel(d, cw))
	sections = append(sections, renderClosest(d, cw))
	sections = append(sections, components.TitledPanel(
		"Respondents near you",
		neighbourChart(d, cw-6).View(), cw))
	sections = append(sections, renderCategories(d, cw))

	return strings.Join(sections, "\n")
}

func renderLabel(d *result.Derived, cw int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		Render(d.Label.FullLabel))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render(fmt.Sprintf("main %s  ·  sub %s", d.Label.MainLabel, d.Label.SubLabel)))
	b.WriteString("\n\n")

	for _, cat := range quiz.Categories {
		b.WriteString(fmt.Sprintf("%-11s %+d\n", cat, d.UserScore(cat)))
	}
	sub := d.Label.SubScores
	b.WriteString(theme.Hint.Render(fmt.Sprintf("Q13 %+d   Q14 %+d   Q15 %+d   Q16 %+d", sub.Q13, sub.Q14, sub.Q15, sub.Q16)))

	return components.TitledPanel("Your compass", b.String(), cw)
}

func renderClosest(d *result.Derived, cw int) string {
	p := d.Closest.Philosopher
	if p == nil {
		return components.TitledPanel("Closest philosopher", theme.Hint.Render("No philosopher on record is close to you."), cw)
	}

	var b strings.Builder
	b.WriteString(theme.Label.Render(p.Name))
	if p.Era != "" {
		b.WriteString(theme.Hint.Render("  (" + p.Era + ")"))
	}
	b.WriteString("\n")
	if p.Description != "" {
		b.WriteString(lipgloss.NewStyle().Width(cw - 6).Foreground(theme.Text).Render(p.Description))
		b.WriteString("\n")
	}
	b.WriteString(theme.Hint.Render(fmt.Sprintf("distance %.2f", d.Closest.Distance)))

	return components.TitledPanel("Closest philosopher", b.String(), cw)
}

func neighbourChart(d *result.Derived, width int) components.BarChart {
	bars := make([]components.Bar, len(d.Neighbors))
	for i, n := range d.Neighbors {
		bars[i] = components.Bar{Label: fmt.Sprintf("within %g", n.Radius), Count: n.Count}
	}
	return components.NewBarChart(bars, width, "")
}

// CategoryChart returns the population chart for one category with the
// user's bucket highlighted.
func CategoryChart(d *result.Derived, cat quiz.Category, width int) components.BarChart {
	dist := d.Categories.For(cat)
	user := d.UserScore(cat)
	bars := make([]components.Bar, len(dist))
	for i, sc := range dist {
		bars[i] = components.Bar{
			Label:     fmt.Sprintf("%+d", sc.Score),
			Count:     sc.Count,
			Highlight: sc.Score == user,
		}
	}
	return components.NewBarChart(bars, width, "you")
}

func renderCategories(d *result.Derived, cw int) string {
	// Two charts per row when there is room, otherwise stacked.
	if layout.IsCompactWidth(cw + 6) {
		var parts []string
		for _, cat := range quiz.Categories {
			parts = append(parts, components.TitledPanel(string(cat), CategoryChart(d, cat, cw-6).View(), cw))
		}
		return strings.Join(parts, "\n")
	}

	half := cw / 2
	var rows []string
	for i := 0; i < len(quiz.Categories); i += 2 {
		left := quiz.Categories[i]
		right := quiz.Categories[i+1]
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			components.TitledPanel(string(left), CategoryChart(d, left, half-6).View(), half),
			components.TitledPanel(string(right), CategoryChart(d, right, half-6).View(), half),
		))
	}
	return strings.Join(rows, "\n")
}
