package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func TestBarChartHighlightsUserBucket(t *testing.T) {
	c := NewBarChart([]Bar{
		{Label: "-2", Count: 3},
		{Label: "0", Count: 10, Highlight: true},
		{Label: "2", Count: 0},
	}, 60, "you")

	lines := strings.Split(c.View(), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[1], "you") {
		t.Errorf("highlighted row missing tag: %q", lines[1])
	}
	if strings.Contains(lines[0], "you") || strings.Contains(lines[2], "you") {
		t.Error("tag leaked onto a population row")
	}
	if strings.Contains(lines[2], "█") {
		t.Errorf("zero count should draw no bar: %q", lines[2])
	}
}

func TestBarChartEmpty(t *testing.T) {
	if got := NewBarChart(nil, 40, "").View(); !strings.Contains(got, "no data") {
		t.Errorf("expected placeholder, got %q", got)
	}
}

func TestChoicePicksByNumber(t *testing.T) {
	var picked *int
	opts := []ChoiceOption{{"Yes", 2}, {"Maybe", 0}, {"No", -2}}
	c := NewChoice(opts, nil, func(v int) tea.Cmd {
		picked = &v
		return nil
	})

	c, _ = c.Update(tea.KeyPressMsg{Code: '3', Text: "3"})
	if picked == nil || *picked != -2 {
		t.Fatalf("expected -2, got %v", picked)
	}
	if c.Selected != 2 {
		t.Errorf("expected selection 2, got %d", c.Selected)
	}

	picked = nil
	c.Update(tea.KeyPressMsg{Code: '9', Text: "9"})
	if picked != nil {
		t.Error("out-of-range number must not pick")
	}
}

func TestChoiceStartsOnPrior(t *testing.T) {
	prior := 0
	c := NewChoice([]ChoiceOption{{"Yes", 2}, {"Maybe", 0}}, &prior, nil)
	if c.Selected != 1 || c.Prior != 1 {
		t.Errorf("expected prior option selected, got selected=%d prior=%d", c.Selected, c.Prior)
	}
	if !strings.Contains(c.View(), "•") {
		t.Error("prior answer should be marked")
	}
}

func TestMenuShortcut(t *testing.T) {
	hit := ""
	m := NewMenu([]MenuItem{
		{Label: "Sign in", Key: "l", Action: func() tea.Cmd { hit = "login"; return nil }},
		{Label: "Quit", Key: "q", Action: func() tea.Cmd { hit = "quit"; return nil }},
	})
	m, _ = m.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
	if hit != "quit" || m.Selected != 1 {
		t.Errorf("shortcut not applied: hit=%q selected=%d", hit, m.Selected)
	}
}

func TestMenuSkipsDisabled(t *testing.T) {
	m := NewMenu([]MenuItem{
		{Label: "a", Disabled: true},
		{Label: "b"},
		{Label: "c", Disabled: true},
	})
	if m.Selected != 1 {
		t.Fatalf("expected first enabled item, got %d", m.Selected)
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if m.Selected != 1 {
		t.Errorf("selection moved onto a disabled item: %d", m.Selected)
	}
}

func TestProgressBarCount(t *testing.T) {
	p := NewProgressBar("Progress", 8, 16, 50)
	if p.Percent() != 0.5 {
		t.Errorf("expected 0.5, got %v", p.Percent())
	}
	if !strings.Contains(p.View(), "8/16") {
		t.Error("count missing from view")
	}
}
