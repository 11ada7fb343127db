package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/philocompass/compass/internal/screen"
)

// stubScreen is a minimal screen for testing.
type stubScreen struct {
	title   string
	initRan bool
	updates int
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { s.updates++; return s, nil }
func (s *stubScreen) View(int, int) string                    { return s.title }
func (s *stubScreen) Title() string                           { return s.title }

func TestReplace(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Replace(s2)

	if r.Active().Title() != "second" {
		t.Errorf("expected active 'second', got %q", r.Active().Title())
	}
	if !s2.initRan {
		t.Error("expected Init() to run on replaced screen")
	}
	if s1.initRan {
		t.Error("New must not run Init() on the initial screen")
	}
}

func TestUpdateForwardsToActive(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)
	r.Update(tea.KeyPressMsg{Code: tea.KeyEnter})

	if s1.updates != 1 {
		t.Errorf("expected 1 update, got %d", s1.updates)
	}
	if r.View(10, 10) != "first" {
		t.Errorf("unexpected view %q", r.View(10, 10))
	}
}

func TestNilScreen(t *testing.T) {
	r := New(nil)
	if cmd := r.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); cmd != nil {
		t.Error("expected no command without a screen")
	}
	if r.View(10, 10) != "" {
		t.Error("expected empty view without a screen")
	}
}
