// Package router holds the screen currently on display. The navigation
// machine decides which phase is active; the router only swaps the screen
// that renders it.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/philocompass/compass/internal/screen"
)

// Router owns a single active screen.
type Router struct {
	active screen.Screen
}

// New creates a new Router with the given initial screen.
func New(initial screen.Screen) *Router {
	return &Router{active: initial}
}

// Replace swaps the active screen and calls its Init().
func (r *Router) Replace(s screen.Screen) tea.Cmd {
	r.active = s
	if s == nil {
		return nil
	}
	return s.Init()
}

// Active returns the screen on display.
func (r *Router) Active() screen.Screen {
	return r.active
}

// Update forwards a message to the active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	if r.active == nil {
		return nil
	}

	updated, cmd := r.active.Update(msg)
	r.active = updated
	return cmd
}

// View renders the active screen.
func (r *Router) View(width, height int) string {
	if r.active == nil {
		return ""
	}
	return r.active.View(width, height)
}
