package app

import (
	"context"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/philocompass/compass/internal/nav"
	"github.com/philocompass/compass/internal/router"
	"github.com/philocompass/compass/internal/screen"
	"github.com/philocompass/compass/internal/screens/account"
	"github.com/philocompass/compass/internal/screens/failure"
	"github.com/philocompass/compass/internal/screens/history"
	"github.com/philocompass/compass/internal/screens/question"
	"github.com/philocompass/compass/internal/screens/summary"
	"github.com/philocompass/compass/internal/screens/welcome"
	"github.com/philocompass/compass/internal/ui/layout"
	"github.com/philocompass/compass/internal/ui/theme"
)

const helloTimeout = 5 * time.Second

// Pinger checks that the backend is reachable.
type Pinger interface {
	Hello(ctx context.Context) (string, error)
}

// Options configures the root model.
type Options struct {
	Machine *nav.Machine
	Pinger  Pinger
	// GoogleURL is the sign-in page for the OAuth flow; empty disables it.
	GoogleURL string
	Logger    *zap.Logger
}

type outcomeMsg struct {
	out nav.Outcome
}

type helloMsg struct {
	message string
	err     error
}

// shown identifies what the router currently renders.
type shown struct {
	phase   nav.Phase
	authed  bool
	failure bool
}

// AppModel is the root Bubble Tea model. It feeds screen intents to the
// navigation machine, runs the tasks it hands back, and swaps screens when
// the machine changes phase.
type AppModel struct {
	machine   *nav.Machine
	router    *router.Router
	spinner   spinner.Model
	pinger    Pinger
	googleURL string
	logger    *zap.Logger

	shown  shown
	width  int
	height int
}

// newAppModel creates an AppModel showing the machine's current phase.
func newAppModel(opts Options) AppModel {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := AppModel{
		machine:   opts.Machine,
		pinger:    opts.Pinger,
		googleURL: opts.GoogleURL,
		logger:    logger,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Accent)),
		),
	}
	m.shown = m.current()
	m.router = router.New(m.screenFor(m.shown))
	return m
}

func (m AppModel) current() shown {
	return shown{
		phase:   m.machine.Phase(),
		authed:  m.machine.Authenticated(),
		failure: m.machine.Failure() != nil,
	}
}

func (m AppModel) screenFor(s shown) screen.Screen {
	if s.failure {
		return failure.New(m.machine.Failure())
	}
	switch s.phase {
	case nav.Login:
		return account.NewLogin(m.machine, m.googleURL)
	case nav.Register:
		return account.NewRegister(m.machine, m.googleURL)
	case nav.Question:
		return question.New(m.machine)
	case nav.Result:
		return summary.New(m.machine)
	case nav.History:
		return history.New(m.machine)
	}
	return welcome.New(m.machine, m.googleURL)
}

// sync replaces the active screen when the machine moved.
func (m *AppModel) sync() tea.Cmd {
	now := m.current()
	if now == m.shown {
		return nil
	}
	m.logger.Debug("screen change",
		zap.Stringer("from", m.shown.phase),
		zap.Stringer("to", now.phase),
		zap.Bool("failure", now.failure))
	m.shown = now
	return m.router.Replace(m.screenFor(now))
}

func (m AppModel) run(task *nav.Task) tea.Cmd {
	if task == nil {
		return nil
	}
	m.logger.Debug("task started", zap.String("task", task.Name), zap.Uint64("epoch", task.Epoch()))
	return tea.Batch(
		func() tea.Msg { return outcomeMsg{out: task.Run()} },
		m.spinner.Tick,
	)
}

func (m AppModel) Init() tea.Cmd {
	if m.pinger == nil {
		return nil
	}
	p := m.pinger
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), helloTimeout)
		defer cancel()
		msg, err := p.Hello(ctx)
		return helloMsg{message: msg, err: err}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case screen.IntentMsg:
		task, err := m.machine.Dispatch(msg.Intent)
		if err != nil {
			m.logger.Debug("intent ignored", zap.String("intent", nav.Name(msg.Intent)), zap.Error(err))
		}
		cmd := tea.Batch(m.sync(), m.run(task))
		return m, cmd

	case outcomeMsg:
		follow := m.machine.Resolve(msg.out)
		cmd := tea.Batch(m.sync(), m.run(follow))
		return m, cmd

	case spinner.TickMsg:
		if !m.machine.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case helloMsg:
		if msg.err != nil {
			m.logger.Warn("backend liveness check failed", zap.Error(msg.err))
		} else {
			m.logger.Info("backend reachable", zap.String("hello", msg.message))
		}
		return m, nil
	}

	cmd := m.router.Update(msg)
	cmd = tea.Batch(cmd, m.sync())
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.frame())
	v.AltScreen = true
	return v
}

// frame renders the full terminal contents.
func (m AppModel) frame() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	user := ""
	if s, ok := m.machine.Session(); ok {
		user = s.User.Username
	}
	header := layout.RenderHeader(title, user, m.width)

	footerHints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
	if p, ok := active.(screen.KeyHintProvider); ok {
		footerHints = p.KeyHints()
	}
	if m.machine.Busy() {
		footerHints = append([]layout.KeyHint{{Key: m.spinner.View(), Description: m.machine.Pending()}}, footerHints...)
	}

	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program and blocks until it exits or ctx is
// cancelled.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(newAppModel(opts), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
