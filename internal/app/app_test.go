package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/philocompass/compass/internal/api"
	"github.com/philocompass/compass/internal/auth"
	"github.com/philocompass/compass/internal/nav"
	"github.com/philocompass/compass/internal/quiz"
	"github.com/philocompass/compass/internal/result"
	"github.com/philocompass/compass/internal/screen"
	"github.com/philocompass/compass/internal/screens/failure"
	"github.com/philocompass/compass/internal/screens/question"
	"github.com/philocompass/compass/internal/screens/summary"
	"github.com/philocompass/compass/internal/screens/welcome"
	"github.com/philocompass/compass/internal/store"
)

type stubAccounts struct{}

func (stubAccounts) Login(context.Context, string, string) (*api.LoginResponse, error) {
	return nil, errors.New("not used")
}

func (stubAccounts) Register(context.Context, string, string, string) (*api.User, error) {
	return nil, errors.New("not used")
}

type stubResults struct {
	err error
}

func (s stubResults) SubmitAndFetch(context.Context, quiz.Vector) (*result.Derived, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &result.Derived{AnswerID: 42, Label: api.Label{FullLabel: "NSOP-ADSL"}}, nil
}

func (stubResults) LinkToAccount(context.Context, api.AnswerID) error { return nil }

func (stubResults) FetchLatestSaved(context.Context) (quiz.Vector, *result.Derived, error) {
	return quiz.Vector{}, nil, result.ErrNoSavedRecord
}

type stubPinger struct{ err error }

func (p stubPinger) Hello(context.Context) (string, error) { return "hello", p.err }

func newTestModel(results stubResults) AppModel {
	m := nav.New(nav.Deps{
		Sessions: auth.NewManager(store.NewMemoryKV(), nil),
		Accounts: stubAccounts{},
		Results:  results,
	})
	return newAppModel(Options{Machine: m, Pinger: stubPinger{}})
}

// drain runs cmd and any batched commands it yields, returning every
// message produced.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// send delivers msg and feeds task outcomes back until the model settles.
func send(m AppModel, msg tea.Msg) AppModel {
	next, cmd := m.Update(msg)
	m = next.(AppModel)
	for _, out := range drain(cmd) {
		switch out.(type) {
		case outcomeMsg, screen.IntentMsg:
			m = send(m, out)
		}
	}
	return m
}

func TestStartsOnWelcome(t *testing.T) {
	m := newTestModel(stubResults{})
	if _, ok := m.router.Active().(*welcome.WelcomeScreen); !ok {
		t.Fatalf("expected welcome screen, got %T", m.router.Active())
	}
}

func TestGuestRunToResult(t *testing.T) {
	m := newTestModel(stubResults{})

	m = send(m, screen.IntentMsg{Intent: nav.ChooseGuest{}})
	if _, ok := m.router.Active().(*question.QuestionScreen); !ok {
		t.Fatalf("expected question screen, got %T", m.router.Active())
	}

	for i := 0; i < quiz.Size; i++ {
		m = send(m, tea.KeyPressMsg{Code: '2', Text: "2"})
	}

	if _, ok := m.router.Active().(*summary.SummaryScreen); !ok {
		t.Fatalf("expected result screen, got %T", m.router.Active())
	}
	if got := m.machine.Result().AnswerID; got != 42 {
		t.Errorf("expected answer 42, got %d", got)
	}
}

func TestFailureScreenAndReload(t *testing.T) {
	m := newTestModel(stubResults{err: &api.StatusError{StatusCode: 500}})

	m = send(m, screen.IntentMsg{Intent: nav.ChooseGuest{}})
	for i := 0; i < quiz.Size; i++ {
		m = send(m, tea.KeyPressMsg{Code: '3', Text: "3"})
	}
	if _, ok := m.router.Active().(*failure.FailureScreen); !ok {
		t.Fatalf("expected failure screen, got %T", m.router.Active())
	}

	m = send(m, tea.KeyPressMsg{Code: 'r', Text: "r"})
	if _, ok := m.router.Active().(*welcome.WelcomeScreen); !ok {
		t.Fatalf("expected welcome after reload, got %T", m.router.Active())
	}
}

func TestRejectedIntentKeepsScreen(t *testing.T) {
	m := newTestModel(stubResults{})
	before := m.router.Active()
	m = send(m, screen.IntentMsg{Intent: nav.SaveResult{}})
	if m.router.Active() != before {
		t.Error("an invalid intent must not change the screen")
	}
}

func TestViewRendersHeader(t *testing.T) {
	m := newTestModel(stubResults{})
	m = send(m, tea.WindowSizeMsg{Width: 100, Height: 40})
	v := m.frame()
	if !strings.Contains(v, "Compass") {
		t.Error("expected the app name in the header")
	}
	if !strings.Contains(v, "guest") {
		t.Error("expected the guest marker in the header")
	}
}

func TestViewTooSmall(t *testing.T) {
	m := newTestModel(stubResults{})
	m = send(m, tea.WindowSizeMsg{Width: 40, Height: 10})
	if !strings.Contains(m.frame(), "Terminal too small") {
		t.Error("expected the minimum size message")
	}
}

func TestHelloIsLoggedOnly(t *testing.T) {
	m := newTestModel(stubResults{})
	msgs := drain(m.Init())
	if len(msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(msgs))
	}
	hm, ok := msgs[0].(helloMsg)
	if !ok || hm.message != "hello" {
		t.Fatalf("unexpected hello result %#v", msgs[0])
	}
	next, cmd := m.Update(hm)
	if cmd != nil {
		t.Error("hello must not trigger further work")
	}
	if next.(AppModel).machine.Phase() != nav.Welcome {
		t.Error("hello must not change phase")
	}
}
