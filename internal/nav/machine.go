// Package nav is the top-level controller of the client. It owns the active
// phase, the single-slot return point for the history screen, the in-flight
// quiz progress and the displayed result. Screens raise intents; the Machine
// alone decides what they mean.
package nav

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/philocompass/compass/internal/api"
	"github.com/philocompass/compass/internal/auth"
	"github.com/philocompass/compass/internal/oauth"
	"github.com/philocompass/compass/internal/quiz"
	"github.com/philocompass/compass/internal/result"
)

// Phase is the screen currently shown.
type Phase int

const (
	Welcome Phase = iota
	Login
	Register
	Question
	Result
	History
)

func (p Phase) String() string {
	switch p {
	case Welcome:
		return "welcome"
	case Login:
		return "login"
	case Register:
		return "register"
	case Question:
		return "question"
	case Result:
		return "result"
	case History:
		return "history"
	}
	return "phase(" + strconv.Itoa(int(p)) + ")"
}

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrBusy              = errors.New("a request is already in progress")
	ErrNotAuthenticated  = errors.New("sign in required")
	ErrFailed            = errors.New("dismiss the error first")
	ErrOAuthUnavailable  = errors.New("google sign-in is not configured")
)

// User-facing messages.
const (
	MsgRegisteredLoginFailed = "Registration succeeded but login failed. Please sign in."
	MsgOAuthIncomplete       = "Google sign-in returned incomplete details. Please try again."
	MsgOAuthTimedOut         = "Timed out waiting for Google sign-in."
	MsgResultSaved           = "Your result has been saved."
	MsgResultNotSaved        = "Result was not saved."
)

// Sessions is the auth session the machine signs in and out.
type Sessions interface {
	Login(ctx context.Context, token string, user api.User) error
	Logout(ctx context.Context) error
	IsAuthenticated() bool
	Session() (auth.Session, bool)
}

// Accounts performs credential exchange with the backend.
type Accounts interface {
	Login(ctx context.Context, username, password string) (*api.LoginResponse, error)
	Register(ctx context.Context, username, email, password string) (*api.User, error)
}

// Results drives the submit, link and history network flows.
type Results interface {
	SubmitAndFetch(ctx context.Context, answers quiz.Vector) (*result.Derived, error)
	LinkToAccount(ctx context.Context, id api.AnswerID) error
	FetchLatestSaved(ctx context.Context) (quiz.Vector, *result.Derived, error)
}

// OAuthWaiter blocks until the sign-in redirect arrives.
type OAuthWaiter interface {
	Await(ctx context.Context) (oauth.Callback, error)
}

// Deps wires the machine to its collaborators. OAuth may be nil.
type Deps struct {
	Sessions Sessions
	Accounts Accounts
	Results  Results
	OAuth    OAuthWaiter
	Logger   *zap.Logger

	// Timeout bounds each network task. Zero means no bound beyond phase
	// cancellation.
	Timeout time.Duration
	// OAuthWait bounds the wait for the sign-in redirect.
	OAuthWait time.Duration
}

// HistoryView is what the history screen shows.
type HistoryView struct {
	Loaded  bool
	Empty   bool
	Answers quiz.Vector
	Result  *result.Derived
}

// Machine is not safe for concurrent use. Call it from the UI loop only and
// run the returned Tasks elsewhere.
type Machine struct {
	deps   Deps
	logger *zap.Logger

	phase       Phase
	previous    Phase
	hasPrevious bool

	progress quiz.Progress
	ctrl     *quiz.Controller

	derived *result.Derived
	saved   bool
	history HistoryView

	failure error
	formErr string
	notice  string

	busy    bool
	pending string
	epoch   uint64
	cancel  context.CancelFunc
}

// New returns a machine in the welcome phase.
func New(deps Deps) *Machine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Machine{deps: deps, logger: logger, phase: Welcome}
}

func (m *Machine) Phase() Phase { return m.phase }

// Previous returns the phase the history screen will return to, if any.
func (m *Machine) Previous() (Phase, bool) { return m.previous, m.hasPrevious }

// Busy reports whether a network task is outstanding.
func (m *Machine) Busy() bool { return m.busy }

// Pending names the outstanding task, or "".
func (m *Machine) Pending() string { return m.pending }

// Failure is the single error state shown with a reload affordance.
func (m *Machine) Failure() error { return m.failure }

// FormError is an inline message for the login and register forms.
func (m *Machine) FormError() string { return m.formErr }

// Notice is an informational message for the current screen.
func (m *Machine) Notice() string { return m.notice }

// Progress returns a snapshot of the quiz progress.
func (m *Machine) Progress() quiz.Progress {
	if m.ctrl != nil {
		return m.ctrl.Progress()
	}
	return m.progress
}

// CurrentQuestion returns the question at the current index and the answer
// already recorded for it, if any.
func (m *Machine) CurrentQuestion() (q quiz.Question, index int, prior *int) {
	p := m.Progress()
	q, _ = quiz.QuestionAt(p.Index)
	if v, ok := p.At(p.Index); ok {
		prior = &v
	}
	return q, p.Index, prior
}

// Result is the derived result for the just-submitted quiz.
func (m *Machine) Result() *result.Derived { return m.derived }

// Saved reports whether the current result was linked to the account.
func (m *Machine) Saved() bool { return m.saved }

// History returns the history screen state.
func (m *Machine) History() HistoryView { return m.history }

func (m *Machine) Authenticated() bool { return m.deps.Sessions.IsAuthenticated() }

func (m *Machine) Session() (auth.Session, bool) { return m.deps.Sessions.Session() }

// Dispatch applies an intent. It returns a Task when the intent needs network
// work; the caller runs it off the UI loop and feeds the Outcome to Resolve.
func (m *Machine) Dispatch(in Intent) (*Task, error) {
	log := m.logger.With(zap.String("intent", Name(in)), zap.Stringer("phase", m.phase))

	if m.failure != nil {
		switch in.(type) {
		case Reload, Logout, BackToWelcome:
		default:
			return nil, ErrFailed
		}
	}

	task, err := m.dispatch(in)
	if err != nil {
		log.Debug("intent rejected", zap.Error(err))
		return nil, err
	}
	log.Debug("intent applied", zap.Stringer("to", m.phase))
	return task, nil
}

func (m *Machine) dispatch(in Intent) (*Task, error) {
	switch in := in.(type) {
	case ChooseLogin:
		return nil, m.move(in, Login, Welcome)
	case ChooseRegister:
		return nil, m.move(in, Register, Welcome)
	case SwitchToRegister:
		return nil, m.move(in, Register, Login)
	case SwitchToLogin:
		return nil, m.move(in, Login, Register)

	case ChooseGuest:
		if err := m.require(in, Welcome); err != nil {
			return nil, err
		}
		m.resetProgress()
		return nil, m.enterQuestion()

	case SubmitLogin:
		return m.submitLogin(in)
	case SubmitRegister:
		return m.submitRegister(in)
	case BeginOAuth:
		return m.beginOAuth(in)
	case OAuthCallback:
		if err := m.require(in, Welcome, Login, Register); err != nil {
			return nil, err
		}
		return nil, m.applyOAuth(in)

	case Answer:
		return m.answer(in)
	case GoBack:
		if err := m.require(in, Question); err != nil {
			return nil, err
		}
		if m.busy {
			return nil, ErrBusy
		}
		m.ctrl.GoBack()
		return nil, nil

	case OpenHistory:
		return m.openHistory(in)
	case BackFromHistory:
		if err := m.require(in, History); err != nil {
			return nil, err
		}
		target := Welcome
		if m.hasPrevious && (m.previous == Result || m.previous == Question) {
			target = m.previous
		}
		if target == Result && m.derived == nil {
			target = Welcome
		}
		m.previous, m.hasPrevious = Welcome, false
		m.history = HistoryView{}
		switch target {
		case Question:
			return nil, m.enterQuestion()
		case Result:
			m.setPhase(Result)
		default:
			m.reset()
		}
		return nil, nil

	case SaveResult:
		return m.saveResult(in)
	case SkipSave:
		if err := m.require(in, Result); err != nil {
			return nil, err
		}
		m.notice = MsgResultNotSaved
		return nil, nil

	case Logout:
		if !m.deps.Sessions.IsAuthenticated() {
			return nil, ErrNotAuthenticated
		}
		ctx, cancel := m.localContext()
		defer cancel()
		if err := m.deps.Sessions.Logout(ctx); err != nil {
			m.logger.Warn("logout did not clear storage", zap.Error(err))
		}
		m.reset()
		return nil, nil

	case BackToWelcome:
		if err := m.require(in, Welcome, Login, Register, Result, History); err != nil {
			return nil, err
		}
		m.reset()
		return nil, nil

	case Reload:
		m.reset()
		return nil, nil
	}
	return nil, fmt.Errorf("%w: unknown intent %T", ErrInvalidTransition, in)
}

func (m *Machine) submitLogin(in SubmitLogin) (*Task, error) {
	if err := m.require(in, Login); err != nil {
		return nil, err
	}
	if m.busy {
		return nil, ErrBusy
	}
	if err := auth.ValidateCredentials(auth.Credentials{Username: in.Username, Password: in.Password}); err != nil {
		m.formErr = formMessage(err)
		return nil, nil
	}
	m.formErr = ""
	return m.startTask("login", m.deps.Timeout, func(ctx context.Context, s stamp) Outcome {
		resp, err := m.deps.Accounts.Login(ctx, in.Username, in.Password)
		return signInOutcome{stamp: s, resp: resp, err: err}
	}), nil
}

func (m *Machine) submitRegister(in SubmitRegister) (*Task, error) {
	if err := m.require(in, Register); err != nil {
		return nil, err
	}
	if m.busy {
		return nil, ErrBusy
	}
	form := auth.Registration{Username: in.Username, Email: in.Email, Password: in.Password, Confirm: in.Confirm}
	if err := auth.ValidateRegistration(form); err != nil {
		m.formErr = formMessage(err)
		return nil, nil
	}
	m.formErr = ""
	return m.startTask("register", m.deps.Timeout, func(ctx context.Context, s stamp) Outcome {
		if _, err := m.deps.Accounts.Register(ctx, in.Username, in.Email, in.Password); err != nil {
			return signInOutcome{stamp: s, err: err}
		}
		resp, err := m.deps.Accounts.Login(ctx, in.Username, in.Password)
		return signInOutcome{stamp: s, resp: resp, err: err, registered: true}
	}), nil
}

func (m *Machine) beginOAuth(in BeginOAuth) (*Task, error) {
	if err := m.require(in, Welcome, Login, Register); err != nil {
		return nil, err
	}
	if m.deps.OAuth == nil {
		return nil, ErrOAuthUnavailable
	}
	if m.busy {
		return nil, ErrBusy
	}
	m.formErr = ""
	wait := m.deps.OAuthWait
	if wait <= 0 {
		wait = 3 * time.Minute
	}
	return m.startTask("oauth", wait, func(ctx context.Context, s stamp) Outcome {
		cb, err := m.deps.OAuth.Await(ctx)
		return oauthOutcome{stamp: s, cb: cb, err: err}
	}), nil
}

func (m *Machine) applyOAuth(cb OAuthCallback) error {
	id, err := strconv.Atoi(cb.UserID)
	if cb.Token == "" || cb.Username == "" || err != nil {
		m.formErr = MsgOAuthIncomplete
		return nil
	}
	return m.signIn(cb.Token, api.User{ID: id, Username: cb.Username})
}

func (m *Machine) signIn(token string, user api.User) error {
	ctx, cancel := m.localContext()
	defer cancel()
	if err := m.deps.Sessions.Login(ctx, token, user); err != nil {
		m.fail(fmt.Errorf("save session: %w", err))
		return nil
	}
	m.resetProgress()
	return m.enterQuestion()
}

func (m *Machine) answer(in Answer) (*Task, error) {
	if err := m.require(in, Question); err != nil {
		return nil, err
	}
	if m.busy {
		return nil, ErrBusy
	}
	ev, err := m.ctrl.Answer(in.Value)
	if err != nil {
		return nil, err
	}

	done, ok := ev.(quiz.Completed)
	if !ok {
		return nil, nil
	}
	answers := done.Answers
	return m.startTask("submit", m.deps.Timeout, func(ctx context.Context, s stamp) Outcome {
		d, err := m.deps.Results.SubmitAndFetch(ctx, answers)
		return submitOutcome{stamp: s, derived: d, err: err}
	}), nil
}

func (m *Machine) openHistory(in OpenHistory) (*Task, error) {
	if err := m.require(in, Welcome, Question, Result, History); err != nil {
		return nil, err
	}
	if !m.deps.Sessions.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	if m.busy {
		return nil, ErrBusy
	}

	// Single slot: re-entering from history overwrites it, so back from a
	// nested history lands on welcome.
	m.previous, m.hasPrevious = m.phase, m.phase != Welcome
	m.history = HistoryView{}
	m.setPhase(History)

	return m.startTask("history", m.deps.Timeout, func(ctx context.Context, s stamp) Outcome {
		v, d, err := m.deps.Results.FetchLatestSaved(ctx)
		return historyOutcome{stamp: s, answers: v, derived: d, err: err}
	}), nil
}

func (m *Machine) saveResult(in SaveResult) (*Task, error) {
	if err := m.require(in, Result); err != nil {
		return nil, err
	}
	if !m.deps.Sessions.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	if m.derived == nil {
		return nil, fmt.Errorf("%w: no result to save", ErrInvalidTransition)
	}
	if m.busy {
		return nil, ErrBusy
	}
	id := m.derived.AnswerID
	return m.startTask("link", m.deps.Timeout, func(ctx context.Context, s stamp) Outcome {
		return linkOutcome{stamp: s, err: m.deps.Results.LinkToAccount(ctx, id)}
	}), nil
}

// Resolve applies the outcome of a Task. Outcomes from tasks abandoned by a
// phase change, or superseded by a newer task, are dropped. It may return a
// follow-up Task.
func (m *Machine) Resolve(o Outcome) *Task {
	if o == nil {
		return nil
	}
	if !m.busy || o.epoch() != m.epoch {
		m.logger.Debug("dropping stale outcome",
			zap.Uint64("outcome_epoch", o.epoch()),
			zap.Uint64("epoch", m.epoch),
			zap.Stringer("phase", m.phase))
		return nil
	}
	name := m.pending
	m.settle()

	switch o := o.(type) {
	case submitOutcome:
		if o.err != nil {
			m.fail(o.err)
			return nil
		}
		m.derived = o.derived
		m.saved = false
		m.resetProgress()
		m.setPhase(Result)

	case linkOutcome:
		if o.err != nil {
			m.fail(o.err)
			return nil
		}
		m.saved = true
		m.notice = MsgResultSaved

	case historyOutcome:
		switch {
		case errors.Is(o.err, result.ErrNoSavedRecord):
			m.history = HistoryView{Loaded: true, Empty: true}
		case o.err != nil:
			m.fail(o.err)
		default:
			m.history = HistoryView{Loaded: true, Answers: o.answers, Result: o.derived}
		}

	case signInOutcome:
		switch {
		case o.err != nil && o.registered:
			m.logger.Warn("login after registration failed", zap.Error(o.err))
			m.formErr = MsgRegisteredLoginFailed
		case o.err != nil:
			m.logger.Info("sign-in rejected", zap.String("task", name), zap.Error(o.err))
			m.formErr = api.ServerMessage(o.err)
		default:
			_ = m.signIn(o.resp.Token, o.resp.User)
		}

	case oauthOutcome:
		switch {
		case errors.Is(o.err, context.DeadlineExceeded):
			m.formErr = MsgOAuthTimedOut
		case o.err != nil:
			m.logger.Warn("oauth wait failed", zap.Error(o.err))
			m.formErr = MsgOAuthIncomplete
		default:
			_ = m.applyOAuth(OAuthCallback{Token: o.cb.Token, Username: o.cb.Username, UserID: o.cb.UserID})
		}
	}
	return nil
}

// move is a plain phase change guarded by the allowed source phases.
func (m *Machine) move(in Intent, to Phase, from ...Phase) error {
	if err := m.require(in, from...); err != nil {
		return err
	}
	m.setPhase(to)
	return nil
}

func (m *Machine) require(in Intent, allowed ...Phase) error {
	for _, p := range allowed {
		if m.phase == p {
			return nil
		}
	}
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, Name(in), m.phase)
}

func (m *Machine) setPhase(p Phase) {
	if p != m.phase {
		m.abandon()
		m.formErr = ""
		m.notice = ""
	}
	if m.phase == Question && p != Question && m.ctrl != nil {
		m.progress = m.ctrl.Progress()
		m.ctrl = nil
	}
	m.phase = p
}

// enterQuestion restores the controller from the saved snapshot.
func (m *Machine) enterQuestion() error {
	ctrl, err := quiz.Restore(m.progress)
	if err != nil {
		m.logger.Warn("discarding unusable quiz progress", zap.Error(err))
		ctrl = quiz.New()
	}
	m.setPhase(Question)
	m.ctrl = ctrl
	return nil
}

func (m *Machine) resetProgress() {
	m.progress = quiz.Progress{}
	if m.ctrl != nil {
		m.ctrl = quiz.New()
	}
}

// reset clears all result and progress state and returns to welcome.
func (m *Machine) reset() {
	m.abandon()
	m.ctrl = nil
	m.progress = quiz.Progress{}
	m.derived = nil
	m.saved = false
	m.history = HistoryView{}
	m.previous, m.hasPrevious = Welcome, false
	m.failure = nil
	m.formErr = ""
	m.notice = ""
	m.phase = Welcome
}

func (m *Machine) fail(err error) {
	m.logger.Error("flow failed", zap.Stringer("phase", m.phase), zap.Error(err))
	m.failure = err
}

// localContext bounds session storage writes made on the UI loop.
func (m *Machine) localContext() (context.Context, context.CancelFunc) {
	if m.deps.Timeout > 0 {
		return context.WithTimeout(context.Background(), m.deps.Timeout)
	}
	return context.WithCancel(context.Background())
}
