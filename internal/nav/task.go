package nav

import (
	"context"
	"errors"
	"time"

	"github.com/philocompass/compass/internal/api"
	"github.com/philocompass/compass/internal/auth"
	"github.com/philocompass/compass/internal/oauth"
	"github.com/philocompass/compass/internal/quiz"
	"github.com/philocompass/compass/internal/result"
)

// Task is network work started by an intent. Run it off the UI loop, at most
// once, and hand the Outcome back to Machine.Resolve.
type Task struct {
	Name string

	epoch uint64
	run   func() Outcome
}

// Run blocks until the work finishes or its context is cancelled.
func (t *Task) Run() Outcome { return t.run() }

// Epoch identifies the machine generation that started the task.
func (t *Task) Epoch() uint64 { return t.epoch }

// Outcome is the result of a Task. Only this package creates outcomes.
type Outcome interface {
	epoch() uint64
}

type stamp struct{ gen uint64 }

func (s stamp) epoch() uint64 { return s.gen }

type (
	submitOutcome struct {
		stamp
		derived *result.Derived
		err     error
	}

	linkOutcome struct {
		stamp
		err error
	}

	historyOutcome struct {
		stamp
		answers quiz.Vector
		derived *result.Derived
		err     error
	}

	signInOutcome struct {
		stamp
		resp       *api.LoginResponse
		err        error
		registered bool
	}

	oauthOutcome struct {
		stamp
		cb  oauth.Callback
		err error
	}
)

// startTask bumps the epoch so any earlier outcome becomes stale, then binds
// the work to a fresh cancellable context.
func (m *Machine) startTask(name string, timeout time.Duration, work func(context.Context, stamp) Outcome) *Task {
	m.abandon()
	m.epoch++

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	m.busy = true
	m.pending = name
	m.cancel = cancel

	s := stamp{gen: m.epoch}
	return &Task{
		Name:  name,
		epoch: s.gen,
		run: func() Outcome {
			defer cancel()
			return work(ctx, s)
		},
	}
}

// settle marks the pending task finished without invalidating its epoch.
func (m *Machine) settle() {
	if m.cancel != nil {
		m.cancel()
	}
	m.cancel = nil
	m.busy = false
	m.pending = ""
}

// abandon cancels any pending task and makes its outcome stale.
func (m *Machine) abandon() {
	if !m.busy && m.cancel == nil {
		return
	}
	m.settle()
	m.epoch++
}

func formMessage(err error) string {
	var fe *auth.FormError
	if errors.As(err, &fe) {
		return fe.Message
	}
	return err.Error()
}
