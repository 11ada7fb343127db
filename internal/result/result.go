// Package result turns an answer vector into the figures shown on the result
// screen. Every operation is attempted once; failures are returned whole.
package result

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/philocompass/compass/internal/api"
	"github.com/philocompass/compass/internal/quiz"
)

var (
	// ErrNoSavedRecord means the account has no saved answers yet. It is an
	// expected outcome, not a failure.
	ErrNoSavedRecord = errors.New("no saved result")

	ErrNotAuthenticated = errors.New("sign in required")
	ErrNoAnswerID       = errors.New("no submitted answer to link")
)

// Backend is the subset of the API client the orchestrator needs.
type Backend interface {
	SubmitAnswers(ctx context.Context, answers quiz.Vector) (api.AnswerID, error)
	Distribution(ctx context.Context, id api.AnswerID) (*api.DistributionResponse, error)
	CategoryDistribution(ctx context.Context, id api.AnswerID) (*api.CategoryDistribution, error)
	LinkAnswer(ctx context.Context, id api.AnswerID) error
	LatestAnswer(ctx context.Context) (*api.AnswerRecord, error)
}

// Session reports whether bearer calls can be made.
type Session interface {
	IsAuthenticated() bool
}

// Derived is everything the result screen renders for one answer vector.
type Derived struct {
	AnswerID   api.AnswerID
	Label      api.Label
	Neighbors  []api.RadiusCount
	Categories api.CategoryDistribution
	Closest    api.ClosestPhilosopher
}

// UserScore returns the user's own score in a category.
func (d *Derived) UserScore(cat quiz.Category) int {
	return d.Label.CategoryScores.Get(cat)
}

// Orchestrator sequences the submit and statistics calls.
type Orchestrator struct {
	backend Backend
	session Session
	logger  *zap.Logger
}

// New creates an Orchestrator.
func New(backend Backend, session Session, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{backend: backend, session: session, logger: logger}
}

// SubmitAndFetch submits answers, then fetches both statistics for the
// returned id concurrently. Any failure discards everything fetched so far.
func (o *Orchestrator) SubmitAndFetch(ctx context.Context, answers quiz.Vector) (*Derived, error) {
	if err := answers.Validate(); err != nil {
		return nil, err
	}

	id, err := o.backend.SubmitAnswers(ctx, answers)
	if err != nil {
		return nil, fmt.Errorf("submit answers: %w", err)
	}
	o.logger.Info("answers submitted", zap.Stringer("answer_id", id))

	return o.fetchStats(ctx, id)
}

// LinkToAccount attaches a submitted answer to the signed-in account.
func (o *Orchestrator) LinkToAccount(ctx context.Context, id api.AnswerID) error {
	if !o.session.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if id == 0 {
		return ErrNoAnswerID
	}
	if err := o.backend.LinkAnswer(ctx, id); err != nil {
		return fmt.Errorf("link answer %s: %w", id, err)
	}
	o.logger.Info("answer linked", zap.Stringer("answer_id", id))
	return nil
}

// FetchLatestSaved loads the account's most recent saved answers and their
// statistics. It returns ErrNoSavedRecord when there is nothing saved.
func (o *Orchestrator) FetchLatestSaved(ctx context.Context) (quiz.Vector, *Derived, error) {
	if !o.session.IsAuthenticated() {
		return quiz.Vector{}, nil, ErrNotAuthenticated
	}

	rec, err := o.backend.LatestAnswer(ctx)
	if errors.Is(err, api.ErrNotFound) {
		return quiz.Vector{}, nil, ErrNoSavedRecord
	}
	if err != nil {
		return quiz.Vector{}, nil, fmt.Errorf("fetch saved answers: %w", err)
	}

	answers := rec.Vector()
	if err := answers.Validate(); err != nil {
		return quiz.Vector{}, nil, fmt.Errorf("saved answers %s: %w", rec.ID, err)
	}

	d, err := o.fetchStats(ctx, rec.ID)
	if err != nil {
		return quiz.Vector{}, nil, err
	}
	return answers, d, nil
}

func (o *Orchestrator) fetchStats(ctx context.Context, id api.AnswerID) (*Derived, error) {
	var (
		dist *api.DistributionResponse
		cats *api.CategoryDistribution
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		dist, err = o.backend.Distribution(gctx, id)
		if err != nil {
			return fmt.Errorf("fetch distribution: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		cats, err = o.backend.CategoryDistribution(gctx, id)
		if err != nil {
			return fmt.Errorf("fetch category distribution: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		o.logger.Warn("statistics fetch failed", zap.Stringer("answer_id", id), zap.Error(err))
		return nil, err
	}

	return &Derived{
		AnswerID:   id,
		Label:      dist.Label,
		Neighbors:  dist.Distribution,
		Categories: *cats,
		Closest:    dist.ClosestPhilosopher,
	}, nil
}
