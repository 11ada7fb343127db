package result

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/philocompass/compass/internal/api"
	"github.com/philocompass/compass/internal/quiz"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSession bool

func (f fakeSession) IsAuthenticated() bool { return bool(f) }

// fakeBackend records calls and returns canned responses.
type fakeBackend struct {
	submitID  api.AnswerID
	submitErr error
	dist      *api.DistributionResponse
	distErr   error
	cats      *api.CategoryDistribution
	catsErr   error
	linkErr   error
	record    *api.AnswerRecord
	recordErr error

	// blockDist makes Distribution wait for cancellation.
	blockDist bool

	submitted []quiz.Vector
	statIDs   []api.AnswerID
	linked    []api.AnswerID
	statCalls atomic.Int32
}

func (f *fakeBackend) SubmitAnswers(_ context.Context, v quiz.Vector) (api.AnswerID, error) {
	f.submitted = append(f.submitted, v)
	return f.submitID, f.submitErr
}

func (f *fakeBackend) Distribution(ctx context.Context, id api.AnswerID) (*api.DistributionResponse, error) {
	f.statCalls.Add(1)
	if f.blockDist {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.dist, f.distErr
}

func (f *fakeBackend) CategoryDistribution(_ context.Context, id api.AnswerID) (*api.CategoryDistribution, error) {
	f.statCalls.Add(1)
	return f.cats, f.catsErr
}

func (f *fakeBackend) LinkAnswer(_ context.Context, id api.AnswerID) error {
	f.linked = append(f.linked, id)
	return f.linkErr
}

func (f *fakeBackend) LatestAnswer(context.Context) (*api.AnswerRecord, error) {
	return f.record, f.recordErr
}

var sample = quiz.Vector{2, -2, 0, 1, -1, 2, -2, 0, 1, -1, 2, -2, 0, 1, -1, 2}

func okBackend() *fakeBackend {
	return &fakeBackend{
		submitID: 42,
		dist: &api.DistributionResponse{
			Distribution: []api.RadiusCount{{Radius: 1, Count: 0}, {Radius: 3, Count: 4}},
			Label: api.Label{
				MainLabel:      "NSOP",
				SubLabel:       "ADSL",
				FullLabel:      "NSOP-ADSL",
				CategoryScores: api.CategoryScores{Logic: 0, Ethics: -1, Aesthetics: 0, Postmodern: 1},
			},
			ClosestPhilosopher: api.ClosestPhilosopher{
				Philosopher: &api.Philosopher{ID: 1, Name: "Kant"},
				Distance:    2.5,
			},
		},
		cats: &api.CategoryDistribution{
			Logic: []api.ScoreCount{{Score: 0, Count: 3}},
		},
	}
}

func TestSubmitAndFetch(t *testing.T) {
	b := okBackend()
	o := New(b, fakeSession(false), nil)

	d, err := o.SubmitAndFetch(context.Background(), sample)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := &Derived{
		AnswerID:   42,
		Label:      b.dist.Label,
		Neighbors:  b.dist.Distribution,
		Categories: *b.cats,
		Closest:    b.dist.ClosestPhilosopher,
	}
	if diff := cmp.Diff(want, d); diff != "" {
		t.Errorf("derived mismatch (-want +got):\n%s", diff)
	}
	if len(b.submitted) != 1 || b.submitted[0] != sample {
		t.Errorf("expected one submission of the sample vector, got %v", b.submitted)
	}
	if got := b.statCalls.Load(); got != 2 {
		t.Errorf("expected 2 statistics calls, got %d", got)
	}
	if d.UserScore(quiz.Postmodern) != 1 {
		t.Errorf("expected postmodern score 1, got %d", d.UserScore(quiz.Postmodern))
	}
}

func TestSubmitAndFetchWithoutPhilosopher(t *testing.T) {
	b := okBackend()
	b.dist.ClosestPhilosopher = api.ClosestPhilosopher{}
	o := New(b, fakeSession(false), nil)

	d, err := o.SubmitAndFetch(context.Background(), sample)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.AnswerID != 42 || d.Label.FullLabel != "NSOP-ADSL" || len(d.Neighbors) != 2 {
		t.Errorf("expected a populated result, got %+v", d)
	}
	if d.Closest.Philosopher != nil {
		t.Errorf("expected no philosopher, got %+v", d.Closest.Philosopher)
	}
}

func TestSubmitFailureSkipsStatistics(t *testing.T) {
	b := okBackend()
	b.submitErr = errors.New("boom")
	o := New(b, fakeSession(false), nil)

	d, err := o.SubmitAndFetch(context.Background(), sample)
	if err == nil || d != nil {
		t.Fatalf("expected failure with no result, got %v / %v", d, err)
	}
	if got := b.statCalls.Load(); got != 0 {
		t.Errorf("statistics must not be fetched without an id, got %d calls", got)
	}
}

func TestCategoryFailureDiscardsDistribution(t *testing.T) {
	b := okBackend()
	b.catsErr = &api.StatusError{Op: "fetch category distribution", StatusCode: 500}
	o := New(b, fakeSession(false), nil)

	d, err := o.SubmitAndFetch(context.Background(), sample)
	if d != nil {
		t.Fatalf("expected no partial result, got %+v", d)
	}
	var se *api.StatusError
	if !errors.As(err, &se) {
		t.Errorf("expected wrapped StatusError, got %v", err)
	}
}

func TestFirstFailureCancelsSibling(t *testing.T) {
	b := okBackend()
	b.blockDist = true
	b.catsErr = errors.New("category down")
	o := New(b, fakeSession(false), nil)

	_, err := o.SubmitAndFetch(context.Background(), sample)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestSubmitRejectsInvalidVector(t *testing.T) {
	b := okBackend()
	o := New(b, fakeSession(false), nil)

	bad := sample
	bad[3] = 7
	if _, err := o.SubmitAndFetch(context.Background(), bad); !errors.Is(err, quiz.ErrInvalidAnswer) {
		t.Errorf("expected ErrInvalidAnswer, got %v", err)
	}
	if len(b.submitted) != 0 {
		t.Error("invalid vector reached the backend")
	}
}

func TestLinkToAccount(t *testing.T) {
	tests := []struct {
		name    string
		authed  bool
		id      api.AnswerID
		linkErr error
		wantErr error
		calls   int
	}{
		{"ok", true, 42, nil, nil, 1},
		{"signed out", false, 42, nil, ErrNotAuthenticated, 0},
		{"no id", true, 0, nil, ErrNoAnswerID, 0},
		{"server error", true, 42, api.ErrUnauthorized, api.ErrUnauthorized, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := okBackend()
			b.linkErr = tt.linkErr
			o := New(b, fakeSession(tt.authed), nil)

			err := o.LinkToAccount(context.Background(), tt.id)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if len(b.linked) != tt.calls {
				t.Errorf("expected %d link calls, got %d", tt.calls, len(b.linked))
			}
		})
	}
}

func TestLinkIsNotDeduplicated(t *testing.T) {
	b := okBackend()
	o := New(b, fakeSession(true), nil)
	for i := 0; i < 2; i++ {
		if err := o.LinkToAccount(context.Background(), 42); err != nil {
			t.Fatal(err)
		}
	}
	if len(b.linked) != 2 {
		t.Errorf("expected 2 link calls, got %d", len(b.linked))
	}
}

func TestFetchLatestSaved(t *testing.T) {
	b := okBackend()
	b.record = &api.AnswerRecord{
		ID:       17,
		Answer01: 2, Answer02: -2, Answer03: 0, Answer04: 1,
		Answer05: -1, Answer06: 2, Answer07: -2, Answer08: 0,
		Answer09: 1, Answer10: -1, Answer11: 2, Answer12: -2,
		Answer13: 0, Answer14: 1, Answer15: -1, Answer16: 2,
	}
	o := New(b, fakeSession(true), nil)

	v, d, err := o.FetchLatestSaved(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != sample {
		t.Errorf("vector mismatch: got %v", v)
	}
	if d.AnswerID != 17 {
		t.Errorf("expected statistics for record 17, got %d", d.AnswerID)
	}
	if len(b.submitted) != 0 {
		t.Error("history must not resubmit")
	}
}

func TestFetchLatestSavedNotFound(t *testing.T) {
	b := okBackend()
	b.recordErr = &api.StatusError{Op: "fetch saved answers", StatusCode: 404, Message: "No answers found"}
	o := New(b, fakeSession(true), nil)

	_, d, err := o.FetchLatestSaved(context.Background())
	if !errors.Is(err, ErrNoSavedRecord) {
		t.Fatalf("expected ErrNoSavedRecord, got %v", err)
	}
	if d != nil {
		t.Error("expected no derived result")
	}
	if b.statCalls.Load() != 0 {
		t.Error("statistics fetched for a missing record")
	}
}

func TestFetchLatestSavedGenericFailure(t *testing.T) {
	b := okBackend()
	b.recordErr = &api.StatusError{Op: "fetch saved answers", StatusCode: 500}
	o := New(b, fakeSession(true), nil)

	_, _, err := o.FetchLatestSaved(context.Background())
	if err == nil || errors.Is(err, ErrNoSavedRecord) {
		t.Fatalf("expected a generic failure, got %v", err)
	}
}

func TestFetchLatestSavedRequiresSession(t *testing.T) {
	o := New(okBackend(), fakeSession(false), nil)
	if _, _, err := o.FetchLatestSaved(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
}
