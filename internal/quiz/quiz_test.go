package quiz

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func intp(v int) *int { return &v }

func TestAnswerAdvances(t *testing.T) {
	c := New()
	ev, err := c.Answer(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, ok := ev.(Progressed)
	if !ok {
		t.Fatalf("expected Progressed, got %T", ev)
	}
	if p.Progress.Index != 1 {
		t.Errorf("expected index 1, got %d", p.Progress.Index)
	}
	if got, ok := p.Progress.At(0); !ok || got != 2 {
		t.Errorf("expected slot 0 = 2, got %d (set=%v)", got, ok)
	}
}

func TestAnswerRejectsOutOfRange(t *testing.T) {
	for _, v := range []int{-3, 3, 100, -100} {
		c := New()
		_, err := c.Answer(v)
		if !errors.Is(err, ErrInvalidAnswer) {
			t.Errorf("Answer(%d): expected ErrInvalidAnswer, got %v", v, err)
		}
		if c.Index() != 0 {
			t.Errorf("Answer(%d): index moved to %d", v, c.Index())
		}
		if _, ok := c.Progress().At(0); ok {
			t.Errorf("Answer(%d): value was stored", v)
		}
	}
}

func TestCompletionFiresOnce(t *testing.T) {
	c := New()
	values := []int{2, -2, 0, 1, -1, 2, -2, 0, 1, -1, 2, -2, 0, 1, -1, 2}

	completed := 0
	var got Vector
	for i, v := range values {
		ev, err := c.Answer(v)
		if err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
		if done, ok := ev.(Completed); ok {
			completed++
			got = done.Answers
		}
	}

	if completed != 1 {
		t.Fatalf("expected exactly one completion, got %d", completed)
	}
	var want Vector
	copy(want[:], values)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("completed vector mismatch (-want +got):\n%s", diff)
	}
	if c.Index() != Size-1 {
		t.Errorf("expected index to stay at %d, got %d", Size-1, c.Index())
	}

	if _, err := c.Answer(0); !errors.Is(err, ErrCompleted) {
		t.Errorf("expected ErrCompleted after completion, got %v", err)
	}
}

func TestGoBackAtZeroIsNoop(t *testing.T) {
	c := New()
	before := c.Progress()
	ev := c.GoBack()

	p := ev.(Progressed)
	if diff := cmp.Diff(before, p.Progress); diff != "" {
		t.Errorf("state changed (-before +after):\n%s", diff)
	}
}

func TestGoBackKeepsAnswers(t *testing.T) {
	c := New()
	for _, v := range []int{1, 2, -1} {
		if _, err := c.Answer(v); err != nil {
			t.Fatal(err)
		}
	}
	c.GoBack()
	if c.Index() != 2 {
		t.Fatalf("expected index 2, got %d", c.Index())
	}
	if v, ok := c.Progress().At(2); !ok || v != -1 {
		t.Errorf("expected slot 2 to keep -1, got %d (set=%v)", v, ok)
	}

	if _, err := c.Answer(0); err != nil {
		t.Fatal(err)
	}
	p := c.Progress()
	for i, want := range []int{1, 2, 0} {
		if v, ok := p.At(i); !ok || v != want {
			t.Errorf("slot %d: expected %d, got %d (set=%v)", i, want, v, ok)
		}
	}
}

func TestRestoreSnapshot(t *testing.T) {
	snap := Progress{Index: 7}
	for i := 0; i < 7; i++ {
		snap.Answers[i] = intp(i%5 - 2)
	}

	c, err := Restore(snap)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}

	q, ok := QuestionAt(c.Index())
	if !ok {
		t.Fatal("expected a current question")
	}
	if q.ID != 8 {
		t.Errorf("expected question 8, got %d", q.ID)
	}
	for i := 0; i < 7; i++ {
		if v, ok := c.Progress().At(i); !ok || v != i%5-2 {
			t.Errorf("slot %d: expected %d, got %d (set=%v)", i, i%5-2, v, ok)
		}
	}
}

func TestRestoreDoesNotAlias(t *testing.T) {
	snap := Progress{Index: 1, Answers: [Size]*int{intp(1)}}
	c, err := Restore(snap)
	if err != nil {
		t.Fatal(err)
	}
	*snap.Answers[0] = -2
	if v, _ := c.Progress().At(0); v != 1 {
		t.Errorf("controller state aliased the snapshot: got %d", v)
	}
}

func TestRestoreRejectsBadSnapshots(t *testing.T) {
	tests := []struct {
		name string
		snap Progress
	}{
		{"negative index", Progress{Index: -1}},
		{"index past end", Progress{Index: Size}},
		{"bad value", Progress{Index: 1, Answers: [Size]*int{intp(5)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Restore(tt.snap); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSparseSnapshotJumpsToGap(t *testing.T) {
	snap := Progress{Index: Size - 1}
	for i := 0; i < Size-1; i++ {
		if i == 4 {
			continue
		}
		snap.Answers[i] = intp(0)
	}
	c, err := Restore(snap)
	if err != nil {
		t.Fatal(err)
	}
	ev, err := c.Answer(1)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ev.(Completed); ok {
		t.Fatal("completed with an unanswered slot")
	}
	if c.Index() != 4 {
		t.Errorf("expected jump to slot 4, got %d", c.Index())
	}
}

func TestDisplayOrder(t *testing.T) {
	want := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 16, 14, 15, 13}
	for i, id := range want {
		if Questions[i].ID != id {
			t.Errorf("position %d: expected question %d, got %d", i, id, Questions[i].ID)
		}
	}
}

func TestOptionLabel(t *testing.T) {
	if OptionLabel(2) != "Exactly so" {
		t.Errorf("unexpected label for 2: %q", OptionLabel(2))
	}
	if OptionLabel(-2) != "Absolutely not" {
		t.Errorf("unexpected label for -2: %q", OptionLabel(-2))
	}
	if OptionLabel(9) != "" {
		t.Errorf("expected empty label for 9")
	}
}
