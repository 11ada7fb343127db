// Package quiz holds the answer buffer for one pass through the sixteen
// compass questions. It has no network or authentication knowledge.
package quiz

import (
	"errors"
	"fmt"
)

// Size is the number of questions in one pass.
const Size = 16

const (
	MinValue = -2
	MaxValue = 2
)

var (
	// ErrInvalidAnswer is returned for values outside [MinValue, MaxValue].
	ErrInvalidAnswer = errors.New("answer must be between -2 and 2")

	// ErrCompleted is returned when answering after the last slot was filled.
	ErrCompleted = errors.New("quiz already completed")
)

// Vector is a fully populated answer set in display order.
type Vector [Size]int

// Slice returns the vector as a plain slice for wire encoding.
func (v Vector) Slice() []int {
	out := make([]int, Size)
	copy(out, v[:])
	return out
}

// Validate reports whether every value is in range.
func (v Vector) Validate() error {
	for i, a := range v {
		if !ValidAnswer(a) {
			return fmt.Errorf("slot %d: %w", i+1, ErrInvalidAnswer)
		}
	}
	return nil
}

// ValidAnswer reports whether v is a Likert value.
func ValidAnswer(v int) bool {
	return v >= MinValue && v <= MaxValue
}

// Progress is a snapshot of an in-flight quiz. A nil slot is unanswered.
type Progress struct {
	Index   int
	Answers [Size]*int
}

// Answered returns how many slots hold a value.
func (p Progress) Answered() int {
	n := 0
	for _, a := range p.Answers {
		if a != nil {
			n++
		}
	}
	return n
}

// At returns the stored answer for slot i.
func (p Progress) At(i int) (int, bool) {
	if i < 0 || i >= Size || p.Answers[i] == nil {
		return 0, false
	}
	return *p.Answers[i], true
}

// clone deep-copies the answer pointers so snapshots never alias.
func (p Progress) clone() Progress {
	out := Progress{Index: p.Index}
	for i, a := range p.Answers {
		if a != nil {
			v := *a
			out.Answers[i] = &v
		}
	}
	return out
}

// Event reports a state change to the owner of the controller.
type Event interface {
	isEvent()
}

// Progressed is emitted after every answer or back step that did not finish
// the quiz.
type Progressed struct {
	Progress Progress
}

// Completed is emitted once, when the last slot is answered.
type Completed struct {
	Answers Vector
}

func (Progressed) isEvent() {}
func (Completed) isEvent()  {}

// Controller walks the question buffer forward on answer and one step back on
// request.
type Controller struct {
	progress Progress
	done     bool
}

// New returns a controller positioned at the first question.
func New() *Controller {
	return &Controller{}
}

// Restore returns a controller seeded from a snapshot. No events are replayed.
func Restore(p Progress) (*Controller, error) {
	if p.Index < 0 || p.Index >= Size {
		return nil, fmt.Errorf("restore: index %d out of range", p.Index)
	}
	for i, a := range p.Answers {
		if a != nil && !ValidAnswer(*a) {
			return nil, fmt.Errorf("restore: slot %d: %w", i+1, ErrInvalidAnswer)
		}
	}
	return &Controller{progress: p.clone()}, nil
}

// Progress returns a copy of the current state.
func (c *Controller) Progress() Progress {
	return c.progress.clone()
}

// Index returns the zero-based current question pointer.
func (c *Controller) Index() int {
	return c.progress.Index
}

// Done reports whether the completion event has fired.
func (c *Controller) Done() bool {
	return c.done
}

// Answer records v for the current question. On the last slot it returns a
// Completed event and stays put; otherwise it advances.
func (c *Controller) Answer(v int) (Event, error) {
	if c.done {
		return nil, ErrCompleted
	}
	if !ValidAnswer(v) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAnswer, v)
	}

	c.progress.Answers[c.progress.Index] = &v

	if c.progress.Index == Size-1 {
		var out Vector
		for i, a := range c.progress.Answers {
			if a == nil {
				// A restored snapshot may be sparse; send the user to
				// the first gap.
				c.progress.Index = i
				return Progressed{Progress: c.Progress()}, nil
			}
			out[i] = *a
		}
		c.done = true
		return Completed{Answers: out}, nil
	}

	c.progress.Index++
	return Progressed{Progress: c.Progress()}, nil
}

// GoBack moves to the previous question. Stored answers are kept.
func (c *Controller) GoBack() Event {
	if c.progress.Index > 0 && !c.done {
		c.progress.Index--
	}
	return Progressed{Progress: c.Progress()}
}
