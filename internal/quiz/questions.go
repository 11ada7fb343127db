package quiz

// Category groups questions by the axis they score.
type Category string

const (
	Logic      Category = "Logic"
	Ethics     Category = "Ethics"
	Aesthetics Category = "Aesthetics"
	Postmodern Category = "Postmodern"
	Crosscut   Category = "Cross-cutting"
)

// Categories lists the four scored axes in display order.
var Categories = []Category{Logic, Ethics, Aesthetics, Postmodern}

// Question is one prompt. ID is the server-side question number, which for
// the cross-cutting block differs from the display position.
type Question struct {
	ID       int
	Category Category
	Text     string
}

// Option is one Likert choice.
type Option struct {
	Value int
	Label string
}

// Options are shown from strongest agreement to strongest disagreement.
var Options = []Option{
	{Value: 2, Label: "Exactly so"},
	{Value: 1, Label: "Somewhat agree"},
	{Value: 0, Label: "Can't say either way"},
	{Value: -1, Label: "Somewhat disagree"},
	{Value: -2, Label: "Absolutely not"},
}

// Questions are in display order.
var Questions = [Size]Question{
	{ID: 1, Category: Logic, Text: "Philosophy is more like mathematics than like literature."},
	{ID: 2, Category: Logic, Text: "Hypotheses grounded in theory tend to be correct."},
	{ID: 3, Category: Logic, Text: "The meaning of everyday language is vague."},

	{ID: 4, Category: Ethics, Text: "Rather than a habit of doing good, one should acquire a good character."},
	{ID: 5, Category: Ethics, Text: "A good person is always happy, and a happy person is always good."},
	{ID: 6, Category: Ethics, Text: "Making other people happy is a good thing."},

	{ID: 7, Category: Aesthetics, Text: "Beauty resides in beautiful things."},
	{ID: 8, Category: Aesthetics, Text: "A beautiful thing has a quality of being truly itself."},
	{ID: 9, Category: Aesthetics, Text: "There is no difference between artificial beauty and natural beauty."},

	{ID: 10, Category: Postmodern, Text: "Truth varies endlessly with era, region and everything else."},
	{ID: 11, Category: Postmodern, Text: "One should act on plain feelings rather than on what is logically correct."},
	{ID: 12, Category: Postmodern, Text: "There is no \"true self\" apart from the me in each concrete situation."},

	// High: analytic, low: phenomenological.
	{ID: 16, Category: Crosscut, Text: "Between intuition and logic, I trust logic."},
	// High: deontological, low: utilitarian.
	{ID: 14, Category: Crosscut, Text: "Lying is basically wrong."},
	// High: scientific, low: humanistic.
	{ID: 15, Category: Crosscut, Text: "The natural and social sciences will eventually solve many philosophical problems."},
	// High: agnostic, low: knowable.
	{ID: 13, Category: Crosscut, Text: "There are things humans can never know."},
}

// QuestionAt returns the question shown at display index i.
func QuestionAt(i int) (Question, bool) {
	if i < 0 || i >= Size {
		return Question{}, false
	}
	return Questions[i], true
}

// OptionLabel returns the label for a Likert value.
func OptionLabel(v int) string {
	for _, o := range Options {
		if o.Value == v {
			return o.Label
		}
	}
	return ""
}
