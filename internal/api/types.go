package api

import (
	"strconv"
	"time"

	"github.com/philocompass/compass/internal/quiz"
)

// AnswerID identifies a submitted answer vector on the server.
type AnswerID int

func (id AnswerID) String() string {
	return strconv.Itoa(int(id))
}

// User is the account identity returned by login.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// LoginResponse is the body of a successful POST /api/login.
type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

type submitRequest struct {
	Answers []int `json:"answers"`
}

type submitResponse struct {
	Message  string   `json:"message"`
	AnswerID AnswerID `json:"answer_id"`
}

type linkRequest struct {
	AnswerID AnswerID `json:"answer_id"`
}

type helloResponse struct {
	Message string `json:"message"`
}

// RadiusCount is the number of respondents within Radius of an answer.
type RadiusCount struct {
	Radius float64 `json:"radius"`
	Count  int     `json:"count"`
}

// ScoreCount is the number of respondents with a given category score.
type ScoreCount struct {
	Score int `json:"score"`
	Count int `json:"count"`
}

// CategoryScores are the sums of the three answers in each category.
type CategoryScores struct {
	Logic      int `json:"Logic"`
	Ethics     int `json:"Ethics"`
	Aesthetics int `json:"Aesthetics"`
	Postmodern int `json:"Postmodern"`
}

// Get returns the score for a category.
func (c CategoryScores) Get(cat quiz.Category) int {
	switch cat {
	case quiz.Logic:
		return c.Logic
	case quiz.Ethics:
		return c.Ethics
	case quiz.Aesthetics:
		return c.Aesthetics
	case quiz.Postmodern:
		return c.Postmodern
	}
	return 0
}

// SubScores are the raw answers to the cross-cutting questions, keyed by
// server question number.
type SubScores struct {
	Q13 int `json:"Q13"`
	Q14 int `json:"Q14"`
	Q15 int `json:"Q15"`
	Q16 int `json:"Q16"`
}

// Label is the server-computed compass label.
type Label struct {
	MainLabel      string         `json:"main_label"`
	SubLabel       string         `json:"sub_label"`
	FullLabel      string         `json:"full_label"`
	CategoryScores CategoryScores `json:"category_scores"`
	SubScores      SubScores      `json:"sub_scores"`
}

// Philosopher is a reference answer vector attributed to a thinker.
type Philosopher struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Era         string `json:"era"`
	Description string `json:"description"`
}

// ClosestPhilosopher is the nearest reference vector and its distance.
type ClosestPhilosopher struct {
	Philosopher *Philosopher `json:"philosopher"`
	Distance    float64      `json:"distance"`
}

// DistributionResponse is the body of GET /api/statistics/distribution/{id}.
type DistributionResponse struct {
	Distribution       []RadiusCount      `json:"distribution"`
	Label              Label              `json:"label"`
	// A null closest_philosopher decodes to the zero value.
	ClosestPhilosopher ClosestPhilosopher `json:"closest_philosopher"`
}

// CategoryDistribution is the body of
// GET /api/statistics/category-distribution/{id}.
type CategoryDistribution struct {
	Logic      []ScoreCount `json:"logic"`
	Ethics     []ScoreCount `json:"ethics"`
	Aesthetics []ScoreCount `json:"aesthetics"`
	Postmodern []ScoreCount `json:"postmodern"`
}

// For returns the population buckets for a category.
func (c CategoryDistribution) For(cat quiz.Category) []ScoreCount {
	switch cat {
	case quiz.Logic:
		return c.Logic
	case quiz.Ethics:
		return c.Ethics
	case quiz.Aesthetics:
		return c.Aesthetics
	case quiz.Postmodern:
		return c.Postmodern
	}
	return nil
}

// AnswerRecord is a saved answer vector as returned by GET /api/answers/me.
type AnswerRecord struct {
	ID        AnswerID  `json:"id"`
	Answer01  int       `json:"answer_01"`
	Answer02  int       `json:"answer_02"`
	Answer03  int       `json:"answer_03"`
	Answer04  int       `json:"answer_04"`
	Answer05  int       `json:"answer_05"`
	Answer06  int       `json:"answer_06"`
	Answer07  int       `json:"answer_07"`
	Answer08  int       `json:"answer_08"`
	Answer09  int       `json:"answer_09"`
	Answer10  int       `json:"answer_10"`
	Answer11  int       `json:"answer_11"`
	Answer12  int       `json:"answer_12"`
	Answer13  int       `json:"answer_13"`
	Answer14  int       `json:"answer_14"`
	Answer15  int       `json:"answer_15"`
	Answer16  int       `json:"answer_16"`
	CreatedAt time.Time `json:"created_at"`
}

// Vector rebuilds the answers in the order they were submitted.
func (r AnswerRecord) Vector() quiz.Vector {
	return quiz.Vector{
		r.Answer01, r.Answer02, r.Answer03, r.Answer04,
		r.Answer05, r.Answer06, r.Answer07, r.Answer08,
		r.Answer09, r.Answer10, r.Answer11, r.Answer12,
		r.Answer13, r.Answer14, r.Answer15, r.Answer16,
	}
}
