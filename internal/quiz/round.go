package quiz

import "fmt"

// Round tracks progress through a set of questions. It is not safe for
// concurrent use.
type Round struct {
	questions []Question
	current   int
	score     int
	answers   []Answered
}

// Answered records a response to one question.
type Answered struct {
	Question Question
	Choice   string
	Correct  bool
}

// Result summarizes a finished round.
type Result struct {
	Score int
	Total int
}

func (r Result) String() string {
	return fmt.Sprintf("You scored %d out of %d", r.Score, r.Total)
}

// Questions returns every question in the round.
func (r *Round) Questions() []Question {
	out := make([]Question, len(r.questions))
	copy(out, r.questions)
	return out
}

// Current returns the question awaiting an answer.
func (r *Round) Current() (Question, bool) {
	if r.Done() {
		return Question{}, false
	}
	return r.questions[r.current], true
}

// Answer records choice for the current question and advances.
func (r *Round) Answer(choice string) (bool, error) {
	q, ok := r.Current()
	if !ok {
		return false, ErrRoundOver
	}

	correct := choice == q.Answer()
	if correct {
		r.score++
	}
	r.answers = append(r.answers, Answered{Question: q, Choice: choice, Correct: correct})
	r.current++
	return correct, nil
}

// AnswerIndex answers with the option at index i of the current question.
func (r *Round) AnswerIndex(i int) (bool, error) {
	q, ok := r.Current()
	if !ok {
		return false, ErrRoundOver
	}
	if i < 0 || i >= len(q.Options) {
		return false, fmt.Errorf("option %d out of range", i+1)
	}
	return r.Answer(q.Options[i])
}

// Done reports whether every question has been answered.
func (r *Round) Done() bool {
	return r.current >= len(r.questions)
}

// Position returns the zero-based index of the current question.
func (r *Round) Position() int {
	return r.current
}

// Len returns the number of questions.
func (r *Round) Len() int {
	return len(r.questions)
}

// Answers returns the responses so far.
func (r *Round) Answers() []Answered {
	out := make([]Answered, len(r.answers))
	copy(out, r.answers)
	return out
}

// Result returns the score so far.
func (r *Round) Result() Result {
	return Result{Score: r.score, Total: len(r.questions)}
}
