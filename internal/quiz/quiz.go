// Package quiz builds multiple-choice rounds that match a glyph to its
// pronunciation.
package quiz

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/f3rmion/kakha/internal/alphabet"
)

const (
	DefaultQuestions = 10
	DefaultOptions   = 4
)

var (
	ErrNotEnoughCharacters = errors.New("not enough characters for a round")
	ErrNotEnoughAnswers    = errors.New("not enough distinct pronunciations for the options")
	ErrRoundOver           = errors.New("round is over")
)

// Question asks for the pronunciation of one character.
type Question struct {
	Character alphabet.Character
	Options   []string // Distinct pronunciations, the answer appears exactly once
	Correct   int      // Index of the answer in Options
}

// Answer returns the correct option.
func (q Question) Answer() string {
	return q.Options[q.Correct]
}

// Generator draws quiz rounds from a table.
type Generator struct {
	rng       *rand.Rand
	questions int
	options   int
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed makes rounds reproducible.
func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithSource sets the random source.
func WithSource(src rand.Source) Option {
	return func(g *Generator) {
		g.rng = rand.New(src)
	}
}

// WithQuestions sets the number of questions per round.
func WithQuestions(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.questions = n
		}
	}
}

// WithOptions sets the number of answer options per question.
func WithOptions(n int) Option {
	return func(g *Generator) {
		if n > 1 {
			g.options = n
		}
	}
}

// NewGenerator returns a generator for the default 10x4 round.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		questions: DefaultQuestions,
		options:   DefaultOptions,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return g
}

// Round samples distinct characters from the table and builds a question
// for each. Incorrect options are drawn from the other entries'
// pronunciations, deduplicated so no option repeats.
func (g *Generator) Round(table *alphabet.Table) (*Round, error) {
	if table.Len() < g.questions {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughCharacters, table.Len(), g.questions)
	}

	pool := distinctPronunciations(table)
	if len(pool) < g.options {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughAnswers, len(pool), g.options)
	}

	picks := g.rng.Perm(table.Len())[:g.questions]
	questions := make([]Question, 0, g.questions)
	for _, idx := range picks {
		questions = append(questions, g.question(table.At(idx), pool))
	}

	return &Round{questions: questions}, nil
}

func (g *Generator) question(c alphabet.Character, pool []string) Question {
	wrong := make([]string, 0, len(pool)-1)
	for _, p := range pool {
		if p != c.Pronunciation {
			wrong = append(wrong, p)
		}
	}
	g.rng.Shuffle(len(wrong), func(i, j int) {
		wrong[i], wrong[j] = wrong[j], wrong[i]
	})

	options := make([]string, 0, g.options)
	options = append(options, wrong[:g.options-1]...)
	correct := g.rng.IntN(g.options)
	options = append(options, "")
	copy(options[correct+1:], options[correct:])
	options[correct] = c.Pronunciation

	return Question{
		Character: c,
		Options:   options,
		Correct:   correct,
	}
}

func distinctPronunciations(table *alphabet.Table) []string {
	seen := make(map[string]bool, table.Len())
	var out []string
	for _, c := range table.All() {
		if !seen[c.Pronunciation] {
			seen[c.Pronunciation] = true
			out = append(out, c.Pronunciation)
		}
	}
	return out
}
