package quiz

import (
	"errors"
	"testing"

	"github.com/f3rmion/kakha/internal/alphabet"
)

func defaultTable(t *testing.T) *alphabet.Table {
	t.Helper()
	table, err := alphabet.Default()
	if err != nil {
		t.Fatalf("alphabet.Default() error = %v", err)
	}
	return table
}

func TestRoundShape(t *testing.T) {
	table := defaultTable(t)

	for seed := uint64(0); seed < 50; seed++ {
		round, err := NewGenerator(WithSeed(seed)).Round(table)
		if err != nil {
			t.Fatalf("seed %d: Round() error = %v", seed, err)
		}

		qs := round.Questions()
		if len(qs) != DefaultQuestions {
			t.Fatalf("seed %d: %d questions, want %d", seed, len(qs), DefaultQuestions)
		}

		glyphs := make(map[string]bool)
		for _, q := range qs {
			if glyphs[q.Character.Glyph] {
				t.Errorf("seed %d: glyph %s repeated", seed, q.Character.Glyph)
			}
			glyphs[q.Character.Glyph] = true

			if len(q.Options) != DefaultOptions {
				t.Errorf("seed %d: %s has %d options", seed, q.Character.Glyph, len(q.Options))
			}

			seen := make(map[string]bool)
			correct := 0
			for _, opt := range q.Options {
				if seen[opt] {
					t.Errorf("seed %d: %s option %q repeated", seed, q.Character.Glyph, opt)
				}
				seen[opt] = true
				if opt == q.Character.Pronunciation {
					correct++
				}
			}
			if correct != 1 {
				t.Errorf("seed %d: %s answer appears %d times", seed, q.Character.Glyph, correct)
			}
			if q.Answer() != q.Character.Pronunciation {
				t.Errorf("seed %d: Answer() = %q, want %q", seed, q.Answer(), q.Character.Pronunciation)
			}
			for _, opt := range q.Options {
				if _, ok := table.Lookup(opt); !ok {
					t.Errorf("seed %d: option %q not in table", seed, opt)
				}
			}
		}
	}
}

func TestSeedIsReproducible(t *testing.T) {
	table := defaultTable(t)

	a, _ := NewGenerator(WithSeed(7)).Round(table)
	b, _ := NewGenerator(WithSeed(7)).Round(table)

	qa, qb := a.Questions(), b.Questions()
	for i := range qa {
		if qa[i].Character.Glyph != qb[i].Character.Glyph || qa[i].Correct != qb[i].Correct {
			t.Fatalf("question %d differs between identical seeds", i)
		}
	}
}

func TestRoundScoring(t *testing.T) {
	round, err := NewGenerator(WithSeed(3)).Round(defaultTable(t))
	if err != nil {
		t.Fatal(err)
	}

	want := 0
	for i := 0; !round.Done(); i++ {
		q, ok := round.Current()
		if !ok {
			t.Fatal("Current() returned false before Done()")
		}
		if round.Position() != i {
			t.Errorf("Position() = %d, want %d", round.Position(), i)
		}

		choice := q.Options[(q.Correct+1)%len(q.Options)]
		if i%2 == 0 {
			choice = q.Answer()
			want++
		}
		correct, err := round.Answer(choice)
		if err != nil {
			t.Fatalf("Answer() error = %v", err)
		}
		if correct != (i%2 == 0) {
			t.Errorf("question %d: correct = %v", i, correct)
		}
	}

	res := round.Result()
	if res.Score != want || res.Total != DefaultQuestions {
		t.Errorf("Result() = %+v, want score %d of %d", res, want, DefaultQuestions)
	}
	if got := res.String(); got != "You scored 5 out of 10" {
		t.Errorf("String() = %q", got)
	}
	if len(round.Answers()) != DefaultQuestions {
		t.Errorf("Answers() len = %d", len(round.Answers()))
	}

	if _, err := round.Answer("ka"); !errors.Is(err, ErrRoundOver) {
		t.Errorf("Answer() after end error = %v, want ErrRoundOver", err)
	}
}

func TestAnswerIndex(t *testing.T) {
	round, _ := NewGenerator(WithSeed(11), WithQuestions(1)).Round(defaultTable(t))
	q, _ := round.Current()

	if _, err := round.AnswerIndex(len(q.Options)); err == nil {
		t.Error("expected out of range error")
	}
	correct, err := round.AnswerIndex(q.Correct)
	if err != nil || !correct {
		t.Errorf("AnswerIndex(correct) = %v, %v", correct, err)
	}
	if !round.Done() {
		t.Error("single question round should be done")
	}
}

func TestRoundErrors(t *testing.T) {
	small, err := alphabet.New([]alphabet.Character{
		{Glyph: "ཀ", Pronunciation: "ka", Category: alphabet.Consonant},
		{Glyph: "ཁ", Pronunciation: "kha", Category: alphabet.Consonant},
		{Glyph: "ག", Pronunciation: "ga", Category: alphabet.Consonant},
		{Glyph: "འ", Pronunciation: "a", Category: alphabet.Consonant},
		{Glyph: "ཨ", Pronunciation: "a", Category: alphabet.Consonant},
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		gen     *Generator
		wantErr error
	}{
		{
			name:    "too few characters",
			gen:     NewGenerator(),
			wantErr: ErrNotEnoughCharacters,
		},
		{
			name:    "too few distinct pronunciations",
			gen:     NewGenerator(WithQuestions(5), WithOptions(5)),
			wantErr: ErrNotEnoughAnswers,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.gen.Round(small)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Round() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	round, err := NewGenerator(WithQuestions(5), WithSeed(1)).Round(small)
	if err != nil {
		t.Fatalf("Round() error = %v", err)
	}
	for _, q := range round.Questions() {
		seen := map[string]bool{}
		for _, opt := range q.Options {
			if seen[opt] {
				t.Errorf("%s: duplicate option %q", q.Character.Glyph, opt)
			}
			seen[opt] = true
		}
	}
}
