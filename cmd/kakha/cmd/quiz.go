package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/f3rmion/kakha/internal/quiz"
	"github.com/f3rmion/kakha/internal/tui/views"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Play a quiz round in the terminal",
	Long: `Play a round of questions: each shows a letter and four sounds,
answer with the option number or by typing the sound.

Examples:
  kakha quiz
  kakha quiz --count 5 --seed 42
  kakha quiz --json`,
	Args: cobra.NoArgs,
	RunE: runQuiz,
}

var (
	quizCount   int
	quizOptions int
	quizSeed    uint64
	quizJSON    bool
)

func init() {
	rootCmd.AddCommand(quizCmd)
	quizCmd.Flags().IntVarP(&quizCount, "count", "n", 0, "number of questions (default from config)")
	quizCmd.Flags().IntVar(&quizOptions, "options", 0, "options per question (default from config)")
	quizCmd.Flags().Uint64Var(&quizSeed, "seed", 0, "random seed for a reproducible round")
	quizCmd.Flags().BoolVar(&quizJSON, "json", false, "print the round as JSON instead of playing it")
}

type quizQuestionJSON struct {
	Glyph   string   `json:"glyph"`
	Options []string `json:"options"`
	Answer  string   `json:"answer"`
}

func runQuiz(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if quizCount > 0 {
		cfg.Quiz.Questions = quizCount
	}
	if quizOptions > 0 {
		cfg.Quiz.Options = quizOptions
	}

	logger, closeLog, err := setupLogging(cfg, false)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := cmd.Context()
	b, err := newBackend(ctx, cfg, logger, backendOptions{audio: !quizJSON})
	if err != nil {
		return err
	}
	defer b.Close()

	opts := []quiz.Option{
		quiz.WithQuestions(cfg.Quiz.Questions),
		quiz.WithOptions(cfg.Quiz.Options),
	}
	if cmd.Flags().Changed("seed") {
		opts = append(opts, quiz.WithSeed(quizSeed))
	}
	round, err := quiz.NewGenerator(opts...).Round(b.table)
	if err != nil {
		return err
	}

	if quizJSON {
		out := make([]quizQuestionJSON, 0, round.Len())
		for _, q := range round.Questions() {
			out = append(out, quizQuestionJSON{Glyph: q.Character.Glyph, Options: q.Options, Answer: q.Answer()})
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	return playQuiz(ctx, round, b, cmd.InOrStdin(), cmd.OutOrStdout())
}

// playQuiz runs round over a line-oriented reader.
func playQuiz(ctx context.Context, round *quiz.Round, b *backend, in io.Reader, out io.Writer) error {
	if b.output != nil {
		b.output.Unlock(ctx)
	}

	scanner := bufio.NewScanner(in)
	for !round.Done() {
		q, _ := round.Current()
		fmt.Fprintf(out, "\n%s  %s\n\n", mutedStyle.Render(fmt.Sprintf("%d/%d", round.Position()+1, round.Len())), glyphStyle.Render(q.Character.Glyph))
		for i, opt := range q.Options {
			fmt.Fprintf(out, "  %d. %s\n", i+1, opt)
		}
		fmt.Fprint(out, "\n> ")

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading answer: %w", err)
			}
			fmt.Fprintln(out)
			return nil
		}

		correct, err := answerLine(round, scanner.Text())
		if err != nil {
			fmt.Fprintln(out, warnStyle.Render(err.Error()))
			continue
		}
		if correct {
			fmt.Fprintln(out, successStyle.Render("Correct!"))
		} else {
			fmt.Fprintf(out, "%s\n", warnStyle.Render(fmt.Sprintf("%s is %s", q.Character.Glyph, q.Answer())))
		}
		if b.output != nil {
			b.output.Speak(ctx, views.CharacterRequest(q.Character))
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, headerStyle.Render(round.Result().String()))

	var missed []string
	for _, a := range round.Answers() {
		if !a.Correct {
			missed = append(missed, a.Question.Character.Glyph+" "+a.Question.Answer())
		}
	}
	if len(missed) > 0 {
		fmt.Fprintln(out, mutedStyle.Render("Practice: "+strings.Join(missed, ", ")))
	}
	return nil
}

// answerLine accepts an option number or the pronunciation itself.
func answerLine(round *quiz.Round, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, fmt.Errorf("type a number or a sound")
	}
	if n, err := strconv.Atoi(line); err == nil {
		return round.AnswerIndex(n - 1)
	}
	return round.Answer(strings.ToLower(line))
}
