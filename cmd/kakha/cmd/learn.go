package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/f3rmion/kakha/internal/tui"
	"github.com/f3rmion/kakha/internal/tui/views"
)

var learnCmd = &cobra.Command{
	Use:     "learn",
	Aliases: []string{"i", "ui"},
	Short:   "Launch the interactive TUI",
	Long: `Launch the terminal UI for learning the alphabet.

Views:
  Home       Daily goal and quick start
  Alphabet   All letters in a grid, press space to listen
  Learn      One letter with its example word and memory hint
  Quiz       Ten letters, pick the sound each one makes
  Settings   Active audio and speech backends

The first key press on the start screen turns on sound.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		start, _ := cmd.Flags().GetString("start")
		skip, _ := cmd.Flags().GetBool("skip-landing")
		return launchTUI(cmd, tuiFlags{start: start, skipLanding: skip})
	},
}

var startPages = map[string]views.Page{
	"home":     views.PageHome,
	"alphabet": views.PageAlphabet,
	"learn":    views.PageLearn,
	"quiz":     views.PageQuiz,
	"settings": views.PageSettings,
}

type tuiFlags struct {
	start       string
	skipLanding bool
}

func init() {
	rootCmd.AddCommand(learnCmd)
	learnCmd.Flags().String("start", "home", "view to open: home, alphabet, learn, quiz, settings")
	learnCmd.Flags().Bool("skip-landing", false, "skip the start screen; sound turns on with the first listen")
}

func launchTUI(cmd *cobra.Command, flags tuiFlags) error {
	page := views.PageHome
	if flags.start != "" {
		p, ok := startPages[flags.start]
		if !ok {
			return fmt.Errorf("unknown view %q", flags.start)
		}
		page = p
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := setupLogging(cfg, true)
	if err != nil {
		return err
	}
	defer closeLog()

	b, err := newBackend(cmd.Context(), cfg, logger, backendOptions{audio: true, hints: true, bigChar: true})
	if err != nil {
		return err
	}
	defer b.Close()

	logger.Info("starting TUI", "letters", b.table.Len(), "backends", fmt.Sprintf("%+v", b.describe()))

	return tui.Run(tui.Options{
		Config:      cfg,
		Table:       b.table,
		Speaker:     b.speaker(),
		Hinter:      b.hints(),
		BigChar:     b.big,
		Backends:    b.describe(),
		SkipLanding: flags.skipLanding,
		Start:       page,
	})
}
