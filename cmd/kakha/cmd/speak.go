package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/f3rmion/kakha/internal/audio"
	"github.com/f3rmion/kakha/internal/tui/views"
)

var speakCmd = &cobra.Command{
	Use:   "speak <letter>",
	Short: "Say a letter out loud",
	Long: `Play the recorded clip for a letter, or speak it with the system
synthesizer when no clip can be played.

Examples:
  kakha speak ཀ
  kakha speak ka --example`,
	Args: cobra.ExactArgs(1),
	RunE: runSpeak,
}

var (
	speakExample bool
	speakTimeout time.Duration
)

func init() {
	rootCmd.AddCommand(speakCmd)
	speakCmd.Flags().BoolVarP(&speakExample, "example", "e", false, "say the example word instead")
	speakCmd.Flags().DurationVar(&speakTimeout, "timeout", 15*time.Second, "maximum time to wait for playback")
}

func runSpeak(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := setupLogging(cfg, false)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithTimeout(cmd.Context(), speakTimeout)
	defer cancel()

	b, err := newBackend(ctx, cfg, logger, backendOptions{audio: true, awaitClip: true})
	if err != nil {
		return err
	}
	defer b.Close()

	c, ok := b.table.Lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown letter %q", args[0])
	}
	if b.output == nil {
		return errors.New("audio is disabled")
	}

	req := views.CharacterRequest(c)
	if speakExample {
		if !c.HasExample() {
			return fmt.Errorf("%s has no example word", c.Glyph)
		}
		req = views.ExampleRequest(c)
	}

	out := b.output.Speak(ctx, req)
	switch out.Strategy {
	case audio.StrategyClip:
		fmt.Printf("%s %s\n", glyphStyle.Render(req.Text), successStyle.Render("♪ "+req.Clip))
	case audio.StrategySynthesis:
		fmt.Printf("%s %s\n", glyphStyle.Render(req.Text), successStyle.Render("♪ "+b.synth.Name()))
	default:
		return fmt.Errorf("no audio played: %w", errors.Join(out.Clip.Err, out.Synthesis.Err))
	}

	b.waitQuiet(ctx)
	return nil
}
