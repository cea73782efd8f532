package cmd

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/f3rmion/kakha/internal/alphabet"
	"github.com/f3rmion/kakha/internal/audio"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check audio, speech and assets",
	Long: `Report which backends kakha can use on this machine: the config file,
the letter table, recorded clips under audio.assets_dir, the speech
synthesizer, the font for block glyphs and the hint API key.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := setupLogging(cfg, false)
	if err != nil {
		return err
	}
	defer closeLog()

	b, err := newBackend(cmd.Context(), cfg, logger, backendOptions{audio: true, hints: true, bigChar: true})
	if err != nil {
		return err
	}
	defer b.Close()

	ok := func(label, value string) {
		fmt.Println(labelStyle.Render(label) + successStyle.Render("✓ ") + value)
	}
	bad := func(label, value string) {
		fmt.Println(labelStyle.Render(label) + warnStyle.Render("✗ ") + value)
	}

	if _, err := os.Stat(configPath()); err == nil {
		ok("Config:", configPath())
	} else {
		bad("Config:", "using defaults, run 'kakha init'")
	}

	ok("Letters:", fmt.Sprintf("%d (%d consonants, %d vowels)",
		b.table.Len(), b.table.Count(alphabet.Consonant), b.table.Count(alphabet.Vowel)))

	found, missing, size := clipStats(b.table, cfg.Audio.AssetsDir)
	switch {
	case !cfg.Audio.Enabled:
		bad("Clips:", "audio disabled")
	case missing == 0:
		ok("Clips:", fmt.Sprintf("%d clips, %s in %s", found, humanize.Bytes(size), cfg.Audio.AssetsDir))
	default:
		bad("Clips:", fmt.Sprintf("%d of %d missing under %s", missing, found+missing, cfg.Audio.AssetsDir))
	}

	if b.player != nil {
		ok("Playback:", fmt.Sprintf("oto, %d Hz, %d channels", cfg.Audio.SampleRate, cfg.Audio.Channels))
		if res := b.output.Unlock(cmd.Context()); res.Err != nil {
			bad("Unlock:", res.Err.Error())
		}
	} else {
		bad("Playback:", "no audio device")
	}

	if b.synth.Available() {
		ok("Speech:", fmt.Sprintf("%s (says %s)", b.synth.Name(), cfg.Audio.TextSource))
	} else {
		bad("Speech:", "no synthesizer, install espeak-ng or set speech.engine")
	}

	if b.big != nil {
		ok("Font:", "block glyphs enabled")
	} else {
		bad("Font:", "no Tibetan font found, set ui.font")
	}

	if b.hinter != nil {
		ok("Hints:", cfg.Hints.Model)
	} else {
		bad("Hints:", "set ANTHROPIC_API_KEY to enable")
	}
	return nil
}

// clipStats counts the glyph and example clips present under root.
func clipStats(table *alphabet.Table, root string) (found, missing int, size uint64) {
	locator := &audio.Locator{Root: root}
	for _, c := range table.All() {
		for _, ref := range []string{c.AudioPath, c.ExampleAudioPath} {
			if ref == "" {
				continue
			}
			path, ok := locator.Resolve(ref)
			if !ok {
				missing++
				continue
			}
			fi, err := os.Stat(path)
			if err != nil {
				missing++
				continue
			}
			found++
			size += uint64(fi.Size())
		}
	}
	return found, missing, size
}
