package speech

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/f3rmion/kakha/internal/audio"
)

// Words per minute at Rate 1.0.
const baseWPM = 175

type flavor int

const (
	flavorEspeak flavor = iota
	flavorSay
)

// Command speaks through a local text-to-speech program, one process per
// utterance. Starting a new utterance or calling Cancel kills the
// previous process.
type Command struct {
	// Voice is used when the requested language has no installed voice.
	// Empty lets the program pick its default.
	Voice string

	name   string
	path   string
	flavor flavor
	logger *log.Logger

	voicesOnce sync.Once
	voices     map[string]bool

	mu     sync.Mutex
	cmd    *exec.Cmd
	cancel context.CancelFunc
}

// FindCommand looks up a specific program family: "espeak" tries
// espeak-ng then espeak, "say" tries say.
func FindCommand(family string, lookPath func(string) (string, error)) (*Command, bool) {
	var bins []string
	fl := flavorEspeak
	switch family {
	case "espeak":
		bins = []string{"espeak-ng", "espeak"}
	case "say":
		bins = []string{"say"}
		fl = flavorSay
	default:
		return nil, false
	}

	for _, bin := range bins {
		if path, err := lookPath(bin); err == nil {
			return NewCommand(bin, path, fl == flavorSay), true
		}
	}
	return nil, false
}

// DetectCommand picks the usual program for goos.
func DetectCommand(goos string, lookPath func(string) (string, error)) (*Command, bool) {
	if goos == "darwin" {
		if c, ok := FindCommand("say", lookPath); ok {
			return c, true
		}
	}
	return FindCommand("espeak", lookPath)
}

// NewCommand wraps the program at path. say selects macOS say flags
// instead of espeak flags.
func NewCommand(name, path string, say bool) *Command {
	fl := flavorEspeak
	if say {
		fl = flavorSay
	}
	return &Command{
		name:   name,
		path:   path,
		flavor: fl,
		logger: log.Default(),
	}
}

func (c *Command) Name() string { return c.name }

func (c *Command) Available() bool { return c.path != "" }

// Speak implements audio.Synthesizer.
func (c *Command) Speak(ctx context.Context, u audio.Utterance) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	args := c.args(u, c.voiceFor(u.Language))

	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	// The process outlives ctx: Speak returns as soon as output starts.
	pctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(pctx, c.path, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("starting %s: %w", c.name, err)
	}
	c.cmd, c.cancel = cmd, cancel

	go c.wait(cmd, cancel, &stderr)
	return nil
}

func (c *Command) wait(cmd *exec.Cmd, cancel context.CancelFunc, stderr *bytes.Buffer) {
	err := cmd.Wait()
	cancel()

	c.mu.Lock()
	if c.cmd == cmd {
		c.cmd, c.cancel = nil, nil
	}
	c.mu.Unlock()

	if err != nil && cmd.ProcessState != nil && !cmd.ProcessState.Success() {
		c.logger.Debug("speech process ended", "name", c.name, "err", err, "stderr", strings.TrimSpace(stderr.String()))
	}
}

// Cancel implements audio.Synthesizer.
func (c *Command) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// Speaking reports whether an utterance is in progress.
func (c *Command) Speaking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cmd != nil
}

func (c *Command) stopLocked() {
	if c.cancel != nil {
		c.cancel()
	}
	c.cmd, c.cancel = nil, nil
}

func (c *Command) args(u audio.Utterance, voice string) []string {
	rate := u.Rate
	if rate <= 0 {
		rate = 1
	}
	wpm := strconv.Itoa(int(math.Round(baseWPM * rate)))

	if c.flavor == flavorSay {
		args := []string{"-r", wpm}
		if voice != "" {
			args = append(args, "-v", voice)
		}
		return append(args, "--", u.Text)
	}

	pitch := u.Pitch
	if pitch <= 0 {
		pitch = 1
	}
	args := []string{"-s", wpm, "-p", strconv.Itoa(clamp(int(math.Round(50*pitch)), 0, 99))}
	if voice != "" {
		args = append(args, "-v", voice)
	}
	return append(args, "--", u.Text)
}

// voiceFor returns the language itself when espeak lists a voice for it,
// and the configured fallback voice otherwise.
func (c *Command) voiceFor(lang string) string {
	if lang == "" || c.flavor == flavorSay {
		return c.Voice
	}

	c.voicesOnce.Do(func() {
		c.voices = listEspeakVoices(c.path)
	})
	if c.voices[strings.ToLower(lang)] {
		return lang
	}
	return c.Voice
}

func listEspeakVoices(path string) map[string]bool {
	out, err := exec.Command(path, "--voices").Output()
	if err != nil {
		return nil
	}
	return parseEspeakVoices(string(out))
}

// parseEspeakVoices reads the language column of `espeak --voices`.
func parseEspeakVoices(out string) map[string]bool {
	voices := make(map[string]bool)
	for i, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if i == 0 || len(fields) < 2 {
			continue
		}
		voices[strings.ToLower(fields[1])] = true
	}
	return voices
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
