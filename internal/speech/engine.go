package speech

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/f3rmion/kakha/internal/audio"
)

// Engine selects a synthesizer backend.
type Engine string

const (
	EngineAuto   Engine = "auto"
	EngineEspeak Engine = "espeak"
	EngineSay    Engine = "say"
	EngineGoogle Engine = "google"
	EngineNone   Engine = "none"
)

// ParseEngine validates an engine name. Empty means auto.
func ParseEngine(s string) (Engine, error) {
	switch e := Engine(strings.ToLower(strings.TrimSpace(s))); e {
	case "":
		return EngineAuto, nil
	case EngineAuto, EngineEspeak, EngineSay, EngineGoogle, EngineNone:
		return e, nil
	case "espeak-ng":
		return EngineEspeak, nil
	case "gtts", "google-cloud":
		return EngineGoogle, nil
	}
	return "", fmt.Errorf("invalid speech engine %q (want auto, espeak, say, google or none)", s)
}

// Config holds synthesizer settings.
type Config struct {
	Engine string       `yaml:"engine" mapstructure:"engine"`         // auto, espeak, say, google, none
	Voice  string       `yaml:"voice,omitempty" mapstructure:"voice"` // Command voice when the language has none
	Google GoogleConfig `yaml:"google,omitempty" mapstructure:"google"`
}

// GoogleConfig configures Cloud Text-to-Speech.
type GoogleConfig struct {
	VoiceName       string        `yaml:"voice_name" mapstructure:"voice_name"`                 // e.g. "cmn-CN-Standard-A"
	LanguageCode    string        `yaml:"language_code,omitempty" mapstructure:"language_code"` // Derived from VoiceName when empty
	CredentialsFile string        `yaml:"credentials_file,omitempty" mapstructure:"credentials_file"`
	SampleRate      int32         `yaml:"sample_rate,omitempty" mapstructure:"sample_rate"`
	Timeout         time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`
}

// New builds the synthesizer selected by cfg. player is only needed for
// the google engine. With engine auto, a missing command yields NoOp
// rather than an error.
func New(ctx context.Context, cfg Config, player audio.BytesPlayer, logger *log.Logger) (audio.Synthesizer, error) {
	if logger == nil {
		logger = log.Default()
	}

	engine, err := ParseEngine(cfg.Engine)
	if err != nil {
		return nil, err
	}

	switch engine {
	case EngineNone:
		return NoOp{}, nil

	case EngineGoogle:
		if player == nil {
			return nil, fmt.Errorf("google speech needs an audio player")
		}
		return NewGoogle(ctx, cfg.Google, player, logger)

	case EngineEspeak, EngineSay:
		cmd, ok := FindCommand(string(engine), exec.LookPath)
		if !ok {
			return nil, fmt.Errorf("%s not found in PATH", engine)
		}
		cmd.Voice = cfg.Voice
		cmd.logger = logger
		return cmd, nil
	}

	cmd, ok := DetectCommand(runtime.GOOS, exec.LookPath)
	if !ok {
		logger.Debug("no speech command found, synthesis disabled")
		return NoOp{}, nil
	}
	cmd.Voice = cfg.Voice
	cmd.logger = logger
	logger.Debug("using speech command", "name", cmd.Name(), "path", cmd.path)
	return cmd, nil
}

// NoOp is a Synthesizer that never produces output.
type NoOp struct{}

func (NoOp) Name() string    { return "none" }
func (NoOp) Available() bool { return false }
func (NoOp) Cancel()         {}

func (NoOp) Speak(context.Context, audio.Utterance) error {
	return audio.ErrSynthesisUnavailable
}
