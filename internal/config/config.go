// Package config handles loading and saving user configuration for kakha.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/f3rmion/kakha/internal/audio"
	"github.com/f3rmion/kakha/internal/speech"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// AppName names the config directory, env prefix and log file.
const AppName = "kakha"

// FileName is the config file inside the config directory.
const FileName = "config.yaml"

// Config holds all user configuration.
type Config struct {
	Alphabet string        `yaml:"alphabet,omitempty" mapstructure:"alphabet"` // Custom JSONL table, empty for the built-in one
	Audio    AudioConfig   `yaml:"audio" mapstructure:"audio"`
	Speech   speech.Config `yaml:"speech" mapstructure:"speech"`
	Quiz     QuizConfig    `yaml:"quiz" mapstructure:"quiz"`
	UI       UIConfig      `yaml:"ui" mapstructure:"ui"`
	Server   ServerConfig  `yaml:"server" mapstructure:"server"`
	Hints    HintsConfig   `yaml:"hints" mapstructure:"hints"`
	Log      LogConfig     `yaml:"log" mapstructure:"log"`
}

// AudioConfig holds playback settings.
type AudioConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	AssetsDir  string  `yaml:"assets_dir" mapstructure:"assets_dir"`       // Root for "/audio/..." clip paths
	BaseURL    string  `yaml:"base_url,omitempty" mapstructure:"base_url"` // Remote root used when a clip is not on disk
	AwaitClip  bool    `yaml:"await_clip" mapstructure:"await_clip"`       // Wait for clips to finish before returning
	AutoUnlock bool    `yaml:"auto_unlock" mapstructure:"auto_unlock"`     // Try an unlock before every listen
	TextSource string  `yaml:"text_source" mapstructure:"text_source"`     // text or pronunciation
	Language   string  `yaml:"language" mapstructure:"language"`           // Synthesis language tag
	Rate       float64 `yaml:"rate" mapstructure:"rate"`                   // Synthesis speed, 1.0 is normal
	Pitch      float64 `yaml:"pitch" mapstructure:"pitch"`                 // Synthesis pitch, 1.0 is normal
	SampleRate int     `yaml:"sample_rate" mapstructure:"sample_rate"`     // 44100 or 48000
	Channels   int     `yaml:"channels" mapstructure:"channels"`           // 1 or 2
	Volume     float64 `yaml:"volume" mapstructure:"volume"`               // 0..1
}

// QuizConfig holds round settings.
type QuizConfig struct {
	Questions int `yaml:"questions" mapstructure:"questions"`
	Options   int `yaml:"options" mapstructure:"options"`
}

// UIConfig holds TUI settings.
type UIConfig struct {
	MeaningLanguage string `yaml:"meaning_language" mapstructure:"meaning_language"` // en, fr or zh
	BigChar         bool   `yaml:"big_char" mapstructure:"big_char"`                 // Render glyphs as block art
	Font            string `yaml:"font,omitempty" mapstructure:"font"`               // Font file for block art
	DailyGoal       int    `yaml:"daily_goal" mapstructure:"daily_goal"`
}

// ServerConfig holds settings for `kakha serve`.
type ServerConfig struct {
	Addr           string        `yaml:"addr" mapstructure:"addr"`
	AllowedOrigins []string      `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// HintsConfig holds settings for mnemonic generation.
type HintsConfig struct {
	Model             string `yaml:"model" mapstructure:"model"`
	BaseURL           string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	MaxTokens         int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	RequestsPerMinute int    `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file,omitempty" mapstructure:"file"` // Empty logs to a file only in the TUI
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Audio: AudioConfig{
			Enabled:    true,
			AssetsDir:  "assets",
			AutoUnlock: true,
			TextSource: string(audio.TextFromPronunciation),
			Language:   audio.DefaultVoice.Language,
			Rate:       audio.DefaultVoice.Rate,
			Pitch:      audio.DefaultVoice.Pitch,
			SampleRate: 44100,
			Channels:   2,
			Volume:     1.0,
		},
		Speech: speech.Config{
			Engine: string(speech.EngineAuto),
			Voice:  "en",
			Google: speech.GoogleConfig{
				VoiceName:  "en-US-Standard-C",
				SampleRate: 22050,
				Timeout:    10 * time.Second,
			},
		},
		Quiz: QuizConfig{
			Questions: 10,
			Options:   4,
		},
		UI: UIConfig{
			MeaningLanguage: "en",
			BigChar:         true,
			DailyGoal:       5,
		},
		Server: ServerConfig{
			Addr:           "localhost:8080",
			AllowedOrigins: []string{"*"},
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   30 * time.Second,
		},
		Hints: HintsConfig{
			Model:             "claude-sonnet-4-20250514",
			MaxTokens:         512,
			RequestsPerMinute: 20,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// SetDefaults registers every default with v so that environment
// variables can override keys that are absent from the file.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("alphabet", d.Alphabet)

	v.SetDefault("audio.enabled", d.Audio.Enabled)
	v.SetDefault("audio.assets_dir", d.Audio.AssetsDir)
	v.SetDefault("audio.base_url", d.Audio.BaseURL)
	v.SetDefault("audio.await_clip", d.Audio.AwaitClip)
	v.SetDefault("audio.auto_unlock", d.Audio.AutoUnlock)
	v.SetDefault("audio.text_source", d.Audio.TextSource)
	v.SetDefault("audio.language", d.Audio.Language)
	v.SetDefault("audio.rate", d.Audio.Rate)
	v.SetDefault("audio.pitch", d.Audio.Pitch)
	v.SetDefault("audio.sample_rate", d.Audio.SampleRate)
	v.SetDefault("audio.channels", d.Audio.Channels)
	v.SetDefault("audio.volume", d.Audio.Volume)

	v.SetDefault("speech.engine", d.Speech.Engine)
	v.SetDefault("speech.voice", d.Speech.Voice)
	v.SetDefault("speech.google.voice_name", d.Speech.Google.VoiceName)
	v.SetDefault("speech.google.language_code", d.Speech.Google.LanguageCode)
	v.SetDefault("speech.google.credentials_file", d.Speech.Google.CredentialsFile)
	v.SetDefault("speech.google.sample_rate", d.Speech.Google.SampleRate)
	v.SetDefault("speech.google.timeout", d.Speech.Google.Timeout)

	v.SetDefault("quiz.questions", d.Quiz.Questions)
	v.SetDefault("quiz.options", d.Quiz.Options)

	v.SetDefault("ui.meaning_language", d.UI.MeaningLanguage)
	v.SetDefault("ui.big_char", d.UI.BigChar)
	v.SetDefault("ui.font", d.UI.Font)
	v.SetDefault("ui.daily_goal", d.UI.DailyGoal)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)

	v.SetDefault("hints.model", d.Hints.Model)
	v.SetDefault("hints.base_url", d.Hints.BaseURL)
	v.SetDefault("hints.max_tokens", d.Hints.MaxTokens)
	v.SetDefault("hints.requests_per_minute", d.Hints.RequestsPerMinute)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
}

// Load reads config.yaml from dir (when present), applies KAKHA_*
// environment overrides and validates the result. A missing file is not
// an error.
func Load(v *viper.Viper, dir string) (*Config, error) {
	SetDefaults(v)

	v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.SetEnvPrefix(AppName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	var errs []error

	switch audio.TextSource(c.Audio.TextSource) {
	case audio.TextFromRequest, audio.TextFromPronunciation:
	default:
		errs = append(errs, fmt.Errorf("audio.text_source: want text or pronunciation, got %q", c.Audio.TextSource))
	}
	if c.Audio.Rate <= 0 {
		errs = append(errs, fmt.Errorf("audio.rate must be positive, got %v", c.Audio.Rate))
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		errs = append(errs, fmt.Errorf("audio.volume must be between 0 and 1, got %v", c.Audio.Volume))
	}
	if _, err := speech.ParseEngine(c.Speech.Engine); err != nil {
		errs = append(errs, fmt.Errorf("speech.engine: %w", err))
	}
	if c.Quiz.Questions < 1 {
		errs = append(errs, fmt.Errorf("quiz.questions must be at least 1, got %d", c.Quiz.Questions))
	}
	if c.Quiz.Options < 2 {
		errs = append(errs, fmt.Errorf("quiz.options must be at least 2, got %d", c.Quiz.Options))
	}
	switch c.UI.MeaningLanguage {
	case "en", "fr", "zh":
	default:
		errs = append(errs, fmt.Errorf("ui.meaning_language: want en, fr or zh, got %q", c.UI.MeaningLanguage))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Dir returns the user config directory.
func Dir() (string, error) {
	if d := os.Getenv("KAKHA_CONFIG_HOME"); d != "" {
		return d, nil
	}
	dirs, err := gap.NewScope(gap.User, AppName).ConfigDirs()
	if err != nil {
		return "", fmt.Errorf("finding config directory: %w", err)
	}
	if len(dirs) == 0 {
		return "", errors.New("no config directory available")
	}
	return dirs[0], nil
}

// LogPath returns the default log file location.
func LogPath() (string, error) {
	p, err := gap.NewScope(gap.User, AppName).LogPath(AppName + ".log")
	if err != nil {
		return "", fmt.Errorf("finding log path: %w", err)
	}
	return p, nil
}
