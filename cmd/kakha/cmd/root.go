// Package cmd contains all CLI commands for kakha.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/f3rmion/kakha/internal/alphabet"
	"github.com/f3rmion/kakha/internal/config"
	"github.com/f3rmion/kakha/internal/logging"
)

var (
	// Version is set at build time.
	Version = "dev"

	cfgDir string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kakha",
	Short: "Learn the Tibetan alphabet with sounds and games",
	Long: `Kakha teaches children the 30 consonants and 4 vowel signs of the
Tibetan alphabet.

Every letter can be heard: a recorded clip plays when one is available,
and the system speech synthesizer says the letter otherwise. A quiz
shows a letter and asks which of four sounds it makes.

Running 'kakha' without arguments launches the interactive TUI.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE:          runTUI,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default is the user config dir, e.g. ~/.config/kakha)")
	rootCmd.PersistentFlags().Bool("verbose", false, "verbose output")
	rootCmd.PersistentFlags().Bool("no-audio", false, "disable clip playback and speech")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("no_audio", rootCmd.PersistentFlags().Lookup("no-audio"))
}

// initConfig resolves the config directory.
func initConfig() {
	if cfgDir != "" {
		viper.Set("config_dir", cfgDir)
		return
	}

	dir, err := config.Dir()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error finding config directory:", err)
		os.Exit(1)
	}
	viper.Set("config_dir", dir)
}

// getConfigDir returns the configuration directory path.
func getConfigDir() string {
	return viper.GetString("config_dir")
}

func configPath() string {
	return filepath.Join(getConfigDir(), config.FileName)
}

// loadConfig reads the user config, falling back to defaults when the
// file does not exist.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.New(), getConfigDir())
	if err != nil {
		return nil, err
	}
	if viper.GetBool("no_audio") {
		cfg.Audio.Enabled = false
		cfg.Speech.Engine = "none"
	}
	return cfg, nil
}

// setupLogging configures the default logger. Command-line tools log to
// stderr; the TUI logs to a file so it does not draw over the screen.
func setupLogging(cfg *config.Config, tui bool) (*log.Logger, func() error, error) {
	opts := logging.Options{
		Level:  cfg.Log.Level,
		File:   cfg.Log.File,
		Prefix: config.AppName,
	}
	if viper.GetBool("verbose") {
		opts.Level = "debug"
	}
	if tui {
		if opts.File == "" {
			if p, err := config.LogPath(); err == nil {
				opts.File = p
			}
		}
	} else {
		opts.Fallback = os.Stderr
	}
	return logging.Setup(opts)
}

func loadTable(cfg *config.Config) (*alphabet.Table, error) {
	if cfg.Alphabet == "" {
		return alphabet.Default()
	}
	table, err := alphabet.LoadFromFile(cfg.Alphabet)
	if err != nil {
		return nil, fmt.Errorf("loading alphabet %s: %w", cfg.Alphabet, err)
	}
	return table, nil
}

// runTUI launches the unified TUI application.
func runTUI(cmd *cobra.Command, args []string) error {
	return launchTUI(cmd, tuiFlags{})
}
