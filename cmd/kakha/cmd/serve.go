package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/f3rmion/kakha/internal/audio"
	"github.com/f3rmion/kakha/internal/server"
	"github.com/f3rmion/kakha/internal/speech"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the alphabet and quizzes over HTTP",
	Long: `Start an HTTP server for web and mobile front ends.

Routes:
  GET  /api/v1/alphabet[?category=consonant|vowel]
  GET  /api/v1/alphabet/{glyph or sound}
  GET  /api/v1/quiz[?count=10&seed=42]
  POST /api/v1/tts/speak        (needs speech.engine google)
  GET  /audio/..., /images/...  (files under audio.assets_dir)
  GET  /api/v1/health`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := setupLogging(cfg, false)
	if err != nil {
		return err
	}
	defer closeLog()

	table, err := loadTable(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := server.Options{
		Addr:           cfg.Server.Addr,
		AssetsDir:      cfg.Audio.AssetsDir,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		Questions:      cfg.Quiz.Questions,
		Choices:        cfg.Quiz.Options,
		Voice:          audio.Voice{Language: cfg.Audio.Language, Rate: cfg.Audio.Rate, Pitch: cfg.Audio.Pitch},
		TextSource:     audio.TextSource(cfg.Audio.TextSource),
		Logger:         logger,
	}
	if serveAddr != "" {
		opts.Addr = serveAddr
	}

	// Only Cloud TTS can return audio bytes; command synthesizers speak
	// on the local device.
	if engine, _ := speech.ParseEngine(cfg.Speech.Engine); engine == speech.EngineGoogle {
		g, err := speech.NewGoogle(ctx, cfg.Speech.Google, nil, logger)
		if err != nil {
			logger.Warn("speech endpoint disabled", "err", err)
		} else {
			defer g.Close()
			opts.Synthesizer = g
		}
	}

	return server.New(table, opts).ListenAndServe(ctx)
}
