package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/f3rmion/kakha/internal/alphabet"
	"github.com/f3rmion/kakha/internal/audio"
	"github.com/f3rmion/kakha/internal/config"
	"github.com/f3rmion/kakha/internal/llm"
	"github.com/f3rmion/kakha/internal/speech"
	"github.com/f3rmion/kakha/internal/tui/bigchar"
	"github.com/f3rmion/kakha/internal/tui/views"
)

// backend holds the services shared by commands. Any of player, output,
// hinter and big may be nil when unavailable.
type backend struct {
	cfg    *config.Config
	table  *alphabet.Table
	logger *log.Logger

	player *audio.OtoPlayer
	synth  audio.Synthesizer
	output *audio.Output
	hinter *llm.Client
	big    *bigchar.Renderer

	closers []func() error
}

type backendOptions struct {
	audio     bool
	hints     bool
	bigChar   bool
	awaitClip bool
}

func newBackend(ctx context.Context, cfg *config.Config, logger *log.Logger, opts backendOptions) (*backend, error) {
	table, err := loadTable(cfg)
	if err != nil {
		return nil, err
	}

	b := &backend{
		cfg:    cfg,
		table:  table,
		logger: logger,
		synth:  speech.NoOp{},
	}

	if opts.audio && cfg.Audio.Enabled {
		b.setupAudio(ctx, opts.awaitClip)
	}

	if opts.hints {
		client, err := llm.NewClient(llm.Options{
			BaseURL:           cfg.Hints.BaseURL,
			Model:             cfg.Hints.Model,
			MaxTokens:         cfg.Hints.MaxTokens,
			RequestsPerMinute: cfg.Hints.RequestsPerMinute,
		})
		switch {
		case errors.Is(err, llm.ErrNoAPIKey):
			logger.Debug("hints disabled", "reason", err)
		case err != nil:
			logger.Warn("hints disabled", "err", err)
		default:
			b.hinter = client
		}
	}

	if opts.bigChar && cfg.UI.BigChar {
		var paths []string
		if cfg.UI.Font != "" {
			paths = []string{cfg.UI.Font}
		}
		big, err := bigchar.New(paths...)
		if err != nil {
			logger.Debug("block glyphs disabled", "err", err)
		} else {
			b.big = big
		}
	}

	return b, nil
}

func (b *backend) setupAudio(ctx context.Context, awaitClip bool) {
	cfg := b.cfg.Audio
	locator := &audio.Locator{Root: cfg.AssetsDir, BaseURL: cfg.BaseURL}

	pc := audio.DefaultPlayerConfig()
	pc.SampleRate = cfg.SampleRate
	pc.Channels = cfg.Channels
	pc.Volume = cfg.Volume

	var (
		clips audio.ClipPlayer
		raw   audio.BytesPlayer
	)
	player, err := audio.NewOtoPlayer(pc, locator, b.logger)
	if err != nil {
		b.logger.Warn("clip playback disabled", "err", err)
	} else {
		b.player = player
		b.closers = append(b.closers, player.Close)
		clips, raw = player, player
	}

	synth, err := speech.New(ctx, b.cfg.Speech, raw, b.logger)
	if err != nil {
		b.logger.Warn("speech synthesis disabled", "err", err)
	} else {
		b.synth = synth
		if c, ok := synth.(io.Closer); ok {
			b.closers = append(b.closers, c.Close)
		}
	}

	b.output = audio.New(clips, b.synth,
		audio.WithLogger(b.logger),
		audio.WithVoice(audio.Voice{Language: cfg.Language, Rate: cfg.Rate, Pitch: cfg.Pitch}),
		audio.WithTextSource(audio.TextSource(cfg.TextSource)),
		audio.WithAwaitClip(cfg.AwaitClip || awaitClip),
		audio.WithAutoUnlock(cfg.AutoUnlock),
	)
}

// speaker returns the output as a views.Speaker, or nil.
func (b *backend) speaker() views.Speaker {
	if b.output == nil {
		return nil
	}
	return b.output
}

func (b *backend) hints() views.Hinter {
	if b.hinter == nil {
		return nil
	}
	return b.hinter
}

// describe summarizes the active backends for the settings view.
func (b *backend) describe() views.Backends {
	d := views.Backends{
		ConfigPath: configPath(),
		Hints:      b.hinter != nil,
		BigChar:    b.big != nil,
	}
	if b.player != nil {
		d.Player = fmt.Sprintf("oto (%d Hz)", b.cfg.Audio.SampleRate)
	}
	if b.synth != nil && b.synth.Available() {
		d.Synth = b.synth.Name()
	}
	return d
}

// waitQuiet blocks until clips and speech have finished or ctx is done.
func (b *backend) waitQuiet(ctx context.Context) {
	speaking, _ := b.synth.(interface{ Speaking() bool })

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		busy := b.player != nil && b.player.Active() > 0
		if speaking != nil && speaking.Speaking() {
			busy = true
		}
		if !busy {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (b *backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	return errors.Join(errs...)
}
