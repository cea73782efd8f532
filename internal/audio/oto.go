package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// PlayerConfig configures OtoPlayer.
type PlayerConfig struct {
	SampleRate int           // 44100 or 48000
	Channels   int           // 1 or 2
	BufferSize time.Duration // Device buffer, 0 lets oto decide
	Volume     float64       // 0..1
	WarmUp     time.Duration // Length of the silent unlock buffer
}

// DefaultPlayerConfig returns settings suited to short speech clips.
func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{
		SampleRate: 44100,
		Channels:   2,
		Volume:     1.0,
		WarmUp:     50 * time.Millisecond,
	}
}

func (c PlayerConfig) validate() error {
	if c.SampleRate != 44100 && c.SampleRate != 48000 {
		return fmt.Errorf("sample rate must be 44100 or 48000 Hz, got %d", c.SampleRate)
	}
	if c.Channels != 1 && c.Channels != 2 {
		return fmt.Errorf("channels must be 1 or 2, got %d", c.Channels)
	}
	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("volume must be between 0 and 1, got %v", c.Volume)
	}
	return nil
}

// OtoPlayer plays clips through the system audio device. The oto
// context is created on first use; oto allows one per process, so
// create a single OtoPlayer and share it.
type OtoPlayer struct {
	config  PlayerConfig
	locator *Locator
	logger  *log.Logger

	mu      sync.Mutex
	otoCtx  *oto.Context
	initErr error
	ready   bool

	// Players are kept referenced until they finish.
	active map[*otoPlayback]struct{}
}

// NewOtoPlayer returns a player that resolves clips with locator.
func NewOtoPlayer(config PlayerConfig, locator *Locator, logger *log.Logger) (*OtoPlayer, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid player config: %w", err)
	}
	if locator == nil {
		locator = &Locator{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &OtoPlayer{
		config:  config,
		locator: locator,
		logger:  logger,
		active:  make(map[*otoPlayback]struct{}),
	}, nil
}

func (p *OtoPlayer) context() (*oto.Context, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ready {
		return p.otoCtx, p.initErr
	}
	p.ready = true

	op := &oto.NewContextOptions{
		SampleRate:   p.config.SampleRate,
		ChannelCount: p.config.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   p.config.BufferSize,
	}
	c, readyChan, err := oto.NewContext(op)
	if err != nil {
		p.initErr = fmt.Errorf("creating audio context: %w", err)
		return nil, p.initErr
	}
	<-readyChan

	p.otoCtx = c
	p.logger.Debug("audio context ready", "rate", p.config.SampleRate, "channels", p.config.Channels)
	return c, nil
}

// Resume implements ClipPlayer.
func (p *OtoPlayer) Resume(context.Context) error {
	c, err := p.context()
	if err != nil {
		return err
	}
	if err := c.Resume(); err != nil {
		return fmt.Errorf("resuming audio context: %w", err)
	}
	return c.Err()
}

// Suspend pauses the audio device, e.g. while the app is idle.
func (p *OtoPlayer) Suspend() error {
	c, err := p.context()
	if err != nil {
		return err
	}
	return c.Suspend()
}

// Warm implements ClipPlayer by playing a short silent buffer at zero
// volume.
func (p *OtoPlayer) Warm(context.Context) error {
	frames := int(p.config.WarmUp.Seconds() * float64(p.config.SampleRate))
	if frames <= 0 {
		frames = p.config.SampleRate / 20
	}
	_, err := p.start(Silence(p.config.SampleRate, p.config.Channels, frames), 0)
	return err
}

// Play implements ClipPlayer.
func (p *OtoPlayer) Play(ctx context.Context, clip string) (Playback, error) {
	data, err := p.locator.Load(ctx, clip)
	if err != nil {
		return nil, err
	}
	return p.PlayBytes(ctx, data, clip)
}

// PlayBytes implements BytesPlayer.
func (p *OtoPlayer) PlayBytes(_ context.Context, data []byte, name string) (Playback, error) {
	pcm, err := Decode(data, name, p.config.SampleRate, p.config.Channels)
	if err != nil {
		return nil, err
	}
	return p.start(pcm, p.config.Volume)
}

func (p *OtoPlayer) start(pcm PCM, volume float64) (*otoPlayback, error) {
	c, err := p.context()
	if err != nil {
		return nil, err
	}

	player := c.NewPlayer(bytes.NewReader(pcm.Data))
	player.SetVolume(volume)
	player.Play()

	pb := &otoPlayback{player: player, done: make(chan struct{})}
	p.mu.Lock()
	p.active[pb] = struct{}{}
	p.mu.Unlock()

	go p.watch(pb)
	return pb, nil
}

func (p *OtoPlayer) watch(pb *otoPlayback) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		if !pb.player.IsPlaying() {
			break
		}
	}

	pb.finish(pb.player.Err())
	if err := pb.player.Close(); err != nil {
		p.logger.Debug("closing player", "err", err)
	}

	p.mu.Lock()
	delete(p.active, pb)
	p.mu.Unlock()
}

// Active returns the number of clips still playing.
func (p *OtoPlayer) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.active)
}

// Close stops every active clip.
func (p *OtoPlayer) Close() error {
	p.mu.Lock()
	active := make([]*otoPlayback, 0, len(p.active))
	for pb := range p.active {
		active = append(active, pb)
	}
	p.mu.Unlock()

	var errs []error
	for _, pb := range active {
		pb.player.Pause()
		if err := pb.player.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type otoPlayback struct {
	player *oto.Player
	done   chan struct{}
	once   sync.Once
	err    error
}

func (pb *otoPlayback) finish(err error) {
	pb.once.Do(func() {
		pb.err = err
		close(pb.done)
	})
}

func (pb *otoPlayback) Done() <-chan struct{} { return pb.done }

// Stop pauses the player; the watcher then releases it.
func (pb *otoPlayback) Stop() {
	pb.player.Pause()
}

func (pb *otoPlayback) Err() error {
	select {
	case <-pb.done:
		return pb.err
	default:
		return nil
	}
}
