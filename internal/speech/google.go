package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	tts "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/charmbracelet/log"
	"github.com/f3rmion/kakha/internal/audio"
	"google.golang.org/api/option"
)

const (
	defaultGoogleVoice   = "en-US-Standard-C"
	defaultGoogleTimeout = 10 * time.Second
)

// Google synthesizes MP3 with Cloud Text-to-Speech and plays it through
// a BytesPlayer.
type Google struct {
	client *texttospeech.Client
	cfg    GoogleConfig
	player audio.BytesPlayer
	logger *log.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	current audio.Playback
}

// NewGoogle creates a client using CredentialsFile, or the ambient
// application default credentials when it is empty.
func NewGoogle(ctx context.Context, cfg GoogleConfig, player audio.BytesPlayer, logger *log.Logger) (*Google, error) {
	if logger == nil {
		logger = log.Default()
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating google tts client: %w", err)
	}

	return &Google{
		client: client,
		cfg:    cfg,
		player: player,
		logger: logger,
	}, nil
}

func (g *Google) Name() string { return "google" }

func (g *Google) Available() bool { return g.client != nil && g.player != nil }

// Synthesize returns MP3 audio for u without playing it.
func (g *Google) Synthesize(ctx context.Context, u audio.Utterance) ([]byte, error) {
	if strings.TrimSpace(u.Text) == "" {
		return nil, audio.ErrEmptyText
	}

	resp, err := g.client.SynthesizeSpeech(ctx, buildRequest(g.cfg, u))
	if err != nil {
		return nil, fmt.Errorf("synthesizing speech: %w", err)
	}
	if len(resp.AudioContent) == 0 {
		return nil, errors.New("empty audio content from google tts")
	}

	g.logger.Debug("synthesized speech", "bytes", len(resp.AudioContent), "voice", g.cfg.VoiceName)
	return resp.AudioContent, nil
}

// Speak implements audio.Synthesizer. It returns once playback starts.
func (g *Google) Speak(ctx context.Context, u audio.Utterance) error {
	timeout := g.cfg.Timeout
	if timeout <= 0 {
		timeout = defaultGoogleTimeout
	}

	g.mu.Lock()
	g.stopLocked()
	sctx, cancel := context.WithTimeout(ctx, timeout)
	g.cancel = cancel
	g.mu.Unlock()
	defer cancel()

	data, err := g.Synthesize(sctx, u)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if err := sctx.Err(); err != nil {
		return err
	}

	pb, err := g.player.PlayBytes(ctx, data, "speech.mp3")
	if err != nil {
		return fmt.Errorf("playing synthesized speech: %w", err)
	}
	g.current = pb
	return nil
}

// Cancel implements audio.Synthesizer.
func (g *Google) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopLocked()
}

func (g *Google) stopLocked() {
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	if s, ok := g.current.(audio.Stopper); ok {
		s.Stop()
	}
	g.current = nil
}

// Close releases the client.
func (g *Google) Close() error {
	g.Cancel()
	return g.client.Close()
}

func buildRequest(cfg GoogleConfig, u audio.Utterance) *tts.SynthesizeSpeechRequest {
	voice := cfg.VoiceName
	if voice == "" {
		voice = defaultGoogleVoice
	}
	lang := cfg.LanguageCode
	if lang == "" {
		lang = languageCode(voice)
	}
	rate := u.Rate
	if rate <= 0 {
		rate = 1
	}

	return &tts.SynthesizeSpeechRequest{
		Input: &tts.SynthesisInput{
			InputSource: &tts.SynthesisInput_Text{Text: u.Text},
		},
		Voice: &tts.VoiceSelectionParams{
			LanguageCode: lang,
			Name:         voice,
		},
		AudioConfig: &tts.AudioConfig{
			AudioEncoding:   tts.AudioEncoding_MP3,
			SpeakingRate:    min(max(rate, 0.25), 4.0),
			Pitch:           semitones(u.Pitch),
			SampleRateHertz: cfg.SampleRate,
		},
	}
}

// languageCode extracts "en-US" from a voice name like "en-US-Standard-C".
func languageCode(voice string) string {
	parts := strings.Split(voice, "-")
	if len(parts) >= 2 {
		return parts[0] + "-" + parts[1]
	}
	return "en-US"
}

// semitones maps a relative pitch (1.0 is normal) onto Google's
// -20..20 semitone range.
func semitones(pitch float64) float64 {
	if pitch <= 0 {
		return 0
	}
	return min(max((pitch-1)*20, -20), 20)
}
