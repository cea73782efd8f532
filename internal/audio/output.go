package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// Strategy names the channel that produced sound.
type Strategy string

const (
	StrategyNone      Strategy = "none"
	StrategyClip      Strategy = "clip"
	StrategySynthesis Strategy = "synthesis"
)

// TextSource selects what gets synthesized.
type TextSource string

const (
	TextFromRequest       TextSource = "text"          // Request.Text
	TextFromPronunciation TextSource = "pronunciation" // Request.Pronunciation, Text when empty
)

// Request is one listen action.
type Request struct {
	Text          string // What to say, usually the glyph or example word
	Pronunciation string // Romanized reading
	Clip          string // Optional clip locator, e.g. "/audio/ka.mp3"
}

// StepResult is the result of one step in the fallback chain.
type StepResult struct {
	Attempted bool
	Err       error
}

// OK reports whether the step ran and succeeded.
func (s StepResult) OK() bool {
	return s.Attempted && s.Err == nil
}

// Outcome describes what a Speak call did.
type Outcome struct {
	Strategy  Strategy
	Unlock    StepResult
	Clip      StepResult
	Synthesis StepResult
}

// Voice holds the synthesis settings used by Output.
type Voice struct {
	Language string
	Rate     float64
	Pitch    float64
}

// DefaultVoice is slowed down for learners.
var DefaultVoice = Voice{
	Language: "bo",
	Rate:     0.7,
	Pitch:    1.0,
}

// Output plays pronunciation feedback using a clip when possible and
// synthesized speech otherwise. Create one per process and share it.
type Output struct {
	player ClipPlayer
	synth  Synthesizer
	logger *log.Logger

	voice      Voice
	textSource TextSource
	awaitClip  bool
	autoUnlock bool

	unlockMu sync.Mutex
	unlocked bool

	// synthMu guards gen and stop. It is never held across a
	// synthesizer Speak call so a newer request can always cancel.
	synthMu sync.Mutex
	gen     uint64
	stop    context.CancelFunc

	// speakMu admits one synthesizer Speak call at a time.
	speakMu sync.Mutex
}

// OutputOption configures an Output.
type OutputOption func(*Output)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *log.Logger) OutputOption {
	return func(o *Output) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithVoice overrides DefaultVoice. Zero fields keep their defaults.
func WithVoice(v Voice) OutputOption {
	return func(o *Output) {
		if v.Language != "" {
			o.voice.Language = v.Language
		}
		if v.Rate > 0 {
			o.voice.Rate = v.Rate
		}
		if v.Pitch > 0 {
			o.voice.Pitch = v.Pitch
		}
	}
}

// WithTextSource picks what the synthesizer is asked to say.
func WithTextSource(src TextSource) OutputOption {
	return func(o *Output) {
		if src == TextFromPronunciation {
			o.textSource = src
		} else {
			o.textSource = TextFromRequest
		}
	}
}

// WithAwaitClip makes Speak wait for a clip to finish. A clip that
// fails mid-playback then falls through to synthesis.
func WithAwaitClip(await bool) OutputOption {
	return func(o *Output) {
		o.awaitClip = await
	}
}

// WithAutoUnlock controls whether Speak attempts an unlock first.
func WithAutoUnlock(auto bool) OutputOption {
	return func(o *Output) {
		o.autoUnlock = auto
	}
}

// New returns an Output. Either capability may be nil.
func New(player ClipPlayer, synth Synthesizer, opts ...OutputOption) *Output {
	o := &Output{
		player:     player,
		synth:      synth,
		logger:     log.Default(),
		voice:      DefaultVoice,
		textSource: TextFromRequest,
		autoUnlock: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Unlocked reports whether a previous Unlock succeeded.
func (o *Output) Unlocked() bool {
	o.unlockMu.Lock()
	defer o.unlockMu.Unlock()
	return o.unlocked
}

// Unlock resumes the playback device and plays a silent warm-up buffer.
// Call it from a user interaction. After the first success it does
// nothing; a failure leaves the latch open so the next call retries.
func (o *Output) Unlock(ctx context.Context) StepResult {
	o.unlockMu.Lock()
	defer o.unlockMu.Unlock()

	if o.unlocked {
		return StepResult{}
	}
	if o.player == nil {
		o.unlocked = true
		return StepResult{}
	}

	res := StepResult{Attempted: true}
	if err := o.player.Resume(ctx); err != nil {
		res.Err = errors.Join(ErrUnlockFailed, fmt.Errorf("resuming playback: %w", err))
	} else if err := o.player.Warm(ctx); err != nil {
		res.Err = errors.Join(ErrUnlockFailed, fmt.Errorf("warming up playback: %w", err))
	}

	if res.Err != nil {
		o.logger.Debug("audio unlock failed", "err", res.Err)
		return res
	}

	o.unlocked = true
	o.logger.Debug("audio unlocked")
	return res
}

// Speak plays feedback for req. It never fails: every problem is logged
// and recorded in the Outcome, and the worst case is silence.
func (o *Output) Speak(ctx context.Context, req Request) Outcome {
	out := Outcome{Strategy: StrategyNone}
	gen := o.cancelSynthesis()

	if o.autoUnlock {
		out.Unlock = o.Unlock(ctx)
	}

	if req.Clip != "" {
		out.Clip = o.playClip(ctx, req.Clip)
		if out.Clip.Err == nil {
			out.Strategy = StrategyClip
			return out
		}
		o.logger.Warn("clip playback failed, falling back to speech", "clip", req.Clip, "err", out.Clip.Err)
	}

	out.Synthesis = o.synthesize(ctx, gen, o.utterance(req))
	if out.Synthesis.OK() {
		out.Strategy = StrategySynthesis
	}
	return out
}

func (o *Output) playClip(ctx context.Context, clip string) StepResult {
	res := StepResult{Attempted: true}
	if o.player == nil {
		res.Err = errors.Join(ErrClipUnavailable, errors.New("no clip player"))
		return res
	}

	pb, err := o.player.Play(ctx, clip)
	if err != nil {
		res.Err = errors.Join(ErrClipUnavailable, err)
		return res
	}

	if o.awaitClip {
		select {
		case <-pb.Done():
			if err := pb.Err(); err != nil {
				res.Err = errors.Join(ErrClipUnavailable, fmt.Errorf("playing clip: %w", err))
			}
		case <-ctx.Done():
		}
	}
	return res
}

func (o *Output) utterance(req Request) Utterance {
	text := req.Text
	if o.textSource == TextFromPronunciation && req.Pronunciation != "" {
		text = req.Pronunciation
	}
	return Utterance{
		Text:     text,
		Language: o.voice.Language,
		Rate:     o.voice.Rate,
		Pitch:    o.voice.Pitch,
	}
}

// cancelSynthesis stops any active utterance, including one whose
// synthesizer call is still in flight, and returns the generation number
// for the calling request.
func (o *Output) cancelSynthesis() uint64 {
	o.synthMu.Lock()
	defer o.synthMu.Unlock()

	o.gen++
	if o.stop != nil {
		o.stop()
		o.stop = nil
	}
	if o.synth != nil {
		o.synth.Cancel()
	}
	return o.gen
}

func (o *Output) superseded(gen uint64) bool {
	o.synthMu.Lock()
	defer o.synthMu.Unlock()
	return gen != o.gen
}

func (o *Output) synthesize(ctx context.Context, gen uint64, u Utterance) StepResult {
	if u.Text == "" {
		return StepResult{Err: ErrEmptyText}
	}
	if o.synth == nil || !o.synth.Available() {
		o.logger.Debug("no speech synthesizer available", "text", u.Text)
		return StepResult{Attempted: true, Err: ErrSynthesisUnavailable}
	}

	o.speakMu.Lock()
	defer o.speakMu.Unlock()

	o.synthMu.Lock()
	if gen != o.gen {
		o.synthMu.Unlock()
		return StepResult{Err: ErrSuperseded}
	}
	sctx, stop := context.WithCancel(ctx)
	defer stop()
	o.stop = stop
	o.synth.Cancel()
	o.synthMu.Unlock()

	if err := o.synth.Speak(sctx, u); err != nil {
		if o.superseded(gen) {
			o.logger.Debug("speech cancelled by a newer request", "text", u.Text)
			return StepResult{Attempted: true, Err: errors.Join(ErrSuperseded, err)}
		}
		o.logger.Warn("speech synthesis failed", "synth", o.synth.Name(), "text", u.Text, "err", err)
		return StepResult{Attempted: true, Err: errors.Join(ErrSynthesisUnavailable, err)}
	}
	return StepResult{Attempted: true}
}
