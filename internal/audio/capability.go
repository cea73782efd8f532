package audio

import "context"

// Playback is a clip that has started playing.
type Playback interface {
	// Done is closed when playback finishes or fails.
	Done() <-chan struct{}
	// Err reports a playback failure once Done is closed.
	Err() error
}

// Stopper is implemented by playbacks that can be interrupted.
type Stopper interface {
	Stop()
}

// ClipPlayer plays pre-recorded clips.
type ClipPlayer interface {
	// Resume brings a suspended output device into a running state.
	Resume(ctx context.Context) error
	// Warm plays a short zero-volume buffer.
	Warm(ctx context.Context) error
	// Play resolves clip, decodes it and starts playback. It returns once
	// playback has started.
	Play(ctx context.Context, clip string) (Playback, error)
}

// BytesPlayer plays an encoded clip that is already in memory. name is
// used only as a format hint.
type BytesPlayer interface {
	PlayBytes(ctx context.Context, data []byte, name string) (Playback, error)
}

// Utterance is a single request to a Synthesizer.
type Utterance struct {
	Text     string
	Language string  // BCP 47 tag, e.g. "bo"
	Rate     float64 // 1.0 is the backend's normal speed
	Pitch    float64 // 1.0 is the backend's normal pitch
}

// Synthesizer speaks text.
type Synthesizer interface {
	Name() string
	// Available reports whether the backend can produce output at all.
	Available() bool
	// Speak starts speaking and returns without waiting for the end.
	Speak(ctx context.Context, u Utterance) error
	// Cancel stops the current utterance, if any.
	Cancel()
}
