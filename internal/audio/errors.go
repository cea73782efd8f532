package audio

import "errors"

var (
	// ErrClipUnavailable means a clip could not be fetched, decoded or started.
	ErrClipUnavailable = errors.New("clip unavailable")

	// ErrSynthesisUnavailable means no speech synthesizer can produce output.
	ErrSynthesisUnavailable = errors.New("speech synthesis unavailable")

	// ErrUnlockFailed means the playback device could not be resumed or warmed up.
	ErrUnlockFailed = errors.New("audio unlock failed")

	// ErrEmptyText means there was nothing to synthesize.
	ErrEmptyText = errors.New("empty text")

	// ErrSuperseded means a newer Speak call took over the synthesizer.
	ErrSuperseded = errors.New("superseded by a newer request")

	// ErrUnsupportedFormat means the clip is neither MP3 nor WAV.
	ErrUnsupportedFormat = errors.New("unsupported clip format")
)
