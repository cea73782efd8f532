// Package audio produces spoken pronunciation feedback.
//
// Output is the entry point. It owns the one-time unlock latch and
// walks a fixed fallback chain on every Speak: best-effort unlock, the
// pre-recorded clip if one was given, then synthesized speech. Failures
// are logged and reported in the returned Outcome but never returned as
// errors, so the worst case for a caller is silence.
//
// The platform primitives are injected: ClipPlayer plays decoded clips
// (OtoPlayer is the production implementation, built on oto and beep)
// and Synthesizer speaks text (see package speech).
package audio
