// Package speech provides speech synthesizer backends for audio.Output:
// espeak-ng and macOS say run as subprocesses, Google Cloud
// Text-to-Speech renders MP3 that is played through the clip player, and
// NoOp stands in when nothing is available.
package speech
