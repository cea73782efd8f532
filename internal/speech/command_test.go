package speech

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"
	"time"

	"github.com/f3rmion/kakha/internal/audio"
)

func fakeLookPath(found ...string) func(string) (string, error) {
	return func(bin string) (string, error) {
		for _, f := range found {
			if f == bin {
				return "/usr/bin/" + bin, nil
			}
		}
		return "", exec.ErrNotFound
	}
}

func TestDetectCommand(t *testing.T) {
	tests := []struct {
		name     string
		goos     string
		found    []string
		wantName string
		wantOK   bool
	}{
		{name: "linux espeak-ng", goos: "linux", found: []string{"espeak-ng", "espeak"}, wantName: "espeak-ng", wantOK: true},
		{name: "linux espeak", goos: "linux", found: []string{"espeak"}, wantName: "espeak", wantOK: true},
		{name: "darwin say", goos: "darwin", found: []string{"say", "espeak"}, wantName: "say", wantOK: true},
		{name: "darwin espeak fallback", goos: "darwin", found: []string{"espeak-ng"}, wantName: "espeak-ng", wantOK: true},
		{name: "linux ignores say", goos: "linux", found: []string{"say"}, wantOK: false},
		{name: "nothing", goos: "windows", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, ok := DetectCommand(tt.goos, fakeLookPath(tt.found...))
			if ok != tt.wantOK {
				t.Fatalf("DetectCommand() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && cmd.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", cmd.Name(), tt.wantName)
			}
		})
	}
}

func TestCommandArgs(t *testing.T) {
	espeak := NewCommand("espeak-ng", "/usr/bin/espeak-ng", false)
	say := NewCommand("say", "/usr/bin/say", true)

	tests := []struct {
		name  string
		cmd   *Command
		u     audio.Utterance
		voice string
		want  []string
	}{
		{
			name:  "espeak slowed",
			cmd:   espeak,
			u:     audio.Utterance{Text: "ka", Rate: 0.7, Pitch: 1.0},
			voice: "en",
			want:  []string{"-s", "122", "-p", "50", "-v", "en", "--", "ka"},
		},
		{
			name: "espeak defaults and pitch clamp",
			cmd:  espeak,
			u:    audio.Utterance{Text: "-ka", Pitch: 3},
			want: []string{"-s", "175", "-p", "99", "--", "-ka"},
		},
		{
			name:  "say",
			cmd:   say,
			u:     audio.Utterance{Text: "ka", Rate: 0.7},
			voice: "Samantha",
			want:  []string{"-r", "122", "-v", "Samantha", "--", "ka"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cmd.args(tt.u, tt.voice)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("args() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseEspeakVoices(t *testing.T) {
	out := `Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  af              --/M      Afrikaans          gmw/af
 5  bo              --/M      Tibetan            sit/bo
 2  en-us           --/M      English_(America)  gmw/en-US            (en 3)
`
	voices := parseEspeakVoices(out)
	for _, lang := range []string{"af", "bo", "en-us"} {
		if !voices[lang] {
			t.Errorf("voice %q missing", lang)
		}
	}
	if voices["language"] {
		t.Error("header parsed as a voice")
	}
}

func TestVoiceForFallsBack(t *testing.T) {
	c := NewCommand("espeak-ng", "/usr/bin/espeak-ng", false)
	c.Voice = "en"
	c.voicesOnce.Do(func() {
		c.voices = map[string]bool{"bo": true}
	})

	if got := c.voiceFor("bo"); got != "bo" {
		t.Errorf("voiceFor(bo) = %q, want bo", got)
	}
	if got := c.voiceFor("dz"); got != "en" {
		t.Errorf("voiceFor(dz) = %q, want en", got)
	}
	if got := c.voiceFor(""); got != "en" {
		t.Errorf("voiceFor(\"\") = %q, want en", got)
	}
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	path := filepath.Join(t.TempDir(), "fake-espeak")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCommandCancelStopsProcess(t *testing.T) {
	c := NewCommand("fake", writeScript(t, "exec sleep 30"), false)

	if err := c.Speak(context.Background(), audio.Utterance{Text: "ka"}); err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	if !c.Speaking() {
		t.Fatal("Speaking() = false after Speak")
	}

	first := c.cmd
	if err := c.Speak(context.Background(), audio.Utterance{Text: "kha"}); err != nil {
		t.Fatalf("second Speak() error = %v", err)
	}
	if c.cmd == first {
		t.Error("second Speak did not replace the first process")
	}

	c.Cancel()
	if c.Speaking() {
		t.Error("Speaking() = true after Cancel")
	}
}

func TestCommandFinishes(t *testing.T) {
	c := NewCommand("fake", writeScript(t, "exit 0"), false)

	if err := c.Speak(context.Background(), audio.Utterance{Text: "ka"}); err != nil {
		t.Fatalf("Speak() error = %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for c.Speaking() {
		if time.Now().After(deadline) {
			t.Fatal("process state not cleared after exit")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestCommandSpeakCancelledContext(t *testing.T) {
	c := NewCommand("fake", "/nonexistent", false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.Speak(ctx, audio.Utterance{Text: "ka"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Speak() error = %v, want context.Canceled", err)
	}
}

func TestCommandStartError(t *testing.T) {
	c := NewCommand("missing", filepath.Join(t.TempDir(), "nope"), false)
	if err := c.Speak(context.Background(), audio.Utterance{Text: "ka"}); err == nil {
		t.Error("expected start error")
	}
	if c.Speaking() {
		t.Error("Speaking() = true after failed start")
	}
}
