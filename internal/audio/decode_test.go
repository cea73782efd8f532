package audio

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

func writeTone(t *testing.T, rate beep.SampleRate, frames int) []byte {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	pos := 0
	tone := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			v := 0.5 * math.Sin(2*math.Pi*440*float64(pos)/float64(rate))
			samples[i] = [2]float64{v, v}
			pos++
		}
		return len(samples), true
	})

	format := beep.Format{SampleRate: rate, NumChannels: 1, Precision: 2}
	if err := wav.Encode(f, beep.Take(frames, tone), format); err != nil {
		t.Fatalf("encoding wav: %v", err)
	}
	f.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestDecodeWAV(t *testing.T) {
	data := writeTone(t, 44100, 4410)

	pcm, err := Decode(data, "tone.wav", 44100, 2)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if pcm.SampleRate != 44100 || pcm.Channels != 2 {
		t.Errorf("format = %d Hz x%d", pcm.SampleRate, pcm.Channels)
	}
	if got, want := len(pcm.Data), 4410*2*2; got != want {
		t.Errorf("len(Data) = %d, want %d", got, want)
	}
}

func TestDecodeResamples(t *testing.T) {
	data := writeTone(t, 22050, 2205)

	pcm, err := Decode(data, "", 44100, 1)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	frames := len(pcm.Data) / 2
	if frames < 4300 || frames > 4500 {
		t.Errorf("frames = %d, want about 4410", frames)
	}
}

func TestDecodeRejectsUnknownFormat(t *testing.T) {
	_, err := Decode([]byte("plain text, not audio"), "notes.txt", 44100, 2)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Decode() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		file    string
		want    ClipFormat
		wantErr bool
	}{
		{name: "riff header", data: []byte("RIFF\x00\x00\x00\x00WAVEfmt "), want: FormatWAV},
		{name: "id3 tag", data: []byte("ID3\x04\x00"), want: FormatMP3},
		{name: "mpeg frame sync", data: []byte{0xFF, 0xFB, 0x90, 0x00}, want: FormatMP3},
		{name: "extension fallback", data: []byte{0, 0, 0}, file: "/audio/ka.MP3", want: FormatMP3},
		{name: "wav extension", data: nil, file: "vowel_i.wav", want: FormatWAV},
		{name: "unknown", data: []byte{1, 2, 3}, file: "ka.ogg", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.data, tt.file)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DetectFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DetectFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSilence(t *testing.T) {
	pcm := Silence(44100, 2, 100)
	if len(pcm.Data) != 400 {
		t.Errorf("len(Data) = %d, want 400", len(pcm.Data))
	}
	for _, b := range pcm.Data {
		if b != 0 {
			t.Fatal("silence contains non-zero bytes")
		}
	}
}

func TestPlayerConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PlayerConfig)
		wantErr bool
	}{
		{name: "default", mutate: func(*PlayerConfig) {}},
		{name: "48k mono", mutate: func(c *PlayerConfig) { c.SampleRate = 48000; c.Channels = 1 }},
		{name: "bad rate", mutate: func(c *PlayerConfig) { c.SampleRate = 22050 }, wantErr: true},
		{name: "bad channels", mutate: func(c *PlayerConfig) { c.Channels = 6 }, wantErr: true},
		{name: "bad volume", mutate: func(c *PlayerConfig) { c.Volume = 2 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultPlayerConfig()
			tt.mutate(&cfg)
			_, err := NewOtoPlayer(cfg, nil, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewOtoPlayer() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
