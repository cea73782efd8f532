package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"
)

// ClipFormat is the container of an encoded clip.
type ClipFormat string

const (
	FormatMP3 ClipFormat = "mp3"
	FormatWAV ClipFormat = "wav"
)

// DetectFormat sniffs data, falling back to the extension of name.
func DetectFormat(data []byte, name string) (ClipFormat, error) {
	switch {
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return FormatWAV, nil
	case len(data) >= 3 && string(data[:3]) == "ID3":
		return FormatMP3, nil
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return FormatMP3, nil
	}

	switch strings.ToLower(path.Ext(name)) {
	case ".mp3":
		return FormatMP3, nil
	case ".wav":
		return FormatWAV, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
}

// PCM is decoded signed 16-bit little-endian interleaved audio.
type PCM struct {
	Data       []byte
	SampleRate int
	Channels   int
}

// Decode turns an encoded clip into PCM at the given rate and channel
// count. Mono output averages both source channels.
func Decode(data []byte, name string, sampleRate, channels int) (PCM, error) {
	format, err := DetectFormat(data, name)
	if err != nil {
		return PCM{}, err
	}

	var (
		stream beep.StreamSeekCloser
		bf     beep.Format
	)
	switch format {
	case FormatMP3:
		stream, bf, err = mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	case FormatWAV:
		stream, bf, err = wav.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return PCM{}, fmt.Errorf("decoding %s clip: %w", format, err)
	}
	defer stream.Close()

	var s beep.Streamer = stream
	if int(bf.SampleRate) != sampleRate {
		s = beep.Resample(4, bf.SampleRate, beep.SampleRate(sampleRate), stream)
	}

	pcm, err := render(s, channels)
	if err != nil {
		return PCM{}, err
	}
	if err := stream.Err(); err != nil {
		return PCM{}, fmt.Errorf("decoding %s clip: %w", format, err)
	}

	return PCM{Data: pcm, SampleRate: sampleRate, Channels: channels}, nil
}

// Silence returns the given number of zeroed frames.
func Silence(sampleRate, channels, frames int) PCM {
	return PCM{
		Data:       make([]byte, frames*channels*2),
		SampleRate: sampleRate,
		Channels:   channels,
	}
}

func render(s beep.Streamer, channels int) ([]byte, error) {
	var out bytes.Buffer
	buf := make([][2]float64, 1024)
	frame := make([]byte, 2)

	for {
		n, ok := s.Stream(buf)
		for _, sample := range buf[:n] {
			if channels == 1 {
				binary.LittleEndian.PutUint16(frame, uint16(toInt16((sample[0]+sample[1])/2)))
				out.Write(frame)
				continue
			}
			for ch := 0; ch < channels; ch++ {
				binary.LittleEndian.PutUint16(frame, uint16(toInt16(sample[ch%2])))
				out.Write(frame)
			}
		}
		if !ok {
			break
		}
	}

	if out.Len() == 0 {
		return nil, fmt.Errorf("clip contains no audio")
	}
	return out.Bytes(), nil
}

func toInt16(v float64) int16 {
	switch {
	case v > 1:
		v = 1
	case v < -1:
		v = -1
	}
	return int16(v * 32767)
}
