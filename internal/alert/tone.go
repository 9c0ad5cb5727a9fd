// Package alert synthesizes and plays the countdown-finished tone.
package alert

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	Frequency  = 800.0
	Duration   = 500 * time.Millisecond
	SampleRate = 44100

	bitDepth  = 16
	startGain = 0.3
	endGain   = 0.01
)

// Samples returns the tone as signed 16-bit mono PCM. The amplitude decays
// exponentially from startGain to endGain over Duration.
func Samples() []int {
	n := int(float64(SampleRate) * Duration.Seconds())
	samples := make([]int, n)
	peak := float64(int(1)<<(bitDepth-1) - 1)
	ratio := endGain / startGain

	for i := range samples {
		t := float64(i) / SampleRate
		progress := float64(i) / float64(n)
		gain := startGain * math.Pow(ratio, progress)
		samples[i] = int(math.Round(peak * gain * math.Sin(2*math.Pi*Frequency*t)))
	}
	return samples
}

// Tone encodes Samples as a WAV file.
func Tone() ([]byte, error) {
	out := &seekBuffer{}
	enc := wav.NewEncoder(out, SampleRate, bitDepth, 1, 1)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: SampleRate},
		Data:           Samples(),
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to encode tone: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish tone: %w", err)
	}
	return out.Bytes(), nil
}

// seekBuffer is an in-memory io.WriteSeeker; the WAV encoder seeks back to
// patch chunk sizes once all samples are written.
type seekBuffer struct {
	buf []byte
	pos int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	end := b.pos + len(p)
	if end > len(b.buf) {
		b.buf = append(b.buf, make([]byte, end-len(b.buf))...)
	}
	copy(b.buf[b.pos:], p)
	b.pos = end
	return len(p), nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(b.pos) + offset
	case io.SeekEnd:
		abs = int64(len(b.buf)) + offset
	default:
		return 0, errors.New("invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("negative position")
	}
	b.pos = int(abs)
	return abs, nil
}

func (b *seekBuffer) Bytes() []byte {
	return b.buf
}
