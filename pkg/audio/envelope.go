package audio

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// DefaultFPS is the frame rate envelopes are sampled at unless told otherwise.
const DefaultFPS = 60

// Options controls envelope analysis.
type Options struct {
	// FPS is the number of loudness readings per second of audio.
	FPS float64

	// Smoothing in [0, 1) blends each reading with the previous one:
	// level = Smoothing*prev + (1-Smoothing)*rms. Zero disables it.
	Smoothing float64
}

func (o Options) withDefaults() Options {
	if o.FPS <= 0 {
		o.FPS = DefaultFPS
	}
	o.Smoothing = min(max(o.Smoothing, 0), 0.99)
	return o
}

// Envelope is a loudness reading per frame.
type Envelope struct {
	FPS      float64
	Duration time.Duration
	Levels   []float64
}

// Len returns the number of frames.
func (e *Envelope) Len() int {
	if e == nil {
		return 0
	}
	return len(e.Levels)
}

// At returns the loudness of frame i. ok is false past either end.
func (e *Envelope) At(i int) (level float64, ok bool) {
	if e == nil || i < 0 || i >= len(e.Levels) {
		return 0, false
	}
	return e.Levels[i], true
}

// AtTime returns the loudness at playback offset d.
func (e *Envelope) AtTime(d time.Duration) (float64, bool) {
	if e == nil {
		return 0, false
	}
	return e.At(int(d.Seconds() * e.FPS))
}

// Mean returns the average level over all frames.
func (e *Envelope) Mean() float64 {
	if e.Len() == 0 {
		return 0
	}
	var sum float64
	for _, v := range e.Levels {
		sum += v
	}
	return sum / float64(len(e.Levels))
}

// Analyze drains s and computes one RMS reading per frame. The streamer is
// not closed.
func Analyze(s beep.Streamer, format beep.Format, opts Options) (*Envelope, error) {
	opts = opts.withDefaults()
	rate := float64(format.SampleRate)
	if rate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", format.SampleRate)
	}

	var (
		sums   []float64
		counts []int
		total  int
	)
	buf := make([][2]float64, 4096)
	for {
		n, ok := s.Stream(buf)
		for _, smp := range buf[:n] {
			frame := int(float64(total) * opts.FPS / rate)
			for frame >= len(sums) {
				sums = append(sums, 0)
				counts = append(counts, 0)
			}
			mono := (smp[0] + smp[1]) / 2
			sums[frame] += mono * mono
			counts[frame]++
			total++
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("stream audio: %w", err)
	}

	env := &Envelope{
		FPS:      opts.FPS,
		Duration: format.SampleRate.D(total),
		Levels:   make([]float64, len(sums)),
	}
	prev := 0.0
	for i := range sums {
		rms := math.Sqrt(sums[i] / float64(counts[i]))
		level := opts.Smoothing*prev + (1-opts.Smoothing)*rms
		env.Levels[i] = level
		prev = level
	}
	return env, nil
}

// DecodeWAV reads a WAV stream and analyses it.
func DecodeWAV(r io.Reader, opts Options) (*Envelope, error) {
	s, format, err := wav.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	defer s.Close()
	return Analyze(s, format, opts)
}

// LoadWAV opens and analyses a WAV file.
func LoadWAV(path string, opts Options) (*Envelope, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeWAV(f, opts)
}
