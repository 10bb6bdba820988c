package audio

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
)

var (
	speakerOnce sync.Once
	speakerErr  error
	speakerRate beep.SampleRate
)

// initSpeaker initialises the process-wide speaker once. beep's speaker can
// only be opened at a single sample rate; later tracks are resampled to it.
func initSpeaker(sr beep.SampleRate) (beep.SampleRate, error) {
	speakerOnce.Do(func() {
		speakerRate = sr
		speakerErr = speaker.Init(sr, sr.N(time.Second/10))
	})
	return speakerRate, speakerErr
}

// Player plays one WAV track and reports the playback offset.
type Player struct {
	mu     sync.Mutex
	stream beep.StreamSeekCloser
	format beep.Format
	ctrl   *beep.Ctrl
}

// OpenPlayer opens a WAV file for playback. Call Close when done.
func OpenPlayer(path string) (*Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	s, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	return &Player{stream: s, format: format}, nil
}

// Play starts playback from the beginning, replacing whatever the player was
// playing before.
func (p *Player) Play() error {
	rate, err := initSpeaker(p.format.SampleRate)
	if err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}

	speaker.Lock()
	err = p.stream.Seek(0)
	speaker.Unlock()
	if err != nil {
		return fmt.Errorf("rewind: %w", err)
	}

	var s beep.Streamer = p.stream
	if rate != p.format.SampleRate {
		s = beep.Resample(4, p.format.SampleRate, rate, s)
	}

	p.mu.Lock()
	if p.ctrl != nil {
		speaker.Lock()
		p.ctrl.Streamer = nil
		speaker.Unlock()
	}
	p.ctrl = &beep.Ctrl{Streamer: s}
	ctrl := p.ctrl
	p.mu.Unlock()

	speaker.Play(ctrl)
	return nil
}

// Elapsed returns the current playback offset.
func (p *Player) Elapsed() time.Duration {
	speaker.Lock()
	defer speaker.Unlock()
	return p.format.SampleRate.D(p.stream.Position())
}

// Duration returns the length of the track.
func (p *Player) Duration() time.Duration {
	return p.format.SampleRate.D(p.stream.Len())
}

// Done reports whether playback has reached the end of the track.
func (p *Player) Done() bool {
	speaker.Lock()
	defer speaker.Unlock()
	return p.stream.Position() >= p.stream.Len()
}

// Close stops playback and releases the file. The decoder closes the
// underlying file.
func (p *Player) Close() error {
	p.mu.Lock()
	if p.ctrl != nil {
		speaker.Lock()
		p.ctrl.Streamer = nil
		speaker.Unlock()
		p.ctrl = nil
	}
	p.mu.Unlock()
	return p.stream.Close()
}
