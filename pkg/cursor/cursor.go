package cursor

import "math"

// State is the lifecycle phase of a [Cursor].
type State int

const (
	Idle State = iota
	Running
	Complete
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Complete:
		return "complete"
	}
	return "unknown"
}

// Signal is the per-tick input of a cursor. The zero value carries no
// loudness reading.
type Signal struct {
	Loudness float64
	HasLevel bool
}

// Level returns a Signal carrying loudness v.
func Level(v float64) Signal { return Signal{Loudness: v, HasLevel: true} }

// Cursor advances a reveal position over a fixed path.
type Cursor[T any] struct {
	path     []T
	cfg      Config
	position float64
	count    int
	state    State
}

// New creates an idle cursor over path. Zero config fields take their
// defaults. The path slice is retained, not copied.
func New[T any](path []T, cfg Config) *Cursor[T] {
	return &Cursor[T]{path: path, cfg: cfg.WithDefaults()}
}

// Start resets the cursor to the beginning of the path and starts running.
// It supersedes any run in progress. On an empty path Start does nothing.
func (c *Cursor[T]) Start() {
	if len(c.path) == 0 {
		return
	}
	c.position = 0
	c.count = 0
	c.state = Running
}

// Tick advances the cursor by one frame. It does nothing unless the cursor
// is running.
func (c *Cursor[T]) Tick(sig Signal) {
	if len(c.path) == 0 || c.state != Running {
		return
	}
	c.position += c.advance(sig)
	c.count = int(math.Floor(c.position))

	last := len(c.path) - 1
	if c.count >= last {
		c.count = last
		c.position = float64(last)
		c.state = Complete
	}
}

func (c *Cursor[T]) advance(sig Signal) float64 {
	if !sig.HasLevel {
		return c.cfg.Step
	}
	v := sig.Loudness
	if math.IsNaN(v) {
		v = 0
	}
	v = min(max(v, 0), c.cfg.LoudnessCeiling)
	if v < c.cfg.SilenceThreshold {
		return 0
	}
	boost := v / c.cfg.LoudnessCeiling * c.cfg.BoostMax
	return (c.cfg.BaseSpeed + boost) * c.cfg.Multiplier
}

// RevealCount returns the number of leading path elements to draw revealed.
// It is always a valid slice bound for the path.
func (c *Cursor[T]) RevealCount() int { return min(c.count, len(c.path)) }

// Revealed returns the revealed prefix of the path.
func (c *Cursor[T]) Revealed() []T { return c.path[:c.RevealCount()] }

// Progress returns the reveal count as a fraction of the last path index,
// in [0, 1]. An empty or single-element path reports 0.
func (c *Cursor[T]) Progress() float64 {
	if len(c.path) < 2 {
		return 0
	}
	return float64(c.count) / float64(len(c.path)-1)
}

func (c *Cursor[T]) Position() float64 { return c.position }
func (c *Cursor[T]) State() State      { return c.state }
func (c *Cursor[T]) Running() bool     { return c.state == Running }
func (c *Cursor[T]) Len() int          { return len(c.path) }
func (c *Cursor[T]) Path() []T         { return c.path }
func (c *Cursor[T]) Config() Config    { return c.cfg }
