package path

import (
	"fmt"
	"time"

	"github.com/matzehuels/roadreveal/pkg/grid"
)

// Strategy selects the traversal algorithm.
type Strategy string

const (
	// StrategyDFS is the depth-first search with backtracking.
	StrategyDFS Strategy = "dfs"

	// StrategyGreedy is the straight-preferring walk without backtracking.
	StrategyGreedy Strategy = "greedy"
)

// ParseStrategy validates a strategy name. The empty string selects
// [StrategyDFS].
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyDFS:
		return StrategyDFS, nil
	case StrategyGreedy:
		return StrategyGreedy, nil
	}
	return "", fmt.Errorf("unknown strategy %q (must be one of: dfs, greedy)", s)
}

const (
	// deadlineCheckInterval is how many steps pass between clock reads and
	// Cancel calls.
	deadlineCheckInterval = 4096

	// progressInterval is how many steps pass between Progress callbacks.
	progressInterval = 1 << 16
)

// Builder produces a path from a grid.
type Builder interface {
	Build(g *grid.Grid) Result
}

// Result holds a built path and statistics about the search.
type Result struct {
	// Coords is the ordered path. Empty if the grid has no road cell.
	Coords []grid.Coord

	// Start is the cell the search started from (zero if Coords is empty).
	Start grid.Coord

	// Steps counts cells entered, including re-entries on other branches.
	Steps int

	// Component is the number of road cells reachable from Start.
	Component int

	// Exhausted is set when MaxSteps, Timeout or Cancel stopped the search
	// early.
	Exhausted bool

	// Elapsed is the wall time spent searching.
	Elapsed time.Duration
}

// Len returns the path length.
func (r Result) Len() int { return len(r.Coords) }

// Complete reports whether the path visits every cell of its component.
func (r Result) Complete() bool { return r.Component > 0 && len(r.Coords) == r.Component }

// Search configures path construction. The zero value runs an unbounded
// depth-first search.
type Search struct {
	// Strategy selects the algorithm. Empty means StrategyDFS.
	Strategy Strategy

	// MaxSteps bounds the number of cells entered. Zero means unbounded.
	MaxSteps int

	// Timeout bounds the wall time of the search. Zero means unbounded.
	Timeout time.Duration

	// Cancel, if set, is polled alongside the deadline. Once it reports true
	// the search stops and returns the best path so far as exhausted.
	Cancel func() bool

	// Progress, if set, is called periodically with the number of steps taken
	// and the current best length, and once more when the search ends.
	Progress func(steps, best int)
}

var _ Builder = Search{}

// Build orders the road cells of g into a path. It never fails: an empty or
// road-less grid yields an empty result.
func (s Search) Build(g *grid.Grid) Result {
	begin := time.Now()
	if g == nil || g.Empty() {
		return Result{}
	}
	start, ok := Start(g)
	if !ok {
		return Result{}
	}

	component := componentSize(g, start)
	var res Result
	switch s.Strategy {
	case StrategyGreedy:
		res = s.greedy(g, start)
	default:
		res = s.dfs(g, start, component)
	}
	res.Start = start
	res.Component = component
	res.Elapsed = time.Since(begin)
	if s.Progress != nil {
		s.Progress(res.Steps, len(res.Coords))
	}
	return res
}

// Longest builds a path with an unbounded depth-first search.
func Longest(g *grid.Grid) []grid.Coord {
	return Search{}.Build(g).Coords
}

// Start returns the search start cell: the first road cell in row-major order
// with road-degree 1, or the first road cell if there is none.
func Start(g *grid.Grid) (grid.Coord, bool) {
	var first grid.Coord
	found := false
	for i := range g.Len() {
		if !g.RoadAt(i) {
			continue
		}
		c := g.CoordOf(i)
		if g.Degree(c) == 1 {
			return c, true
		}
		if !found {
			first, found = c, true
		}
	}
	return first, found
}

// budget tracks step and time limits during a search.
type budget struct {
	maxSteps int
	deadline time.Time
	cancel   func() bool
}

func (s Search) budget() budget {
	b := budget{maxSteps: s.MaxSteps, cancel: s.Cancel}
	if s.Timeout > 0 {
		b.deadline = time.Now().Add(s.Timeout)
	}
	return b
}

func (b budget) exceeded(steps int) bool {
	if b.maxSteps > 0 && steps >= b.maxSteps {
		return true
	}
	if steps%deadlineCheckInterval != 0 {
		return false
	}
	if !b.deadline.IsZero() && time.Now().After(b.deadline) {
		return true
	}
	return b.cancel != nil && b.cancel()
}

// componentSize counts road cells 4-connected to start.
func componentSize(g *grid.Grid, start grid.Coord) int {
	seen := make([]bool, g.Len())
	queue := []int{g.Index(start)}
	seen[queue[0]] = true
	n := 0
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		n++
		c := g.CoordOf(i)
		for _, d := range grid.Directions {
			nc := c.Add(d)
			if !g.Road(nc) {
				continue
			}
			if ni := g.Index(nc); !seen[ni] {
				seen[ni] = true
				queue = append(queue, ni)
			}
		}
	}
	return n
}

func toCoords(g *grid.Grid, cells []int) []grid.Coord {
	coords := make([]grid.Coord, len(cells))
	for i, cell := range cells {
		coords[i] = g.CoordOf(cell)
	}
	return coords
}
