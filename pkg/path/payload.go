package path

import (
	"fmt"

	"github.com/matzehuels/roadreveal/pkg/grid"
)

// Payloads translates a coordinate path into payload ids through idx,
// preserving order. Coordinates without a payload are skipped.
func Payloads(p []grid.Coord, idx *grid.Index) []grid.PayloadID {
	ids := make([]grid.PayloadID, 0, len(p))
	for _, c := range p {
		if id, ok := idx.Lookup(c); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Validate checks that p is a simple path of 4-adjacent road cells in g.
func Validate(g *grid.Grid, p []grid.Coord) error {
	seen := make(map[grid.Coord]struct{}, len(p))
	for i, c := range p {
		if !g.Road(c) {
			return fmt.Errorf("step %d: %v is not a road cell", i, c)
		}
		if _, dup := seen[c]; dup {
			return fmt.Errorf("step %d: %v visited twice", i, c)
		}
		seen[c] = struct{}{}
		if i > 0 && !p[i-1].Adjacent(c) {
			return fmt.Errorf("step %d: %v is not adjacent to %v", i, c, p[i-1])
		}
	}
	return nil
}
