package path

import "github.com/matzehuels/roadreveal/pkg/grid"

// greedy walks from start without backtracking, keeping its heading while the
// cell ahead is a free road cell and otherwise turning to the first free
// neighbour in direction order.
func (s Search) greedy(g *grid.Grid, start grid.Coord) Result {
	limit := s.budget()
	visited := make([]bool, g.Len())
	free := func(c grid.Coord) bool {
		return g.Road(c) && !visited[g.Index(c)]
	}

	var coords []grid.Coord
	heading := -1
	c := start
	exhausted := false
	for {
		visited[g.Index(c)] = true
		coords = append(coords, c)

		next := -1
		if heading >= 0 && free(c.Add(grid.Directions[heading])) {
			next = heading
		} else {
			for d, off := range grid.Directions {
				if free(c.Add(off)) {
					next = d
					break
				}
			}
		}
		if next < 0 {
			break
		}
		if limit.exceeded(len(coords)) {
			exhausted = true
			break
		}
		heading = next
		c = c.Add(grid.Directions[heading])
	}

	return Result{
		Coords:    coords,
		Steps:     len(coords),
		Exhausted: exhausted,
	}
}
