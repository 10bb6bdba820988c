package path

import "github.com/matzehuels/roadreveal/pkg/grid"

// frame is one level of the explicit DFS stack: a cell on the current branch
// and the neighbours still to be tried from it.
type frame struct {
	cell int
	next [4]int
	n, i int
}

// dfs stops early once the best path covers all target cells, since no
// longer simple path can exist.
func (s Search) dfs(g *grid.Grid, start grid.Coord, target int) Result {
	deg := degrees(g)
	limit := s.budget()

	visited := make([]bool, g.Len())
	current := make([]int, 0, target)
	best := make([]int, 0, target)
	stack := make([]frame, 0, target)
	steps := 0

	enter := func(cell int) {
		visited[cell] = true
		current = append(current, cell)
		steps++
		if len(current) > len(best) {
			best = append(best[:0], current...)
		}

		f := frame{cell: cell}
		c := g.CoordOf(cell)
		for _, d := range grid.Directions {
			nc := c.Add(d)
			if !g.Road(nc) {
				continue
			}
			if ni := g.Index(nc); !visited[ni] {
				f.next[f.n] = ni
				f.n++
			}
		}
		// Stable insertion sort keeps direction order among equal degrees.
		for i := 1; i < f.n; i++ {
			for j := i; j > 0 && deg[f.next[j]] < deg[f.next[j-1]]; j-- {
				f.next[j], f.next[j-1] = f.next[j-1], f.next[j]
			}
		}
		stack = append(stack, f)

		if s.Progress != nil && steps%progressInterval == 0 {
			s.Progress(steps, len(best))
		}
	}

	exhausted := false
	enter(g.Index(start))
	for len(stack) > 0 {
		if len(best) == target {
			break
		}
		top := &stack[len(stack)-1]
		if top.i < top.n {
			if limit.exceeded(steps) {
				exhausted = true
				break
			}
			next := top.next[top.i]
			top.i++
			enter(next)
			continue
		}
		visited[top.cell] = false
		current = current[:len(current)-1]
		stack = stack[:len(stack)-1]
	}

	return Result{
		Coords:    toCoords(g, best),
		Steps:     steps,
		Exhausted: exhausted,
	}
}

func degrees(g *grid.Grid) []int {
	deg := make([]int, g.Len())
	for i := range deg {
		deg[i] = g.Degree(g.CoordOf(i))
	}
	return deg
}
