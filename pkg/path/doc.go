// Package path orders the road cells of a [grid.Grid] into one long
// continuous traversal.
//
// # Overview
//
// The reveal animation walks a single ordered sequence of cells, so the
// unordered road grid has to be turned into a path first. A path is a
// sequence of distinct road cells where each cell is one 4-directional step
// away from its predecessor.
//
// # Algorithm
//
// [Search] runs a depth-first search with backtracking from a corridor
// endpoint (the first road cell in row-major order whose road-degree is 1,
// or the first road cell if no endpoint exists). The visited set is scoped
// to the current branch, so a cell abandoned on one branch may be reused on
// another. Whenever the current branch is strictly longer than the best one
// seen so far, it is recorded as the new best.
//
// Neighbours are tried in ascending road-degree order, ties broken by the
// fixed direction order right, down, left, up. Exploring narrow corridors
// before junctions makes the first branches already cover most of a sparse,
// road-like grid.
//
// The search is exhaustive and exponential in the worst case. It is not
// guaranteed to find the longest path, and on dense grids it may not finish
// in reasonable time. Set [Search.MaxSteps] or [Search.Timeout] to bound it;
// a bounded search returns the best path found before the budget ran out.
//
// The search is implemented with an explicit stack over a flat cell arena,
// so corridor length is not limited by goroutine stack depth.
//
// # Greedy Strategy
//
// [StrategyGreedy] is a simpler walk with no backtracking: it keeps going
// straight while it can and otherwise turns to the first free neighbour in
// direction order. It is fast and predictable but usually stops earlier.
//
// # Usage
//
//	res := path.Search{MaxSteps: 5_000_000}.Build(g)
//	ids := path.Payloads(res.Coords, idx)
package path
