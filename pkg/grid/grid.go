package grid

import (
	"fmt"
	"strings"
)

// Coord addresses a single grid cell.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Add returns the coordinate offset by d.
func (c Coord) Add(d Coord) Coord {
	return Coord{Row: c.Row + d.Row, Col: c.Col + d.Col}
}

// Adjacent reports whether o is exactly one 4-directional step away from c.
func (c Coord) Adjacent(o Coord) bool {
	dr, dc := c.Row-o.Row, c.Col-o.Col
	return dr*dr+dc*dc == 1
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Directions lists the four neighbour offsets in the fixed enumeration order
// used for tie-breaking: right, down, left, up.
var Directions = [4]Coord{
	{Row: 0, Col: 1},
	{Row: 1, Col: 0},
	{Row: 0, Col: -1},
	{Row: -1, Col: 0},
}

// Grid is an immutable rows × cols table of road flags.
type Grid struct {
	rows, cols int
	cells      []bool
}

// New builds a grid by asking road for every cell in row-major order.
// Negative dimensions are treated as zero.
func New(rows, cols int, road func(Coord) bool) *Grid {
	rows, cols = max(rows, 0), max(cols, 0)
	if rows == 0 || cols == 0 {
		return &Grid{}
	}
	g := &Grid{rows: rows, cols: cols, cells: make([]bool, rows*cols)}
	if road == nil {
		return g
	}
	for r := range rows {
		for c := range cols {
			g.cells[r*cols+c] = road(Coord{Row: r, Col: c})
		}
	}
	return g
}

// FromRows copies a [][]bool table. Rows shorter than the first row are
// padded with non-road cells; longer rows are truncated.
func FromRows(table [][]bool) *Grid {
	if len(table) == 0 {
		return &Grid{}
	}
	cols := len(table[0])
	return New(len(table), cols, func(c Coord) bool {
		row := table[c.Row]
		return c.Col < len(row) && row[c.Col]
	})
}

// Parse reads an ASCII picture where '#' marks a road cell and any other
// rune marks an empty one. Blank lines are ignored. All lines must have the
// same width.
func Parse(s string) (*Grid, error) {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return &Grid{}, nil
	}
	cols := len([]rune(lines[0]))
	table := make([][]bool, len(lines))
	for r, line := range lines {
		runes := []rune(line)
		if len(runes) != cols {
			return nil, fmt.Errorf("line %d: width %d, want %d", r+1, len(runes), cols)
		}
		table[r] = make([]bool, cols)
		for c, ch := range runes {
			table[r][c] = ch == '#'
		}
	}
	return FromRows(table), nil
}

// MustParse is like [Parse] but panics on malformed input. Intended for
// tests and examples.
func MustParse(s string) *Grid {
	g, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return g
}

func (g *Grid) Rows() int { return g.rows }
func (g *Grid) Cols() int { return g.cols }

// Len returns the total number of cells.
func (g *Grid) Len() int { return len(g.cells) }

// Empty reports whether the grid has zero rows or zero columns.
func (g *Grid) Empty() bool { return g.rows == 0 || g.cols == 0 }

// Inside reports whether c lies within the grid bounds.
func (g *Grid) Inside(c Coord) bool {
	return c.Row >= 0 && c.Row < g.rows && c.Col >= 0 && c.Col < g.cols
}

// Road reports whether c is a road cell. Coordinates outside the grid are
// never road cells.
func (g *Grid) Road(c Coord) bool {
	return g.Inside(c) && g.cells[c.Row*g.cols+c.Col]
}

// Degree returns the number of 4-directional neighbours of c that are road
// cells, regardless of whether c itself is one.
func (g *Grid) Degree(c Coord) int {
	n := 0
	for _, d := range Directions {
		if g.Road(c.Add(d)) {
			n++
		}
	}
	return n
}

// RoadCount returns the number of road cells.
func (g *Grid) RoadCount() int {
	n := 0
	for _, road := range g.cells {
		if road {
			n++
		}
	}
	return n
}

// Index returns the row-major slice index of c. c must be inside the grid.
func (g *Grid) Index(c Coord) int { return c.Row*g.cols + c.Col }

// CoordOf is the inverse of [Grid.Index].
func (g *Grid) CoordOf(i int) Coord { return Coord{Row: i / g.cols, Col: i % g.cols} }

// RoadAt reports whether the cell at row-major index i is a road cell.
func (g *Grid) RoadAt(i int) bool { return g.cells[i] }

// Each calls fn for every road cell in row-major order.
func (g *Grid) Each(fn func(Coord)) {
	for i, road := range g.cells {
		if road {
			fn(g.CoordOf(i))
		}
	}
}

// Lines renders the grid as ASCII rows ('#' road, '.' empty), the format
// accepted by [Parse].
func (g *Grid) Lines() []string {
	lines := make([]string, g.rows)
	var b strings.Builder
	for r := range g.rows {
		b.Reset()
		for c := range g.cols {
			if g.cells[r*g.cols+c] {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		lines[r] = b.String()
	}
	return lines
}

func (g *Grid) String() string {
	return strings.Join(g.Lines(), "\n")
}
