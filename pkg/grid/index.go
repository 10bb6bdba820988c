package grid

// PayloadID is an opaque handle associated with a grid cell by an external
// renderer.
type PayloadID int

const noPayload PayloadID = -1

// Index maps coordinates to payload ids. The zero value is an empty index
// that reports every lookup as missing.
type Index struct {
	rows, cols int
	ids        []PayloadID
	n          int
}

// NewIndex creates an empty index for a rows × cols grid.
func NewIndex(rows, cols int) *Index {
	rows, cols = max(rows, 0), max(cols, 0)
	ids := make([]PayloadID, rows*cols)
	for i := range ids {
		ids[i] = noPayload
	}
	return &Index{rows: rows, cols: cols, ids: ids}
}

// IndexRoads assigns ids 0, 1, 2, … to the road cells of g in row-major order.
func IndexRoads(g *Grid) *Index {
	idx := NewIndex(g.Rows(), g.Cols())
	next := PayloadID(0)
	g.Each(func(c Coord) {
		idx.Set(c, next)
		next++
	})
	return idx
}

func (x *Index) inside(c Coord) bool {
	return c.Row >= 0 && c.Row < x.rows && c.Col >= 0 && c.Col < x.cols
}

// Set associates id with c. Negative ids clear the entry. Coordinates outside
// the index bounds are ignored.
func (x *Index) Set(c Coord, id PayloadID) {
	if !x.inside(c) {
		return
	}
	i := c.Row*x.cols + c.Col
	had := x.ids[i] != noPayload
	if id < 0 {
		id = noPayload
	}
	x.ids[i] = id
	switch has := id != noPayload; {
	case has && !had:
		x.n++
	case !has && had:
		x.n--
	}
}

// Lookup returns the payload id stored for c.
func (x *Index) Lookup(c Coord) (PayloadID, bool) {
	if x == nil || !x.inside(c) {
		return 0, false
	}
	id := x.ids[c.Row*x.cols+c.Col]
	return id, id != noPayload
}

// Len returns the number of coordinates with a payload.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return x.n
}
