package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/roadreveal/pkg/grid"
)

// ReadGrid decodes a JSON grid from r.
//
// ReadGrid returns an error if the JSON is malformed, if the number of cell
// rows differs from "rows", or if a row's width differs from "cols". Any
// character other than '#' marks an empty cell.
func ReadGrid(r io.Reader) (*grid.Grid, error) {
	var data gridFile
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if data.Rows < 0 || data.Cols < 0 {
		return nil, fmt.Errorf("negative dimensions %dx%d", data.Rows, data.Cols)
	}
	if len(data.Cells) != data.Rows {
		return nil, fmt.Errorf("got %d cell rows, want %d", len(data.Cells), data.Rows)
	}
	table := make([][]bool, data.Rows)
	for r, line := range data.Cells {
		runes := []rune(line)
		if len(runes) != data.Cols {
			return nil, fmt.Errorf("row %d: width %d, want %d", r, len(runes), data.Cols)
		}
		table[r] = make([]bool, data.Cols)
		for c, ch := range runes {
			table[r][c] = ch == '#'
		}
	}
	if data.Rows == 0 || data.Cols == 0 {
		return grid.New(data.Rows, data.Cols, nil), nil
	}
	return grid.FromRows(table), nil
}

// ReadGridText reads the plain text format: one line per row, '#' for road.
func ReadGridText(r io.Reader) (*grid.Grid, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return grid.Parse(string(data))
}

// ReadPath decodes a JSON path from r. It returns the grid dimensions the
// path was recorded against together with the cells.
func ReadPath(r io.Reader) (rows, cols int, p []grid.Coord, err error) {
	var data pathFile
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return 0, 0, nil, fmt.Errorf("decode: %w", err)
	}
	p = make([]grid.Coord, len(data.Coords))
	for i, rc := range data.Coords {
		if rc[0] < 0 || rc[0] >= data.Rows || rc[1] < 0 || rc[1] >= data.Cols {
			return 0, 0, nil, fmt.Errorf("coord %d: (%d,%d) outside %dx%d grid", i, rc[0], rc[1], data.Rows, data.Cols)
		}
		p[i] = grid.Coord{Row: rc[0], Col: rc[1]}
	}
	return data.Rows, data.Cols, p, nil
}

// ImportGrid reads a grid file, as text if path ends in .txt and as JSON
// otherwise.
func ImportGrid(path string) (*grid.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if isText(path) {
		return ReadGridText(f)
	}
	return ReadGrid(f)
}

// ImportPath reads a path file.
func ImportPath(path string) (rows, cols int, p []grid.Coord, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadPath(f)
}

// IsGridFile reports whether path names a grid file rather than an image.
func IsGridFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".json" || ext == ".txt"
}

func isText(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".txt")
}
