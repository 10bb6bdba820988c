package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/roadreveal/pkg/grid"
)

type gridFile struct {
	Rows  int      `json:"rows"`
	Cols  int      `json:"cols"`
	Cells []string `json:"cells"`
}

type pathFile struct {
	Rows   int      `json:"rows"`
	Cols   int      `json:"cols"`
	Coords [][2]int `json:"coords"`
}

// WriteGrid encodes g as JSON and writes it to w.
func WriteGrid(g *grid.Grid, w io.Writer) error {
	out := gridFile{Rows: g.Rows(), Cols: g.Cols(), Cells: g.Lines()}
	return encode(w, out)
}

// WriteGridText writes g in the plain text format, one row per line.
func WriteGridText(g *grid.Grid, w io.Writer) error {
	lines := g.Lines()
	if len(lines) == 0 {
		return nil
	}
	if _, err := io.WriteString(w, strings.Join(lines, "\n")+"\n"); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// WritePath encodes a path over a rows × cols grid as JSON.
func WritePath(rows, cols int, p []grid.Coord, w io.Writer) error {
	out := pathFile{Rows: rows, Cols: cols, Coords: make([][2]int, len(p))}
	for i, c := range p {
		out.Coords[i] = [2]int{c.Row, c.Col}
	}
	return encode(w, out)
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportGrid writes g to path, as text if path ends in .txt and as JSON
// otherwise.
func ExportGrid(g *grid.Grid, path string) error {
	return create(path, func(w io.Writer) error {
		if isText(path) {
			return WriteGridText(g, w)
		}
		return WriteGrid(g, w)
	})
}

// ExportPath writes a path to a JSON file.
func ExportPath(rows, cols int, p []grid.Coord, path string) error {
	return create(path, func(w io.Writer) error { return WritePath(rows, cols, p, w) })
}

func create(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
