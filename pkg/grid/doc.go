// Package grid provides the boolean road grid that the rest of roadreveal
// operates on.
//
// # Overview
//
// A [Grid] is a rectangular table of cells, each either a road cell or not.
// It is produced once per artwork (usually by [Sample] from a street map
// image) and never modified afterwards; every consumer only reads it.
//
// Cells are addressed by [Coord] values (row, column). Internally the grid is
// stored row-major in a flat slice, and [Grid.Index] / [Grid.CoordOf] convert
// between the two addressing schemes so that search code can keep per-cell
// state in plain slices.
//
// # Road Degree
//
// The road-degree of a cell is the number of its four direct neighbours
// (right, down, left, up) that are road cells. Corridor endpoints have
// degree 1; straight corridor cells have degree 2; junctions have 3 or 4.
//
// # Reveal Index
//
// An [Index] maps coordinates to opaque [PayloadID] values owned by a
// renderer (in roadreveal, the position of the coloured block in
// artwork.Artwork.Revealed). The grid itself never looks at payloads.
//
// # Sampling
//
// [Sample] thresholds a raster image on a fixed-stride grid:
//
//	img, _, err := grid.Decode(f)
//	if err != nil {
//	    return err
//	}
//	g, idx := grid.Sample(img, grid.SampleOptions{Spacing: 25, Threshold: 240})
//
// A sampled pixel is a road cell if all three colour channels are strictly
// brighter than the threshold. Payload ids are assigned to road cells in
// row-major order.
package grid
