// Package io provides JSON and text import and export for road grids and
// paths.
//
// # Grid Format
//
// A grid is stored as its row strings, '#' for road cells and '.' for empty
// ones:
//
//	{
//	  "rows": 3,
//	  "cols": 4,
//	  "cells": [
//	    "###.",
//	    "..#.",
//	    "..##"
//	  ]
//	}
//
// The same rows without the JSON wrapper form the plain text format accepted
// by [ReadGridText]. [ImportGrid] picks the format from the file extension.
//
// # Path Format
//
// A path stores the grid dimensions and the ordered cells as [row, col]
// pairs:
//
//	{
//	  "rows": 3,
//	  "cols": 4,
//	  "coords": [[0, 0], [0, 1], [0, 2], [1, 2], [2, 2], [2, 3]]
//	}
//
// [ReadPath] only checks the shape of the data. Use path.Validate against the
// grid to check that the cells form a valid path.
//
// # Concurrency
//
// All functions are safe for concurrent use; grids are immutable and paths
// are copied on import.
package io
