// Package artwork builds the two-layer block model drawn by the renderers.
//
// Every road cell of a [grid.Grid] becomes two blocks of the same geometry:
// a black block in the always-visible base layer, and a coloured block in the
// revealed layer. Revealed blocks are created in row-major order, so the
// payload id that [grid.Sample] assigns to a road cell is the index of its
// block in [Artwork.Revealed].
//
// Colours for the revealed layer are drawn from a weighted palette with a
// seeded generator, avoiding the colour of the block above and to the left
// unless that colour is yellow. On top of the block layers sits a fixed set
// of decorative [Panel]s whose size reacts to loudness.
package artwork
