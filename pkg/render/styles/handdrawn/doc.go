// Package handdrawn draws revealed blocks with a wobbling, felt-pen outline.
//
// Each revealed block is a flat square overdrawn by two noise-displaced
// outlines of decreasing weight and opacity, followed by a faint straight
// outline. Displacement comes from seeded 2D value noise sampled along the
// block edges, so the same seed always draws the same wobble. Base blocks and
// panels are drawn as flat felt rectangles.
package handdrawn
