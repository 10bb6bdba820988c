// Package styles defines how artwork blocks are written as SVG elements.
//
// A [Style] receives one [Block] at a time and appends its SVG to a buffer.
// [Simple] draws flat squares with a translucent outline. The handdrawn
// subpackage adds the wobbling double outline used for the revealed layer.
package styles
