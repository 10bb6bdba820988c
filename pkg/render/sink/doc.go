// Package sink writes animation frames as SVG, PNG or JSON.
//
// # Frames
//
// A [Frame] is everything needed to draw one tick of the reveal: the static
// [artwork.Artwork], the path as payload ids, the reveal count from the
// cursor and the current loudness (which sizes the decorative panels).
//
// Drawing order is background, panels, the full base layer, then the first
// Reveal blocks of the revealed layer in path order.
//
// # Formats
//
//	svg := sink.RenderSVG(frame, sink.WithStyle(handdrawn.New(seed)))
//	png, err := sink.RenderPNG(frame, sink.WithScale(2))
//	data, err := sink.RenderJSON(frame)
//
// PNG frames are rasterised in-process with github.com/fogleman/gg, so no
// external converter is needed. [WithGallery] places the artwork in a framed
// gallery scene instead of drawing it edge to edge.
package sink
