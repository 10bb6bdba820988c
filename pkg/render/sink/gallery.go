package sink

import "github.com/matzehuels/roadreveal/pkg/artwork"

// Gallery scene geometry, in scene pixels.
const (
	GalleryWidth  = 1920
	GalleryHeight = 1080
)

type sceneRect struct {
	artwork.Rect
	color string
}

// galleryScene is the wall, floor and picture frame drawn behind the
// artwork.
var galleryScene = []sceneRect{
	{artwork.Rect{X: 0, Y: 2, W: GalleryWidth, H: 910}, "#F5F4F0"},
	{artwork.Rect{X: 0, Y: 868, W: GalleryWidth, H: 8}, "#6C4D38"},
	{artwork.Rect{X: 0, Y: 875, W: GalleryWidth, H: 8}, "#A88974"},
	{artwork.Rect{X: 0, Y: 883, W: GalleryWidth, H: 12}, "#DBBDA5"},
	{artwork.Rect{X: 0, Y: 895, W: GalleryWidth, H: 20}, "#CEB1A1"},
	{artwork.Rect{X: 0, Y: 915, W: GalleryWidth, H: 30}, "#DDC3AC"},
	{artwork.Rect{X: 630, Y: 132, W: 670, H: 677}, "#A88974"},
	{artwork.Rect{X: 620, Y: 120, W: 666, H: 664}, "#E1E0DC"},
	{artwork.Rect{X: 658, Y: 153, W: 606, H: 622}, "#BFA89A"},
	{artwork.Rect{X: 658, Y: 153, W: 604, H: 612}, "#A88974"},
}

// galleryCanvas is where the artwork hangs inside the frame.
var galleryCanvas = artwork.Rect{X: 656, Y: 152, W: 600, H: 600}
