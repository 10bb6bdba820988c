package artwork

import "math"

const (
	// PanelDesignSize is the side of the square design space panels are laid
	// out in.
	PanelDesignSize = 1600

	// PanelScaleRatio bounds how far a panel grows or shrinks with loudness.
	PanelScaleRatio = 0.2

	// PanelAmpScale is the wobble amplitude factor of panels.
	PanelAmpScale = 6

	// LoudnessCeiling is the loudness at which panels reach full size change.
	LoudnessCeiling = 0.3
)

// Panel is a decorative block in design-space coordinates. Dir is +1 for
// panels that grow with loudness, -1 for panels that shrink and 0 for static
// ones.
type Panel struct {
	Rect
	Color string `json:"color"`
	Dir   int    `json:"dir"`
}

var panels = []Panel{
	{Rect{910, 305, 275, 420}, PanelBlue, 0},
	{Rect{910, 390, 275, 230}, Red, 0},
	{Rect{960, 450, 160, 100}, Yellow, 1},
	{Rect{80, 1160, 160, 140}, Yellow, -1},
	{Rect{230, 960, 150, 130}, PanelBlue, 0},
	{Rect{1450, 1450, 165, 165}, Yellow, 1},
	{Rect{730, 280, 95, 95}, Yellow, -1},
	{Rect{385, 1300, 195, 310}, Red, 0},
	{Rect{450, 1360, 60, 60}, Gray, -1},
	{Rect{1005, 1060, 175, 390}, PanelBlue, 0},
	{Rect{1025, 1295, 125, 100}, Yellow, -1},
	{Rect{150, 455, 225, 120}, PanelBlue, 0},
	{Rect{280, 160, 205, 85}, Red, 0},
	{Rect{1380, 70, 180, 120}, PanelBlue, 0},
	{Rect{1400, 625, 210, 210}, Red, 0},
	{Rect{1270, 865, 130, 190}, Yellow, 1},
	{Rect{610, 945, 215, 215}, Yellow, -1},
	{Rect{385, 740, 220, 90}, Red, 0},
	{Rect{830, 730, 155, 155}, Red, 0},
	{Rect{1470, 700, 80, 60}, Gray, 1},
	{Rect{280, 1000, 50, 50}, Gray, -1},
	{Rect{670, 1020, 80, 80}, Gray, 1},
	{Rect{340, 160, 40, 85}, Gray, -1},
	{Rect{1295, 915, 75, 75}, Gray, 1},
}

// Panels returns a copy of the decorative panel set in drawing order.
func Panels() []Panel {
	return append([]Panel(nil), panels...)
}

// Layout returns the panel rectangle on a canvas of the given width for a
// loudness reading. Loudness is normalised over [0, LoudnessCeiling]; mid
// loudness leaves the panel at its design size.
func (p Panel) Layout(loudness, canvas float64) Rect {
	norm := min(max(loudness/LoudnessCeiling, 0), 1)
	if math.IsNaN(norm) {
		norm = 0
	}
	center := (norm - 0.5) * 2
	factor := 1 + center*PanelScaleRatio*float64(p.Dir)

	w, h := p.W*factor, p.H*factor
	dx, dy := (w-p.W)/2, (h-p.H)/2
	s := PanelDesignSize / canvas
	return Rect{
		X: math.Round((p.X - dx) / s),
		Y: math.Round((p.Y - dy) / s),
		W: math.Round(w / s),
		H: math.Round(h / s),
	}
}
