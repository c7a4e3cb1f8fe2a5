package core

// RGB is a 24-bit color as carried by every glyph cell.
type RGB struct {
	R, G, B uint8
}

// Gray returns an RGB with all three channels set to v.
func Gray(v uint8) RGB {
	return RGB{R: v, G: v, B: v}
}

// Luma returns the ITU-R 601 brightness of the color in [0, 255].
func (c RGB) Luma() float64 {
	return float64(LumaMilli(c.R, c.G, c.B)) / 1000
}

// LumaMilli returns 0.299R + 0.587G + 0.114B scaled by 1000, computed in
// integers so pure white is exactly 255000.
func LumaMilli(r, g, b uint8) int {
	return 299*int(r) + 587*int(g) + 114*int(b)
}

// Predefined colors.
var (
	Black = RGB{}
	White = RGB{R: 255, G: 255, B: 255}
)
