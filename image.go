package engrave

import "image"

// invert turns coverage into paper: 0 coverage is white.
func invert(a *image.Alpha) *image.Gray {
	g := image.NewGray(a.Bounds())
	for i, v := range a.Pix {
		g.Pix[i] = 255 - v
	}
	return g
}
