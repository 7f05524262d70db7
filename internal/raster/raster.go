// Package raster renders layout outlines to an alpha coverage image.
package raster

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"
	"seehuhn.de/go/geom/path"

	"github.com/cbegin/mmlengrave-go/internal/layout"
	"github.com/cbegin/mmlengrave-go/internal/outline"
)

// Render fills paths into a width x height image after scaling every
// coordinate by scale. Coverage 255 is ink.
func Render(paths []*path.Data, width, height int, scale float64) *image.Alpha {
	width, height = max(width, 1), max(height, 1)
	dst := image.NewAlpha(image.Rect(0, 0, width, height))
	r := vector.NewRasterizer(width, height)
	for _, p := range paths {
		addPath(r, p, float32(scale))
	}
	r.Draw(dst, dst.Bounds(), image.NewUniform(color.Alpha{255}), image.Point{})
	return dst
}

// RenderScore draws the whole score at the given scale.
func RenderScore(s *layout.Score, scale float64) *image.Alpha {
	if scale <= 0 {
		scale = 1
	}
	w := int(math.Ceil(s.Width * scale))
	h := int(math.Ceil(s.Height * scale))
	return Render(outline.Paths(s, outline.DefaultPen()), w, h, scale)
}

func addPath(r *vector.Rasterizer, p *path.Data, k float32) {
	open := false
	for cmd, pts := range p.Iter().ToCubic() {
		switch cmd {
		case path.CmdMoveTo:
			r.MoveTo(float32(pts[0].X)*k, float32(pts[0].Y)*k)
			open = true
		case path.CmdLineTo:
			r.LineTo(float32(pts[0].X)*k, float32(pts[0].Y)*k)
		case path.CmdCubeTo:
			r.CubeTo(
				float32(pts[0].X)*k, float32(pts[0].Y)*k,
				float32(pts[1].X)*k, float32(pts[1].Y)*k,
				float32(pts[2].X)*k, float32(pts[2].Y)*k,
			)
		case path.CmdClose:
			r.ClosePath()
			open = false
		}
	}
	if open {
		r.ClosePath()
	}
}
