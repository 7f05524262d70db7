package layout

import (
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

func box(x0, y0, x1, y1 float64) rect.Rect {
	return rect.Rect{
		LLx: math.Min(x0, x1), LLy: math.Min(y0, y1),
		URx: math.Max(x0, x1), URy: math.Max(y0, y1),
	}
}

func union(a, b rect.Rect) rect.Rect {
	return rect.Rect{
		LLx: math.Min(a.LLx, b.LLx), LLy: math.Min(a.LLy, b.LLy),
		URx: math.Max(a.URx, b.URx), URy: math.Max(a.URy, b.URy),
	}
}

func translate(r rect.Rect, dx, dy float64) rect.Rect {
	return rect.Rect{LLx: r.LLx + dx, LLy: r.LLy + dy, URx: r.URx + dx, URy: r.URy + dy}
}

func contains(outer, inner rect.Rect) bool {
	const eps = 1e-9
	return inner.LLx >= outer.LLx-eps && inner.LLy >= outer.LLy-eps &&
		inner.URx <= outer.URx+eps && inner.URy <= outer.URy+eps
}

// overlapArea is the area shared by a and b; touching edges count as zero.
func overlapArea(a, b rect.Rect) float64 {
	w := math.Min(a.URx, b.URx) - math.Max(a.LLx, b.LLx)
	h := math.Min(a.URy, b.URy) - math.Max(a.LLy, b.LLy)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

func overlapsY(a, b rect.Rect) bool {
	return math.Min(a.URy, b.URy) > math.Max(a.LLy, b.LLy)
}

func overlapsX(a, b rect.Rect) bool {
	return math.Min(a.URx, b.URx) > math.Max(a.LLx, b.LLx)
}

// bounds rebuilds the bounding box from every drawn part of the event.
// Ties are excluded.
func (e *Event) bounds() rect.Rect {
	b := e.Notehead
	if s := e.Stem; s != nil {
		b = union(b, box(s.X, s.Y1, s.X, s.Y2))
	}
	if e.Flag != nil {
		b = union(b, *e.Flag)
	}
	if a := e.Accidental; a != nil {
		b = union(b, a.Box)
	}
	for _, l := range e.Ledgers {
		b = union(b, box(l.X1, l.Y, l.X2, l.Y))
	}
	for _, c := range e.DotCenters {
		r := e.DotRadius
		b = union(b, box(c.X-r, c.Y-r, c.X+r, c.Y+r))
	}
	return b
}

// shift moves every drawn part of the event.
func (e *Event) shift(dx, dy float64) {
	e.X += dx
	e.Y += dy
	e.Notehead = translate(e.Notehead, dx, dy)
	if s := e.Stem; s != nil {
		s.X += dx
		s.Y1 += dy
		s.Y2 += dy
	}
	if e.Flag != nil {
		f := translate(*e.Flag, dx, dy)
		e.Flag = &f
	}
	if a := e.Accidental; a != nil {
		a.Box = translate(a.Box, dx, dy)
	}
	for i := range e.Ledgers {
		e.Ledgers[i].X1 += dx
		e.Ledgers[i].X2 += dx
		e.Ledgers[i].Y += dy
	}
	d := vec.Vec2{X: dx, Y: dy}
	for i := range e.DotCenters {
		e.DotCenters[i] = e.DotCenters[i].Add(d)
	}
	if t := e.Tie; t != nil {
		t.Start, t.C1, t.C2, t.End = t.Start.Add(d), t.C1.Add(d), t.C2.Add(d), t.End.Add(d)
	}
	e.BBox = translate(e.BBox, dx, dy)
}

func isEven(z int) bool { return z%2 == 0 }

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
