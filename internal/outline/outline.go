// Package outline converts layout geometry into filled paths. Every shape
// winds clockwise on screen (y down); holes wind the other way, so a nonzero
// fill of all paths together draws the page.
package outline

import (
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"github.com/cbegin/mmlengrave-go/internal/layout"
	"github.com/cbegin/mmlengrave-go/internal/notation"
	"github.com/cbegin/mmlengrave-go/internal/score"
)

// Pen sets stroke widths in pixels.
type Pen struct {
	StaffLine float64
	BarLine   float64
	Stem      float64
	Ledger    float64
	Tie       float64
}

func DefaultPen() Pen {
	return Pen{StaffLine: 1, BarLine: 1.2, Stem: 1.2, Ledger: 1.2, Tie: 1.4}
}

// Paths returns one closed path per drawn element, staves first.
func Paths(s *layout.Score, pen Pen) []*path.Data {
	var out []*path.Data
	if s == nil {
		return out
	}
	left, right := 0.0, s.Width
	if n := len(s.Measures); n > 0 {
		left, right = s.Measures[0].StartX, s.Measures[n-1].EndX()
	}
	for i := range s.Staves {
		st := &s.Staves[i]
		lines := st.StaffLines()
		for _, y := range lines {
			out = append(out, hline(left, right, y, pen.StaffLine))
		}
		if len(lines) == 0 {
			continue
		}
		top, bottom := lines[0], lines[len(lines)-1]
		out = append(out, vline(left, top, bottom, pen.BarLine))
		for _, m := range s.Measures {
			out = append(out, vline(m.EndX(), top, bottom, pen.BarLine))
		}
	}
	for i := range s.Events {
		out = appendEvent(out, &s.Events[i], pen)
	}
	for _, b := range s.Beams {
		out = append(out, beam(b.Start, b.End, b.Thickness, b.Direction))
		for _, h := range b.Hooks {
			out = append(out, beam(h.Start, h.End, b.Thickness, b.Direction))
		}
	}
	return out
}

func appendEvent(out []*path.Data, e *layout.Event, pen Pen) []*path.Data {
	if e.IsRest() {
		return append(out, restShape(e))
	}
	out = append(out, notehead(e.Notehead, hollow(e.NoteType)))
	for _, l := range e.Ledgers {
		out = append(out, hline(l.X1, l.X2, l.Y, pen.Ledger))
	}
	if s := e.Stem; s != nil {
		out = append(out, vline(s.X, s.Y1, s.Y2, pen.Stem))
	}
	if f := e.Flag; f != nil && e.Stem != nil {
		out = append(out, flag(*f, e.Stem.Direction))
	}
	if a := e.Accidental; a != nil {
		out = append(out, accidental(a.Glyph, a.Box, pen.Stem)...)
	}
	for _, c := range e.DotCenters {
		out = append(out, ellipse(c, e.DotRadius, e.DotRadius, true))
	}
	if t := e.Tie; t != nil {
		out = append(out, tie(t, pen.Tie))
	}
	return out
}

func hollow(t notation.Type) bool {
	switch t {
	case notation.Half, notation.Whole, notation.Breve, notation.Long:
		return true
	}
	return false
}

func rectPath(r rect.Rect) *path.Data {
	return polygon(
		vec.Vec2{X: r.LLx, Y: r.LLy},
		vec.Vec2{X: r.URx, Y: r.LLy},
		vec.Vec2{X: r.URx, Y: r.URy},
		vec.Vec2{X: r.LLx, Y: r.URy},
	)
}

func hline(x1, x2, y, w float64) *path.Data {
	return rectPath(rect.Rect{LLx: min(x1, x2), LLy: y - w/2, URx: max(x1, x2), URy: y + w/2})
}

func vline(x, y1, y2, w float64) *path.Data {
	return rectPath(rect.Rect{LLx: x - w/2, LLy: min(y1, y2), URx: x + w/2, URy: max(y1, y2)})
}

// polygon closes pts into a clockwise path.
func polygon(pts ...vec.Vec2) *path.Data {
	if signedArea(pts) < 0 {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	p := (&path.Data{}).MoveTo(pts[0])
	for _, v := range pts[1:] {
		p = p.LineTo(v)
	}
	return p.Close()
}

// signedArea is positive for clockwise polygons in y-down space.
func signedArea(pts []vec.Vec2) float64 {
	a := 0.0
	for i := range pts {
		p, q := pts[i], pts[(i+1)%len(pts)]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}

// kappa places cubic control points for a quarter ellipse.
const kappa = 0.5522847498

func addEllipse(p *path.Data, c vec.Vec2, rx, ry float64, clockwise bool) *path.Data {
	kx, ky := kappa*rx, kappa*ry
	pt := func(x, y float64) vec.Vec2 { return vec.Vec2{X: c.X + x, Y: c.Y + y} }
	p = p.MoveTo(pt(0, -ry))
	if clockwise {
		p = p.CubeTo(pt(kx, -ry), pt(rx, -ky), pt(rx, 0)).
			CubeTo(pt(rx, ky), pt(kx, ry), pt(0, ry)).
			CubeTo(pt(-kx, ry), pt(-rx, ky), pt(-rx, 0)).
			CubeTo(pt(-rx, -ky), pt(-kx, -ry), pt(0, -ry))
	} else {
		p = p.CubeTo(pt(-kx, -ry), pt(-rx, -ky), pt(-rx, 0)).
			CubeTo(pt(-rx, ky), pt(-kx, ry), pt(0, ry)).
			CubeTo(pt(kx, ry), pt(rx, ky), pt(rx, 0)).
			CubeTo(pt(rx, -ky), pt(kx, -ry), pt(0, -ry))
	}
	return p.Close()
}

func ellipse(c vec.Vec2, rx, ry float64, clockwise bool) *path.Data {
	return addEllipse(&path.Data{}, c, rx, ry, clockwise)
}

func center(r rect.Rect) vec.Vec2 {
	return vec.Vec2{X: (r.LLx + r.URx) / 2, Y: (r.LLy + r.URy) / 2}
}

// notehead fills the head box with an ellipse; open values get a hole.
func notehead(r rect.Rect, open bool) *path.Data {
	c := center(r)
	rx, ry := (r.URx-r.LLx)/2, (r.URy-r.LLy)/2
	p := ellipse(c, rx, ry, true)
	if open {
		p = addEllipse(p, c, rx*0.6, ry*0.5, false)
	}
	return p
}

func restShape(e *layout.Event) *path.Data {
	r := e.Notehead
	switch e.NoteType {
	case notation.Whole, notation.Half, notation.Breve, notation.Long:
		return rectPath(r)
	}
	// A slanted bar reads as a rest at preview sizes.
	w := (r.URx - r.LLx) / 3
	return polygon(
		vec.Vec2{X: r.LLx + w, Y: r.LLy},
		vec.Vec2{X: r.URx, Y: r.LLy},
		vec.Vec2{X: r.URx - w, Y: r.URy},
		vec.Vec2{X: r.LLx, Y: r.URy},
	)
}

func flag(r rect.Rect, dir layout.Direction) *path.Data {
	if dir == layout.StemDown {
		return polygon(
			vec.Vec2{X: r.LLx, Y: r.URy},
			vec.Vec2{X: r.URx, Y: r.LLy},
			vec.Vec2{X: r.LLx, Y: r.LLy + (r.URy-r.LLy)/3},
		)
	}
	return polygon(
		vec.Vec2{X: r.LLx, Y: r.LLy},
		vec.Vec2{X: r.URx, Y: r.URy},
		vec.Vec2{X: r.LLx, Y: r.URy - (r.URy-r.LLy)/3},
	)
}

// beam is a parallelogram hanging from the line toward the noteheads.
func beam(a, b vec.Vec2, thickness float64, dir layout.Direction) *path.Data {
	d := vec.Vec2{Y: thickness}
	if dir == layout.StemDown {
		d = vec.Vec2{Y: -thickness}
	}
	return polygon(a, b, b.Add(d), a.Add(d))
}

// tie fills the crescent between the curve and a copy pushed along its
// bow by the pen width, thinning at the ends.
func tie(t *layout.Tie, width float64) *path.Data {
	d := vec.Vec2{Y: width}
	if t.Above {
		d = vec.Vec2{Y: -width}
	}
	c1, c2 := t.C1.Add(d), t.C2.Add(d)
	pts := []vec.Vec2{t.Start, t.C1, t.C2, t.End, c2, c1}
	if signedArea(pts) >= 0 {
		return (&path.Data{}).MoveTo(t.Start).CubeTo(t.C1, t.C2, t.End).CubeTo(c2, c1, t.Start).Close()
	}
	return (&path.Data{}).MoveTo(t.Start).CubeTo(c1, c2, t.End).CubeTo(t.C2, t.C1, t.Start).Close()
}

// accidental approximates each glyph from bars inside its box.
func accidental(glyph string, r rect.Rect, w float64) []*path.Data {
	x0, x1 := r.LLx, r.URx
	y0, y1 := r.LLy, r.URy
	wd, ht := x1-x0, y1-y0
	switch glyph {
	case score.AccidentalSharp:
		return []*path.Data{
			vline(x0+wd/3, y0, y1, w),
			vline(x0+2*wd/3, y0, y1, w),
			hline(x0, x1, y0+ht/3, 2*w),
			hline(x0, x1, y0+2*ht/3, 2*w),
		}
	case score.AccidentalNatural:
		return []*path.Data{
			vline(x0+wd/4, y0, y0+3*ht/4, w),
			vline(x1-wd/4, y0+ht/4, y1, w),
			hline(x0+wd/4, x1-wd/4, y0+ht/3, 2*w),
			hline(x0+wd/4, x1-wd/4, y0+2*ht/3, 2*w),
		}
	case score.AccidentalFlat:
		return flatShapes(x0, x1, y0, y1, w)
	case score.AccidentalDoubleFlat:
		mid := x0 + wd/2
		return append(flatShapes(x0, mid, y0, y1, w), flatShapes(mid, x1, y0, y1, w)...)
	case score.AccidentalDoubleSharp:
		return []*path.Data{
			polygon(vec.Vec2{X: x0, Y: y0 + w}, vec.Vec2{X: x0 + w, Y: y0}, vec.Vec2{X: x1, Y: y1 - w}, vec.Vec2{X: x1 - w, Y: y1}),
			polygon(vec.Vec2{X: x1 - w, Y: y0}, vec.Vec2{X: x1, Y: y0 + w}, vec.Vec2{X: x0 + w, Y: y1}, vec.Vec2{X: x0, Y: y1 - w}),
		}
	}
	return []*path.Data{rectPath(r)}
}

func flatShapes(x0, x1, y0, y1, w float64) []*path.Data {
	ht := y1 - y0
	bowl := vec.Vec2{X: (x0 + x1) / 2, Y: y1 - ht/5}
	rx, ry := (x1-x0)/2, ht/5
	p := ellipse(bowl, rx, ry, true)
	p = addEllipse(p, bowl, rx*0.5, ry*0.5, false)
	return []*path.Data{vline(x0+w/2, y0, y1, w), p}
}

// Bounds is the box of every coordinate in p.
func Bounds(p *path.Data) rect.Rect {
	var b rect.Rect
	for i, v := range p.Coords {
		if i == 0 {
			b = rect.Rect{LLx: v.X, LLy: v.Y, URx: v.X, URy: v.Y}
			continue
		}
		b.LLx, b.LLy = min(b.LLx, v.X), min(b.LLy, v.Y)
		b.URx, b.URy = max(b.URx, v.X), max(b.URy, v.Y)
	}
	return b
}
