// Package pdfout writes a layout as a single-page vector PDF.
package pdfout

import (
	"fmt"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/document"
	"seehuhn.de/go/pdf/graphics/color"

	"github.com/cbegin/mmlengrave-go/internal/layout"
	"github.com/cbegin/mmlengrave-go/internal/outline"
)

// Write creates fileName holding the score, one PDF unit per pixel.
func Write(fileName string, s *layout.Score) error {
	if s == nil {
		return fmt.Errorf("nil layout")
	}
	paper := &pdf.Rectangle{URx: s.Width, URy: s.Height}
	page, err := document.CreateSinglePage(fileName, paper, pdf.V1_7, nil)
	if err != nil {
		return fmt.Errorf("create pdf: %w", err)
	}

	// Layout coordinates grow downward.
	page.Transform(matrix.Matrix{1, 0, 0, -1, 0, s.Height})
	page.SetFillColor(color.DeviceGray(0))
	for _, p := range outline.Paths(s, outline.DefaultPen()) {
		for cmd, pts := range p.Iter().ToCubic() {
			switch cmd {
			case path.CmdMoveTo:
				page.MoveTo(pts[0].X, pts[0].Y)
			case path.CmdLineTo:
				page.LineTo(pts[0].X, pts[0].Y)
			case path.CmdCubeTo:
				page.CurveTo(pts[0].X, pts[0].Y, pts[1].X, pts[1].Y, pts[2].X, pts[2].Y)
			case path.CmdClose:
				page.ClosePath()
			}
		}
		page.Fill()
	}
	if err := page.Close(); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
