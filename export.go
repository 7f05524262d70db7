package engrave

import (
	"encoding/json"
	"fmt"
	"image/png"
	"io"

	"github.com/cbegin/mmlengrave-go/internal/pdfout"
	"github.com/cbegin/mmlengrave-go/internal/raster"
)

// EncodePNG writes a grayscale preview, black ink on white, at scale
// pixels per layout unit.
func EncodePNG(w io.Writer, l *Layout, scale float64) error {
	if l == nil {
		return fmt.Errorf("nil layout")
	}
	cov := raster.RenderScore(l, scale)
	img := invert(cov)
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// WritePDF writes a single-page vector PDF to fileName.
func WritePDF(fileName string, l *Layout) error {
	return pdfout.Write(fileName, l)
}

// EncodeJSON writes the layout geometry as indented JSON.
func EncodeJSON(w io.Writer, l *Layout) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
