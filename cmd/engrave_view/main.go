package main

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/cbegin/mmlengrave-go"
	"github.com/cbegin/mmlengrave-go/internal/layout"
	"github.com/cbegin/mmlengrave-go/internal/raster"
)

const (
	windowW    = 1100
	windowH    = 520
	minWindowW = 640
	minWindowH = 360

	textScale = 2
	charW     = 7 * textScale
	lineH     = 14 * textScale

	toolbarH = 44
	statusH  = 36
	minZoom  = 0.5
	maxZoom  = 4
)

const defaultMML = "o5 l8 c d e f+ g4 a16 b16 > c4 & c4 < | b4. a8 g2"

var (
	bgColor       = color.RGBA{192, 192, 192, 255}
	panelColor    = color.RGBA{192, 192, 192, 255}
	borderColor   = color.RGBA{128, 128, 128, 255}
	bevelLight    = color.RGBA{255, 255, 255, 255}
	bevelDarker   = color.RGBA{64, 64, 64, 255}
	paperColor    = color.RGBA{250, 248, 240, 255}
	boxColor      = color.RGBA{0, 0, 128, 160}
	hoverColor    = color.RGBA{200, 40, 40, 200}
	limitColor    = color.RGBA{0, 128, 0, 120}
	pressedButton = color.RGBA{160, 160, 160, 255}
)

type rects struct {
	reload image.Rectangle
	boxes  image.Rectangle
	zoomIn image.Rectangle
	zoomOu image.Rectangle
	score  image.Rectangle
	status image.Rectangle
}

type game struct {
	engraver *engrave.Engraver
	source   string
	path     string

	score    *layout.Score
	scoreImg *ebiten.Image
	zoom     float64
	scrollX  float64
	scrollY  float64

	showBoxes bool
	hover     *layout.Event

	status    string
	statusErr bool

	textCache map[string]*ebiten.Image
	viewW     int
	viewH     int
}

func newGame(source, path string) *game {
	g := &game{
		engraver:  engrave.NewEngraver(),
		source:    source,
		path:      path,
		zoom:      1.5,
		textCache: make(map[string]*ebiten.Image, 256),
		viewW:     windowW,
		viewH:     windowH,
	}
	g.rebuild()
	return g
}

func (g *game) rebuild() {
	l, err := g.engraver.LayoutMML(g.source)
	if err != nil {
		g.setError(err.Error())
		return
	}
	g.score = l
	g.rerender()
	g.setStatus(fmt.Sprintf("%d measures, %d events, %d beams", len(l.Measures), len(l.Events), len(l.Beams)))
}

// rerender rasterizes the layout at the current zoom and tints it onto paper.
func (g *game) rerender() {
	if g.score == nil {
		return
	}
	cov := raster.RenderScore(g.score, g.zoom)
	img := image.NewRGBA(cov.Bounds())
	for y := 0; y < cov.Bounds().Dy(); y++ {
		for x := 0; x < cov.Bounds().Dx(); x++ {
			a := float64(cov.AlphaAt(x, y).A) / 255
			mix := func(c uint8) uint8 { return uint8(float64(c) * (1 - a)) }
			img.SetRGBA(x, y, color.RGBA{mix(paperColor.R), mix(paperColor.G), mix(paperColor.B), 255})
		}
	}
	g.scoreImg = ebiten.NewImageFromImage(img)
}

func (g *game) reload() {
	if g.path == "" {
		g.rebuild()
		return
	}
	data, err := os.ReadFile(g.path)
	if err != nil {
		g.setError(err.Error())
		return
	}
	g.source = string(data)
	g.rebuild()
}

func (g *game) setZoom(z float64) {
	z = clamp(z, minZoom, maxZoom)
	if z == g.zoom {
		return
	}
	g.zoom = z
	g.rerender()
}

func (g *game) Update() error {
	r := g.layoutRects()
	mx, my := ebiten.CursorPosition()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		switch {
		case pointInRect(mx, my, r.reload):
			g.reload()
		case pointInRect(mx, my, r.boxes):
			g.showBoxes = !g.showBoxes
		case pointInRect(mx, my, r.zoomIn):
			g.setZoom(g.zoom * 1.25)
		case pointInRect(mx, my, r.zoomOu):
			g.setZoom(g.zoom / 1.25)
		}
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.reload()
	case inpututil.IsKeyJustPressed(ebiten.KeyB):
		g.showBoxes = !g.showBoxes
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual), inpututil.IsKeyJustPressed(ebiten.KeyKPAdd):
		g.setZoom(g.zoom * 1.25)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus), inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract):
		g.setZoom(g.zoom / 1.25)
	}
	const step = 12
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.scrollX += step
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.scrollX -= step
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.scrollY += step
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.scrollY -= step
	}
	wx, wy := ebiten.Wheel()
	g.scrollX -= wx * 24
	g.scrollY -= wy * 24
	g.clampScroll(r.score)

	g.hover = nil
	if g.score != nil && pointInRect(mx, my, r.score) {
		x := (float64(mx-r.score.Min.X) + g.scrollX) / g.zoom
		y := (float64(my-r.score.Min.Y) + g.scrollY) / g.zoom
		for i := range g.score.Events {
			b := g.score.Events[i].BBox
			if x >= b.LLx && x <= b.URx && y >= b.LLy && y <= b.URy {
				g.hover = &g.score.Events[i]
				break
			}
		}
	}
	return nil
}

func (g *game) clampScroll(view image.Rectangle) {
	if g.score == nil {
		return
	}
	maxX := math.Max(0, g.score.Width*g.zoom-float64(view.Dx()))
	maxY := math.Max(0, g.score.Height*g.zoom-float64(view.Dy()))
	g.scrollX = clamp(g.scrollX, 0, maxX)
	g.scrollY = clamp(g.scrollY, 0, maxY)
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)
	r := g.layoutRects()

	g.drawButton(screen, r.reload, "Reload", false)
	g.drawButton(screen, r.boxes, "Boxes", g.showBoxes)
	g.drawButton(screen, r.zoomIn, "+", false)
	g.drawButton(screen, r.zoomOu, "-", false)
	g.drawText(screen, fmt.Sprintf("%.0f%%", g.zoom*100), r.zoomOu.Max.X+12, r.zoomOu.Min.Y+(r.zoomOu.Dy()-lineH)/2)

	ebitenutil.DrawRect(screen, float64(r.score.Min.X), float64(r.score.Min.Y), float64(r.score.Dx()), float64(r.score.Dy()), paperColor)
	view := screen.SubImage(r.score).(*ebiten.Image)
	if g.scoreImg != nil {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(r.score.Min.X)-g.scrollX, float64(r.score.Min.Y)-g.scrollY)
		view.DrawImage(g.scoreImg, op)
	}
	if g.showBoxes && g.score != nil {
		g.drawOverlay(view, r.score)
	}
	if g.hover != nil {
		g.strokeBox(view, r.score, g.hover.BBox.LLx, g.hover.BBox.LLy, g.hover.BBox.URx, g.hover.BBox.URy, hoverColor)
	}
	drawSunkenBorder(screen, r.score)

	ebitenutil.DrawRect(screen, float64(r.status.Min.X), float64(r.status.Min.Y), float64(r.status.Dx()), float64(r.status.Dy()), panelColor)
	drawSunkenBorder(screen, r.status)
	msg := g.status
	if g.hover != nil {
		e := g.hover
		msg = fmt.Sprintf("%s %s %s tick=%d z=%d staff=%s voice=%s", e.ID, e.Kind, e.NoteType, e.StartTick, e.Z, e.StaffID, e.VoiceID)
	} else if g.statusErr {
		msg = "error: " + msg
	}
	g.drawText(screen, shortenEnd(msg, max(4, (r.status.Dx()-16)/charW)), r.status.Min.X+8, r.status.Min.Y+(r.status.Dy()-lineH)/2)
}

// drawOverlay outlines every bbox and marks the reserved ledger margins.
func (g *game) drawOverlay(view *ebiten.Image, area image.Rectangle) {
	for i := range g.score.Events {
		b := g.score.Events[i].BBox
		g.strokeBox(view, area, b.LLx, b.LLy, b.URx, b.URy, boxColor)
	}
	for _, st := range g.score.Staves {
		for _, y := range []float64{st.LimitTop, st.LimitBottom} {
			if math.Abs(y) == math.MaxFloat64 {
				continue
			}
			sx, sy := g.toScreen(area, 0, y)
			ebitenutil.DrawLine(view, float64(area.Min.X), sy, sx+g.score.Width*g.zoom, sy, limitColor)
		}
	}
}

func (g *game) toScreen(area image.Rectangle, x, y float64) (float64, float64) {
	return float64(area.Min.X) + x*g.zoom - g.scrollX, float64(area.Min.Y) + y*g.zoom - g.scrollY
}

func (g *game) strokeBox(dst *ebiten.Image, area image.Rectangle, x0, y0, x1, y1 float64, clr color.Color) {
	ax, ay := g.toScreen(area, x0, y0)
	bx, by := g.toScreen(area, x1, y1)
	w, h := math.Max(1, bx-ax), math.Max(1, by-ay)
	ebitenutil.DrawRect(dst, ax, ay, w, 1, clr)
	ebitenutil.DrawRect(dst, ax, ay+h-1, w, 1, clr)
	ebitenutil.DrawRect(dst, ax, ay, 1, h, clr)
	ebitenutil.DrawRect(dst, ax+w-1, ay, 1, h, clr)
}

func (g *game) Layout(outsideW, outsideH int) (int, int) {
	if outsideW < minWindowW {
		outsideW = minWindowW
	}
	if outsideH < minWindowH {
		outsideH = minWindowH
	}
	g.viewW = outsideW
	g.viewH = outsideH
	return outsideW, outsideH
}

func (g *game) layoutRects() rects {
	const pad = 8
	bw := 110
	x := pad
	btn := func(w int) image.Rectangle {
		r := image.Rect(x, pad, x+w, toolbarH-4)
		x += w + pad
		return r
	}
	var r rects
	r.reload = btn(bw)
	r.boxes = btn(bw)
	r.zoomIn = btn(44)
	r.zoomOu = btn(44)
	r.status = image.Rect(pad, g.viewH-statusH-pad, g.viewW-pad, g.viewH-pad)
	r.score = image.Rect(pad, toolbarH+pad, g.viewW-pad, r.status.Min.Y-pad)
	return r
}

func (g *game) setError(msg string) {
	g.status = msg
	g.statusErr = true
}

func (g *game) setStatus(msg string) {
	g.status = msg
	g.statusErr = false
}

func (g *game) drawButton(screen *ebiten.Image, rect image.Rectangle, label string, pressed bool) {
	fill := panelColor
	if pressed {
		fill = pressedButton
	}
	ebitenutil.DrawRect(screen, float64(rect.Min.X), float64(rect.Min.Y), float64(rect.Dx()), float64(rect.Dy()), fill)
	if pressed {
		drawSunkenBorder(screen, rect)
	} else {
		drawBorder(screen, rect)
	}
	labelW := len([]rune(label)) * charW
	g.drawText(screen, label, rect.Min.X+(rect.Dx()-labelW)/2, rect.Min.Y+(rect.Dy()-lineH)/2)
}

// drawBorder draws a raised bevel: highlight top/left, shadow bottom/right.
func drawBorder(screen *ebiten.Image, rect image.Rectangle) {
	x, y := float64(rect.Min.X), float64(rect.Min.Y)
	w, h := float64(rect.Dx()), float64(rect.Dy())
	ebitenutil.DrawRect(screen, x, y, w-1, 1, bevelLight)
	ebitenutil.DrawRect(screen, x, y+1, 1, h-2, bevelLight)
	ebitenutil.DrawRect(screen, x, y+h-1, w, 1, bevelDarker)
	ebitenutil.DrawRect(screen, x+w-1, y, 1, h, bevelDarker)
	ebitenutil.DrawRect(screen, x+1, y+h-2, w-3, 1, borderColor)
	ebitenutil.DrawRect(screen, x+w-2, y+1, 1, h-3, borderColor)
}

func drawSunkenBorder(screen *ebiten.Image, rect image.Rectangle) {
	x, y := float64(rect.Min.X), float64(rect.Min.Y)
	w, h := float64(rect.Dx()), float64(rect.Dy())
	ebitenutil.DrawRect(screen, x, y, w-1, 1, borderColor)
	ebitenutil.DrawRect(screen, x, y+1, 1, h-2, borderColor)
	ebitenutil.DrawRect(screen, x, y+h-1, w, 1, bevelLight)
	ebitenutil.DrawRect(screen, x+w-1, y, 1, h, bevelLight)
	ebitenutil.DrawRect(screen, x+1, y+1, w-3, 1, bevelDarker)
	ebitenutil.DrawRect(screen, x+1, y+2, 1, h-4, bevelDarker)
}

func (g *game) drawText(screen *ebiten.Image, msg string, x int, y int) {
	if msg == "" {
		return
	}
	img := g.textCache[msg]
	if img == nil {
		w := max(1, len([]rune(msg))*7)
		img = ebiten.NewImage(w, 14)
		ebitenutil.DebugPrintAt(img, msg, 0, 0)
		if len(g.textCache) > 1000 {
			g.textCache = make(map[string]*ebiten.Image, 256)
		}
		g.textCache[msg] = img
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(textScale, textScale)
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.Scale(0, 0, 0, 1)
	screen.DrawImage(img, op)
}

func shortenEnd(s string, maxChars int) string {
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	if maxChars <= 3 {
		return string(r[:max(0, maxChars)])
	}
	return string(r[:maxChars-3]) + "..."
}

func clamp(v, minV, maxV float64) float64 {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return x >= rect.Min.X && x < rect.Max.X && y >= rect.Min.Y && y < rect.Max.Y
}

func main() {
	source, path := defaultMML, ""
	if len(os.Args) > 1 {
		p, err := filepath.Abs(os.Args[1])
		if err != nil {
			log.Fatalf("resolve %q: %v", os.Args[1], err)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			log.Fatalf("read %q: %v", p, err)
		}
		source, path = string(data), p
	}

	g := newGame(source, path)
	ebiten.SetWindowSize(windowW, windowH)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(minWindowW, minWindowH, -1, -1)
	ebiten.SetWindowTitle("mmlengrave viewer")
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
