// Package diagram renders architecture and user-flow diagrams for a parsed
// design structure as PNG images. Drawing happens entirely in memory; there
// is no browser or external renderer involved.
package diagram

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/hellenic-development/figma-report/pkg/extract"
)

const (
	archWidth  = 1400
	archHeight = 1000
	flowWidth  = 1200
	flowHeight = 420

	maxFrameBoxes     = 6
	maxComponentBoxes = 5
	maxFlowBoxes      = 8
)

var (
	white   = color.RGBA{255, 255, 255, 255}
	ink     = color.RGBA{45, 55, 72, 255}
	arrowed = color.RGBA{102, 102, 102, 255}

	apiFill  = color.RGBA{252, 228, 236, 255}
	dataFill = color.RGBA{243, 229, 245, 255}
	flowFill = color.RGBA{227, 242, 253, 255}
)

// Architecture renders a system-architecture diagram derived from the actual
// design structure: pages on top, frames and components below them, then an
// API layer and a data layer whose labels scale with the design's complexity.
// Box colors are seeded from the structure fingerprint so distinct designs
// produce visually distinct diagrams.
func Architecture(s *extract.ParsedStructure) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("diagram: nil structure")
	}

	img := image.NewRGBA(image.Rect(0, 0, archWidth, archHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{white}, image.Point{}, draw.Src)

	pageFill := seededFill(s.Fingerprint, 0)
	frameFill := seededFill(s.Fingerprint, 2)
	compFill := seededFill(s.Fingerprint, 4)

	drawCenteredLabel(img, archWidth/2, 40, s.FileName+" - System Architecture", ink)

	frames := s.Frames()

	// Pages row.
	pageCenters := drawRow(img, rowSpec{
		y: 90, h: 60, items: pageNames(s.Pages), fill: pageFill, prefix: "Page: ",
	})

	// Frames row (first 6).
	frameCenters := drawRow(img, rowSpec{
		y: 220, h: 56, items: layerNames(frames, maxFrameBoxes, 18), fill: frameFill,
	})

	// Components row (first 5).
	drawRow(img, rowSpec{
		y: 350, h: 46, items: componentNames(s.Components, maxComponentBoxes), fill: compFill,
	})

	// API layer sized by complexity.
	apiLabel, apiDesc := apiLayer(len(frames), len(s.Components))
	apiBox := box{x: 400, y: 520, w: 600, h: 70}
	drawBox(img, apiBox, apiFill)
	drawCenteredLabel(img, archWidth/2, apiBox.y+26, apiLabel, ink)
	drawCenteredLabel(img, archWidth/2, apiBox.y+48, apiDesc, ink)

	// Data layer sized by text volume.
	dataBox := box{x: 400, y: 680, w: 600, h: 70}
	drawBox(img, dataBox, dataFill)
	drawCenteredLabel(img, archWidth/2, dataBox.y+26, dataLayer(len(s.TextNodes)), ink)

	// Pages feed frames, frames feed the API, the API feeds the data layer.
	for i, pc := range pageCenters {
		if i >= len(frameCenters) {
			break
		}
		drawArrow(img, pc, 150, frameCenters[i], 220, arrowed)
	}
	for _, fc := range frameCenters {
		drawArrow(img, fc, 276, archWidth/2, 520, arrowed)
	}
	drawArrow(img, archWidth/2, 590, archWidth/2, 680, arrowed)

	footer := fmt.Sprintf("Generated from: %d pages, %d frames, %d components (%s)",
		len(s.Pages), len(frames), len(s.Components), s.Fingerprint)
	drawCenteredLabel(img, archWidth/2, archHeight-30, footer, arrowed)

	return encode(img)
}

// Flow renders the user-flow strip: up to 8 frames in document order joined
// by arrows.
func Flow(s *extract.ParsedStructure) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("diagram: nil structure")
	}

	img := image.NewRGBA(image.Rect(0, 0, flowWidth, flowHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{white}, image.Point{}, draw.Src)

	drawCenteredLabel(img, flowWidth/2, 50, "User Flow Based on Design Frames", ink)

	frames := s.Frames()
	if len(frames) > maxFlowBoxes {
		frames = frames[:maxFlowBoxes]
	}
	if len(frames) == 0 {
		drawCenteredLabel(img, flowWidth/2, flowHeight/2, "No frames detected", arrowed)
		return encode(img)
	}

	slot := (flowWidth - 100) / len(frames)
	for i, f := range frames {
		b := box{x: 50 + i*slot, y: flowHeight/2 - 30, w: slot - 24, h: 60}
		drawBox(img, b, flowFill)
		drawCenteredLabel(img, b.x+b.w/2, b.y+b.h/2+4, truncate(f.Name, 14), ink)

		if i > 0 {
			drawArrow(img, b.x-24, flowHeight/2, b.x, flowHeight/2, arrowed)
		}
	}

	return encode(img)
}

type box struct{ x, y, w, h int }

type rowSpec struct {
	y, h   int
	items  []string
	fill   color.RGBA
	prefix string
}

// drawRow distributes the items evenly across the canvas width and returns
// the horizontal center of each drawn box.
func drawRow(img *image.RGBA, spec rowSpec) []int {
	if len(spec.items) == 0 {
		return nil
	}

	slot := (archWidth - 160) / len(spec.items)
	centers := make([]int, 0, len(spec.items))

	for i, item := range spec.items {
		b := box{x: 80 + i*slot, y: spec.y, w: slot - 20, h: spec.h}
		drawBox(img, b, spec.fill)
		drawCenteredLabel(img, b.x+b.w/2, b.y+b.h/2+4, spec.prefix+item, ink)
		centers = append(centers, b.x+b.w/2)
	}

	return centers
}

func pageNames(pages []extract.Page) []string {
	names := make([]string, 0, len(pages))
	for _, p := range pages {
		names = append(names, truncate(p.Name, 18))
	}
	return names
}

func layerNames(layers []extract.LayerDescriptor, limit, width int) []string {
	if len(layers) > limit {
		layers = layers[:limit]
	}
	names := make([]string, 0, len(layers))
	for _, l := range layers {
		names = append(names, truncate(l.Name, width))
	}
	return names
}

func componentNames(comps []extract.ComponentDescriptor, limit int) []string {
	if len(comps) > limit {
		comps = comps[:limit]
	}
	names := make([]string, 0, len(comps))
	for _, c := range comps {
		names = append(names, truncate(c.Name, 16))
	}
	return names
}

func apiLayer(frames, components int) (label, desc string) {
	complexity := frames + components
	switch {
	case complexity > 10:
		return "Microservices API", fmt.Sprintf("%d endpoints", complexity)
	case complexity > 5:
		return "REST API Gateway", fmt.Sprintf("%d services", complexity)
	default:
		return "Simple API", fmt.Sprintf("%d routes", complexity)
	}
}

func dataLayer(textNodes int) string {
	switch {
	case textNodes > 20:
		return "PostgreSQL + Redis (high data volume)"
	case textNodes > 10:
		return "PostgreSQL (moderate data)"
	default:
		return "SQLite (simple data)"
	}
}

// seededFill derives a pastel fill color from a fingerprint offset so each
// distinct design state renders with its own palette.
func seededFill(fingerprint string, offset int) color.RGBA {
	seed := byte(0)
	for i := offset; i < len(fingerprint); i++ {
		seed = seed*31 + fingerprint[i]
	}
	// Keep channels in the pastel range so the ink stays readable.
	return color.RGBA{
		R: 200 + seed%56,
		G: 200 + (seed>>2)%56,
		B: 200 + (seed>>4)%56,
		A: 255,
	}
}

func drawBox(img *image.RGBA, b box, fill color.RGBA) {
	rect := image.Rect(b.x, b.y, b.x+b.w, b.y+b.h)
	draw.Draw(img, rect, &image.Uniform{fill}, image.Point{}, draw.Src)

	for x := b.x; x < b.x+b.w; x++ {
		img.SetRGBA(x, b.y, ink)
		img.SetRGBA(x, b.y+b.h-1, ink)
	}
	for y := b.y; y < b.y+b.h; y++ {
		img.SetRGBA(b.x, y, ink)
		img.SetRGBA(b.x+b.w-1, y, ink)
	}
}

// drawLine draws a straight segment using Bresenham's algorithm.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		img.SetRGBA(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func drawArrow(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	drawLine(img, x0, y0, x1, y1, c)

	// Arrowhead: two short strokes back from the tip.
	dx := sign(x0 - x1)
	dy := sign(y0 - y1)
	for i := 1; i <= 6; i++ {
		img.SetRGBA(clampX(img, x1+dx*i+dy*i/2), clampY(img, y1+dy*i+dx*i/2), c)
		img.SetRGBA(clampX(img, x1+dx*i-dy*i/2), clampY(img, y1+dy*i-dx*i/2), c)
	}
}

func drawCenteredLabel(img *image.RGBA, cx, cy int, text string, c color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
	}
	width := d.MeasureString(text).Ceil()
	d.Dot = fixed.P(cx-width/2, cy)
	d.DrawString(text)
}

// truncate cuts on a rune boundary so multi-byte names stay valid UTF-8.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func clampX(img *image.RGBA, x int) int {
	if x < 0 {
		return 0
	}
	if x >= img.Bounds().Dx() {
		return img.Bounds().Dx() - 1
	}
	return x
}

func clampY(img *image.RGBA, y int) int {
	if y < 0 {
		return 0
	}
	if y >= img.Bounds().Dy() {
		return img.Bounds().Dy() - 1
	}
	return y
}

func encode(img *image.RGBA) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("diagram: encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}
