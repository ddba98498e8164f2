// Package render draws processed survey maps as PNG artifacts.
package render

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/mjkeller/geosurvey/internal/core/domain"
)

const (
	canvasWidth  = 1400
	canvasHeight = 1000

	plotLeft   = 90.0
	plotTop    = 70.0
	plotRight  = 320.0 // reserves room for the legend panel
	plotBottom = 70.0

	// boundsMargin expands the axis bounds by a fixed 0.1 degree per side.
	boundsMargin = 0.1

	gridLines = 10
)

// Renderer implements ports.MapRenderer with a 2D raster backend. A fresh
// drawing context is created per call and never escapes it, so rendering
// resources are released on every exit path.
type Renderer struct {
	outputDir string
}

// New creates a Renderer persisting artifacts under outputDir.
func New(outputDir string) (*Renderer, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Renderer{outputDir: outputDir}, nil
}

// Render draws the processed map and writes it to a deterministic path
// derived from the survey ID. Failures are returned as errors, never panics;
// the caller reports them without crashing.
func (r *Renderer) Render(ctx context.Context, m *domain.ProcessedMap, surveyID string) (path string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("map rendering panicked: %v", rec)
		}
	}()

	bounds, ok := domain.BoundsOf(m.Coordinates)
	if !ok {
		return "", fmt.Errorf("survey %s has no coordinates to plot", surveyID)
	}
	p := newProjection(bounds.Expand(boundsMargin))

	dc := gg.NewContext(canvasWidth, canvasHeight)
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	drawGrid(dc, p)
	for _, u := range m.Units {
		drawUnit(dc, p, u)
	}
	for _, b := range m.Boundaries {
		drawBoundary(dc, p, b)
	}
	for _, f := range m.StructuralFeatures {
		if f.Type == "fault" {
			drawFault(dc, p, f)
		}
	}
	drawSurveyPoints(dc, p, m.Coordinates)
	drawDecorations(dc, p, surveyID)
	drawLegend(dc)

	path = filepath.Join(r.outputDir, fmt.Sprintf("geological_map_%s.png", surveyID))
	if err := dc.SavePNG(path); err != nil {
		return "", fmt.Errorf("save map %s: %w", path, err)
	}
	slog.Info("map saved", "survey_id", surveyID, "path", path)
	return path, nil
}

// projection maps geographic coordinates onto the plot area. Latitude grows
// upward, so the y axis is flipped relative to screen space.
type projection struct {
	bounds     domain.Bounds
	x, y, w, h float64
}

func newProjection(b domain.Bounds) projection {
	return projection{
		bounds: b,
		x:      plotLeft,
		y:      plotTop,
		w:      canvasWidth - plotLeft - plotRight,
		h:      canvasHeight - plotTop - plotBottom,
	}
}

func (p projection) point(c domain.Coordinate) (float64, float64) {
	x := p.x + (c.Lon-p.bounds.MinLon)/(p.bounds.MaxLon-p.bounds.MinLon)*p.w
	y := p.y + (p.bounds.MaxLat-c.Lat)/(p.bounds.MaxLat-p.bounds.MinLat)*p.h
	return x, y
}

func drawGrid(dc *gg.Context, p projection) {
	dc.SetColor(color.NRGBA{R: 0xB0, G: 0xB0, B: 0xB0, A: 0x80})
	dc.SetLineWidth(1)
	dc.SetDash(1, 3)

	lonStep := (p.bounds.MaxLon - p.bounds.MinLon) / gridLines
	latStep := (p.bounds.MaxLat - p.bounds.MinLat) / gridLines

	for i := 0; i <= gridLines; i++ {
		lon := p.bounds.MinLon + lonStep*float64(i)
		lat := p.bounds.MaxLat - latStep*float64(i)

		x, _ := p.point(domain.Coordinate{Lat: p.bounds.MinLat, Lon: lon})
		dc.DrawLine(x, p.y, x, p.y+p.h)
		dc.Stroke()

		_, y := p.point(domain.Coordinate{Lat: lat, Lon: p.bounds.MinLon})
		dc.DrawLine(p.x, y, p.x+p.w, y)
		dc.Stroke()

		dc.SetDash()
		dc.SetRGB(0.2, 0.2, 0.2)
		dc.DrawStringAnchored(fmt.Sprintf("%.2f", lon), x, p.y+p.h+16, 0.5, 0.5)
		dc.DrawStringAnchored(fmt.Sprintf("%.2f", lat), p.x-30, y, 0.5, 0.5)
		dc.SetColor(color.NRGBA{R: 0xB0, G: 0xB0, B: 0xB0, A: 0x80})
		dc.SetDash(1, 3)
	}
	dc.SetDash()

	// Plot frame
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1.5)
	dc.DrawRectangle(p.x, p.y, p.w, p.h)
	dc.Stroke()
}

// drawUnit fills the unit polygon in its type color, degrading to a line or
// point below three vertices. Polygons with more than two vertices get a
// centroid label.
func drawUnit(dc *gg.Context, p projection, u domain.GeologicalUnit) {
	if len(u.Coordinates) == 0 {
		return
	}
	fill := withAlpha(colorForType(u.Type), 0x99)

	switch {
	case len(u.Coordinates) == 1:
		x, y := p.point(u.Coordinates[0])
		dc.SetColor(fill)
		dc.DrawCircle(x, y, 14)
		dc.FillPreserve()
		dc.SetRGB(0, 0, 0)
		dc.SetLineWidth(0.8)
		dc.Stroke()
	case len(u.Coordinates) == 2:
		x1, y1 := p.point(u.Coordinates[0])
		x2, y2 := p.point(u.Coordinates[1])
		dc.SetColor(fill)
		dc.SetLineWidth(6)
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
	default:
		x0, y0 := p.point(u.Coordinates[0])
		dc.MoveTo(x0, y0)
		for _, c := range u.Coordinates[1:] {
			x, y := p.point(c)
			dc.LineTo(x, y)
		}
		dc.ClosePath()
		dc.SetColor(fill)
		dc.FillPreserve()
		dc.SetRGB(0, 0, 0)
		dc.SetLineWidth(0.8)
		dc.Stroke()

		cx, cy := centroid(p, u.Coordinates)
		drawLabel(dc, u.Type, cx, cy, 0, color.NRGBA{A: 0xFF})
	}
}

func drawBoundary(dc *gg.Context, p projection, b domain.Boundary) {
	if len(b.Coordinates) < 2 {
		return
	}
	dc.SetColor(color.NRGBA{A: 0xB3}) // black at ~0.7 alpha
	dc.SetLineWidth(1.2)
	dc.SetDash(6, 5)

	x, y := p.point(b.Coordinates[0])
	dc.MoveTo(x, y)
	for _, c := range b.Coordinates[1:] {
		x, y = p.point(c)
		dc.LineTo(x, y)
	}
	dc.Stroke()
	dc.SetDash()
}

// drawFault draws the fault trace as a solid highlighted line and labels the
// displacement at the midpoint vertex, rotated to follow the segment.
func drawFault(dc *gg.Context, p projection, f domain.StructuralFeature) {
	if len(f.Coordinates) < 2 {
		return
	}
	red := color.NRGBA{R: 0xCC, A: 0xFF}
	dc.SetColor(red)
	dc.SetLineWidth(2)

	x, y := p.point(f.Coordinates[0])
	dc.MoveTo(x, y)
	for _, c := range f.Coordinates[1:] {
		x, y = p.point(c)
		dc.LineTo(x, y)
	}
	dc.Stroke()

	mid := len(f.Coordinates) / 2
	mx, my := p.point(f.Coordinates[mid])
	prev := mid - 1
	if mid == 0 {
		prev, mid = 0, 1
	}
	px, py := p.point(f.Coordinates[prev])
	qx, qy := p.point(f.Coordinates[mid])
	angle := math.Atan2(qy-py, qx-px)

	label := fmt.Sprintf("Fault (%.0fm)", f.Displacement)
	drawLabel(dc, label, mx, my, angle, red)
}

func drawSurveyPoints(dc *gg.Context, p projection, coords []domain.Coordinate) {
	dc.SetColor(color.NRGBA{R: 0xE0, G: 0x20, B: 0x20, A: 0xFF})
	for _, c := range coords {
		x, y := p.point(c)
		dc.DrawCircle(x, y, 4)
		dc.Fill()
	}
}

func drawDecorations(dc *gg.Context, p projection, surveyID string) {
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(fmt.Sprintf("Geological Survey Map - %s", surveyID),
		p.x+p.w/2, p.y-30, 0.5, 0.5)
	dc.DrawStringAnchored("Longitude", p.x+p.w/2, p.y+p.h+40, 0.5, 0.5)

	dc.Push()
	dc.RotateAbout(-math.Pi/2, p.x-60, p.y+p.h/2)
	dc.DrawStringAnchored("Latitude", p.x-60, p.y+p.h/2, 0.5, 0.5)
	dc.Pop()
}

// drawLegend enumerates the full color table in a fixed order.
func drawLegend(dc *gg.Context) {
	x := float64(canvasWidth - plotRight + 40)
	y := plotTop + 10.0

	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored("Geological Units", x, y, 0, 0.5)
	y += 24

	for _, name := range legendOrder {
		dc.SetColor(withAlpha(unitColors[name], 0x99))
		dc.DrawRectangle(x, y-7, 22, 14)
		dc.FillPreserve()
		dc.SetRGB(0, 0, 0)
		dc.SetLineWidth(0.8)
		dc.Stroke()
		dc.DrawStringAnchored(name, x+30, y, 0, 0.5)
		y += 22
	}
}

// drawLabel renders text over a translucent white box, optionally rotated
// about the anchor point.
func drawLabel(dc *gg.Context, text string, x, y, angle float64, textColor color.NRGBA) {
	w, h := dc.MeasureString(text)

	dc.Push()
	if angle != 0 {
		dc.RotateAbout(angle, x, y)
	}
	dc.SetColor(color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xB3})
	dc.DrawRectangle(x-w/2-3, y-h/2-3, w+6, h+6)
	dc.Fill()
	dc.SetColor(textColor)
	dc.DrawStringAnchored(text, x, y, 0.5, 0.5)
	dc.Pop()
}

func centroid(p projection, coords []domain.Coordinate) (float64, float64) {
	var sx, sy float64
	for _, c := range coords {
		x, y := p.point(c)
		sx += x
		sy += y
	}
	n := float64(len(coords))
	return sx / n, sy / n
}
