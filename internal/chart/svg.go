package chart

import (
	"errors"
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/6grvph5rkk-byte/cross-impact-mapper/internal/quadrant"
	"github.com/6grvph5rkk-byte/cross-impact-mapper/internal/types"
)

// ErrNoRecords is returned when there is nothing to plot. The API surfaces
// this as 204 and the frontend shows its placeholder instead of a chart.
var ErrNoRecords = errors.New("no classified records to plot")

// Config controls the SVG dimensions
type Config struct {
	Width   int
	Height  int
	Padding int
}

// DefaultConfig returns the chart dimensions used by the frontend
func DefaultConfig() Config {
	return Config{
		Width:   900,
		Height:  650,
		Padding: 60,
	}
}

// extent is the data-space bounding box of the plot
type extent struct {
	minX, maxX float64
	minY, maxY float64
}

// computeExtent derives the plot bounds from the points and the center, with
// a 10% margin so no point sits on the frame.
func computeExtent(records []quadrant.ClassifiedRecord, th types.Thresholds) extent {
	e := extent{
		minX: th.CenterX, maxX: th.CenterX,
		minY: th.CenterY, maxY: th.CenterY,
	}

	for _, rec := range records {
		e.minX = math.Min(e.minX, rec.Dependence)
		e.maxX = math.Max(e.maxX, rec.Dependence)
		e.minY = math.Min(e.minY, rec.Influence)
		e.maxY = math.Max(e.maxY, rec.Influence)
	}

	marginX := (e.maxX - e.minX) * 0.1
	if marginX == 0 {
		marginX = 1
	}
	marginY := (e.maxY - e.minY) * 0.1
	if marginY == 0 {
		marginY = 1
	}

	e.minX -= marginX
	e.maxX += marginX
	e.minY -= marginY
	e.maxY += marginY

	return e
}

// Render produces a standalone SVG scatter chart: one labeled point per
// record, guide lines at the center thresholds spanning the full plot, and
// axis titles. Returns ErrNoRecords for an empty set.
func Render(cfg Config, records []quadrant.ClassifiedRecord, th types.Thresholds) ([]byte, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	e := computeExtent(records, th)

	plotW := float64(cfg.Width - 2*cfg.Padding)
	plotH := float64(cfg.Height - 2*cfg.Padding)
	pad := float64(cfg.Padding)

	sx := func(x float64) float64 {
		return pad + (x-e.minX)/(e.maxX-e.minX)*plotW
	}
	sy := func(y float64) float64 {
		// SVG y grows downward.
		return pad + plotH - (y-e.minY)/(e.maxY-e.minY)*plotH
	}

	var b strings.Builder

	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" role="img">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
	b.WriteString("\n")

	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="#ffffff"/>`, cfg.Width, cfg.Height)
	b.WriteString("\n")
	fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="#cccccc"/>`,
		pad, pad, plotW, plotH)
	b.WriteString("\n")

	// Quadrant guide lines through the center, spanning the full plot.
	fmt.Fprintf(&b, `<line class="guide" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#000000" stroke-width="1"/>`,
		sx(th.CenterX), pad, sx(th.CenterX), pad+plotH)
	b.WriteString("\n")
	fmt.Fprintf(&b, `<line class="guide" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#000000" stroke-width="1"/>`,
		pad, sy(th.CenterY), pad+plotW, sy(th.CenterY))
	b.WriteString("\n")

	for _, rec := range records {
		x := sx(rec.Dependence)
		y := sy(rec.Influence)

		fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="5" fill="%s"/>`, x, y, Color(rec.Quadrant))
		b.WriteString("\n")
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" text-anchor="middle" font-family="sans-serif" font-size="12" fill="#333333">%s</text>`,
			x, y-10, html.EscapeString(rec.Name))
		b.WriteString("\n")
	}

	// Axis titles.
	fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" text-anchor="middle" font-family="sans-serif" font-size="14" fill="#333333">Dependence (influenced by others)</text>`,
		pad+plotW/2, float64(cfg.Height)-15)
	b.WriteString("\n")
	fmt.Fprintf(&b, `<text x="15" y="%.1f" text-anchor="middle" font-family="sans-serif" font-size="14" fill="#333333" transform="rotate(-90 15 %.1f)">Influence (influences others)</text>`,
		pad+plotH/2, pad+plotH/2)
	b.WriteString("\n")

	b.WriteString("</svg>\n")

	return []byte(b.String()), nil
}
