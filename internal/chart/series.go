// Package chart renders the cross-impact map: a scatter of classified factors
// with quadrant guide lines, as standalone SVG plus a JSON series payload for
// the frontend legend.
package chart

import (
	"github.com/6grvph5rkk-byte/cross-impact-mapper/internal/quadrant"
)

// Fixed quadrant palette
var palette = map[quadrant.Quadrant]string{
	quadrant.Active:   "#1b9e77",
	quadrant.Critical: "#d95f02",
	quadrant.Passive:  "#7570b3",
	quadrant.Inactive: "#e6ab02",
}

// Color returns the fill color for a quadrant
func Color(q quadrant.Quadrant) string {
	return palette[q]
}

// Point is one plotted factor
type Point struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label"`
}

// Series groups the points of one quadrant for the frontend
type Series struct {
	Quadrant quadrant.Quadrant `json:"quadrant"`
	Color    string            `json:"color"`
	Points   []Point           `json:"points"`
}

// BuildSeries groups classified records by quadrant in canonical order.
// Quadrants with no points are omitted.
func BuildSeries(records []quadrant.ClassifiedRecord) []Series {
	grouped := make(map[quadrant.Quadrant][]Point)
	for _, rec := range records {
		grouped[rec.Quadrant] = append(grouped[rec.Quadrant], Point{
			X:     rec.Dependence,
			Y:     rec.Influence,
			Label: rec.Name,
		})
	}

	series := make([]Series, 0, len(grouped))
	for _, q := range quadrant.All {
		points, ok := grouped[q]
		if !ok {
			continue
		}
		series = append(series, Series{Quadrant: q, Color: Color(q), Points: points})
	}

	return series
}
