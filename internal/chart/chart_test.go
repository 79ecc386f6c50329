package chart

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/6grvph5rkk-byte/cross-impact-mapper/internal/quadrant"
	"github.com/6grvph5rkk-byte/cross-impact-mapper/internal/types"
)

func exampleRecords(t *testing.T) []quadrant.ClassifiedRecord {
	t.Helper()

	rows := []types.FactorRecord{
		{Name: "A", Dependence: "-5", Influence: "13"},
		{Name: "B", Dependence: "8", Influence: "11"},
		{Name: "C", Dependence: "9", Influence: "13"},
		{Name: "D", Dependence: "7", Influence: "-3"},
	}
	records := quadrant.ClassifyRows(rows, types.Thresholds{})
	require.Len(t, records, 4)
	return records
}

func TestRender(t *testing.T) {
	records := exampleRecords(t)
	svg, err := Render(DefaultConfig(), records, types.Thresholds{})
	require.NoError(t, err)

	out := string(svg)

	assert.True(t, strings.HasPrefix(out, "<svg "))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "</svg>"))

	// Two full-extent guide lines through the center.
	assert.Equal(t, 2, strings.Count(out, `class="guide"`))

	// One circle and one label per record.
	assert.Equal(t, len(records), strings.Count(out, "<circle "))
	for _, rec := range records {
		assert.Contains(t, out, fmt.Sprintf(">%s</text>", rec.Name))
	}

	// Points carry the quadrant palette.
	assert.Contains(t, out, `fill="#1b9e77"`) // Active
	assert.Contains(t, out, `fill="#d95f02"`) // Critical
	assert.Contains(t, out, `fill="#7570b3"`) // Passive

	// Axis titles from the original tool.
	assert.Contains(t, out, "Dependence (influenced by others)")
	assert.Contains(t, out, "Influence (influences others)")
}

func TestRender_EmptySet(t *testing.T) {
	svg, err := Render(DefaultConfig(), nil, types.Thresholds{})
	assert.ErrorIs(t, err, ErrNoRecords)
	assert.Nil(t, svg)
}

func TestRender_EscapesNames(t *testing.T) {
	records := []quadrant.ClassifiedRecord{
		{Name: `R&D <budget>`, Dependence: 1, Influence: 1, Quadrant: quadrant.Critical},
	}

	svg, err := Render(DefaultConfig(), records, types.Thresholds{})
	require.NoError(t, err)

	out := string(svg)
	assert.Contains(t, out, "R&amp;D &lt;budget&gt;")
	assert.NotContains(t, out, "<budget>")
}

func TestRender_SinglePointDegenerateExtent(t *testing.T) {
	// One point exactly on the center collapses the data range; the margin
	// fallback must keep the scale finite.
	records := []quadrant.ClassifiedRecord{
		{Name: "center", Dependence: 0, Influence: 0, Quadrant: quadrant.Passive},
	}

	svg, err := Render(DefaultConfig(), records, types.Thresholds{})
	require.NoError(t, err)
	assert.NotContains(t, string(svg), "NaN")
	assert.NotContains(t, string(svg), "+Inf")
	assert.NotContains(t, string(svg), "-Inf")
}

func TestRender_InfiniteCellsNeverReachTheChart(t *testing.T) {
	// ClassifyRows drops non-finite scores, so the renderer only ever sees a
	// finite extent. An "Inf" cell must not corrupt the remaining coordinates.
	rows := []types.FactorRecord{
		{Name: "runaway", Dependence: "Inf", Influence: "1"},
		{Name: "kept", Dependence: "2", Influence: "3"},
	}
	records := quadrant.ClassifyRows(rows, types.Thresholds{})
	require.Len(t, records, 1)

	svg, err := Render(DefaultConfig(), records, types.Thresholds{})
	require.NoError(t, err)

	out := string(svg)
	assert.Equal(t, 1, strings.Count(out, "<circle "))
	assert.NotContains(t, out, "NaN")
	assert.NotContains(t, out, "+Inf")
	assert.NotContains(t, out, "-Inf")
}

func TestBuildSeries(t *testing.T) {
	records := exampleRecords(t)
	series := BuildSeries(records)

	// Example has Active, two Critical, Passive; no Inactive group.
	require.Len(t, series, 3)
	assert.Equal(t, quadrant.Active, series[0].Quadrant)
	assert.Equal(t, quadrant.Critical, series[1].Quadrant)
	assert.Equal(t, quadrant.Passive, series[2].Quadrant)

	assert.Len(t, series[1].Points, 2)
	assert.Equal(t, "#d95f02", series[1].Color)
	assert.Equal(t, Point{X: -5, Y: 13, Label: "A"}, series[0].Points[0])
}

func TestBuildSeries_Empty(t *testing.T) {
	assert.Empty(t, BuildSeries(nil))
}

func TestColor(t *testing.T) {
	assert.Equal(t, "#1b9e77", Color(quadrant.Active))
	assert.Equal(t, "#d95f02", Color(quadrant.Critical))
	assert.Equal(t, "#7570b3", Color(quadrant.Passive))
	assert.Equal(t, "#e6ab02", Color(quadrant.Inactive))
}
