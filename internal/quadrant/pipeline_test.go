package quadrant

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/6grvph5rkk-byte/cross-impact-mapper/internal/types"
)

func TestParseScore(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected float64
		ok       bool
	}{
		{name: "plain integer", raw: "13", expected: 13, ok: true},
		{name: "negative integer", raw: "-5", expected: -5, ok: true},
		{name: "decimal", raw: "2.75", expected: 2.75, ok: true},
		{name: "surrounding whitespace trimmed", raw: "  8.5\t", expected: 8.5, ok: true},
		{name: "scientific notation", raw: "1e2", expected: 100, ok: true},
		{name: "empty string fails", raw: "", ok: false},
		{name: "whitespace only fails", raw: "   ", ok: false},
		{name: "free text fails", raw: "high", ok: false},
		{name: "mixed text fails", raw: "5 points", ok: false},
		{name: "comma decimal fails", raw: "3,5", ok: false},
		{name: "NaN is not a placeable score", raw: "NaN", ok: false},
		{name: "Inf is not a placeable score", raw: "Inf", ok: false},
		{name: "negative infinity fails", raw: "-Inf", ok: false},
		{name: "infinity by overflow fails", raw: "1e999", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := ParseScore(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, v)
			}
		})
	}
}

func TestClassifyRows(t *testing.T) {
	center := types.Thresholds{}

	t.Run("classifies the example table", func(t *testing.T) {
		rows := []types.FactorRecord{
			{Name: "A", Dependence: "-5", Influence: "13"},
			{Name: "B", Dependence: "8", Influence: "11"},
			{Name: "C", Dependence: "9", Influence: "13"},
			{Name: "D", Dependence: "7", Influence: "-3"},
		}

		classified := ClassifyRows(rows, center)

		assert.Len(t, classified, 4)
		assert.Equal(t, []Quadrant{Active, Critical, Critical, Passive}, []Quadrant{
			classified[0].Quadrant,
			classified[1].Quadrant,
			classified[2].Quadrant,
			classified[3].Quadrant,
		})
	})

	t.Run("drops rows with non-numeric scores", func(t *testing.T) {
		rows := []types.FactorRecord{
			{Name: "valid", Dependence: "1", Influence: "2"},
			{Name: "bad dependence", Dependence: "lots", Influence: "2"},
			{Name: "bad influence", Dependence: "1", Influence: ""},
		}

		classified := ClassifyRows(rows, center)

		assert.Len(t, classified, 1)
		assert.Equal(t, "valid", classified[0].Name)
	})

	t.Run("drops rows with empty names", func(t *testing.T) {
		rows := []types.FactorRecord{
			{Name: "", Dependence: "1", Influence: "2"},
			{Name: "   ", Dependence: "1", Influence: "2"},
			{Name: "kept", Dependence: "1", Influence: "2"},
		}

		classified := ClassifyRows(rows, center)

		assert.Len(t, classified, 1)
		assert.Equal(t, "kept", classified[0].Name)
	})

	t.Run("preserves table order", func(t *testing.T) {
		rows := []types.FactorRecord{
			{Name: "first", Dependence: "1", Influence: "1"},
			{Name: "skipped", Dependence: "x", Influence: "1"},
			{Name: "second", Dependence: "2", Influence: "2"},
			{Name: "third", Dependence: "3", Influence: "3"},
		}

		classified := ClassifyRows(rows, center)

		names := make([]string, len(classified))
		for i, c := range classified {
			names[i] = c.Name
		}
		assert.Equal(t, []string{"first", "second", "third"}, names)
	})

	t.Run("duplicate names are permitted", func(t *testing.T) {
		rows := []types.FactorRecord{
			{Name: "same", Dependence: "-1", Influence: "1"},
			{Name: "same", Dependence: "1", Influence: "-1"},
		}

		classified := ClassifyRows(rows, center)

		assert.Len(t, classified, 2)
		assert.Equal(t, Active, classified[0].Quadrant)
		assert.Equal(t, Passive, classified[1].Quadrant)
	})

	t.Run("empty table yields empty non-nil slice", func(t *testing.T) {
		classified := ClassifyRows(nil, center)
		assert.NotNil(t, classified)
		assert.Empty(t, classified)
	})

	t.Run("thresholds shift classification", func(t *testing.T) {
		rows := []types.FactorRecord{{Name: "F", Dependence: "5", Influence: "5"}}

		assert.Equal(t, Critical, ClassifyRows(rows, types.Thresholds{})[0].Quadrant)
		assert.Equal(t, Active, ClassifyRows(rows, types.Thresholds{CenterX: 6})[0].Quadrant)
		assert.Equal(t, Passive, ClassifyRows(rows, types.Thresholds{CenterY: 5})[0].Quadrant)
		assert.Equal(t, Inactive, ClassifyRows(rows, types.Thresholds{CenterX: 6, CenterY: 5})[0].Quadrant)
	})
}
