package quadrant

import (
	"math"
	"strconv"
	"strings"

	"github.com/6grvph5rkk-byte/cross-impact-mapper/internal/types"
)

// ClassifiedRecord is a FactorRecord whose scores coerced successfully, plus
// its derived quadrant. Never stored; recomputed from the raw table on read.
type ClassifiedRecord struct {
	Name       string   `json:"name"`
	Dependence float64  `json:"dependence"`
	Influence  float64  `json:"influence"`
	Quadrant   Quadrant `json:"quadrant"`
}

// ParseScore coerces free-form cell text to a float score. Returns ok=false
// on any coercion failure; it never errors. NaN and the infinities count as
// failures because a non-finite score cannot be placed on the map.
func ParseScore(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}

	return v, true
}

// ClassifyRows filters and classifies the raw table. Rows with an empty name
// or a score that fails coercion are silently excluded; surviving rows keep
// table order. The returned slice is never nil.
func ClassifyRows(rows []types.FactorRecord, th types.Thresholds) []ClassifiedRecord {
	classified := make([]ClassifiedRecord, 0, len(rows))

	for _, row := range rows {
		name := strings.TrimSpace(row.Name)
		if name == "" {
			continue
		}

		dependence, ok := ParseScore(row.Dependence)
		if !ok {
			continue
		}

		influence, ok := ParseScore(row.Influence)
		if !ok {
			continue
		}

		classified = append(classified, ClassifiedRecord{
			Name:       name,
			Dependence: dependence,
			Influence:  influence,
			Quadrant:   Classify(dependence, influence, th.CenterX, th.CenterY),
		})
	}

	return classified
}
