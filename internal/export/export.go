// Package export serializes the classified factor table to the two
// downloadable artifacts: a CSV file and a plain-text bundle.
package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/6grvph5rkk-byte/cross-impact-mapper/internal/quadrant"
)

const (
	// CSVFilename is the suggested download name for the CSV artifact
	CSVFilename = "cross_impact_factors.csv"
	// TextFilename is the suggested download name for the text bundle
	TextFilename = "cross_impact_map.txt"

	scenarioPlaceholder   = "(untitled scenario)"
	reflectionPlaceholder = "(no reflection recorded)"
)

// CanExport reports whether there is anything worth downloading: at least one
// classified record, or reflection text.
func CanExport(records []quadrant.ClassifiedRecord, reflection string) bool {
	return len(records) > 0 || strings.TrimSpace(reflection) != ""
}

// formatScore renders a float score without trailing zero noise
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CSV renders the classified table as UTF-8 CSV. When scenario is non-empty a
// leading Scenario column is included; otherwise the header is exactly
// Factor,Dependence,Influence,Quadrant. Rows appear in table order.
func CSV(scenario string, records []quadrant.ClassifiedRecord) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	withScenario := strings.TrimSpace(scenario) != ""

	header := []string{"Factor", "Dependence", "Influence", "Quadrant"}
	if withScenario {
		header = append([]string{"Scenario"}, header...)
	}
	w.Write(header)

	for _, rec := range records {
		row := []string{rec.Name, formatScore(rec.Dependence), formatScore(rec.Influence), string(rec.Quadrant)}
		if withScenario {
			row = append([]string{scenario}, row...)
		}
		w.Write(row)
	}

	w.Flush()
	return buf.Bytes()
}

// TextBundle renders the plain-text artifact: scenario line, reflection
// block (placeholder when empty), then the CSV content inline.
func TextBundle(scenario, reflection string, records []quadrant.ClassifiedRecord) []byte {
	var b strings.Builder

	label := strings.TrimSpace(scenario)
	if label == "" {
		label = scenarioPlaceholder
	}
	b.WriteString("Scenario: " + label + "\n\n")

	b.WriteString("Reflection:\n")
	text := strings.TrimSpace(reflection)
	if text == "" {
		text = reflectionPlaceholder
	}
	b.WriteString(text + "\n\n")

	b.WriteString("Factor table:\n")
	b.Write(CSV(scenario, records))

	return []byte(b.String())
}
