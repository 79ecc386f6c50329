package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/6grvph5rkk-byte/cross-impact-mapper/internal/quadrant"
)

// ParseCSV reads back a CSV produced by CSV, detecting the optional leading
// Scenario column from the header. It returns the scenario label (empty when
// the column is absent) and the records in file order.
func ParseCSV(data []byte) (string, []quadrant.ClassifiedRecord, error) {
	r := csv.NewReader(bytes.NewReader(data))

	rows, err := r.ReadAll()
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(rows) == 0 {
		return "", nil, fmt.Errorf("CSV has no header row")
	}

	header := rows[0]
	offset := 0
	if len(header) > 0 && header[0] == "Scenario" {
		offset = 1
	}
	if len(header) != offset+4 {
		return "", nil, fmt.Errorf("unexpected CSV header %v", header)
	}

	scenario := ""
	records := make([]quadrant.ClassifiedRecord, 0, len(rows)-1)

	for i, row := range rows[1:] {
		if len(row) != offset+4 {
			return "", nil, fmt.Errorf("row %d has %d columns, want %d", i+1, len(row), offset+4)
		}
		if offset == 1 {
			scenario = row[0]
		}

		dependence, err := strconv.ParseFloat(row[offset+1], 64)
		if err != nil {
			return "", nil, fmt.Errorf("row %d: invalid dependence %q", i+1, row[offset+1])
		}
		influence, err := strconv.ParseFloat(row[offset+2], 64)
		if err != nil {
			return "", nil, fmt.Errorf("row %d: invalid influence %q", i+1, row[offset+2])
		}

		q := quadrant.Quadrant(row[offset+3])
		if !q.Valid() {
			return "", nil, fmt.Errorf("row %d: unknown quadrant %q", i+1, row[offset+3])
		}

		records = append(records, quadrant.ClassifiedRecord{
			Name:       row[offset],
			Dependence: dependence,
			Influence:  influence,
			Quadrant:   q,
		})
	}

	return scenario, records, nil
}
