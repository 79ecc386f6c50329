package types

// FactorRecord is one editable row of the factor table. The score cells hold
// the raw text the user typed; coercion to float happens downstream, so an
// invalid row stays editable and re-enters every view once corrected.
type FactorRecord struct {
	Name       string `json:"name"`
	Dependence string `json:"dependence"`
	Influence  string `json:"influence"`
}

// Thresholds is the (x, y) center point dividing the plane into quadrants.
// Global to the whole table, not per-row.
type Thresholds struct {
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
}

// AddRowRequest represents the request structure for appending a table row
type AddRowRequest struct {
	Name       string `json:"name"`
	Dependence string `json:"dependence"`
	Influence  string `json:"influence"`
}

// UpdateCellRequest represents a single-cell edit on an existing row
type UpdateCellRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// ThresholdsRequest represents the request structure for moving the quadrant
// center. Pointers distinguish "not sent" from an explicit zero.
type ThresholdsRequest struct {
	CenterX *float64 `json:"center_x"`
	CenterY *float64 `json:"center_y"`
}

// ScenarioRequest sets the session's scenario label
type ScenarioRequest struct {
	Scenario string `json:"scenario"`
}

// ReflectionRequest sets the session's free-text reflection
type ReflectionRequest struct {
	Reflection string `json:"reflection"`
}
