// Package quadrant implements the cross-impact classification domain: quadrant
// assignment relative to the configurable center, score coercion, and the
// filter pipeline that turns raw table rows into the classified view consumed
// by the chart renderer and the exporters.
package quadrant

// Quadrant is one of the four cross-impact categories
type Quadrant string

const (
	// Active factors drive the system: high influence, low dependence
	Active Quadrant = "Active"
	// Critical factors are both drivers and driven: high influence, high dependence
	Critical Quadrant = "Critical"
	// Passive factors are driven by the system: low influence, high dependence
	Passive Quadrant = "Passive"
	// Inactive factors are decoupled: low influence, low dependence
	Inactive Quadrant = "Inactive"
)

// All lists the quadrants in their canonical display order
var All = []Quadrant{Active, Critical, Passive, Inactive}

// Valid reports whether q is one of the four known labels
func (q Quadrant) Valid() bool {
	switch q {
	case Active, Critical, Passive, Inactive:
		return true
	}
	return false
}

// Classify maps a (dependence, influence) point to its quadrant relative to
// the (centerX, centerY) center. Total over all real inputs.
//
// The boundary handling is asymmetric between the axes and load-bearing:
// dependence ties (dependence == centerX) fall to the right half
// (Critical/Passive), influence ties (influence == centerY) fall to the
// bottom half (Passive/Inactive).
func Classify(dependence, influence, centerX, centerY float64) Quadrant {
	switch {
	case dependence < centerX && influence > centerY:
		return Active
	case dependence >= centerX && influence > centerY:
		return Critical
	case dependence >= centerX && influence <= centerY:
		return Passive
	default:
		return Inactive
	}
}
