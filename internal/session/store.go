// Package session holds the per-session factor table and the manager that
// tracks live sessions. Everything is in-memory; a session's lifetime ends
// when it idles past the manager's TTL.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/6grvph5rkk-byte/cross-impact-mapper/internal/types"
)

// Cell field names accepted by UpdateCell
const (
	FieldName       = "name"
	FieldDependence = "dependence"
	FieldInfluence  = "influence"
)

// MaxRows caps the table size per session
const MaxRows = 500

// Snapshot is a consistent read-only copy of a session's state, handed to the
// classifier/renderer/exporter so they never touch live storage.
type Snapshot struct {
	ID         string               `json:"id"`
	Rows       []types.FactorRecord `json:"rows"`
	Thresholds types.Thresholds     `json:"thresholds"`
	Scenario   string               `json:"scenario"`
	Reflection string               `json:"reflection"`
	Revision   uint64               `json:"revision"`
}

// Store is one session's editable factor table plus its thresholds, scenario
// label and reflection text. Mutex-guarded: even a single user's browser can
// race concurrent requests against the same session.
type Store struct {
	mu         sync.RWMutex
	id         string
	rows       []types.FactorRecord
	thresholds types.Thresholds
	scenario   string
	reflection string
	revision   uint64
	lastAccess time.Time
}

// seedRows returns the starter table shown to every new session
func seedRows() []types.FactorRecord {
	return []types.FactorRecord{
		{Name: "AI-everything & automation", Dependence: "-5", Influence: "13"},
		{Name: "Public funding & policy", Dependence: "8", Influence: "11"},
		{Name: "Cost of living & inflation", Dependence: "9", Influence: "13"},
		{Name: "Ticket pricing & affordability", Dependence: "7", Influence: "-3"},
	}
}

// NewStore creates a session store seeded with the example factors
func NewStore(id string) *Store {
	return &Store{
		id:         id,
		rows:       seedRows(),
		lastAccess: time.Now(),
	}
}

// ID returns the session identifier
func (s *Store) ID() string {
	return s.id
}

// touch must be called with the write lock held
func (s *Store) touch(mutated bool) {
	s.lastAccess = time.Now()
	if mutated {
		s.revision++
	}
}

// AddRow appends a row to the table. Cells are stored as raw text; no
// validation happens here beyond the table size cap.
func (s *Store) AddRow(name, dependence, influence string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.rows) >= MaxRows {
		return 0, fmt.Errorf("table is full (%d rows)", MaxRows)
	}

	s.rows = append(s.rows, types.FactorRecord{
		Name:       name,
		Dependence: dependence,
		Influence:  influence,
	})
	s.touch(true)

	return len(s.rows) - 1, nil
}

// UpdateCell overwrites a single cell of an existing row
func (s *Store) UpdateCell(index int, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.rows) {
		return fmt.Errorf("row %d out of range (table has %d rows)", index, len(s.rows))
	}

	switch field {
	case FieldName:
		s.rows[index].Name = value
	case FieldDependence:
		s.rows[index].Dependence = value
	case FieldInfluence:
		s.rows[index].Influence = value
	default:
		return fmt.Errorf("unknown field %q", field)
	}

	s.touch(true)
	return nil
}

// DeleteRow removes a row by position, shifting later rows up
func (s *Store) DeleteRow(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.rows) {
		return fmt.Errorf("row %d out of range (table has %d rows)", index, len(s.rows))
	}

	s.rows = append(s.rows[:index], s.rows[index+1:]...)
	s.touch(true)
	return nil
}

// SetThresholds moves the quadrant center
func (s *Store) SetThresholds(th types.Thresholds) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.thresholds = th
	s.touch(true)
}

// SetScenario sets the scenario label
func (s *Store) SetScenario(scenario string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scenario = scenario
	s.touch(true)
}

// SetReflection sets the free-text reflection
func (s *Store) SetReflection(reflection string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reflection = reflection
	s.touch(true)
}

// Snapshot returns a consistent copy of the session state. The row slice is
// copied so downstream consumers cannot observe later edits.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch(false)

	rows := make([]types.FactorRecord, len(s.rows))
	copy(rows, s.rows)

	return Snapshot{
		ID:         s.id,
		Rows:       rows,
		Thresholds: s.thresholds,
		Scenario:   s.scenario,
		Reflection: s.reflection,
		Revision:   s.revision,
	}
}

// LastAccess reports when the session was last read or written
func (s *Store) LastAccess() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastAccess
}
