package session

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/6grvph5rkk-byte/cross-impact-mapper/internal/types"
)

func TestNewStore_SeedData(t *testing.T) {
	store := NewStore("test")

	snap := store.Snapshot()
	require.Len(t, snap.Rows, 4)
	assert.Equal(t, "AI-everything & automation", snap.Rows[0].Name)
	assert.Equal(t, "-5", snap.Rows[0].Dependence)
	assert.Equal(t, "13", snap.Rows[0].Influence)
	assert.Equal(t, types.Thresholds{}, snap.Thresholds)
	assert.Equal(t, "test", snap.ID)
}

func TestStore_AddRow(t *testing.T) {
	store := NewStore("test")

	index, err := store.AddRow("New factor", "2", "3")
	require.NoError(t, err)
	assert.Equal(t, 4, index)

	snap := store.Snapshot()
	require.Len(t, snap.Rows, 5)
	assert.Equal(t, types.FactorRecord{Name: "New factor", Dependence: "2", Influence: "3"}, snap.Rows[4])
}

func TestStore_AddRow_TableFull(t *testing.T) {
	store := NewStore("test")

	for i := len(store.Snapshot().Rows); i < MaxRows; i++ {
		_, err := store.AddRow(fmt.Sprintf("factor %d", i), "1", "1")
		require.NoError(t, err)
	}

	_, err := store.AddRow("one too many", "1", "1")
	assert.Error(t, err)
}

func TestStore_UpdateCell(t *testing.T) {
	tests := []struct {
		name    string
		index   int
		field   string
		value   string
		wantErr bool
	}{
		{name: "update name", index: 0, field: FieldName, value: "Renamed"},
		{name: "update dependence", index: 1, field: FieldDependence, value: "-7.5"},
		{name: "update influence", index: 2, field: FieldInfluence, value: "0"},
		{name: "invalid text is stored as-is", index: 0, field: FieldDependence, value: "not a number"},
		{name: "negative index", index: -1, field: FieldName, value: "x", wantErr: true},
		{name: "index past end", index: 4, field: FieldName, value: "x", wantErr: true},
		{name: "unknown field", index: 0, field: "quadrant", value: "Active", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore("test")
			err := store.UpdateCell(tt.index, tt.field, tt.value)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			row := store.Snapshot().Rows[tt.index]
			switch tt.field {
			case FieldName:
				assert.Equal(t, tt.value, row.Name)
			case FieldDependence:
				assert.Equal(t, tt.value, row.Dependence)
			case FieldInfluence:
				assert.Equal(t, tt.value, row.Influence)
			}
		})
	}
}

func TestStore_DeleteRow(t *testing.T) {
	store := NewStore("test")

	require.NoError(t, store.DeleteRow(1))

	snap := store.Snapshot()
	require.Len(t, snap.Rows, 3)
	// Order of the survivors is preserved.
	assert.Equal(t, "AI-everything & automation", snap.Rows[0].Name)
	assert.Equal(t, "Cost of living & inflation", snap.Rows[1].Name)
	assert.Equal(t, "Ticket pricing & affordability", snap.Rows[2].Name)

	assert.Error(t, store.DeleteRow(3))
	assert.Error(t, store.DeleteRow(-1))
}

func TestStore_RevisionMonotonicity(t *testing.T) {
	store := NewStore("test")

	rev := store.Snapshot().Revision

	_, err := store.AddRow("a", "1", "1")
	require.NoError(t, err)
	next := store.Snapshot().Revision
	assert.Greater(t, next, rev)

	store.SetThresholds(types.Thresholds{CenterX: 1})
	assert.Greater(t, store.Snapshot().Revision, next)

	// Reads do not bump the revision.
	before := store.Snapshot().Revision
	assert.Equal(t, before, store.Snapshot().Revision)
}

func TestStore_SnapshotIsolation(t *testing.T) {
	store := NewStore("test")

	snap := store.Snapshot()
	require.NoError(t, store.UpdateCell(0, FieldName, "changed"))

	// The earlier snapshot must not see the edit.
	assert.Equal(t, "AI-everything & automation", snap.Rows[0].Name)
}

func TestStore_ScenarioAndReflection(t *testing.T) {
	store := NewStore("test")

	store.SetScenario("Festival 2030")
	store.SetReflection("Ticket pricing dominates.")

	snap := store.Snapshot()
	assert.Equal(t, "Festival 2030", snap.Scenario)
	assert.Equal(t, "Ticket pricing dominates.", snap.Reflection)
}

func TestManager_Sessions(t *testing.T) {
	m := NewManager(time.Hour)

	first := m.Create()
	second := m.Create()
	assert.NotEqual(t, first.ID(), second.ID())
	assert.Equal(t, 2, m.Count())

	got, ok := m.Get(first.ID())
	require.True(t, ok)
	assert.Same(t, first, got)

	_, ok = m.Get("no-such-session")
	assert.False(t, ok)
}

func TestManager_GetOrCreate(t *testing.T) {
	m := NewManager(time.Hour)

	created := m.GetOrCreate("")
	assert.NotNil(t, created)

	same := m.GetOrCreate(created.ID())
	assert.Same(t, created, same)

	fresh := m.GetOrCreate("expired-or-bogus")
	assert.NotSame(t, created, fresh)
}

func TestManager_SessionIsolation(t *testing.T) {
	m := NewManager(time.Hour)

	first := m.Create()
	second := m.Create()

	_, err := first.AddRow("only in first", "1", "1")
	require.NoError(t, err)

	assert.Len(t, first.Snapshot().Rows, 5)
	assert.Len(t, second.Snapshot().Rows, 4)
}

func TestManager_Stats(t *testing.T) {
	m := NewManager(30 * time.Minute)
	m.Create()

	stats := m.Stats()
	assert.Equal(t, 1, stats["live_sessions"])
	assert.Equal(t, 1800.0, stats["ttl_seconds"])
}
