package callscheduler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/call-rota/pkg/core/model"
)

func TestRoster_WithPGYFollowsTransitions(t *testing.T) {
	r, err := newRoster([]model.Resident{
		{Name: "Alice", PGY: 2},
		{Name: "Bob", PGY: 2, Transition: &model.Transition{Date: day("2024-01-10"), PGY: 3}},
		{Name: "Cara", PGY: 3},
	})
	require.NoError(t, err)

	// The new PGY applies strictly after the transition date
	assert.Equal(t, []residentID{0, 1}, r.withPGY(2, day("2024-01-10")))
	assert.Equal(t, []residentID{2}, r.withPGY(3, day("2024-01-10")))

	assert.Equal(t, []residentID{0}, r.withPGY(2, day("2024-01-11")))
	assert.Equal(t, []residentID{1, 2}, r.withPGY(3, day("2024-01-11")))

	assert.Equal(t, 2, r.pgy(1, day("2024-01-01")))
	assert.Equal(t, 3, r.pgy(1, day("2024-02-01")))
	assert.Nil(t, r.withPGY(5, day("2024-01-01")))
}

func TestRoster_MultipleTransitionSegments(t *testing.T) {
	r, err := newRoster([]model.Resident{
		{Name: "Alice", PGY: 1, Transition: &model.Transition{Date: day("2024-02-01"), PGY: 2}},
		{Name: "Bob", PGY: 3, Transition: &model.Transition{Date: day("2024-01-15"), PGY: 4}},
	})
	require.NoError(t, err)

	assert.Len(t, r.segments, 3)
	assert.Equal(t, []residentID{0}, r.withPGY(1, day("2024-01-20")))
	assert.Equal(t, []residentID{1}, r.withPGY(4, day("2024-01-20")))
	assert.Equal(t, []residentID{0}, r.withPGY(2, day("2024-02-02")))
}

func TestRoster_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name      string
		residents []model.Resident
	}{
		{name: "empty", residents: nil},
		{name: "duplicate", residents: []model.Resident{{Name: "A", PGY: 2}, {Name: "A", PGY: 3}}},
		{name: "blank name", residents: []model.Resident{{Name: "  ", PGY: 2}}},
		{name: "pgy out of range", residents: []model.Resident{{Name: "A", PGY: 5}}},
		{name: "transition pgy out of range", residents: []model.Resident{{Name: "A", PGY: 2, Transition: &model.Transition{Date: day("2024-01-01"), PGY: 0}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newRoster(tt.residents)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
}

func TestRoster_LookupTrimsNames(t *testing.T) {
	r, err := newRoster([]model.Resident{{Name: " Alice ", PGY: 2}})
	require.NoError(t, err)

	id, ok := r.lookup("Alice  ")
	assert.True(t, ok)
	assert.Equal(t, "Alice", r.name(id))
	assert.Equal(t, "", r.name(noResident))
}
