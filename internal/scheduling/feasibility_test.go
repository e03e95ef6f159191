package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultWindow = Window{Start: NewClock(10, 0), End: NewClock(17, 0)}

func TestCheckFeasibilityShortfall(t *testing.T) {
	// 420 minute window, 300+60 step: one slot per day.
	first := CheckFeasibility(defaultWindow, 300, 60, 5, 10, true)
	second := CheckFeasibility(defaultWindow, 300, 60, 5, 10, true)

	assert.False(t, first.Feasible)
	assert.Equal(t, 1, first.SlotsPerDay)
	assert.Equal(t, 5, first.Available)
	assert.Equal(t, 10, first.Required)
	assert.Contains(t, first.Message(), "5 available")
	assert.Contains(t, first.Message(), "10 exams are required")
	assert.Equal(t, first, second)
}

func TestCheckFeasibilityOnlyBindsWithNoOverlap(t *testing.T) {
	f := CheckFeasibility(defaultWindow, 300, 60, 5, 10, false)
	assert.True(t, f.Feasible)

	f = CheckFeasibility(defaultWindow, 75, 15, 5, 20, true)
	assert.True(t, f.Feasible)
	assert.Equal(t, 4, f.SlotsPerDay)
	assert.Equal(t, 20, f.Available)
}

func TestCandidateStartsMatchesSlotsPerDay(t *testing.T) {
	starts := CandidateStarts(defaultWindow, 75, 15)

	require.Len(t, starts, SlotsPerDay(defaultWindow, 75, 15))
	assert.Equal(t, []Clock{NewClock(10, 0), NewClock(11, 30), NewClock(13, 0), NewClock(14, 30)}, starts)
}

func TestCandidateStartsEmptyForOversizedExam(t *testing.T) {
	assert.Empty(t, CandidateStarts(defaultWindow, 480, 0))
	assert.Empty(t, CandidateStarts(defaultWindow, 0, 0))
}
