package seating

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeStudents(n int) []Student {
	students := make([]Student, n)
	for i := range students {
		students[i] = Student{
			ID:     fmt.Sprintf("st-%03d", i),
			Number: fmt.Sprintf("2024%03d", i),
			Name:   fmt.Sprintf("Student%03d Family%03d", i, i),
		}
	}
	return students
}

func TestPlanSingleRoomFullGrid(t *testing.T) {
	room := Room{ID: "r1", Code: "A101", Capacity: 25, Rows: 5, Columns: 5, Groups: []int{1, 1, 1, 1, 1}}

	plan, err := NewPlanner().Plan(makeStudents(25), []Room{room})

	require.NoError(t, err)
	require.Len(t, plan.Seats, 25)
	assert.Empty(t, plan.Warnings)
	for i, seat := range plan.Seats {
		assert.Equal(t, i/5+1, seat.Row)
		assert.Equal(t, i%5+1, seat.Column)
		assert.Equal(t, "A101", seat.RoomCode)
	}
	assert.Equal(t, 5, plan.Seats[24].Row)
	assert.Equal(t, 5, plan.Seats[24].Column)
}

func TestPlanCapacityShortfall(t *testing.T) {
	_, err := NewPlanner().Plan(makeStudents(31), []Room{
		{ID: "r1", Code: "A", Capacity: 20, Rows: 4, Columns: 5},
		{ID: "r2", Code: "B", Capacity: 10, Rows: 2, Columns: 5},
	})
	assert.ErrorIs(t, err, ErrCapacityShortfall)
}

func TestPlanNoRooms(t *testing.T) {
	_, err := NewPlanner().Plan(makeStudents(1), nil)
	assert.ErrorIs(t, err, ErrNoRooms)
}

func TestPlanNoStudents(t *testing.T) {
	plan, err := NewPlanner().Plan(nil, []Room{{ID: "r1", Code: "A", Capacity: 10}})
	require.NoError(t, err)
	assert.Empty(t, plan.Seats)
	assert.Len(t, plan.Rooms, 1)
	require.Len(t, plan.Warnings, 1)
	assert.Equal(t, WarningNoStudent, plan.Warnings[0].Kind)
}

func TestPlanSpillsOverLargestFirst(t *testing.T) {
	small := Room{ID: "r2", Code: "B", Capacity: 10, Rows: 2, Columns: 5}
	large := Room{ID: "r1", Code: "A", Capacity: 20, Rows: 4, Columns: 5}
	idle := Room{ID: "r3", Code: "C", Capacity: 5, Rows: 1, Columns: 5}

	plan, err := NewPlanner().Plan(makeStudents(25), []Room{small, idle, large})

	require.NoError(t, err)
	require.Len(t, plan.Seats, 25)
	assert.Equal(t, "A", plan.Seats[0].RoomCode)
	assert.Equal(t, "B", plan.Seats[20].RoomCode)
	assert.Equal(t, 1, plan.Seats[20].Row)
	assert.Equal(t, 1, plan.Seats[20].Column)

	require.Len(t, plan.Rooms, 3)
	assert.Empty(t, plan.Rooms[2].Seats)

	kinds := map[WarningKind]int{}
	for _, w := range plan.Warnings {
		kinds[w.Kind]++
	}
	assert.Equal(t, 1, kinds[WarningSpillover])
	assert.Equal(t, 1, kinds[WarningIdleRoom])
}

func TestPlanUsesFillPatternForRowWidth(t *testing.T) {
	// Three columns of pairs: one usable seat each, so three per row.
	room := Room{ID: "r1", Code: "L1", Capacity: 12, Rows: 4, Columns: 3, Groups: []int{2, 2, 2}}

	plan, err := NewPlanner().Plan(makeStudents(7), []Room{room})

	require.NoError(t, err)
	assert.Equal(t, 3, plan.Rooms[0].SeatsPerRow)
	assert.Equal(t, 3, plan.Seats[6].Row)
	assert.Equal(t, 1, plan.Seats[6].Column)
}

func TestPlanCapsCapacityToGrid(t *testing.T) {
	room := Room{ID: "r1", Code: "L1", Capacity: 50, Rows: 2, Columns: 2, Groups: []int{3, 3}}
	assert.Equal(t, 8, room.EffectiveCapacity())

	_, err := NewPlanner().Plan(makeStudents(9), []Room{room})
	assert.ErrorIs(t, err, ErrCapacityShortfall)
}

func TestPlanSurnameAdjacency(t *testing.T) {
	students := []Student{
		{ID: "1", Number: "1", Name: "Ayse Yilmaz"},
		{ID: "2", Number: "2", Name: "Mehmet YILMAZ"},
		{ID: "3", Number: "3", Name: "Can Demir"},
		{ID: "4", Number: "4", Name: "Ali Demir"},
	}
	room := Room{ID: "r1", Code: "A", Capacity: 4, Rows: 2, Columns: 2}

	plan, err := NewPlanner().Plan(students, []Room{room})

	require.NoError(t, err)
	require.Len(t, plan.Warnings, 2)
	assert.Equal(t, WarningSurname, plan.Warnings[0].Kind)
	assert.Contains(t, plan.Warnings[0].Message, "Ayse Yilmaz")
}

func TestPlanSurnameAcrossRowsIgnored(t *testing.T) {
	students := []Student{
		{ID: "1", Name: "A Kaya"},
		{ID: "2", Name: "B Kaya"},
	}
	plan, err := NewPlanner().Plan(students, []Room{{ID: "r1", Code: "A", Capacity: 2, Rows: 2, Columns: 1}})
	require.NoError(t, err)
	assert.Empty(t, plan.Warnings)
}

func TestPlanInvariants(t *testing.T) {
	rooms := []Room{
		{ID: "r1", Code: "A", Capacity: 30, Rows: 5, Columns: 3, Groups: []int{3, 3, 2}},
		{ID: "r2", Code: "B", Capacity: 24, Rows: 6, Columns: 4},
		{ID: "r3", Code: "C", Capacity: 18, Rows: 3, Columns: 3, Groups: []int{4, 4, 4}},
	}
	students := makeStudents(40)

	plan, err := NewPlanner().Plan(students, rooms)

	require.NoError(t, err)
	assert.Len(t, plan.Seats, len(students))
	seen := map[string]bool{}
	perRoom := map[string]int{}
	for _, seat := range plan.Seats {
		assert.False(t, seen[seat.Student.ID])
		seen[seat.Student.ID] = true
		perRoom[seat.RoomID]++
	}
	for _, rp := range plan.Rooms {
		assert.LessOrEqual(t, perRoom[rp.Room.ID], rp.Capacity)
		assert.LessOrEqual(t, rp.Capacity, rp.Room.Capacity)
	}
}

func TestFillPattern(t *testing.T) {
	assert.Equal(t, []int{1, 0}, FillPattern(2))
	assert.Equal(t, []int{1, 0, 1}, FillPattern(3))
	assert.Equal(t, []int{1, 0, 0, 1}, FillPattern(4))
	assert.Equal(t, []int{1, 1, 1, 1, 1}, FillPattern(5))
	assert.Equal(t, []int{1}, FillPattern(1))
	assert.Nil(t, FillPattern(0))

	assert.Equal(t, 2, UsableSeats(3))
	assert.Equal(t, 2, UsableSeats(4))
	assert.Equal(t, 5, SeatsPerRow([]int{2, 3, 4}))
	assert.Equal(t, 20, DeriveCapacity(4, []int{2, 3, 4}))
	assert.Equal(t, 0, DeriveCapacity(0, []int{2}))
}
