package seating

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrCapacityShortfall is returned when the rooms cannot seat every student.
	ErrCapacityShortfall = errors.New("room capacity is smaller than the number of students")
	// ErrNoRooms is returned when students must be seated but no room is assigned.
	ErrNoRooms = errors.New("exam has no assigned rooms")
)

// Student is a student sitting the exam, ordered by Number.
type Student struct {
	ID     string
	Number string
	Name   string
}

// Room is an exam room with its physical layout. Groups holds the seat-group
// size of each column, left to right.
type Room struct {
	ID       string
	Code     string
	Capacity int
	Rows     int
	Columns  int
	Groups   []int
}

// SeatsPerRow is the number of students a row can hold; without a column
// layout every column holds one student.
func (r Room) SeatsPerRow() int {
	if n := SeatsPerRow(r.Groups); n > 0 {
		return n
	}
	if r.Columns > 0 {
		return r.Columns
	}
	return r.Capacity
}

// EffectiveCapacity never exceeds the seats the grid can physically hold.
func (r Room) EffectiveCapacity() int {
	capacity := r.Capacity
	perRow := r.SeatsPerRow()
	if r.Rows > 0 && perRow > 0 {
		grid := r.Rows * perRow
		if capacity <= 0 || grid < capacity {
			capacity = grid
		}
	}
	if capacity < 0 {
		return 0
	}
	return capacity
}

// Seat places one student; Row and Column are 1-based sequential indices.
type Seat struct {
	Student  Student
	RoomID   string
	RoomCode string
	Row      int
	Column   int
}

// WarningKind classifies a soft seating warning.
type WarningKind string

const (
	WarningSpillover WarningKind = "spillover"
	WarningIdleRoom  WarningKind = "idle_room"
	WarningSurname   WarningKind = "surname_adjacent"
	WarningNoStudent WarningKind = "no_students"
)

// Warning is informational and never aborts a plan.
type Warning struct {
	Kind     WarningKind `json:"kind"`
	RoomCode string      `json:"roomCode,omitempty"`
	Message  string      `json:"message"`
}

// RoomPlan is one room with the seats assigned in it. Rooms without students
// are kept so charts can still render them.
type RoomPlan struct {
	Room        Room
	SeatsPerRow int
	Capacity    int
	Seats       []Seat
}

// Plan is the result of a seating run.
type Plan struct {
	Seats    []Seat
	Rooms    []RoomPlan
	Warnings []Warning
}

// Planner assigns students to seats. It keeps no state between calls.
type Planner struct{}

// NewPlanner returns a Planner.
func NewPlanner() *Planner {
	return &Planner{}
}

// Plan seats students in order, filling rooms from the largest down.
func (p *Planner) Plan(students []Student, rooms []Room) (*Plan, error) {
	ordered := make([]Room, len(rooms))
	copy(ordered, rooms)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].EffectiveCapacity() > ordered[j].EffectiveCapacity()
	})

	plan := &Plan{Rooms: make([]RoomPlan, 0, len(ordered))}
	if len(students) == 0 {
		for _, room := range ordered {
			plan.Rooms = append(plan.Rooms, RoomPlan{Room: room, SeatsPerRow: room.SeatsPerRow(), Capacity: room.EffectiveCapacity()})
		}
		plan.Warnings = append(plan.Warnings, Warning{Kind: WarningNoStudent, Message: "no students are enrolled for this exam"})
		return plan, nil
	}
	if len(ordered) == 0 {
		return nil, ErrNoRooms
	}

	total := 0
	for _, room := range ordered {
		total += room.EffectiveCapacity()
	}
	if total < len(students) {
		return nil, fmt.Errorf("%w: capacity %d, students %d", ErrCapacityShortfall, total, len(students))
	}

	next := 0
	for _, room := range ordered {
		rp := RoomPlan{Room: room, SeatsPerRow: room.SeatsPerRow(), Capacity: room.EffectiveCapacity()}
		end := next + rp.Capacity
		if end > len(students) {
			end = len(students)
		}
		for i, student := range students[next:end] {
			seat := Seat{
				Student:  student,
				RoomID:   room.ID,
				RoomCode: room.Code,
				Row:      i/rp.SeatsPerRow + 1,
				Column:   i%rp.SeatsPerRow + 1,
			}
			rp.Seats = append(rp.Seats, seat)
			plan.Seats = append(plan.Seats, seat)
		}
		next = end

		switch {
		case len(rp.Seats) == 0:
			plan.Warnings = append(plan.Warnings, Warning{
				Kind:     WarningIdleRoom,
				RoomCode: room.Code,
				Message:  fmt.Sprintf("room %s received no students (%d seats unused)", room.Code, rp.Capacity),
			})
		case next < len(students):
			plan.Warnings = append(plan.Warnings, Warning{
				Kind:     WarningSpillover,
				RoomCode: room.Code,
				Message:  fmt.Sprintf("room %s is full; %d students continue in the next room", room.Code, len(students)-next),
			})
		}
		plan.Rooms = append(plan.Rooms, rp)
	}

	plan.Warnings = append(plan.Warnings, surnameWarnings(plan.Seats)...)
	return plan, nil
}

// surnameWarnings flags consecutive seats in the same room and row whose
// holders share a surname. Only the last name token is compared.
func surnameWarnings(seats []Seat) []Warning {
	var warnings []Warning
	for i := 1; i < len(seats); i++ {
		prev, curr := seats[i-1], seats[i]
		if prev.RoomID != curr.RoomID || prev.Row != curr.Row {
			continue
		}
		a, b := Surname(prev.Student.Name), Surname(curr.Student.Name)
		if a == "" || !strings.EqualFold(a, b) {
			continue
		}
		warnings = append(warnings, Warning{
			Kind:     WarningSurname,
			RoomCode: curr.RoomCode,
			Message:  fmt.Sprintf("%s and %s share a surname and sit next to each other (%s, row %d)", prev.Student.Name, curr.Student.Name, curr.RoomCode, curr.Row),
		})
	}
	return warnings
}

// Surname returns the last whitespace-separated token of a display name.
func Surname(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
