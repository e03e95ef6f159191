package scheduling

import "time"

// Course is a schedulable course with its derived enrollment count.
type Course struct {
	ID           string
	Code         string
	Name         string
	Instructor   string
	Cohort       string
	StudentCount int
}

// Room is a classroom that can host an exam.
type Room struct {
	ID       string
	Code     string
	Capacity int
}

// ExistingExam is an exam persisted before the run. It blocks rooms, time
// windows and students but is never emitted as a placement.
type ExistingExam struct {
	CourseID string
	Date     time.Time
	Start    Clock
	End      Clock
	RoomIDs  []string
}

// Placement is a course placed on a date and time window in one or more rooms.
type Placement struct {
	Course   Course
	Date     time.Time
	Start    Clock
	End      Clock
	Duration int
	ExamType string
	Rooms    []Room
}

// Capacity sums the capacity of the assigned rooms.
func (p Placement) Capacity() int {
	total := 0
	for _, room := range p.Rooms {
		total += room.Capacity
	}
	return total
}

// StartsAt returns the absolute start instant.
func (p Placement) StartsAt() time.Time {
	return p.Start.On(p.Date)
}

// EndsAt returns the absolute end instant.
func (p Placement) EndsAt() time.Time {
	return p.End.On(p.Date)
}

// Params are the per-run tuning knobs supplied by the caller.
type Params struct {
	Window          Window
	DefaultDuration int
	Gap             int
	NoOverlap       bool
	ExamType        string
	// CustomDurations overrides DefaultDuration per course code.
	CustomDurations map[string]int
}

// DurationFor returns the exam length for a course code.
func (p Params) DurationFor(code string) int {
	if d, ok := p.CustomDurations[code]; ok && d > 0 {
		return d
	}
	return p.DefaultDuration
}
