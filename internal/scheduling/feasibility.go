package scheduling

import "fmt"

// Feasibility is the outcome of the cheap capacity pre-check run before any
// placement work. Passing it does not guarantee a schedule exists.
type Feasibility struct {
	SlotsPerDay int  `json:"slotsPerDay"`
	Days        int  `json:"days"`
	Available   int  `json:"available"`
	Required    int  `json:"required"`
	NoOverlap   bool `json:"noOverlap"`
	Feasible    bool `json:"feasible"`
}

// SlotsPerDay is floor(window / (duration+gap)).
func SlotsPerDay(window Window, duration, gap int) int {
	step := duration + gap
	if step <= 0 || duration <= 0 {
		return 0
	}
	return window.Minutes() / step
}

// CheckFeasibility rejects a run only when exams may not share a time window
// and there are more exams than slot-days.
func CheckFeasibility(window Window, duration, gap, days, required int, noOverlap bool) Feasibility {
	perDay := SlotsPerDay(window, duration, gap)
	f := Feasibility{
		SlotsPerDay: perDay,
		Days:        days,
		Available:   perDay * days,
		Required:    required,
		NoOverlap:   noOverlap,
	}
	f.Feasible = !noOverlap || f.Required <= f.Available
	return f
}

// Message explains a failed check with the numbers involved.
func (f Feasibility) Message() string {
	if f.Feasible {
		return fmt.Sprintf("%d exams fit in %d available slots", f.Required, f.Available)
	}
	return fmt.Sprintf(
		"no simultaneous exams requested: %d days x %d slots = %d available, but %d exams are required; widen the date range or reduce duration/gap",
		f.Days, f.SlotsPerDay, f.Available, f.Required,
	)
}

// CandidateStarts lists the start times tried on every day, stepping by
// duration+gap from the window start.
func CandidateStarts(window Window, duration, gap int) []Clock {
	count := SlotsPerDay(window, duration, gap)
	starts := make([]Clock, 0, count)
	for k := 0; k < count; k++ {
		starts = append(starts, window.Start.Add(k*(duration+gap)))
	}
	return starts
}
