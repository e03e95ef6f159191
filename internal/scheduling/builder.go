package scheduling

import (
	"errors"
	"time"
)

var (
	// ErrNoWorkdays is returned when the date range has no eligible day.
	ErrNoWorkdays = errors.New("no eligible exam days in the selected range")
	// ErrNoCourses is returned when there is nothing to schedule.
	ErrNoCourses = errors.New("no courses found to schedule")
	// ErrNoRooms is returned when the department has no classrooms.
	ErrNoRooms = errors.New("no classrooms available")
	// ErrCapacityShortfall is returned when the slot-days cannot hold every exam.
	ErrCapacityShortfall = errors.New("not enough exam slots for the requested courses")
	// ErrInvalidDuration is returned for a non-positive default duration.
	ErrInvalidDuration = errors.New("exam duration must be positive")
)

// FailureKind separates run-level configuration errors from per-course
// placement failures.
type FailureKind string

const (
	FailureConfiguration FailureKind = "configuration"
	FailurePlacement     FailureKind = "placement"
)

// Failure is one reason a run did not produce a schedule.
type Failure struct {
	Kind       FailureKind `json:"kind"`
	CourseCode string      `json:"courseCode,omitempty"`
	Reason     string      `json:"reason,omitempty"`
	Message    string      `json:"message"`
	Err        error       `json:"-"`
}

// Outcome holds either Placements or Failures, never both.
type Outcome struct {
	Placements  []Placement
	Failures    []Failure
	Feasibility *Feasibility
	Workdays    int
}

// Failed reports whether the run produced no schedule.
func (o Outcome) Failed() bool {
	return len(o.Failures) > 0
}

// Kind returns the kind of the first failure, or "" on success.
func (o Outcome) Kind() FailureKind {
	if len(o.Failures) == 0 {
		return ""
	}
	return o.Failures[0].Kind
}

// Err returns the sentinel of a configuration failure.
func (o Outcome) Err() error {
	if len(o.Failures) == 0 {
		return nil
	}
	return o.Failures[0].Err
}

// Messages lists every failure message in order.
func (o Outcome) Messages() []string {
	messages := make([]string, len(o.Failures))
	for i, f := range o.Failures {
		messages[i] = f.Message
	}
	return messages
}

func configurationFailure(err error, message string) Outcome {
	return Outcome{Failures: []Failure{{Kind: FailureConfiguration, Message: message, Err: err}}}
}

// Input is one scheduling run.
type Input struct {
	StartDate        time.Time
	EndDate          time.Time
	ExcludedWeekdays []string
	Courses          []Course
	Rooms            []Room
	Existing         []ExistingExam
	Params           Params
	Conflicts        ConflictDetector
	Random           RandomSource
}

// Builder validates a run and hands it to a Solver.
type Builder struct {
	solver Solver
}

// NewBuilder creates a Builder; a nil solver selects GreedySolver.
func NewBuilder(solver Solver) *Builder {
	if solver == nil {
		solver = GreedySolver{}
	}
	return &Builder{solver: solver}
}

// Build runs the configuration checks in order and, when they pass, the solver.
func (b *Builder) Build(in Input) Outcome {
	days := Workdays(in.StartDate, in.EndDate, in.ExcludedWeekdays)
	if len(days) == 0 {
		return configurationFailure(ErrNoWorkdays, "no eligible exam days in the selected range (all days excluded)")
	}
	if len(in.Courses) == 0 {
		return configurationFailure(ErrNoCourses, "no courses found for the department and selection")
	}
	if len(in.Rooms) == 0 {
		return configurationFailure(ErrNoRooms, "no classrooms found for the department")
	}
	if in.Params.DefaultDuration <= 0 {
		return configurationFailure(ErrInvalidDuration, "exam duration must be greater than zero minutes")
	}

	feasibility := CheckFeasibility(in.Params.Window, in.Params.DefaultDuration, in.Params.Gap, len(days), len(in.Courses), in.Params.NoOverlap)
	if !feasibility.Feasible {
		out := configurationFailure(ErrCapacityShortfall, feasibility.Message())
		out.Feasibility = &feasibility
		out.Workdays = len(days)
		return out
	}

	random := in.Random
	if random == nil {
		random = NewRandomSource(0)
	}
	out := b.solver.Solve(Problem{
		Days:      days,
		Courses:   in.Courses,
		Rooms:     in.Rooms,
		Existing:  in.Existing,
		Params:    in.Params,
		Conflicts: in.Conflicts,
		Random:    random,
	})
	out.Feasibility = &feasibility
	out.Workdays = len(days)
	return out
}
