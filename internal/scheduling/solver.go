package scheduling

import (
	"fmt"
	"time"
)

// Placement failure reasons.
const (
	ReasonNoSlots         = "no candidate slots fit in the daily window"
	ReasonWindowOverflow  = "exam runs past the daily window"
	ReasonTimeConflict    = "time conflict with another exam"
	ReasonStudentConflict = "student conflict with an overlapping exam"
	ReasonRoomCapacity    = "insufficient free room capacity"
)

// Problem is everything a Solver needs; it is assembled by the Builder after
// the configuration checks pass.
type Problem struct {
	Days      []time.Time
	Courses   []Course
	Rooms     []Room
	Existing  []ExistingExam
	Params    Params
	Conflicts ConflictDetector
	Random    RandomSource
}

// Solver turns a Problem into placements or placement failures.
type Solver interface {
	Solve(p Problem) Outcome
}

// GreedySolver places courses cohort by cohort, first fit by day then by
// slot, without backtracking.
type GreedySolver struct{}

// Solve implements Solver.
func (GreedySolver) Solve(p Problem) Outcome {
	conflicts := p.Conflicts
	if conflicts == nil {
		conflicts = noConflicts{}
	}
	rooms := SortRooms(p.Rooms)
	occupancy := NewOccupancy(p.Existing)
	starts := CandidateStarts(p.Params.Window, p.Params.DefaultDuration, p.Params.Gap)

	var placements []Placement
	var failures []Failure
	for _, cohort := range GroupByCohort(p.Courses) {
		days := AssignDays(len(cohort.Courses), p.Days, p.Random)
		for i, course := range cohort.Courses {
			placement, reason := placeCourse(course, days[i], starts, rooms, occupancy, conflicts, p.Params)
			if reason != "" {
				failures = append(failures, Failure{
					Kind:       FailurePlacement,
					CourseCode: course.Code,
					Reason:     reason,
					Message:    fmt.Sprintf("%s on %s: %s", course.Code, dateKey(days[i]), reason),
				})
				continue
			}
			occupancy.Book(course.ID, placement.Date, placement.Start, placement.End, roomIDs(placement.Rooms))
			placements = append(placements, placement)
		}
	}

	if len(failures) > 0 {
		return Outcome{Failures: failures}
	}
	return Outcome{Placements: placements}
}

// placeCourse returns the first slot on day that passes every check, or the
// blocking reason at the last attempted slot.
func placeCourse(course Course, day time.Time, starts []Clock, rooms []Room, occupancy *Occupancy, conflicts ConflictDetector, params Params) (Placement, string) {
	duration := params.DurationFor(course.Code)
	reason := ReasonNoSlots
	for _, start := range starts {
		end := start.Add(duration)
		if end > params.Window.End {
			reason = ReasonWindowOverflow
			continue
		}
		if params.NoOverlap && occupancy.AnyOverlap(day, start, end) {
			reason = ReasonTimeConflict
			continue
		}
		if others := occupancy.CoursesOverlapping(day, start, end); len(others) > 0 && conflicts.SharesStudents(course.ID, others) {
			reason = ReasonStudentConflict
			continue
		}
		assigned := AssignRooms(course.StudentCount, rooms, occupancy, day, start, end, params.Gap)
		if assigned == nil {
			reason = ReasonRoomCapacity
			continue
		}
		return Placement{
			Course:   course,
			Date:     day,
			Start:    start,
			End:      end,
			Duration: duration,
			ExamType: params.ExamType,
			Rooms:    assigned,
		}, ""
	}
	return Placement{}, reason
}
