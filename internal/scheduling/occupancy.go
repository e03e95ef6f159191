package scheduling

import "time"

type booking struct {
	courseID string
	start    Clock
	end      Clock
	rooms    map[string]struct{}
}

// Occupancy records which courses and rooms are taken on each date. It is
// seeded with existing exams and grows as the solver places courses.
type Occupancy struct {
	byDate map[string][]booking
}

// NewOccupancy builds an occupancy ledger from already persisted exams.
func NewOccupancy(existing []ExistingExam) *Occupancy {
	o := &Occupancy{byDate: make(map[string][]booking)}
	for _, exam := range existing {
		o.Book(exam.CourseID, exam.Date, exam.Start, exam.End, exam.RoomIDs)
	}
	return o
}

// Book marks the rooms as used by courseID on date between start and end.
func (o *Occupancy) Book(courseID string, date time.Time, start, end Clock, roomIDs []string) {
	if o.byDate == nil {
		o.byDate = make(map[string][]booking)
	}
	rooms := make(map[string]struct{}, len(roomIDs))
	for _, id := range roomIDs {
		rooms[id] = struct{}{}
	}
	key := dateKey(date)
	o.byDate[key] = append(o.byDate[key], booking{courseID: courseID, start: start, end: end, rooms: rooms})
}

// AnyOverlap reports whether any exam on date overlaps [start, end).
func (o *Occupancy) AnyOverlap(date time.Time, start, end Clock) bool {
	if o == nil {
		return false
	}
	for _, b := range o.byDate[dateKey(date)] {
		if overlaps(b.start, b.end, start, end) {
			return true
		}
	}
	return false
}

// CoursesOverlapping lists the course ids whose exam on date overlaps [start, end).
func (o *Occupancy) CoursesOverlapping(date time.Time, start, end Clock) []string {
	if o == nil {
		return nil
	}
	var ids []string
	for _, b := range o.byDate[dateKey(date)] {
		if overlaps(b.start, b.end, start, end) {
			ids = append(ids, b.courseID)
		}
	}
	return ids
}

// RoomBusy reports whether roomID is used on date within the window widened
// by gap minutes on both sides.
func (o *Occupancy) RoomBusy(roomID string, date time.Time, start, end Clock, gap int) bool {
	if o == nil {
		return false
	}
	for _, b := range o.byDate[dateKey(date)] {
		if _, ok := b.rooms[roomID]; !ok {
			continue
		}
		if !(end.Add(gap) <= b.start || start >= b.end.Add(gap)) {
			return true
		}
	}
	return false
}
