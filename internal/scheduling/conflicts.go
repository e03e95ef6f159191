package scheduling

// ConflictDetector answers whether a course shares at least one enrolled
// student with any of the given courses.
type ConflictDetector interface {
	SharesStudents(courseID string, others []string) bool
}

// EnrollmentIndex is an in-memory ConflictDetector built from enrollment
// pairs loaded before placement starts.
type EnrollmentIndex struct {
	students map[string]map[string]struct{}
}

// NewEnrollmentIndex creates an empty index.
func NewEnrollmentIndex() *EnrollmentIndex {
	return &EnrollmentIndex{students: make(map[string]map[string]struct{})}
}

// Add records that studentID is enrolled in courseID.
func (x *EnrollmentIndex) Add(courseID, studentID string) {
	set, ok := x.students[courseID]
	if !ok {
		set = make(map[string]struct{})
		x.students[courseID] = set
	}
	set[studentID] = struct{}{}
}

// Count returns the number of distinct students enrolled in courseID.
func (x *EnrollmentIndex) Count(courseID string) int {
	return len(x.students[courseID])
}

// SharesStudents implements ConflictDetector.
func (x *EnrollmentIndex) SharesStudents(courseID string, others []string) bool {
	mine := x.students[courseID]
	if len(mine) == 0 {
		return false
	}
	for _, other := range others {
		if other == courseID {
			continue
		}
		theirs := x.students[other]
		small, large := mine, theirs
		if len(theirs) < len(mine) {
			small, large = theirs, mine
		}
		for student := range small {
			if _, ok := large[student]; ok {
				return true
			}
		}
	}
	return false
}

type noConflicts struct{}

func (noConflicts) SharesStudents(string, []string) bool { return false }
