package scheduling

import "strings"

// UnknownCohort collects courses without a class label.
const UnknownCohort = "UNKNOWN"

// Cohort is a set of courses taken by the same academic-year class.
type Cohort struct {
	Label   string
	Courses []Course
}

// GroupByCohort partitions courses by class label. Cohorts appear in the order
// their first course appears, and course order inside a cohort is preserved.
func GroupByCohort(courses []Course) []Cohort {
	index := make(map[string]int)
	var cohorts []Cohort
	for _, course := range courses {
		label := strings.TrimSpace(course.Cohort)
		if label == "" {
			label = UnknownCohort
		}
		pos, ok := index[label]
		if !ok {
			pos = len(cohorts)
			index[label] = pos
			cohorts = append(cohorts, Cohort{Label: label})
		}
		cohorts[pos].Courses = append(cohorts[pos].Courses, course)
	}
	return cohorts
}
