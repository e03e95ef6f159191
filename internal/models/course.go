package models

// Course is a schedulable course with its enrollment count.
type Course struct {
	ID             string `db:"id" json:"id"`
	DepartmentID   string `db:"department_id" json:"department_id"`
	Code           string `db:"code" json:"code"`
	Name           string `db:"name" json:"name"`
	InstructorName string `db:"instructor_name" json:"instructor_name"`
	ClassName      string `db:"class_name" json:"class_name"`
	StudentCount   int    `db:"student_count" json:"student_count"`
}

// EnrollmentPair links a student to a course.
type EnrollmentPair struct {
	CourseID  string `db:"course_id"`
	StudentID string `db:"student_id"`
}

// Classroom is a room with its physical layout.
type Classroom struct {
	ID           string `db:"id" json:"id"`
	DepartmentID string `db:"department_id" json:"department_id"`
	Code         string `db:"code" json:"code"`
	Capacity     int    `db:"capacity" json:"capacity"`
	NumRows      int    `db:"num_rows" json:"num_rows"`
	NumCols      int    `db:"num_cols" json:"num_cols"`
	SeatGroup    int    `db:"seat_group" json:"seat_group"`
	// Columns holds per-column seat groups, left to right.
	Columns []int `db:"-" json:"columns,omitempty"`
}

// ClassroomColumn overrides the seat group of one column.
type ClassroomColumn struct {
	ClassroomID string `db:"classroom_id"`
	ColIndex    int    `db:"col_index"`
	SeatGroup   int    `db:"seat_group"`
}
