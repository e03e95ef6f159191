package models

import (
	"time"

	"github.com/lib/pq"
)

// ExamStatus represents the lifecycle of a persisted exam.
type ExamStatus string

const (
	ExamStatusPlanned   ExamStatus = "PLANNED"
	ExamStatusCancelled ExamStatus = "CANCELLED"
)

// ExamTerm groups the exams produced by one committed scheduling run.
type ExamTerm struct {
	ID                 string    `db:"id" json:"id"`
	DepartmentID       string    `db:"department_id" json:"department_id"`
	Name               string    `db:"name" json:"name"`
	ExamType           string    `db:"exam_type" json:"exam_type"`
	DateStart          time.Time `db:"date_start" json:"date_start"`
	DateEnd            time.Time `db:"date_end" json:"date_end"`
	DefaultDurationMin int       `db:"default_duration_min" json:"default_duration_min"`
	MinGapMin          int       `db:"min_gap_min" json:"min_gap_min"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// TimeSlot is a (start, end) window shared by exams of a term.
type TimeSlot struct {
	ID         string    `db:"id" json:"id"`
	ExamTermID string    `db:"exam_term_id" json:"exam_term_id"`
	StartsAt   time.Time `db:"starts_at" json:"starts_at"`
	EndsAt     time.Time `db:"ends_at" json:"ends_at"`
}

// Exam is a placed course.
type Exam struct {
	ID         string     `db:"id" json:"id"`
	CourseID   string     `db:"course_id" json:"course_id"`
	ExamTermID string     `db:"exam_term_id" json:"exam_term_id"`
	TimeSlotID string     `db:"timeslot_id" json:"timeslot_id"`
	Status     ExamStatus `db:"status" json:"status"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// ExamDetail joins an exam with its course, slot and room codes.
type ExamDetail struct {
	ID             string         `db:"id" json:"id"`
	ExamTermID     string         `db:"exam_term_id" json:"exam_term_id"`
	CourseID       string         `db:"course_id" json:"course_id"`
	CourseCode     string         `db:"course_code" json:"course_code"`
	CourseName     string         `db:"course_name" json:"course_name"`
	InstructorName string         `db:"instructor_name" json:"instructor_name"`
	ClassName      string         `db:"class_name" json:"class_name"`
	ExamType       string         `db:"exam_type" json:"exam_type"`
	StudentCount   int            `db:"student_count" json:"student_count"`
	StartsAt       time.Time      `db:"starts_at" json:"starts_at"`
	EndsAt         time.Time      `db:"ends_at" json:"ends_at"`
	Status         ExamStatus     `db:"status" json:"status"`
	RoomCodes      pq.StringArray `db:"room_codes" json:"room_codes"`
}

// PlacedExam is the occupancy footprint of a persisted exam.
type PlacedExam struct {
	ExamID       string         `db:"exam_id"`
	CourseID     string         `db:"course_id"`
	StartsAt     time.Time      `db:"starts_at"`
	EndsAt       time.Time      `db:"ends_at"`
	ClassroomIDs pq.StringArray `db:"classroom_ids"`
}
