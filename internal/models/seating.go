package models

import "time"

// ExamStudent is a student sitting an exam.
type ExamStudent struct {
	ID     string `db:"id" json:"id"`
	Number string `db:"number" json:"number"`
	Name   string `db:"name" json:"name"`
}

// SeatAssignment stores one generated seat.
type SeatAssignment struct {
	ID          string    `db:"id" json:"id"`
	ExamID      string    `db:"exam_id" json:"exam_id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	ClassroomID string    `db:"classroom_id" json:"classroom_id"`
	RowNo       int       `db:"row_no" json:"row_no"`
	ColNo       int       `db:"col_no" json:"col_no"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// SeatAssignmentDetail is a stored seat joined with student and room.
type SeatAssignmentDetail struct {
	SeatAssignment
	StudentNumber string `db:"student_number" json:"student_number"`
	StudentName   string `db:"student_name" json:"student_name"`
	RoomCode      string `db:"room_code" json:"room_code"`
}
