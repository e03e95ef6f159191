package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-scheduler-api/internal/models"
)

// SeatingRepository stores generated seat assignments.
type SeatingRepository struct {
	db *sqlx.DB
}

// NewSeatingRepository constructs the repository.
func NewSeatingRepository(db *sqlx.DB) *SeatingRepository {
	return &SeatingRepository{db: db}
}

// ReplaceForExam deletes the exam's stored seats and inserts the new set in
// one batch.
func (r *SeatingRepository) ReplaceForExam(ctx context.Context, exec sqlx.ExtContext, examID string, seats []models.SeatAssignment) error {
	if exec == nil {
		exec = r.db
	}
	if _, err := exec.ExecContext(ctx, `DELETE FROM seat_assignments WHERE exam_id = $1`, examID); err != nil {
		return fmt.Errorf("clear seat assignments: %w", err)
	}
	if len(seats) == 0 {
		return nil
	}

	now := time.Now().UTC()
	for i := range seats {
		seats[i].ExamID = examID
		if seats[i].ID == "" {
			seats[i].ID = uuid.NewString()
		}
		if seats[i].CreatedAt.IsZero() {
			seats[i].CreatedAt = now
		}
	}
	const query = `INSERT INTO seat_assignments (id, exam_id, student_id, classroom_id, row_no, col_no, created_at)
VALUES (:id, :exam_id, :student_id, :classroom_id, :row_no, :col_no, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, seats); err != nil {
		return fmt.Errorf("insert seat assignments: %w", err)
	}
	return nil
}

// ListByExam returns stored seats in room, row, column order.
func (r *SeatingRepository) ListByExam(ctx context.Context, examID string) ([]models.SeatAssignmentDetail, error) {
	const query = `SELECT sa.id, sa.exam_id, sa.student_id, sa.classroom_id, sa.row_no, sa.col_no, sa.created_at,
s.number AS student_number, s.name AS student_name, r.code AS room_code
FROM seat_assignments sa
JOIN students s ON s.id = sa.student_id
JOIN classrooms r ON r.id = sa.classroom_id
WHERE sa.exam_id = $1
ORDER BY r.capacity DESC, r.code, sa.row_no, sa.col_no`
	var seats []models.SeatAssignmentDetail
	if err := r.db.SelectContext(ctx, &seats, query, examID); err != nil {
		return nil, fmt.Errorf("list seat assignments: %w", err)
	}
	return seats, nil
}
