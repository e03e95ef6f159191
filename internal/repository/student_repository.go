package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-scheduler-api/internal/models"
)

// StudentRepository reads the students sitting an exam.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ListForExam returns students enrolled in the exam's course ordered by
// student number. When departmentScoped is set only students of the course's
// department are returned.
func (r *StudentRepository) ListForExam(ctx context.Context, examID string, departmentScoped bool) ([]models.ExamStudent, error) {
	query := `SELECT DISTINCT s.id, s.number, s.name
FROM students s
JOIN enrollments e ON e.student_id = s.id
JOIN exams ex ON ex.course_id = e.course_id`
	if departmentScoped {
		query += `
JOIN courses c ON c.id = ex.course_id
WHERE ex.id = $1 AND s.department_id = c.department_id`
	} else {
		query += `
WHERE ex.id = $1`
	}
	query += ` ORDER BY s.number`

	var students []models.ExamStudent
	if err := r.db.SelectContext(ctx, &students, query, examID); err != nil {
		return nil, fmt.Errorf("list exam students: %w", err)
	}
	return students, nil
}
