package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-scheduler-api/internal/models"
)

const examDetailSelect = `SELECT ex.id, ex.exam_term_id, ex.course_id, c.code AS course_code, c.name AS course_name,
COALESCE(c.instructor_name, '') AS instructor_name, COALESCE(c.class_name, '') AS class_name,
et.exam_type,
(SELECT COUNT(DISTINCT e.student_id) FROM enrollments e WHERE e.course_id = c.id) AS student_count,
t.starts_at, t.ends_at, ex.status,
ARRAY(SELECT r.code FROM exam_rooms er JOIN classrooms r ON r.id = er.classroom_id
WHERE er.exam_id = ex.id ORDER BY r.capacity DESC, r.code) AS room_codes
FROM exams ex
JOIN courses c ON c.id = ex.course_id
JOIN exam_terms et ON et.id = ex.exam_term_id
JOIN timeslots t ON t.id = ex.timeslot_id`

const examTermColumns = `id, department_id, name, exam_type, date_start, date_end, default_duration_min, min_gap_min, created_at`

// ExamRepository persists exam terms, time slots, exams and their rooms.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository constructs the repository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

func (r *ExamRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateTerm inserts a new exam term.
func (r *ExamRepository) CreateTerm(ctx context.Context, exec sqlx.ExtContext, term *models.ExamTerm) error {
	if term == nil {
		return fmt.Errorf("exam term payload is nil")
	}
	if term.ID == "" {
		term.ID = uuid.NewString()
	}
	if term.CreatedAt.IsZero() {
		term.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO exam_terms (` + examTermColumns + `)
VALUES (:id, :department_id, :name, :exam_type, :date_start, :date_end, :default_duration_min, :min_gap_min, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, term); err != nil {
		return fmt.Errorf("insert exam term: %w", err)
	}
	return nil
}

// CreateTimeSlot inserts a time slot for a term.
func (r *ExamRepository) CreateTimeSlot(ctx context.Context, exec sqlx.ExtContext, slot *models.TimeSlot) error {
	if slot == nil {
		return fmt.Errorf("time slot payload is nil")
	}
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	const query = `INSERT INTO timeslots (id, exam_term_id, starts_at, ends_at) VALUES (:id, :exam_term_id, :starts_at, :ends_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, slot); err != nil {
		return fmt.Errorf("insert time slot: %w", err)
	}
	return nil
}

// CreateExam inserts an exam; status defaults to PLANNED.
func (r *ExamRepository) CreateExam(ctx context.Context, exec sqlx.ExtContext, exam *models.Exam) error {
	if exam == nil {
		return fmt.Errorf("exam payload is nil")
	}
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	if exam.Status == "" {
		exam.Status = models.ExamStatusPlanned
	}
	if exam.CreatedAt.IsZero() {
		exam.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO exams (id, course_id, exam_term_id, timeslot_id, status, created_at)
VALUES (:id, :course_id, :exam_term_id, :timeslot_id, :status, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, exam); err != nil {
		return fmt.Errorf("insert exam: %w", err)
	}
	return nil
}

// AddExamRooms links the exam to each classroom.
func (r *ExamRepository) AddExamRooms(ctx context.Context, exec sqlx.ExtContext, examID string, classroomIDs []string) error {
	target := r.exec(exec)
	const query = `INSERT INTO exam_rooms (exam_id, classroom_id) VALUES ($1, $2)`
	for _, classroomID := range classroomIDs {
		if _, err := target.ExecContext(ctx, query, examID, classroomID); err != nil {
			return fmt.Errorf("insert exam room: %w", err)
		}
	}
	return nil
}

// ListPlacedBetween returns every active exam starting in [from, to) with
// the classrooms it occupies.
func (r *ExamRepository) ListPlacedBetween(ctx context.Context, exec sqlx.ExtContext, from, to time.Time) ([]models.PlacedExam, error) {
	const query = `SELECT ex.id AS exam_id, ex.course_id, t.starts_at, t.ends_at,
ARRAY(SELECT er.classroom_id::text FROM exam_rooms er WHERE er.exam_id = ex.id) AS classroom_ids
FROM exams ex
JOIN timeslots t ON t.id = ex.timeslot_id
WHERE ex.status <> $1 AND t.starts_at >= $2 AND t.starts_at < $3
ORDER BY t.starts_at`
	var placed []models.PlacedExam
	if err := sqlx.SelectContext(ctx, r.exec(exec), &placed, query, models.ExamStatusCancelled, from, to); err != nil {
		return nil, fmt.Errorf("list placed exams: %w", err)
	}
	return placed, nil
}

// ListByTerm returns the exams of a term in chronological order.
func (r *ExamRepository) ListByTerm(ctx context.Context, termID string) ([]models.ExamDetail, error) {
	query := examDetailSelect + ` WHERE ex.exam_term_id = $1 ORDER BY t.starts_at, c.code`
	var exams []models.ExamDetail
	if err := r.db.SelectContext(ctx, &exams, query, termID); err != nil {
		return nil, fmt.Errorf("list exams by term: %w", err)
	}
	return exams, nil
}

// FindTerm loads an exam term.
func (r *ExamRepository) FindTerm(ctx context.Context, termID string) (*models.ExamTerm, error) {
	query := `SELECT ` + examTermColumns + ` FROM exam_terms WHERE id = $1`
	var term models.ExamTerm
	if err := r.db.GetContext(ctx, &term, query, termID); err != nil {
		return nil, err
	}
	return &term, nil
}

// LatestTerm returns the most recently created term of a department.
func (r *ExamRepository) LatestTerm(ctx context.Context, departmentID string) (*models.ExamTerm, error) {
	query := `SELECT ` + examTermColumns + ` FROM exam_terms WHERE department_id = $1 ORDER BY created_at DESC LIMIT 1`
	var term models.ExamTerm
	if err := r.db.GetContext(ctx, &term, query, departmentID); err != nil {
		return nil, err
	}
	return &term, nil
}

// ListLatestByDepartment returns the department's exams of its latest term.
// When that term holds none of them, exams of the department that fall in the
// term's date range are returned instead. A department without terms yields
// a nil term and no error.
func (r *ExamRepository) ListLatestByDepartment(ctx context.Context, departmentID string) (*models.ExamTerm, []models.ExamDetail, error) {
	term, err := r.LatestTerm(ctx, departmentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("find latest exam term: %w", err)
	}

	var exams []models.ExamDetail
	query := examDetailSelect + ` WHERE ex.exam_term_id = $1 AND c.department_id = $2 ORDER BY t.starts_at, c.code`
	if err := r.db.SelectContext(ctx, &exams, query, term.ID, departmentID); err != nil {
		return nil, nil, fmt.Errorf("list latest term exams: %w", err)
	}
	if len(exams) > 0 {
		return term, exams, nil
	}

	query = examDetailSelect + ` WHERE c.department_id = $1 AND t.starts_at >= $2 AND t.starts_at < $3 ORDER BY t.starts_at, c.code`
	if err := r.db.SelectContext(ctx, &exams, query, departmentID, term.DateStart, term.DateEnd.AddDate(0, 0, 1)); err != nil {
		return nil, nil, fmt.Errorf("list exams in latest term range: %w", err)
	}
	return term, exams, nil
}

// FindByID loads one exam with its details.
func (r *ExamRepository) FindByID(ctx context.Context, examID string) (*models.ExamDetail, error) {
	query := examDetailSelect + ` WHERE ex.id = $1`
	var exam models.ExamDetail
	if err := r.db.GetContext(ctx, &exam, query, examID); err != nil {
		return nil, err
	}
	return &exam, nil
}

// RoomsForExam returns the exam's rooms, largest first.
func (r *ExamRepository) RoomsForExam(ctx context.Context, examID string) ([]models.Classroom, error) {
	const query = `SELECT r.id, r.department_id, r.code, r.capacity, r.num_rows, r.num_cols, r.seat_group
FROM exam_rooms er
JOIN classrooms r ON r.id = er.classroom_id
WHERE er.exam_id = $1
ORDER BY r.capacity DESC, r.code`
	var rooms []models.Classroom
	if err := r.db.SelectContext(ctx, &rooms, query, examID); err != nil {
		return nil, fmt.Errorf("list exam rooms: %w", err)
	}
	return rooms, nil
}
