package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/exam-scheduler-api/internal/models"
)

// CourseRepository reads courses and enrollments for scheduling runs.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// ListForScheduling returns the department's courses with their distinct
// enrollment counts, optionally restricted to the given course codes.
func (r *CourseRepository) ListForScheduling(ctx context.Context, departmentID string, codes []string) ([]models.Course, error) {
	query := `SELECT c.id, c.department_id, c.code, c.name,
COALESCE(c.instructor_name, '') AS instructor_name, COALESCE(c.class_name, '') AS class_name,
COUNT(DISTINCT e.student_id) AS student_count
FROM courses c
LEFT JOIN enrollments e ON e.course_id = c.id
WHERE c.department_id = $1`
	args := []interface{}{departmentID}
	if len(codes) > 0 {
		query += ` AND c.code = ANY($2)`
		args = append(args, pq.Array(codes))
	}
	query += ` GROUP BY c.id ORDER BY c.class_name, c.code`

	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list courses for scheduling: %w", err)
	}
	return courses, nil
}

// ListEnrollmentPairs loads every (course, student) pair of the given courses.
func (r *CourseRepository) ListEnrollmentPairs(ctx context.Context, courseIDs []string) ([]models.EnrollmentPair, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT course_id, student_id FROM enrollments WHERE course_id = ANY($1)`
	var pairs []models.EnrollmentPair
	if err := r.db.SelectContext(ctx, &pairs, query, pq.Array(courseIDs)); err != nil {
		return nil, fmt.Errorf("list enrollment pairs: %w", err)
	}
	return pairs, nil
}

// SharesStudents reports whether any student of courseID is enrolled in one
// of the other courses.
func (r *CourseRepository) SharesStudents(ctx context.Context, exec sqlx.QueryerContext, courseID string, others []string) (bool, error) {
	if len(others) == 0 {
		return false, nil
	}
	if exec == nil {
		exec = r.db
	}
	const query = `SELECT EXISTS (
SELECT 1 FROM enrollments e1
JOIN enrollments e2 ON e1.student_id = e2.student_id
WHERE e1.course_id = $1 AND e2.course_id = ANY($2) AND e2.course_id <> $1)`
	var shared bool
	if err := sqlx.GetContext(ctx, exec, &shared, query, courseID, pq.Array(others)); err != nil {
		return false, fmt.Errorf("check shared students: %w", err)
	}
	return shared, nil
}
