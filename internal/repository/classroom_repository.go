package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/exam-scheduler-api/internal/models"
)

const classroomColumns = `id, department_id, code, capacity, num_rows, num_cols, seat_group`

// ClassroomRepository reads rooms and their column layouts.
type ClassroomRepository struct {
	db *sqlx.DB
}

// NewClassroomRepository constructs the repository.
func NewClassroomRepository(db *sqlx.DB) *ClassroomRepository {
	return &ClassroomRepository{db: db}
}

// ListByDepartment returns the department's rooms, largest first.
func (r *ClassroomRepository) ListByDepartment(ctx context.Context, departmentID string) ([]models.Classroom, error) {
	query := `SELECT ` + classroomColumns + ` FROM classrooms WHERE department_id = $1 ORDER BY capacity DESC, code`
	var rooms []models.Classroom
	if err := r.db.SelectContext(ctx, &rooms, query, departmentID); err != nil {
		return nil, fmt.Errorf("list classrooms: %w", err)
	}
	return rooms, nil
}

// ColumnLayouts returns per-room seat groups ordered by column index.
func (r *ClassroomRepository) ColumnLayouts(ctx context.Context, classroomIDs []string) (map[string][]int, error) {
	layouts := make(map[string][]int, len(classroomIDs))
	if len(classroomIDs) == 0 {
		return layouts, nil
	}
	const query = `SELECT classroom_id, col_index, seat_group FROM classroom_columns
WHERE classroom_id = ANY($1) ORDER BY classroom_id, col_index`
	var columns []models.ClassroomColumn
	if err := r.db.SelectContext(ctx, &columns, query, pq.Array(classroomIDs)); err != nil {
		return nil, fmt.Errorf("list classroom columns: %w", err)
	}
	for _, col := range columns {
		layouts[col.ClassroomID] = append(layouts[col.ClassroomID], col.SeatGroup)
	}
	return layouts, nil
}
