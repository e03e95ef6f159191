package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-scheduler-api/internal/models"
)

var examDetailColumns = []string{
	"id", "exam_term_id", "course_id", "course_code", "course_name", "instructor_name", "class_name",
	"exam_type", "student_count", "starts_at", "ends_at", "status", "room_codes",
}

var termColumns = []string{"id", "department_id", "name", "exam_type", "date_start", "date_end", "default_duration_min", "min_gap_min", "created_at"}

func TestExamRepositoryPersistRunInTransaction(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewExamRepository(db)
	start := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO exam_terms")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timeslots")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO exams")).
		WithArgs(sqlmock.AnyArg(), "c1", sqlmock.AnyArg(), sqlmock.AnyArg(), string(models.ExamStatusPlanned), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO exam_rooms (exam_id, classroom_id) VALUES ($1, $2)")).
		WithArgs(sqlmock.AnyArg(), "r1").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO exam_rooms (exam_id, classroom_id) VALUES ($1, $2)")).
		WithArgs(sqlmock.AnyArg(), "r2").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)

	term := &models.ExamTerm{DepartmentID: "dept-1", Name: "MIDTERM", ExamType: "MIDTERM", DateStart: start, DateEnd: start}
	require.NoError(t, repo.CreateTerm(ctx, tx, term))
	assert.NotEmpty(t, term.ID)

	slot := &models.TimeSlot{ExamTermID: term.ID, StartsAt: start, EndsAt: start.Add(75 * time.Minute)}
	require.NoError(t, repo.CreateTimeSlot(ctx, tx, slot))

	exam := &models.Exam{CourseID: "c1", ExamTermID: term.ID, TimeSlotID: slot.ID}
	require.NoError(t, repo.CreateExam(ctx, tx, exam))
	assert.Equal(t, models.ExamStatusPlanned, exam.Status)

	require.NoError(t, repo.AddExamRooms(ctx, tx, exam.ID, []string{"r1", "r2"}))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryListPlacedBetween(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewExamRepository(db)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 5)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE ex.status <> $1 AND t.starts_at >= $2 AND t.starts_at < $3")).
		WithArgs(string(models.ExamStatusCancelled), from, to).
		WillReturnRows(sqlmock.NewRows([]string{"exam_id", "course_id", "starts_at", "ends_at", "classroom_ids"}).
			AddRow("ex-1", "c9", from.Add(10*time.Hour), from.Add(11*time.Hour), "{r1,r2}"))

	placed, err := repo.ListPlacedBetween(context.Background(), nil, from, to)
	require.NoError(t, err)
	require.Len(t, placed, 1)
	assert.Equal(t, []string{"r1", "r2"}, []string(placed[0].ClassroomIDs))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryListLatestByDepartmentFallsBackToDateRange(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewExamRepository(db)
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM exam_terms WHERE department_id = $1 ORDER BY created_at DESC LIMIT 1")).
		WithArgs("dept-1").
		WillReturnRows(sqlmock.NewRows(termColumns).AddRow("term-1", "dept-1", "MIDTERM", "MIDTERM", day, day.AddDate(0, 0, 4), 75, 15, day))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE ex.exam_term_id = $1 AND c.department_id = $2")).
		WithArgs("term-1", "dept-1").
		WillReturnRows(sqlmock.NewRows(examDetailColumns))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE c.department_id = $1 AND t.starts_at >= $2 AND t.starts_at < $3")).
		WithArgs("dept-1", day, day.AddDate(0, 0, 5)).
		WillReturnRows(sqlmock.NewRows(examDetailColumns).
			AddRow("ex-1", "term-0", "c1", "CS101", "Intro", "Dr. A", "1", "MIDTERM", 40, day.Add(10*time.Hour), day.Add(11*time.Hour), "PLANNED", "{A101}"))

	term, exams, err := repo.ListLatestByDepartment(context.Background(), "dept-1")
	require.NoError(t, err)
	require.NotNil(t, term)
	assert.Equal(t, "term-1", term.ID)
	require.Len(t, exams, 1)
	assert.Equal(t, []string{"A101"}, []string(exams[0].RoomCodes))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryListLatestByDepartmentWithoutTerms(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewExamRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM exam_terms WHERE department_id = $1")).
		WithArgs("dept-1").
		WillReturnError(sql.ErrNoRows)

	term, exams, err := repo.ListLatestByDepartment(context.Background(), "dept-1")
	require.NoError(t, err)
	assert.Nil(t, term)
	assert.Nil(t, exams)
}

func TestExamRepositoryFindByIDNotFound(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewExamRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE ex.id = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(examDetailColumns))

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestExamRepositoryRoomsForExam(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewExamRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM exam_rooms er\nJOIN classrooms r ON r.id = er.classroom_id\nWHERE er.exam_id = $1")).
		WithArgs("ex-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "department_id", "code", "capacity", "num_rows", "num_cols", "seat_group"}).
			AddRow("r1", "dept-1", "A101", 30, 5, 6, 1).
			AddRow("r2", "dept-1", "B201", 20, 4, 5, 1))

	rooms, err := repo.RoomsForExam(context.Background(), "ex-1")
	require.NoError(t, err)
	assert.Len(t, rooms, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
