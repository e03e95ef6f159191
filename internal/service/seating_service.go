package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-scheduler-api/internal/dto"
	"github.com/noah-isme/exam-scheduler-api/internal/models"
	"github.com/noah-isme/exam-scheduler-api/internal/seating"
	"github.com/noah-isme/exam-scheduler-api/pkg/config"
	appErrors "github.com/noah-isme/exam-scheduler-api/pkg/errors"
	"github.com/noah-isme/exam-scheduler-api/pkg/events"
)

type seatingExamReader interface {
	FindByID(ctx context.Context, examID string) (*models.ExamDetail, error)
	RoomsForExam(ctx context.Context, examID string) ([]models.Classroom, error)
	ListLatestByDepartment(ctx context.Context, departmentID string) (*models.ExamTerm, []models.ExamDetail, error)
}

type seatingStudentReader interface {
	ListForExam(ctx context.Context, examID string, departmentScoped bool) ([]models.ExamStudent, error)
}

type classroomLayoutReader interface {
	ColumnLayouts(ctx context.Context, classroomIDs []string) (map[string][]int, error)
}

type seatingStore interface {
	ReplaceForExam(ctx context.Context, exec sqlx.ExtContext, examID string, seats []models.SeatAssignment) error
	ListByExam(ctx context.Context, examID string) ([]models.SeatAssignmentDetail, error)
}

type seatingRenderer interface {
	Seating(format string, data SeatingExport) (*ExportFile, error)
}

// SeatingService generates, stores and exports exam seat plans.
type SeatingService struct {
	exams    seatingExamReader
	students seatingStudentReader
	layouts  classroomLayoutReader
	seats    seatingStore
	tx       txProvider
	planner  *seating.Planner
	exporter seatingRenderer
	cache    *CacheService
	metrics  *MetricsService
	events   eventEmitter
	logger   *zap.Logger
	cfg      config.SeatingConfig
}

// NewSeatingService wires the seating dependencies.
func NewSeatingService(
	exams seatingExamReader,
	students seatingStudentReader,
	layouts classroomLayoutReader,
	seats seatingStore,
	tx txProvider,
	exporter seatingRenderer,
	cache *CacheService,
	metrics *MetricsService,
	emitter eventEmitter,
	logger *zap.Logger,
	cfg config.SeatingConfig,
) *SeatingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if exporter == nil {
		exporter = NewExportService(nil, nil)
	}
	return &SeatingService{
		exams:    exams,
		students: students,
		layouts:  layouts,
		seats:    seats,
		tx:       tx,
		planner:  seating.NewPlanner(),
		exporter: exporter,
		cache:    cache,
		metrics:  metrics,
		events:   emitter,
		logger:   logger,
		cfg:      cfg,
	}
}

// Generate plans seats for an exam and replaces any stored plan.
func (s *SeatingService) Generate(ctx context.Context, examID string) (*dto.SeatingResponse, error) {
	exam, err := s.findExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	if exam.Status == models.ExamStatusCancelled {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "exam is cancelled")
	}

	rooms, err := s.loadRooms(ctx, examID)
	if err != nil {
		return nil, err
	}
	students, err := s.students.ListForExam(ctx, examID, s.cfg.DepartmentScoped)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam students")
	}

	plan, err := s.planner.Plan(toSeatingStudents(students), toSeatingRooms(rooms))
	if err != nil {
		s.metrics.ObserveSeatingRun("failed", nil)
		if errors.Is(err, seating.ErrCapacityShortfall) || errors.Is(err, seating.ErrNoRooms) {
			return nil, appErrors.Wrap(err, appErrors.ErrPreconditionFailed.Code, appErrors.ErrPreconditionFailed.Status, err.Error())
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to plan seating")
	}

	if err := s.persist(ctx, examID, plan.Seats); err != nil {
		return nil, err
	}

	resp := &dto.SeatingResponse{
		ExamID:   examID,
		Rooms:    roomLayouts(rooms),
		Seats:    seatResponsesFromPlan(plan.Seats),
		Warnings: warningResponses(plan.Warnings),
	}
	s.cache.Set(ctx, seatingKey(examID), resp, s.cfg.CacheTTL)

	kinds := make([]string, 0, len(plan.Warnings))
	for _, w := range plan.Warnings {
		kinds = append(kinds, string(w.Kind))
	}
	s.metrics.ObserveSeatingRun("generated", kinds)
	if s.events != nil {
		_ = s.events.Emit(ctx, events.TypeSeatingGenerated, map[string]interface{}{
			"examId":   examID,
			"seated":   len(plan.Seats),
			"warnings": len(plan.Warnings),
		})
	}
	s.logger.Info("seating generated",
		zap.String("exam_id", examID),
		zap.Int("students", len(students)),
		zap.Int("rooms", len(rooms)),
		zap.Int("warnings", len(plan.Warnings)),
	)
	return resp, nil
}

// Get returns the stored seat plan of an exam.
func (s *SeatingService) Get(ctx context.Context, examID string) (*dto.SeatingResponse, error) {
	var cached dto.SeatingResponse
	if s.cache.Get(ctx, seatingKey(examID), &cached) {
		return &cached, nil
	}

	data, err := s.stored(ctx, examID)
	if err != nil {
		return nil, err
	}
	resp := &dto.SeatingResponse{
		ExamID:   examID,
		Rooms:    roomLayouts(data.Rooms),
		Seats:    seatResponsesFromStore(data.Seats),
		Warnings: []dto.SeatingWarning{},
	}
	s.cache.Set(ctx, seatingKey(examID), resp, s.cfg.CacheTTL)
	return resp, nil
}

// Overview returns an exam with the layout of each of its rooms.
func (s *SeatingService) Overview(ctx context.Context, examID string) (*dto.ExamOverviewResponse, error) {
	exam, err := s.findExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	rooms, err := s.loadRooms(ctx, examID)
	if err != nil && !errors.Is(err, seating.ErrNoRooms) {
		return nil, err
	}
	return &dto.ExamOverviewResponse{Exam: examSummary(*exam), Rooms: roomLayouts(rooms)}, nil
}

// ListLatest returns the exams of a department's most recent term.
func (s *SeatingService) ListLatest(ctx context.Context, departmentID string) (*dto.TermExamsResponse, error) {
	if departmentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department id is required")
	}
	var cached dto.TermExamsResponse
	if s.cache.Get(ctx, latestExamsKey(departmentID), &cached) {
		return &cached, nil
	}

	term, exams, err := s.exams.ListLatestByDepartment(ctx, departmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list latest exams")
	}
	resp := &dto.TermExamsResponse{Term: termResponse(term), Exams: examSummaries(exams)}
	s.cache.Set(ctx, latestExamsKey(departmentID), resp, s.cfg.CacheTTL)
	return resp, nil
}

// Export renders the stored seat plan as CSV or PDF.
func (s *SeatingService) Export(ctx context.Context, examID, format string) (*ExportFile, error) {
	data, err := s.stored(ctx, examID)
	if err != nil {
		return nil, err
	}
	return s.exporter.Seating(format, *data)
}

func (s *SeatingService) stored(ctx context.Context, examID string) (*SeatingExport, error) {
	exam, err := s.findExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	seats, err := s.seats.ListByExam(ctx, examID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load seating")
	}
	if len(seats) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "seating has not been generated for this exam")
	}
	rooms, err := s.loadRooms(ctx, examID)
	if err != nil && !errors.Is(err, seating.ErrNoRooms) {
		return nil, err
	}
	return &SeatingExport{Exam: *exam, Rooms: rooms, Seats: seats}, nil
}

func (s *SeatingService) findExam(ctx context.Context, examID string) (*models.ExamDetail, error) {
	if examID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "exam id is required")
	}
	exam, err := s.exams.FindByID(ctx, examID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	return exam, nil
}

// loadRooms returns the exam's rooms with their column groups resolved. A
// room without per-column overrides repeats its default seat group across
// every column.
func (s *SeatingService) loadRooms(ctx context.Context, examID string) ([]models.Classroom, error) {
	rooms, err := s.exams.RoomsForExam(ctx, examID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam rooms")
	}
	if len(rooms) == 0 {
		return nil, appErrors.Wrap(seating.ErrNoRooms, appErrors.ErrPreconditionFailed.Code, appErrors.ErrPreconditionFailed.Status, "exam has no assigned rooms")
	}

	ids := make([]string, 0, len(rooms))
	for _, room := range rooms {
		ids = append(ids, room.ID)
	}
	layouts, err := s.layouts.ColumnLayouts(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room layouts")
	}
	for i := range rooms {
		rooms[i].Columns = columnGroups(rooms[i], layouts[rooms[i].ID])
	}
	return rooms, nil
}

func (s *SeatingService) persist(ctx context.Context, examID string, seats []seating.Seat) (err error) {
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	records := make([]models.SeatAssignment, 0, len(seats))
	for _, seat := range seats {
		records = append(records, models.SeatAssignment{
			ID:          uuid.NewString(),
			ExamID:      examID,
			StudentID:   seat.Student.ID,
			ClassroomID: seat.RoomID,
			RowNo:       seat.Row,
			ColNo:       seat.Column,
			CreatedAt:   now,
		})
	}
	if err = s.seats.ReplaceForExam(ctx, tx, examID, records); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store seating")
		return err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit seating")
		return err
	}
	return nil
}

func columnGroups(room models.Classroom, override []int) []int {
	if len(override) > 0 {
		return override
	}
	if room.NumCols <= 0 {
		return nil
	}
	group := room.SeatGroup
	if group <= 0 {
		group = 1
	}
	groups := make([]int, room.NumCols)
	for i := range groups {
		groups[i] = group
	}
	return groups
}

func toSeatingStudents(students []models.ExamStudent) []seating.Student {
	out := make([]seating.Student, 0, len(students))
	for _, st := range students {
		out = append(out, seating.Student{ID: st.ID, Number: st.Number, Name: st.Name})
	}
	return out
}

func toSeatingRooms(rooms []models.Classroom) []seating.Room {
	out := make([]seating.Room, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, seatingRoom(room))
	}
	return out
}

func seatingRoom(room models.Classroom) seating.Room {
	return seating.Room{
		ID:       room.ID,
		Code:     room.Code,
		Capacity: room.Capacity,
		Rows:     room.NumRows,
		Columns:  room.NumCols,
		Groups:   room.Columns,
	}
}

func roomLayouts(rooms []models.Classroom) []dto.RoomLayoutResponse {
	out := make([]dto.RoomLayoutResponse, 0, len(rooms))
	for _, room := range rooms {
		groups := room.Columns
		if groups == nil {
			groups = []int{}
		}
		out = append(out, dto.RoomLayoutResponse{
			ID:          room.ID,
			Code:        room.Code,
			Capacity:    room.Capacity,
			Rows:        room.NumRows,
			Columns:     room.NumCols,
			SeatGroups:  groups,
			SeatsPerRow: seatingRoom(room).SeatsPerRow(),
		})
	}
	return out
}

func seatResponsesFromPlan(seats []seating.Seat) []dto.SeatResponse {
	out := make([]dto.SeatResponse, 0, len(seats))
	for _, seat := range seats {
		out = append(out, dto.SeatResponse{
			StudentID:     seat.Student.ID,
			StudentNumber: seat.Student.Number,
			StudentName:   seat.Student.Name,
			RoomID:        seat.RoomID,
			RoomCode:      seat.RoomCode,
			Row:           seat.Row,
			Column:        seat.Column,
		})
	}
	return out
}

func seatResponsesFromStore(seats []models.SeatAssignmentDetail) []dto.SeatResponse {
	out := make([]dto.SeatResponse, 0, len(seats))
	for _, seat := range seats {
		out = append(out, dto.SeatResponse{
			StudentID:     seat.StudentID,
			StudentNumber: seat.StudentNumber,
			StudentName:   seat.StudentName,
			RoomID:        seat.ClassroomID,
			RoomCode:      seat.RoomCode,
			Row:           seat.RowNo,
			Column:        seat.ColNo,
		})
	}
	return out
}

func warningResponses(warnings []seating.Warning) []dto.SeatingWarning {
	out := make([]dto.SeatingWarning, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, dto.SeatingWarning{Kind: string(w.Kind), RoomCode: w.RoomCode, Message: w.Message})
	}
	return out
}
