package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-scheduler-api/internal/dto"
	"github.com/noah-isme/exam-scheduler-api/internal/models"
	"github.com/noah-isme/exam-scheduler-api/internal/scheduling"
	"github.com/noah-isme/exam-scheduler-api/pkg/config"
	appErrors "github.com/noah-isme/exam-scheduler-api/pkg/errors"
	"github.com/noah-isme/exam-scheduler-api/pkg/events"
)

const dateLayout = "2006-01-02"

type schedulingCourseReader interface {
	ListForScheduling(ctx context.Context, departmentID string, codes []string) ([]models.Course, error)
	ListEnrollmentPairs(ctx context.Context, courseIDs []string) ([]models.EnrollmentPair, error)
	SharesStudents(ctx context.Context, exec sqlx.QueryerContext, courseID string, others []string) (bool, error)
}

type schedulingClassroomReader interface {
	ListByDepartment(ctx context.Context, departmentID string) ([]models.Classroom, error)
}

type examStore interface {
	CreateTerm(ctx context.Context, exec sqlx.ExtContext, term *models.ExamTerm) error
	CreateTimeSlot(ctx context.Context, exec sqlx.ExtContext, slot *models.TimeSlot) error
	CreateExam(ctx context.Context, exec sqlx.ExtContext, exam *models.Exam) error
	AddExamRooms(ctx context.Context, exec sqlx.ExtContext, examID string, classroomIDs []string) error
	ListPlacedBetween(ctx context.Context, exec sqlx.ExtContext, from, to time.Time) ([]models.PlacedExam, error)
	ListByTerm(ctx context.Context, termID string) ([]models.ExamDetail, error)
	FindTerm(ctx context.Context, termID string) (*models.ExamTerm, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type eventEmitter interface {
	Emit(ctx context.Context, eventType string, payload interface{}) error
}

type timetableRenderer interface {
	Timetable(format, title string, exams []models.ExamDetail) (*ExportFile, error)
}

// ExamScheduleService runs the timetable builder against stored courses and
// rooms and commits the result as a new exam term.
type ExamScheduleService struct {
	courses    schedulingCourseReader
	classrooms schedulingClassroomReader
	exams      examStore
	tx         txProvider
	builder    *scheduling.Builder
	exporter   timetableRenderer
	cache      *CacheService
	metrics    *MetricsService
	events     eventEmitter
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        config.SchedulerConfig
	locks      *departmentLocks
}

// NewExamScheduleService wires the scheduling dependencies.
func NewExamScheduleService(
	courses schedulingCourseReader,
	classrooms schedulingClassroomReader,
	exams examStore,
	tx txProvider,
	builder *scheduling.Builder,
	exporter timetableRenderer,
	cache *CacheService,
	metrics *MetricsService,
	emitter eventEmitter,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg config.SchedulerConfig,
) *ExamScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if builder == nil {
		builder = scheduling.NewBuilder(nil)
	}
	if exporter == nil {
		exporter = NewExportService(nil, nil)
	}
	if cfg.WindowStart == "" {
		cfg.WindowStart = "10:00"
	}
	if cfg.WindowEnd == "" {
		cfg.WindowEnd = "17:00"
	}
	if cfg.DefaultDuration <= 0 {
		cfg.DefaultDuration = 75
	}
	return &ExamScheduleService{
		courses:    courses,
		classrooms: classrooms,
		exams:      exams,
		tx:         tx,
		builder:    builder,
		exporter:   exporter,
		cache:      cache,
		metrics:    metrics,
		events:     emitter,
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
		locks:      newDepartmentLocks(),
	}
}

// Generate builds a timetable. Unless the request is a dry run the placements
// are persisted in one transaction under a new exam term.
func (s *ExamScheduleService) Generate(ctx context.Context, req dto.GenerateExamScheduleRequest) (resp *dto.GenerateExamScheduleResponse, err error) {
	if !s.cfg.Enabled {
		return nil, appErrors.Clone(appErrors.ErrServiceDisabled, "exam scheduling is disabled")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam schedule payload")
	}

	started := time.Now()
	outcome := OutcomeError
	placedCount := 0
	defer func() {
		s.metrics.ObserveSchedulerRun(outcome, placedCount, time.Since(started))
	}()

	input, err := s.parseInput(req)
	if err != nil {
		outcome = OutcomeConfiguration
		return nil, err
	}

	workdays := scheduling.Workdays(input.StartDate, input.EndDate, input.ExcludedWeekdays)
	if len(workdays) == 0 {
		outcome = OutcomeConfiguration
		return nil, configurationError(scheduling.Outcome{Failures: []scheduling.Failure{{
			Kind:    scheduling.FailureConfiguration,
			Message: "no eligible exam days in the selected range (all days excluded)",
			Err:     scheduling.ErrNoWorkdays,
		}}})
	}

	if !s.locks.TryLock(req.DepartmentID) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a scheduling run for this department is already in progress")
	}
	defer s.locks.Unlock(req.DepartmentID)

	if err := s.loadInput(ctx, req, &input); err != nil {
		return nil, err
	}

	result := s.builder.Build(input)
	if result.Failed() {
		if result.Kind() == scheduling.FailureConfiguration {
			outcome = OutcomeConfiguration
			return nil, configurationError(result)
		}
		outcome = OutcomeUnschedulable
		s.logger.Info("exam schedule unschedulable",
			zap.String("department_id", req.DepartmentID),
			zap.Int("failures", len(result.Failures)),
		)
		return nil, unschedulableError(result)
	}

	resp = &dto.GenerateExamScheduleResponse{
		DryRun:      req.DryRun,
		Workdays:    result.Workdays,
		Feasibility: feasibilityResponse(result.Feasibility),
	}

	if req.DryRun {
		outcome = OutcomePreview
		resp.Exams = placementResponses(result.Placements, nil)
		return resp, nil
	}

	termID, examIDs, err := s.persist(ctx, req, input, result.Placements)
	if err != nil {
		return nil, err
	}
	outcome = OutcomeCommitted
	placedCount = len(result.Placements)
	resp.TermID = termID
	resp.Exams = placementResponses(result.Placements, examIDs)

	s.cache.Invalidate(ctx, latestExamsKey(req.DepartmentID))
	if s.events != nil {
		_ = s.events.Emit(ctx, events.TypeScheduleCommitted, map[string]interface{}{
			"termId":       termID,
			"departmentId": req.DepartmentID,
			"examCount":    len(examIDs),
		})
	}
	s.logger.Info("exam schedule committed",
		zap.String("department_id", req.DepartmentID),
		zap.String("term_id", termID),
		zap.Int("exams", len(examIDs)),
		zap.Int("workdays", result.Workdays),
		zap.Duration("elapsed", time.Since(started)),
	)
	return resp, nil
}

// ListByTerm returns the exams of a committed term.
func (s *ExamScheduleService) ListByTerm(ctx context.Context, termID string) (*dto.TermExamsResponse, error) {
	if termID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "term id is required")
	}
	var cached dto.TermExamsResponse
	if s.cache.Get(ctx, termExamsKey(termID), &cached) {
		return &cached, nil
	}

	term, exams, err := s.loadTerm(ctx, termID)
	if err != nil {
		return nil, err
	}
	resp := &dto.TermExamsResponse{Term: termResponse(term), Exams: examSummaries(exams)}
	s.cache.Set(ctx, termExamsKey(termID), resp, s.cfg.CacheTTL)
	return resp, nil
}

// ExportTerm renders a term's timetable as CSV or PDF.
func (s *ExamScheduleService) ExportTerm(ctx context.Context, termID, format string) (*ExportFile, error) {
	term, exams, err := s.loadTerm(ctx, termID)
	if err != nil {
		return nil, err
	}
	return s.exporter.Timetable(format, term.Name, exams)
}

func (s *ExamScheduleService) loadTerm(ctx context.Context, termID string) (*models.ExamTerm, []models.ExamDetail, error) {
	term, err := s.exams.FindTerm(ctx, termID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "exam term not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam term")
	}
	exams, err := s.exams.ListByTerm(ctx, termID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list term exams")
	}
	return term, exams, nil
}

func (s *ExamScheduleService) parseInput(req dto.GenerateExamScheduleRequest) (scheduling.Input, error) {
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return scheduling.Input{}, appErrors.Clone(appErrors.ErrValidation, "startDate must use YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return scheduling.Input{}, appErrors.Clone(appErrors.ErrValidation, "endDate must use YYYY-MM-DD")
	}
	if end.Before(start) {
		return scheduling.Input{}, appErrors.Clone(appErrors.ErrValidation, "endDate must not be before startDate")
	}

	windowStart, windowEnd := s.cfg.WindowStart, s.cfg.WindowEnd
	if req.WindowStart != "" {
		windowStart = req.WindowStart
	}
	if req.WindowEnd != "" {
		windowEnd = req.WindowEnd
	}
	window, err := scheduling.ParseWindow(windowStart, windowEnd)
	if err != nil {
		return scheduling.Input{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid daily exam window")
	}

	duration := s.cfg.DefaultDuration
	if req.DurationMinutes > 0 {
		duration = req.DurationMinutes
	}
	gap := s.cfg.DefaultGap
	if req.GapMinutes != nil {
		gap = *req.GapMinutes
	}
	seed := s.cfg.Seed
	if req.Seed != 0 {
		seed = req.Seed
	}

	return scheduling.Input{
		StartDate:        start,
		EndDate:          end,
		ExcludedWeekdays: req.ExcludedWeekdays,
		Params: scheduling.Params{
			Window:          window,
			DefaultDuration: duration,
			Gap:             gap,
			NoOverlap:       req.NoOverlap,
			ExamType:        req.ExamType,
			CustomDurations: req.CustomDurations,
		},
		Random: scheduling.NewRandomSource(seed),
	}, nil
}

func (s *ExamScheduleService) loadInput(ctx context.Context, req dto.GenerateExamScheduleRequest, input *scheduling.Input) error {
	courses, err := s.courses.ListForScheduling(ctx, req.DepartmentID, req.CourseCodes)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	classrooms, err := s.classrooms.ListByDepartment(ctx, req.DepartmentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classrooms")
	}

	var placed []models.PlacedExam
	if s.cfg.RespectExisting {
		placed, err = s.exams.ListPlacedBetween(ctx, nil, input.StartDate, input.EndDate.AddDate(0, 0, 1))
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing exams")
		}
	}

	courseIDs := make([]string, 0, len(courses)+len(placed))
	seen := make(map[string]bool, len(courses)+len(placed))
	for _, course := range courses {
		input.Courses = append(input.Courses, scheduling.Course{
			ID:           course.ID,
			Code:         course.Code,
			Name:         course.Name,
			Instructor:   course.InstructorName,
			Cohort:       course.ClassName,
			StudentCount: course.StudentCount,
		})
		if !seen[course.ID] {
			seen[course.ID] = true
			courseIDs = append(courseIDs, course.ID)
		}
	}
	for _, room := range classrooms {
		input.Rooms = append(input.Rooms, scheduling.Room{ID: room.ID, Code: room.Code, Capacity: room.Capacity})
	}
	for _, exam := range placed {
		input.Existing = append(input.Existing, existingExam(exam))
		if !seen[exam.CourseID] {
			seen[exam.CourseID] = true
			courseIDs = append(courseIDs, exam.CourseID)
		}
	}

	if len(input.Courses) == 0 {
		return nil
	}
	pairs, err := s.courses.ListEnrollmentPairs(ctx, courseIDs)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}
	index := scheduling.NewEnrollmentIndex()
	for _, pair := range pairs {
		index.Add(pair.CourseID, pair.StudentID)
	}
	input.Conflicts = index
	return nil
}

func (s *ExamScheduleService) persist(ctx context.Context, req dto.GenerateExamScheduleRequest, input scheduling.Input, placements []scheduling.Placement) (termID string, examIDs []string, err error) {
	if s.tx == nil {
		return "", nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.verifyUnchanged(ctx, tx, input, placements); err != nil {
		return "", nil, err
	}

	term := &models.ExamTerm{
		DepartmentID:       req.DepartmentID,
		Name:               fmt.Sprintf("%s %s to %s", req.ExamType, req.StartDate, req.EndDate),
		ExamType:           req.ExamType,
		DateStart:          input.StartDate,
		DateEnd:            input.EndDate,
		DefaultDurationMin: input.Params.DefaultDuration,
		MinGapMin:          input.Params.Gap,
	}
	if err = s.exams.CreateTerm(ctx, tx, term); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create exam term")
		return "", nil, err
	}

	slots := make(map[[2]int64]string)
	examIDs = make([]string, 0, len(placements))
	for _, placement := range placements {
		startsAt, endsAt := placement.StartsAt(), placement.EndsAt()
		key := [2]int64{startsAt.Unix(), endsAt.Unix()}
		slotID, ok := slots[key]
		if !ok {
			slot := &models.TimeSlot{ExamTermID: term.ID, StartsAt: startsAt, EndsAt: endsAt}
			if err = s.exams.CreateTimeSlot(ctx, tx, slot); err != nil {
				err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create time slot")
				return "", nil, err
			}
			slotID = slot.ID
			slots[key] = slotID
		}

		exam := &models.Exam{CourseID: placement.Course.ID, ExamTermID: term.ID, TimeSlotID: slotID}
		if err = s.exams.CreateExam(ctx, tx, exam); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create exam")
			return "", nil, err
		}
		roomIDs := make([]string, 0, len(placement.Rooms))
		for _, room := range placement.Rooms {
			roomIDs = append(roomIDs, room.ID)
		}
		if err = s.exams.AddExamRooms(ctx, tx, exam.ID, roomIDs); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign exam rooms")
			return "", nil, err
		}
		examIDs = append(examIDs, exam.ID)
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit exam schedule")
		return "", nil, err
	}
	return term.ID, examIDs, nil
}

// verifyUnchanged rejects the commit when exams persisted after the run was
// loaded now collide with a placement by room or by shared students.
func (s *ExamScheduleService) verifyUnchanged(ctx context.Context, tx *sqlx.Tx, input scheduling.Input, placements []scheduling.Placement) error {
	if !s.cfg.RespectExisting {
		return nil
	}
	current, err := s.exams.ListPlacedBetween(ctx, tx, input.StartDate, input.EndDate.AddDate(0, 0, 1))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload existing exams")
	}
	known := make(map[string]int, len(input.Existing))
	for _, exam := range input.Existing {
		known[existingKey(exam)]++
	}
	var fresh []scheduling.ExistingExam
	for _, placed := range current {
		exam := existingExam(placed)
		key := existingKey(exam)
		if known[key] > 0 {
			known[key]--
			continue
		}
		fresh = append(fresh, exam)
	}
	if len(fresh) == 0 {
		return nil
	}

	ledger := scheduling.NewOccupancy(fresh)
	for _, placement := range placements {
		for _, room := range placement.Rooms {
			if ledger.RoomBusy(room.ID, placement.Date, placement.Start, placement.End, input.Params.Gap) {
				return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("room %s was booked by another run; retry the schedule", room.Code))
			}
		}
		others := ledger.CoursesOverlapping(placement.Date, placement.Start, placement.End)
		if len(others) == 0 {
			continue
		}
		shared, err := s.courses.SharesStudents(ctx, tx, placement.Course.ID, others)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to re-check student conflicts")
		}
		if shared {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("%s now overlaps an exam sharing its students; retry the schedule", placement.Course.Code))
		}
	}
	return nil
}

func existingExam(placed models.PlacedExam) scheduling.ExistingExam {
	startsAt, endsAt := placed.StartsAt.UTC(), placed.EndsAt.UTC()
	y, m, d := startsAt.Date()
	return scheduling.ExistingExam{
		CourseID: placed.CourseID,
		Date:     time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Start:    scheduling.ClockOf(startsAt),
		End:      scheduling.ClockOf(endsAt),
		RoomIDs:  []string(placed.ClassroomIDs),
	}
}

func existingKey(exam scheduling.ExistingExam) string {
	return fmt.Sprintf("%s|%s|%s", exam.CourseID, exam.Date.Format(dateLayout), exam.Start)
}

func configurationError(outcome scheduling.Outcome) error {
	message := "exam schedule preconditions not met"
	if len(outcome.Failures) > 0 {
		message = outcome.Failures[0].Message
	}
	return appErrors.WithDetails(appErrors.ErrPreconditionFailed, message, failureDetails(outcome.Failures))
}

func unschedulableError(outcome scheduling.Outcome) error {
	message := fmt.Sprintf("%d course(s) could not be placed", len(outcome.Failures))
	return appErrors.WithDetails(appErrors.ErrUnschedulable, message, failureDetails(outcome.Failures))
}

func failureDetails(failures []scheduling.Failure) []dto.SchedulingFailureDetail {
	details := make([]dto.SchedulingFailureDetail, 0, len(failures))
	for _, failure := range failures {
		details = append(details, dto.SchedulingFailureDetail{
			Kind:       string(failure.Kind),
			CourseCode: failure.CourseCode,
			Reason:     failure.Reason,
			Message:    failure.Message,
		})
	}
	return details
}

func feasibilityResponse(f *scheduling.Feasibility) *dto.FeasibilityResponse {
	if f == nil {
		return nil
	}
	return &dto.FeasibilityResponse{
		SlotsPerDay: f.SlotsPerDay,
		Days:        f.Days,
		Available:   f.Available,
		Required:    f.Required,
		Feasible:    f.Feasible,
	}
}

func placementResponses(placements []scheduling.Placement, examIDs []string) []dto.PlacedExamResponse {
	out := make([]dto.PlacedExamResponse, 0, len(placements))
	for i, p := range placements {
		rooms := make([]string, 0, len(p.Rooms))
		for _, room := range p.Rooms {
			rooms = append(rooms, room.Code)
		}
		item := dto.PlacedExamResponse{
			CourseID:        p.Course.ID,
			CourseCode:      p.Course.Code,
			CourseName:      p.Course.Name,
			Instructor:      p.Course.Instructor,
			ClassName:       p.Course.Cohort,
			StudentCount:    p.Course.StudentCount,
			Date:            p.Date.Format(dateLayout),
			StartsAt:        p.StartsAt(),
			EndsAt:          p.EndsAt(),
			DurationMinutes: p.Duration,
			ExamType:        p.ExamType,
			Rooms:           rooms,
			Capacity:        p.Capacity(),
		}
		if i < len(examIDs) {
			item.ExamID = examIDs[i]
		}
		out = append(out, item)
	}
	return out
}

func termResponse(term *models.ExamTerm) *dto.ExamTermResponse {
	if term == nil {
		return nil
	}
	return &dto.ExamTermResponse{
		ID:        term.ID,
		Name:      term.Name,
		ExamType:  term.ExamType,
		DateStart: term.DateStart.Format(dateLayout),
		DateEnd:   term.DateEnd.Format(dateLayout),
	}
}

func examSummary(exam models.ExamDetail) dto.ExamSummary {
	rooms := []string(exam.RoomCodes)
	if rooms == nil {
		rooms = []string{}
	}
	return dto.ExamSummary{
		ID:           exam.ID,
		TermID:       exam.ExamTermID,
		CourseID:     exam.CourseID,
		CourseCode:   exam.CourseCode,
		CourseName:   exam.CourseName,
		Instructor:   exam.InstructorName,
		ClassName:    exam.ClassName,
		ExamType:     exam.ExamType,
		StudentCount: exam.StudentCount,
		StartsAt:     exam.StartsAt,
		EndsAt:       exam.EndsAt,
		Status:       string(exam.Status),
		Rooms:        rooms,
	}
}

func examSummaries(exams []models.ExamDetail) []dto.ExamSummary {
	out := make([]dto.ExamSummary, 0, len(exams))
	for _, exam := range exams {
		out = append(out, examSummary(exam))
	}
	return out
}

// departmentLocks serialises scheduling runs per department.
type departmentLocks struct {
	mu     sync.Mutex
	active map[string]bool
}

func newDepartmentLocks() *departmentLocks {
	return &departmentLocks{active: make(map[string]bool)}
}

func (l *departmentLocks) TryLock(departmentID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active[departmentID] {
		return false
	}
	l.active[departmentID] = true
	return true
}

func (l *departmentLocks) Unlock(departmentID string) {
	l.mu.Lock()
	delete(l.active, departmentID)
	l.mu.Unlock()
}
