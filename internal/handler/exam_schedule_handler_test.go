package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-scheduler-api/internal/dto"
	"github.com/noah-isme/exam-scheduler-api/internal/service"
	appErrors "github.com/noah-isme/exam-scheduler-api/pkg/errors"
)

type examSchedulerMock struct {
	captured dto.GenerateExamScheduleRequest
	err      error
	format   string
}

func (m *examSchedulerMock) Generate(_ context.Context, req dto.GenerateExamScheduleRequest) (*dto.GenerateExamScheduleResponse, error) {
	m.captured = req
	if m.err != nil {
		return nil, m.err
	}
	resp := &dto.GenerateExamScheduleResponse{DryRun: req.DryRun, Workdays: 5}
	if !req.DryRun {
		resp.TermID = "term-1"
	}
	return resp, nil
}

func (m *examSchedulerMock) ListByTerm(_ context.Context, termID string) (*dto.TermExamsResponse, error) {
	if termID != "term-1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "exam term not found")
	}
	return &dto.TermExamsResponse{Exams: []dto.ExamSummary{{ID: "exam-1"}}}, nil
}

func (m *examSchedulerMock) ExportTerm(_ context.Context, _ string, format string) (*service.ExportFile, error) {
	m.format = format
	return &service.ExportFile{Filename: "exam-timetable.csv", ContentType: "text/csv", Body: []byte("date\n")}, nil
}

const generatePayload = `{"departmentId":"dept-1","startDate":"2024-06-03","endDate":"2024-06-07","examType":"MIDTERM","excludedWeekdays":["Sat"],"gapMinutes":0,"customDurations":{"CS101":120}}`

func newJSONContext(method, path, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

func TestExamScheduleGenerateCommitted(t *testing.T) {
	mockSvc := &examSchedulerMock{}
	handler := &ExamScheduleHandler{service: mockSvc}
	c, w := newJSONContext(http.MethodPost, "/exam-schedules/generate", generatePayload)

	handler.Generate(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"mode":"committed"`)
	assert.Equal(t, "dept-1", mockSvc.captured.DepartmentID)
	assert.Equal(t, []string{"Sat"}, mockSvc.captured.ExcludedWeekdays)
	require.NotNil(t, mockSvc.captured.GapMinutes)
	assert.Equal(t, 0, *mockSvc.captured.GapMinutes)
	assert.Equal(t, 120, mockSvc.captured.CustomDurations["CS101"])
}

func TestExamScheduleGeneratePreview(t *testing.T) {
	handler := &ExamScheduleHandler{service: &examSchedulerMock{}}
	body := `{"departmentId":"dept-1","startDate":"2024-06-03","endDate":"2024-06-07","examType":"MIDTERM","dryRun":true}`
	c, w := newJSONContext(http.MethodPost, "/exam-schedules/generate", body)

	handler.Generate(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"mode":"preview"`)
	assert.NotContains(t, w.Body.String(), `"termId"`)
}

func TestExamScheduleGenerateMalformed(t *testing.T) {
	handler := &ExamScheduleHandler{service: &examSchedulerMock{}}
	c, w := newJSONContext(http.MethodPost, "/exam-schedules/generate", `{"departmentId":`)

	handler.Generate(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExamScheduleGenerateUnschedulable(t *testing.T) {
	details := []dto.SchedulingFailureDetail{{Kind: "placement", CourseCode: "CS101", Message: "CS101 on 2024-06-03: insufficient free room capacity"}}
	mockSvc := &examSchedulerMock{err: appErrors.WithDetails(appErrors.ErrUnschedulable, "1 course(s) could not be placed", details)}
	handler := &ExamScheduleHandler{service: mockSvc}
	c, w := newJSONContext(http.MethodPost, "/exam-schedules/generate", generatePayload)

	handler.Generate(c)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"UNSCHEDULABLE"`)
	assert.Contains(t, w.Body.String(), `"courseCode":"CS101"`)
}

func TestExamScheduleExportPassesFormat(t *testing.T) {
	mockSvc := &examSchedulerMock{}
	handler := &ExamScheduleHandler{service: mockSvc}
	c, w := newJSONContext(http.MethodGet, "/exam-terms/term-1/export?format=pdf", "")
	c.Params = gin.Params{{Key: "id", Value: "term-1"}}

	handler.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pdf", mockSvc.format)
	assert.Equal(t, `attachment; filename="exam-timetable.csv"`, w.Header().Get("Content-Disposition"))
}
