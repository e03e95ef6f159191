package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-scheduler-api/internal/dto"
	"github.com/noah-isme/exam-scheduler-api/internal/middleware"
	"github.com/noah-isme/exam-scheduler-api/internal/service"
	appErrors "github.com/noah-isme/exam-scheduler-api/pkg/errors"
	"github.com/noah-isme/exam-scheduler-api/pkg/middleware/requestid"
)

type seatingPlannerMock struct{}

func (seatingPlannerMock) Generate(_ context.Context, examID string) (*dto.SeatingResponse, error) {
	if examID == "full" {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "room capacity is smaller than the number of students")
	}
	return &dto.SeatingResponse{
		ExamID:   examID,
		Seats:    []dto.SeatResponse{{StudentNumber: "S001", RoomCode: "R-101", Row: 1, Column: 1}},
		Warnings: []dto.SeatingWarning{{Kind: "idle_room", RoomCode: "R-102", Message: "room R-102 received no students"}},
	}, nil
}

func (seatingPlannerMock) Get(_ context.Context, examID string) (*dto.SeatingResponse, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "seating has not been generated for this exam")
}

func (seatingPlannerMock) Overview(_ context.Context, examID string) (*dto.ExamOverviewResponse, error) {
	return &dto.ExamOverviewResponse{Exam: dto.ExamSummary{ID: examID, CourseCode: "CS101"}}, nil
}

func (seatingPlannerMock) ListLatest(_ context.Context, departmentID string) (*dto.TermExamsResponse, error) {
	return &dto.TermExamsResponse{Exams: []dto.ExamSummary{}}, nil
}

func (seatingPlannerMock) Export(_ context.Context, examID, format string) (*service.ExportFile, error) {
	return &service.ExportFile{Filename: "seating-cs101.pdf", ContentType: "application/pdf", Body: []byte("%PDF-1.3")}, nil
}

func buildRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(requestid.Middleware(), middleware.WithResponseMeta())
	RegisterRoutes(router.Group("/api/v1"), &ExamScheduleHandler{service: &examSchedulerMock{}}, &SeatingHandler{service: seatingPlannerMock{}})
	return router
}

func performRequest(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRoutesIntegration(t *testing.T) {
	router := buildRouter()

	t.Run("generate seating", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/exams/exam-1/seating", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusCreated, resp.Code)
		assert.Contains(t, resp.Body.String(), `"warnings":1`)
		assert.Contains(t, resp.Body.String(), `"request_id"`)
		assert.NotEmpty(t, resp.Header().Get("X-Request-ID"))
	})

	t.Run("seating shortfall", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/exams/full/seating", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusPreconditionFailed, resp.Code)
		assert.Contains(t, resp.Body.String(), `"PRECONDITION_FAILED"`)
	})

	t.Run("stored seating missing", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/exams/exam-1/seating", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("exam overview", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/exams/exam-1", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"courseCode":"CS101"`)
	})

	t.Run("latest exams", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/departments/dept-1/exams/latest", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "no-store", resp.Header().Get("Cache-Control"))
	})

	t.Run("seating export", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/exams/exam-1/seating/export?format=pdf", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "application/pdf", resp.Header().Get("Content-Type"))
	})

	t.Run("term exams not found", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/exam-terms/unknown/exams", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("term exams", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/exam-terms/term-1/exams", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"count":1`)
	})
}
