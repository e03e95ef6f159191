package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-scheduler-api/internal/dto"
	"github.com/noah-isme/exam-scheduler-api/internal/middleware"
	"github.com/noah-isme/exam-scheduler-api/internal/service"
	appErrors "github.com/noah-isme/exam-scheduler-api/pkg/errors"
	"github.com/noah-isme/exam-scheduler-api/pkg/response"
)

type seatingPlanner interface {
	Generate(ctx context.Context, examID string) (*dto.SeatingResponse, error)
	Get(ctx context.Context, examID string) (*dto.SeatingResponse, error)
	Overview(ctx context.Context, examID string) (*dto.ExamOverviewResponse, error)
	ListLatest(ctx context.Context, departmentID string) (*dto.TermExamsResponse, error)
	Export(ctx context.Context, examID, format string) (*service.ExportFile, error)
}

// SeatingHandler exposes exam and seating endpoints.
type SeatingHandler struct {
	service seatingPlanner
}

// NewSeatingHandler constructs the handler.
func NewSeatingHandler(svc *service.SeatingService) *SeatingHandler {
	return &SeatingHandler{service: svc}
}

// Latest godoc
// @Summary Latest exams of a department
// @Description Exams of the department's most recent term, falling back to the term's date range.
// @Tags Seating
// @Produce json
// @Param id path string true "Department ID"
// @Success 200 {object} response.Envelope
// @Router /departments/{id}/exams/latest [get]
func (h *SeatingHandler) Latest(c *gin.Context) {
	result, err := h.service.ListLatest(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, middleware.ResponseMeta(c, nil))
}

// Overview godoc
// @Summary Exam with its rooms
// @Tags Seating
// @Produce json
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exams/{id} [get]
func (h *SeatingHandler) Overview(c *gin.Context) {
	result, err := h.service.Overview(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, middleware.ResponseMeta(c, nil))
}

// Generate godoc
// @Summary Generate the seating plan of an exam
// @Description Replaces any stored plan. Warnings never block generation.
// @Tags Seating
// @Produce json
// @Param id path string true "Exam ID"
// @Success 201 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /exams/{id}/seating [post]
func (h *SeatingHandler) Generate(c *gin.Context) {
	result, err := h.service.Generate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result, middleware.ResponseMeta(c, map[string]interface{}{"warnings": len(result.Warnings)}))
}

// Get godoc
// @Summary Stored seating plan of an exam
// @Tags Seating
// @Produce json
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exams/{id}/seating [get]
func (h *SeatingHandler) Get(c *gin.Context) {
	result, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, middleware.ResponseMeta(c, nil))
}

// Export godoc
// @Summary Export a seating plan
// @Tags Seating
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Exam ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /exams/{id}/seating/export [get]
func (h *SeatingHandler) Export(c *gin.Context) {
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	file, err := h.service.Export(c.Request.Context(), c.Param("id"), query.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Body)
}
