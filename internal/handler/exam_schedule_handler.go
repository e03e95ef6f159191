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

type examScheduler interface {
	Generate(ctx context.Context, req dto.GenerateExamScheduleRequest) (*dto.GenerateExamScheduleResponse, error)
	ListByTerm(ctx context.Context, termID string) (*dto.TermExamsResponse, error)
	ExportTerm(ctx context.Context, termID, format string) (*service.ExportFile, error)
}

// ExamScheduleHandler exposes exam timetable endpoints.
type ExamScheduleHandler struct {
	service examScheduler
}

// NewExamScheduleHandler constructs the handler.
func NewExamScheduleHandler(svc *service.ExamScheduleService) *ExamScheduleHandler {
	return &ExamScheduleHandler{service: svc}
}

// Generate godoc
// @Summary Generate an exam timetable
// @Description Places every selected course into a day, time slot and rooms. With dryRun the placements are returned without being stored.
// @Tags Exam Scheduling
// @Accept json
// @Produce json
// @Param payload body dto.GenerateExamScheduleRequest true "Scheduling run parameters"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /exam-schedules/generate [post]
func (h *ExamScheduleHandler) Generate(c *gin.Context) {
	var req dto.GenerateExamScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid exam schedule payload"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.DryRun {
		response.JSON(c, http.StatusOK, result, middleware.ResponseMeta(c, map[string]interface{}{"mode": "preview"}))
		return
	}
	response.Created(c, result, middleware.ResponseMeta(c, map[string]interface{}{"mode": "committed"}))
}

// ListByTerm godoc
// @Summary List the exams of a term
// @Tags Exam Scheduling
// @Produce json
// @Param id path string true "Exam term ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exam-terms/{id}/exams [get]
func (h *ExamScheduleHandler) ListByTerm(c *gin.Context) {
	result, err := h.service.ListByTerm(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, middleware.ResponseMeta(c, map[string]interface{}{"count": len(result.Exams)}))
}

// Export godoc
// @Summary Export a term timetable
// @Tags Exam Scheduling
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Exam term ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /exam-terms/{id}/export [get]
func (h *ExamScheduleHandler) Export(c *gin.Context) {
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	file, err := h.service.ExportTerm(c.Request.Context(), c.Param("id"), query.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Body)
}
