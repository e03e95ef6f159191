package handler

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the exam and seating endpoints on the API group.
func RegisterRoutes(api *gin.RouterGroup, exams *ExamScheduleHandler, seating *SeatingHandler) {
	api.POST("/exam-schedules/generate", exams.Generate)
	api.GET("/exam-terms/:id/exams", exams.ListByTerm)
	api.GET("/exam-terms/:id/export", exams.Export)

	api.GET("/departments/:id/exams/latest", seating.Latest)
	api.GET("/exams/:id", seating.Overview)
	api.POST("/exams/:id/seating", seating.Generate)
	api.GET("/exams/:id/seating", seating.Get)
	api.GET("/exams/:id/seating/export", seating.Export)
}
