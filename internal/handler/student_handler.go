package handler

import (
	"errors"
	"net/http"

	"github.com/eksamina/eksaminator-backend/internal/model"
	"github.com/eksamina/eksaminator-backend/internal/response"
	"github.com/eksamina/eksaminator-backend/internal/service"
	"github.com/eksamina/eksaminator-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StudentHandler handles student enrollment endpoints.
type StudentHandler struct {
	studentService *service.StudentService
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(studentService *service.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

// List godoc
// GET /api/v1/exams/:exam_id/students
// Returns the students enrolled in an exam in examination order.
func (h *StudentHandler) List(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	students, err := h.studentService.ListByExam(c.Request.Context(), examID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"students": students})
}

// Enroll godoc
// POST /api/v1/exams/:exam_id/students
// Adds a student to an exam. The student is appended to the examination
// order. Enrollment into a completed exam is rejected.
func (h *StudentHandler) Enroll(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.EnrollStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.studentService.Enroll(c.Request.Context(), examID, &req)
	if err != nil {
		if errors.Is(err, service.ErrExamCompleted) {
			response.Fail(c, http.StatusConflict, response.ErrExamCompleted)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"student": student})
}
