package handler

import (
	"errors"
	"net/http"

	"github.com/eksamina/eksaminator-backend/internal/model"
	"github.com/eksamina/eksaminator-backend/internal/response"
	"github.com/eksamina/eksaminator-backend/internal/service"
	"github.com/eksamina/eksaminator-backend/internal/session"
	"github.com/eksamina/eksaminator-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// SessionHandler handles the live exam session endpoints. All actions apply
// to the single active session held by the SessionService.
type SessionHandler struct {
	sessionService *service.SessionService
	log            zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.SessionService, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "session_handler").Logger(),
	}
}

// Load godoc
// POST /api/v1/session/load
// Loads (or resumes) a sitting for an exam, replacing any session in
// progress. Students already graded are skipped.
func (h *SessionHandler) Load(c *gin.Context) {
	var req struct {
		ExamID string `json:"exam_id" binding:"required,uuid"`
	}
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	examID := uuid.MustParse(req.ExamID)
	snap, err := h.sessionService.LoadExam(c.Request.Context(), examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		h.failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": snap})
}

// GetState godoc
// GET /api/v1/session
// Returns the current session snapshot.
func (h *SessionHandler) GetState(c *gin.Context) {
	snap, err := h.sessionService.Snapshot()
	if err != nil {
		h.failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": snap})
}

// DrawQuestion godoc
// POST /api/v1/session/draw
// Draws a random question number for the active student.
func (h *SessionHandler) DrawQuestion(c *gin.Context) {
	snap, err := h.sessionService.DrawQuestion()
	if err != nil {
		h.failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": snap})
}

// StartExamination godoc
// POST /api/v1/session/start
// Starts the countdown for the active student.
func (h *SessionHandler) StartExamination(c *gin.Context) {
	snap, err := h.sessionService.StartExamination()
	if err != nil {
		h.failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": snap})
}

// EndExamination godoc
// POST /api/v1/session/end
// Stops the countdown before it expires.
func (h *SessionHandler) EndExamination(c *gin.Context) {
	snap, err := h.sessionService.EndExamination()
	if err != nil {
		h.failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": snap})
}

// SubmitGrade godoc
// POST /api/v1/session/grade
// Records the active student's grade and advances to the next student.
func (h *SessionHandler) SubmitGrade(c *gin.Context) {
	var req model.SubmitGradeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	snap, err := h.sessionService.SubmitGrade(c.Request.Context(), model.Grade(req.Grade), req.Notes)
	if err != nil {
		// The result may have been saved even when the completion flag
		// write failed; surface the error but keep the snapshot honest.
		if snap.State != "" {
			h.log.Error().Err(err).Msg("result saved but completion flag update failed")
		}
		h.failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": snap})
}

func (h *SessionHandler) failSession(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoActiveSession), errors.Is(err, session.ErrClosed):
		response.Fail(c, http.StatusConflict, response.ErrNoActiveSession)
	case errors.Is(err, session.ErrNoStudents):
		response.Fail(c, http.StatusConflict, response.ErrNoStudents)
	case errors.Is(err, session.ErrDuplicateResult):
		response.Fail(c, http.StatusConflict, response.ErrResultExists)
	case errors.Is(err, session.ErrInvalidGrade):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidGrade)
	case session.IsTransitionError(err):
		response.Fail(c, http.StatusConflict, response.ErrInvalidSessionState)
	default:
		h.log.Error().Err(err).Msg("session action failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
