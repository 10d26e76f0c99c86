package handler

import (
	"errors"
	"net/http"

	"github.com/aulaplay/aulaplay-backend/internal/middleware"
	"github.com/aulaplay/aulaplay-backend/internal/model"
	"github.com/aulaplay/aulaplay-backend/internal/response"
	"github.com/aulaplay/aulaplay-backend/internal/service"
	"github.com/aulaplay/aulaplay-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AnswerRequest carries the raw answer for the current question.
type AnswerRequest struct {
	Answer string `json:"answer" binding:"required"`
}

// StudentPortalHandler handles student-facing endpoints (catalog, session taking).
type StudentPortalHandler struct {
	sessionService  *service.SessionService
	activityService *service.ActivityService
}

// NewStudentPortalHandler creates a new StudentPortalHandler.
func NewStudentPortalHandler(
	sessionService *service.SessionService,
	activityService *service.ActivityService,
) *StudentPortalHandler {
	return &StudentPortalHandler{
		sessionService:  sessionService,
		activityService: activityService,
	}
}

// sessionFail maps session domain errors to API error codes.
func sessionFail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoSession):
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
	case errors.Is(err, service.ErrSessionAlreadyRunning):
		response.Fail(c, http.StatusConflict, response.ErrSessionAlreadyRunning)
	case errors.Is(err, service.ErrAnswerRequired):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrAnswerRequired)
	case errors.Is(err, service.ErrSessionFinished):
		response.Fail(c, http.StatusConflict, response.ErrSessionCompleted)
	case errors.Is(err, service.ErrResultNotReady):
		response.Fail(c, http.StatusNotFound, response.ErrResultNotReady)
	case errors.Is(err, service.ErrActivityNotPublished):
		response.Fail(c, http.StatusBadRequest, response.ErrActivityNotAvailable)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

func sessionParams(c *gin.Context) (int, uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return 0, uuid.Nil, false
	}
	activityID, err := uuid.Parse(c.Param("activity_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, uuid.Nil, false
	}
	return claims.UserID, activityID, true
}

// ListActivities godoc
// GET /api/v1/student/activities
// Returns the catalog of published activities.
func (h *StudentPortalHandler) ListActivities(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	activities, err := h.activityService.ListPublished(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"activities": activities})
}

// GetActivityPayload godoc
// GET /api/v1/student/activities/:activity_id/payload
// Returns the sanitized activity payload from Redis (answer key stripped).
func (h *StudentPortalHandler) GetActivityPayload(c *gin.Context) {
	_, activityID, ok := sessionParams(c)
	if !ok {
		return
	}

	payload, err := h.activityService.GetActivityPayload(c.Request.Context(), activityID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrActivityNotPublished)
		return
	}

	response.Success(c, http.StatusOK, payload)
}

// StartSession godoc
// POST /api/v1/student/activities/:activity_id/session
// Starts a fresh session. A retry after completion starts over from scratch.
func (h *StudentPortalHandler) StartSession(c *gin.Context) {
	studentID, activityID, ok := sessionParams(c)
	if !ok {
		return
	}

	state, err := h.sessionService.Start(c.Request.Context(), studentID, activityID)
	if err != nil {
		sessionFail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": state})
}

// GetSessionState godoc
// GET /api/v1/student/activities/:activity_id/session
// Returns the running session snapshot, covering page reloads.
func (h *StudentPortalHandler) GetSessionState(c *gin.Context) {
	studentID, activityID, ok := sessionParams(c)
	if !ok {
		return
	}

	state, err := h.sessionService.State(studentID, activityID)
	if err != nil {
		sessionFail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": state})
}

// RecordAnswer godoc
// POST /api/v1/student/activities/:activity_id/session/answer
// Records the answer for the current question, overwriting any previous one.
func (h *StudentPortalHandler) RecordAnswer(c *gin.Context) {
	studentID, activityID, ok := sessionParams(c)
	if !ok {
		return
	}

	var req AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	state, err := h.sessionService.RecordAnswer(studentID, activityID, req.Answer)
	if err != nil {
		sessionFail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": state})
}

// Advance godoc
// POST /api/v1/student/activities/:activity_id/session/advance
// Moves to the next question; from the last question this submits.
func (h *StudentPortalHandler) Advance(c *gin.Context) {
	studentID, activityID, ok := sessionParams(c)
	if !ok {
		return
	}

	state, err := h.sessionService.Advance(studentID, activityID)
	if err != nil {
		sessionFail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": state})
}

// Retreat godoc
// POST /api/v1/student/activities/:activity_id/session/retreat
// Moves back one question. Never requires an answer.
func (h *StudentPortalHandler) Retreat(c *gin.Context) {
	studentID, activityID, ok := sessionParams(c)
	if !ok {
		return
	}

	state, err := h.sessionService.Retreat(studentID, activityID)
	if err != nil {
		sessionFail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": state})
}

// Submit godoc
// POST /api/v1/student/activities/:activity_id/session/submit
// Finishes the session explicitly and scores it.
func (h *StudentPortalHandler) Submit(c *gin.Context) {
	studentID, activityID, ok := sessionParams(c)
	if !ok {
		return
	}

	state, err := h.sessionService.Submit(studentID, activityID)
	if err != nil {
		sessionFail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": state})
}

// AbandonSession godoc
// DELETE /api/v1/student/activities/:activity_id/session
// Tears down a running session without scoring it.
func (h *StudentPortalHandler) AbandonSession(c *gin.Context) {
	studentID, activityID, ok := sessionParams(c)
	if !ok {
		return
	}

	if err := h.sessionService.Abandon(c.Request.Context(), studentID, activityID); err != nil {
		sessionFail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// GetResult godoc
// GET /api/v1/student/activities/:activity_id/result
// Returns the score and per-question review for a completed session.
func (h *StudentPortalHandler) GetResult(c *gin.Context) {
	studentID, activityID, ok := sessionParams(c)
	if !ok {
		return
	}

	result, err := h.sessionService.Result(c.Request.Context(), studentID, activityID)
	if err != nil {
		sessionFail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// ListMyResults godoc
// GET /api/v1/student/results
// Returns all of the student's past results, newest first.
func (h *StudentPortalHandler) ListMyResults(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	results, err := h.sessionService.ListResults(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if results == nil {
		results = []model.Result{}
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}
