package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/aulaplay/aulaplay-backend/internal/middleware"
	"github.com/aulaplay/aulaplay-backend/internal/model"
	"github.com/aulaplay/aulaplay-backend/internal/response"
	"github.com/aulaplay/aulaplay-backend/internal/service"
	"github.com/aulaplay/aulaplay-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ActivityHandler handles staff-side activity authoring and result reporting.
type ActivityHandler struct {
	activityService *service.ActivityService
	resultService   *service.ResultService
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(activityService *service.ActivityService, resultService *service.ResultService) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		resultService:   resultService,
	}
}

// scopeAuthorID returns the author filter for the caller: teachers only see
// their own activities, admins and coordinators see everything (0 = no filter).
func scopeAuthorID(c *gin.Context) (int, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return 0, false
	}
	if claims.Role == string(model.StaffRoleTeacher) {
		return claims.UserID, true
	}
	return 0, true
}

// activityFail maps activity domain errors to API error codes.
func activityFail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotActivityAuthor):
		response.Fail(c, http.StatusForbidden, response.ErrNotActivityAuthor)
	case errors.Is(err, service.ErrActivityNotDraft):
		response.Fail(c, http.StatusConflict, response.ErrActivityNotDraft)
	case errors.Is(err, service.ErrActivityNotPublished):
		response.Fail(c, http.StatusConflict, response.ErrActivityNotPublished)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoQuestions)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// List godoc
// GET /api/v1/staff/activities?page=1&per_page=10
func (h *ActivityHandler) List(c *gin.Context) {
	authorID, ok := scopeAuthorID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	activities, pagination, err := h.activityService.ListByAuthor(c.Request.Context(), authorID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"activities": activities}, pagination)
}

// Get godoc
// GET /api/v1/staff/activities/:activity_id
// Returns the activity with its full question list, answer key included.
func (h *ActivityHandler) Get(c *gin.Context) {
	authorID, ok := scopeAuthorID(c)
	if !ok {
		return
	}

	activityID, err := uuid.Parse(c.Param("activity_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	activity, err := h.activityService.GetWithQuestions(c.Request.Context(), activityID)
	if err != nil {
		activityFail(c, err)
		return
	}
	if authorID != 0 && activity.AuthorID != authorID {
		response.Fail(c, http.StatusForbidden, response.ErrNotActivityAuthor)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"activity": activity})
}

// Create godoc
// POST /api/v1/staff/activities
func (h *ActivityHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateActivityRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	activity := &model.Activity{
		Title:            req.Title,
		Description:      req.Description,
		SubjectID:        req.SubjectID,
		Difficulty:       req.Difficulty,
		TimeLimitSeconds: req.TimeLimitSeconds,
		AuthorID:         claims.UserID,
	}

	if err := h.activityService.Create(c.Request.Context(), activity); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"activity": activity})
}

// Update godoc
// PUT /api/v1/staff/activities/:activity_id
// Only draft activities can be edited.
func (h *ActivityHandler) Update(c *gin.Context) {
	authorID, ok := scopeAuthorID(c)
	if !ok {
		return
	}

	activityID, err := uuid.Parse(c.Param("activity_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateActivityRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	existing, err := h.activityService.GetByID(c.Request.Context(), activityID)
	if err != nil {
		activityFail(c, err)
		return
	}

	if req.Title != "" {
		existing.Title = req.Title
	}
	if req.Description != nil {
		existing.Description = *req.Description
	}
	if req.SubjectID != nil {
		existing.SubjectID = *req.SubjectID
	}
	if req.Difficulty != "" {
		existing.Difficulty = req.Difficulty
	}
	if req.TimeLimitSeconds != 0 {
		existing.TimeLimitSeconds = req.TimeLimitSeconds
	}

	if err := h.activityService.Update(c.Request.Context(), authorID, existing); err != nil {
		activityFail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"activity": existing})
}

// Delete godoc
// DELETE /api/v1/staff/activities/:activity_id
func (h *ActivityHandler) Delete(c *gin.Context) {
	authorID, ok := scopeAuthorID(c)
	if !ok {
		return
	}

	activityID, err := uuid.Parse(c.Param("activity_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.activityService.Delete(c.Request.Context(), activityID, authorID); err != nil {
		activityFail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// AddQuestion godoc
// POST /api/v1/staff/activities/:activity_id/questions
func (h *ActivityHandler) AddQuestion(c *gin.Context) {
	authorID, ok := scopeAuthorID(c)
	if !ok {
		return
	}

	activityID, err := uuid.Parse(c.Param("activity_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.AddQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question := req.Question()
	question.ActivityID = activityID

	if err := h.activityService.AddQuestion(c.Request.Context(), authorID, &question); err != nil {
		if errors.Is(err, service.ErrInvalidQuestion) {
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrInvalidQuestion)
			return
		}
		activityFail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// ReplaceQuestions godoc
// PUT /api/v1/staff/activities/:activity_id/questions
// Swaps the full question list in one transaction.
func (h *ActivityHandler) ReplaceQuestions(c *gin.Context) {
	authorID, ok := scopeAuthorID(c)
	if !ok {
		return
	}

	activityID, err := uuid.Parse(c.Param("activity_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ReplaceQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questions := make([]model.Question, 0, len(req.Questions))
	for i := range req.Questions {
		q := req.Questions[i].Question()
		q.ActivityID = activityID
		questions = append(questions, q)
	}

	if err := h.activityService.ReplaceQuestions(c.Request.Context(), authorID, activityID, questions); err != nil {
		if errors.Is(err, service.ErrInvalidQuestion) {
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrInvalidQuestion)
			return
		}
		activityFail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"count": len(questions)})
}

// ListQuestions godoc
// GET /api/v1/staff/activities/:activity_id/questions
func (h *ActivityHandler) ListQuestions(c *gin.Context) {
	authorID, ok := scopeAuthorID(c)
	if !ok {
		return
	}

	activityID, err := uuid.Parse(c.Param("activity_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	activity, err := h.activityService.GetByID(c.Request.Context(), activityID)
	if err != nil {
		activityFail(c, err)
		return
	}
	if authorID != 0 && activity.AuthorID != authorID {
		response.Fail(c, http.StatusForbidden, response.ErrNotActivityAuthor)
		return
	}

	questions, err := h.activityService.ListQuestions(c.Request.Context(), activityID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if questions == nil {
		questions = []model.Question{}
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// Publish godoc
// POST /api/v1/staff/activities/:activity_id/publish
// Validates the question set, warms the Redis payload cache and goes live.
func (h *ActivityHandler) Publish(c *gin.Context) {
	authorID, ok := scopeAuthorID(c)
	if !ok {
		return
	}

	activityID, err := uuid.Parse(c.Param("activity_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.activityService.Publish(c.Request.Context(), activityID, authorID); err != nil {
		activityFail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": model.ActivityStatusPublished})
}

// Archive godoc
// POST /api/v1/staff/activities/:activity_id/archive
func (h *ActivityHandler) Archive(c *gin.Context) {
	authorID, ok := scopeAuthorID(c)
	if !ok {
		return
	}

	activityID, err := uuid.Parse(c.Param("activity_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.activityService.Archive(c.Request.Context(), activityID, authorID); err != nil {
		activityFail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": model.ActivityStatusArchived})
}

// GetResults godoc
// GET /api/v1/staff/activities/:activity_id/results?page=1&per_page=20&grade_label=3A
// Returns per-student results for the activity.
func (h *ActivityHandler) GetResults(c *gin.Context) {
	authorID, ok := scopeAuthorID(c)
	if !ok {
		return
	}

	activityID, err := uuid.Parse(c.Param("activity_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	activity, err := h.activityService.GetByID(c.Request.Context(), activityID)
	if err != nil {
		activityFail(c, err)
		return
	}
	if authorID != 0 && activity.AuthorID != authorID {
		response.Fail(c, http.StatusForbidden, response.ErrNotActivityAuthor)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	var gradeLabel *string
	if g := c.Query("grade_label"); g != "" {
		gradeLabel = &g
	}

	results, pagination, err := h.resultService.ListByActivity(c.Request.Context(), activityID, page, perPage, gradeLabel)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{
		"activity": gin.H{
			"id":     activity.ID,
			"title":  activity.Title,
			"status": activity.Status,
		},
		"results": results,
	}, pagination)
}
