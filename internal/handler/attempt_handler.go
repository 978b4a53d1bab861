package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-seb/internal/middleware"
	"github.com/stemsi/exstem-seb/internal/model"
	"github.com/stemsi/exstem-seb/internal/response"
	"github.com/stemsi/exstem-seb/internal/service"
	"github.com/stemsi/exstem-seb/internal/validator"
)

// AttemptUseCases is the slice of *service.AttemptService the handler calls.
type AttemptUseCases interface {
	Start(ctx context.Context, examID uuid.UUID, userID int, req service.AttestationRequest) (*service.StartResult, error)
	RecordAnswer(ctx context.Context, attemptID uuid.UUID, userID int, questionID uuid.UUID, payload []byte) (*model.Answer, error)
	Submit(ctx context.Context, attemptID uuid.UUID, userID int) (*model.Attempt, error)
}

// AttemptHandler handles the attempt lifecycle endpoints.
type AttemptHandler struct {
	attempts AttemptUseCases
	log      zerolog.Logger
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attempts AttemptUseCases, log zerolog.Logger) *AttemptHandler {
	return &AttemptHandler{
		attempts: attempts,
		log:      log.With().Str("component", "attempt_handler").Logger(),
	}
}

// StartAttempt godoc
// POST /api/v1/exams/:exam_id/start
// Creates the caller's attempt (201) or resumes an in-progress one (200).
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	res, err := h.attempts.Start(c.Request.Context(), examID, claims.UserID, attestationRequest(c))
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	response.Success(c, status, res.Attempt)
}

// SubmitAnswer godoc
// POST /api/v1/attempts/:attempt_id/answer
// Appends an answer to the caller's attempt.
func (h *AttemptHandler) SubmitAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	// Already validated as a UUID by the binding tag.
	questionID := uuid.MustParse(req.QuestionID)

	answer, err := h.attempts.RecordAnswer(c.Request.Context(), attemptID, claims.UserID, questionID, req.Answer)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, answer)
}

// SubmitAttempt godoc
// POST /api/v1/attempts/:attempt_id/submit
// Marks the caller's attempt submitted.
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	attempt, err := h.attempts.Submit(c.Request.Context(), attemptID, claims.UserID)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, attempt)
}
