package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-seb/internal/middleware"
	"github.com/stemsi/exstem-seb/internal/model"
	"github.com/stemsi/exstem-seb/internal/response"
	"github.com/stemsi/exstem-seb/internal/seb"
	"github.com/stemsi/exstem-seb/internal/service"
	"github.com/stemsi/exstem-seb/internal/validator"
)

// ExamUseCases is the slice of *service.ExamService the handler calls.
type ExamUseCases interface {
	GetQuestions(ctx context.Context, examID uuid.UUID, userID int, req service.AttestationRequest) ([]model.QuestionForStudent, error)
	SEBConfig(ctx context.Context, examID uuid.UUID, platform string) ([]byte, error)
	SEBConfigInfo(ctx context.Context, examID uuid.UUID) (*model.SEBConfigInfo, error)
	EnsureBrowserKey(ctx context.Context, examID uuid.UUID, rotate bool) (*model.BrowserKeyResponse, error)
}

// ExamHandler handles exam-level endpoints of the exam-taking flow.
type ExamHandler struct {
	exams ExamUseCases
	log   zerolog.Logger
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(exams ExamUseCases, log zerolog.Logger) *ExamHandler {
	return &ExamHandler{
		exams: exams,
		log:   log.With().Str("component", "exam_handler").Logger(),
	}
}

// GetQuestions godoc
// GET /api/v1/exams/:exam_id/questions
// Returns the question set without answers.
func (h *ExamHandler) GetQuestions(c *gin.Context) {
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

	questions, err := h.exams.GetQuestions(c.Request.Context(), examID, claims.UserID, attestationRequest(c))
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	if questions == nil {
		questions = []model.QuestionForStudent{}
	}
	response.Success(c, http.StatusOK, questions)
}

// DownloadSEBConfig godoc
// GET /api/v1/exams/:exam_id/seb-config?platform=mac|win|ios
// Streams the locked browser configuration as an attachment.
func (h *ExamHandler) DownloadSEBConfig(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var q model.SEBConfigQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	doc, err := h.exams.SEBConfig(c.Request.Context(), examID, q.Platform)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="exam-%s.seb"`, examID))
	c.Data(http.StatusOK, seb.ContentType, doc)
}

// GetSEBConfigInfo godoc
// GET /api/v1/exams/:exam_id/seb-config-info
// Returns the start URL and version a generated config would carry.
func (h *ExamHandler) GetSEBConfigInfo(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	info, err := h.exams.SEBConfigInfo(c.Request.Context(), examID)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, info)
}

// GenerateBrowserKey godoc
// POST /api/v1/admin/exams/:exam_id/seb-browser-key?rotate=true
// Generates the exam's browser key once; rotate replaces an existing key.
func (h *ExamHandler) GenerateBrowserKey(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var q model.RotateKeyQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	key, err := h.exams.EnsureBrowserKey(c.Request.Context(), examID, q.Rotate)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, key)
}
