package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-seb/internal/response"
	"github.com/stemsi/exstem-seb/internal/service"
)

// startTimeLayout formats the exam start time in EXAM_NOT_STARTED messages.
const startTimeLayout = "2006-01-02 15:04 MST"

// failFromError maps a service error to its HTTP status and error code.
// Unknown errors are logged and reported as INTERNAL_ERROR.
func failFromError(c *gin.Context, log zerolog.Logger, err error) {
	var windowErr *service.WindowError

	switch {
	case errors.Is(err, service.ErrExamNotFound), errors.Is(err, service.ErrAttemptNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrAttemptForbidden):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrAttemptExists):
		response.Fail(c, http.StatusForbidden, response.ErrAttemptExists)
	case errors.Is(err, service.ErrSEBRequired):
		response.Fail(c, http.StatusForbidden, response.ErrSEBRequired)
	case errors.As(err, &windowErr) && errors.Is(err, service.ErrExamNotStarted):
		failNotStarted(c, windowErr.StartAt)
	case errors.Is(err, service.ErrExamEnded):
		response.Fail(c, http.StatusForbidden, response.ErrExamEnded)
	default:
		log.Error().Err(err).
			Str("request_id", response.RequestID(c)).
			Str("path", c.FullPath()).
			Msg("Request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

func failNotStarted(c *gin.Context, startAt *time.Time) {
	if startAt == nil {
		response.Fail(c, http.StatusForbidden, response.ErrExamNotStarted)
		return
	}
	msg := response.GetMessage(response.ErrExamNotStarted) + " Ujian dapat dimulai pada " + startAt.Format(startTimeLayout) + "."
	response.FailWithMessage(c, http.StatusForbidden, response.ErrExamNotStarted, msg, map[string]string{
		"start_at": startAt.Format(time.RFC3339),
	})
}

// attestationRequest extracts what the exam browser check inspects.
func attestationRequest(c *gin.Context) service.AttestationRequest {
	return service.AttestationRequest{
		Headers:   c.Request.Header,
		UserAgent: c.Request.UserAgent(),
		Query:     c.Request.URL.Query(),
	}
}
