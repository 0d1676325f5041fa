package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/at-ishikawa/quizdrill/internal/drill"
	"github.com/at-ishikawa/quizdrill/internal/question"
	"github.com/at-ishikawa/quizdrill/internal/session"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// classify maps a drill error to its HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, question.ErrNoData):
		return http.StatusServiceUnavailable, "no_question_data"
	case errors.Is(err, drill.ErrUnknownQuestion):
		return http.StatusBadRequest, "unknown_question"
	case errors.Is(err, drill.ErrEmptySubmission):
		return http.StatusBadRequest, "empty_submission"
	case errors.Is(err, session.ErrNoUser):
		return http.StatusUnauthorized, "no_session"
	default:
		return http.StatusInternalServerError, "store_error"
	}
}
