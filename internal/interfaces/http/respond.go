package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sugun-2430327/project-backend/pkg/apperrors"
)

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// statusForCode maps application error codes to HTTP status codes
func statusForCode(code apperrors.Code) int {
	switch code {
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeForbidden:
		return http.StatusForbidden
	case apperrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.CodeInvalidInput, apperrors.CodeInvalidAmount:
		return http.StatusBadRequest
	case apperrors.CodeInvalidState, apperrors.CodeDuplicateEnrollment, apperrors.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes an application error as a JSON response. Internal
// errors keep their detail out of the response body.
func respondError(c *gin.Context, logger Logger, err error) {
	code := apperrors.CodeOf(err)
	status := statusForCode(code)

	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "path", c.Request.URL.Path, "error", err)
		message = "internal server error"
	}

	c.JSON(status, Response{Success: false, Error: message})
}

// respondOK writes a successful JSON response
func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}
