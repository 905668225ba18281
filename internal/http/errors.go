package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"oxigo-server/internal/apperr"
)

func statusOf(err error) int {
	switch {
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as {"detail": message} with the status of its kind.
func (s *Server) fail(c *gin.Context, err error) {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		s.log.Error(c.Request.Context(), "request failed",
			"request_id", c.GetString("requestID"),
			"path", c.Request.URL.Path,
			"error", err,
		)
	}
	c.AbortWithStatusJSON(code, gin.H{"detail": apperr.Message(err)})
}
