package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"task-tracker/internal/errors"
	"task-tracker/internal/validation"
)

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func (s *Server) respondError(c *gin.Context, err error) {
	err = validation.AsAppError(err)
	status := errors.HTTPStatus(err)

	if errors.ShouldLogError(err) {
		s.logger.Error("request failed",
			slog.String("request_id", c.GetString(requestIDKey)),
			slog.String("path", c.FullPath()),
			slog.Any("error", err))
	}

	c.JSON(status, gin.H{
		"success": false,
		"error":   errors.GetUserMessage(err),
		"code":    errors.GetErrorCode(err),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
