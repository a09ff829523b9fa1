package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qwerty-development/gym-webapp-sub000/internal/apperr"
	"github.com/qwerty-development/gym-webapp-sub000/internal/logger"
)

// Fail answers with the status apperr assigns to err. Internal failures are
// logged and reported with a generic message instead of the driver error.
func Fail(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		c.JSON(status, ErrorResponse{Error: "internal error"})
		return
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}
