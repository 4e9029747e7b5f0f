// Package respond writes the JSON envelope shared by every endpoint:
// {success: true, ...} on success and {success: false, message, error?} on failure.
package respond

import (
	"net/http"

	"bike-parking-api-server/internal/apperr"
	"bike-parking-api-server/internal/logger"

	"github.com/gin-gonic/gin"
)

// OK writes body with success set.
func OK(c *gin.Context, status int, body gin.H) {
	if body == nil {
		body = gin.H{}
	}
	body["success"] = true
	c.JSON(status, body)
}

// Error translates err into its status code and failure envelope. The raw error text is
// only exposed through "error" for unexpected failures.
func Error(c *gin.Context, err error) {
	status := apperr.Status(err)
	body := gin.H{"success": false, "message": apperr.Message(err)}
	if fields := apperr.Fields(err); len(fields) > 0 {
		body["fields"] = fields
	}
	if status == http.StatusInternalServerError {
		logger.ErrorContext(c.Request.Context(), "Request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
		body["error"] = err.Error()
	}
	c.AbortWithStatusJSON(status, body)
}
