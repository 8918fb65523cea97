package errorx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler renders errors into the API envelope and logs server-side causes.
type Handler struct {
	logger *zap.Logger
}

// NewHandler creates a new error handler
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{logger: logger.Named("errorx")}
}

// Render writes err as a {success:false, msg} response. Typed APIErrors keep
// their status code and message; anything else becomes a 500 with a generic
// message, with the real error going to the log only.
func (h *Handler) Render(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		apiErr = Internal("Something went wrong. Please try again", err)
	}

	fields := []zap.Field{
		zap.String("category", string(apiErr.Category)),
		zap.String("path", c.FullPath()),
		zap.String("method", c.Request.Method),
	}
	if cause := apiErr.Unwrap(); cause != nil {
		fields = append(fields, zap.Error(cause))
	}
	if apiErr.HTTPStatus >= http.StatusInternalServerError {
		h.logger.Error(apiErr.Message, fields...)
	} else {
		h.logger.Warn(apiErr.Message, fields...)
	}

	c.JSON(apiErr.HTTPStatus, gin.H{
		"msg":     apiErr.Message,
		"success": false,
	})
}
