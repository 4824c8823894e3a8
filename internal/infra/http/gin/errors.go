package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/infra/obs"
	"staybook/internal/infra/storage/s3"
	"staybook/internal/pkg/apperror"
)

var errMalformedBody = apperror.Invalid("request.malformed", "request body is malformed")

// respondError writes {"message": ...} in the caller's language. Unclassified
// errors are logged and hidden behind a generic server error.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	tag := preferredLanguage(c.GetHeader("Accept-Language"))
	if appErr, ok := apperror.As(err); ok {
		status := apperror.HTTPStatus(appErr)
		if logger != nil {
			logger.Warn("request rejected", "status", status, "code", appErr.Code, "request_id", obs.RequestIDFromContext(c.Request.Context()))
		}
		c.AbortWithStatusJSON(status, gin.H{"message": translate(tag, appErr.Code, appErr.Format, appErr.Args...)})
		return
	}
	if errors.Is(err, s3.ErrNotConfigured) {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": translate(tag, "storage.unavailable", "image storage is not configured")})
		return
	}
	if logger != nil {
		logger.Error("request failed", "error", err, "path", c.FullPath(), "request_id", obs.RequestIDFromContext(c.Request.Context()))
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": translate(tag, "server.error", "server error")})
}

func respondMalformed(c *gin.Context, logger *slog.Logger) {
	respondError(c, logger, errMalformedBody)
}

// localized renders a success message.
func localized(c *gin.Context, code, text string) string {
	return translate(preferredLanguage(c.GetHeader("Accept-Language")), code, text)
}
