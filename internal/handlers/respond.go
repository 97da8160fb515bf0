package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cartside/api/internal/service"
)

// respondServiceError converts a lifecycle/service failure into the uniform
// error envelope. Unrecognized errors are logged and surfaced as a generic
// 500 so internals never leak to the caller.
func (h HandlerSet) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrAlreadyVerified),
		errors.Is(err, service.ErrNotVerified),
		errors.Is(err, service.ErrInvalidOTP),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrOutOfStock):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrResendThrottled):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrDeliveryFailed):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("unhandled service error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}

func (h HandlerSet) setSessionCookie(c *gin.Context, name string, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(name, token, int(h.cfg.Security.TokenTTL.Seconds()), "/", "", h.cfg.Security.SecureCookies, true)
}

// clearSessionCookie expires the cookie client-side; tokens themselves are
// never revoked server-side.
func (h HandlerSet) clearSessionCookie(c *gin.Context, name string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(name, "", -1, "/", "", h.cfg.Security.SecureCookies, true)
}
