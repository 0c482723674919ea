// Package handlers provides the HTTP handler layer of the registry API.
//
// This file holds the response envelope shared by every endpoint. Errors
// always serialize to an ErrorResponse carrying a stable machine-readable
// code next to the human-readable message, and echo the request id so a
// client report can be matched to server logs. Success responses are plain
// JSON bodies; there is no success wrapper.
//
// A failed lookup answers, for example:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "pet not found"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meupet/go-pet-backend/internal/http/middleware"
)

// ErrorResponse is the error envelope returned by every endpoint. The
// code values are the ErrCode* constants in errors.go; messages are safe
// to surface to end users.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"pet not found"`
}

// fail writes an ErrorResponse with the given status and aborts the
// request. 5xx responses are additionally logged through the
// request-scoped logger; 4xx are the client's problem and stay quiet.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	})
}

// Fail exposes fail to the router package for the NoRoute/NoMethod
// fallbacks, so those answers wear the same envelope as handler errors.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes the body as JSON with the given status.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent answers 204 for operations with nothing to return.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
