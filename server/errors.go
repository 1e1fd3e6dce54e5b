package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ByLCY/certify/apperr"
	"github.com/ByLCY/certify/certificate"
	"github.com/ByLCY/certify/logger"
)

// Client-facing error messages.
const (
	MsgMissingID      = "Missing id parameter."
	MsgNotFound       = "Data not found for the provided ID."
	MsgCodeGeneration = "Failed to generate QR Code."
	MsgAssembly       = "Failed to generate certificate."
	MsgTimeout        = "Request timed out."
	MsgInternal       = "Internal server error."
)

// StatusFor maps an error to its HTTP status and client message.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, certificate.ErrMissingID):
		return http.StatusBadRequest, MsgMissingID
	case apperr.IsNotFound(err):
		return http.StatusNotFound, MsgNotFound
	case apperr.IsCodeGeneration(err):
		return http.StatusInternalServerError, MsgCodeGeneration
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, MsgTimeout
	case apperr.IsAssembly(err):
		return http.StatusInternalServerError, MsgAssembly
	default:
		return http.StatusInternalServerError, MsgInternal
	}
}

// AbortWithError writes {"error": msg} and logs server-side failures.
func AbortWithError(c *gin.Context, err error) {
	status, msg := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("id", c.Query("id")),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
