package logger

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestIDHeader is read from and echoed back on every request.
const RequestIDHeader = "X-Request-Id"

// MiddlewareConfig configures GinMiddleware.
type MiddlewareConfig struct {
	// Node generates request ids when the client sends none. Nil uses node 1.
	Node *snowflake.Node
	// SkipPaths are served without an access log line.
	SkipPaths []string
	// LogHeaders adds the masked request headers to the access log.
	LogHeaders bool
}

// GinMiddleware assigns a request id, stores it on the request context and
// writes one access log line per request.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	node := cfg.Node
	if node == nil {
		// node 1 is always within snowflake's node range
		node, _ = snowflake.NewNode(1)
	}
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		start := time.Now()
		requestID := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if requestID == "" {
			requestID = node.Generate().String()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(WithRequestID(c.Request.Context(), requestID))

		c.Next()

		path := c.Request.URL.Path
		if skip[path] {
			return
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if cfg.LogHeaders {
			fields = append(fields, zap.Any("headers", MaskHeaders(c.Request.Header)))
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			fields = append(fields, zap.String("errors", errs))
		}

		log := FromContext(c.Request.Context())
		switch status := c.Writer.Status(); {
		case status >= 500:
			log.Error("http request", fields...)
		case status >= 400:
			log.Warn("http request", fields...)
		default:
			log.Info("http request", fields...)
		}
	}
}
