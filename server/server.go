// Package server exposes the certificate service over HTTP with gin.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ByLCY/certify/certificate"
	"github.com/ByLCY/certify/logger"
	"github.com/ByLCY/certify/record"
)

// Generator is the part of certificate.Service the handlers use.
type Generator interface {
	Record(ctx context.Context, id string) (record.Record, error)
	Generate(ctx context.Context, id string) (*certificate.Artifact, error)
	Preview(ctx context.Context, id string) (*certificate.Artifact, error)
}

var _ Generator = (*certificate.Service)(nil)

// Options configures the HTTP server.
type Options struct {
	Addr           string
	RequestTimeout time.Duration
	// LogHeaders adds masked request headers to the access log.
	LogHeaders bool
}

// Server holds the gin engine and its dependencies.
type Server struct {
	engine *gin.Engine
	svc    Generator
	opts   Options
	log    *zap.Logger
}

// NewEngine returns a gin engine with recovery and access logging.
func NewEngine(opts Options) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths:  []string{"/healthz"},
		LogHeaders: opts.LogHeaders,
	}))
	return engine
}

// NewServer wires handlers onto engine.
func NewServer(engine *gin.Engine, svc Generator, opts Options, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{engine: engine, svc: svc, opts: opts, log: log}
}

// RegisterRoutes mounts every route.
func (s *Server) RegisterRoutes() {
	s.engine.GET("/healthz", s.Healthz)

	api := s.engine.Group("/api")
	if s.opts.RequestTimeout > 0 {
		api.Use(Timeout(s.opts.RequestTimeout))
	}
	api.GET("/certificate", s.GetCertificate)
	api.GET("/certificate/preview", s.GetPreview)
	api.GET("/get-data", s.GetData)
}

// Handler returns the engine as an http.Handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Timeout bounds the request context of every downstream handler.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
