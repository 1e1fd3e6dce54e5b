package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ByLCY/certify/certificate"
)

// GetCertificate streams the certificate PDF for ?id=.
func (s *Server) GetCertificate(c *gin.Context) {
	s.serveArtifact(c, s.svc.Generate)
}

// GetPreview returns a PNG rendering of the same layout.
func (s *Server) GetPreview(c *gin.Context) {
	s.serveArtifact(c, s.svc.Preview)
}

// GetData returns the stored record for ?id=.
func (s *Server) GetData(c *gin.Context) {
	id := strings.TrimSpace(c.Query("id"))
	if id == "" {
		AbortWithError(c, certificate.ErrMissingID)
		return
	}
	rec, err := s.svc.Record(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rec})
}

// Healthz reports liveness.
func (s *Server) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) serveArtifact(c *gin.Context, produce func(context.Context, string) (*certificate.Artifact, error)) {
	id := strings.TrimSpace(c.Query("id"))
	if id == "" {
		AbortWithError(c, certificate.ErrMissingID)
		return
	}
	art, err := produce(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Header("Content-Disposition", "inline; filename="+art.Filename)
	c.Data(http.StatusOK, art.ContentType, art.Bytes)
}
