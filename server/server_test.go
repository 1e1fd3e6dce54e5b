package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ByLCY/certify/apperr"
	"github.com/ByLCY/certify/background"
	"github.com/ByLCY/certify/certificate"
	"github.com/ByLCY/certify/fonts"
	"github.com/ByLCY/certify/record"
)

func newTestServer(t *testing.T, svc Generator, opts Options) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := NewServer(NewEngine(opts), svc, opts, nil)
	s.RegisterRoutes()
	return s
}

func realService(t *testing.T) *certificate.Service {
	t.Helper()
	reg, err := fonts.Load(fonts.Options{})
	require.NoError(t, err)
	set, err := background.Load()
	require.NoError(t, err)
	store := record.NewMemoryStore(map[string]record.Record{
		"abc123": {FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", CourseName: "Intro to Robotics", IssuedDate: "2025-06-06", Style: "O2"},
	})
	return certificate.NewService(store, reg, set, certificate.Options{})
}

func do(s *Server, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestGetCertificate(t *testing.T) {
	s := newTestServer(t, realService(t), Options{RequestTimeout: 10 * time.Second})
	w := do(s, "/api/certificate?id=abc123")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "inline; filename=document-abc123.pdf", w.Header().Get("Content-Disposition"))
	assert.True(t, len(w.Body.Bytes()) > 0)
	assert.Equal(t, "%PDF-", string(w.Body.Bytes()[:5]))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestGetCertificateErrors(t *testing.T) {
	s := newTestServer(t, realService(t), Options{})

	w := do(s, "/api/certificate")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, MsgMissingID, errorBody(t, w))

	w = do(s, "/api/certificate?id=nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, MsgNotFound, errorBody(t, w))
}

func TestGetData(t *testing.T) {
	s := newTestServer(t, realService(t), Options{})
	w := do(s, "/api/get-data?id=abc123")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data record.Record `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Jane", body.Data.FirstName)
	assert.Equal(t, "O2", body.Data.Style)

	w = do(s, "/api/get-data?id=")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPreview(t *testing.T) {
	s := newTestServer(t, realService(t), Options{})
	w := do(s, "/api/certificate/preview?id=abc123")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "inline; filename=document-abc123.png", w.Header().Get("Content-Disposition"))
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, realService(t), Options{})
	w := do(s, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

type stubGenerator struct {
	err   error
	delay time.Duration
}

func (g stubGenerator) wait(ctx context.Context) error {
	if g.delay == 0 {
		return g.err
	}
	select {
	case <-time.After(g.delay):
		return g.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g stubGenerator) Record(ctx context.Context, _ string) (record.Record, error) {
	return record.Record{}, g.wait(ctx)
}

func (g stubGenerator) Generate(ctx context.Context, _ string) (*certificate.Artifact, error) {
	return nil, g.wait(ctx)
}

func (g stubGenerator) Preview(ctx context.Context, _ string) (*certificate.Artifact, error) {
	return nil, g.wait(ctx)
}

func TestServerErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{&apperr.CodeGenerationError{Content: "x", Err: errors.New("too long")}, http.StatusInternalServerError, MsgCodeGeneration},
		{&apperr.AssemblyError{Stage: "fonts", Err: errors.New("missing")}, http.StatusInternalServerError, MsgAssembly},
		{errors.New("boom"), http.StatusInternalServerError, MsgInternal},
	}
	for _, tc := range cases {
		s := newTestServer(t, stubGenerator{err: tc.err}, Options{})
		w := do(s, "/api/certificate?id=abc123")
		assert.Equal(t, tc.status, w.Code)
		assert.Equal(t, tc.msg, errorBody(t, w))
	}
}

func TestTimeout(t *testing.T) {
	s := newTestServer(t, stubGenerator{delay: time.Second}, Options{RequestTimeout: 10 * time.Millisecond})
	w := do(s, "/api/certificate?id=abc123")
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Equal(t, MsgTimeout, errorBody(t, w))
}

func TestAccessLogHeadersFollowOptions(t *testing.T) {
	for _, enabled := range []bool{false, true} {
		core, logs := observer.New(zapcore.InfoLevel)
		restore := zap.ReplaceGlobals(zap.New(core))

		s := newTestServer(t, realService(t), Options{LogHeaders: enabled})
		req := httptest.NewRequest(http.MethodGet, "/api/get-data?id=abc123", nil)
		req.Header.Set("Authorization", "Bearer abcdef1234")
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)
		restore()

		require.Equal(t, http.StatusOK, w.Code)
		entries := logs.FilterMessage("http request").All()
		require.Len(t, entries, 1)
		headers, ok := entries[0].ContextMap()["headers"]
		if !enabled {
			assert.False(t, ok, "headers must not be logged by default")
			continue
		}
		require.True(t, ok)
		masked, ok := headers.(map[string]string)
		require.True(t, ok)
		assert.Equal(t, "Bearer ****1234", masked["Authorization"])
	}
}
