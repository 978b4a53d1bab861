package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-seb/internal/config"
	"github.com/stemsi/exstem-seb/internal/handler"
	"github.com/stemsi/exstem-seb/internal/service"
	"github.com/stretchr/testify/assert"
)

func testRouter() http.Handler {
	cfg := &config.Config{GinMode: "test"}
	handlers := &Handlers{
		Attempt: handler.NewAttemptHandler(nil, zerolog.Nop()),
		Exam:    handler.NewExamHandler(nil, zerolog.Nop()),
	}
	return SetupRouter(service.NewAuthService("router-secret"), handlers, cfg, nil)
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	testRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := testRouter()
	routes := []struct{ method, path string }{
		{http.MethodPost, "/api/v1/exams/0b0f7a8e-4c59-4c39-9d6c-5a0c2d7c1a11/start"},
		{http.MethodGet, "/api/v1/exams/0b0f7a8e-4c59-4c39-9d6c-5a0c2d7c1a11/questions"},
		{http.MethodGet, "/api/v1/exams/0b0f7a8e-4c59-4c39-9d6c-5a0c2d7c1a11/seb-config"},
		{http.MethodPost, "/api/v1/attempts/0b0f7a8e-4c59-4c39-9d6c-5a0c2d7c1a11/submit"},
		{http.MethodPost, "/api/v1/admin/exams/0b0f7a8e-4c59-4c39-9d6c-5a0c2d7c1a11/seb-browser-key"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(rt.method, rt.path, nil))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "TOKEN_REQUIRED")
		})
	}
}

func TestCORSAllowsExamBrowserHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/exams/x/start", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "authorization,x-safeexambrowser-requesthash,x-seb-browser-key")

	w := httptest.NewRecorder()
	testRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	allowed := strings.ToLower(w.Header().Get("Access-Control-Allow-Headers"))
	assert.Contains(t, allowed, "x-safeexambrowser-requesthash")
	assert.Contains(t, allowed, "x-seb-browser-key")
}
