package app_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/app"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/config"
)

func TestParseOrigins(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"*"}, app.ParseOrigins(""))
	assert.Equal(t, []string{"*"}, app.ParseOrigins("*"))
	assert.Equal(t, []string{"*"}, app.ParseOrigins(" , ,"))
	assert.Equal(t, []string{"https://a.example.com"}, app.ParseOrigins("https://a.example.com"))
	assert.Equal(t,
		[]string{"https://a.example.com", "https://b.example.com"},
		app.ParseOrigins(" https://a.example.com , https://b.example.com "))
}

func routerCfg() config.Config {
	return config.Config{
		AuthTokenSecret:  "secret-1",
		CORSAllowOrigins: "*",
		RateLimitPerMin:  30,
		HTTPWriteTimeout: 5 * time.Second,
	}
}

func TestBuildRouter_PublicEndpoints(t *testing.T) {
	t.Parallel()
	srv := httpserver.NewServer(routerCfg(), completionFake(), interviewsFake(), nil, nil)
	h := app.BuildRouter(routerCfg(), srv)

	for _, path := range []string{"/healthz", "/metrics", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestBuildRouter_AuthRequired(t *testing.T) {
	t.Parallel()
	srv := httpserver.NewServer(routerCfg(), completionFake(), interviewsFake(), nil, nil)
	h := app.BuildRouter(routerCfg(), srv)

	req := httptest.NewRequest(http.MethodGet, "/v1/interviews", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/interviews", nil)
	req.Header.Set("Authorization", "Bearer "+srv.Verifier.Mint("u-1", time.Hour))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBuildRouter_SecurityAndRequestIDHeaders(t *testing.T) {
	t.Parallel()
	srv := httpserver.NewServer(routerCfg(), completionFake(), interviewsFake(), nil, nil)
	h := app.BuildRouter(routerCfg(), srv)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestBuildRouter_RateLimit(t *testing.T) {
	t.Parallel()
	cfg := routerCfg()
	cfg.RateLimitPerMin = 2
	srv := httpserver.NewServer(cfg, completionFake(), interviewsFake(), nil, nil)
	h := app.BuildRouter(cfg, srv)

	tok := srv.Verifier.Mint("u-1", time.Hour)
	var last int
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/interviewer/reply", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		last = rec.Code
	}
	require.Equal(t, http.StatusTooManyRequests, last)
}
