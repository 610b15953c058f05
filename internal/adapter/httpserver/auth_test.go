package httpserver_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/config"
)

func TestTokenVerifier_RoundTrip(t *testing.T) {
	t.Parallel()
	v := httpserver.NewTokenVerifier("secret-1")
	tok := v.Mint("u-1", time.Hour)

	uid, err := v.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", uid)
}

func TestTokenVerifier_Tampered(t *testing.T) {
	t.Parallel()
	v := httpserver.NewTokenVerifier("secret-1")
	tok := v.Mint("u-1", time.Hour)

	cases := map[string]string{
		"no dot":         strings.ReplaceAll(tok, ".", ""),
		"flipped byte":   "A" + tok[1:],
		"wrong secret":   httpserver.NewTokenVerifier("other").Mint("u-1", time.Hour),
		"empty":          "",
		"garbage base64": "!!!.!!!",
	}
	for name, bad := range cases {
		_, err := v.Verify(bad)
		assert.Error(t, err, name)
	}
}

func TestTokenVerifier_Expired(t *testing.T) {
	t.Parallel()
	v := httpserver.NewTokenVerifier("secret-1")
	tok := v.Mint("u-1", -time.Minute)

	_, err := v.Verify(tok)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()
	srv := httpserver.NewServer(config.Config{AuthTokenSecret: "secret-1"}, completionWithFakes(nil), interviewsWithFakes(), &stubAI{}, nil)

	var gotUID string
	h := srv.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUID = httpserver.UserIDFrom(r)
		w.WriteHeader(http.StatusNoContent)
	}))

	// Valid token reaches the handler with the caller's identity.
	tok := srv.Verifier.Mint("u-1", time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/v1/interviews", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "u-1", gotUID)

	// Missing and malformed tokens never reach the handler.
	for _, header := range []string{"", "Bearer", "Bearer bad.token", "Basic dXNlcg=="} {
		req := httptest.NewRequest(http.MethodGet, "/v1/interviews", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code, "header %q", header)
		assert.Contains(t, rec.Body.String(), "FORBIDDEN")
	}
}
