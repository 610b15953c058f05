package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/ai/openai"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/config"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
)

func clientFor(t *testing.T, h http.HandlerFunc) *openai.Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return openai.New(config.Config{
		OpenAIAPIKey:  "sk-test",
		OpenAIBaseURL: ts.URL,
		ChatModel:     "gpt-4o-mini",
		WhisperModel:  "whisper-1",
		TTSModel:      "tts-1",
		TTSVoice:      "alloy",
	})
}

func TestChatJSON(t *testing.T) {
	t.Parallel()
	var got map[string]any
	c := clientFor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"ok\":true}"}}]}`))
	})

	temp := 0.5
	out, err := c.ChatJSON(context.Background(), "sys", "user", domain.GenerationOptions{Temperature: &temp, MaxTokens: 1024})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, out)

	assert.Equal(t, "gpt-4o-mini", got["model"])
	assert.Equal(t, 0.5, got["temperature"])
	assert.Equal(t, float64(1024), got["max_tokens"])
	rf, ok := got["response_format"].(map[string]any)
	require.True(t, ok, "JSON mode must request a json_object response")
	assert.Equal(t, "json_object", rf["type"])

	msgs := got["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
}

func TestChatText_NoResponseFormat(t *testing.T) {
	t.Parallel()
	var got map[string]any
	c := clientFor(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"plain reply"}}]}`))
	})

	out, err := c.ChatText(context.Background(), "sys", "user", domain.GenerationOptions{Model: "gpt-4o"})
	require.NoError(t, err)
	assert.Equal(t, "plain reply", out)
	assert.Equal(t, "gpt-4o", got["model"], "caller model overrides the configured default")
	_, hasRF := got["response_format"]
	assert.False(t, hasRF)
}

func TestChat_NonOKStatus(t *testing.T) {
	t.Parallel()
	c := clientFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	})

	_, err := c.ChatJSON(context.Background(), "sys", "user", domain.GenerationOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestChat_EmptyChoices(t *testing.T) {
	t.Parallel()
	c := clientFor(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := c.ChatJSON(context.Background(), "sys", "user", domain.GenerationOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty choices")
}

func TestTranscribe(t *testing.T) {
	t.Parallel()
	c := clientFor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "en", r.FormValue("language"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer func() { _ = f.Close() }()
		assert.Equal(t, "audio.wav", hdr.Filename)
		_, _ = w.Write([]byte(`{"text":"hello world"}`))
	})

	out, err := c.Transcribe(context.Background(), []byte("RIFFdata"), "audio.wav", "en", "")
	require.NoError(t, err)
	assert.Equal(t, "hello world", out)
}

func TestSpeak(t *testing.T) {
	t.Parallel()
	c := clientFor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/speech", r.URL.Path)
		var got map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "tts-1", got["model"])
		assert.Equal(t, "alloy", got["voice"], "empty voice falls back to the configured default")
		assert.Equal(t, "Hello.", got["input"])
		_, _ = w.Write([]byte{0xFF, 0xF1})
	})

	audio, err := c.Speak(context.Background(), "Hello.", "")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xF1}, audio)
}

func TestChat_ContextCancelled(t *testing.T) {
	t.Parallel()
	c := clientFor(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ChatJSON(ctx, "sys", "user", domain.GenerationOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
