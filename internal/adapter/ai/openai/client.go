// Package openai implements domain.AIClient against an OpenAI-compatible API.
package openai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/ai/tokencount"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/config"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
)

const provider = "openai"

// Client implements domain.AIClient using the OpenAI chat completions, audio
// transcription, and speech endpoints. Each operation is a single round trip:
// the analysis contract forbids retries and streaming, and the passthrough
// endpoints are 1:1 proxies.
type Client struct {
	cfg config.Config
	hc  *http.Client
}

// New constructs a client whose outbound requests are instrumented with
// otelhttp. The HTTP client carries no timeout of its own; callers bound each
// call through the request context.
func New(cfg config.Config) *Client {
	return &Client{
		cfg: cfg,
		hc:  &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    *float64       `json:"temperature,omitempty"`
	MaxTokens      int            `json:"max_tokens,omitempty"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ChatJSON performs one chat completion with response_format=json_object and
// returns the raw message content.
func (c *Client) ChatJSON(ctx domain.Context, systemPrompt, userPrompt string, opts domain.GenerationOptions) (string, error) {
	return c.chat(ctx, systemPrompt, userPrompt, opts, true)
}

// ChatText performs one plain-text chat completion.
func (c *Client) ChatText(ctx domain.Context, systemPrompt, userPrompt string, opts domain.GenerationOptions) (string, error) {
	return c.chat(ctx, systemPrompt, userPrompt, opts, false)
}

func (c *Client) chat(ctx domain.Context, systemPrompt, userPrompt string, opts domain.GenerationOptions, jsonMode bool) (string, error) {
	model := opts.Model
	if model == "" {
		model = c.cfg.ChatModel
	}
	body := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	if jsonMode {
		body.ResponseFormat = map[string]any{"type": "json_object"}
	}
	b, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("op=openai.chat marshal: %w", err)
	}

	observability.AIPromptTokens.WithLabelValues(model).
		Observe(float64(tokencount.DefaultCounter.Count(model, systemPrompt+userPrompt)))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.OpenAIBaseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("op=openai.chat: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.OpenAIAPIKey)
	req.Header.Set("Content-Type", "application/json")

	respBody, err := c.do(req, "chat")
	if err != nil {
		return "", err
	}
	var out chatResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("op=openai.chat decode: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("op=openai.chat: empty choices")
	}
	return out.Choices[0].Message.Content, nil
}

// Transcribe converts recorded audio to text via the transcriptions endpoint.
func (c *Client) Transcribe(ctx domain.Context, audio []byte, filename, language, prompt string) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("op=openai.transcribe: %w", err)
	}
	if _, err := fw.Write(audio); err != nil {
		return "", fmt.Errorf("op=openai.transcribe: %w", err)
	}
	_ = mw.WriteField("model", c.cfg.WhisperModel)
	if language != "" {
		_ = mw.WriteField("language", language)
	}
	if prompt != "" {
		_ = mw.WriteField("prompt", prompt)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("op=openai.transcribe: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.OpenAIBaseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return "", fmt.Errorf("op=openai.transcribe: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.OpenAIAPIKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	respBody, err := c.do(req, "transcribe")
	if err != nil {
		return "", err
	}
	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("op=openai.transcribe decode: %w", err)
	}
	return out.Text, nil
}

// Speak synthesizes speech for text and returns the encoded audio bytes.
func (c *Client) Speak(ctx domain.Context, text, voice string) ([]byte, error) {
	if voice == "" {
		voice = c.cfg.TTSVoice
	}
	b, err := json.Marshal(map[string]any{
		"model": c.cfg.TTSModel,
		"voice": voice,
		"input": text,
	})
	if err != nil {
		return nil, fmt.Errorf("op=openai.speak marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.OpenAIBaseURL+"/audio/speech", bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("op=openai.speak: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.OpenAIAPIKey)
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, "speak")
}

// do executes one request, records metrics, and maps non-2xx statuses to
// errors. Status text goes in the error so callers can log the exact failure
// mode (401 auth rejection vs 429 quota vs 5xx).
func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	start := time.Now()
	resp, err := c.hc.Do(req)
	observability.AIRequestsTotal.WithLabelValues(provider, op).Inc()
	observability.AIRequestDuration.WithLabelValues(provider, op).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("op=openai.%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("op=openai.%s read: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodySnippet := string(body)
		if len(bodySnippet) > 512 {
			bodySnippet = bodySnippet[:512]
		}
		slog.Warn("ai provider non-2xx",
			slog.String("provider", provider),
			slog.String("op", op),
			slog.Int("status", resp.StatusCode),
			slog.String("x_request_id", resp.Header.Get("X-Request-Id")),
			slog.String("body", bodySnippet))
		return nil, fmt.Errorf("op=openai.%s: status %d %s", op, resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return body, nil
}
