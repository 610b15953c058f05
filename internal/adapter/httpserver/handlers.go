package httpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/config"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/usecase"
	"github.com/fairyhunter13/ai-interview-evaluator/pkg/textx"
)

// Server aggregates handler dependencies.
type Server struct {
	Cfg        config.Config
	Completion usecase.CompletionService
	Interviews usecase.InterviewService
	AI         domain.AIClient
	Verifier   TokenVerifier
	DBCheck    func(ctx context.Context) error
}

// NewServer constructs an HTTP server with all handlers wired.
func NewServer(cfg config.Config, completion usecase.CompletionService, interviews usecase.InterviewService, ai domain.AIClient, dbCheck func(context.Context) error) *Server {
	return &Server{
		Cfg:        cfg,
		Completion: completion,
		Interviews: interviews,
		AI:         ai,
		Verifier:   NewTokenVerifier(cfg.AuthTokenSecret),
		DBCheck:    dbCheck,
	}
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

func validateStruct(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := getValidator().Struct(req); err != nil {
		verrs := map[string]string{}
		if ve, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range ve {
				verrs[strings.ToLower(fe.Field())] = fe.Tag()
			}
		}
		writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), verrs)
		return false
	}
	return true
}

// CompleteHandler runs the completion workflow for the authenticated
// candidate.
func (s *Server) CompleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a := r.Header.Get("Accept"); a != "" && a != "*/*" && !strings.Contains(a, "application/json") {
			writeJSON(w, http.StatusNotAcceptable, errorEnvelope{Error: apiError{Code: "INVALID_ARGUMENT", Message: "not acceptable", Details: map[string]any{"accept": a}}})
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		var req struct {
			VideoURL       string `json:"video_url" validate:"required"`
			TranscriptText string `json:"transcript_text" validate:"required"`
			Title          string `json:"title" validate:"omitempty,max=100"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
			return
		}
		if !validateStruct(w, r, req) {
			return
		}
		iv, err := s.Completion.Complete(r.Context(), usecase.CompleteInput{
			UserID:         UserIDFrom(r),
			VideoURL:       req.VideoURL,
			TranscriptText: textx.SanitizeText(req.TranscriptText),
			Title:          textx.TruncateRunes(req.Title, 100),
		})
		if err != nil {
			writeError(w, r, fmt.Errorf("complete interview: %w", err), nil)
			return
		}
		writeJSON(w, http.StatusCreated, interviewJSON(iv))
	}
}

// GetInterviewHandler returns one interview, owner-only.
func (s *Server) GetInterviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			writeError(w, r, fmt.Errorf("%w: id missing", domain.ErrInvalidArgument), nil)
			return
		}
		iv, err := s.Interviews.Get(r.Context(), id, UserIDFrom(r))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, interviewJSON(iv))
	}
}

// ListInterviewsHandler returns the caller's interviews, newest first.
func (s *Server) ListInterviewsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ivs, err := s.Interviews.ListOwn(r.Context(), UserIDFrom(r))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		out := make([]map[string]any, 0, len(ivs))
		for _, iv := range ivs {
			out = append(out, interviewJSON(iv))
		}
		writeJSON(w, http.StatusOK, map[string]any{"interviews": out})
	}
}

// TranscribeHandler proxies recorded audio to the transcription endpoint.
// Stateless 1:1 passthrough, no aggregation.
func (s *Server) TranscribeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		maxBytes := s.Cfg.MaxUploadMB * 1024 * 1024
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		var req struct {
			AudioData string `json:"audio_data" validate:"required"`
			Options   struct {
				Language string `json:"language"`
				Prompt   string `json:"prompt"`
			} `json:"options"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
			return
		}
		if !validateStruct(w, r, req) {
			return
		}
		audio, err := base64.StdEncoding.DecodeString(req.AudioData)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: audio_data must be base64", domain.ErrInvalidArgument), nil)
			return
		}
		mt := mimetype.Detect(audio)
		if !allowedAudioMIME(mt.String()) {
			writeJSON(w, http.StatusUnsupportedMediaType, errorEnvelope{Error: apiError{Code: "INVALID_ARGUMENT", Message: "unsupported audio content", Details: map[string]any{"mime": mt.String()}}})
			return
		}
		text, err := s.AI.Transcribe(r.Context(), audio, "audio"+mt.Extension(), req.Options.Language, req.Options.Prompt)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: %w", domain.ErrAnalysisService, err), nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"text": text})
	}
}

func allowedAudioMIME(m string) bool {
	m = strings.ToLower(m)
	// Browsers record webm/ogg containers; mimetype reports those as video/* or
	// application/ogg even for audio-only streams.
	return strings.HasPrefix(m, "audio/") ||
		strings.HasPrefix(m, "video/webm") ||
		strings.HasPrefix(m, "application/ogg")
}

const interviewerPromptTemplate = `You are an AI interviewer conducting a job interview.
Your name is AI Interviewer. You are currently asking: %q
Respond naturally to the candidate's answer. Keep your response brief (2-3 sentences maximum).
Be conversational but professional. Ask thoughtful follow-up questions when appropriate.
If the candidate's answer shows they are done with this topic, end with "Let's move on to the next question."
If the candidate's answer is unclear, ask them to clarify.
IMPORTANT: Don't repeat yourself. Never say "Thank you for sharing" or similar phrases repeatedly.`

// InterviewerReplyHandler proxies one conversational turn to the chat
// endpoint. Stateless passthrough: the transcript carries all context.
func (s *Server) InterviewerReplyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		var req struct {
			Transcript      string `json:"transcript" validate:"required"`
			CurrentQuestion string `json:"current_question"`
			Options         struct {
				Model        string   `json:"model"`
				Temperature  *float64 `json:"temperature"`
				MaxTokens    int      `json:"max_tokens" validate:"omitempty,min=1,max=4096"`
				SystemPrompt string   `json:"system_prompt"`
			} `json:"options"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
			return
		}
		if !validateStruct(w, r, req) {
			return
		}
		system := req.Options.SystemPrompt
		if system == "" {
			system = fmt.Sprintf(interviewerPromptTemplate, req.CurrentQuestion)
		}
		opts := domain.GenerationOptions{
			Model:       req.Options.Model,
			Temperature: req.Options.Temperature,
			MaxTokens:   req.Options.MaxTokens,
		}
		if opts.Temperature == nil {
			t := s.Cfg.ReplyTemperature
			opts.Temperature = &t
		}
		if opts.MaxTokens == 0 {
			opts.MaxTokens = s.Cfg.ReplyMaxTokens
		}
		reply, err := s.AI.ChatText(r.Context(), system, req.Transcript, opts)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: %w", domain.ErrAnalysisService, err), nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"response": reply})
	}
}

// SpeakHandler proxies text to the speech synthesis endpoint and returns the
// audio base64-encoded.
func (s *Server) SpeakHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		var req struct {
			Text    string `json:"text" validate:"required,max=4096"`
			Options struct {
				Voice string `json:"voice"`
			} `json:"options"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
			return
		}
		if !validateStruct(w, r, req) {
			return
		}
		audio, err := s.AI.Speak(r.Context(), req.Text, req.Options.Voice)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: %w", domain.ErrAnalysisService, err), nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"audio_data": base64.StdEncoding.EncodeToString(audio)})
	}
}

// ReadyzHandler probes the durable store.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := make([]check, 0, 1)
		if s.DBCheck != nil {
			if err := s.DBCheck(ctx); err != nil {
				checks = append(checks, check{Name: "db", OK: false, Details: err.Error()})
			} else {
				checks = append(checks, check{Name: "db", OK: true})
			}
		}
		st := http.StatusOK
		for _, c := range checks {
			if !c.OK {
				st = http.StatusServiceUnavailable
				break
			}
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}

// interviewJSON builds the wire representation of a persisted interview.
// Nullable scores and times serialize as null, matching the storage model.
func interviewJSON(iv domain.Interview) map[string]any {
	return map[string]any{
		"id":                        iv.ID,
		"title":                     iv.Title,
		"status":                    string(iv.Status),
		"recording_url":             iv.RecordingURL,
		"transcript_text":           iv.TranscriptText,
		"language_score":            iv.LanguageScore,
		"language_justification":    iv.LanguageJustification,
		"personality_score":         iv.PersonalityScore,
		"personality_justification": iv.PersonalityJustification,
		"accuracy_score":            iv.AccuracyScore,
		"accuracy_justification":    iv.AccuracyJustification,
		"overall_summary":           iv.OverallSummary,
		"score":                     iv.Score,
		"feedback":                  iv.Feedback,
		"created_at":                timePtr(iv.CreatedAt),
		"scheduled_at":              timeOrNil(iv.ScheduledAt),
		"completed_at":              timeOrNil(iv.CompletedAt),
		"candidate_id":              iv.CandidateID,
		"employer_id":               iv.EmployerID,
	}
}

func timePtr(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
