// Package domain holds the core entities, error taxonomy, and ports of the
// interview evaluator.
package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	// ErrAnalysisService marks a failure of the LM call itself (network, auth,
	// quota, timeout). Unlike malformed LM content, which is recovered into a
	// degraded result, carriers of this sentinel abort the completion.
	ErrAnalysisService = errors.New("analysis service failure")
	ErrUpstreamTimeout = errors.New("upstream timeout")
	ErrInternal        = errors.New("internal error")
)

// UserType discriminates identity records returned by the identity provider.
type UserType string

const (
	UserTypeCandidate UserType = "candidate"
	UserTypeEmployer  UserType = "employer"
)

// User is the identity record resolved from a verified caller token.
type User struct {
	ID        string
	Email     string
	Name      string
	Type      UserType
	CreatedAt time.Time
}

// Dimension is one axis of transcript analysis. The set is fixed and closed;
// parser and aggregator stay generic over it should more be added.
type Dimension string

const (
	DimensionLanguage    Dimension = "language"
	DimensionPersonality Dimension = "personality"
	DimensionAccuracy    Dimension = "accuracy"
)

// Dimensions returns all analysis dimensions in canonical order.
func Dimensions() []Dimension {
	return []Dimension{DimensionLanguage, DimensionPersonality, DimensionAccuracy}
}

// SubScore is a single scored dimension. Score is untrusted LM output: the
// contract asks for 0-10 but nothing enforces it.
type SubScore struct {
	Score         float64
	Justification string
}

// AnalysisResult aggregates the sub-scores the parser could recover plus the
// overall summary. A dimension missing from SubScores means the LM reply did
// not carry a usable value for it.
type AnalysisResult struct {
	SubScores      map[Dimension]SubScore
	OverallSummary string
}

// SubScore returns the sub-score for d, if present.
func (r AnalysisResult) SubScore(d Dimension) (SubScore, bool) {
	s, ok := r.SubScores[d]
	return s, ok
}

// GenerationOptions are caller-tunable knobs for a chat completion.
// Zero values mean "use the configured default".
type GenerationOptions struct {
	Model        string
	Temperature  *float64
	MaxTokens    int
	SystemPrompt string
}

// TranscriptAnalysisRequest is the immutable input of one analysis run.
type TranscriptAnalysisRequest struct {
	TranscriptText  string
	CurrentQuestion string
	Options         GenerationOptions
}

// InterviewStatus enumerates interview lifecycle states.
type InterviewStatus string

const (
	InterviewPending   InterviewStatus = "pending"
	InterviewCompleted InterviewStatus = "completed"
	InterviewCancelled InterviewStatus = "cancelled"
)

// Interview is the durable record produced by the completion workflow.
// A completed interview always has Status=completed and CompletedAt set.
// Sub-score columns are nullable: nil means the dimension could not be scored.
type Interview struct {
	ID             string
	Title          string
	Status         InterviewStatus
	RecordingURL   string
	TranscriptText string

	LanguageScore            *float64
	LanguageJustification    string
	PersonalityScore         *float64
	PersonalityJustification string
	AccuracyScore            *float64
	AccuracyJustification    string
	OverallSummary           string

	// Score is the arithmetic mean of present sub-scores; nil when none were
	// recovered outside the degraded-fallback path. Feedback mirrors
	// OverallSummary.
	Score    *float64
	Feedback string

	CreatedAt   time.Time
	ScheduledAt *time.Time
	CompletedAt *time.Time

	CandidateID string
	EmployerID  *string
}

// Repositories (ports)

type UserRepository interface {
	Get(ctx Context, id string) (User, error)
}

type InterviewRepository interface {
	// Create persists the interview in a single transaction and returns the
	// stored record with its generated id. A failed insert leaves no row.
	Create(ctx Context, iv Interview) (Interview, error)
	Get(ctx Context, id string) (Interview, error)
	ListByCandidate(ctx Context, candidateID string) ([]Interview, error)
}

// AIClient (port)

type AIClient interface {
	// ChatJSON performs one chat completion requesting a JSON object body and
	// returns the raw message content. The content is untrusted; callers must
	// parse defensively.
	ChatJSON(ctx Context, systemPrompt, userPrompt string, opts GenerationOptions) (string, error)
	// ChatText performs one plain-text chat completion.
	ChatText(ctx Context, systemPrompt, userPrompt string, opts GenerationOptions) (string, error)
	// Transcribe converts recorded audio to text.
	Transcribe(ctx Context, audio []byte, filename, language, prompt string) (string, error)
	// Speak synthesizes speech for the given text and returns encoded audio.
	Speak(ctx Context, text, voice string) ([]byte, error)
}

// Context is an alias to context.Context, kept so the domain package mirrors
// how adapters and usecases pass deadlines through.
type Context = context.Context
