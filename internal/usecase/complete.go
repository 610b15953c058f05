// Package usecase contains application business logic services.
package usecase

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/evaluation"
)

// TranscriptAnalyzer is the orchestrator port consumed by the completion
// workflow. It returns a usable AnalysisResult under all recoverable
// conditions; only a call-level failure surfaces as an error.
type TranscriptAnalyzer interface {
	Analyze(ctx domain.Context, req domain.TranscriptAnalysisRequest) (domain.AnalysisResult, error)
}

// CompletionService turns a finished interview (recording + transcript) into
// a persisted, scored Interview record.
type CompletionService struct {
	Users      domain.UserRepository
	Interviews domain.InterviewRepository
	Analyzer   TranscriptAnalyzer
	now        func() time.Time
}

// NewCompletionService constructs a CompletionService with its dependencies.
func NewCompletionService(users domain.UserRepository, interviews domain.InterviewRepository, analyzer TranscriptAnalyzer) CompletionService {
	return CompletionService{Users: users, Interviews: interviews, Analyzer: analyzer, now: func() time.Time { return time.Now().UTC() }}
}

// CompleteInput is the caller-supplied input of one completion.
type CompleteInput struct {
	UserID         string
	VideoURL       string
	TranscriptText string
	Title          string
}

// Complete runs the end-to-end workflow: validate, authorize the caller as a
// candidate, analyze the transcript, aggregate the score, and persist the
// Interview in one transaction.
//
// Analysis-content problems never surface here (the analyzer degrades them);
// a failed LM call or a failed commit aborts with no row written.
func (s CompletionService) Complete(ctx domain.Context, in CompleteInput) (domain.Interview, error) {
	if strings.TrimSpace(in.VideoURL) == "" || strings.TrimSpace(in.TranscriptText) == "" {
		return domain.Interview{}, fmt.Errorf("%w: video_url and transcript_text required", domain.ErrInvalidArgument)
	}

	user, err := s.Users.Get(ctx, in.UserID)
	if err != nil {
		// A missing identity is indistinguishable from a wrong-typed one to
		// the caller.
		return domain.Interview{}, fmt.Errorf("%w: user is not a candidate or not found", domain.ErrForbidden)
	}
	if user.Type != domain.UserTypeCandidate {
		return domain.Interview{}, fmt.Errorf("%w: user is not a candidate or not found", domain.ErrForbidden)
	}

	res, err := s.Analyzer.Analyze(ctx, domain.TranscriptAnalysisRequest{TranscriptText: in.TranscriptText})
	if err != nil {
		return domain.Interview{}, fmt.Errorf("analyze transcript: %w", err)
	}

	now := s.now()
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = "AI Practice Interview - " + now.Format("2006-01-02 15:04")
	}

	iv := domain.Interview{
		Title:          title,
		Status:         domain.InterviewCompleted,
		RecordingURL:   in.VideoURL,
		TranscriptText: in.TranscriptText,
		OverallSummary: res.OverallSummary,
		Score:          evaluation.AverageScore(res),
		Feedback:       res.OverallSummary,
		CreatedAt:      now,
		CompletedAt:    &now,
		CandidateID:    user.ID,
	}
	applySubScores(&iv, res)

	stored, err := s.Interviews.Create(ctx, iv)
	if err != nil {
		return domain.Interview{}, fmt.Errorf("persist interview: %w", err)
	}
	observability.InterviewsCompletedTotal.Inc()
	slog.Info("interview completed",
		slog.String("interview_id", stored.ID),
		slog.String("candidate_id", stored.CandidateID),
		slog.Bool("scored", stored.Score != nil))
	return stored, nil
}

// applySubScores flattens the dimension map onto the record's columns.
// Absent dimensions leave a nil score and empty justification.
func applySubScores(iv *domain.Interview, res domain.AnalysisResult) {
	if s, ok := res.SubScore(domain.DimensionLanguage); ok {
		v := s.Score
		iv.LanguageScore, iv.LanguageJustification = &v, s.Justification
	}
	if s, ok := res.SubScore(domain.DimensionPersonality); ok {
		v := s.Score
		iv.PersonalityScore, iv.PersonalityJustification = &v, s.Justification
	}
	if s, ok := res.SubScore(domain.DimensionAccuracy); ok {
		v := s.Score
		iv.AccuracyScore, iv.AccuracyJustification = &v, s.Justification
	}
}
