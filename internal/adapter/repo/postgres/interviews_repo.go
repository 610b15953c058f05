package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
)

// InterviewRepo persists and loads interview records from PostgreSQL.
type InterviewRepo struct{ Pool PgxPool }

// NewInterviewRepo constructs an InterviewRepo with the given pool.
func NewInterviewRepo(p PgxPool) *InterviewRepo { return &InterviewRepo{Pool: p} }

const interviewColumns = `id, title, status, COALESCE(recording_url,''), COALESCE(transcript_text,''),
	language_score, COALESCE(language_justification,''),
	personality_score, COALESCE(personality_justification,''),
	accuracy_score, COALESCE(accuracy_justification,''),
	COALESCE(overall_summary,''), score, COALESCE(feedback,''),
	created_at, scheduled_at, completed_at, candidate_id, employer_id`

// Create inserts a new interview inside a single transaction and returns the
// stored record. Any insert failure rolls back so no partial row survives.
func (r *InterviewRepo) Create(ctx domain.Context, iv domain.Interview) (domain.Interview, error) {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.Create")
	defer span.End()

	if iv.ID == "" {
		iv.ID = uuid.New().String()
	}
	if iv.CreatedAt.IsZero() {
		iv.CreatedAt = time.Now().UTC()
	}

	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Interview{}, fmt.Errorf("op=interview.create begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	q := `INSERT INTO interviews (
		id, title, status, recording_url, transcript_text,
		language_score, language_justification,
		personality_score, personality_justification,
		accuracy_score, accuracy_justification,
		overall_summary, score, feedback,
		created_at, scheduled_at, completed_at, candidate_id, employer_id
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`
	if _, err := tx.Exec(ctx, q,
		iv.ID, iv.Title, iv.Status, iv.RecordingURL, iv.TranscriptText,
		iv.LanguageScore, iv.LanguageJustification,
		iv.PersonalityScore, iv.PersonalityJustification,
		iv.AccuracyScore, iv.AccuracyJustification,
		iv.OverallSummary, iv.Score, iv.Feedback,
		iv.CreatedAt, iv.ScheduledAt, iv.CompletedAt, iv.CandidateID, iv.EmployerID,
	); err != nil {
		return domain.Interview{}, fmt.Errorf("op=interview.create: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Interview{}, fmt.Errorf("op=interview.create commit: %w", err)
	}
	return iv, nil
}

// Get loads an interview by id.
func (r *InterviewRepo) Get(ctx domain.Context, id string) (domain.Interview, error) {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.Get")
	defer span.End()
	row := r.Pool.QueryRow(ctx, `SELECT `+interviewColumns+` FROM interviews WHERE id=$1`, id)
	iv, err := scanInterview(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Interview{}, fmt.Errorf("op=interview.get: %w", domain.ErrNotFound)
		}
		return domain.Interview{}, fmt.Errorf("op=interview.get: %w", err)
	}
	return iv, nil
}

// ListByCandidate loads a candidate's interviews, newest first.
func (r *InterviewRepo) ListByCandidate(ctx domain.Context, candidateID string) ([]domain.Interview, error) {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.ListByCandidate")
	defer span.End()
	rows, err := r.Pool.Query(ctx, `SELECT `+interviewColumns+` FROM interviews WHERE candidate_id=$1 ORDER BY created_at DESC`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("op=interview.list: %w", err)
	}
	defer rows.Close()
	var out []domain.Interview
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, fmt.Errorf("op=interview.list scan: %w", err)
		}
		out = append(out, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=interview.list rows: %w", err)
	}
	return out, nil
}

func scanInterview(row pgx.Row) (domain.Interview, error) {
	var iv domain.Interview
	err := row.Scan(
		&iv.ID, &iv.Title, &iv.Status, &iv.RecordingURL, &iv.TranscriptText,
		&iv.LanguageScore, &iv.LanguageJustification,
		&iv.PersonalityScore, &iv.PersonalityJustification,
		&iv.AccuracyScore, &iv.AccuracyJustification,
		&iv.OverallSummary, &iv.Score, &iv.Feedback,
		&iv.CreatedAt, &iv.ScheduledAt, &iv.CompletedAt, &iv.CandidateID, &iv.EmployerID,
	)
	return iv, err
}
