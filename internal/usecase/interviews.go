package usecase

import (
	"fmt"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
)

// InterviewService provides query-only access to interview records. All
// mutation goes through the completion workflow.
type InterviewService struct {
	Interviews domain.InterviewRepository
}

// NewInterviewService constructs an InterviewService with the given repo.
func NewInterviewService(r domain.InterviewRepository) InterviewService {
	return InterviewService{Interviews: r}
}

// Get loads one interview, restricted to its owner: the candidate it belongs
// to, or the employer it was conducted for.
func (s InterviewService) Get(ctx domain.Context, id, callerID string) (domain.Interview, error) {
	iv, err := s.Interviews.Get(ctx, id)
	if err != nil {
		return domain.Interview{}, err
	}
	if iv.CandidateID != callerID && (iv.EmployerID == nil || *iv.EmployerID != callerID) {
		return domain.Interview{}, fmt.Errorf("%w: not the interview owner", domain.ErrForbidden)
	}
	return iv, nil
}

// ListOwn loads the caller's interviews, newest first.
func (s InterviewService) ListOwn(ctx domain.Context, callerID string) ([]domain.Interview, error) {
	return s.Interviews.ListByCandidate(ctx, callerID)
}
