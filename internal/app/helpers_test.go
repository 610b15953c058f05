package app_test

import (
	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/usecase"
)

type userRepoFake struct{}

func (userRepoFake) Get(_ domain.Context, id string) (domain.User, error) {
	return domain.User{ID: id, Type: domain.UserTypeCandidate}, nil
}

type interviewRepoFake struct{}

func (interviewRepoFake) Create(_ domain.Context, iv domain.Interview) (domain.Interview, error) {
	iv.ID = "iv-1"
	return iv, nil
}

func (interviewRepoFake) Get(_ domain.Context, id string) (domain.Interview, error) {
	return domain.Interview{ID: id, CandidateID: "u-1"}, nil
}

func (interviewRepoFake) ListByCandidate(_ domain.Context, _ string) ([]domain.Interview, error) {
	return nil, nil
}

type analyzerFake struct{}

func (analyzerFake) Analyze(_ domain.Context, _ domain.TranscriptAnalysisRequest) (domain.AnalysisResult, error) {
	return domain.AnalysisResult{}, nil
}

func completionFake() usecase.CompletionService {
	return usecase.NewCompletionService(userRepoFake{}, interviewRepoFake{}, analyzerFake{})
}

func interviewsFake() usecase.InterviewService {
	return usecase.NewInterviewService(interviewRepoFake{})
}
