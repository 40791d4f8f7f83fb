package notifier

import (
	"context"

	"github.com/lamdang/quizforge/internal/dto"
)

// SubmissionScoredEvent carries everything the notification channel needs
// to tell a user about a scored submission. Delivery and formatting are
// entirely the channel's concern.
type SubmissionScoredEvent struct {
	Email       string
	Username    string
	QuizTitle   string
	Score       float64
	TotalPoints int
	Feedback    []dto.AnswerEvaluation
	Suggestions []string
	IsRetry     bool
}

// Service is the notification collaborator. Implementations decide
// whether and how to notify; callers treat every error as non-fatal.
type Service interface {
	SubmissionScored(ctx context.Context, event SubmissionScoredEvent) error
}
