package notifier

import (
	"context"
	"testing"

	"github.com/lamdang/quizforge/config"
	"github.com/lamdang/quizforge/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderResultText(t *testing.T) {
	text := renderResultText(SubmissionScoredEvent{
		Username:    "alice",
		QuizTitle:   "Math Quiz - 5th",
		Score:       66.7,
		TotalPoints: 3,
		Feedback: []dto.AnswerEvaluation{
			{IsCorrect: true},
			{IsCorrect: true},
			{IsCorrect: false},
		},
		Suggestions: []string{"Practice fractions.", "Review the explanations."},
	})

	assert.Contains(t, text, "Hi alice,")
	assert.Contains(t, text, `Your quiz "Math Quiz - 5th" has been scored.`)
	assert.Contains(t, text, "Score: 66.7%")
	assert.Contains(t, text, "Correct answers: 2 of 3")
	assert.Contains(t, text, "- Practice fractions.")
}

func TestRenderResultTextRetry(t *testing.T) {
	text := renderResultText(SubmissionScoredEvent{
		Username:  "alice",
		QuizTitle: "Math Quiz - 5th",
		IsRetry:   true,
	})

	assert.Contains(t, text, `Your retry of "Math Quiz - 5th" has been scored.`)
}

func TestSubmissionScoredWithoutAPIKeyIsNoop(t *testing.T) {
	svc := NewSendGridNotifier(&config.Config{})

	err := svc.SubmissionScored(context.Background(), SubmissionScoredEvent{
		Username: "alice", QuizTitle: "Math Quiz - 5th", Score: 80,
	})

	require.NoError(t, err)
}
