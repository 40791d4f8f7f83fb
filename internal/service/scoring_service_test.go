package service

import (
	"testing"

	"github.com/lamdang/quizforge/internal/apperr"
	"github.com/lamdang/quizforge/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeQuestions(answers ...string) []model.Question {
	questions := make([]model.Question, len(answers))
	for i, ans := range answers {
		questions[i] = model.Question{
			ID:            uint(i + 1),
			CorrectAnswer: ans,
			Explanation:   "because",
			OrderNumber:   i + 1,
		}
	}
	return questions
}

func TestEvaluateAllCorrect(t *testing.T) {
	svc := NewScoringService()

	result, err := svc.Evaluate(makeQuestions("a", "b", "c", "d"), []string{"a", "b", "c", "d"})

	require.NoError(t, err)
	assert.Equal(t, 100.0, result.Score)
	assert.Equal(t, 4, result.TotalPoints)
	for _, eval := range result.Evaluations {
		assert.True(t, eval.IsCorrect)
	}
}

func TestEvaluateAllWrong(t *testing.T) {
	svc := NewScoringService()

	result, err := svc.Evaluate(makeQuestions("a", "b"), []string{"x", "y"})

	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, 2, result.TotalPoints)
}

func TestEvaluatePartial(t *testing.T) {
	svc := NewScoringService()

	result, err := svc.Evaluate(makeQuestions("a", "b", "c"), []string{"a", "wrong", "c"})

	require.NoError(t, err)
	assert.InDelta(t, 66.666, result.Score, 0.01)
	assert.Equal(t, 3, result.TotalPoints)
	assert.True(t, result.Evaluations[0].IsCorrect)
	assert.False(t, result.Evaluations[1].IsCorrect)
	assert.True(t, result.Evaluations[2].IsCorrect)
}

func TestEvaluateCaseSensitive(t *testing.T) {
	svc := NewScoringService()

	result, err := svc.Evaluate(makeQuestions("Paris"), []string{"paris"})

	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Score)
	assert.False(t, result.Evaluations[0].IsCorrect)
}

func TestEvaluateScoreBounds(t *testing.T) {
	svc := NewScoringService()
	questions := makeQuestions("a", "b", "c", "d", "e")

	cases := [][]string{
		{"a", "b", "c", "d", "e"},
		{"x", "x", "x", "x", "x"},
		{"a", "x", "c", "x", "e"},
	}
	for _, answers := range cases {
		result, err := svc.Evaluate(questions, answers)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.Score, 0.0)
		assert.LessOrEqual(t, result.Score, 100.0)
	}
}

func TestEvaluateFeedbackEchoesAnswers(t *testing.T) {
	svc := NewScoringService()

	result, err := svc.Evaluate(makeQuestions("a", "b"), []string{"a", "z"})

	require.NoError(t, err)
	require.Len(t, result.Evaluations, 2)
	assert.Equal(t, "a", result.Evaluations[0].UserAnswer)
	assert.Equal(t, "a", result.Evaluations[0].CorrectAnswer)
	assert.Equal(t, "z", result.Evaluations[1].UserAnswer)
	assert.Equal(t, "b", result.Evaluations[1].CorrectAnswer)
	assert.Equal(t, "because", result.Evaluations[1].Explanation)
}

func TestEvaluateAnswerCountMismatch(t *testing.T) {
	svc := NewScoringService()

	_, err := svc.Evaluate(makeQuestions("a", "b", "c"), []string{"a"})

	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Validation))
}

func TestEvaluateEmptyQuiz(t *testing.T) {
	svc := NewScoringService()

	_, err := svc.Evaluate(nil, nil)

	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Validation))
}
