package service

import (
	"github.com/lamdang/quizforge/internal/apperr"
	"github.com/lamdang/quizforge/internal/dto"
	"github.com/lamdang/quizforge/internal/model"
)

// ScoreResult aggregates one evaluation pass over a quiz.
type ScoreResult struct {
	Score       float64
	TotalPoints int
	Evaluations []dto.AnswerEvaluation
}

// ScoringService evaluates an ordered question list against an
// index-aligned answer list. Pure computation, no dependencies: once the
// inputs are in hand it cannot fail for external reasons.
type ScoringService interface {
	Evaluate(questions []model.Question, answers []string) (*ScoreResult, error)
}

type scoringService struct{}

func NewScoringService() ScoringService {
	return &scoringService{}
}

// Evaluate compares answers position by position using exact,
// case-sensitive string equality. The aggregate score is
// 100 * correct / N; TotalPoints is the question count. Per-question
// point values are carried in the schema but do not weight the aggregate.
func (s *scoringService) Evaluate(questions []model.Question, answers []string) (*ScoreResult, error) {
	if len(questions) == 0 {
		return nil, apperr.New(apperr.Validation, "quiz has no questions")
	}
	if len(answers) != len(questions) {
		return nil, apperr.Newf(apperr.Validation,
			"answer count %d does not match question count %d", len(answers), len(questions))
	}

	evaluations := make([]dto.AnswerEvaluation, len(questions))
	correct := 0
	for i, q := range questions {
		isCorrect := answers[i] == q.CorrectAnswer
		if isCorrect {
			correct++
		}
		evaluations[i] = dto.AnswerEvaluation{
			QuestionID:    q.ID,
			UserAnswer:    answers[i],
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     isCorrect,
			Explanation:   q.Explanation,
		}
	}

	return &ScoreResult{
		Score:       float64(correct) / float64(len(questions)) * 100,
		TotalPoints: len(questions),
		Evaluations: evaluations,
	}, nil
}
