package service

import (
	"github.com/lamdang/quizforge/internal/model"
)

// DifficultyService decides the next quiz difficulty from a user's
// performance aggregate. Pure decision function.
type DifficultyService interface {
	Next(avgScore float64, lastDifficulty string) string
}

// difficultyRule is one row of the ordered rule table. Rules are
// evaluated top to bottom; the first match wins.
type difficultyRule struct {
	applies func(avgScore float64, lastDifficulty string) bool
	next    string
}

type difficultyService struct {
	rules []difficultyRule
}

// NewDifficultyService builds the three-band adapter with hysteresis:
// promotion and demotion only fire when they would change the level, so
// a user already at the boundary level keeps it instead of oscillating.
func NewDifficultyService() DifficultyService {
	return &difficultyService{
		rules: []difficultyRule{
			{
				applies: func(avg float64, last string) bool {
					return avg >= 85 && last != model.DifficultyHard
				},
				next: model.DifficultyHard,
			},
			{
				applies: func(avg float64, last string) bool {
					return avg >= 70 && avg < 85
				},
				next: model.DifficultyMedium,
			},
			{
				applies: func(avg float64, last string) bool {
					return avg < 70 && last != model.DifficultyEasy
				},
				next: model.DifficultyEasy,
			},
		},
	}
}

// Next returns the first matching rule's level. When no rule fires
// (already hard with avg >= 85, or already easy with avg < 70) the
// current level is returned unchanged.
func (s *difficultyService) Next(avgScore float64, lastDifficulty string) string {
	if lastDifficulty == "" {
		lastDifficulty = model.DifficultyMedium
	}
	for _, rule := range s.rules {
		if rule.applies(avgScore, lastDifficulty) {
			return rule.next
		}
	}
	return lastDifficulty
}
