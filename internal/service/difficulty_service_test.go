package service

import (
	"testing"

	"github.com/lamdang/quizforge/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestNextDifficulty(t *testing.T) {
	svc := NewDifficultyService()

	cases := []struct {
		name string
		avg  float64
		last string
		want string
	}{
		{"promote medium to hard", 90, model.DifficultyMedium, model.DifficultyHard},
		{"promote easy to hard", 85, model.DifficultyEasy, model.DifficultyHard},
		{"already hard stays hard", 92, model.DifficultyHard, model.DifficultyHard},
		{"hard at exact boundary stays hard", 85, model.DifficultyHard, model.DifficultyHard},
		{"demote hard to medium just below boundary", 84.9, model.DifficultyHard, model.DifficultyMedium},
		{"easy to medium in mid band", 70, model.DifficultyEasy, model.DifficultyMedium},
		{"medium stays medium in mid band", 75, model.DifficultyMedium, model.DifficultyMedium},
		{"demote medium to easy", 60, model.DifficultyMedium, model.DifficultyEasy},
		{"demote hard to easy", 40, model.DifficultyHard, model.DifficultyEasy},
		{"already easy stays easy", 69.9, model.DifficultyEasy, model.DifficultyEasy},
		{"easy at zero stays easy", 0, model.DifficultyEasy, model.DifficultyEasy},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, svc.Next(tc.avg, tc.last))
		})
	}
}

func TestNextDifficultyEmptyLastDefaultsToMedium(t *testing.T) {
	svc := NewDifficultyService()

	// An empty history behaves as if the user were at medium.
	assert.Equal(t, model.DifficultyHard, svc.Next(90, ""))
	assert.Equal(t, model.DifficultyMedium, svc.Next(75, ""))
	assert.Equal(t, model.DifficultyEasy, svc.Next(50, ""))
}

func TestNextDifficultyAlwaysValid(t *testing.T) {
	svc := NewDifficultyService()

	for avg := 0.0; avg <= 100; avg += 0.5 {
		for _, last := range []string{model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard} {
			next := svc.Next(avg, last)
			assert.True(t, model.ValidDifficulty(next), "avg=%v last=%s produced %q", avg, last, next)
		}
	}
}
