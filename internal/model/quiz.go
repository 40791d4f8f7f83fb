package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// ValidDifficulty reports whether d is one of the three supported levels.
func ValidDifficulty(d string) bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// Quiz is immutable once generated. Questions cascade on delete so a quiz
// never leaves orphaned questions behind.
type Quiz struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	UserID          uint           `json:"user_id" gorm:"not null;index"`
	Title           string         `json:"title" gorm:"not null"`
	Subject         string         `json:"subject" gorm:"not null;index"`
	GradeLevel      string         `json:"grade_level" gorm:"not null;index"`
	DifficultyLevel string         `json:"difficulty_level" gorm:"not null"`
	TotalQuestions  int            `json:"total_questions" gorm:"not null"`
	Questions       []Question     `json:"questions,omitempty" gorm:"foreignKey:QuizID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}
