package model

import (
	"time"
)

// UserPerformance is the running aggregate driving adaptive difficulty.
// One row per (user, subject, grade level); mutated in place on every
// non-retry submission, never deleted. TotalQuizzes counts only the
// non-retry submissions contributing to AvgScore.
type UserPerformance struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	UserID         uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_subject_grade"`
	Subject        string    `json:"subject" gorm:"not null;uniqueIndex:idx_user_subject_grade"`
	GradeLevel     string    `json:"grade_level" gorm:"not null;uniqueIndex:idx_user_subject_grade"`
	AvgScore       float64   `json:"avg_score" gorm:"not null;default:0"`
	TotalQuizzes   int       `json:"total_quizzes" gorm:"not null;default:0"`
	LastDifficulty string    `json:"last_difficulty" gorm:"not null;default:'medium'"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
