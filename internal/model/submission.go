package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Submission is one scored attempt at a quiz. It is immutable once written;
// a retry creates a new row referencing the original instead of mutating it.
type Submission struct {
	ID                   uint           `gorm:"primarykey" json:"id"`
	QuizID               uint           `json:"quiz_id" gorm:"not null;index"`
	Quiz                 Quiz           `json:"quiz,omitempty" gorm:"foreignKey:QuizID"`
	UserID               uint           `json:"user_id" gorm:"not null;index"`
	User                 User           `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Answers              datatypes.JSON `json:"answers" gorm:"not null"`
	Score                float64        `json:"score" gorm:"not null"`
	TotalPoints          int            `json:"total_points" gorm:"not null"`
	Feedback             datatypes.JSON `json:"feedback"`
	AISuggestions        datatypes.JSON `json:"ai_suggestions"`
	TimeTaken            *int           `json:"time_taken,omitempty"`
	IsRetry              bool           `json:"is_retry" gorm:"not null;default:false;index"`
	OriginalSubmissionID *uint          `json:"original_submission_id,omitempty"`
	SubmittedAt          time.Time      `json:"submitted_at" gorm:"autoCreateTime;index"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}
