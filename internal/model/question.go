package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const QuestionTypeMultipleChoice = "multiple_choice"

// Question belongs to exactly one Quiz. OrderNumber is 1-based and unique
// within the quiz; answer evaluation walks questions and answers by this
// same positional order.
type Question struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	QuizID        uint           `json:"quiz_id" gorm:"not null;index;uniqueIndex:idx_quiz_order"`
	QuestionText  string         `json:"question_text" gorm:"type:text;not null"`
	QuestionType  string         `json:"question_type" gorm:"not null;default:'multiple_choice'"`
	Options       datatypes.JSON `json:"options" gorm:"not null"`
	CorrectAnswer string         `json:"correct_answer" gorm:"type:text;not null"`
	Explanation   string         `json:"explanation" gorm:"type:text"`
	Points        int            `json:"points" gorm:"not null;default:1"`
	OrderNumber   int            `json:"order_number" gorm:"not null;uniqueIndex:idx_quiz_order"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
