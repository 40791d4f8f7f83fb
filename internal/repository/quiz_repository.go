package repository

import (
	"time"

	"github.com/lamdang/quizforge/internal/dto"
	"github.com/lamdang/quizforge/internal/model"
	"gorm.io/gorm"
)

// QuizHistoryRow is one quiz joined with the user's latest submission for
// it. Submission columns are nil for quizzes never submitted.
type QuizHistoryRow struct {
	ID              uint
	Title           string
	Subject         string
	GradeLevel      string
	DifficultyLevel string
	TotalQuestions  int
	CreatedAt       time.Time
	SubmissionID    *uint
	Score           *float64
	SubmittedAt     *time.Time
	IsRetry         *bool
}

type QuizRepository interface {
	// Create persists the quiz together with its questions. GORM wraps the
	// association create in a single transaction, so a failure leaves no
	// partial quiz behind.
	Create(quiz *model.Quiz) error
	FindByIDWithQuestions(id uint) (*model.Quiz, error)
	FindQuestionByID(id uint) (*model.Question, error)
	History(userID uint, filter dto.HistoryFilter) ([]QuizHistoryRow, int64, error)
}

type quizRepository struct {
	db *gorm.DB
}

func NewQuizRepository(db *gorm.DB) QuizRepository {
	return &quizRepository{db: db}
}

func (r *quizRepository) Create(quiz *model.Quiz) error {
	return r.db.Create(quiz).Error
}

func (r *quizRepository) FindByIDWithQuestions(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("questions.order_number ASC")
	}).First(&quiz, id).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *quizRepository) FindQuestionByID(id uint) (*model.Question, error) {
	var question model.Question
	if err := r.db.First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

// History pages through the caller's quizzes, each joined with the most
// recent of their own submissions for that quiz. All filters apply
// server-side; the total count uses the same filter set.
func (r *quizRepository) History(userID uint, filter dto.HistoryFilter) ([]QuizHistoryRow, int64, error) {
	base := func() *gorm.DB {
		q := r.db.Table("quizzes q").
			Joins(`LEFT JOIN submissions s ON s.id = (
				SELECT s2.id FROM submissions s2
				WHERE s2.quiz_id = q.id AND s2.user_id = ? AND s2.deleted_at IS NULL
				ORDER BY s2.submitted_at DESC LIMIT 1)`, userID).
			Where("q.user_id = ?", userID).
			Where("q.deleted_at IS NULL")

		if filter.Grade != "" {
			q = q.Where("q.grade_level = ?", filter.Grade)
		}
		if filter.Subject != "" {
			q = q.Where("q.subject ILIKE ?", "%"+filter.Subject+"%")
		}
		if filter.MinScore != "" {
			q = q.Where("s.score >= ?", filter.MinScore)
		}
		if filter.MaxScore != "" {
			q = q.Where("s.score <= ?", filter.MaxScore)
		}
		if filter.StartDate != "" {
			q = q.Where("q.created_at >= ?", filter.StartDate)
		}
		if filter.EndDate != "" {
			q = q.Where("q.created_at <= ?", filter.EndDate)
		}
		return q
	}

	var total int64
	if err := base().Distinct("q.id").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []QuizHistoryRow
	err := base().
		Select(`q.id, q.title, q.subject, q.grade_level, q.difficulty_level,
			q.total_questions, q.created_at,
			s.id AS submission_id, s.score, s.submitted_at, s.is_retry`).
		Order("q.created_at DESC").
		Limit(filter.Limit).
		Offset((filter.Page - 1) * filter.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
