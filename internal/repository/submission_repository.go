package repository

import (
	"time"

	"github.com/lamdang/quizforge/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BoardRow is one qualifying submission joined with its quiz and user,
// the input to the leaderboard's best-per-user ranking.
type BoardRow struct {
	UserID         uint
	Username       string
	Score          float64
	SubmittedAt    time.Time
	QuizTitle      string
	TotalQuestions int
}

type SubmissionRepository interface {
	// CreateScored inserts the submission and, when countsTowardAggregate
	// is set, folds its score into the (user, subject, grade) running
	// average in the same transaction. The aggregate write is one
	// insert-or-update statement, so concurrent submissions serialize on
	// the aggregate row even when it does not exist yet.
	CreateScored(sub *model.Submission, countsTowardAggregate bool, subject, gradeLevel, difficulty string) error
	// FindOriginal returns the latest non-retry submission for the pair,
	// or gorm.ErrRecordNotFound.
	FindOriginal(quizID, userID uint) (*model.Submission, error)
	// BoardRows returns every submission for the subject and grade level
	// submitted at or after since (all-time when since is nil).
	BoardRows(subject, gradeLevel string, since *time.Time) ([]BoardRow, error)
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) CreateScored(sub *model.Submission, countsTowardAggregate bool, subject, gradeLevel, difficulty string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sub).Error; err != nil {
			return err
		}
		if !countsTowardAggregate {
			return nil
		}

		perf := model.UserPerformance{
			UserID:         sub.UserID,
			Subject:        subject,
			GradeLevel:     gradeLevel,
			AvgScore:       sub.Score,
			TotalQuizzes:   1,
			LastDifficulty: difficulty,
		}
		return tx.Clauses(performanceUpsert(sub.Score, difficulty)).Create(&perf).Error
	})
}

// performanceUpsert folds a new score into the aggregate with a single
// insert-or-update on the (user_id, subject, grade_level) key. A
// find-then-create would let two concurrent first attempts both miss the
// read and collide on the unique index; the conflict clause keeps the
// incremental running mean a one-statement read-modify-write. The
// aggregate is never recomputed from raw submission history.
func performanceUpsert(score float64, difficulty string) clause.OnConflict {
	return clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "subject"}, {Name: "grade_level"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"avg_score": gorm.Expr(
				"((user_performances.avg_score * user_performances.total_quizzes) + ?) / (user_performances.total_quizzes + 1)",
				score),
			"total_quizzes":   gorm.Expr("user_performances.total_quizzes + 1"),
			"last_difficulty": difficulty,
			"updated_at":      time.Now(),
		}),
	}
}

func (r *submissionRepository) FindOriginal(quizID, userID uint) (*model.Submission, error) {
	var sub model.Submission
	err := r.db.
		Where("quiz_id = ? AND user_id = ? AND is_retry = false", quizID, userID).
		Order("submitted_at DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepository) BoardRows(subject, gradeLevel string, since *time.Time) ([]BoardRow, error) {
	q := r.db.Table("submissions s").
		Select(`s.user_id, u.username, s.score, s.submitted_at,
			q.title AS quiz_title, q.total_questions`).
		Joins("JOIN quizzes q ON q.id = s.quiz_id").
		Joins("JOIN users u ON u.id = s.user_id").
		Where("q.subject = ? AND q.grade_level = ?", subject, gradeLevel).
		Where("s.deleted_at IS NULL AND q.deleted_at IS NULL")
	if since != nil {
		q = q.Where("s.submitted_at >= ?", *since)
	}

	var rows []BoardRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
