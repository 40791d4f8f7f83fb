package repository

import (
	"github.com/lamdang/quizforge/internal/model"
	"gorm.io/gorm"
)

type PerformanceRepository interface {
	Find(userID uint, subject, gradeLevel string) (*model.UserPerformance, error)
}

type performanceRepository struct {
	db *gorm.DB
}

func NewPerformanceRepository(db *gorm.DB) PerformanceRepository {
	return &performanceRepository{db: db}
}

func (r *performanceRepository) Find(userID uint, subject, gradeLevel string) (*model.UserPerformance, error) {
	var perf model.UserPerformance
	err := r.db.
		Where("user_id = ? AND subject = ? AND grade_level = ?", userID, subject, gradeLevel).
		First(&perf).Error
	if err != nil {
		return nil, err
	}
	return &perf, nil
}
