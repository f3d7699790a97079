package repository

import (
	"cylink/models"

	"gorm.io/gorm"
)

type GoalRepository struct {
	db *gorm.DB
}

func NewGoalRepository(db *gorm.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

func (r *GoalRepository) Create(goal *models.ConversionGoal) error {
	return r.db.Create(goal).Error
}

func (r *GoalRepository) ByURL(urlID uint) ([]models.ConversionGoal, error) {
	var goals []models.ConversionGoal
	err := r.db.Where("url_id = ?", urlID).
		Order("id asc").
		Find(&goals).Error
	return goals, err
}

func (r *GoalRepository) ByID(id uint) (*models.ConversionGoal, error) {
	var goal models.ConversionGoal
	if err := r.db.First(&goal, id).Error; err != nil {
		return nil, err
	}
	return &goal, nil
}
