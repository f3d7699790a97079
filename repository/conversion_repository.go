package repository

import (
	"cylink/models"

	"gorm.io/gorm"
)

type ConversionRepository struct {
	db *gorm.DB
}

func NewConversionRepository(db *gorm.DB) *ConversionRepository {
	return &ConversionRepository{db: db}
}

func (r *ConversionRepository) Create(conversion *models.Conversion) error {
	return r.db.Create(conversion).Error
}
