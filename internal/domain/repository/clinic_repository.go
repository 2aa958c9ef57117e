package repository

import (
	"clinic-queue-manager/internal/domain/entity"

	"gorm.io/gorm"
)

type ClinicRepository interface {
	Create(db *gorm.DB, clinic *entity.Clinic) error
	FindByID(db *gorm.DB, id int64) (*entity.Clinic, error)
	FindAll(db *gorm.DB) ([]entity.Clinic, error)
	Update(db *gorm.DB, clinic *entity.Clinic) error
	Delete(db *gorm.DB, id int64) (int64, error)
}
