package repository

import (
	"clinic-queue-manager/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileRepository interface {
	Create(db *gorm.DB, profile *entity.Profile) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Profile, error)
	FindByEmail(db *gorm.DB, email string) (*entity.Profile, error)
	CreatePatientRecord(db *gorm.DB, record *entity.PatientRecord) error
	CreateStaffRecord(db *gorm.DB, record *entity.StaffRecord) error
	CreateAdminRecord(db *gorm.DB, record *entity.AdminRecord) error
	// Roles returns the capability set derived from which role records
	// exist for the profile.
	Roles(db *gorm.DB, profileID uuid.UUID) (entity.RoleSet, error)
}
