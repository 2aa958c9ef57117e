package repository

import (
	"errors"

	"clinic-queue-manager/internal/domain/entity"
	domainRepo "clinic-queue-manager/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type profileRepository struct{}

func NewProfileRepository() domainRepo.ProfileRepository {
	return &profileRepository{}
}

func (r *profileRepository) Create(db *gorm.DB, profile *entity.Profile) error {
	return db.Create(profile).Error
}

func (r *profileRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Profile, error) {
	var profile entity.Profile
	err := db.Where("id = ?", id).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) FindByEmail(db *gorm.DB, email string) (*entity.Profile, error) {
	var profile entity.Profile
	err := db.Where("email = ?", email).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) CreatePatientRecord(db *gorm.DB, record *entity.PatientRecord) error {
	return db.Create(record).Error
}

func (r *profileRepository) CreateStaffRecord(db *gorm.DB, record *entity.StaffRecord) error {
	return db.Create(record).Error
}

func (r *profileRepository) CreateAdminRecord(db *gorm.DB, record *entity.AdminRecord) error {
	return db.Create(record).Error
}

func (r *profileRepository) Roles(db *gorm.DB, profileID uuid.UUID) (entity.RoleSet, error) {
	var roles entity.RoleSet

	var count int64
	if err := db.Model(&entity.PatientRecord{}).Where("profile_id = ?", profileID).Count(&count).Error; err != nil {
		return roles, err
	}
	roles.Patient = count > 0

	if err := db.Model(&entity.StaffRecord{}).Where("profile_id = ?", profileID).Count(&count).Error; err != nil {
		return roles, err
	}
	roles.Staff = count > 0

	if err := db.Model(&entity.AdminRecord{}).Where("profile_id = ?", profileID).Count(&count).Error; err != nil {
		return roles, err
	}
	roles.Admin = count > 0

	return roles, nil
}
