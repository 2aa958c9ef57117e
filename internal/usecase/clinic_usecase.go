package usecase

import (
	"context"
	"errors"

	"clinic-queue-manager/internal/converter"
	"clinic-queue-manager/internal/delivery/dto"
	"clinic-queue-manager/internal/domain/entity"
	"clinic-queue-manager/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrClinicNotFound = errors.New("clinic not found")

type ClinicUsecase interface {
	CreateClinic(ctx context.Context, req *dto.CreateClinicRequest) (*dto.ClinicResponse, error)
	GetClinic(ctx context.Context, clinicID int64) (*dto.ClinicResponse, error)
	ListClinics(ctx context.Context) (*dto.ClinicListResponse, error)
	UpdateClinic(ctx context.Context, clinicID int64, req *dto.UpdateClinicRequest) (*dto.ClinicResponse, error)
	DeleteClinic(ctx context.Context, clinicID int64) error
}

type clinicUsecase struct {
	db         *gorm.DB
	log        *logrus.Logger
	clinicRepo repository.ClinicRepository
}

func NewClinicUsecase(db *gorm.DB, log *logrus.Logger, clinicRepo repository.ClinicRepository) ClinicUsecase {
	return &clinicUsecase{
		db:         db,
		log:        log,
		clinicRepo: clinicRepo,
	}
}

func (u *clinicUsecase) CreateClinic(ctx context.Context, req *dto.CreateClinicRequest) (*dto.ClinicResponse, error) {
	clinic := &entity.Clinic{
		Name:        req.Name,
		AddressLine: req.AddressLine,
		Area:        req.Area,
		Region:      req.Region,
		ClinicType:  req.ClinicType,
		OpenTime:    req.OpenTime,
		CloseTime:   req.CloseTime,
	}

	if err := u.clinicRepo.Create(u.db.WithContext(ctx), clinic); err != nil {
		u.log.Warnf("Failed to create clinic: %+v", err)
		return nil, err
	}

	u.log.Infof("Clinic created: id=%d, name=%s", clinic.ID, clinic.Name)
	return converter.ClinicToResponse(clinic), nil
}

func (u *clinicUsecase) GetClinic(ctx context.Context, clinicID int64) (*dto.ClinicResponse, error) {
	clinic, err := u.clinicRepo.FindByID(u.db.WithContext(ctx), clinicID)
	if err != nil {
		u.log.Warnf("Failed to find clinic %d: %+v", clinicID, err)
		return nil, err
	}
	if clinic == nil {
		return nil, ErrClinicNotFound
	}

	return converter.ClinicToResponse(clinic), nil
}

func (u *clinicUsecase) ListClinics(ctx context.Context) (*dto.ClinicListResponse, error) {
	clinics, err := u.clinicRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to list clinics: %+v", err)
		return nil, err
	}

	return &dto.ClinicListResponse{
		Clinics: converter.ClinicsToResponses(clinics),
		Total:   len(clinics),
	}, nil
}

func (u *clinicUsecase) UpdateClinic(ctx context.Context, clinicID int64, req *dto.UpdateClinicRequest) (*dto.ClinicResponse, error) {
	clinic, err := u.clinicRepo.FindByID(u.db.WithContext(ctx), clinicID)
	if err != nil {
		u.log.Warnf("Failed to find clinic %d: %+v", clinicID, err)
		return nil, err
	}
	if clinic == nil {
		return nil, ErrClinicNotFound
	}

	if req.Name != nil {
		clinic.Name = *req.Name
	}
	if req.AddressLine != nil {
		clinic.AddressLine = *req.AddressLine
	}
	if req.Area != nil {
		clinic.Area = *req.Area
	}
	if req.Region != nil {
		clinic.Region = *req.Region
	}
	if req.ClinicType != nil {
		clinic.ClinicType = *req.ClinicType
	}
	if req.OpenTime != nil {
		clinic.OpenTime = *req.OpenTime
	}
	if req.CloseTime != nil {
		clinic.CloseTime = *req.CloseTime
	}

	if err := u.clinicRepo.Update(u.db.WithContext(ctx), clinic); err != nil {
		u.log.Warnf("Failed to update clinic %d: %+v", clinicID, err)
		return nil, err
	}

	u.log.Infof("Clinic updated: id=%d", clinicID)
	return converter.ClinicToResponse(clinic), nil
}

func (u *clinicUsecase) DeleteClinic(ctx context.Context, clinicID int64) error {
	affected, err := u.clinicRepo.Delete(u.db.WithContext(ctx), clinicID)
	if err != nil {
		u.log.Warnf("Failed to delete clinic %d: %+v", clinicID, err)
		return err
	}
	if affected == 0 {
		return ErrClinicNotFound
	}

	u.log.Infof("Clinic deleted: id=%d", clinicID)
	return nil
}
