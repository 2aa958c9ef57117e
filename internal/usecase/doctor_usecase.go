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

var ErrDoctorNotFound = errors.New("doctor not found")

type DoctorUsecase interface {
	CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error)
	GetDoctor(ctx context.Context, doctorID int64) (*dto.DoctorResponse, error)
	ListDoctorsByClinic(ctx context.Context, clinicID int64) (*dto.DoctorListResponse, error)
	UpdateDoctor(ctx context.Context, doctorID int64, req *dto.UpdateDoctorRequest) (*dto.DoctorResponse, error)
	DeleteDoctor(ctx context.Context, doctorID int64) error
}

type doctorUsecase struct {
	db         *gorm.DB
	log        *logrus.Logger
	doctorRepo repository.DoctorRepository
	clinicRepo repository.ClinicRepository
}

func NewDoctorUsecase(db *gorm.DB, log *logrus.Logger, doctorRepo repository.DoctorRepository, clinicRepo repository.ClinicRepository) DoctorUsecase {
	return &doctorUsecase{
		db:         db,
		log:        log,
		doctorRepo: doctorRepo,
		clinicRepo: clinicRepo,
	}
}

func (u *doctorUsecase) CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error) {
	clinic, err := u.clinicRepo.FindByID(u.db.WithContext(ctx), req.ClinicID)
	if err != nil {
		u.log.Warnf("Failed to find clinic %d: %+v", req.ClinicID, err)
		return nil, err
	}
	if clinic == nil {
		return nil, ErrClinicNotFound
	}

	doctor := &entity.Doctor{
		ClinicID:  req.ClinicID,
		Name:      req.Name,
		Specialty: req.Specialty,
	}

	if err := u.doctorRepo.Create(u.db.WithContext(ctx), doctor); err != nil {
		u.log.Warnf("Failed to create doctor: %+v", err)
		return nil, err
	}

	u.log.Infof("Doctor created: id=%d, clinic=%d", doctor.ID, doctor.ClinicID)
	return converter.DoctorToResponse(doctor), nil
}

func (u *doctorUsecase) GetDoctor(ctx context.Context, doctorID int64) (*dto.DoctorResponse, error) {
	doctor, err := u.doctorRepo.FindByID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	return converter.DoctorToResponse(doctor), nil
}

func (u *doctorUsecase) ListDoctorsByClinic(ctx context.Context, clinicID int64) (*dto.DoctorListResponse, error) {
	clinic, err := u.clinicRepo.FindByID(u.db.WithContext(ctx), clinicID)
	if err != nil {
		u.log.Warnf("Failed to find clinic %d: %+v", clinicID, err)
		return nil, err
	}
	if clinic == nil {
		return nil, ErrClinicNotFound
	}

	doctors, err := u.doctorRepo.FindByClinicID(u.db.WithContext(ctx), clinicID)
	if err != nil {
		u.log.Warnf("Failed to list doctors for clinic %d: %+v", clinicID, err)
		return nil, err
	}

	return &dto.DoctorListResponse{
		Doctors: converter.DoctorsToResponses(doctors),
		Total:   len(doctors),
	}, nil
}

func (u *doctorUsecase) UpdateDoctor(ctx context.Context, doctorID int64, req *dto.UpdateDoctorRequest) (*dto.DoctorResponse, error) {
	doctor, err := u.doctorRepo.FindByID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	if req.Name != nil {
		doctor.Name = *req.Name
	}
	if req.Specialty != nil {
		doctor.Specialty = *req.Specialty
	}
	if req.IsActive != nil {
		doctor.IsActive = req.IsActive
	}

	if err := u.doctorRepo.Update(u.db.WithContext(ctx), doctor); err != nil {
		u.log.Warnf("Failed to update doctor %d: %+v", doctorID, err)
		return nil, err
	}

	u.log.Infof("Doctor updated: id=%d", doctorID)
	return converter.DoctorToResponse(doctor), nil
}

func (u *doctorUsecase) DeleteDoctor(ctx context.Context, doctorID int64) error {
	affected, err := u.doctorRepo.Delete(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to delete doctor %d: %+v", doctorID, err)
		return err
	}
	if affected == 0 {
		return ErrDoctorNotFound
	}

	u.log.Infof("Doctor deleted: id=%d", doctorID)
	return nil
}
