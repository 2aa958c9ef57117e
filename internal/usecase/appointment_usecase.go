package usecase

import (
	"context"
	"errors"
	"time"

	"clinic-queue-manager/internal/converter"
	"clinic-queue-manager/internal/delivery/dto"
	"clinic-queue-manager/internal/domain/entity"
	"clinic-queue-manager/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAppointmentNotFound          = errors.New("appointment not found")
	ErrDoctorInactive               = errors.New("doctor is not active")
	ErrAppointmentOverlap           = errors.New("doctor already has an appointment in this time range")
	ErrInvalidAppointmentTime       = errors.New("appointment start time must be before end time")
	ErrInvalidAppointmentStatus     = errors.New("invalid appointment status")
	ErrInvalidAppointmentTransition = errors.New("appointment status transition is not allowed")
	ErrStaleAppointmentUpdate       = errors.New("appointment was modified by another request")
)

// appointmentTransitions lists legal status moves. Cancelled and
// completed are terminal.
var appointmentTransitions = map[entity.AppointmentStatus][]entity.AppointmentStatus{
	entity.AppointmentStatusScheduled: {entity.AppointmentStatusConfirmed, entity.AppointmentStatusCancelled, entity.AppointmentStatusCompleted},
	entity.AppointmentStatusConfirmed: {entity.AppointmentStatusCancelled, entity.AppointmentStatusCompleted},
	entity.AppointmentStatusCancelled: {},
	entity.AppointmentStatusCompleted: {},
}

func appointmentCanTransition(from, to entity.AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type AppointmentUsecase interface {
	CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	GetAppointment(ctx context.Context, appointmentID int64) (*dto.AppointmentResponse, error)
	ListAppointments(ctx context.Context, req *dto.ListAppointmentsRequest) (*dto.AppointmentListResponse, error)
	UpdateAppointment(ctx context.Context, appointmentID int64, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error)
}

type appointmentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	doctorRepo      repository.DoctorRepository
	clinicRepo      repository.ClinicRepository
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	doctorRepo repository.DoctorRepository,
	clinicRepo repository.ClinicRepository,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		doctorRepo:      doctorRepo,
		clinicRepo:      clinicRepo,
	}
}

// CreateAppointment books a visit. The doctor must be active and must
// not already hold a scheduled or confirmed appointment overlapping
// [start_time, end_time).
func (u *appointmentUsecase) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	if !req.StartTime.Before(req.EndTime) {
		return nil, ErrInvalidAppointmentTime
	}

	clinic, err := u.clinicRepo.FindByID(u.db.WithContext(ctx), req.ClinicID)
	if err != nil {
		u.log.Warnf("Failed to find clinic %d: %+v", req.ClinicID, err)
		return nil, err
	}
	if clinic == nil {
		return nil, ErrClinicNotFound
	}

	doctor, err := u.doctorRepo.FindByID(u.db.WithContext(ctx), req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", req.DoctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	if !doctor.Active() {
		return nil, ErrDoctorInactive
	}

	overlapping, err := u.appointmentRepo.CountOverlapping(u.db.WithContext(ctx), req.DoctorID, req.StartTime, req.EndTime, nil)
	if err != nil {
		u.log.Warnf("Failed to check overlap for doctor %d: %+v", req.DoctorID, err)
		return nil, err
	}
	if overlapping > 0 {
		return nil, ErrAppointmentOverlap
	}

	appointment := &entity.Appointment{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		ClinicID:  req.ClinicID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    entity.AppointmentStatusScheduled,
	}

	if err := u.appointmentRepo.Create(u.db.WithContext(ctx), appointment); err != nil {
		u.log.Warnf("Failed to create appointment for doctor %d: %+v", req.DoctorID, err)
		return nil, err
	}

	u.log.Infof("Appointment created: id=%d, doctor=%d, start=%s", appointment.ID, appointment.DoctorID, appointment.StartTime.Format(time.RFC3339))
	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) GetAppointment(ctx context.Context, appointmentID int64) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %d: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) ListAppointments(ctx context.Context, req *dto.ListAppointmentsRequest) (*dto.AppointmentListResponse, error) {
	filter := repository.AppointmentFilter{
		DoctorID:  req.DoctorID,
		ClinicID:  req.ClinicID,
		PatientID: req.PatientID,
	}

	if req.Status != nil {
		status := entity.AppointmentStatus(*req.Status)
		if !status.Valid() {
			return nil, ErrInvalidAppointmentStatus
		}
		filter.Status = &status
	}

	appointments, err := u.appointmentRepo.List(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to list appointments: %+v", err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// UpdateAppointment changes status and/or treatment summary. The write
// is conditional on the status the caller observed and, when supplied,
// the row's updated_at.
func (u *appointmentUsecase) UpdateAppointment(ctx context.Context, appointmentID int64, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %d: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	update := repository.AppointmentUpdate{
		TreatmentSummary:  req.TreatmentSummary,
		ExpectedUpdatedAt: req.ExpectedUpdatedAt,
	}

	if req.Status != nil {
		target := entity.AppointmentStatus(*req.Status)
		if !target.Valid() {
			return nil, ErrInvalidAppointmentStatus
		}
		if target != appointment.Status {
			if !appointmentCanTransition(appointment.Status, target) {
				return nil, ErrInvalidAppointmentTransition
			}
			update.Status = &target
		}
	}

	if update.Status == nil && update.TreatmentSummary == nil {
		if req.ExpectedUpdatedAt != nil && !req.ExpectedUpdatedAt.Equal(appointment.UpdatedAt) {
			return nil, ErrStaleAppointmentUpdate
		}
		return converter.AppointmentToResponse(appointment), nil
	}

	affected, err := u.appointmentRepo.Update(u.db.WithContext(ctx), appointmentID, appointment.Status, update, time.Now())
	if err != nil {
		u.log.Warnf("Failed to update appointment %d: %+v", appointmentID, err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrStaleAppointmentUpdate
	}

	updated, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointmentID)
	if err != nil || updated == nil {
		u.log.Warnf("Failed to reload appointment %d: %+v", appointmentID, err)
		return nil, ErrAppointmentNotFound
	}

	u.log.Infof("Appointment updated: id=%d, status=%s", appointmentID, updated.Status)
	return converter.AppointmentToResponse(updated), nil
}
