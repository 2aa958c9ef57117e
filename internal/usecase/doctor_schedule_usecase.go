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
	ErrScheduleNotFound      = errors.New("schedule not found")
	ErrInvalidScheduleTime   = errors.New("schedule times must be HH:MM with start before end")
	ErrInvalidScheduleWindow = errors.New("schedule window is shorter than one slot")
	ErrInvalidScheduleRange  = errors.New("valid_from must not be after valid_to")
	ErrInvalidScheduleDate   = errors.New("date must be YYYY-MM-DD")
)

type DoctorScheduleUsecase interface {
	CreateSchedule(ctx context.Context, req *dto.CreateScheduleRequest) (*dto.ScheduleResponse, error)
	GetSchedule(ctx context.Context, scheduleID int64) (*dto.ScheduleResponse, error)
	ListSchedulesByDoctor(ctx context.Context, doctorID int64) (*dto.ScheduleListResponse, error)
	UpdateSchedule(ctx context.Context, scheduleID int64, req *dto.UpdateScheduleRequest) (*dto.ScheduleResponse, error)
	DeleteSchedule(ctx context.Context, scheduleID int64) error
	// ListAvailableSlots expands the doctor's recurring windows on the
	// given date (YYYY-MM-DD, clinic timezone) into slots, marking each
	// slot unavailable when a scheduled or confirmed appointment
	// overlaps it.
	ListAvailableSlots(ctx context.Context, doctorID int64, date string) (*dto.SlotListResponse, error)
}

type doctorScheduleUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	scheduleRepo    repository.DoctorScheduleRepository
	doctorRepo      repository.DoctorRepository
	appointmentRepo repository.AppointmentRepository
	location        *time.Location
}

func NewDoctorScheduleUsecase(db *gorm.DB, log *logrus.Logger, scheduleRepo repository.DoctorScheduleRepository, doctorRepo repository.DoctorRepository, appointmentRepo repository.AppointmentRepository, location *time.Location) DoctorScheduleUsecase {
	return &doctorScheduleUsecase{
		db:              db,
		log:             log,
		scheduleRepo:    scheduleRepo,
		doctorRepo:      doctorRepo,
		appointmentRepo: appointmentRepo,
		location:        location,
	}
}

func (u *doctorScheduleUsecase) CreateSchedule(ctx context.Context, req *dto.CreateScheduleRequest) (*dto.ScheduleResponse, error) {
	doctor, err := u.doctorRepo.FindByID(u.db.WithContext(ctx), req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", req.DoctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	validFrom, err := parseScheduleDate(req.ValidFrom, u.location)
	if err != nil {
		return nil, err
	}
	validTo, err := parseScheduleDate(req.ValidTo, u.location)
	if err != nil {
		return nil, err
	}

	schedule := &entity.DoctorSchedule{
		DoctorID:    req.DoctorID,
		DayOfWeek:   req.DayOfWeek,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		SlotMinutes: req.SlotMinutes,
		ValidFrom:   validFrom,
		ValidTo:     validTo,
	}
	if err := validateScheduleWindow(schedule); err != nil {
		return nil, err
	}

	if err := u.scheduleRepo.Create(u.db.WithContext(ctx), schedule); err != nil {
		u.log.Warnf("Failed to create schedule for doctor %d: %+v", req.DoctorID, err)
		return nil, err
	}

	u.log.Infof("Schedule created: id=%d, doctor=%d, day=%d", schedule.ID, schedule.DoctorID, schedule.DayOfWeek)
	return converter.ScheduleToResponse(schedule), nil
}

func (u *doctorScheduleUsecase) GetSchedule(ctx context.Context, scheduleID int64) (*dto.ScheduleResponse, error) {
	schedule, err := u.scheduleRepo.FindByID(u.db.WithContext(ctx), scheduleID)
	if err != nil {
		u.log.Warnf("Failed to find schedule %d: %+v", scheduleID, err)
		return nil, err
	}
	if schedule == nil {
		return nil, ErrScheduleNotFound
	}

	return converter.ScheduleToResponse(schedule), nil
}

func (u *doctorScheduleUsecase) ListSchedulesByDoctor(ctx context.Context, doctorID int64) (*dto.ScheduleListResponse, error) {
	doctor, err := u.doctorRepo.FindByID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	schedules, err := u.scheduleRepo.FindByDoctorID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to list schedules for doctor %d: %+v", doctorID, err)
		return nil, err
	}

	return &dto.ScheduleListResponse{
		Schedules: converter.SchedulesToResponses(schedules),
		Total:     len(schedules),
	}, nil
}

func (u *doctorScheduleUsecase) UpdateSchedule(ctx context.Context, scheduleID int64, req *dto.UpdateScheduleRequest) (*dto.ScheduleResponse, error) {
	schedule, err := u.scheduleRepo.FindByID(u.db.WithContext(ctx), scheduleID)
	if err != nil {
		u.log.Warnf("Failed to find schedule %d: %+v", scheduleID, err)
		return nil, err
	}
	if schedule == nil {
		return nil, ErrScheduleNotFound
	}

	if req.DayOfWeek != nil {
		schedule.DayOfWeek = *req.DayOfWeek
	}
	if req.StartTime != nil {
		schedule.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		schedule.EndTime = *req.EndTime
	}
	if req.SlotMinutes != nil {
		schedule.SlotMinutes = *req.SlotMinutes
	}
	if req.ValidFrom != nil {
		validFrom, err := parseScheduleDate(req.ValidFrom, u.location)
		if err != nil {
			return nil, err
		}
		schedule.ValidFrom = validFrom
	}
	if req.ValidTo != nil {
		validTo, err := parseScheduleDate(req.ValidTo, u.location)
		if err != nil {
			return nil, err
		}
		schedule.ValidTo = validTo
	}
	if err := validateScheduleWindow(schedule); err != nil {
		return nil, err
	}

	if err := u.scheduleRepo.Update(u.db.WithContext(ctx), schedule); err != nil {
		u.log.Warnf("Failed to update schedule %d: %+v", scheduleID, err)
		return nil, err
	}

	u.log.Infof("Schedule updated: id=%d", scheduleID)
	return converter.ScheduleToResponse(schedule), nil
}

func (u *doctorScheduleUsecase) DeleteSchedule(ctx context.Context, scheduleID int64) error {
	affected, err := u.scheduleRepo.Delete(u.db.WithContext(ctx), scheduleID)
	if err != nil {
		u.log.Warnf("Failed to delete schedule %d: %+v", scheduleID, err)
		return err
	}
	if affected == 0 {
		return ErrScheduleNotFound
	}

	u.log.Infof("Schedule deleted: id=%d", scheduleID)
	return nil
}

func (u *doctorScheduleUsecase) ListAvailableSlots(ctx context.Context, doctorID int64, date string) (*dto.SlotListResponse, error) {
	doctor, err := u.doctorRepo.FindByID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	day, err := time.ParseInLocation("2006-01-02", date, u.location)
	if err != nil {
		return nil, ErrInvalidScheduleDate
	}

	schedules, err := u.scheduleRepo.FindForDay(u.db.WithContext(ctx), doctorID, entity.ISOWeekday(day), day)
	if err != nil {
		u.log.Warnf("Failed to find schedules for doctor %d: %+v", doctorID, err)
		return nil, err
	}

	appointments, err := u.appointmentRepo.List(u.db.WithContext(ctx), repository.AppointmentFilter{DoctorID: &doctorID})
	if err != nil {
		u.log.Warnf("Failed to list appointments for doctor %d: %+v", doctorID, err)
		return nil, err
	}
	var blocking []entity.Appointment
	for _, appointment := range appointments {
		if appointment.Status.Blocking() {
			blocking = append(blocking, appointment)
		}
	}

	slots := []dto.SlotResponse{}
	for _, schedule := range schedules {
		expanded, err := u.expandSchedule(&schedule, day, blocking)
		if err != nil {
			u.log.Warnf("Skipping malformed schedule %d: %+v", schedule.ID, err)
			continue
		}
		slots = append(slots, expanded...)
	}

	return &dto.SlotListResponse{
		DoctorID: doctorID,
		Slots:    slots,
		Date:     date,
	}, nil
}

// expandSchedule walks the window in SlotMinutes steps. The last slot
// must end exactly at or before the window end; a trailing remainder
// shorter than one slot is discarded.
func (u *doctorScheduleUsecase) expandSchedule(schedule *entity.DoctorSchedule, day time.Time, blocking []entity.Appointment) ([]dto.SlotResponse, error) {
	startHour, startMinute, err := parseClock(schedule.StartTime)
	if err != nil {
		return nil, err
	}
	endHour, endMinute, err := parseClock(schedule.EndTime)
	if err != nil {
		return nil, err
	}

	year, month, dayOfMonth := day.Date()
	current := time.Date(year, month, dayOfMonth, startHour, startMinute, 0, 0, u.location)
	end := time.Date(year, month, dayOfMonth, endHour, endMinute, 0, 0, u.location)
	step := time.Duration(schedule.SlotMinutes) * time.Minute

	var slots []dto.SlotResponse
	for !current.Add(step).After(end) {
		slotEnd := current.Add(step)
		available := true
		for _, appointment := range blocking {
			if appointment.StartTime.Before(slotEnd) && appointment.EndTime.After(current) {
				available = false
				break
			}
		}
		slots = append(slots, dto.SlotResponse{
			StartTime: current,
			EndTime:   slotEnd,
			Available: available,
		})
		current = slotEnd
	}
	return slots, nil
}

// validateScheduleWindow checks the time fields as a whole, so a
// partial update cannot leave the row inconsistent.
func validateScheduleWindow(schedule *entity.DoctorSchedule) error {
	startHour, startMinute, err := parseClock(schedule.StartTime)
	if err != nil {
		return ErrInvalidScheduleTime
	}
	endHour, endMinute, err := parseClock(schedule.EndTime)
	if err != nil {
		return ErrInvalidScheduleTime
	}

	start := startHour*60 + startMinute
	end := endHour*60 + endMinute
	if start >= end {
		return ErrInvalidScheduleTime
	}
	if end-start < schedule.SlotMinutes {
		return ErrInvalidScheduleWindow
	}
	if schedule.ValidFrom != nil && schedule.ValidTo != nil && schedule.ValidFrom.After(*schedule.ValidTo) {
		return ErrInvalidScheduleRange
	}
	return nil
}

// parseClock accepts HH:MM as written by clients and HH:MM:SS as the
// database returns time columns.
func parseClock(value string) (hour, minute int, err error) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		parsed, err = time.Parse("15:04:05", value)
		if err != nil {
			return 0, 0, err
		}
	}
	return parsed.Hour(), parsed.Minute(), nil
}

func parseScheduleDate(value *string, location *time.Location) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", *value, location)
	if err != nil {
		return nil, ErrInvalidScheduleDate
	}
	return &parsed, nil
}
