package usecase

import (
	"context"
	"time"

	"clinic-queue-manager/internal/delivery/dto"
	"clinic-queue-manager/internal/domain/entity"
	"clinic-queue-manager/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type StatisticsUsecase interface {
	GetStatistics(ctx context.Context, clinicID *int64) (*dto.StatisticsResponse, error)
}

type statisticsUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	queueRepo       repository.QueueRepository
	appointmentRepo repository.AppointmentRepository
	location        *time.Location
}

func NewStatisticsUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	queueRepo repository.QueueRepository,
	appointmentRepo repository.AppointmentRepository,
	location *time.Location,
) StatisticsUsecase {
	return &statisticsUsecase{
		db:              db,
		log:             log,
		queueRepo:       queueRepo,
		appointmentRepo: appointmentRepo,
		location:        location,
	}
}

// GetStatistics aggregates queue counts by status and today's
// appointment counts by status. "Today" is the clinic's local day,
// not the server's.
func (u *statisticsUsecase) GetStatistics(ctx context.Context, clinicID *int64) (*dto.StatisticsResponse, error) {
	queueCounts, err := u.queueRepo.CountByStatus(u.db.WithContext(ctx), clinicID)
	if err != nil {
		u.log.Warnf("Failed to count queues by status: %+v", err)
		return nil, err
	}

	now := time.Now().In(u.location)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, u.location)
	dayEnd := dayStart.Add(24 * time.Hour)

	appointmentCounts, err := u.appointmentRepo.CountTodayByStatus(u.db.WithContext(ctx), clinicID, dayStart, dayEnd)
	if err != nil {
		u.log.Warnf("Failed to count today's appointments: %+v", err)
		return nil, err
	}

	queues := make(map[string]int64, len(queueCounts))
	for status, count := range queueCounts {
		queues[string(status)] = count
	}

	appointments := make(map[string]int64, len(appointmentCounts))
	for status, count := range appointmentCounts {
		appointments[string(status)] = count
	}

	// Report zeros for statuses with no rows so dashboards always see
	// the full set of keys
	for _, status := range []entity.QueueStatus{entity.QueueStatusActive, entity.QueueStatusPaused, entity.QueueStatusClosed} {
		if _, ok := queues[string(status)]; !ok {
			queues[string(status)] = 0
		}
	}
	for _, status := range []entity.AppointmentStatus{
		entity.AppointmentStatusScheduled, entity.AppointmentStatusConfirmed,
		entity.AppointmentStatusCancelled, entity.AppointmentStatusCompleted,
	} {
		if _, ok := appointments[string(status)]; !ok {
			appointments[string(status)] = 0
		}
	}

	return &dto.StatisticsResponse{
		Queues:       queues,
		Appointments: appointments,
	}, nil
}
