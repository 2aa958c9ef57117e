package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"clinic-queue-manager/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ConfirmationScheduler periodically promotes scheduled appointments
// starting within the next 24 hours to confirmed. The promotion is
// conditional on the row still being scheduled, so concurrent runs and
// manual status changes cannot double-confirm or resurrect a cancelled
// appointment.
type ConfirmationScheduler struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	interval        time.Duration
	location        *time.Location

	running atomic.Bool
}

func NewConfirmationScheduler(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	interval time.Duration,
	location *time.Location,
) *ConfirmationScheduler {
	return &ConfirmationScheduler{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		interval:        interval,
		location:        location,
	}
}

// Start runs the confirmation loop until ctx is cancelled. Call in a
// goroutine.
func (s *ConfirmationScheduler) Start(ctx context.Context) {
	s.log.Infof("Confirmation scheduler started: interval=%s, timezone=%s", s.interval, s.location)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Confirmation scheduler stopped")
			return
		case <-ticker.C:
			s.runProtected(ctx)
		}
	}
}

// runProtected skips the tick when a previous run is still in flight
// and keeps a panicking run from killing the loop.
func (s *ConfirmationScheduler) runProtected(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Warn("Confirmation run still in progress, skipping tick")
		return
	}
	defer s.running.Store(false)

	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf("Confirmation run panicked: %+v", r)
		}
	}()

	found, confirmed, err := s.RunOnce(ctx)
	if err != nil {
		s.log.Warnf("Confirmation run failed: %+v", err)
		return
	}
	if found > 0 {
		s.log.Infof("Confirmation run: found=%d, confirmed=%d", found, confirmed)
	}
}

// RunOnce confirms scheduled appointments whose start time falls in
// [now, now+24h), evaluated in the clinic timezone. Returns how many
// candidates were found and how many rows this run actually promoted;
// the counts differ when another process got there first.
func (s *ConfirmationScheduler) RunOnce(ctx context.Context) (found int, confirmed int, err error) {
	now := time.Now().In(s.location)
	windowEnd := now.Add(24 * time.Hour)

	appointments, err := s.appointmentRepo.FindScheduledBetween(s.db.WithContext(ctx), now, windowEnd)
	if err != nil {
		return 0, 0, err
	}

	for _, appointment := range appointments {
		// The window bounds travel into the write so a row rescheduled
		// after the candidate query cannot slip through
		affected, err := s.appointmentRepo.Confirm(s.db.WithContext(ctx), appointment.ID, now, windowEnd, time.Now())
		if err != nil {
			s.log.Warnf("Failed to confirm appointment %d: %+v", appointment.ID, err)
			continue
		}
		if affected > 0 {
			confirmed++
			s.log.Infof("Appointment confirmed: id=%d, start=%s", appointment.ID, appointment.StartTime.Format(time.RFC3339))
		}
	}

	return len(appointments), confirmed, nil
}
