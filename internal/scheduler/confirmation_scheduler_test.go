package scheduler

import (
	"context"
	"io"
	"testing"
	"time"

	"clinic-queue-manager/internal/domain/entity"
	"clinic-queue-manager/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type confirmRepo struct {
	appointments map[int64]*entity.Appointment
	nextID       int64

	// beforeConfirm, when set, runs before each conditional promote to
	// simulate concurrent writers.
	beforeConfirm func(id int64)
}

func newConfirmRepo() *confirmRepo {
	return &confirmRepo{appointments: map[int64]*entity.Appointment{}}
}

func (r *confirmRepo) add(status entity.AppointmentStatus, start time.Time) int64 {
	r.nextID++
	r.appointments[r.nextID] = &entity.Appointment{
		ID:        r.nextID,
		PatientID: 1,
		DoctorID:  1,
		ClinicID:  1,
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Status:    status,
		UpdatedAt: time.Now(),
	}
	return r.nextID
}

func (r *confirmRepo) Create(_ *gorm.DB, _ *entity.Appointment) error { return nil }

func (r *confirmRepo) FindByID(_ *gorm.DB, id int64) (*entity.Appointment, error) {
	appointment, ok := r.appointments[id]
	if !ok {
		return nil, nil
	}
	copied := *appointment
	return &copied, nil
}

func (r *confirmRepo) List(_ *gorm.DB, _ repository.AppointmentFilter) ([]entity.Appointment, error) {
	return nil, nil
}

func (r *confirmRepo) CountOverlapping(_ *gorm.DB, _ int64, _, _ time.Time, _ *int64) (int64, error) {
	return 0, nil
}

func (r *confirmRepo) FindScheduledBetween(_ *gorm.DB, from, to time.Time) ([]entity.Appointment, error) {
	var out []entity.Appointment
	for _, appointment := range r.appointments {
		if appointment.Status != entity.AppointmentStatusScheduled {
			continue
		}
		if appointment.StartTime.Before(from) || appointment.StartTime.After(to) {
			continue
		}
		out = append(out, *appointment)
	}
	return out, nil
}

func (r *confirmRepo) Confirm(_ *gorm.DB, id int64, windowStart, windowEnd, now time.Time) (int64, error) {
	if r.beforeConfirm != nil {
		r.beforeConfirm(id)
	}
	appointment, ok := r.appointments[id]
	if !ok || appointment.Status != entity.AppointmentStatusScheduled {
		return 0, nil
	}
	if appointment.StartTime.Before(windowStart) || appointment.StartTime.After(windowEnd) {
		return 0, nil
	}
	appointment.Status = entity.AppointmentStatusConfirmed
	appointment.UpdatedAt = now
	return 1, nil
}

func (r *confirmRepo) Update(_ *gorm.DB, _ int64, _ entity.AppointmentStatus, _ repository.AppointmentUpdate, _ time.Time) (int64, error) {
	return 0, nil
}

func (r *confirmRepo) CountTodayByStatus(_ *gorm.DB, _ *int64, _, _ time.Time) (map[entity.AppointmentStatus]int64, error) {
	return map[entity.AppointmentStatus]int64{}, nil
}

func newTestScheduler(repo *confirmRepo) *ConfirmationScheduler {
	log := logrus.New()
	log.SetOutput(io.Discard)
	db := &gorm.DB{Config: &gorm.Config{}}
	db.Statement = &gorm.Statement{DB: db}
	return NewConfirmationScheduler(db, log, repo, time.Minute, time.UTC)
}

func TestRunOnceConfirmsWindow(t *testing.T) {
	repo := newConfirmRepo()
	now := time.Now()

	soon := repo.add(entity.AppointmentStatusScheduled, now.Add(2*time.Hour))
	later := repo.add(entity.AppointmentStatusScheduled, now.Add(30*time.Hour))
	cancelledID := repo.add(entity.AppointmentStatusCancelled, now.Add(3*time.Hour))
	alreadyConfirmed := repo.add(entity.AppointmentStatusConfirmed, now.Add(4*time.Hour))

	found, confirmed, err := newTestScheduler(repo).RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if found != 1 || confirmed != 1 {
		t.Fatalf("found=%d confirmed=%d, want 1/1", found, confirmed)
	}

	want := map[int64]entity.AppointmentStatus{
		soon:             entity.AppointmentStatusConfirmed,
		later:            entity.AppointmentStatusScheduled,
		cancelledID:      entity.AppointmentStatusCancelled,
		alreadyConfirmed: entity.AppointmentStatusConfirmed,
	}
	for id, wantStatus := range want {
		if got := repo.appointments[id].Status; got != wantStatus {
			t.Fatalf("appointment %d: status=%s, want %s", id, got, wantStatus)
		}
	}
}

func TestRunOnceIdempotent(t *testing.T) {
	repo := newConfirmRepo()
	repo.add(entity.AppointmentStatusScheduled, time.Now().Add(time.Hour))
	sched := newTestScheduler(repo)

	if _, confirmed, err := sched.RunOnce(context.Background()); err != nil || confirmed != 1 {
		t.Fatalf("first run: confirmed=%d err=%v, want 1/nil", confirmed, err)
	}
	if found, confirmed, err := sched.RunOnce(context.Background()); err != nil || found != 0 || confirmed != 0 {
		t.Fatalf("second run: found=%d confirmed=%d err=%v, want 0/0/nil", found, confirmed, err)
	}
}

func TestRunOnceSkipsRescheduledRow(t *testing.T) {
	repo := newConfirmRepo()
	id := repo.add(entity.AppointmentStatusScheduled, time.Now().Add(time.Hour))
	sched := newTestScheduler(repo)

	// The appointment is pushed out a week between the candidate query
	// and the conditional write; the window re-check must reject it
	repo.beforeConfirm = func(targetID int64) {
		repo.appointments[targetID].StartTime = time.Now().Add(7 * 24 * time.Hour)
	}

	found, confirmed, err := sched.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if found != 1 || confirmed != 0 {
		t.Fatalf("found=%d confirmed=%d, want 1/0", found, confirmed)
	}
	if got := repo.appointments[id].Status; got != entity.AppointmentStatusScheduled {
		t.Fatalf("status=%s, want scheduled preserved", got)
	}
}

func TestRunOnceLosesRaceGracefully(t *testing.T) {
	repo := newConfirmRepo()
	id := repo.add(entity.AppointmentStatusScheduled, time.Now().Add(time.Hour))
	sched := newTestScheduler(repo)

	// A staff member cancels the appointment between the scheduler's
	// read and its conditional write
	repo.beforeConfirm = func(targetID int64) {
		repo.appointments[targetID].Status = entity.AppointmentStatusCancelled
	}

	found, confirmed, err := sched.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if found != 1 || confirmed != 0 {
		t.Fatalf("found=%d confirmed=%d, want 1/0", found, confirmed)
	}
	if got := repo.appointments[id].Status; got != entity.AppointmentStatusCancelled {
		t.Fatalf("status=%s, want cancelled preserved", got)
	}
}
