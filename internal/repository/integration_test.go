package repository

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"clinic-queue-manager/internal/domain/entity"
	domainRepo "clinic-queue-manager/internal/domain/repository"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupIntegrationDB opens a gorm connection against TEST_DATABASE_DSN
// (keyword form, e.g. "host=localhost user=postgres ...") inside a
// throwaway schema that is dropped on cleanup. Tests are skipped when
// the variable is unset.
func setupIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN is required for integration tests")
	}

	silent := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	admin, err := gorm.Open(postgres.Open(dsn), silent)
	if err != nil {
		t.Fatalf("open admin connection: %v", err)
	}

	schema := fmt.Sprintf("it_%d", time.Now().UnixNano())
	if err := admin.Exec("CREATE SCHEMA " + schema).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}

	db, err := gorm.Open(postgres.Open(dsn+" search_path="+schema), silent)
	if err != nil {
		t.Fatalf("open test connection: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
		admin.Exec("DROP SCHEMA " + schema + " CASCADE")
		if sqlDB, err := admin.DB(); err == nil {
			sqlDB.Close()
		}
	})

	if err := db.AutoMigrate(&entity.Clinic{}, &entity.Queue{}, &entity.QueueTicket{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}

func seedOpenQueue(t *testing.T, db *gorm.DB) *entity.Queue {
	t.Helper()

	clinic := &entity.Clinic{Name: "Integration Test Clinic"}
	if err := NewClinicRepository().Create(db, clinic); err != nil {
		t.Fatalf("seed clinic: %v", err)
	}

	queue := &entity.Queue{ClinicID: clinic.ID, Status: entity.QueueStatusActive}
	if err := NewQueueRepository().CreateOpen(db, queue); err != nil {
		t.Fatalf("seed queue: %v", err)
	}
	return queue
}

func TestCreateOpenConcurrent(t *testing.T) {
	db := setupIntegrationDB(t)

	clinic := &entity.Clinic{Name: "Integration Test Clinic"}
	if err := NewClinicRepository().Create(db, clinic); err != nil {
		t.Fatalf("seed clinic: %v", err)
	}

	repo := NewQueueRepository()

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			queue := &entity.Queue{ClinicID: clinic.ID, Status: entity.QueueStatusActive}
			errs <- repo.CreateOpen(db, queue)
		}()
	}
	wg.Wait()
	close(errs)

	created := 0
	for err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, domainRepo.ErrOpenQueueExists):
		default:
			t.Fatalf("concurrent create: %v", err)
		}
	}
	if created != 1 {
		t.Fatalf("got %d created queues, want exactly 1", created)
	}

	var open int64
	err := db.Model(&entity.Queue{}).
		Where("clinic_id = ? AND queue_status IN ?", clinic.ID,
			[]entity.QueueStatus{entity.QueueStatusActive, entity.QueueStatusPaused}).
		Count(&open).Error
	if err != nil {
		t.Fatalf("count open queues: %v", err)
	}
	if open != 1 {
		t.Fatalf("got %d open queues, want 1", open)
	}
}

func TestCreateSequencedConcurrent(t *testing.T) {
	db := setupIntegrationDB(t)
	queue := seedOpenQueue(t, db)
	repo := NewQueueTicketRepository()

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticket := &entity.QueueTicket{
				QueueID:  queue.ID,
				Priority: entity.PriorityNormal,
				Status:   entity.TicketStatusWaiting,
			}
			errs <- repo.CreateSequenced(db, ticket)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent create: %v", err)
		}
	}

	tickets, err := repo.ListByQueue(db, entity.ListTicketsFilter{QueueID: queue.ID})
	if err != nil {
		t.Fatalf("list tickets: %v", err)
	}
	if len(tickets) != workers {
		t.Fatalf("got %d tickets, want %d", len(tickets), workers)
	}

	seen := make(map[int]bool, workers)
	for _, ticket := range tickets {
		if ticket.TicketNumber < 1 || ticket.TicketNumber > workers {
			t.Fatalf("ticket number %d out of range [1,%d]", ticket.TicketNumber, workers)
		}
		if seen[ticket.TicketNumber] {
			t.Fatalf("duplicate ticket number %d", ticket.TicketNumber)
		}
		seen[ticket.TicketNumber] = true
	}
}

func TestCreateSequencedClosedQueue(t *testing.T) {
	db := setupIntegrationDB(t)
	queue := seedOpenQueue(t, db)
	queueRepo := NewQueueRepository()
	ticketRepo := NewQueueTicketRepository()

	affected, err := queueRepo.UpdateStatus(db, queue.ID, entity.QueueStatusActive, entity.QueueStatusClosed, nil, time.Now())
	if err != nil || affected != 1 {
		t.Fatalf("close queue: affected=%d err=%v", affected, err)
	}

	ticket := &entity.QueueTicket{QueueID: queue.ID, Status: entity.TicketStatusWaiting}
	if err := ticketRepo.CreateSequenced(db, ticket); !errors.Is(err, domainRepo.ErrQueueClosed) {
		t.Fatalf("got %v, want ErrQueueClosed", err)
	}
}

func TestQueueUpdateStatusConditional(t *testing.T) {
	db := setupIntegrationDB(t)
	queue := seedOpenQueue(t, db)
	repo := NewQueueRepository()

	// Wrong observed status writes nothing
	affected, err := repo.UpdateStatus(db, queue.ID, entity.QueueStatusPaused, entity.QueueStatusClosed, nil, time.Now())
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if affected != 0 {
		t.Fatalf("affected=%d, want 0 for mismatched status", affected)
	}

	// Stale updated_at expectation writes nothing and leaves the row
	// untouched
	stored, err := repo.FindByID(db, queue.ID)
	if err != nil || stored == nil {
		t.Fatalf("reload queue: %v", err)
	}
	stale := stored.UpdatedAt.Add(-time.Minute)
	affected, err = repo.UpdateStatus(db, queue.ID, entity.QueueStatusActive, entity.QueueStatusPaused, &stale, time.Now())
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if affected != 0 {
		t.Fatalf("affected=%d, want 0 for stale timestamp", affected)
	}

	after, err := repo.FindByID(db, queue.ID)
	if err != nil || after == nil {
		t.Fatalf("reload queue: %v", err)
	}
	if after.Status != entity.QueueStatusActive || !after.UpdatedAt.Equal(stored.UpdatedAt) {
		t.Fatalf("row changed by rejected update: %+v", after)
	}

	// Matching expectation succeeds
	expected := stored.UpdatedAt
	affected, err = repo.UpdateStatus(db, queue.ID, entity.QueueStatusActive, entity.QueueStatusPaused, &expected, time.Now())
	if err != nil || affected != 1 {
		t.Fatalf("conditional update: affected=%d err=%v", affected, err)
	}
}

func TestCallEnforcesSingleServing(t *testing.T) {
	db := setupIntegrationDB(t)
	queue := seedOpenQueue(t, db)
	repo := NewQueueTicketRepository()

	first := &entity.QueueTicket{QueueID: queue.ID, Status: entity.TicketStatusWaiting}
	second := &entity.QueueTicket{QueueID: queue.ID, Status: entity.TicketStatusWaiting}
	for _, ticket := range []*entity.QueueTicket{first, second} {
		if err := repo.CreateSequenced(db, ticket); err != nil {
			t.Fatalf("create ticket: %v", err)
		}
	}

	called, err := repo.Call(db, first.ID, queue.ID, time.Now())
	if err != nil {
		t.Fatalf("call first: %v", err)
	}
	if called.Status != entity.TicketStatusCalled || called.CalledAt == nil {
		t.Fatalf("called ticket not stamped: %+v", called)
	}

	if _, err := repo.Call(db, second.ID, queue.ID, time.Now()); !errors.Is(err, domainRepo.ErrAlreadyServing) {
		t.Fatalf("got %v, want ErrAlreadyServing", err)
	}
}
