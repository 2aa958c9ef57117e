package repository

import (
	"time"

	"clinic-queue-manager/internal/domain/entity"

	"gorm.io/gorm"
)

type QueueRepository interface {
	// CreateOpen inserts the queue inside a transaction that holds the
	// clinic row lock, so the one-open-queue-per-clinic check and the
	// insert cannot interleave with a concurrent create. Returns
	// ErrClinicNotFound when the clinic is gone and ErrOpenQueueExists
	// when an active or paused queue already occupies the slot.
	CreateOpen(db *gorm.DB, queue *entity.Queue) error
	FindByID(db *gorm.DB, id int64) (*entity.Queue, error)
	List(db *gorm.DB, filter entity.ListQueuesFilter) ([]entity.Queue, *int64, error)
	// UpdateStatus applies from -> to conditionally: the row must still
	// hold the from status, and when expectedUpdatedAt is non-nil the
	// stored updated_at must equal it. Returns the affected row count;
	// zero means the guard failed and nothing changed.
	UpdateStatus(db *gorm.DB, id int64, from, to entity.QueueStatus, expectedUpdatedAt *time.Time, now time.Time) (int64, error)
	Delete(db *gorm.DB, id int64) (int64, error)
	CountByStatus(db *gorm.DB, clinicID *int64) (map[entity.QueueStatus]int64, error)
}
