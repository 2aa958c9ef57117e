package repository

import (
	"errors"
	"fmt"
	"time"

	"clinic-queue-manager/internal/domain/entity"
	domainRepo "clinic-queue-manager/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type queueRepository struct{}

func NewQueueRepository() domainRepo.QueueRepository {
	return &queueRepository{}
}

// CreateOpen serializes queue creation per clinic: the clinic row lock
// keeps two concurrent creates from both passing the open-queue check,
// the same way CreateSequenced serializes ticket numbering.
func (r *queueRepository) CreateOpen(db *gorm.DB, queue *entity.Queue) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var clinic entity.Clinic
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", queue.ClinicID).
			First(&clinic).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainRepo.ErrClinicNotFound
			}
			return err
		}

		var open int64
		err = tx.Model(&entity.Queue{}).
			Where("clinic_id = ? AND queue_status IN ?", queue.ClinicID,
				[]entity.QueueStatus{entity.QueueStatusActive, entity.QueueStatusPaused}).
			Count(&open).Error
		if err != nil {
			return err
		}
		if open > 0 {
			return domainRepo.ErrOpenQueueExists
		}

		return tx.Create(queue).Error
	})
}

func (r *queueRepository) FindByID(db *gorm.DB, id int64) (*entity.Queue, error) {
	var queue entity.Queue
	err := db.Where("id = ?", id).First(&queue).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &queue, nil
}

func (r *queueRepository) List(db *gorm.DB, filter entity.ListQueuesFilter) ([]entity.Queue, *int64, error) {
	filter.Normalize()

	query := db.Model(&entity.Queue{})
	if filter.ClinicID != nil {
		query = query.Where("clinic_id = ?", *filter.ClinicID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("queue_status IN ?", filter.Statuses)
	}

	var count *int64
	if filter.IncludeCount {
		var total int64
		if err := query.Count(&total).Error; err != nil {
			return nil, nil, err
		}
		count = &total
	}

	// SortBy is an enum validated upstream; never raw caller input.
	order := fmt.Sprintf("%s %s", filter.SortBy, filter.SortDir)

	var queues []entity.Queue
	err := query.Order(order).
		Limit(filter.Size).
		Offset(filter.Offset()).
		Find(&queues).Error
	if err != nil {
		return nil, nil, err
	}
	return queues, count, nil
}

// UpdateStatus is a compare-and-write: the WHERE clause re-checks the
// status (and updated_at when the caller holds an expectation) so the
// accept/reject decision and the write are a single statement.
func (r *queueRepository) UpdateStatus(db *gorm.DB, id int64, from, to entity.QueueStatus, expectedUpdatedAt *time.Time, now time.Time) (int64, error) {
	query := db.Model(&entity.Queue{}).
		Where("id = ? AND queue_status = ?", id, from)
	if expectedUpdatedAt != nil {
		query = query.Where("updated_at = ?", *expectedUpdatedAt)
	}
	result := query.Updates(map[string]interface{}{
		"queue_status": to,
		"updated_at":   now,
	})
	return result.RowsAffected, result.Error
}

func (r *queueRepository) Delete(db *gorm.DB, id int64) (int64, error) {
	result := db.Where("id = ?", id).Delete(&entity.Queue{})
	return result.RowsAffected, result.Error
}

func (r *queueRepository) CountByStatus(db *gorm.DB, clinicID *int64) (map[entity.QueueStatus]int64, error) {
	type row struct {
		QueueStatus entity.QueueStatus
		Total       int64
	}
	query := db.Model(&entity.Queue{}).
		Select("queue_status, COUNT(*) as total").
		Group("queue_status")
	if clinicID != nil {
		query = query.Where("clinic_id = ?", *clinicID)
	}

	var rows []row
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[entity.QueueStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.QueueStatus] = r.Total
	}
	return counts, nil
}
