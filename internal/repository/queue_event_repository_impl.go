package repository

import (
	"clinic-queue-manager/internal/domain/entity"
	domainRepo "clinic-queue-manager/internal/domain/repository"

	"gorm.io/gorm"
)

type queueEventRepository struct{}

func NewQueueEventRepository() domainRepo.QueueEventRepository {
	return &queueEventRepository{}
}

func (r *queueEventRepository) Create(db *gorm.DB, event *entity.QueueEvent) error {
	return db.Create(event).Error
}

func (r *queueEventRepository) FindByQueueID(db *gorm.DB, queueID int64, limit int) ([]entity.QueueEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	var events []entity.QueueEvent
	err := db.Where("queue_id = ?", queueID).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
