package repository

import (
	"clinic-queue-manager/internal/domain/entity"

	"gorm.io/gorm"
)

type QueueEventRepository interface {
	Create(db *gorm.DB, event *entity.QueueEvent) error
	FindByQueueID(db *gorm.DB, queueID int64, limit int) ([]entity.QueueEvent, error)
}
