package usecase

import (
	"context"

	"clinic-queue-manager/internal/converter"
	"clinic-queue-manager/internal/delivery/dto"
	"clinic-queue-manager/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const defaultEventLimit = 100

type QueueEventUsecase interface {
	ListQueueEvents(ctx context.Context, queueID int64, limit int) (*dto.QueueEventListResponse, error)
}

type queueEventUsecase struct {
	db        *gorm.DB
	log       *logrus.Logger
	eventRepo repository.QueueEventRepository
	queueRepo repository.QueueRepository
}

func NewQueueEventUsecase(db *gorm.DB, log *logrus.Logger, eventRepo repository.QueueEventRepository, queueRepo repository.QueueRepository) QueueEventUsecase {
	return &queueEventUsecase{
		db:        db,
		log:       log,
		eventRepo: eventRepo,
		queueRepo: queueRepo,
	}
}

// ListQueueEvents returns the most recent events for a queue, newest
// first.
func (u *queueEventUsecase) ListQueueEvents(ctx context.Context, queueID int64, limit int) (*dto.QueueEventListResponse, error) {
	if limit <= 0 || limit > 500 {
		limit = defaultEventLimit
	}

	queue, err := u.queueRepo.FindByID(u.db.WithContext(ctx), queueID)
	if err != nil {
		u.log.Warnf("Failed to find queue %d: %+v", queueID, err)
		return nil, err
	}
	if queue == nil {
		return nil, ErrQueueNotFound
	}

	events, err := u.eventRepo.FindByQueueID(u.db.WithContext(ctx), queueID, limit)
	if err != nil {
		u.log.Warnf("Failed to list events for queue %d: %+v", queueID, err)
		return nil, err
	}

	return &dto.QueueEventListResponse{
		Events: converter.QueueEventsToResponses(events),
		Total:  len(events),
	}, nil
}
