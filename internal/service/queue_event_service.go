package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"clinic-queue-manager/internal/domain/entity"
	"clinic-queue-manager/internal/domain/repository"
)

const eventWriteTimeout = 5 * time.Second

// QueueEventService records queue and ticket events after the business
// transaction commits. Event writes are best-effort: a failed insert is
// logged, never propagated to the caller.
type QueueEventService struct {
	db                   *gorm.DB
	log                  *logrus.Logger
	queueEventRepository repository.QueueEventRepository
}

func NewQueueEventService(db *gorm.DB, log *logrus.Logger, queueEventRepository repository.QueueEventRepository) *QueueEventService {
	return &QueueEventService{
		db:                   db,
		log:                  log,
		queueEventRepository: queueEventRepository,
	}
}

// Record inserts one event row. Uses its own timeout context so a
// cancelled request context does not drop events for work that already
// committed.
func (s *QueueEventService) Record(actorID *uuid.UUID, action string, queueID int64, ticketID *int64, details map[string]any) {
	ctx, cancel := context.WithTimeout(context.Background(), eventWriteTimeout)
	defer cancel()

	event := &entity.QueueEvent{
		ActorID:  actorID,
		Action:   action,
		QueueID:  queueID,
		TicketID: ticketID,
		Metadata: entity.JSON(details),
	}

	if err := s.queueEventRepository.Create(s.db.WithContext(ctx), event); err != nil {
		s.log.Warnf("Failed to record queue event %s for queue %d (non-fatal): %+v", action, queueID, err)
	}
}
