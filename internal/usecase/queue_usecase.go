package usecase

import (
	"context"
	"errors"
	"time"

	"clinic-queue-manager/internal/converter"
	"clinic-queue-manager/internal/delivery/dto"
	"clinic-queue-manager/internal/delivery/http/middleware"
	"clinic-queue-manager/internal/domain/entity"
	"clinic-queue-manager/internal/domain/repository"
	"clinic-queue-manager/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// actorFromContext returns the authenticated profile ID for event
// attribution, or nil for unauthenticated callers.
func actorFromContext(ctx context.Context) *uuid.UUID {
	if profileID, ok := middleware.GetProfileIDFromContext(ctx); ok {
		return &profileID
	}
	return nil
}

var (
	ErrQueueNotFound          = errors.New("queue not found")
	ErrClinicHasOpenQueue     = errors.New("clinic already has an open queue")
	ErrInvalidQueueStatus     = errors.New("invalid queue status")
	ErrInvalidQueueTransition = errors.New("queue status transition is not allowed")
	ErrStaleQueueUpdate       = errors.New("queue was modified by another request")
	ErrInvalidSortField       = errors.New("invalid sort field")
)

type QueueUsecase interface {
	CreateQueue(ctx context.Context, req *dto.CreateQueueRequest) (*dto.QueueResponse, error)
	GetQueue(ctx context.Context, queueID int64) (*dto.QueueResponse, error)
	GetQueueBoard(ctx context.Context, queueID int64) (*dto.QueueBoardResponse, error)
	ListQueues(ctx context.Context, req *dto.ListQueuesRequest) (*dto.QueueListResponse, error)
	UpdateQueue(ctx context.Context, queueID int64, req *dto.UpdateQueueRequest) (*dto.QueueResponse, error)
	DeleteQueue(ctx context.Context, queueID int64) error
}

type queueUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	queueRepo    repository.QueueRepository
	clinicRepo   repository.ClinicRepository
	boardService *service.QueueBoardService
	eventService *service.QueueEventService
}

func NewQueueUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	queueRepo repository.QueueRepository,
	clinicRepo repository.ClinicRepository,
	boardService *service.QueueBoardService,
	eventService *service.QueueEventService,
) QueueUsecase {
	return &queueUsecase{
		db:           db,
		log:          log,
		queueRepo:    queueRepo,
		clinicRepo:   clinicRepo,
		boardService: boardService,
		eventService: eventService,
	}
}

// CreateQueue opens a new active queue for a clinic. A clinic may hold
// at most one open (active or paused) queue; closing a queue frees the
// slot. The check runs inside the create transaction, so two racing
// creates for one clinic cannot both pass it.
func (u *queueUsecase) CreateQueue(ctx context.Context, req *dto.CreateQueueRequest) (*dto.QueueResponse, error) {
	clinic, err := u.clinicRepo.FindByID(u.db.WithContext(ctx), req.ClinicID)
	if err != nil {
		u.log.Warnf("Failed to find clinic %d: %+v", req.ClinicID, err)
		return nil, err
	}
	if clinic == nil {
		return nil, ErrClinicNotFound
	}

	queue := &entity.Queue{
		ClinicID: req.ClinicID,
		Status:   entity.QueueStatusActive,
	}

	if err := u.queueRepo.CreateOpen(u.db.WithContext(ctx), queue); err != nil {
		switch {
		case errors.Is(err, repository.ErrClinicNotFound):
			return nil, ErrClinicNotFound
		case errors.Is(err, repository.ErrOpenQueueExists):
			return nil, ErrClinicHasOpenQueue
		}
		u.log.Warnf("Failed to create queue for clinic %d: %+v", req.ClinicID, err)
		return nil, err
	}

	u.eventService.Record(actorFromContext(ctx), entity.EventQueueCreate, queue.ID, nil, map[string]any{
		"clinic_id": queue.ClinicID,
		"status":    string(queue.Status),
	})
	u.boardService.Publish(queue.ID, queue.UpdatedAt)

	u.log.Infof("Queue created: id=%d, clinic=%d", queue.ID, queue.ClinicID)
	return converter.QueueToResponse(queue), nil
}

func (u *queueUsecase) GetQueue(ctx context.Context, queueID int64) (*dto.QueueResponse, error) {
	queue, err := u.queueRepo.FindByID(u.db.WithContext(ctx), queueID)
	if err != nil {
		u.log.Warnf("Failed to find queue %d: %+v", queueID, err)
		return nil, err
	}
	if queue == nil {
		return nil, ErrQueueNotFound
	}

	return converter.QueueToResponse(queue), nil
}

// GetQueueBoard reports when the queue last changed. The Redis marker
// is preferred; when it is missing or Redis is down the row's
// updated_at serves, so the endpoint stays usable without the cache.
func (u *queueUsecase) GetQueueBoard(ctx context.Context, queueID int64) (*dto.QueueBoardResponse, error) {
	queue, err := u.queueRepo.FindByID(u.db.WithContext(ctx), queueID)
	if err != nil {
		u.log.Warnf("Failed to find queue %d: %+v", queueID, err)
		return nil, err
	}
	if queue == nil {
		return nil, ErrQueueNotFound
	}

	lastChange, err := u.boardService.LastChange(ctx, queueID)
	if err != nil {
		u.log.Warnf("Failed to read board marker for queue %d (non-fatal): %+v", queueID, err)
	}
	if lastChange.IsZero() {
		lastChange = queue.UpdatedAt
	}

	return &dto.QueueBoardResponse{
		QueueID:    queue.ID,
		Status:     string(queue.Status),
		LastChange: lastChange,
	}, nil
}

// ListQueues returns queues matching the filter. Unknown sort fields
// are rejected rather than silently replaced; status values that are
// not part of the lifecycle are rejected the same way.
func (u *queueUsecase) ListQueues(ctx context.Context, req *dto.ListQueuesRequest) (*dto.QueueListResponse, error) {
	sortBy, ok := entity.ParseQueueSortField(req.SortBy)
	if !ok {
		return nil, ErrInvalidSortField
	}

	var statuses []entity.QueueStatus
	for _, raw := range req.Statuses {
		status := entity.QueueStatus(raw)
		if !status.Valid() {
			return nil, ErrInvalidQueueStatus
		}
		statuses = append(statuses, status)
	}

	filter := entity.ListQueuesFilter{
		ClinicID:     req.ClinicID,
		Statuses:     statuses,
		Page:         req.Page,
		Size:         req.Size,
		SortBy:       sortBy,
		SortDir:      entity.ParseSortDirection(req.SortDir),
		IncludeCount: req.IncludeCount,
	}
	filter.Normalize()

	queues, total, err := u.queueRepo.List(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to list queues: %+v", err)
		return nil, err
	}

	return &dto.QueueListResponse{
		Queues: converter.QueuesToResponses(queues),
		Total:  total,
		Page:   filter.Page,
		Size:   filter.Size,
	}, nil
}

// UpdateQueue applies a lifecycle transition. The write is conditional
// on the status the caller observed and, when provided, the row's
// updated_at; a concurrent change surfaces as ErrStaleQueueUpdate
// instead of silently overwriting.
func (u *queueUsecase) UpdateQueue(ctx context.Context, queueID int64, req *dto.UpdateQueueRequest) (*dto.QueueResponse, error) {
	target := entity.QueueStatus(req.Status)
	if !target.Valid() {
		return nil, ErrInvalidQueueStatus
	}

	queue, err := u.queueRepo.FindByID(u.db.WithContext(ctx), queueID)
	if err != nil {
		u.log.Warnf("Failed to find queue %d: %+v", queueID, err)
		return nil, err
	}
	if queue == nil {
		return nil, ErrQueueNotFound
	}

	if queue.Status == target {
		// No-op update; still honor the optimistic guard
		if req.ExpectedUpdatedAt != nil && !req.ExpectedUpdatedAt.Equal(queue.UpdatedAt) {
			return nil, ErrStaleQueueUpdate
		}
		return converter.QueueToResponse(queue), nil
	}

	if !queue.Status.CanTransition(target) {
		return nil, ErrInvalidQueueTransition
	}

	affected, err := u.queueRepo.UpdateStatus(u.db.WithContext(ctx), queueID, queue.Status, target, req.ExpectedUpdatedAt, time.Now())
	if err != nil {
		u.log.Warnf("Failed to update queue %d status: %+v", queueID, err)
		return nil, err
	}
	if affected == 0 {
		// Row moved on between our read and write
		return nil, ErrStaleQueueUpdate
	}

	updated, err := u.queueRepo.FindByID(u.db.WithContext(ctx), queueID)
	if err != nil || updated == nil {
		u.log.Warnf("Failed to reload queue %d: %+v", queueID, err)
		return nil, ErrQueueNotFound
	}

	u.eventService.Record(actorFromContext(ctx), entity.EventQueueUpdate, queueID, nil, map[string]any{
		"from": string(queue.Status),
		"to":   string(target),
	})
	u.boardService.Publish(queueID, updated.UpdatedAt)

	u.log.Infof("Queue updated: id=%d, %s -> %s", queueID, queue.Status, target)
	return converter.QueueToResponse(updated), nil
}

func (u *queueUsecase) DeleteQueue(ctx context.Context, queueID int64) error {
	affected, err := u.queueRepo.Delete(u.db.WithContext(ctx), queueID)
	if err != nil {
		u.log.Warnf("Failed to delete queue %d: %+v", queueID, err)
		return err
	}
	if affected == 0 {
		return ErrQueueNotFound
	}

	u.eventService.Record(actorFromContext(ctx), entity.EventQueueDelete, queueID, nil, nil)

	u.log.Infof("Queue deleted: id=%d", queueID)
	return nil
}
