package usecase

import (
	"context"
	"errors"
	"time"

	"clinic-queue-manager/internal/converter"
	"clinic-queue-manager/internal/delivery/dto"
	"clinic-queue-manager/internal/domain/entity"
	"clinic-queue-manager/internal/domain/repository"
	"clinic-queue-manager/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrTicketNotFound          = errors.New("ticket not found")
	ErrQueueClosed             = errors.New("queue is closed and cannot accept tickets")
	ErrTicketAlreadyCalled     = errors.New("another ticket is already being served")
	ErrTicketNotWaiting        = errors.New("ticket is no longer waiting")
	ErrInvalidTicketStatus     = errors.New("invalid ticket status")
	ErrInvalidTicketTransition = errors.New("ticket status transition is not allowed")
	ErrInvalidTicketPriority   = errors.New("invalid ticket priority")
	ErrStaleTicketUpdate       = errors.New("ticket was modified by another request")
)

type QueueTicketUsecase interface {
	CreateTicket(ctx context.Context, req *dto.CreateTicketRequest) (*dto.TicketResponse, error)
	GetTicket(ctx context.Context, ticketID int64) (*dto.TicketResponse, error)
	ListTickets(ctx context.Context, req *dto.ListTicketsRequest) (*dto.TicketListResponse, error)
	NextToServe(ctx context.Context, queueID int64) (*dto.NextTicketResponse, error)
	CallNext(ctx context.Context, queueID int64) (*dto.TicketResponse, error)
	UpdateTicket(ctx context.Context, ticketID int64, req *dto.UpdateTicketRequest) (*dto.TicketResponse, error)
	DeleteTicket(ctx context.Context, ticketID int64) error
}

type queueTicketUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	ticketRepo   repository.QueueTicketRepository
	queueRepo    repository.QueueRepository
	boardService *service.QueueBoardService
	eventService *service.QueueEventService
}

func NewQueueTicketUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	ticketRepo repository.QueueTicketRepository,
	queueRepo repository.QueueRepository,
	boardService *service.QueueBoardService,
	eventService *service.QueueEventService,
) QueueTicketUsecase {
	return &queueTicketUsecase{
		db:           db,
		log:          log,
		ticketRepo:   ticketRepo,
		queueRepo:    queueRepo,
		boardService: boardService,
		eventService: eventService,
	}
}

// CreateTicket enqueues a patient. The ticket number is assigned inside
// the insert transaction while holding the queue row lock, so numbers
// are unique and strictly increasing per queue even under concurrent
// check-ins.
func (u *queueTicketUsecase) CreateTicket(ctx context.Context, req *dto.CreateTicketRequest) (*dto.TicketResponse, error) {
	priority := entity.PriorityNormal
	if req.Priority != nil {
		if *req.Priority != entity.PriorityNormal && *req.Priority != entity.PriorityFastTrack {
			return nil, ErrInvalidTicketPriority
		}
		priority = *req.Priority
	}

	ticket := &entity.QueueTicket{
		QueueID:       req.QueueID,
		AppointmentID: req.AppointmentID,
		Priority:      priority,
		Status:        entity.TicketStatusWaiting,
	}

	if err := u.ticketRepo.CreateSequenced(u.db.WithContext(ctx), ticket); err != nil {
		switch {
		case errors.Is(err, repository.ErrQueueNotFound):
			return nil, ErrQueueNotFound
		case errors.Is(err, repository.ErrQueueClosed):
			return nil, ErrQueueClosed
		}
		u.log.Warnf("Failed to create ticket in queue %d: %+v", req.QueueID, err)
		return nil, err
	}

	u.eventService.Record(actorFromContext(ctx), entity.EventTicketCreate, ticket.QueueID, &ticket.ID, map[string]any{
		"ticket_number": ticket.TicketNumber,
		"priority":      ticket.Priority,
	})
	u.boardService.Publish(ticket.QueueID, ticket.UpdatedAt)

	u.log.Infof("Ticket created: id=%d, queue=%d, number=%d, priority=%d", ticket.ID, ticket.QueueID, ticket.TicketNumber, ticket.Priority)
	return converter.TicketToResponse(ticket), nil
}

func (u *queueTicketUsecase) GetTicket(ctx context.Context, ticketID int64) (*dto.TicketResponse, error) {
	ticket, err := u.ticketRepo.FindByID(u.db.WithContext(ctx), ticketID)
	if err != nil {
		u.log.Warnf("Failed to find ticket %d: %+v", ticketID, err)
		return nil, err
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}

	return converter.TicketToResponse(ticket), nil
}

func (u *queueTicketUsecase) ListTickets(ctx context.Context, req *dto.ListTicketsRequest) (*dto.TicketListResponse, error) {
	sortBy, ok := entity.ParseTicketSortField(req.SortBy)
	if !ok {
		return nil, ErrInvalidSortField
	}

	var statuses []entity.TicketStatus
	for _, raw := range req.Statuses {
		status := entity.TicketStatus(raw)
		if !status.Valid() {
			return nil, ErrInvalidTicketStatus
		}
		statuses = append(statuses, status)
	}

	queue, err := u.queueRepo.FindByID(u.db.WithContext(ctx), req.QueueID)
	if err != nil {
		u.log.Warnf("Failed to find queue %d: %+v", req.QueueID, err)
		return nil, err
	}
	if queue == nil {
		return nil, ErrQueueNotFound
	}

	filter := entity.ListTicketsFilter{
		QueueID:  req.QueueID,
		Statuses: statuses,
		SortBy:   sortBy,
		SortDir:  entity.ParseSortDirection(req.SortDir),
	}
	filter.Normalize()

	tickets, err := u.ticketRepo.ListByQueue(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to list tickets for queue %d: %+v", req.QueueID, err)
		return nil, err
	}

	return &dto.TicketListResponse{
		Tickets: converter.TicketsToResponses(tickets),
		Total:   len(tickets),
	}, nil
}

// NextToServe reports which waiting ticket is up next without changing
// any state: fast-track tickets first, then lowest ticket number.
func (u *queueTicketUsecase) NextToServe(ctx context.Context, queueID int64) (*dto.NextTicketResponse, error) {
	queue, err := u.queueRepo.FindByID(u.db.WithContext(ctx), queueID)
	if err != nil {
		u.log.Warnf("Failed to find queue %d: %+v", queueID, err)
		return nil, err
	}
	if queue == nil {
		return nil, ErrQueueNotFound
	}

	ticket, err := u.ticketRepo.NextWaiting(u.db.WithContext(ctx), queueID)
	if err != nil {
		u.log.Warnf("Failed to find next waiting ticket for queue %d: %+v", queueID, err)
		return nil, err
	}

	return &dto.NextTicketResponse{
		QueueID: queueID,
		Ticket:  converter.TicketToResponse(ticket),
	}, nil
}

// CallNext promotes the next waiting ticket to called. Only one ticket
// per queue may be in called at a time; the check and the transition
// run in one transaction under the queue row lock.
func (u *queueTicketUsecase) CallNext(ctx context.Context, queueID int64) (*dto.TicketResponse, error) {
	next, err := u.ticketRepo.NextWaiting(u.db.WithContext(ctx), queueID)
	if err != nil {
		u.log.Warnf("Failed to find next waiting ticket for queue %d: %+v", queueID, err)
		return nil, err
	}
	if next == nil {
		queue, qerr := u.queueRepo.FindByID(u.db.WithContext(ctx), queueID)
		if qerr != nil {
			return nil, qerr
		}
		if queue == nil {
			return nil, ErrQueueNotFound
		}
		return nil, ErrTicketNotFound
	}

	called, err := u.ticketRepo.Call(u.db.WithContext(ctx), next.ID, queueID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrQueueNotFound):
			return nil, ErrQueueNotFound
		case errors.Is(err, repository.ErrAlreadyServing):
			return nil, ErrTicketAlreadyCalled
		case errors.Is(err, repository.ErrNotWaiting):
			// The candidate was taken between our read and the call
			return nil, ErrTicketNotWaiting
		}
		u.log.Warnf("Failed to call ticket %d in queue %d: %+v", next.ID, queueID, err)
		return nil, err
	}

	u.eventService.Record(actorFromContext(ctx), entity.EventTicketCall, queueID, &called.ID, map[string]any{
		"ticket_number": called.TicketNumber,
	})
	u.boardService.Publish(queueID, called.UpdatedAt)

	u.log.Infof("Ticket called: id=%d, queue=%d, number=%d", called.ID, queueID, called.TicketNumber)
	return converter.TicketToResponse(called), nil
}

// UpdateTicket mutates status and/or priority. Status changes must
// follow the lifecycle (waiting -> called -> completed | no_show) and
// the write is conditional on the observed status plus, when supplied,
// the expected updated_at. A waiting -> called change is delegated to
// the transactional call path so the one-serving-ticket rule holds;
// priority is only mutable while the ticket is waiting.
func (u *queueTicketUsecase) UpdateTicket(ctx context.Context, ticketID int64, req *dto.UpdateTicketRequest) (*dto.TicketResponse, error) {
	ticket, err := u.ticketRepo.FindByID(u.db.WithContext(ctx), ticketID)
	if err != nil {
		u.log.Warnf("Failed to find ticket %d: %+v", ticketID, err)
		return nil, err
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}

	update := repository.TicketUpdate{
		ExpectedUpdatedAt: req.ExpectedUpdatedAt,
	}

	if req.Priority != nil {
		if *req.Priority != entity.PriorityNormal && *req.Priority != entity.PriorityFastTrack {
			return nil, ErrInvalidTicketPriority
		}
		// Priority steers who gets called next; it is fixed once the
		// ticket leaves waiting.
		if !ticket.IsWaiting() {
			return nil, ErrTicketNotWaiting
		}
		update.Priority = req.Priority
	}

	if req.Status != nil {
		target := entity.TicketStatus(*req.Status)
		if !target.Valid() {
			return nil, ErrInvalidTicketStatus
		}
		if target != ticket.Status {
			if !ticket.Status.CanTransition(target) {
				return nil, ErrInvalidTicketTransition
			}
			if target == entity.TicketStatusCalled {
				// Promoting to called must see the whole queue, not just
				// this row: only one ticket per queue may be serving, so
				// the write goes through the same transactional check as
				// call-next.
				return u.callTicket(ctx, ticket, req)
			}
			update.Status = &target
		}
	}

	if update.Status == nil && update.Priority == nil {
		// Nothing to change; still honor the optimistic guard
		if req.ExpectedUpdatedAt != nil && !req.ExpectedUpdatedAt.Equal(ticket.UpdatedAt) {
			return nil, ErrStaleTicketUpdate
		}
		return converter.TicketToResponse(ticket), nil
	}

	affected, err := u.ticketRepo.Update(u.db.WithContext(ctx), ticketID, ticket.Status, update, time.Now())
	if err != nil {
		u.log.Warnf("Failed to update ticket %d: %+v", ticketID, err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrStaleTicketUpdate
	}

	updated, err := u.ticketRepo.FindByID(u.db.WithContext(ctx), ticketID)
	if err != nil || updated == nil {
		u.log.Warnf("Failed to reload ticket %d: %+v", ticketID, err)
		return nil, ErrTicketNotFound
	}

	meta := map[string]any{}
	if update.Status != nil {
		meta["from"] = string(ticket.Status)
		meta["to"] = string(*update.Status)
	}
	if update.Priority != nil {
		meta["priority"] = *update.Priority
	}
	u.eventService.Record(actorFromContext(ctx), entity.EventTicketUpdate, updated.QueueID, &updated.ID, meta)
	u.boardService.Publish(updated.QueueID, updated.UpdatedAt)

	u.log.Infof("Ticket updated: id=%d, queue=%d", ticketID, updated.QueueID)
	return converter.TicketToResponse(updated), nil
}

// callTicket serves an update request whose target status is called. The
// serving-invariant check and the waiting -> called write run in one
// transaction under the queue row lock, exactly as in CallNext.
func (u *queueTicketUsecase) callTicket(ctx context.Context, ticket *entity.QueueTicket, req *dto.UpdateTicketRequest) (*dto.TicketResponse, error) {
	if req.Priority != nil {
		// Calling ends the waiting phase, so a combined priority change
		// has nothing left to apply to.
		return nil, ErrTicketNotWaiting
	}
	if req.ExpectedUpdatedAt != nil && !req.ExpectedUpdatedAt.Equal(ticket.UpdatedAt) {
		return nil, ErrStaleTicketUpdate
	}

	called, err := u.ticketRepo.Call(u.db.WithContext(ctx), ticket.ID, ticket.QueueID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrQueueNotFound):
			return nil, ErrQueueNotFound
		case errors.Is(err, repository.ErrAlreadyServing):
			return nil, ErrTicketAlreadyCalled
		case errors.Is(err, repository.ErrNotWaiting):
			// The ticket moved on between our read and the call
			return nil, ErrStaleTicketUpdate
		}
		u.log.Warnf("Failed to call ticket %d in queue %d: %+v", ticket.ID, ticket.QueueID, err)
		return nil, err
	}

	u.eventService.Record(actorFromContext(ctx), entity.EventTicketCall, called.QueueID, &called.ID, map[string]any{
		"ticket_number": called.TicketNumber,
	})
	u.boardService.Publish(called.QueueID, called.UpdatedAt)

	u.log.Infof("Ticket called: id=%d, queue=%d, number=%d", called.ID, called.QueueID, called.TicketNumber)
	return converter.TicketToResponse(called), nil
}

func (u *queueTicketUsecase) DeleteTicket(ctx context.Context, ticketID int64) error {
	ticket, err := u.ticketRepo.FindByID(u.db.WithContext(ctx), ticketID)
	if err != nil {
		u.log.Warnf("Failed to find ticket %d: %+v", ticketID, err)
		return err
	}
	if ticket == nil {
		return ErrTicketNotFound
	}

	affected, err := u.ticketRepo.Delete(u.db.WithContext(ctx), ticketID)
	if err != nil {
		u.log.Warnf("Failed to delete ticket %d: %+v", ticketID, err)
		return err
	}
	if affected == 0 {
		return ErrTicketNotFound
	}

	u.eventService.Record(actorFromContext(ctx), entity.EventTicketDelete, ticket.QueueID, &ticketID, map[string]any{
		"ticket_number": ticket.TicketNumber,
	})
	u.boardService.Publish(ticket.QueueID, time.Now())

	u.log.Infof("Ticket deleted: id=%d, queue=%d", ticketID, ticket.QueueID)
	return nil
}
