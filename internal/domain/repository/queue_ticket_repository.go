package repository

import (
	"time"

	"clinic-queue-manager/internal/domain/entity"

	"gorm.io/gorm"
)

// TicketUpdate carries the optional mutations for a ticket update.
// FromStatus is the status the caller observed; status transitions are
// validated against it before the conditional write.
type TicketUpdate struct {
	Status            *entity.TicketStatus
	Priority          *int16
	ExpectedUpdatedAt *time.Time
}

type QueueTicketRepository interface {
	// CreateSequenced inserts the ticket with ticket_number assigned as
	// max+1 for its queue, computed atomically while holding the queue
	// row lock. Returns ErrQueueNotFound / ErrQueueClosed when the
	// queue cannot accept tickets.
	CreateSequenced(db *gorm.DB, ticket *entity.QueueTicket) error
	FindByID(db *gorm.DB, id int64) (*entity.QueueTicket, error)
	ListByQueue(db *gorm.DB, filter entity.ListTicketsFilter) ([]entity.QueueTicket, error)
	// NextWaiting returns the waiting ticket that should be served
	// next: highest priority first, lowest ticket number within a tier.
	// Returns nil when the queue has no waiting tickets.
	NextWaiting(db *gorm.DB, queueID int64) (*entity.QueueTicket, error)
	// Call transitions the ticket waiting -> called while holding the
	// queue row lock, failing with ErrAlreadyServing when another
	// ticket in the queue is already called, or ErrNotWaiting when the
	// ticket has left waiting.
	Call(db *gorm.DB, ticketID, queueID int64, now time.Time) (*entity.QueueTicket, error)
	// Update applies the changes conditionally on the observed status
	// and, when supplied, the expected updated_at. Returns affected
	// rows; zero means the guard failed and nothing changed.
	Update(db *gorm.DB, id int64, fromStatus entity.TicketStatus, update TicketUpdate, now time.Time) (int64, error)
	Delete(db *gorm.DB, id int64) (int64, error)
	CountByStatus(db *gorm.DB, queueID int64) (map[entity.TicketStatus]int64, error)
}
