package repository

import (
	"errors"
	"fmt"
	"time"

	"clinic-queue-manager/internal/domain/entity"
	domainRepo "clinic-queue-manager/internal/domain/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const pgUniqueViolation = "23505"

type queueTicketRepository struct{}

func NewQueueTicketRepository() domainRepo.QueueTicketRepository {
	return &queueTicketRepository{}
}

// CreateSequenced assigns ticket_number = max+1 for the queue and
// inserts, all inside one transaction holding the queue row lock so two
// concurrent creates cannot read the same max. The (queue_id,
// ticket_number) unique index backstops the lock; a violation is
// retried once.
func (r *queueTicketRepository) CreateSequenced(db *gorm.DB, ticket *entity.QueueTicket) error {
	err := r.createSequencedOnce(db, ticket)
	if isUniqueViolation(err) {
		return r.createSequencedOnce(db, ticket)
	}
	return err
}

func (r *queueTicketRepository) createSequencedOnce(db *gorm.DB, ticket *entity.QueueTicket) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var queue entity.Queue
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", ticket.QueueID).
			First(&queue).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainRepo.ErrQueueNotFound
			}
			return err
		}
		if queue.IsClosed() {
			return domainRepo.ErrQueueClosed
		}

		var maxNumber int
		err = tx.Model(&entity.QueueTicket{}).
			Where("queue_id = ?", ticket.QueueID).
			Select("COALESCE(MAX(ticket_number), 0)").
			Scan(&maxNumber).Error
		if err != nil {
			return err
		}

		ticket.TicketNumber = maxNumber + 1
		return tx.Create(ticket).Error
	})
}

func (r *queueTicketRepository) FindByID(db *gorm.DB, id int64) (*entity.QueueTicket, error) {
	var ticket entity.QueueTicket
	err := db.Where("id = ?", id).First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *queueTicketRepository) ListByQueue(db *gorm.DB, filter entity.ListTicketsFilter) ([]entity.QueueTicket, error) {
	filter.Normalize()

	query := db.Where("queue_id = ?", filter.QueueID)
	if len(filter.Statuses) > 0 {
		query = query.Where("ticket_status IN ?", filter.Statuses)
	}

	var tickets []entity.QueueTicket
	err := query.Order(fmt.Sprintf("%s %s", filter.SortBy, filter.SortDir)).
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *queueTicketRepository) NextWaiting(db *gorm.DB, queueID int64) (*entity.QueueTicket, error) {
	var ticket entity.QueueTicket
	err := db.Where("queue_id = ? AND ticket_status = ?", queueID, entity.TicketStatusWaiting).
		Order("priority DESC, ticket_number ASC").
		First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ticket, nil
}

// Call enforces the single-serving invariant transactionally: the queue
// row lock serializes concurrent calls, so the called-count check and
// the waiting -> called write cannot interleave.
func (r *queueTicketRepository) Call(db *gorm.DB, ticketID, queueID int64, now time.Time) (*entity.QueueTicket, error) {
	var called entity.QueueTicket
	err := db.Transaction(func(tx *gorm.DB) error {
		var queue entity.Queue
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", queueID).
			First(&queue).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainRepo.ErrQueueNotFound
			}
			return err
		}

		var serving int64
		err = tx.Model(&entity.QueueTicket{}).
			Where("queue_id = ? AND ticket_status = ?", queueID, entity.TicketStatusCalled).
			Count(&serving).Error
		if err != nil {
			return err
		}
		if serving > 0 {
			return domainRepo.ErrAlreadyServing
		}

		result := tx.Model(&entity.QueueTicket{}).
			Where("id = ? AND ticket_status = ?", ticketID, entity.TicketStatusWaiting).
			Updates(map[string]interface{}{
				"ticket_status": entity.TicketStatusCalled,
				"called_at":     now,
				"updated_at":    now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainRepo.ErrNotWaiting
		}

		return tx.Where("id = ?", ticketID).First(&called).Error
	})
	if err != nil {
		return nil, err
	}
	return &called, nil
}

func (r *queueTicketRepository) Update(db *gorm.DB, id int64, fromStatus entity.TicketStatus, update domainRepo.TicketUpdate, now time.Time) (int64, error) {
	changes := map[string]interface{}{"updated_at": now}
	if update.Priority != nil {
		changes["priority"] = *update.Priority
	}
	if update.Status != nil {
		changes["ticket_status"] = *update.Status
		// Transition stamps are set exactly once, at the transition.
		switch *update.Status {
		case entity.TicketStatusCalled:
			changes["called_at"] = now
		case entity.TicketStatusCompleted:
			changes["completed_at"] = now
		case entity.TicketStatusNoShow:
			changes["no_show_at"] = now
		}
	}

	query := db.Model(&entity.QueueTicket{}).
		Where("id = ? AND ticket_status = ?", id, fromStatus)
	if update.ExpectedUpdatedAt != nil {
		query = query.Where("updated_at = ?", *update.ExpectedUpdatedAt)
	}
	result := query.Updates(changes)
	return result.RowsAffected, result.Error
}

func (r *queueTicketRepository) Delete(db *gorm.DB, id int64) (int64, error) {
	result := db.Where("id = ?", id).Delete(&entity.QueueTicket{})
	return result.RowsAffected, result.Error
}

func (r *queueTicketRepository) CountByStatus(db *gorm.DB, queueID int64) (map[entity.TicketStatus]int64, error) {
	type row struct {
		TicketStatus entity.TicketStatus
		Total        int64
	}
	var rows []row
	err := db.Model(&entity.QueueTicket{}).
		Select("ticket_status, COUNT(*) as total").
		Where("queue_id = ?", queueID).
		Group("ticket_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[entity.TicketStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.TicketStatus] = r.Total
	}
	return counts, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
