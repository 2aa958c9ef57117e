package entity

import "time"

// TicketStatus represents the state of a ticket in the walk-in line.
// Stored as lowercase text in the ticket_status column.
type TicketStatus string

const (
	TicketStatusWaiting   TicketStatus = "waiting"
	TicketStatusCalled    TicketStatus = "called"
	TicketStatusCompleted TicketStatus = "completed"
	TicketStatusNoShow    TicketStatus = "no_show"
)

// Ticket priority tiers. Fast-track tickets are served before normal
// tickets regardless of ticket number.
const (
	PriorityNormal    int16 = 0
	PriorityFastTrack int16 = 1
)

// ticketTransitions forms a DAG: a ticket that leaves waiting never
// returns to it. Completed and no_show are terminal.
var ticketTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusWaiting:   {TicketStatusCalled},
	TicketStatusCalled:    {TicketStatusCompleted, TicketStatusNoShow},
	TicketStatusCompleted: {},
	TicketStatusNoShow:    {},
}

func (s TicketStatus) Valid() bool {
	_, ok := ticketTransitions[s]
	return ok
}

func (s TicketStatus) CanTransition(target TicketStatus) bool {
	for _, allowed := range ticketTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// QueueTicket represents one patient's position in a queue. Ticket
// numbers are server-assigned, unique and strictly increasing per queue.
type QueueTicket struct {
	ID            int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	QueueID       int64        `gorm:"not null;uniqueIndex:ux_queue_ticket_number,priority:1" json:"queue_id"`
	AppointmentID *int64       `gorm:"index" json:"appointment_id,omitempty"`
	TicketNumber  int          `gorm:"not null;uniqueIndex:ux_queue_ticket_number,priority:2" json:"ticket_number"`
	Priority      int16        `gorm:"not null;default:0" json:"priority"`
	Status        TicketStatus `gorm:"column:ticket_status;type:text;not null" json:"ticket_status"`
	CalledAt      *time.Time   `json:"called_at,omitempty"`
	CompletedAt   *time.Time   `json:"completed_at,omitempty"`
	NoShowAt      *time.Time   `json:"no_show_at,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`

	// Relationships
	Queue       Queue        `gorm:"foreignKey:QueueID" json:"queue,omitempty"`
	Appointment *Appointment `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
}

func (QueueTicket) TableName() string {
	return "queue_tickets"
}

func (t *QueueTicket) IsWaiting() bool {
	return t.Status == TicketStatusWaiting
}

func (t *QueueTicket) IsCalled() bool {
	return t.Status == TicketStatusCalled
}
