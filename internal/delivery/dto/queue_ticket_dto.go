package dto

import "time"

// Request DTOs

// CreateTicketRequest enqueues a patient. The ticket number is assigned
// by the server; clients never choose it.
type CreateTicketRequest struct {
	QueueID       int64  `json:"queue_id" validate:"required,min=1"`
	AppointmentID *int64 `json:"appointment_id" validate:"omitempty,min=1"`
	Priority      *int16 `json:"priority" validate:"omitempty,oneof=0 1"`
}

// UpdateTicketRequest mutates a ticket's status and/or priority.
type UpdateTicketRequest struct {
	Status            *string    `json:"status" validate:"omitempty,oneof=waiting called completed no_show"`
	Priority          *int16     `json:"priority" validate:"omitempty,oneof=0 1"`
	ExpectedUpdatedAt *time.Time `json:"expected_updated_at,omitempty"`
}

// ListTicketsRequest carries query parameters for listing a queue's
// tickets.
type ListTicketsRequest struct {
	QueueID  int64    `json:"queue_id" validate:"required,min=1"`
	Statuses []string `json:"statuses"`
	SortBy   string   `json:"sort_by"`
	SortDir  string   `json:"sort_dir"`
}

// Response DTOs

type TicketResponse struct {
	ID            int64      `json:"id"`
	QueueID       int64      `json:"queue_id"`
	AppointmentID *int64     `json:"appointment_id,omitempty"`
	TicketNumber  int        `json:"ticket_number"`
	Priority      int16      `json:"priority"`
	Status        string     `json:"ticket_status"`
	CalledAt      *time.Time `json:"called_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	NoShowAt      *time.Time `json:"no_show_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type TicketListResponse struct {
	Tickets []TicketResponse `json:"tickets"`
	Total   int              `json:"total"`
}

// NextTicketResponse is the board view of who is up next. Ticket is nil
// when the queue has no waiting tickets.
type NextTicketResponse struct {
	QueueID int64           `json:"queue_id"`
	Ticket  *TicketResponse `json:"ticket"`
}
