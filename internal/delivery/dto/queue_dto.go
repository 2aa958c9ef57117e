package dto

import "time"

// Request DTOs

type CreateQueueRequest struct {
	ClinicID int64 `json:"clinic_id" validate:"required,min=1"`
}

// UpdateQueueRequest changes the queue status. ExpectedUpdatedAt, when
// supplied, must match the stored row or the update is rejected as a
// concurrent-modification conflict.
type UpdateQueueRequest struct {
	Status            string     `json:"status" validate:"required,oneof=active paused closed"`
	ExpectedUpdatedAt *time.Time `json:"expected_updated_at,omitempty"`
}

// ListQueuesRequest carries the query parameters for queue listings.
type ListQueuesRequest struct {
	ClinicID     *int64   `json:"clinic_id"`
	Statuses     []string `json:"statuses"`
	Page         int      `json:"page" validate:"min=0"`
	Size         int      `json:"size" validate:"min=0,max=200"`
	SortBy       string   `json:"sort_by"`
	SortDir      string   `json:"sort_dir"`
	IncludeCount bool     `json:"include_count"`
}

// Response DTOs

type QueueResponse struct {
	ID        int64           `json:"id"`
	ClinicID  int64           `json:"clinic_id"`
	Status    string          `json:"queue_status"`
	Clinic    *ClinicResponse `json:"clinic,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type QueueListResponse struct {
	Queues []QueueResponse `json:"queues"`
	Total  *int64          `json:"total,omitempty"`
	Page   int             `json:"page"`
	Size   int             `json:"size"`
}

// QueueBoardResponse gives board pollers a cheap freshness marker: the
// queue's last mutation time as published to Redis, falling back to the
// row's updated_at when no marker exists.
type QueueBoardResponse struct {
	QueueID    int64     `json:"queue_id"`
	Status     string    `json:"queue_status"`
	LastChange time.Time `json:"last_change"`
}
