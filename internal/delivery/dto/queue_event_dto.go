package dto

import (
	"time"

	"github.com/google/uuid"

	"clinic-queue-manager/internal/domain/entity"
)

// Response DTOs

type QueueEventResponse struct {
	ID        int64       `json:"id"`
	QueueID   int64       `json:"queue_id"`
	TicketID  *int64      `json:"ticket_id,omitempty"`
	ActorID   *uuid.UUID  `json:"actor_id,omitempty"`
	Action    string      `json:"action"`
	Metadata  entity.JSON `json:"metadata,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

type QueueEventListResponse struct {
	Events []QueueEventResponse `json:"events"`
	Total  int                  `json:"total"`
}
