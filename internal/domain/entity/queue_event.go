package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// QueueEvent records a staff action against a queue or one of its
// tickets. Written after the mutation commits; consumers poll it to
// rebuild a board history.
type QueueEvent struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	QueueID   int64      `gorm:"not null;index" json:"queue_id"`
	TicketID  *int64     `gorm:"index" json:"ticket_id,omitempty"`
	ActorID   *uuid.UUID `gorm:"type:uuid;index" json:"actor_id,omitempty"`
	Action    string     `gorm:"type:varchar(100);not null;index" json:"action"`
	Metadata  JSON       `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (QueueEvent) TableName() string {
	return "queue_events"
}

// JSON type for GORM JSONB support
type JSON map[string]interface{}

// Value returns json value, implement driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan scan value into Jsonb, implements sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	result := map[string]interface{}{}
	err := json.Unmarshal(bytes, &result)
	*j = JSON(result)
	return err
}

// Queue/ticket event actions
const (
	EventQueueCreate   = "queue.create"
	EventQueueUpdate   = "queue.update"
	EventQueueDelete   = "queue.delete"
	EventTicketCreate  = "ticket.create"
	EventTicketCall    = "ticket.call"
	EventTicketUpdate  = "ticket.update"
	EventTicketDelete  = "ticket.delete"
)
