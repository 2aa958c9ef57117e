package entity

import "time"

// QueueStatus represents the lifecycle state of a clinic queue.
// Stored as lowercase text in the queue_status column.
type QueueStatus string

const (
	QueueStatusActive QueueStatus = "active"
	QueueStatusPaused QueueStatus = "paused"
	QueueStatusClosed QueueStatus = "closed"
)

// queueTransitions lists the legal target states per current state.
// Closed is terminal.
var queueTransitions = map[QueueStatus][]QueueStatus{
	QueueStatusActive: {QueueStatusPaused, QueueStatusClosed},
	QueueStatusPaused: {QueueStatusActive, QueueStatusClosed},
	QueueStatusClosed: {},
}

func (s QueueStatus) Valid() bool {
	_, ok := queueTransitions[s]
	return ok
}

// CanTransition reports whether moving from s to target is a legal
// lifecycle transition.
func (s QueueStatus) CanTransition(target QueueStatus) bool {
	for _, allowed := range queueTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsOpen reports whether the queue still occupies its clinic's single
// open-queue slot (active or paused; closed queues are historical).
func (s QueueStatus) IsOpen() bool {
	return s == QueueStatusActive || s == QueueStatusPaused
}

// Queue represents one walk-in line for a clinic. At most one queue per
// clinic may be open (active or paused) at a time.
type Queue struct {
	ID        int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	ClinicID  int64       `gorm:"not null;index" json:"clinic_id"`
	Status    QueueStatus `gorm:"column:queue_status;type:text;not null" json:"queue_status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`

	// Relationships
	Clinic Clinic `gorm:"foreignKey:ClinicID" json:"clinic,omitempty"`
}

func (Queue) TableName() string {
	return "queues"
}

func (q *Queue) IsClosed() bool {
	return q.Status == QueueStatusClosed
}
