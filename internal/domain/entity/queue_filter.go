package entity

import "strings"

// SortDirection for list queries.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection accepts asc/desc in any case; anything else falls
// back to descending, the listing default.
func ParseSortDirection(raw string) SortDirection {
	if strings.EqualFold(raw, string(SortAsc)) {
		return SortAsc
	}
	return SortDesc
}

// QueueSortField is the enumerated whitelist of sortable queue columns.
// Caller-supplied strings are never interpolated into a query; they must
// round-trip through ParseQueueSortField first.
type QueueSortField string

const (
	QueueSortCreatedAt QueueSortField = "created_at"
	QueueSortUpdatedAt QueueSortField = "updated_at"
	QueueSortID        QueueSortField = "id"
)

func ParseQueueSortField(raw string) (QueueSortField, bool) {
	switch strings.ToLower(raw) {
	case "", string(QueueSortCreatedAt):
		return QueueSortCreatedAt, true
	case string(QueueSortUpdatedAt):
		return QueueSortUpdatedAt, true
	case string(QueueSortID):
		return QueueSortID, true
	}
	return QueueSortCreatedAt, false
}

// TicketSortField whitelists sortable ticket columns.
type TicketSortField string

const (
	TicketSortCreatedAt    TicketSortField = "created_at"
	TicketSortUpdatedAt    TicketSortField = "updated_at"
	TicketSortID           TicketSortField = "id"
	TicketSortTicketNumber TicketSortField = "ticket_number"
)

func ParseTicketSortField(raw string) (TicketSortField, bool) {
	switch strings.ToLower(raw) {
	case "", string(TicketSortTicketNumber):
		return TicketSortTicketNumber, true
	case string(TicketSortCreatedAt):
		return TicketSortCreatedAt, true
	case string(TicketSortUpdatedAt):
		return TicketSortUpdatedAt, true
	case string(TicketSortID):
		return TicketSortID, true
	}
	return TicketSortTicketNumber, false
}

// ListQueuesFilter carries filtering, pagination and sorting for queue
// listings. Page is zero-based.
type ListQueuesFilter struct {
	ClinicID     *int64
	Statuses     []QueueStatus
	Page         int
	Size         int
	SortBy       QueueSortField
	SortDir      SortDirection
	IncludeCount bool
}

func (f *ListQueuesFilter) Normalize() {
	if f.Size <= 0 {
		f.Size = 50
	}
	if f.Page < 0 {
		f.Page = 0
	}
	if f.SortBy == "" {
		f.SortBy = QueueSortCreatedAt
	}
	if f.SortDir == "" {
		f.SortDir = SortDesc
	}
}

func (f *ListQueuesFilter) Offset() int {
	return f.Page * f.Size
}

// ListTicketsFilter carries filtering and sorting for ticket listings
// within a queue.
type ListTicketsFilter struct {
	QueueID  int64
	Statuses []TicketStatus
	SortBy   TicketSortField
	SortDir  SortDirection
}

func (f *ListTicketsFilter) Normalize() {
	if f.SortBy == "" {
		f.SortBy = TicketSortTicketNumber
	}
	if f.SortDir == "" {
		f.SortDir = SortAsc
	}
}
