package dto

// StatisticsResponse aggregates today's operational counters for the
// admin dashboard.
type StatisticsResponse struct {
	Queues       map[string]int64 `json:"queues"`
	Tickets      map[string]int64 `json:"tickets,omitempty"`
	Appointments map[string]int64 `json:"appointments"`
}
