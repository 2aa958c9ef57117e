package dto

import "time"

// Request DTOs

type CreateScheduleRequest struct {
	DoctorID    int64   `json:"doctor_id" validate:"required,min=1"`
	DayOfWeek   int     `json:"day_of_week" validate:"required,min=1,max=7"`
	StartTime   string  `json:"start_time" validate:"required"`
	EndTime     string  `json:"end_time" validate:"required"`
	SlotMinutes int     `json:"slot_minutes" validate:"required,min=1"`
	ValidFrom   *string `json:"valid_from" validate:"omitempty"`
	ValidTo     *string `json:"valid_to" validate:"omitempty"`
}

type UpdateScheduleRequest struct {
	DayOfWeek   *int    `json:"day_of_week" validate:"omitempty,min=1,max=7"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	SlotMinutes *int    `json:"slot_minutes" validate:"omitempty,min=1"`
	ValidFrom   *string `json:"valid_from"`
	ValidTo     *string `json:"valid_to"`
}

// Response DTOs

type ScheduleResponse struct {
	ID          int64     `json:"id"`
	DoctorID    int64     `json:"doctor_id"`
	DayOfWeek   int       `json:"day_of_week"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	SlotMinutes int       `json:"slot_minutes"`
	ValidFrom   *string   `json:"valid_from,omitempty"`
	ValidTo     *string   `json:"valid_to,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ScheduleListResponse struct {
	Schedules []ScheduleResponse `json:"schedules"`
	Total     int                `json:"total"`
}

// SlotResponse is one bookable interval derived from a doctor's
// recurring windows for a given date.
type SlotResponse struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Available bool      `json:"available"`
}

type SlotListResponse struct {
	DoctorID int64          `json:"doctor_id"`
	Date     string         `json:"date"`
	Slots    []SlotResponse `json:"slots"`
}
