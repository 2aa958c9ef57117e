package dto

import "time"

// Request DTOs

type CreateClinicRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	AddressLine string `json:"address_line" validate:"omitempty,max=255"`
	Area        string `json:"area" validate:"omitempty,max=100"`
	Region      string `json:"region" validate:"omitempty,max=100"`
	ClinicType  string `json:"clinic_type" validate:"omitempty,max=100"`
	OpenTime    string `json:"open_time" validate:"omitempty"`
	CloseTime   string `json:"close_time" validate:"omitempty"`
}

type UpdateClinicRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=255"`
	AddressLine *string `json:"address_line" validate:"omitempty,max=255"`
	Area        *string `json:"area" validate:"omitempty,max=100"`
	Region      *string `json:"region" validate:"omitempty,max=100"`
	ClinicType  *string `json:"clinic_type" validate:"omitempty,max=100"`
	OpenTime    *string `json:"open_time"`
	CloseTime   *string `json:"close_time"`
}

// Response DTOs

type ClinicResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	AddressLine string    `json:"address_line,omitempty"`
	Area        string    `json:"area,omitempty"`
	Region      string    `json:"region,omitempty"`
	ClinicType  string    `json:"clinic_type,omitempty"`
	OpenTime    string    `json:"open_time,omitempty"`
	CloseTime   string    `json:"close_time,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ClinicListResponse struct {
	Clinics []ClinicResponse `json:"clinics"`
	Total   int              `json:"total"`
}
