package dto

import "time"

// Request DTOs

type CreateDoctorRequest struct {
	ClinicID  int64  `json:"clinic_id" validate:"required,min=1"`
	Name      string `json:"name" validate:"required,min=2,max=255"`
	Specialty string `json:"specialty" validate:"omitempty,max=100"`
}

type UpdateDoctorRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=2,max=255"`
	Specialty *string `json:"specialty" validate:"omitempty,max=100"`
	IsActive  *bool   `json:"is_active"`
}

// Response DTOs

type DoctorResponse struct {
	ID        int64     `json:"id"`
	ClinicID  int64     `json:"clinic_id"`
	Name      string    `json:"name"`
	Specialty string    `json:"specialty,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}
