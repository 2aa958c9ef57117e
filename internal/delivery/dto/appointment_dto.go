package dto

import "time"

// Request DTOs

type CreateAppointmentRequest struct {
	PatientID int64     `json:"patient_id" validate:"required,min=1"`
	DoctorID  int64     `json:"doctor_id" validate:"required,min=1"`
	ClinicID  int64     `json:"clinic_id" validate:"required,min=1"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
}

type UpdateAppointmentRequest struct {
	Status            *string    `json:"status" validate:"omitempty,oneof=scheduled confirmed cancelled completed"`
	TreatmentSummary  *string    `json:"treatment_summary"`
	ExpectedUpdatedAt *time.Time `json:"expected_updated_at,omitempty"`
}

type ListAppointmentsRequest struct {
	DoctorID  *int64  `json:"doctor_id"`
	ClinicID  *int64  `json:"clinic_id"`
	PatientID *int64  `json:"patient_id"`
	Status    *string `json:"status" validate:"omitempty,oneof=scheduled confirmed cancelled completed"`
}

// Response DTOs

type AppointmentResponse struct {
	ID               int64     `json:"id"`
	PatientID        int64     `json:"patient_id"`
	DoctorID         int64     `json:"doctor_id"`
	ClinicID         int64     `json:"clinic_id"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	Status           string    `json:"status"`
	TreatmentSummary string    `json:"treatment_summary,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
