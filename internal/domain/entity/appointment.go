package entity

import "time"

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusConfirmed,
		AppointmentStatusCancelled, AppointmentStatusCompleted:
		return true
	}
	return false
}

// Blocking reports whether the appointment occupies its doctor's time,
// i.e. counts toward the no-overlap rule.
func (s AppointmentStatus) Blocking() bool {
	return s == AppointmentStatusScheduled || s == AppointmentStatusConfirmed
}

// Appointment represents a patient's booked visit with a doctor.
type Appointment struct {
	ID               int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	PatientID        int64             `gorm:"not null;index" json:"patient_id"`
	DoctorID         int64             `gorm:"not null;index" json:"doctor_id"`
	ClinicID         int64             `gorm:"not null;index" json:"clinic_id"`
	StartTime        time.Time         `gorm:"type:timestamptz;not null" json:"start_time"`
	EndTime          time.Time         `gorm:"type:timestamptz;not null" json:"end_time"`
	Status           AppointmentStatus `gorm:"type:text;not null;index" json:"status"`
	TreatmentSummary string            `gorm:"type:text" json:"treatment_summary,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func (Appointment) TableName() string {
	return "appointments"
}
