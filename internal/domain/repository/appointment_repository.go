package repository

import (
	"time"

	"clinic-queue-manager/internal/domain/entity"

	"gorm.io/gorm"
)

// AppointmentFilter narrows appointment listings. Nil fields are
// ignored.
type AppointmentFilter struct {
	DoctorID  *int64
	ClinicID  *int64
	PatientID *int64
	Status    *entity.AppointmentStatus
}

// AppointmentUpdate carries optional mutations for an appointment.
type AppointmentUpdate struct {
	Status            *entity.AppointmentStatus
	TreatmentSummary  *string
	ExpectedUpdatedAt *time.Time
}

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id int64) (*entity.Appointment, error)
	List(db *gorm.DB, filter AppointmentFilter) ([]entity.Appointment, error)
	// CountOverlapping counts scheduled/confirmed appointments for the
	// doctor whose [start_time, end_time) interval intersects the given
	// one, excluding excludeID when non-nil.
	CountOverlapping(db *gorm.DB, doctorID int64, start, end time.Time, excludeID *int64) (int64, error)
	// FindScheduledBetween returns appointments with status scheduled
	// whose start_time falls in [from, to].
	FindScheduledBetween(db *gorm.DB, from, to time.Time) ([]entity.Appointment, error)
	// Confirm promotes scheduled -> confirmed conditionally: the row
	// must still be scheduled and its start_time must still fall inside
	// [windowStart, windowEnd]. Returns affected rows, so a reschedule
	// between read and write surfaces as zero.
	Confirm(db *gorm.DB, id int64, windowStart, windowEnd, now time.Time) (int64, error)
	// Update applies the changes conditionally on the observed status
	// and, when supplied, the expected updated_at.
	Update(db *gorm.DB, id int64, fromStatus entity.AppointmentStatus, update AppointmentUpdate, now time.Time) (int64, error)
	CountTodayByStatus(db *gorm.DB, clinicID *int64, dayStart, dayEnd time.Time) (map[entity.AppointmentStatus]int64, error)
}
