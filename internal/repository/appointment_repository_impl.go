package repository

import (
	"errors"
	"time"

	"clinic-queue-manager/internal/domain/entity"
	domainRepo "clinic-queue-manager/internal/domain/repository"

	"gorm.io/gorm"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Create(appointment).Error
}

func (r *appointmentRepository) FindByID(db *gorm.DB, id int64) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) List(db *gorm.DB, filter domainRepo.AppointmentFilter) ([]entity.Appointment, error) {
	query := db.Model(&entity.Appointment{})
	if filter.DoctorID != nil {
		query = query.Where("doctor_id = ?", *filter.DoctorID)
	}
	if filter.ClinicID != nil {
		query = query.Where("clinic_id = ?", *filter.ClinicID)
	}
	if filter.PatientID != nil {
		query = query.Where("patient_id = ?", *filter.PatientID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var appointments []entity.Appointment
	err := query.Order("start_time ASC").Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) CountOverlapping(db *gorm.DB, doctorID int64, start, end time.Time, excludeID *int64) (int64, error) {
	query := db.Model(&entity.Appointment{}).
		Where("doctor_id = ?", doctorID).
		Where("status IN ?", []entity.AppointmentStatus{
			entity.AppointmentStatusScheduled,
			entity.AppointmentStatusConfirmed,
		}).
		// [start_time, end_time) intervals intersect
		Where("start_time < ? AND end_time > ?", end, start)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *appointmentRepository) FindScheduledBetween(db *gorm.DB, from, to time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.Where("status = ? AND start_time BETWEEN ? AND ?",
		entity.AppointmentStatusScheduled, from, to).
		Order("start_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// Confirm is conditional on the row still being scheduled and its start
// time still falling inside the confirmation window, which makes
// repeated scheduler runs no-ops for already-confirmed rows and keeps a
// reschedule between the candidate query and this write from confirming
// an appointment that is no longer due.
func (r *appointmentRepository) Confirm(db *gorm.DB, id int64, windowStart, windowEnd, now time.Time) (int64, error) {
	result := db.Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", id, entity.AppointmentStatusScheduled).
		Where("start_time BETWEEN ? AND ?", windowStart, windowEnd).
		Updates(map[string]interface{}{
			"status":     entity.AppointmentStatusConfirmed,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) Update(db *gorm.DB, id int64, fromStatus entity.AppointmentStatus, update domainRepo.AppointmentUpdate, now time.Time) (int64, error) {
	changes := map[string]interface{}{"updated_at": now}
	if update.Status != nil {
		changes["status"] = *update.Status
	}
	if update.TreatmentSummary != nil {
		changes["treatment_summary"] = *update.TreatmentSummary
	}

	query := db.Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", id, fromStatus)
	if update.ExpectedUpdatedAt != nil {
		query = query.Where("updated_at = ?", *update.ExpectedUpdatedAt)
	}
	result := query.Updates(changes)
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) CountTodayByStatus(db *gorm.DB, clinicID *int64, dayStart, dayEnd time.Time) (map[entity.AppointmentStatus]int64, error) {
	type row struct {
		Status entity.AppointmentStatus
		Total  int64
	}
	query := db.Model(&entity.Appointment{}).
		Select("status, COUNT(*) as total").
		Where("start_time >= ? AND start_time < ?", dayStart, dayEnd).
		Group("status")
	if clinicID != nil {
		query = query.Where("clinic_id = ?", *clinicID)
	}

	var rows []row
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[entity.AppointmentStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}
