package repository

import (
	"time"

	"clinic-queue-manager/internal/domain/entity"

	"gorm.io/gorm"
)

type DoctorScheduleRepository interface {
	Create(db *gorm.DB, schedule *entity.DoctorSchedule) error
	FindByID(db *gorm.DB, id int64) (*entity.DoctorSchedule, error)
	FindByDoctorID(db *gorm.DB, doctorID int64) ([]entity.DoctorSchedule, error)
	// FindForDay returns the doctor's windows recurring on the given
	// ISO weekday whose validity range covers the date.
	FindForDay(db *gorm.DB, doctorID int64, dayOfWeek int, date time.Time) ([]entity.DoctorSchedule, error)
	Update(db *gorm.DB, schedule *entity.DoctorSchedule) error
	Delete(db *gorm.DB, id int64) (int64, error)
}
