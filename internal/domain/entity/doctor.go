package entity

import "time"

// Doctor represents a practitioner attached to a clinic.
type Doctor struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ClinicID  int64     `gorm:"not null;index" json:"clinic_id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Specialty string    `gorm:"type:varchar(100)" json:"specialty,omitempty"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Clinic Clinic `gorm:"foreignKey:ClinicID" json:"clinic,omitempty"`
}

func (Doctor) TableName() string {
	return "doctors"
}

func (d *Doctor) Active() bool {
	return d.IsActive != nil && *d.IsActive
}
