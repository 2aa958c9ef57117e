package entity

import "time"

// Clinic represents a medical clinic. Reference data for the queue and
// scheduler layers; open/close times are timezone-naive local times.
type Clinic struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	AddressLine string    `gorm:"type:varchar(255)" json:"address_line,omitempty"`
	Area        string    `gorm:"type:varchar(100)" json:"area,omitempty"`
	Region      string    `gorm:"type:varchar(100)" json:"region,omitempty"`
	ClinicType  string    `gorm:"type:varchar(100)" json:"clinic_type,omitempty"`
	OpenTime    string    `gorm:"type:time" json:"open_time,omitempty"`
	CloseTime   string    `gorm:"type:time" json:"close_time,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Clinic) TableName() string {
	return "clinics"
}
