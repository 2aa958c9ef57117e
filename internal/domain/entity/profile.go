package entity

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the shared identity record. Roles are separate records
// joined by profile id (composition, not a discriminator column): a
// profile holds a role exactly when the matching role record exists.
type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"type:text;not null" json:"-"`
	FullName  string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Phone     string    `gorm:"type:varchar(50)" json:"phone,omitempty"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// PatientRecord marks a profile as a patient.
type PatientRecord struct {
	ProfileID uuid.UUID `gorm:"type:uuid;primaryKey" json:"profile_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (PatientRecord) TableName() string {
	return "patient_records"
}

// StaffRecord marks a profile as clinic staff.
type StaffRecord struct {
	ProfileID uuid.UUID `gorm:"type:uuid;primaryKey" json:"profile_id"`
	ClinicID  int64     `gorm:"not null;index" json:"clinic_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (StaffRecord) TableName() string {
	return "staff_records"
}

// AdminRecord marks a profile as a system administrator.
type AdminRecord struct {
	ProfileID uuid.UUID `gorm:"type:uuid;primaryKey" json:"profile_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (AdminRecord) TableName() string {
	return "admin_records"
}

// RoleSet is the capability view of a profile's roles.
type RoleSet struct {
	Patient bool `json:"patient"`
	Staff   bool `json:"staff"`
	Admin   bool `json:"admin"`
}

func (r RoleSet) Names() []string {
	var names []string
	if r.Patient {
		names = append(names, "patient")
	}
	if r.Staff {
		names = append(names, "staff")
	}
	if r.Admin {
		names = append(names, "admin")
	}
	return names
}

func (r RoleSet) Has(name string) bool {
	switch name {
	case "patient":
		return r.Patient
	case "staff":
		return r.Staff
	case "admin":
		return r.Admin
	}
	return false
}
