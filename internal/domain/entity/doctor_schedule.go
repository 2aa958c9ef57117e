package entity

import "time"

// DoctorSchedule is a recurring weekly availability window for a
// doctor. DayOfWeek follows ISO-8601 (1=Monday .. 7=Sunday), times are
// stored as HH:MM, and the optional ValidFrom/ValidTo dates bound the
// weeks the window recurs in (both inclusive, nil means unbounded).
type DoctorSchedule struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	DoctorID    int64      `gorm:"not null;index" json:"doctor_id"`
	DayOfWeek   int        `gorm:"not null" json:"day_of_week"`
	StartTime   string     `gorm:"type:time;not null" json:"start_time"`
	EndTime     string     `gorm:"type:time;not null" json:"end_time"`
	SlotMinutes int        `gorm:"not null" json:"slot_minutes"`
	ValidFrom   *time.Time `gorm:"type:date" json:"valid_from,omitempty"`
	ValidTo     *time.Time `gorm:"type:date" json:"valid_to,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relationships
	Doctor Doctor `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (DoctorSchedule) TableName() string {
	return "doctor_schedules"
}

// ISOWeekday maps time.Weekday to the ISO-8601 numbering used by
// DayOfWeek, where Sunday is 7 rather than 0.
func ISOWeekday(date time.Time) int {
	wd := int(date.Weekday())
	if wd == 0 {
		wd = 7
	}
	return wd
}

// AppliesTo reports whether the window recurs on the given date: the
// weekday matches and the date falls inside the validity range.
func (s *DoctorSchedule) AppliesTo(date time.Time) bool {
	return ISOWeekday(date) == s.DayOfWeek && s.ValidOn(date)
}

// ValidOn checks only the ValidFrom/ValidTo range. Comparisons are by
// calendar date, so a date equal to either bound is still valid.
func (s *DoctorSchedule) ValidOn(date time.Time) bool {
	day := dateOnly(date)
	if s.ValidFrom != nil && day.Before(dateOnly(*s.ValidFrom)) {
		return false
	}
	if s.ValidTo != nil && day.After(dateOnly(*s.ValidTo)) {
		return false
	}
	return true
}

// dateOnly strips the clock and zone so two timestamps on the same
// calendar day compare equal.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
