package models

import "time"

// DayAvailability is one weekday's working hours, times as "HH:MM" wall clock.
type DayAvailability struct {
	IsAvailable bool   `bson:"isAvailable" json:"isAvailable"`
	StartTime   string `bson:"startTime,omitempty" json:"startTime,omitempty"`
	EndTime     string `bson:"endTime,omitempty" json:"endTime,omitempty"`
	BreakStart  string `bson:"breakStart,omitempty" json:"breakStart,omitempty"`
	BreakEnd    string `bson:"breakEnd,omitempty" json:"breakEnd,omitempty"`
}

// WeeklyAvailability is keyed by lowercase weekday name ("monday" … "sunday").
type WeeklyAvailability map[string]DayAvailability

// UnavailableDate blocks a whole calendar day (vacation, conference, …).
type UnavailableDate struct {
	Date   string `bson:"date" json:"date"` // "2006-01-02"
	Reason string `bson:"reason,omitempty" json:"reason,omitempty"`
}

// Provider is the clinician being booked. Only the fields the scheduling core reads are mapped.
type Provider struct {
	ID                  string             `bson:"id" json:"id"`
	Name                string             `bson:"name" json:"name"`
	Specialization      string             `bson:"specialization,omitempty" json:"specialization,omitempty"`
	Availability        WeeklyAvailability `bson:"availability" json:"availability"`
	SlotDurationMinutes int                `bson:"slotDurationMinutes" json:"slotDurationMinutes"`
	ConsultationFee     float64            `bson:"consultationFee" json:"consultationFee"`
	Currency            string             `bson:"currency,omitempty" json:"currency,omitempty"`
	UnavailableDates    []UnavailableDate  `bson:"unavailableDates,omitempty" json:"unavailableDates,omitempty"`
	IsActive            bool               `bson:"isActive" json:"isActive"`
	UpdatedAt           time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// WeekdayKey returns the availability map key for d.
func WeekdayKey(d time.Weekday) string {
	switch d {
	case time.Monday:
		return "monday"
	case time.Tuesday:
		return "tuesday"
	case time.Wednesday:
		return "wednesday"
	case time.Thursday:
		return "thursday"
	case time.Friday:
		return "friday"
	case time.Saturday:
		return "saturday"
	default:
		return "sunday"
	}
}

// AvailabilityUpdate replaces a provider's availability model.
type AvailabilityUpdate struct {
	Availability        WeeklyAvailability `json:"availability" binding:"required"`
	UnavailableDates    []UnavailableDate  `json:"unavailableDates"`
	SlotDurationMinutes int                `json:"slotDurationMinutes"`
}
