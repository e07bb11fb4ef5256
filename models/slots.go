package models

import "time"

// Slot is a candidate appointment start derived from a provider's availability.
type Slot struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Available bool      `json:"available"`
}

// SlotList is the GetAvailableSlots response body.
type SlotList struct {
	ProviderID      string `json:"providerId"`
	Date            string `json:"date"`
	DurationMinutes int    `json:"durationMinutes"`
	Slots           []Slot `json:"slots"`
}
