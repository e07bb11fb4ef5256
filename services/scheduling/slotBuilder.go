package scheduling

import (
	"time"

	"hms/models"
)

// GenerateSlots walks the provider's working window on date in duration steps.
// Slots straddling the break are dropped whole, as are slots starting at or
// before now. Every returned slot starts out available.
func GenerateSlots(p *models.Provider, date time.Time, duration int, now time.Time, loc *time.Location) []models.Slot {
	slots := []models.Slot{}
	if duration <= 0 {
		return slots
	}
	w, ok := WorkingDay(p, date, loc)
	if !ok {
		return slots
	}

	step := time.Duration(duration) * time.Minute
	for t := w.Start; !t.Add(step).After(w.End); t = t.Add(step) {
		end := t.Add(step)
		if w.HasBreak() && Overlaps(t, end, w.BreakStart, w.BreakEnd) {
			continue
		}
		if !t.After(now) {
			continue
		}
		slots = append(slots, models.Slot{StartTime: t, EndTime: end, Available: true})
	}
	return slots
}

// MarkOccupied clears Available on every slot intersecting an active appointment.
func MarkOccupied(slots []models.Slot, booked []models.Appointment) []models.Slot {
	for i := range slots {
		if IsOccupiedBy(booked, slots[i].StartTime, slots[i].EndTime, "") {
			slots[i].Available = false
		}
	}
	return slots
}
