package scheduling

import (
	"time"

	"hms/models"
)

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// IsOccupiedBy reports whether any active appointment other than excludeID
// intersects [start, end). Cancelled, completed and no-show records never occupy.
func IsOccupiedBy(appointments []models.Appointment, start, end time.Time, excludeID string) bool {
	for i := range appointments {
		a := &appointments[i]
		if a.ID == excludeID || !a.Status.OccupiesSlot() {
			continue
		}
		if Overlaps(start, end, a.ScheduledStart, a.ScheduledEnd) {
			return true
		}
	}
	return false
}
