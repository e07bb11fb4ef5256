package scheduling

import (
	"time"

	"hms/models"
)

var transitions = map[models.AppointmentStatus][]models.AppointmentStatus{
	models.StatusScheduled:   {models.StatusConfirmed, models.StatusCancelled, models.StatusRescheduled},
	models.StatusConfirmed:   {models.StatusCheckedIn, models.StatusCancelled, models.StatusNoShow, models.StatusRescheduled},
	models.StatusRescheduled: {models.StatusScheduled},
	models.StatusCheckedIn:   {models.StatusInProgress},
	models.StatusInProgress:  {models.StatusCompleted},
}

// CanTransition reports whether from → to is an edge of the lifecycle graph.
func CanTransition(from, to models.AppointmentStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AllowedTransitions lists the statuses reachable from s in one step.
func AllowedTransitions(s models.AppointmentStatus) []models.AppointmentStatus {
	return append([]models.AppointmentStatus(nil), transitions[s]...)
}

// ApplyTransition moves a to status `to` at time at, appending a history entry and
// recording the per-status timestamps. On an illegal edge a is left untouched.
func ApplyTransition(a *models.Appointment, to models.AppointmentStatus, actorID, reason, notes string, at time.Time) error {
	if !CanTransition(a.Status, to) {
		return invalidTransition(a.Status, to)
	}

	switch to {
	case models.StatusConfirmed:
		a.ConfirmedAt = timePtr(at)
	case models.StatusCheckedIn:
		a.CheckedInAt = timePtr(at)
		wait := int(at.Sub(a.ScheduledStart) / time.Minute)
		if wait < 0 {
			wait = 0
		}
		a.WaitTimeMinutes = &wait
	case models.StatusInProgress:
		a.StartedAt = timePtr(at)
	case models.StatusCompleted:
		a.CompletedAt = timePtr(at)
		from := a.ScheduledStart
		if a.StartedAt != nil {
			from = *a.StartedAt
		}
		d := int(at.Sub(from) / time.Minute)
		if d < 0 {
			d = 0
		}
		a.ActualDurationMinutes = &d
	case models.StatusNoShow:
		a.NoShowAt = timePtr(at)
	}

	a.Status = to
	a.StatusHistory = append(a.StatusHistory, models.StatusHistoryEntry{
		Status:    to,
		Timestamp: at,
		ActorID:   actorID,
		Reason:    reason,
		Notes:     notes,
	})
	a.UpdatedAt = at
	a.SyncSlotKey()
	return nil
}

// ValidHistory reports whether the recorded statuses form a walk of the lifecycle
// graph starting at scheduled.
func ValidHistory(history []models.StatusHistoryEntry) bool {
	if len(history) == 0 || history[0].Status != models.StatusScheduled {
		return false
	}
	for i := 1; i < len(history); i++ {
		if !CanTransition(history[i-1].Status, history[i].Status) {
			return false
		}
	}
	return true
}

func timePtr(t time.Time) *time.Time {
	return &t
}
