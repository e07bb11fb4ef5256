package scheduling

import (
	"time"

	"hms/models"
)

// Policy holds the cancellation and reschedule limits.
//
// The notice floor is strict: an appointment starting less than Notice from now
// can be neither cancelled nor rescheduled by the patient.
type Policy struct {
	Notice         time.Duration
	MaxReschedules int
}

func DefaultPolicy() Policy {
	return Policy{Notice: 24 * time.Hour, MaxReschedules: 3}
}

// CanCancel is true iff a is scheduled or confirmed, starts in the future and
// starts at least Notice after now.
func (p Policy) CanCancel(a *models.Appointment, now time.Time) bool {
	if a.Status != models.StatusScheduled && a.Status != models.StatusConfirmed {
		return false
	}
	if !a.ScheduledStart.After(now) {
		return false
	}
	return a.ScheduledStart.Sub(now) >= p.Notice
}

// CanReschedule is CanCancel plus a remaining reschedule allowance.
func (p Policy) CanReschedule(a *models.Appointment, now time.Time) bool {
	return p.CanCancel(a, now) && a.RescheduleCount() < p.MaxReschedules
}

// checkReschedule explains why a reschedule is refused, nil when allowed.
func (p Policy) checkReschedule(a *models.Appointment, now time.Time) error {
	if a.RescheduleCount() >= p.MaxReschedules {
		return newError(KindRescheduleLimitExceeded, "appointment %s has already been rescheduled %d times", a.ID, a.RescheduleCount())
	}
	if !p.CanCancel(a, now) {
		return newError(KindNotReschedulable, "appointment %s in status %s at %s cannot be rescheduled", a.ID, a.Status, a.ScheduledStart.Format(time.RFC3339))
	}
	return nil
}

func (p Policy) checkCancel(a *models.Appointment, now time.Time) error {
	if !p.CanCancel(a, now) {
		return newError(KindNotCancellable, "appointment %s in status %s at %s cannot be cancelled", a.ID, a.Status, a.ScheduledStart.Format(time.RFC3339))
	}
	return nil
}

// refundFor decides the refund disposition recorded on a cancellation.
func refundFor(a *models.Appointment) models.RefundDisposition {
	if a.ConsultationFee <= 0 {
		return models.RefundNotApplicable
	}
	return models.RefundFull
}
