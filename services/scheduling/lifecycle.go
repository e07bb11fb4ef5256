package scheduling

import (
	"context"
	"errors"
	"time"

	appointmentRepo "hms/database/repository/appointment"
	"hms/models"

	"go.uber.org/zap"
)

func (s *DefaultSchedulingService) GetAppointment(ctx context.Context, actor models.Principal, appointmentID string) (*models.Appointment, error) {
	appt, err := s.loadAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// TransitionStatus applies one edge of the lifecycle graph. Cancellation is
// routed through CancelAppointment so the notice policy always applies;
// rescheduling is only reachable through RescheduleAppointment.
func (s *DefaultSchedulingService) TransitionStatus(ctx context.Context, actor models.Principal, appointmentID string, req models.StatusChangeRequest) (*models.Appointment, error) {
	if !req.Status.IsValid() {
		return nil, newError(KindInvalidRequest, "unknown status %q", req.Status)
	}
	if req.Status == models.StatusCancelled {
		return s.CancelAppointment(ctx, actor, appointmentID, req.Reason)
	}

	appt, err := s.loadAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, appt); err != nil {
		return nil, err
	}
	if req.Status == models.StatusRescheduled {
		return nil, invalidTransition(appt.Status, req.Status)
	}
	if need, ok := models.StatusCapability[req.Status]; !ok || !actor.Can(need) {
		if CanTransition(appt.Status, req.Status) {
			return nil, newError(KindForbidden, "role %s may not set status %s", actor.Role, req.Status)
		}
	}

	previous := appt.Status
	if err := ApplyTransition(appt, req.Status, actor.ID, req.Reason, req.Notes, s.now()); err != nil {
		return nil, err
	}
	if err := s.save(ctx, appt); err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition(string(req.Status))
	if !appt.Status.OccupiesSlot() {
		s.cache.Invalidate(ctx, appt.ProviderID, s.dateKey(appt.ScheduledStart))
	}
	s.logger.Info("appointment status changed",
		zap.String("appointmentId", appt.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(appt.Status)),
		zap.String("actorId", actor.ID),
	)
	s.publish(ctx, models.EventAppointmentStatus, appt, actor.ID, req.Reason, previous, nil)
	return appt, nil
}

// CancelAppointment cancels a scheduled or confirmed appointment that starts at
// least the policy notice from now.
func (s *DefaultSchedulingService) CancelAppointment(ctx context.Context, actor models.Principal, appointmentID, reason string) (*models.Appointment, error) {
	appt, err := s.loadAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, appt); err != nil {
		return nil, err
	}
	if !actor.Can(models.CapCancel) {
		return nil, newError(KindForbidden, "role %s may not cancel appointments", actor.Role)
	}

	now := s.now()
	if err := s.policy.checkCancel(appt, now); err != nil {
		return nil, err
	}

	previous := appt.Status
	if err := ApplyTransition(appt, models.StatusCancelled, actor.ID, reason, "", now); err != nil {
		return nil, err
	}
	appt.Cancellation = &models.CancellationRecord{
		Reason:      reason,
		CancelledBy: actor.ID,
		CancelledAt: now,
		Refund:      refundFor(appt),
	}
	if err := s.save(ctx, appt); err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition(string(models.StatusCancelled))
	s.cache.Invalidate(ctx, appt.ProviderID, s.dateKey(appt.ScheduledStart))
	s.logger.Info("appointment cancelled",
		zap.String("appointmentId", appt.ID),
		zap.String("actorId", actor.ID),
		zap.String("reason", reason),
	)
	s.publish(ctx, models.EventAppointmentCancelled, appt, actor.ID, reason, previous, nil)
	return appt, nil
}

// RescheduleAppointment moves the appointment to newStart. The status passes
// through rescheduled back to scheduled, and time, reschedule record and
// history are persisted in a single write.
func (s *DefaultSchedulingService) RescheduleAppointment(ctx context.Context, actor models.Principal, appointmentID string, newStart time.Time, reason string) (*models.Appointment, error) {
	appt, err := s.loadAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, appt); err != nil {
		return nil, err
	}
	if !actor.Can(models.CapReschedule) {
		return nil, newError(KindForbidden, "role %s may not reschedule appointments", actor.Role)
	}

	now := s.now()
	if err := s.policy.checkReschedule(appt, now); err != nil {
		return nil, err
	}
	if !newStart.After(now) {
		return nil, newError(KindPastTime, "new start %s is not after %s", newStart.Format(time.RFC3339), now.Format(time.RFC3339))
	}
	if newStart.Equal(appt.ScheduledStart) {
		return nil, newError(KindInvalidRequest, "new start equals the current start")
	}

	provider, err := s.getProvider(ctx, appt.ProviderID)
	if err != nil {
		return nil, err
	}
	newEnd := newStart.Add(time.Duration(appt.DurationMinutes) * time.Minute)
	w, ok := WorkingDay(provider, newStart, s.loc)
	if !ok || !w.Covers(newStart, newEnd) {
		return nil, newError(KindOutsideAvailability, "provider %s is not available from %s to %s", provider.ID, newStart.Format(time.RFC3339), newEnd.Format(time.RFC3339))
	}

	release, err := s.lockProvider(ctx, provider.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := s.appointments.FindActiveOverlapping(ctx, provider.ID, newStart, newEnd)
	if err != nil {
		return nil, err
	}
	if IsOccupiedBy(existing, newStart, newEnd, appt.ID) {
		s.metrics.ObserveConflict("detector")
		return nil, newError(KindSlotUnavailable, "provider %s already has an appointment overlapping %s", provider.ID, newStart.Format(time.RFC3339))
	}

	previous := appt.Status
	original := appt.ScheduledStart
	if err := ApplyTransition(appt, models.StatusRescheduled, actor.ID, reason, "", now); err != nil {
		return nil, err
	}
	appt.ScheduledStart = newStart
	appt.ScheduledEnd = newEnd
	if err := ApplyTransition(appt, models.StatusScheduled, actor.ID, "rescheduled", "", now); err != nil {
		return nil, err
	}

	var record models.RescheduleRecord
	if appt.Reschedule != nil {
		record = *appt.Reschedule
	}
	record.OriginalStart = original
	record.NewStart = newStart
	record.RescheduledBy = actor.ID
	record.Reason = reason
	record.Count++
	record.Changes = append(append([]models.RescheduleChange(nil), record.Changes...), models.RescheduleChange{
		OriginalStart: original,
		NewStart:      newStart,
		ActorID:       actor.ID,
		Reason:        reason,
		At:            now,
	})
	appt.Reschedule = &record
	appt.ConfirmedAt = nil

	if err := s.save(ctx, appt); err != nil {
		if errors.Is(err, ErrSlotUnavailable) {
			s.metrics.ObserveConflict("storage")
		}
		return nil, err
	}

	s.metrics.ObserveTransition(string(models.StatusRescheduled))
	s.cache.Invalidate(ctx, appt.ProviderID, s.dateKey(original))
	s.cache.Invalidate(ctx, appt.ProviderID, s.dateKey(newStart))
	s.logger.Info("appointment rescheduled",
		zap.String("appointmentId", appt.ID),
		zap.Time("from", original),
		zap.Time("to", newStart),
		zap.Int("count", record.Count),
	)
	s.publish(ctx, models.EventAppointmentRescheduled, appt, actor.ID, reason, previous, &original)
	return appt, nil
}

func (s *DefaultSchedulingService) loadAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrNotFound) {
			return nil, newError(KindNotFound, "appointment %s not found", id)
		}
		return nil, err
	}
	return appt, nil
}

func (s *DefaultSchedulingService) save(ctx context.Context, appt *models.Appointment) error {
	err := s.appointments.Update(ctx, appt)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, appointmentRepo.ErrVersionConflict):
		return newError(KindConcurrentUpdate, "appointment %s was modified concurrently, reload and retry", appt.ID)
	case errors.Is(err, appointmentRepo.ErrSlotTaken):
		return newError(KindSlotUnavailable, "slot %s for provider %s was just taken", appt.ScheduledStart.Format(time.RFC3339), appt.ProviderID)
	default:
		return err
	}
}

// authorize enforces ownership: patients act on their own appointments and
// doctors on appointments they provide. Staff and admins act on any.
func authorize(actor models.Principal, appt *models.Appointment) error {
	if actor.Can(models.CapActOnAny) {
		return nil
	}
	switch actor.Role {
	case models.RolePatient:
		if appt.PatientID == actor.ID {
			return nil
		}
	case models.RoleDoctor:
		if appt.ProviderID == actor.ID {
			return nil
		}
	}
	return newError(KindForbidden, "%s %s may not act on appointment %s", actor.Role, actor.ID, appt.ID)
}

func (s *DefaultSchedulingService) publish(ctx context.Context, kind models.AppointmentEventType, appt *models.Appointment, actorID, reason string, previous models.AppointmentStatus, previousStart *time.Time) {
	event := models.AppointmentEvent{
		ID:             s.newID(),
		Type:           kind,
		AppointmentID:  appt.ID,
		Number:         appt.Number,
		ProviderID:     appt.ProviderID,
		PatientID:      appt.PatientID,
		Status:         appt.Status,
		PreviousStatus: previous,
		ScheduledStart: appt.ScheduledStart,
		PreviousStart:  previousStart,
		ActorID:        actorID,
		Reason:         reason,
		OccurredAt:     s.now(),
	}
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.Warn("appointment event not delivered",
			zap.String("type", string(kind)),
			zap.String("appointmentId", appt.ID),
			zap.Error(err),
		)
	}
}
