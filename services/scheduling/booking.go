package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	appointmentRepo "hms/database/repository/appointment"
	providerRepo "hms/database/repository/provider"
	"hms/models"

	"go.uber.org/zap"
)

// GetAvailableSlots lists the provider's candidate slots on date ("YYYY-MM-DD"
// in the clinic timezone), with Available cleared on occupied slots.
func (s *DefaultSchedulingService) GetAvailableSlots(ctx context.Context, providerID, date string, durationMinutes int) (*models.SlotList, error) {
	day, err := ParseDate(date, s.loc)
	if err != nil {
		return nil, err
	}
	provider, err := s.getProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	duration := SlotDuration(durationMinutes, provider, s.defaultSlotMinutes)
	if duration < MinSlotMinutes || duration > MaxSlotMinutes {
		return nil, newError(KindInvalidRequest, "slot duration must be between %d and %d minutes", MinSlotMinutes, MaxSlotMinutes)
	}

	now := s.now()
	list := &models.SlotList{ProviderID: providerID, Date: date, DurationMinutes: duration}
	if !provider.IsActive {
		list.Slots = []models.Slot{}
		return list, nil
	}

	if cached, ok := s.cache.Get(ctx, providerID, date, duration); ok {
		list.Slots = futureSlots(cached, now)
		return list, nil
	}

	gen := s.cache.Generation(ctx, providerID)
	slots := GenerateSlots(provider, day, duration, now, s.loc)
	if len(slots) > 0 {
		booked, err := s.appointments.FindActiveOverlapping(ctx, providerID, slots[0].StartTime, slots[len(slots)-1].EndTime)
		if err != nil {
			return nil, fmt.Errorf("load appointments for %s on %s: %w", providerID, date, err)
		}
		slots = MarkOccupied(slots, booked)
	}
	s.cache.Set(ctx, providerID, date, duration, gen, slots)

	list.Slots = slots
	return list, nil
}

func futureSlots(slots []models.Slot, now time.Time) []models.Slot {
	out := make([]models.Slot, 0, len(slots))
	for _, sl := range slots {
		if sl.StartTime.After(now) {
			out = append(out, sl)
		}
	}
	return out
}

// BookAppointment validates the requested time, claims the slot and persists
// a scheduled appointment. Checks short-circuit in order: past time,
// availability, conflict.
func (s *DefaultSchedulingService) BookAppointment(ctx context.Context, actor models.Principal, req models.BookingRequest) (appt *models.Appointment, err error) {
	defer func() { s.metrics.ObserveBooking(err) }()

	patientID, err := bookingPatient(actor, req.PatientID)
	if err != nil {
		return nil, err
	}
	apptType := req.Type
	if apptType == "" {
		apptType = models.TypeConsultation
	}
	if !apptType.IsValid() {
		return nil, newError(KindInvalidRequest, "unknown appointment type %q", apptType)
	}

	now := s.now()
	start := req.StartTime
	if !start.After(now) {
		return nil, newError(KindPastTime, "requested start %s is not after %s", start.Format(time.RFC3339), now.Format(time.RFC3339))
	}

	provider, err := s.getProvider(ctx, req.ProviderID)
	if err != nil {
		return nil, err
	}
	duration := req.DurationMinutes
	if duration == 0 {
		duration = SlotDuration(0, provider, s.defaultSlotMinutes)
	}
	if duration < models.MinAppointmentMinutes || duration > models.MaxAppointmentMinutes {
		return nil, newError(KindInvalidRequest, "duration must be between %d and %d minutes", models.MinAppointmentMinutes, models.MaxAppointmentMinutes)
	}
	end := start.Add(time.Duration(duration) * time.Minute)

	w, ok := WorkingDay(provider, start, s.loc)
	if !ok || !w.Covers(start, end) {
		return nil, newError(KindOutsideAvailability, "provider %s is not available from %s to %s", provider.ID, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	release, err := s.lockProvider(ctx, provider.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := s.appointments.FindActiveOverlapping(ctx, provider.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("conflict check for provider %s: %w", provider.ID, err)
	}
	if IsOccupiedBy(existing, start, end, "") {
		s.metrics.ObserveConflict("detector")
		return nil, newError(KindSlotUnavailable, "provider %s already has an appointment overlapping %s", provider.ID, start.Format(time.RFC3339))
	}

	number, err := s.appointments.NextNumber(ctx)
	if err != nil {
		return nil, err
	}
	appt = &models.Appointment{
		ID:              s.newID(),
		Number:          number,
		ProviderID:      provider.ID,
		PatientID:       patientID,
		ScheduledStart:  start,
		ScheduledEnd:    end,
		DurationMinutes: duration,
		Type:            apptType,
		Reason:          req.Reason,
		Notes:           req.Notes,
		Status:          models.StatusScheduled,
		StatusHistory: []models.StatusHistoryEntry{{
			Status:    models.StatusScheduled,
			Timestamp: now,
			ActorID:   actor.ID,
			Reason:    "booked",
		}},
		ConsultationFee: provider.ConsultationFee,
		Currency:        provider.Currency,
		SchemaVersion:   models.AppointmentSchemaVersion,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	appt.SyncSlotKey()

	if err := s.appointments.Create(ctx, appt); err != nil {
		if errors.Is(err, appointmentRepo.ErrSlotTaken) {
			s.metrics.ObserveConflict("storage")
			return nil, newError(KindSlotUnavailable, "slot %s for provider %s was just taken", start.Format(time.RFC3339), provider.ID)
		}
		return nil, err
	}

	s.cache.Invalidate(ctx, provider.ID, s.dateKey(start))
	s.logger.Info("appointment booked",
		zap.String("appointmentId", appt.ID),
		zap.String("number", appt.Number),
		zap.String("providerId", appt.ProviderID),
		zap.String("patientId", appt.PatientID),
		zap.Time("start", appt.ScheduledStart),
	)
	s.publish(ctx, models.EventAppointmentBooked, appt, actor.ID, req.Reason, "", nil)
	return appt, nil
}

// bookingPatient resolves who the appointment is for. Patients book for
// themselves; roles that book for others must name the patient.
func bookingPatient(actor models.Principal, requested string) (string, error) {
	if actor.Role == models.RolePatient {
		if requested != "" && requested != actor.ID {
			return "", newError(KindForbidden, "patients may only book for themselves")
		}
		return actor.ID, nil
	}
	if !actor.Can(models.CapBookForOthers) {
		return "", newError(KindForbidden, "role %s may not book appointments", actor.Role)
	}
	if requested == "" {
		return "", newError(KindInvalidRequest, "patientId is required")
	}
	return requested, nil
}

func (s *DefaultSchedulingService) getProvider(ctx context.Context, providerID string) (*models.Provider, error) {
	p, err := s.providers.GetByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, providerRepo.ErrNotFound) {
			return nil, newError(KindNotFound, "provider %s not found", providerID)
		}
		return nil, err
	}
	return p, nil
}

func (s *DefaultSchedulingService) lockProvider(ctx context.Context, providerID string) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()
	release, err := s.locker.Lock(lockCtx, providerLockKey(providerID))
	if err != nil {
		if errors.Is(err, ErrLockTimeout) {
			return nil, newError(KindConcurrentUpdate, "provider %s schedule is busy, retry", providerID)
		}
		return nil, err
	}
	return release, nil
}

func (s *DefaultSchedulingService) dateKey(t time.Time) string {
	return t.In(s.loc).Format(dateLayout)
}
