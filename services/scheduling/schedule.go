package scheduling

import (
	"context"
	"errors"

	providerRepo "hms/database/repository/provider"
	"hms/models"

	"go.uber.org/zap"
)

// UpdateAvailability replaces a provider's weekly hours and exception dates.
// Doctors may only edit their own record. Existing appointments are kept even
// when they now fall outside the new hours.
func (s *DefaultSchedulingService) UpdateAvailability(ctx context.Context, actor models.Principal, providerID string, update models.AvailabilityUpdate) (*models.Provider, error) {
	if !actor.Can(models.CapManageAvailability) {
		return nil, newError(KindForbidden, "role %s may not manage availability", actor.Role)
	}
	if !actor.Can(models.CapActOnAny) && actor.ID != providerID {
		return nil, newError(KindForbidden, "%s may only manage their own availability", actor.ID)
	}
	if err := ValidateAvailability(update); err != nil {
		return nil, err
	}

	provider, err := s.providers.UpdateAvailability(ctx, providerID, update, s.now())
	if err != nil {
		if errors.Is(err, providerRepo.ErrNotFound) {
			return nil, newError(KindNotFound, "provider %s not found", providerID)
		}
		return nil, err
	}

	s.cache.InvalidateProvider(ctx, providerID)
	s.logger.Info("provider availability updated",
		zap.String("providerId", providerID),
		zap.String("actorId", actor.ID),
	)
	event := models.AppointmentEvent{
		ID:         s.newID(),
		Type:       models.EventAvailabilityUpdated,
		ProviderID: providerID,
		ActorID:    actor.ID,
		OccurredAt: s.now(),
	}
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.Warn("availability event not delivered", zap.String("providerId", providerID), zap.Error(err))
	}
	return provider, nil
}
