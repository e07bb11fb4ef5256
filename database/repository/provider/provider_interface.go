package providerRepo

import (
	"context"
	"errors"
	"time"

	"hms/models"
)

var ErrNotFound = errors.New("provider not found")

// ProviderRepository defines methods for provider data access.
type ProviderRepository interface {
	// GetByID retrieves a provider by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Provider, error)
	// UpdateAvailability replaces the provider's weekly hours, exceptions and
	// (when non-zero) slot duration, returning the updated record.
	UpdateAvailability(ctx context.Context, id string, update models.AvailabilityUpdate, at time.Time) (*models.Provider, error)
}
