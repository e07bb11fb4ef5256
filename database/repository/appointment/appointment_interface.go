package appointmentRepo

import (
	"context"
	"errors"
	"time"

	"hms/models"
)

var (
	ErrNotFound = errors.New("appointment not found")
	// ErrSlotTaken is returned when the unique slot index rejects a write.
	ErrSlotTaken = errors.New("slot already taken")
	// ErrVersionConflict is returned when the stored version no longer matches.
	ErrVersionConflict = errors.New("appointment version conflict")
)

// AppointmentRepository defines appointment persistence.
type AppointmentRepository interface {
	// Create inserts a new appointment at version 1.
	Create(ctx context.Context, appt *models.Appointment) error
	// GetByID retrieves an appointment by its ID.
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	// Update replaces the stored document if its version still equals appt.Version,
	// then bumps appt.Version.
	Update(ctx context.Context, appt *models.Appointment) error
	// FindActiveOverlapping returns the provider's slot-occupying appointments
	// intersecting [from, to).
	FindActiveOverlapping(ctx context.Context, providerID string, from, to time.Time) ([]models.Appointment, error)
	// NextNumber returns the next human-readable appointment number.
	NextNumber(ctx context.Context) (string, error)
}
