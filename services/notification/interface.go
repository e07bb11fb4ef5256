package notification

import (
	"context"

	"hms/models"
)

// Notifier delivers appointment lifecycle events to an external channel.
type Notifier interface {
	Notify(ctx context.Context, event models.AppointmentEvent) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, event models.AppointmentEvent) error

func (f NotifierFunc) Notify(ctx context.Context, event models.AppointmentEvent) error {
	return f(ctx, event)
}
