package notification

import (
	"context"

	"hms/models"

	"go.uber.org/zap"
)

// LogNotifier writes events to the application log.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, e models.AppointmentEvent) error {
	n.logger.Info("appointment event",
		zap.String("eventId", e.ID),
		zap.String("type", string(e.Type)),
		zap.String("appointmentId", e.AppointmentID),
		zap.String("providerId", e.ProviderID),
		zap.String("patientId", e.PatientID),
		zap.String("status", string(e.Status)),
		zap.Time("scheduledStart", e.ScheduledStart),
		zap.String("actorId", e.ActorID),
	)
	return nil
}
