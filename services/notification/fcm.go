package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hms/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// MessageSender is the subset of *messaging.Client used here.
type MessageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMNotifier pushes events to the provider_<id> and patient_<id> topics that
// the mobile and web clients subscribe to.
type FCMNotifier struct {
	client MessageSender
}

func NewFCMNotifier(client MessageSender) *FCMNotifier {
	return &FCMNotifier{client: client}
}

// NewFirebaseMessaging initializes the Firebase App and Messaging client.
func NewFirebaseMessaging(ctx context.Context, credentialsFile string) (*messaging.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase: error initializing app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: error getting Messaging client: %w", err)
	}
	return client, nil
}

func (n *FCMNotifier) Notify(ctx context.Context, e models.AppointmentEvent) error {
	title, body := describe(e)
	data := map[string]string{
		"type":           string(e.Type),
		"eventId":        e.ID,
		"appointmentId":  e.AppointmentID,
		"status":         string(e.Status),
		"scheduledStart": e.ScheduledStart.Format(time.RFC3339),
	}

	var errs []error
	for _, topic := range topicsFor(e) {
		msg := &messaging.Message{
			Topic:        topic,
			Notification: &messaging.Notification{Title: title, Body: body},
			Data:         data,
			Android: &messaging.AndroidConfig{
				Priority: "high",
			},
			APNS: &messaging.APNSConfig{
				Headers: map[string]string{"apns-priority": "10"},
			},
		}
		if _, err := n.client.Send(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("fcm send to %s: %w", topic, err))
		}
	}
	return errors.Join(errs...)
}

func topicsFor(e models.AppointmentEvent) []string {
	var topics []string
	if e.ProviderID != "" {
		topics = append(topics, "provider_"+e.ProviderID)
	}
	if e.PatientID != "" {
		topics = append(topics, "patient_"+e.PatientID)
	}
	return topics
}

func describe(e models.AppointmentEvent) (string, string) {
	when := e.ScheduledStart.Format("Mon 2 Jan 15:04")
	switch e.Type {
	case models.EventAppointmentBooked:
		return "Appointment booked", fmt.Sprintf("Appointment %s is booked for %s.", e.Number, when)
	case models.EventAppointmentCancelled:
		return "Appointment cancelled", fmt.Sprintf("Appointment %s on %s was cancelled.", e.Number, when)
	case models.EventAppointmentRescheduled:
		return "Appointment rescheduled", fmt.Sprintf("Appointment %s moved to %s.", e.Number, when)
	case models.EventAvailabilityUpdated:
		return "Schedule updated", "Working hours were updated."
	default:
		return "Appointment update", fmt.Sprintf("Appointment %s is now %s.", e.Number, e.Status)
	}
}
