package models

import "time"

type AppointmentEventType string

const (
	EventAppointmentBooked      AppointmentEventType = "appointment.booked"
	EventAppointmentStatus      AppointmentEventType = "appointment.status_changed"
	EventAppointmentCancelled   AppointmentEventType = "appointment.cancelled"
	EventAppointmentRescheduled AppointmentEventType = "appointment.rescheduled"
	EventAvailabilityUpdated    AppointmentEventType = "provider.availability_updated"
)

// AppointmentEvent is published after every successful scheduling write.
type AppointmentEvent struct {
	ID             string               `json:"id"`
	Type           AppointmentEventType `json:"type"`
	AppointmentID  string               `json:"appointmentId,omitempty"`
	Number         string               `json:"number,omitempty"`
	ProviderID     string               `json:"providerId"`
	PatientID      string               `json:"patientId,omitempty"`
	Status         AppointmentStatus    `json:"status,omitempty"`
	PreviousStatus AppointmentStatus    `json:"previousStatus,omitempty"`
	ScheduledStart time.Time            `json:"scheduledStart,omitempty"`
	PreviousStart  *time.Time           `json:"previousStart,omitempty"`
	ActorID        string               `json:"actorId"`
	Reason         string               `json:"reason,omitempty"`
	OccurredAt     time.Time            `json:"occurredAt"`
}
