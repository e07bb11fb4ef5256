package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Provider endpoints
	GetSlotsHandler           gin.HandlerFunc
	UpdateAvailabilityHandler gin.HandlerFunc

	// Appointment endpoints
	BookAppointmentHandler       gin.HandlerFunc
	GetAppointmentHandler        gin.HandlerFunc
	UpdateStatusHandler          gin.HandlerFunc
	CancelAppointmentHandler     gin.HandlerFunc
	RescheduleAppointmentHandler gin.HandlerFunc
}

// NewHandlerBundle wires the bundle from the two handler groups.
func NewHandlerBundle(providers *ProviderHandler, appointments *AppointmentHandler) *HandlerBundle {
	return &HandlerBundle{
		GetSlotsHandler:              providers.GetSlotsHandler,
		UpdateAvailabilityHandler:    providers.UpdateAvailabilityHandler,
		BookAppointmentHandler:       appointments.BookAppointmentHandler,
		GetAppointmentHandler:        appointments.GetAppointmentHandler,
		UpdateStatusHandler:          appointments.UpdateStatusHandler,
		CancelAppointmentHandler:     appointments.CancelAppointmentHandler,
		RescheduleAppointmentHandler: appointments.RescheduleAppointmentHandler,
	}
}
