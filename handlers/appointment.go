package handlers

import (
	"net/http"

	"hms/middleware"
	"hms/models"
	"hms/services/scheduling"
	"hms/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AppointmentHandler serves the appointment lifecycle endpoints.
type AppointmentHandler struct {
	Service scheduling.SchedulingService
}

func NewAppointmentHandler(service scheduling.SchedulingService) *AppointmentHandler {
	return &AppointmentHandler{Service: service}
}

// principal resolves the caller or renders 401.
func principal(c *gin.Context) (models.Principal, bool) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "Not authenticated")
	}
	return p, ok
}

func (h *AppointmentHandler) BookAppointmentHandler(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	appt, err := h.Service.BookAppointment(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	getLogger(c).Debug("Booked appointment", zap.String("appointmentId", appt.ID))
	c.JSON(http.StatusCreated, gin.H{"appointment": appt})
}

func (h *AppointmentHandler) GetAppointmentHandler(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	appt, err := h.Service.GetAppointment(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}

func (h *AppointmentHandler) UpdateStatusHandler(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var req models.StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	appt, err := h.Service.TransitionStatus(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}

func (h *AppointmentHandler) CancelAppointmentHandler(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var req models.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	appt, err := h.Service.CancelAppointment(c.Request.Context(), actor, c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}

func (h *AppointmentHandler) RescheduleAppointmentHandler(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var req models.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	appt, err := h.Service.RescheduleAppointment(c.Request.Context(), actor, c.Param("id"), req.NewStartTime, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}
