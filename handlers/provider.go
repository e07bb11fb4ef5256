package handlers

import (
	"net/http"
	"strconv"

	"hms/models"
	"hms/services/scheduling"
	"hms/utils"

	"github.com/gin-gonic/gin"
)

// ProviderHandler serves provider slot listings and availability management.
type ProviderHandler struct {
	Service scheduling.SchedulingService
}

func NewProviderHandler(service scheduling.SchedulingService) *ProviderHandler {
	return &ProviderHandler{Service: service}
}

// GetSlotsHandler lists slots for ?date=YYYY-MM-DD with an optional &duration= in minutes.
func (h *ProviderHandler) GetSlotsHandler(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		utils.JSONError(c, http.StatusBadRequest, "BadRequest", "Missing date query parameter")
		return
	}
	duration := 0
	if raw := c.Query("duration"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "BadRequest", "duration must be a whole number of minutes")
			return
		}
		duration = d
	}

	list, err := h.Service.GetAvailableSlots(c.Request.Context(), c.Param("providerId"), date, duration)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ProviderHandler) UpdateAvailabilityHandler(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var update models.AvailabilityUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		badRequest(c, err)
		return
	}

	provider, err := h.Service.UpdateAvailability(c.Request.Context(), actor, c.Param("providerId"), update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"provider": provider})
}
