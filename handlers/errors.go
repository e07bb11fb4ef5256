package handlers

import (
	"net/http"

	"hms/services/scheduling"
	"hms/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps a domain error kind to its HTTP status.
func statusFor(kind scheduling.ErrorKind) int {
	switch kind {
	case scheduling.KindNotFound:
		return http.StatusNotFound
	case scheduling.KindPastTime, scheduling.KindOutsideAvailability, scheduling.KindInvalidRequest:
		return http.StatusUnprocessableEntity
	case scheduling.KindSlotUnavailable,
		scheduling.KindInvalidTransition,
		scheduling.KindNotCancellable,
		scheduling.KindNotReschedulable,
		scheduling.KindRescheduleLimitExceeded,
		scheduling.KindConcurrentUpdate:
		return http.StatusConflict
	case scheduling.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError renders err as {errorKind, message}. Infrastructure errors are
// logged and hidden behind a generic message.
func respondError(c *gin.Context, err error) {
	kind := scheduling.KindOf(err)
	if kind == "" {
		getLogger(c).Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Internal", "An unexpected error occurred. Please try again later.")
		return
	}
	utils.JSONError(c, statusFor(kind), string(kind), err.Error())
}

func badRequest(c *gin.Context, err error) {
	utils.JSONError(c, http.StatusBadRequest, "BadRequest", "Invalid request payload: "+err.Error())
}
