package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hms/handlers"
	"hms/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("routes-secret")

func newRouter(t *testing.T) (*gin.Engine, *[]string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var hits []string
	stub := func(name string) gin.HandlerFunc {
		return func(c *gin.Context) {
			hits = append(hits, name)
			c.Status(http.StatusNoContent)
		}
	}
	hb := &handlers.HandlerBundle{
		GetSlotsHandler:              stub("slots"),
		UpdateAvailabilityHandler:    stub("availability"),
		BookAppointmentHandler:       stub("book"),
		GetAppointmentHandler:        stub("get"),
		UpdateStatusHandler:          stub("status"),
		CancelAppointmentHandler:     stub("cancel"),
		RescheduleAppointmentHandler: stub("reschedule"),
	}
	r := gin.New()
	RegisterRoutes(r, hb, Options{JWTSecret: secret, Gatherer: prometheus.NewRegistry()})
	return r, &hits
}

func call(r http.Handler, method, path, role string) int {
	req := httptest.NewRequest(method, path, nil)
	if role != "" {
		token, _ := utils.GenerateToken(secret, "user-1", role, time.Hour)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRouteCapabilities(t *testing.T) {
	r, hits := newRouter(t)

	cases := []struct {
		method, path, role string
		want               int
	}{
		{http.MethodGet, "/api/providers/doc-1/slots?date=2024-06-10", "patient", http.StatusNoContent},
		{http.MethodGet, "/api/providers/doc-1/slots?date=2024-06-10", "", http.StatusUnauthorized},
		{http.MethodPut, "/api/providers/doc-1/availability", "patient", http.StatusForbidden},
		{http.MethodPut, "/api/providers/doc-1/availability", "doctor", http.StatusNoContent},
		{http.MethodPost, "/api/appointments", "doctor", http.StatusForbidden},
		{http.MethodPost, "/api/appointments", "patient", http.StatusNoContent},
		{http.MethodGet, "/api/appointments/a-1", "staff", http.StatusNoContent},
		{http.MethodPatch, "/api/appointments/a-1/status", "patient", http.StatusNoContent},
		{http.MethodPost, "/api/appointments/a-1/cancel", "admin", http.StatusNoContent},
		{http.MethodPost, "/api/appointments/a-1/reschedule", "patient", http.StatusNoContent},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, call(r, tc.method, tc.path, tc.role), "%s %s as %q", tc.method, tc.path, tc.role)
	}
	assert.Equal(t, []string{"slots", "availability", "book", "get", "status", "cancel", "reschedule"}, *hits)
}

func TestMetricsAndHealthRoutes(t *testing.T) {
	r, _ := newRouter(t)

	require.Equal(t, http.StatusOK, call(r, http.MethodGet, "/metrics", ""))
	code := call(r, http.MethodGet, "/health", "")
	assert.Contains(t, []int{http.StatusOK, http.StatusServiceUnavailable}, code)
}
