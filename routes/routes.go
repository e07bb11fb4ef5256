package routes

import (
	"net/http"
	"time"

	"hms/handlers"
	"hms/middleware"
	"hms/models"
	"hms/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options carries what route registration needs beyond the handlers.
type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
}

// RegisterProviderRoutes registers slot listing and availability management.
func RegisterProviderRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	api := r.Group("/api/providers")
	{
		api.Use(middleware.JWTAuthMiddleware(opts.JWTSecret))
		api.GET("/:providerId/slots", middleware.RequireCapability(models.CapViewSlots), hb.GetSlotsHandler)
		api.PUT("/:providerId/availability", middleware.RequireCapability(models.CapManageAvailability), hb.UpdateAvailabilityHandler)
	}
}

// RegisterAppointmentRoutes registers the appointment lifecycle endpoints.
// Status changes are authorized per target status by the scheduling service.
func RegisterAppointmentRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	api := r.Group("/api/appointments")
	{
		api.Use(middleware.JWTAuthMiddleware(opts.JWTSecret))
		api.POST("", middleware.RequireCapability(models.CapBook), hb.BookAppointmentHandler)
		api.GET("/:id", middleware.RequireCapability(models.CapViewAppointments), hb.GetAppointmentHandler)
		api.PATCH("/:id/status", hb.UpdateStatusHandler)
		api.POST("/:id/cancel", middleware.RequireCapability(models.CapCancel), hb.CancelAppointmentHandler)
		api.POST("/:id/reschedule", middleware.RequireCapability(models.CapReschedule), hb.RescheduleAppointmentHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint backed by the last dependency check.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		if !status.Healthy() {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "healthy": status.Healthy()})
	})
}

// RegisterMetricsRoute exposes Prometheus metrics.
func RegisterMetricsRoute(r *gin.Engine, gatherer prometheus.Gatherer) {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsConfig := cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	// Credentials cannot be combined with a wildcard origin.
	if len(origins) != 1 || origins[0] != "*" {
		corsConfig.AllowCredentials = true
	}
	r.Use(cors.New(corsConfig))

	RegisterHealthRoute(r)
	RegisterMetricsRoute(r, opts.Gatherer)
	RegisterProviderRoutes(r, hb, opts)
	RegisterAppointmentRoutes(r, hb, opts)
}
