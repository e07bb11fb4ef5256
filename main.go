package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hms/config"
	"hms/database"
	appointmentRepo "hms/database/repository/appointment"
	providerRepo "hms/database/repository/provider"
	"hms/handlers"
	"hms/middleware"
	"hms/routes"
	"hms/services/notification"
	"hms/services/scheduling"
	"hms/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// buildNotifier assembles the configured event backends behind one async fan-out.
// The returned closers flush transports that hold connections.
func buildNotifier(ctx context.Context, cfg config.Config, logger *zap.Logger) (*notification.AsyncNotifier, []func() error) {
	var (
		backends notification.MultiNotifier
		closers  []func() error
	)
	for _, name := range cfg.Notifiers() {
		switch name {
		case "log":
			backends = append(backends, notification.NewLogNotifier(logger))
		case "fcm":
			client, err := notification.NewFirebaseMessaging(ctx, cfg.FirebaseCredentialsFile)
			if err != nil {
				logger.Sugar().Fatalf("main: failed to initialize firebase messaging: %v", err)
			}
			backends = append(backends, notification.NewFCMNotifier(client))
		case "kafka":
			writer := notification.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaAppointmentTopic)
			kn := notification.NewKafkaNotifier(writer)
			backends = append(backends, kn)
			closers = append(closers, kn.Close)
		default:
			logger.Warn("main: unknown notifier ignored", zap.String("notifier", name))
		}
	}
	return notification.NewAsyncNotifier(backends, logger, 10*time.Second), closers
}

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	database.InitDB()
	utils.InitRedis()
	db := database.GetDatabase()

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelBoot()

	// repositories.
	apptRepo := appointmentRepo.NewMongoAppointmentRepo(db)
	provRepo := providerRepo.NewMongoProviderRepo(db)
	if err := apptRepo.EnsureIndexes(bootCtx); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure appointment indexes: %v", err)
	}
	if err := provRepo.EnsureIndexes(bootCtx); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure provider indexes: %v", err)
	}

	// scheduling service.
	notifier, closers := buildNotifier(bootCtx, cfg, logger)

	var locker scheduling.Locker = scheduling.NewLocalLocker()
	if cfg.LockBackend == "redis" {
		locker = scheduling.NewRedisLocker(utils.GetLockClient(), cfg.BookingLockTTL())
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	schedulingService := scheduling.NewSchedulingService(scheduling.Options{
		Appointments: apptRepo,
		Providers:    provRepo,
		Locker:       locker,
		Cache:        scheduling.NewRedisSlotCache(utils.GetCacheClient(), cfg.SlotCacheTTL(), logger),
		Notifier:     notifier,
		Metrics:      scheduling.NewMetrics(registry),
		Policy: scheduling.Policy{
			Notice:         cfg.CancellationNotice(),
			MaxReschedules: cfg.MaxReschedules,
		},
		Location:           cfg.Location(),
		DefaultSlotMinutes: cfg.DefaultSlotMinutes,
		Logger:             logger,
	})

	// Create the Gin router.
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(utils.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewProviderHandler(schedulingService),
		handlers.NewAppointmentHandler(schedulingService),
	)
	routes.RegisterRoutes(router, handlerBundle, routes.Options{
		JWTSecret:      []byte(cfg.JWTSecret),
		AllowedOrigins: cfg.CORSOrigins(),
		Gatherer:       registry,
	})

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	utils.StartHealthMonitor(monitorCtx, []*redis.Client{utils.GetCacheClient(), utils.GetLockClient()}, database.MongoClient)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	stopMonitor()

	if err := notifier.Wait(ctx); err != nil {
		logger.Warn("main: pending appointment events dropped", zap.Error(err))
	}
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logger.Warn("main: notifier close failed", zap.Error(err))
		}
	}
	if err := database.Disconnect(ctx); err != nil {
		logger.Warn("main: mongo disconnect failed", zap.Error(err))
	}
	_ = utils.GetCacheClient().Close()
	_ = utils.GetLockClient().Close()

	logger.Sugar().Info("main: server stopped gracefully")
}
