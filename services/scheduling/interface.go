package scheduling

import (
	"context"
	"time"

	appointmentRepo "hms/database/repository/appointment"
	providerRepo "hms/database/repository/provider"
	"hms/models"
	"hms/services/notification"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SchedulingService is the scheduling core consumed by the HTTP layer.
type SchedulingService interface {
	GetAvailableSlots(ctx context.Context, providerID, date string, durationMinutes int) (*models.SlotList, error)
	BookAppointment(ctx context.Context, actor models.Principal, req models.BookingRequest) (*models.Appointment, error)
	GetAppointment(ctx context.Context, actor models.Principal, appointmentID string) (*models.Appointment, error)
	TransitionStatus(ctx context.Context, actor models.Principal, appointmentID string, req models.StatusChangeRequest) (*models.Appointment, error)
	CancelAppointment(ctx context.Context, actor models.Principal, appointmentID, reason string) (*models.Appointment, error)
	RescheduleAppointment(ctx context.Context, actor models.Principal, appointmentID string, newStart time.Time, reason string) (*models.Appointment, error)
	UpdateAvailability(ctx context.Context, actor models.Principal, providerID string, update models.AvailabilityUpdate) (*models.Provider, error)
}

// Options wires a DefaultSchedulingService. Zero values fall back to defaults.
type Options struct {
	Appointments       appointmentRepo.AppointmentRepository
	Providers          providerRepo.ProviderRepository
	Locker             Locker
	Cache              SlotCache
	Notifier           notification.Notifier
	Metrics            *Metrics
	Policy             Policy
	Location           *time.Location
	DefaultSlotMinutes int
	LockTimeout        time.Duration
	Logger             *zap.Logger
	Clock              func() time.Time
}

// DefaultSchedulingService implements SchedulingService.
type DefaultSchedulingService struct {
	appointments       appointmentRepo.AppointmentRepository
	providers          providerRepo.ProviderRepository
	locker             Locker
	cache              SlotCache
	notifier           notification.Notifier
	metrics            *Metrics
	policy             Policy
	loc                *time.Location
	defaultSlotMinutes int
	lockTimeout        time.Duration
	logger             *zap.Logger
	now                func() time.Time
	newID              func() string
}

func NewSchedulingService(opts Options) *DefaultSchedulingService {
	s := &DefaultSchedulingService{
		appointments:       opts.Appointments,
		providers:          opts.Providers,
		locker:             opts.Locker,
		cache:              opts.Cache,
		notifier:           opts.Notifier,
		metrics:            opts.Metrics,
		policy:             opts.Policy,
		loc:                opts.Location,
		defaultSlotMinutes: opts.DefaultSlotMinutes,
		lockTimeout:        opts.LockTimeout,
		logger:             opts.Logger,
		now:                opts.Clock,
		newID:              uuid.NewString,
	}
	if s.locker == nil {
		s.locker = NewLocalLocker()
	}
	if s.cache == nil {
		s.cache = NoopSlotCache{}
	}
	if s.notifier == nil {
		s.notifier = notification.NotifierFunc(func(context.Context, models.AppointmentEvent) error { return nil })
	}
	if s.policy == (Policy{}) {
		s.policy = DefaultPolicy()
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.defaultSlotMinutes <= 0 {
		s.defaultSlotMinutes = 30
	}
	if s.lockTimeout <= 0 {
		s.lockTimeout = 5 * time.Second
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

var _ SchedulingService = (*DefaultSchedulingService)(nil)
