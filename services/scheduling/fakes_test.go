package scheduling

import (
	"context"
	"fmt"
	"sync"
	"time"

	appointmentRepo "hms/database/repository/appointment"
	providerRepo "hms/database/repository/provider"
	"hms/models"
)

// memoryAppointments mirrors the Mongo repository contract: unique slotKey
// among stored documents and compare-and-swap on version.
type memoryAppointments struct {
	mu      sync.Mutex
	byID    map[string]models.Appointment
	bySlot  map[string]string
	seq     int64
	creates int
	// findDelay widens the check-then-insert window in race tests.
	findDelay time.Duration
}

func newMemoryAppointments() *memoryAppointments {
	return &memoryAppointments{byID: map[string]models.Appointment{}, bySlot: map[string]string{}}
}

func clone(a models.Appointment) models.Appointment {
	a.StatusHistory = append([]models.StatusHistoryEntry(nil), a.StatusHistory...)
	if a.Reschedule != nil {
		r := *a.Reschedule
		r.Changes = append([]models.RescheduleChange(nil), r.Changes...)
		a.Reschedule = &r
	}
	if a.Cancellation != nil {
		c := *a.Cancellation
		a.Cancellation = &c
	}
	return a
}

func (m *memoryAppointments) Create(_ context.Context, appt *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if appt.SlotKey != "" {
		if _, taken := m.bySlot[appt.SlotKey]; taken {
			return appointmentRepo.ErrSlotTaken
		}
		m.bySlot[appt.SlotKey] = appt.ID
	}
	appt.Version = 1
	m.byID[appt.ID] = clone(*appt)
	return nil
}

func (m *memoryAppointments) GetByID(_ context.Context, id string) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, appointmentRepo.ErrNotFound
	}
	c := clone(a)
	return &c, nil
}

func (m *memoryAppointments) Update(_ context.Context, appt *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byID[appt.ID]
	if !ok || stored.Version != appt.Version {
		return appointmentRepo.ErrVersionConflict
	}
	if appt.SlotKey != "" {
		if owner, taken := m.bySlot[appt.SlotKey]; taken && owner != appt.ID {
			return appointmentRepo.ErrSlotTaken
		}
	}
	if stored.SlotKey != "" {
		delete(m.bySlot, stored.SlotKey)
	}
	if appt.SlotKey != "" {
		m.bySlot[appt.SlotKey] = appt.ID
	}
	appt.Version++
	m.byID[appt.ID] = clone(*appt)
	return nil
}

func (m *memoryAppointments) FindActiveOverlapping(_ context.Context, providerID string, from, to time.Time) ([]models.Appointment, error) {
	if m.findDelay > 0 {
		time.Sleep(m.findDelay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Appointment
	for _, a := range m.byID {
		if a.ProviderID == providerID && a.Status.OccupiesSlot() && Overlaps(from, to, a.ScheduledStart, a.ScheduledEnd) {
			out = append(out, clone(a))
		}
	}
	return out, nil
}

func (m *memoryAppointments) NextNumber(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return appointmentRepo.FormatNumber(m.seq), nil
}

// forceVersion simulates a concurrent writer.
func (m *memoryAppointments) forceVersion(id string, v int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.byID[id]
	a.Version = v
	m.byID[id] = a
}

type memoryProviders struct {
	mu        sync.Mutex
	providers map[string]models.Provider
}

func newMemoryProviders(ps ...models.Provider) *memoryProviders {
	m := &memoryProviders{providers: map[string]models.Provider{}}
	for _, p := range ps {
		m.providers[p.ID] = p
	}
	return m
}

func (m *memoryProviders) put(p models.Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[p.ID] = p
}

func (m *memoryProviders) GetByID(_ context.Context, id string) (*models.Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.providers[id]
	if !ok {
		return nil, providerRepo.ErrNotFound
	}
	return &p, nil
}

func (m *memoryProviders) UpdateAvailability(_ context.Context, id string, u models.AvailabilityUpdate, at time.Time) (*models.Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.providers[id]
	if !ok {
		return nil, providerRepo.ErrNotFound
	}
	p.Availability = u.Availability
	p.UnavailableDates = u.UnavailableDates
	if u.SlotDurationMinutes > 0 {
		p.SlotDurationMinutes = u.SlotDurationMinutes
	}
	p.UpdatedAt = at
	m.providers[id] = p
	return &p, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.AppointmentEvent
}

func (r *recordingNotifier) Notify(_ context.Context, e models.AppointmentEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingNotifier) types() []models.AppointmentEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.AppointmentEventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// recordingCache counts invalidations on top of NoopSlotCache.
type recordingCache struct {
	NoopSlotCache
	mu          sync.Mutex
	invalidated []string
}

func (c *recordingCache) Invalidate(_ context.Context, providerID, date string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, providerID+"/"+date)
}

func (c *recordingCache) InvalidateProvider(_ context.Context, providerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, providerID+"/*")
}

// noLocker grants every lock immediately, leaving only the storage constraint.
type noLocker struct{}

func (noLocker) Lock(context.Context, string) (func(), error) { return func() {}, nil }

type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func weekdayHours(start, end, breakStart, breakEnd string) models.WeeklyAvailability {
	day := models.DayAvailability{IsAvailable: true, StartTime: start, EndTime: end, BreakStart: breakStart, BreakEnd: breakEnd}
	return models.WeeklyAvailability{
		"monday":    day,
		"tuesday":   day,
		"wednesday": day,
		"thursday":  day,
		"friday":    day,
		"saturday":  {IsAvailable: false},
	}
}

func testProvider() models.Provider {
	return models.Provider{
		ID:                  "doc-1",
		Name:                "Dr. Amara Okafor",
		Availability:        weekdayHours("09:00", "17:00", "12:00", "13:00"),
		SlotDurationMinutes: 30,
		ConsultationFee:     80,
		Currency:            "USD",
		IsActive:            true,
	}
}

func utc(y int, mo time.Month, d, h, mi int) time.Time {
	return time.Date(y, mo, d, h, mi, 0, 0, time.UTC)
}

var (
	patient      = models.NewPrincipal("pat-1", models.RolePatient)
	otherPatient = models.NewPrincipal("pat-2", models.RolePatient)
	doctor       = models.NewPrincipal("doc-1", models.RoleDoctor)
	otherDoctor  = models.NewPrincipal("doc-2", models.RoleDoctor)
	staff        = models.NewPrincipal("staff-1", models.RoleStaff)
	admin        = models.NewPrincipal("admin-1", models.RoleAdmin)
)

type harness struct {
	svc      *DefaultSchedulingService
	appts    *memoryAppointments
	provs    *memoryProviders
	notifier *recordingNotifier
	cache    *recordingCache
	clock    *fixedClock
}

func newHarness(now time.Time, opts ...func(*Options)) *harness {
	h := &harness{
		appts:    newMemoryAppointments(),
		provs:    newMemoryProviders(testProvider()),
		notifier: &recordingNotifier{},
		cache:    &recordingCache{},
		clock:    &fixedClock{t: now},
	}
	o := Options{
		Appointments: h.appts,
		Providers:    h.provs,
		Locker:       NewLocalLocker(),
		Cache:        h.cache,
		Notifier:     h.notifier,
		Location:     time.UTC,
		Clock:        h.clock.Now,
	}
	for _, fn := range opts {
		fn(&o)
	}
	h.svc = NewSchedulingService(o)
	return h
}

func (h *harness) book(start time.Time) (*models.Appointment, error) {
	return h.svc.BookAppointment(context.Background(), patient, models.BookingRequest{
		ProviderID:      "doc-1",
		StartTime:       start,
		DurationMinutes: 30,
		Reason:          "annual checkup",
	})
}

func (h *harness) mustBook(start time.Time) *models.Appointment {
	a, err := h.book(start)
	if err != nil {
		panic(fmt.Sprintf("book %s: %v", start, err))
	}
	return a
}
