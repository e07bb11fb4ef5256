package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"hms/models"

	"go.uber.org/zap"
)

// MultiNotifier fans an event out to every notifier and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, e models.AppointmentEvent) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AsyncNotifier hands events to next in the background. Notify never blocks
// on delivery and never returns an error; failures are logged.
type AsyncNotifier struct {
	next    Notifier
	logger  *zap.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewAsyncNotifier(next Notifier, logger *zap.Logger, timeout time.Duration) *AsyncNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AsyncNotifier{next: next, logger: logger, timeout: timeout}
}

func (a *AsyncNotifier) Notify(_ context.Context, e models.AppointmentEvent) error {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if err := a.next.Notify(ctx, e); err != nil {
			a.logger.Warn("appointment event delivery failed",
				zap.String("eventId", e.ID),
				zap.String("type", string(e.Type)),
				zap.String("appointmentId", e.AppointmentID),
				zap.Error(err),
			)
		}
	}()
	return nil
}

// Wait blocks until in-flight deliveries finish or ctx is done.
func (a *AsyncNotifier) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
