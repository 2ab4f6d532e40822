package service

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/christopher-deriv/discord-reminders/internal/models"
)

// StartScheduler runs the background loop that evaluates stored reminders
// once per tick and delivers the ones that fire. It waits for ready to be
// closed before the first tick so deliveries never race the gateway coming
// up, then blocks until the context is cancelled; launch it in its own
// goroutine.
func (s *Service) StartScheduler(ctx context.Context, ready <-chan struct{}) {
	select {
	case <-ctx.Done():
		return
	case <-ready:
	}

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	s.logger.Info("Reminder scheduler started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Reminder scheduler stopped")
			return
		case <-ticker.C:
			s.processTick(ctx, time.Now().UTC())
		}
	}
}

// processTick snapshots all reminders and fires the matching ones. One
// record's failure never blocks the rest: delivery errors are aggregated
// and logged once, and an evaluation panic is contained per record.
func (s *Service) processTick(ctx context.Context, now time.Time) {
	reminders, err := s.Reminders.ListAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list reminders, skipping tick")
		return
	}

	var errs *multierror.Error
	for _, r := range reminders {
		if err := s.fireIfDue(ctx, r, now); err != nil {
			s.metrics.DeliveryErrors.Inc()
			errs = multierror.Append(errs, err)
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		s.logger.WithError(err).Warn("Some reminders failed to deliver this tick")
	}

	s.metrics.Ticks.Inc()
}

// fireIfDue evaluates one reminder and, when it matches the current
// minute, dispatches its delivery. One-time reminders additionally get a
// deferred deletion, scheduled only after delivery was dispatched.
func (s *Service) fireIfDue(ctx context.Context, r *models.Reminder, now time.Time) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.WithFields(logrus.Fields{
				"reminder_id": r.ID,
				"panic":       rec,
			}).Error("Panic while evaluating reminder")
			err = nil
		}
	}()

	if !r.Fires(now) {
		return nil
	}

	if r.Recurrence == models.RecurrenceOnce && !s.firedOnce.mark(r.ID) {
		// Already fired and awaiting its deferred deletion; never fire
		// a one-time reminder twice.
		return nil
	}

	s.logger.WithFields(logrus.Fields{
		"reminder_id": r.ID,
		"event_name":  r.EventName,
		"channel_id":  r.ChannelID,
		"recurrence":  r.Recurrence,
	}).Info("Sending reminder")

	imageURL := r.GIFURL
	if imageURL == "" {
		imageURL = s.defaultGIFURL
	}

	deliveryErr := s.notifier.SendReminder(ctx, r.ChannelID, "~ "+r.EventName, true, imageURL, r.Caption())
	if deliveryErr == nil {
		s.metrics.Fired.WithLabelValues(string(r.Recurrence)).Inc()
	}

	// Deletion is deferred even when delivery failed: the reminder's
	// single scheduled occasion has passed either way.
	if r.Recurrence == models.RecurrenceOnce {
		s.scheduleDeletion(r.ID)
	}

	return deliveryErr
}

// scheduleDeletion removes a fired one-time reminder after the configured
// grace period, giving delivery time to complete first. The timer has no
// cancellation path; a crash before it runs leaves the row behind and the
// reminder can fire once more after restart. That residual window is a
// known limitation.
func (s *Service) scheduleDeletion(id int64) {
	time.AfterFunc(s.deleteGrace, func() {
		defer s.firedOnce.clear(id)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.Reminders.Delete(ctx, id); err != nil {
			s.logger.WithError(err).WithField("reminder_id", id).Error("Failed to delete one-time reminder")
			return
		}

		s.metrics.OnceDeleted.Inc()
		s.logger.WithField("reminder_id", id).Info("Deleted one-time reminder")
	})
}

// onceGuard tracks one-time reminders that fired but are still waiting on
// their deferred deletion, so overlapping ticks cannot fire them again.
type onceGuard struct {
	mu    sync.Mutex
	fired map[int64]struct{}
}

func newOnceGuard() *onceGuard {
	return &onceGuard{fired: make(map[int64]struct{})}
}

// mark records id as fired and reports whether this call was the first.
func (g *onceGuard) mark(id int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.fired[id]; ok {
		return false
	}
	g.fired[id] = struct{}{}
	return true
}

func (g *onceGuard) clear(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.fired, id)
}
