package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/christopher-deriv/discord-reminders/internal/metrics"
	"github.com/christopher-deriv/discord-reminders/internal/models"
	"github.com/christopher-deriv/discord-reminders/internal/repository"
)

// Notifier is the external message-delivery collaborator.
type Notifier interface {
	SendReminder(ctx context.Context, channelID, text string, everyone bool, imageURL, caption string) error
}

// Service is the business logic layer: reminder listing and mutation for
// the edit flow, plus the scheduler loop in scheduler.go.
type Service struct {
	Reminders repository.ReminderRepository

	notifier Notifier
	logger   *logrus.Logger
	metrics  *metrics.Metrics

	defaultGIFURL string
	tickInterval  time.Duration
	deleteGrace   time.Duration

	firedOnce *onceGuard
}

// Options carries the scheduler configuration resolved at startup.
type Options struct {
	DefaultGIFURL string
	TickInterval  time.Duration
	DeleteGrace   time.Duration
}

// New creates a new Service with all required dependencies.
func New(reminders repository.ReminderRepository, notifier Notifier, logger *logrus.Logger, m *metrics.Metrics, opts Options) *Service {
	if opts.TickInterval <= 0 {
		opts.TickInterval = 60 * time.Second
	}
	if opts.DeleteGrace <= 0 {
		opts.DeleteGrace = 5 * time.Second
	}

	return &Service{
		Reminders:     reminders,
		notifier:      notifier,
		logger:        logger,
		metrics:       m,
		defaultGIFURL: opts.DefaultGIFURL,
		tickInterval:  opts.TickInterval,
		deleteGrace:   opts.DeleteGrace,
		firedOnce:     newOnceGuard(),
	}
}

// ListGuildReminders returns the reminders stored for a guild.
func (s *Service) ListGuildReminders(ctx context.Context, guildID string) ([]*models.Reminder, error) {
	reminders, err := s.Reminders.ListByGuild(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("list reminders for guild %s: %w", guildID, err)
	}
	return reminders, nil
}

// GetReminder fetches one reminder by ID. A vanished target surfaces as
// repository.ErrNotFound.
func (s *Service) GetReminder(ctx context.Context, id int64) (*models.Reminder, error) {
	return s.Reminders.GetByID(ctx, id)
}

// UpdateReminderDetails validates and applies a partial update of a
// reminder's name and time, the two fields the edit form exposes.
func (s *Service) UpdateReminderDetails(ctx context.Context, id int64, eventName, targetTime string) (*models.Reminder, error) {
	name, err := models.ValidateEventName(eventName)
	if err != nil {
		return nil, err
	}
	parsedTime, err := models.ParseTargetTime(targetTime)
	if err != nil {
		return nil, err
	}

	if err := s.Reminders.UpdateDetails(ctx, id, name, parsedTime); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"reminder_id": id,
		"event_name":  name,
		"target_time": parsedTime,
	}).Info("Reminder updated")

	return s.Reminders.GetByID(ctx, id)
}

// DeleteReminder removes a reminder by ID, unconditionally.
func (s *Service) DeleteReminder(ctx context.Context, id int64) error {
	if err := s.Reminders.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.WithField("reminder_id", id).Info("Reminder deleted")
	return nil
}
