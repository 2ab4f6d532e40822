package repository

import (
	"context"
	"errors"

	"github.com/christopher-deriv/discord-reminders/internal/models"
)

// ErrNotFound is returned when the targeted reminder no longer exists, for
// example when it was deleted between listing and acting on it.
var ErrNotFound = errors.New("reminder not found")

// ReminderRepository defines the interface for reminder data operations.
//
// CreateOrReplace implements the upsert contract on the natural key
// (guild_id, event_name, target_time, recurrence): saving a reminder whose
// key collides with an existing row replaces that row's mutable fields
// instead of erroring. The backing store serializes concurrent writers on
// that key.
type ReminderRepository interface {
	CreateOrReplace(ctx context.Context, reminder *models.Reminder) (*models.Reminder, error)
	GetByID(ctx context.Context, id int64) (*models.Reminder, error)
	ListAll(ctx context.Context) ([]*models.Reminder, error)
	ListByGuild(ctx context.Context, guildID string) ([]*models.Reminder, error)
	UpdateDetails(ctx context.Context, id int64, eventName, targetTime string) error
	Delete(ctx context.Context, id int64) error
}
