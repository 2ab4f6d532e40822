package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/christopher-deriv/discord-reminders/internal/models"
	"github.com/christopher-deriv/discord-reminders/internal/repository"
)

type reminderRepository struct {
	db *sql.DB
}

// NewReminderRepository creates a new reminder repository
func NewReminderRepository(db *sql.DB) repository.ReminderRepository {
	return &reminderRepository{db: db}
}

const reminderColumns = `id, guild_id, event_name, target_time, channel_id, created_by, gif_url, recurrence, target_date, created_at, updated_at`

func (r *reminderRepository) CreateOrReplace(ctx context.Context, reminder *models.Reminder) (*models.Reminder, error) {
	// The unique constraint on the natural key makes this upsert the
	// single serialization point for concurrent confirmations of the
	// same reminder.
	query := `
		INSERT INTO reminders (guild_id, event_name, target_time, channel_id, created_by, gif_url, recurrence, target_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (guild_id, event_name, target_time, recurrence) DO UPDATE SET
			channel_id = EXCLUDED.channel_id,
			created_by = EXCLUDED.created_by,
			gif_url = EXCLUDED.gif_url,
			target_date = EXCLUDED.target_date,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at`

	now := time.Now().UTC()
	reminder.CreatedAt = now
	reminder.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, query,
		reminder.GuildID,
		reminder.EventName,
		reminder.TargetTime,
		reminder.ChannelID,
		reminder.CreatedBy,
		reminder.GIFURL,
		reminder.Recurrence,
		reminder.TargetDate,
		reminder.CreatedAt,
		reminder.UpdatedAt,
	).Scan(&reminder.ID, &reminder.CreatedAt, &reminder.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to save reminder: %w", err)
	}

	return reminder, nil
}

func (r *reminderRepository) GetByID(ctx context.Context, id int64) (*models.Reminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM reminders
		WHERE id = $1`

	reminder := &models.Reminder{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&reminder.ID,
		&reminder.GuildID,
		&reminder.EventName,
		&reminder.TargetTime,
		&reminder.ChannelID,
		&reminder.CreatedBy,
		&reminder.GIFURL,
		&reminder.Recurrence,
		&reminder.TargetDate,
		&reminder.CreatedAt,
		&reminder.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}

	return reminder, nil
}

func (r *reminderRepository) ListAll(ctx context.Context) ([]*models.Reminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM reminders
		ORDER BY target_time ASC, id ASC`

	return r.queryReminders(ctx, query)
}

func (r *reminderRepository) ListByGuild(ctx context.Context, guildID string) ([]*models.Reminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM reminders
		WHERE guild_id = $1
		ORDER BY target_time ASC, id ASC`

	return r.queryReminders(ctx, query, guildID)
}

func (r *reminderRepository) queryReminders(ctx context.Context, query string, args ...any) ([]*models.Reminder, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*models.Reminder
	for rows.Next() {
		reminder := &models.Reminder{}
		if err := rows.Scan(
			&reminder.ID,
			&reminder.GuildID,
			&reminder.EventName,
			&reminder.TargetTime,
			&reminder.ChannelID,
			&reminder.CreatedBy,
			&reminder.GIFURL,
			&reminder.Recurrence,
			&reminder.TargetDate,
			&reminder.CreatedAt,
			&reminder.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, reminder)
	}

	return reminders, rows.Err()
}

func (r *reminderRepository) UpdateDetails(ctx context.Context, id int64, eventName, targetTime string) error {
	query := `
		UPDATE reminders
		SET event_name = $2, target_time = $3, updated_at = $4
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, eventName, targetTime, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *reminderRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM reminders WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}
