package models

import (
	"fmt"
	"strings"
	"time"
)

// Recurrence defines how often a reminder fires
type Recurrence string

const (
	RecurrenceOnce    Recurrence = "once"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

// Time and date layouts used everywhere reminders are parsed or compared.
// All reminder times are UTC wall-clock values.
const (
	TimeLayout = "15:04"
	DateLayout = "2006-01-02"
)

// MaxEventNameLength bounds the display length of an event name.
const MaxEventNameLength = 100

// Valid reports whether r is one of the four supported recurrence kinds.
func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceOnce, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	}
	return false
}

// RequiresDate reports whether a reminder with this recurrence needs a
// target date. Daily reminders are defined by time of day alone.
func (r Recurrence) RequiresDate() bool {
	return r != RecurrenceDaily
}

// Reminder represents a scheduled guild reminder
type Reminder struct {
	ID         int64      `json:"id" db:"id"`
	GuildID    string     `json:"guild_id" db:"guild_id"`
	EventName  string     `json:"event_name" db:"event_name"`
	TargetTime string     `json:"target_time" db:"target_time"`
	ChannelID  string     `json:"channel_id" db:"channel_id"`
	CreatedBy  string     `json:"created_by" db:"created_by"`
	GIFURL     string     `json:"gif_url" db:"gif_url"`
	Recurrence Recurrence `json:"recurrence" db:"recurrence"`
	TargetDate string     `json:"target_date" db:"target_date"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// Fires reports whether the reminder should fire at the given instant.
// Evaluation is at minute resolution in UTC and is pure: calling it twice
// within the same minute gives the same answer.
//
// Weekly and monthly reminders reuse only the weekday / day-of-month
// component of the stored date; the rest of the date records when the
// reminder was anchored. A monthly reminder stored on the 31st never fires
// in months with fewer days. There is deliberately no clamping to the last
// day of the month.
func (r *Reminder) Fires(now time.Time) bool {
	now = now.UTC()
	if now.Format(TimeLayout) != r.TargetTime {
		return false
	}

	switch r.Recurrence {
	case RecurrenceDaily:
		return true
	case RecurrenceOnce:
		return now.Format(DateLayout) == r.TargetDate
	case RecurrenceWeekly:
		target, err := time.Parse(DateLayout, r.TargetDate)
		if err != nil {
			return false
		}
		return now.Weekday() == target.Weekday()
	case RecurrenceMonthly:
		target, err := time.Parse(DateLayout, r.TargetDate)
		if err != nil {
			return false
		}
		return now.Day() == target.Day()
	}

	return false
}

// Caption returns the footer text describing the reminder's recurrence.
func (r *Reminder) Caption() string {
	switch r.Recurrence {
	case RecurrenceOnce:
		return "One-time reminder"
	case RecurrenceDaily:
		return "Daily reminder"
	case RecurrenceWeekly:
		return "Weekly reminder"
	case RecurrenceMonthly:
		return "Monthly reminder"
	}
	return "Reminder"
}

// Label is the display form used when listing reminders for editing.
func (r *Reminder) Label() string {
	return fmt.Sprintf("%s (%s UTC)", r.EventName, r.TargetTime)
}

// ValidationError reports malformed user input. Its message is safe to
// show to the user who typed the value.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// ValidateEventName trims the name and checks its display bounds.
func ValidateEventName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", validationErrorf("event name must not be empty")
	}
	if len(name) > MaxEventNameLength {
		return "", validationErrorf("event name must be at most %d characters", MaxEventNameLength)
	}
	return name, nil
}

// ParseTargetTime validates an HH:MM 24-hour time and returns it in
// canonical zero-padded form.
func ParseTargetTime(value string) (string, error) {
	t, err := time.Parse(TimeLayout, strings.TrimSpace(value))
	if err != nil {
		return "", validationErrorf("invalid time %q, expected HH:MM (24-hour)", value)
	}
	return t.Format(TimeLayout), nil
}

// ParseTargetDate validates a YYYY-MM-DD calendar date and returns it in
// canonical form. time.Parse rejects impossible dates such as 2024-02-30.
func ParseTargetDate(value string) (string, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return "", validationErrorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return d.Format(DateLayout), nil
}
