// Package wizard implements the multi-step reminder setup flow. A session
// accumulates a draft reminder across independent, user-paced interactions
// (channel choice, recurrence choice, detail entry, GIF pick) and performs
// exactly one store write when the user confirms.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/christopher-deriv/discord-reminders/internal/models"
	"github.com/christopher-deriv/discord-reminders/internal/repository"
)

// State identifies the step a session is waiting on.
type State int

const (
	StateChannel State = iota
	StateRecurrence
	StateDetails
	StateMedia
)

// MaxCandidates caps how many GIF candidates a session keeps. Matches the
// select menu limit of the chat platform.
const MaxCandidates = 25

// DefaultSearchTerm is used when the user leaves the GIF theme empty.
const DefaultSearchTerm = "reminder"

var (
	// ErrSessionNotFound means the token does not match any live session,
	// typically a click on a stale wizard message after the session was
	// cancelled, completed, or restarted.
	ErrSessionNotFound = errors.New("setup session not found or expired")

	// ErrInvalidStep means the action does not belong to the session's
	// current step, e.g. a confirm arriving before details were entered.
	ErrInvalidStep = errors.New("action does not match the current setup step")

	// ErrNoChannels means the actor has no eligible delivery channels.
	ErrNoChannels = errors.New("no eligible channels to deliver reminders to")

	// ErrNoResults means the GIF search returned nothing; the session is
	// terminated without writing anything.
	ErrNoResults = errors.New("no GIFs found for that search term")
)

// ValidationError reports malformed user input on the details step. The
// session stays on the step so the user can retry.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// ChannelOption is an eligible delivery channel offered on the first step.
type ChannelOption struct {
	ID   string
	Name string
}

// Session is one in-flight setup wizard. The Token is threaded through
// every interaction component so that clicks on outdated wizard messages
// can be told apart from the live session.
type Session struct {
	Token     string
	State     State
	Draft     models.Draft
	Channels  []ChannelOption
	StartedAt time.Time
}

// GIFSearcher is the external media-search collaborator.
type GIFSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]models.GIFCandidate, error)
}

// Manager owns all live sessions and applies step transitions. One session
// exists per (guild, user); starting a new wizard replaces the previous
// session, whose token then fails as stale.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session // token -> session
	owners   map[string]string   // guild:user -> token

	store  repository.ReminderRepository
	search GIFSearcher
	logger *logrus.Logger
}

// NewManager creates a Manager writing confirmed drafts to store.
func NewManager(store repository.ReminderRepository, search GIFSearcher, logger *logrus.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		owners:   make(map[string]string),
		store:    store,
		search:   search,
		logger:   logger,
	}
}

func ownerKey(guildID, userID string) string {
	return guildID + ":" + userID
}

// Begin starts a session for the given actor. The caller supplies the
// channels the actor may deliver to; authorization has already happened at
// wizard entry. With exactly one eligible channel the channel step is
// skipped.
func (m *Manager) Begin(guildID, userID string, channels []ChannelOption) (*Session, error) {
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}

	session := &Session{
		Token: uuid.NewString(),
		State: StateChannel,
		Draft: models.Draft{
			GuildID:   guildID,
			CreatedBy: userID,
			Selected:  -1,
		},
		Channels:  channels,
		StartedAt: time.Now(),
	}

	if len(channels) == 1 {
		session.Draft.ChannelID = channels[0].ID
		session.State = StateRecurrence
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := ownerKey(guildID, userID)
	if old, ok := m.owners[key]; ok {
		delete(m.sessions, old)
	}
	m.owners[key] = session.Token
	m.sessions[session.Token] = session

	m.logger.WithFields(logrus.Fields{
		"guild_id": guildID,
		"user_id":  userID,
	}).Info("Reminder setup started")

	return session.snapshot(), nil
}

// ChooseChannel records the delivery channel and advances to recurrence
// selection.
func (m *Manager) ChooseChannel(token, channelID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.lookup(token, StateChannel)
	if err != nil {
		return nil, err
	}

	var found bool
	for _, ch := range session.Channels {
		if ch.ID == channelID {
			found = true
			break
		}
	}
	if !found {
		return nil, validationErrorf("channel %s is not an eligible destination", channelID)
	}

	session.Draft.ChannelID = channelID
	session.State = StateRecurrence
	return session.snapshot(), nil
}

// ChooseRecurrence records the recurrence kind and advances to detail
// entry.
func (m *Manager) ChooseRecurrence(token string, rec models.Recurrence) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.lookup(token, StateRecurrence)
	if err != nil {
		return nil, err
	}

	if !rec.Valid() {
		return nil, validationErrorf("unknown recurrence %q", rec)
	}

	session.Draft.Recurrence = rec
	session.State = StateDetails
	return session.snapshot(), nil
}

// SubmitDetails validates the detail form, then runs the GIF search and
// advances to media selection. Validation happens before any external
// call; a ValidationError leaves the session on the details step. Search
// failures degrade to an empty result, and an empty result ends the
// session without a write.
func (m *Manager) SubmitDetails(ctx context.Context, token, name, timeStr, dateStr, searchTerm string) (*Session, error) {
	m.mu.Lock()
	session, err := m.lookup(token, StateDetails)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}

	eventName, err := models.ValidateEventName(name)
	if err != nil {
		m.mu.Unlock()
		return nil, &ValidationError{msg: err.Error()}
	}
	targetTime, err := models.ParseTargetTime(timeStr)
	if err != nil {
		m.mu.Unlock()
		return nil, &ValidationError{msg: err.Error()}
	}

	var targetDate string
	if session.Draft.Recurrence.RequiresDate() {
		targetDate, err = models.ParseTargetDate(dateStr)
		if err != nil {
			m.mu.Unlock()
			return nil, &ValidationError{msg: err.Error()}
		}
	}

	if searchTerm == "" {
		searchTerm = DefaultSearchTerm
	}
	m.mu.Unlock()

	// The search runs outside the lock so a slow lookup cannot stall
	// other sessions.
	candidates, err := m.search.Search(ctx, searchTerm, MaxCandidates)
	if err != nil {
		m.logger.WithError(err).WithField("query", searchTerm).Error("GIF search failed")
		candidates = nil
	}
	if len(candidates) > MaxCandidates {
		candidates = candidates[:MaxCandidates]
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Re-check: the session may have been cancelled or restarted while
	// the search was in flight.
	session, lookupErr := m.lookup(token, StateDetails)
	if lookupErr != nil {
		return nil, lookupErr
	}

	if len(candidates) == 0 {
		m.remove(session)
		return nil, ErrNoResults
	}

	session.Draft.EventName = eventName
	session.Draft.TargetTime = targetTime
	session.Draft.TargetDate = targetDate
	session.Draft.Candidates = candidates
	session.Draft.Selected = 0
	session.State = StateMedia
	return session.snapshot(), nil
}

// SelectCandidate highlights another GIF candidate. Only the preview
// changes; nothing is committed.
func (m *Manager) SelectCandidate(token string, index int) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.lookup(token, StateMedia)
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= len(session.Draft.Candidates) {
		return nil, validationErrorf("candidate %d is out of range", index)
	}

	session.Draft.Selected = index
	return session.snapshot(), nil
}

// Confirm writes the draft through the store as a single create-or-replace
// and ends the session. The session is gone afterwards whether or not the
// write succeeded; a failed write is reported and the user starts over.
func (m *Manager) Confirm(ctx context.Context, token string) (*models.Reminder, error) {
	m.mu.Lock()
	session, err := m.lookup(token, StateMedia)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.remove(session)
	reminder := session.Draft.Reminder()
	m.mu.Unlock()

	saved, err := m.store.CreateOrReplace(ctx, reminder)
	if err != nil {
		m.logger.WithError(err).WithFields(logrus.Fields{
			"guild_id":   reminder.GuildID,
			"event_name": reminder.EventName,
		}).Error("Failed to save reminder")
		return nil, fmt.Errorf("save reminder: %w", err)
	}

	m.logger.WithFields(logrus.Fields{
		"reminder_id": saved.ID,
		"guild_id":    saved.GuildID,
		"event_name":  saved.EventName,
		"recurrence":  saved.Recurrence,
		"created_by":  saved.CreatedBy,
	}).Info("Reminder saved")

	return saved, nil
}

// Cancel discards the session's draft. No write happens.
func (m *Manager) Cancel(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[token]
	if !ok {
		return ErrSessionNotFound
	}
	m.remove(session)

	m.logger.WithFields(logrus.Fields{
		"guild_id": session.Draft.GuildID,
		"user_id":  session.Draft.CreatedBy,
	}).Info("Reminder setup cancelled")
	return nil
}

// lookup fetches the session for token and checks it is on the expected
// step. Callers hold m.mu.
func (m *Manager) lookup(token string, want State) (*Session, error) {
	session, ok := m.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.State != want {
		return nil, ErrInvalidStep
	}
	return session, nil
}

// remove drops a session. Callers hold m.mu.
func (m *Manager) remove(session *Session) {
	delete(m.sessions, session.Token)
	key := ownerKey(session.Draft.GuildID, session.Draft.CreatedBy)
	if m.owners[key] == session.Token {
		delete(m.owners, key)
	}
}

// snapshot returns a copy safe to read after the manager lock is released.
func (s *Session) snapshot() *Session {
	copied := *s
	copied.Channels = append([]ChannelOption(nil), s.Channels...)
	copied.Draft.Candidates = append([]models.GIFCandidate(nil), s.Draft.Candidates...)
	return &copied
}
