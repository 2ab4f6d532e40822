package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christopher-deriv/discord-reminders/internal/auth"
	"github.com/christopher-deriv/discord-reminders/internal/metrics"
	"github.com/christopher-deriv/discord-reminders/internal/models"
	"github.com/christopher-deriv/discord-reminders/internal/repository"
	"github.com/christopher-deriv/discord-reminders/internal/service"
	"github.com/christopher-deriv/discord-reminders/internal/wizard"
	"github.com/christopher-deriv/discord-reminders/pkg/discord"
)

type memoryRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*models.Reminder
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: make(map[int64]*models.Reminder)}
}

func (r *memoryRepo) CreateOrReplace(_ context.Context, reminder *models.Reminder) (*models.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.rows {
		if existing.GuildID == reminder.GuildID &&
			existing.EventName == reminder.EventName &&
			existing.TargetTime == reminder.TargetTime &&
			existing.Recurrence == reminder.Recurrence {
			reminder.ID = id
			r.rows[id] = reminder
			return reminder, nil
		}
	}
	r.nextID++
	reminder.ID = r.nextID
	r.rows[reminder.ID] = reminder
	return reminder, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id int64) (*models.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return row, nil
}

func (r *memoryRepo) ListAll(_ context.Context) ([]*models.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Reminder
	for _, row := range r.rows {
		out = append(out, row)
	}
	return out, nil
}

func (r *memoryRepo) ListByGuild(_ context.Context, guildID string) ([]*models.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Reminder
	for _, row := range r.rows {
		if row.GuildID == guildID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *memoryRepo) UpdateDetails(_ context.Context, id int64, eventName, targetTime string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	row.EventName = eventName
	row.TargetTime = targetTime
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

type fakeChannels struct {
	channels []discord.Channel
	err      error
}

func (f *fakeChannels) GuildChannels(_ context.Context, _ string) ([]discord.Channel, error) {
	return f.channels, f.err
}

type fakeGIFSearch struct{ results []models.GIFCandidate }

func (f *fakeGIFSearch) Search(_ context.Context, _ string, _ int) ([]models.GIFCandidate, error) {
	return f.results, nil
}

type fixture struct {
	handler *Interactions
	repo    *memoryRepo
}

func newFixture(t *testing.T, channels []discord.Channel) *fixture {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	repo := newMemoryRepo()
	svc := service.New(repo, nil, logger, metrics.New(prometheus.NewRegistry()), service.Options{})
	search := &fakeGIFSearch{results: []models.GIFCandidate{
		{URL: "https://gifs.example/a.gif", Title: "First"},
		{URL: "https://gifs.example/b.gif", Title: "Second"},
	}}
	wiz := wizard.NewManager(repo, search, logger)
	checker := auth.NewChecker([]string{"mod-role"}, logger)

	return &fixture{
		handler: NewInteractions(svc, wiz, checker, &fakeChannels{channels: channels}, nil, logger),
		repo:    repo,
	}
}

func adminMember() discord.Member {
	return discord.Member{
		User:        discord.User{ID: "u1", Username: "admin"},
		Permissions: "8", // administrator bit
	}
}

func command(name string, member discord.Member) *discord.Interaction {
	return &discord.Interaction{
		Type:    discord.InteractionTypeCommand,
		GuildID: "g1",
		Member:  member,
		Data:    discord.InteractionData{Name: name},
	}
}

func componentClick(customID string, values ...string) *discord.Interaction {
	return &discord.Interaction{
		Type:    discord.InteractionTypeComponent,
		GuildID: "g1",
		Member:  adminMember(),
		Data:    discord.InteractionData{CustomID: customID, Values: values},
	}
}

func modalSubmit(customID string, fields map[string]string) *discord.Interaction {
	var components []discord.Component
	for id, value := range fields {
		components = append(components, discord.Component{
			Type:     discord.ComponentTypeTextInput,
			CustomID: id,
			Value:    value,
		})
	}
	return &discord.Interaction{
		Type:    discord.InteractionTypeModalSubmit,
		GuildID: "g1",
		Member:  adminMember(),
		Data: discord.InteractionData{
			CustomID:   customID,
			Components: []discord.ActionRow{discord.NewActionRow(components...)},
		},
	}
}

// firstCustomID digs the first component custom ID out of a response.
func firstCustomID(t *testing.T, resp *discord.InteractionResponse) string {
	t.Helper()
	require.NotNil(t, resp.Data)
	require.NotEmpty(t, resp.Data.Components)
	require.NotEmpty(t, resp.Data.Components[0].Components)
	return resp.Data.Components[0].Components[0].CustomID
}

func tokenOf(t *testing.T, customID string) string {
	t.Helper()
	parts := strings.SplitN(customID, ":", 3)
	require.Len(t, parts, 3)
	return parts[2]
}

func TestHandlePing(t *testing.T) {
	f := newFixture(t, nil)

	resp := f.handler.Handle(context.Background(), &discord.Interaction{Type: discord.InteractionTypePing})
	assert.Equal(t, discord.ResponseTypePong, resp.Type)
	assert.Nil(t, resp.Data)
}

func TestHandleCommandUnauthorized(t *testing.T) {
	f := newFixture(t, []discord.Channel{{ID: "c1", Name: "general"}})

	member := discord.Member{
		User:        discord.User{ID: "u2"},
		Roles:       []string{"random-role"},
		Permissions: "0",
	}

	resp := f.handler.Handle(context.Background(), command(CommandSetup, member))
	assert.Equal(t, deniedMessage, resp.Data.Content)
	assert.Equal(t, discord.MessageFlagEphemeral, resp.Data.Flags)
}

func TestHandleCommandAuthorizedByRole(t *testing.T) {
	f := newFixture(t, []discord.Channel{{ID: "c1", Name: "general"}})

	member := discord.Member{
		User:        discord.User{ID: "u2"},
		Roles:       []string{"mod-role"},
		Permissions: "0",
	}

	resp := f.handler.Handle(context.Background(), command(CommandSetup, member))
	assert.NotEqual(t, deniedMessage, resp.Data.Content)
}

func TestSetupFlowEndToEnd(t *testing.T) {
	f := newFixture(t, []discord.Channel{
		{ID: "c1", Name: "general"},
		{ID: "c2", Name: "raids"},
	})
	ctx := context.Background()

	// /remind-setup -> channel select
	resp := f.handler.Handle(ctx, command(CommandSetup, adminMember()))
	require.Equal(t, discord.ResponseTypeMessage, resp.Type)
	channelID := firstCustomID(t, resp)
	require.True(t, strings.HasPrefix(channelID, "setup:chan:"))
	token := tokenOf(t, channelID)

	// channel choice -> recurrence select
	resp = f.handler.Handle(ctx, componentClick(channelID, "c2"))
	require.Equal(t, discord.ResponseTypeUpdateMessage, resp.Type)
	recID := firstCustomID(t, resp)
	require.Equal(t, "setup:rec:"+token, recID)

	// recurrence choice -> details modal
	resp = f.handler.Handle(ctx, componentClick(recID, "weekly"))
	require.Equal(t, discord.ResponseTypeModal, resp.Type)
	require.Equal(t, "setup:details:"+token, resp.Data.CustomID)

	// The weekly form carries a date field.
	var fieldIDs []string
	for _, row := range resp.Data.Components {
		for _, comp := range row.Components {
			fieldIDs = append(fieldIDs, comp.CustomID)
		}
	}
	assert.Contains(t, fieldIDs, fieldTargetDate)

	// details submit -> GIF preview
	resp = f.handler.Handle(ctx, modalSubmit(resp.Data.CustomID, map[string]string{
		fieldEventName:  "Raid",
		fieldTargetTime: "20:00",
		fieldTargetDate: "2024-01-01",
		fieldSearchTerm: "dragon",
	}))
	require.Equal(t, discord.ResponseTypeMessage, resp.Type)
	require.Equal(t, "setup:gif:"+token, firstCustomID(t, resp))
	require.NotEmpty(t, resp.Data.Embeds)

	// switch candidates, then confirm
	resp = f.handler.Handle(ctx, componentClick("setup:gif:"+token, "1"))
	require.Equal(t, discord.ResponseTypeUpdateMessage, resp.Type)

	resp = f.handler.Handle(ctx, componentClick("setup:confirm:"+token))
	require.Equal(t, discord.ResponseTypeUpdateMessage, resp.Type)
	assert.Contains(t, resp.Data.Content, "Reminder set for **Raid**")

	rows, err := f.repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "c2", rows[0].ChannelID)
	assert.Equal(t, models.RecurrenceWeekly, rows[0].Recurrence)
	assert.Equal(t, "https://gifs.example/b.gif", rows[0].GIFURL)

	// the token is spent
	resp = f.handler.Handle(ctx, componentClick("setup:confirm:"+token))
	assert.Contains(t, resp.Data.Content, "expired")
}

func TestSetupCancelMidFlow(t *testing.T) {
	f := newFixture(t, []discord.Channel{{ID: "c1", Name: "general"}})
	ctx := context.Background()

	// Single channel skips straight to recurrence.
	resp := f.handler.Handle(ctx, command(CommandSetup, adminMember()))
	recID := firstCustomID(t, resp)
	require.True(t, strings.HasPrefix(recID, "setup:rec:"))
	token := tokenOf(t, recID)

	resp = f.handler.Handle(ctx, componentClick("setup:cancel:"+token))
	assert.Equal(t, "Reminder setup cancelled.", resp.Data.Content)

	rows, err := f.repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSetupNoEligibleChannels(t *testing.T) {
	f := newFixture(t, nil)

	resp := f.handler.Handle(context.Background(), command(CommandSetup, adminMember()))
	assert.Contains(t, resp.Data.Content, "don't have permission to send messages")
}

func TestSetupChannelLookupFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.handler.channels = &fakeChannels{err: errors.New("discord down")}

	resp := f.handler.Handle(context.Background(), command(CommandSetup, adminMember()))
	assert.Contains(t, resp.Data.Content, "Could not look up")
}

func TestSetupValidationErrorSurfaced(t *testing.T) {
	f := newFixture(t, []discord.Channel{{ID: "c1", Name: "general"}})
	ctx := context.Background()

	resp := f.handler.Handle(ctx, command(CommandSetup, adminMember()))
	token := tokenOf(t, firstCustomID(t, resp))

	resp = f.handler.Handle(ctx, componentClick("setup:rec:"+token, "daily"))
	require.Equal(t, discord.ResponseTypeModal, resp.Type)

	resp = f.handler.Handle(ctx, modalSubmit("setup:details:"+token, map[string]string{
		fieldEventName:  "Standup",
		fieldTargetTime: "25:61",
	}))
	assert.Contains(t, resp.Data.Content, "invalid time")

	// The session survived the validation error and accepts a retry.
	resp = f.handler.Handle(ctx, modalSubmit("setup:details:"+token, map[string]string{
		fieldEventName:  "Standup",
		fieldTargetTime: "09:00",
	}))
	require.Equal(t, discord.ResponseTypeMessage, resp.Type)
	assert.Equal(t, "setup:gif:"+token, firstCustomID(t, resp))
}

func TestEditFlow(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	seeded, err := f.repo.CreateOrReplace(ctx, &models.Reminder{
		GuildID:    "g1",
		EventName:  "Standup",
		TargetTime: "09:00",
		Recurrence: models.RecurrenceDaily,
		ChannelID:  "c1",
	})
	require.NoError(t, err)
	idStr := strconv.FormatInt(seeded.ID, 10)

	// /remind-edit -> reminder picker
	resp := f.handler.Handle(ctx, command(CommandEdit, adminMember()))
	require.Equal(t, "edit:pick", firstCustomID(t, resp))

	// pick -> manage buttons
	resp = f.handler.Handle(ctx, componentClick("edit:pick", idStr))
	assert.Contains(t, resp.Data.Content, "Managing: **Standup**")

	// edit button -> pre-filled modal
	resp = f.handler.Handle(ctx, componentClick("edit:edit:"+idStr))
	require.Equal(t, discord.ResponseTypeModal, resp.Type)
	assert.Equal(t, "edit:details:"+idStr, resp.Data.CustomID)
	assert.Equal(t, "Standup", resp.Data.Components[0].Components[0].Value)

	// modal submit -> update applied
	resp = f.handler.Handle(ctx, modalSubmit("edit:details:"+idStr, map[string]string{
		fieldEventName:  "Morning Sync",
		fieldTargetTime: "9:30",
	}))
	assert.Contains(t, resp.Data.Content, "Updated **Morning Sync** to **09:30 UTC**")

	updated, err := f.repo.GetByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "Morning Sync", updated.EventName)
	assert.Equal(t, "09:30", updated.TargetTime)

	// delete button -> row gone
	resp = f.handler.Handle(ctx, componentClick("edit:del:"+idStr))
	assert.Contains(t, resp.Data.Content, "Deleted reminder: **Morning Sync**")

	_, err = f.repo.GetByID(ctx, seeded.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEditCommandEmptyGuild(t *testing.T) {
	f := newFixture(t, nil)

	resp := f.handler.Handle(context.Background(), command(CommandEdit, adminMember()))
	assert.Equal(t, "No active reminders found for this server.", resp.Data.Content)
}

func TestEditActionRequiresAuthorization(t *testing.T) {
	f := newFixture(t, nil)

	in := componentClick("edit:del:1")
	in.Member = discord.Member{User: discord.User{ID: "u2"}, Permissions: "0"}

	resp := f.handler.Handle(context.Background(), in)
	assert.Equal(t, deniedMessage, resp.Data.Content)
}

func TestEditVanishedReminder(t *testing.T) {
	f := newFixture(t, nil)

	resp := f.handler.Handle(context.Background(), componentClick("edit:del:99"))
	assert.Equal(t, "That reminder no longer exists.", resp.Data.Content)
}

func TestUnknownComponent(t *testing.T) {
	f := newFixture(t, nil)

	resp := f.handler.Handle(context.Background(), componentClick("bogus:thing:1"))
	assert.Equal(t, "This control is no longer active.", resp.Data.Content)
}
