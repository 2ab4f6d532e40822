package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christopher-deriv/discord-reminders/internal/auth"
	"github.com/christopher-deriv/discord-reminders/internal/handlers"
	"github.com/christopher-deriv/discord-reminders/internal/metrics"
	"github.com/christopher-deriv/discord-reminders/internal/models"
	"github.com/christopher-deriv/discord-reminders/internal/service"
	"github.com/christopher-deriv/discord-reminders/internal/wizard"
	"github.com/christopher-deriv/discord-reminders/pkg/discord"
)

// stubRepo serves the read-only listing endpoint.
type stubRepo struct {
	byGuild map[string][]*models.Reminder
	err     error
}

func (s *stubRepo) CreateOrReplace(context.Context, *models.Reminder) (*models.Reminder, error) {
	return nil, errors.New("not implemented")
}

func (s *stubRepo) GetByID(context.Context, int64) (*models.Reminder, error) {
	return nil, errors.New("not implemented")
}

func (s *stubRepo) ListAll(context.Context) ([]*models.Reminder, error) {
	return nil, errors.New("not implemented")
}

func (s *stubRepo) ListByGuild(_ context.Context, guildID string) ([]*models.Reminder, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.byGuild[guildID], nil
}

func (s *stubRepo) UpdateDetails(context.Context, int64, string, string) error {
	return errors.New("not implemented")
}

func (s *stubRepo) Delete(context.Context, int64) error {
	return errors.New("not implemented")
}

type stubChannels struct{}

func (stubChannels) GuildChannels(context.Context, string) ([]discord.Channel, error) {
	return nil, nil
}

type stubSearch struct{}

func (stubSearch) Search(context.Context, string, int) ([]models.GIFCandidate, error) {
	return nil, nil
}

func newTestServer(t *testing.T, repo *stubRepo) *Server {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	registry := prometheus.NewRegistry()
	svc := service.New(repo, nil, logger, metrics.New(registry), service.Options{})
	wiz := wizard.NewManager(repo, stubSearch{}, logger)
	checker := auth.NewChecker(nil, logger)
	interactions := handlers.NewInteractions(svc, wiz, checker, stubChannels{}, nil, logger)

	return NewServer(svc, interactions, registry, logger)
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t, &stubRepo{})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestGetReminders(t *testing.T) {
	repo := &stubRepo{byGuild: map[string][]*models.Reminder{
		"g1": {{ID: 1, GuildID: "g1", EventName: "Standup", TargetTime: "09:00", Recurrence: models.RecurrenceDaily}},
	}}
	server := newTestServer(t, repo)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reminders?guild_id=g1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var reminders []models.Reminder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reminders))
	require.Len(t, reminders, 1)
	assert.Equal(t, "Standup", reminders[0].EventName)
}

func TestGetRemindersRequiresGuildID(t *testing.T) {
	server := newTestServer(t, &stubRepo{})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reminders", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRemindersStoreFailure(t *testing.T) {
	server := newTestServer(t, &stubRepo{err: errors.New("db down")})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reminders?guild_id=g1", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestInteractionsPing(t *testing.T) {
	server := newTestServer(t, &stubRepo{})

	body := strings.NewReader(`{"type": 1}`)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/interactions", body))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"type": 1}`, rec.Body.String())
}

func TestInteractionsRejectsBadJSON(t *testing.T) {
	server := newTestServer(t, &stubRepo{})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/interactions", strings.NewReader("{")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	server := newTestServer(t, &stubRepo{})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "reminder_scheduler_ticks_total")
}
