package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendReminder(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/channels/c1/messages", r.URL.Path)
		assert.Equal(t, "Bot test-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClientWithBaseURL("test-token", server.URL)

	err := client.SendReminder(context.Background(), "c1", "~ Raid", true, "https://gifs.example/x.gif", "Weekly reminder")
	require.NoError(t, err)

	assert.Equal(t, "@everyone", got["content"])
	mentions := got["allowed_mentions"].(map[string]any)
	assert.Equal(t, []any{"everyone"}, mentions["parse"])

	embeds := got["embeds"].([]any)
	require.Len(t, embeds, 1)
	first := embeds[0].(map[string]any)
	assert.Equal(t, "~ Raid", first["description"])
	assert.Equal(t, map[string]any{"url": "https://gifs.example/x.gif"}, first["image"])
	assert.Equal(t, map[string]any{"text": "Weekly reminder"}, first["footer"])
}

func TestSendReminderWithoutMentionOrImage(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClientWithBaseURL("test-token", server.URL)

	require.NoError(t, client.SendReminder(context.Background(), "c1", "~ Raid", false, "", "One-time reminder"))

	_, hasContent := got["content"]
	assert.False(t, hasContent)
	_, hasMentions := got["allowed_mentions"]
	assert.False(t, hasMentions)
	first := got["embeds"].([]any)[0].(map[string]any)
	_, hasImage := first["image"]
	assert.False(t, hasImage)
}

func TestSendReminderAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message": "Missing Permissions"}`, http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClientWithBaseURL("test-token", server.URL)

	err := client.SendReminder(context.Background(), "c1", "~ Raid", true, "", "Daily reminder")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing Permissions")
}

func TestGuildChannelsFiltersTextChannels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/guilds/g1/channels", r.URL.Path)
		assert.Equal(t, "Bot test-token", r.Header.Get("Authorization"))
		w.Write([]byte(`[
			{"id": "c1", "name": "general", "type": 0},
			{"id": "c2", "name": "voice-lounge", "type": 2},
			{"id": "c3", "name": "announcements", "type": 0},
			{"id": "c4", "name": "category", "type": 4}
		]`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL("test-token", server.URL)

	channels, err := client.GuildChannels(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, channels, 2)
	assert.Equal(t, "c1", channels[0].ID)
	assert.Equal(t, "c3", channels[1].ID)
}
