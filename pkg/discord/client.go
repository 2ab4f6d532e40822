// Package discord provides a minimal client for the parts of the Discord
// REST API this bot needs: posting reminder embeds to a channel and listing
// the text channels of a guild. It also declares the wire types for the
// interaction callbacks Discord delivers to the HTTP endpoint.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://discord.com/api/v10"

// Client represents a Discord REST client authenticated as a bot.
type Client struct {
	token   string
	baseURL string
	client  *http.Client
}

// NewClient creates a Client with the given bot token.
func NewClient(token string) *Client {
	return &Client{
		token:   token,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClientWithBaseURL creates a Client pointed at a non-default API base
// URL. Used by tests with httptest servers.
func NewClientWithBaseURL(token, baseURL string) *Client {
	c := NewClient(token)
	c.baseURL = baseURL
	return c
}

type embedImage struct {
	URL string `json:"url"`
}

type embedFooter struct {
	Text string `json:"text"`
}

type embed struct {
	Description string       `json:"description,omitempty"`
	Image       *embedImage  `json:"image,omitempty"`
	Footer      *embedFooter `json:"footer,omitempty"`
}

type allowedMentions struct {
	Parse []string `json:"parse"`
}

type createMessageRequest struct {
	Content         string           `json:"content,omitempty"`
	Embeds          []embed          `json:"embeds,omitempty"`
	AllowedMentions *allowedMentions `json:"allowed_mentions,omitempty"`
}

// SendReminder posts a reminder embed to the given channel. When everyone
// is set the message body mentions @everyone and the mention is allowed to
// ping. Failure reasons (missing channel, missing permission) are opaque;
// the caller only gets an error to log.
func (c *Client) SendReminder(ctx context.Context, channelID, text string, everyone bool, imageURL, caption string) error {
	req := createMessageRequest{
		Embeds: []embed{{
			Description: text,
			Footer:      &embedFooter{Text: caption},
		}},
	}
	if imageURL != "" {
		req.Embeds[0].Image = &embedImage{URL: imageURL}
	}
	if everyone {
		req.Content = "@everyone"
		req.AllowedMentions = &allowedMentions{Parse: []string{"everyone"}}
	}

	return c.post(ctx, fmt.Sprintf("%s/channels/%s/messages", c.baseURL, channelID), req)
}

// Channel is a guild channel as returned by the guild channels endpoint.
type Channel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type int    `json:"type"`
}

// ChannelTypeGuildText is the type value of a regular guild text channel.
const ChannelTypeGuildText = 0

// GuildChannels lists the text channels of a guild.
func (c *Client) GuildChannels(ctx context.Context, guildID string) ([]Channel, error) {
	url := fmt.Sprintf("%s/guilds/%s/channels", c.baseURL, guildID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bot "+c.token)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discord API error: %s", resp.Status)
	}

	var all []Channel
	if err := json.NewDecoder(resp.Body).Decode(&all); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	var channels []Channel
	for _, ch := range all {
		if ch.Type == ChannelTypeGuildText {
			channels = append(channels, ch)
		}
	}
	return channels, nil
}

func (c *Client) post(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bot "+c.token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("discord API error: %s: %s", resp.Status, detail)
	}

	return nil
}
