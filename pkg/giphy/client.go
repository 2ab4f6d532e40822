// Package giphy provides a simple client for the Giphy GIF search API.
//
// It is used by the reminder setup wizard to offer illustrative GIF
// candidates for a free-text theme.
package giphy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://api.giphy.com/v1/gifs/search"

// GIF is one search result.
type GIF struct {
	URL   string
	Title string
}

// Client represents a Giphy API client.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient creates a new Client with the given API key.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClientWithBaseURL creates a Client pointed at a non-default search
// URL. Used by tests with httptest servers.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = baseURL
	return c
}

type searchResponse struct {
	Data []struct {
		Title  string `json:"title"`
		Images struct {
			Original struct {
				URL string `json:"url"`
			} `json:"original"`
		} `json:"images"`
	} `json:"data"`
}

// Search queries Giphy for GIFs matching the query and returns them in API
// ranking order. Results are capped at limit.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]GIF, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("rating", "pg-13")
	params.Set("lang", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("giphy API error: %s", resp.Status)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	results := make([]GIF, 0, len(body.Data))
	for _, item := range body.Data {
		title := item.Title
		if title == "" {
			title = "GIF Result"
		}
		results = append(results, GIF{URL: item.Images.Original.URL, Title: title})
	}

	return results, nil
}
