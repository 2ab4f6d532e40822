package handlers

import (
	"context"

	"github.com/christopher-deriv/discord-reminders/internal/models"
	"github.com/christopher-deriv/discord-reminders/pkg/giphy"
)

// GiphySearcher adapts the Giphy client to the wizard's media-search
// collaborator interface.
type GiphySearcher struct {
	client *giphy.Client
}

// NewGiphySearcher wraps a Giphy client.
func NewGiphySearcher(client *giphy.Client) *GiphySearcher {
	return &GiphySearcher{client: client}
}

// Search runs the GIF search and converts results into draft candidates.
func (g *GiphySearcher) Search(ctx context.Context, query string, limit int) ([]models.GIFCandidate, error) {
	gifs, err := g.client.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	candidates := make([]models.GIFCandidate, 0, len(gifs))
	for _, gif := range gifs {
		candidates = append(candidates, models.GIFCandidate{URL: gif.URL, Title: gif.Title})
	}
	return candidates, nil
}
