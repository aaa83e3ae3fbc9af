package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Mousewarriors/SEIM-Project/internal/model"
)

// HTTPSource polls a live-events endpoint returning {"events": [...]}.
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource creates a polling source for the given endpoint URL.
func NewHTTPSource(url string, client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{url: url, client: client}
}

func (h *HTTPSource) Fetch(ctx context.Context) ([]model.Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch live events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("live events endpoint returned %d", resp.StatusCode)
	}

	var payload struct {
		Events []model.Event `json:"events"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode live events: %w", err)
	}
	return payload.Events, nil
}

func (h *HTTPSource) Close() error { return nil }
