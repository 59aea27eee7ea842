package jobchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"google.golang.org/api/idtoken"

	"github.com/octobees/lead-qualifier/internal/entity"
)

// HTTPProfileSource queries the profile lookup worker for a contact's
// current employment.
type HTTPProfileSource struct {
	client  *http.Client
	baseURL string
}

// NewHTTPProfileSource builds a profile source, auto-configuring an ID
// token client for the worker when none is supplied.
func NewHTTPProfileSource(client *http.Client, baseURL string) *HTTPProfileSource {
	if baseURL == "" {
		panic("profile baseURL must not be empty")
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if client == nil {
		idc, err := idtoken.NewClient(context.Background(), baseURL)
		if err != nil {
			client = &http.Client{Timeout: 15 * time.Second}
		} else {
			client = idc
		}
	}
	return &HTTPProfileSource{client: client, baseURL: baseURL}
}

// Snapshot fetches the contact's current company and role. A 404 from the
// worker means the profile is gone or private; that is reported as no data
// rather than an error so the contact keeps rotating.
func (s *HTTPProfileSource) Snapshot(ctx context.Context, contact entity.TrackedContact) (*Observation, error) {
	endpoint := fmt.Sprintf("%s/v1/profiles?url=%s", s.baseURL, url.QueryEscape(contact.ProfileURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create profile request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("profile lookup returned status %d", resp.StatusCode)
	}

	var payload struct {
		Data struct {
			Company string `json:"company"`
			Role    string `json:"role"`
		} `json:"data"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode profile response: %w", err)
	}
	if payload.Error != "" {
		return nil, fmt.Errorf("profile lookup error: %s", payload.Error)
	}
	if payload.Data.Company == "" && payload.Data.Role == "" {
		return nil, nil
	}

	return &Observation{Company: payload.Data.Company, Role: payload.Data.Role}, nil
}

var _ ProfileSource = (*HTTPProfileSource)(nil)
