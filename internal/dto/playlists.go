package dto

import (
	"github.com/google/uuid"

	"github.com/octobees/lead-qualifier/internal/entity"
)

// CreatePlaylistRequest is the payload for creating a playlist. When
// Template names a catalogue template, the remaining fields are ignored.
type CreatePlaylistRequest struct {
	Template     string          `json:"template,omitempty"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Type         string          `json:"type"`
	Criteria     entity.Criteria `json:"criteria"`
	TargetCount  int             `json:"target_count"`
	RefreshHours int             `json:"refresh_hours"`
}

// PlaylistResponse is the outward representation of a playlist.
type PlaylistResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Type          string          `json:"type"`
	Criteria      entity.Criteria `json:"criteria"`
	TargetCount   int             `json:"target_count"`
	RefreshHours  int             `json:"refresh_hours"`
	LeadCount     int             `json:"lead_count"`
	CreatedAt     string          `json:"created_at"`
	LastRefreshed *string         `json:"last_refreshed,omitempty"`
	Status        string          `json:"status"`
}

// PlaylistLeadResponse is a single membership row with its lead summary.
type PlaylistLeadResponse struct {
	LeadID      uuid.UUID `json:"lead_id"`
	CompanyName string    `json:"company_name"`
	Sector      *string   `json:"sector,omitempty"`
	Score       float64   `json:"score"`
	Priority    string    `json:"priority"`
	AddedAt     string    `json:"added_at"`
}

// RefreshResponse reports a playlist refresh outcome.
type RefreshResponse struct {
	PlaylistID uuid.UUID `json:"playlist_id"`
	LeadCount  int       `json:"lead_count"`
	Added      int       `json:"added"`
	Removed    int       `json:"removed"`
}

// TemplateResponse describes one smart playlist template with its fit
// for the requesting user's preferences.
type TemplateResponse struct {
	Key           string          `json:"key"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Criteria      entity.Criteria `json:"criteria"`
	Confidence    float64         `json:"confidence"`
	EstimatedSize int             `json:"estimated_size"`
}

// PreferencesRequest sets the caller's recommendation preferences.
type PreferencesRequest struct {
	Sectors         []string `json:"sectors"`
	CompanySizes    []string `json:"company_sizes"`
	MinScore        float64  `json:"min_score"`
	MaxLeadsPerDay  int      `json:"max_leads_per_day"`
	TrackEngagement bool     `json:"track_engagement"`
}

// DailyRecommendation is one lead suggested for today's outreach.
type DailyRecommendation struct {
	LeadID      uuid.UUID `json:"lead_id"`
	CompanyName string    `json:"company_name"`
	Sector      *string   `json:"sector,omitempty"`
	Score       float64   `json:"score"`
	Priority    string    `json:"priority"`
	Reason      string    `json:"reason"`
}

// EngagementRequest records an interaction with a recommended lead.
type EngagementRequest struct {
	LeadID     uuid.UUID  `json:"lead_id"`
	PlaylistID *uuid.UUID `json:"playlist_id,omitempty"`
	Action     string     `json:"action"`
}
