package entity

import (
	"time"

	"github.com/google/uuid"
)

// PlaylistType distinguishes recomputed playlists from fixed-membership ones.
type PlaylistType string

// Playlist types. Dynamic membership is derived data and fully replaced on
// each refresh; static membership is authoritative.
const (
	PlaylistDynamic PlaylistType = "dynamic"
	PlaylistStatic  PlaylistType = "static"
)

// PlaylistStatus is the playlist lifecycle state.
type PlaylistStatus string

// Playlist lifecycle states.
const (
	PlaylistActive   PlaylistStatus = "active"
	PlaylistArchived PlaylistStatus = "archived"
)

// Playlist is a named, reusable targeting definition over leads.
type Playlist struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Type          PlaylistType   `json:"type"`
	Criteria      Criteria       `json:"criteria"`
	TargetCount   int            `json:"target_count"`
	RefreshHours  int            `json:"refresh_hours"`
	CreatedAt     time.Time      `json:"created_at"`
	LastRefreshed *time.Time     `json:"last_refreshed,omitempty"`
	Status        PlaylistStatus `json:"status"`
}

// Criteria is a sparse predicate set over leads. A lead matches iff every
// present field's condition holds; zero-valued fields impose no constraint.
type Criteria struct {
	MinScore         float64         `json:"min_score,omitempty"`
	Sectors          []Sector        `json:"sectors,omitempty"`
	CompanySizes     []CompanySize   `json:"company_sizes,omitempty"`
	CloudMaturity    []CloudMaturity `json:"cloud_maturity,omitempty"`
	CompetitorClouds []string        `json:"competitor_clouds,omitempty"`
	HasWebsite       bool            `json:"has_website,omitempty"`
	Technologies     []string        `json:"technologies,omitempty"`
	PainPoints       []string        `json:"pain_points,omitempty"`
	Limit            int             `json:"limit,omitempty"`
}

// PlaylistLead is a membership row carrying a denormalized score/priority
// snapshot taken at insertion time.
type PlaylistLead struct {
	ID         int64     `json:"id"`
	PlaylistID uuid.UUID `json:"playlist_id"`
	LeadID     uuid.UUID `json:"lead_id"`
	AddedAt    time.Time `json:"added_at"`
	Score      float64   `json:"score"`
	Priority   Priority  `json:"priority"`
	Status     string    `json:"status"`
}

// UserPreferences steers playlist recommendations for a user.
type UserPreferences struct {
	UserID          string        `json:"user_id"`
	Sectors         []Sector      `json:"preferred_sectors"`
	CompanySizes    []CompanySize `json:"preferred_company_sizes"`
	MinScore        float64       `json:"min_score"`
	MaxLeadsPerDay  int           `json:"max_leads_per_day"`
	TrackEngagement bool          `json:"engagement_tracking"`
}

// LeadEngagement records an outreach action taken against a lead.
type LeadEngagement struct {
	ID         int64     `json:"id"`
	LeadID     uuid.UUID `json:"lead_id"`
	UserID     string    `json:"user_id"`
	ActionType string    `json:"action_type"`
	ActionAt   time.Time `json:"action_at"`
	Outcome    *string   `json:"outcome,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
}
