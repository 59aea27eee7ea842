package dto

import "github.com/google/uuid"

// SyncRequest selects the leads to push to the CRM collaborator. An empty
// id list syncs every lead at or above MinScore.
type SyncRequest struct {
	LeadIDs     []uuid.UUID `json:"lead_ids"`
	MinScore    float64     `json:"min_score"`
	CreateDeals *bool       `json:"create_deals,omitempty"`
}
