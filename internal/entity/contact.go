package entity

import "time"

// ContactStatus is the lifecycle state of a tracked contact.
type ContactStatus string

// Tracked contact lifecycle states. There is no path out of inactive.
const (
	ContactActive   ContactStatus = "active"
	ContactInactive ContactStatus = "inactive"
)

// TrackedContact is a decision maker under long-term employment observation.
// The contact is keyed by its profile URL; the original_* fields are copied
// by value when tracking begins and never change afterwards.
type TrackedContact struct {
	ID                int64         `json:"id"`
	Name              string        `json:"name"`
	CurrentCompany    string        `json:"current_company"`
	CurrentRole       string        `json:"current_role"`
	ProfileURL        string        `json:"profile_url"`
	Email             *string       `json:"email,omitempty"`
	Phone             *string       `json:"phone,omitempty"`
	OriginalCompany   string        `json:"original_company"`
	OriginalRole      string        `json:"original_role"`
	OriginalLeadScore float64       `json:"original_lead_score"`
	AddedAt           time.Time     `json:"added_at"`
	LastChecked       *time.Time    `json:"last_checked,omitempty"`
	Status            ContactStatus `json:"status"`
}

// ChangeType classifies what moved between two observations of a contact.
type ChangeType string

// Change classifications.
const (
	ChangeCompany        ChangeType = "company_change"
	ChangeRole           ChangeType = "role_change"
	ChangeCompanyAndRole ChangeType = "company_and_role_change"
)

// AlertStatus tracks what a user did with a job change alert.
type AlertStatus string

// Alert workflow states. Everything else on the event is immutable.
const (
	AlertNew       AlertStatus = "new"
	AlertActioned  AlertStatus = "actioned"
	AlertDismissed AlertStatus = "dismissed"
)

// JobChangeEvent records a detected employer or role change for a tracked
// contact. Created once; only the alert status may be updated afterwards.
type JobChangeEvent struct {
	ID               int64       `json:"id"`
	ContactID        int64       `json:"contact_id"`
	PreviousCompany  string      `json:"previous_company"`
	NewCompany       string      `json:"new_company"`
	PreviousRole     string      `json:"previous_role"`
	NewRole          string      `json:"new_role"`
	ChangeType       ChangeType  `json:"change_type"`
	DetectedAt       time.Time   `json:"detected_at"`
	OpportunityScore float64     `json:"opportunity_score"`
	AlertStatus      AlertStatus `json:"alert_status"`
}
