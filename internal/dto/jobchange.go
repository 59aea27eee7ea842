package dto

// TrackContactRequest registers a contact for job-change monitoring.
type TrackContactRequest struct {
	Name       string  `json:"name"`
	Company    string  `json:"company"`
	Role       string  `json:"role"`
	ProfileURL string  `json:"profile_url"`
	Email      *string `json:"email,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	LeadScore  float64 `json:"lead_score"`
}

// ContactResponse is the outward representation of a tracked contact.
type ContactResponse struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	CurrentCompany string  `json:"current_company"`
	CurrentRole    string  `json:"current_role"`
	ProfileURL     string  `json:"profile_url"`
	Email          *string `json:"email,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	AddedAt        string  `json:"added_at"`
	LastChecked    *string `json:"last_checked,omitempty"`
	Status         string  `json:"status"`
}

// AlertResponse is one job-change alert with its recommended action.
type AlertResponse struct {
	EventID          int64   `json:"event_id"`
	ContactID        int64   `json:"contact_id"`
	ContactName      string  `json:"contact_name"`
	ProfileURL       string  `json:"profile_url"`
	PreviousCompany  string  `json:"previous_company"`
	NewCompany       string  `json:"new_company"`
	PreviousRole     string  `json:"previous_role"`
	NewRole          string  `json:"new_role"`
	ChangeType       string  `json:"change_type"`
	DetectedAt       string  `json:"detected_at"`
	OpportunityScore float64 `json:"opportunity_score"`
	Priority         string  `json:"priority"`
	Message          string  `json:"message"`
	SuggestedAction  string  `json:"suggested_action"`
	AlertStatus      string  `json:"alert_status"`
}

// AlertStatusRequest transitions an alert to actioned or dismissed.
type AlertStatusRequest struct {
	Status string `json:"status"`
}

// MonitorCycleResponse summarises one on-demand polling cycle.
type MonitorCycleResponse struct {
	Checked        int `json:"checked"`
	ChangesFound   int `json:"changes_found"`
	AlertsRaised   int `json:"alerts_raised"`
	MarkedInactive int `json:"marked_inactive"`
}
