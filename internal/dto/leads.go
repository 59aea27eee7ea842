package dto

import (
	"github.com/google/uuid"

	"github.com/octobees/lead-qualifier/internal/entity"
)

// LeadFilter contains query parameters for lead listing endpoints.
type LeadFilter struct {
	Q             string
	Sector        string
	CompanySize   string
	CloudMaturity string
	City          string
	MinScore      *float64
	WebsiteStatus string
	Page          int
	PerPage       int
}

// UpsertLeadRequest is the payload for creating or updating a lead.
type UpsertLeadRequest struct {
	CompanyName    string                 `json:"company_name"`
	TaxID          *string                `json:"tax_id,omitempty"`
	Website        *string                `json:"website,omitempty"`
	Email          *string                `json:"email,omitempty"`
	Phone          *string                `json:"phone,omitempty"`
	Address        *string                `json:"address,omitempty"`
	City           *string                `json:"city,omitempty"`
	Region         *string                `json:"region,omitempty"`
	Sector         *string                `json:"sector,omitempty"`
	CompanySize    *string                `json:"company_size,omitempty"`
	EmployeeCount  *int                   `json:"employee_count,omitempty"`
	AnnualRevenue  *float64               `json:"annual_revenue,omitempty"`
	DecisionMakers []entity.DecisionMaker `json:"decision_makers,omitempty"`
	Technologies   []string               `json:"technologies,omitempty"`
	PainPoints     []string               `json:"pain_points,omitempty"`
	Notes          *string                `json:"notes,omitempty"`
	Source         *string                `json:"source,omitempty"`
}

// LeadResponse is the outward representation of a lead.
type LeadResponse struct {
	ID              uuid.UUID              `json:"id"`
	CompanyName     string                 `json:"company_name"`
	TaxID           *string                `json:"tax_id,omitempty"`
	Website         *string                `json:"website,omitempty"`
	Email           *string                `json:"email,omitempty"`
	Phone           *string                `json:"phone,omitempty"`
	Address         *string                `json:"address,omitempty"`
	City            *string                `json:"city,omitempty"`
	Region          *string                `json:"region,omitempty"`
	Sector          *string                `json:"sector,omitempty"`
	CompanySize     *string                `json:"company_size,omitempty"`
	EmployeeCount   *int                   `json:"employee_count,omitempty"`
	AnnualRevenue   *float64               `json:"annual_revenue,omitempty"`
	DecisionMakers  []entity.DecisionMaker `json:"decision_makers,omitempty"`
	Technologies    []string               `json:"technologies,omitempty"`
	CloudMaturity   *string                `json:"cloud_maturity,omitempty"`
	UsesTargetCloud bool                   `json:"uses_target_cloud"`
	CompetitorCloud *string                `json:"competitor_cloud,omitempty"`
	PainPoints      []string               `json:"pain_points,omitempty"`
	Score           float64                `json:"score"`
	ScoreDetails    map[string]float64     `json:"score_details,omitempty"`
	Priority        string                 `json:"priority"`
	Recommendations []string               `json:"recommendations,omitempty"`
	Notes           *string                `json:"notes,omitempty"`
	Source          *string                `json:"source,omitempty"`
	ExtractedAt     string                 `json:"extracted_at"`
	UpdatedAt       string                 `json:"updated_at"`
}

// QualifyRequest triggers the enrich-and-score pipeline for a set of leads.
type QualifyRequest struct {
	LeadIDs []uuid.UUID `json:"lead_ids"`
	Enrich  bool        `json:"enrich"`
}

// QualifyResponse reports the outcome of a qualification run.
type QualifyResponse struct {
	Scored   int            `json:"scored"`
	Failed   int            `json:"failed"`
	Failures []QualifyError `json:"failures,omitempty"`
}

// QualifyError describes a lead the pipeline could not score.
type QualifyError struct {
	LeadID      uuid.UUID `json:"lead_id"`
	CompanyName string    `json:"company_name"`
	Reason      string    `json:"reason"`
}

// ImportSummary reports the outcome of a CSV lead upload.
type ImportSummary struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Total    int `json:"total"`
	Skipped  int `json:"skipped"`
}
