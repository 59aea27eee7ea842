package entity

import (
	"time"

	"github.com/google/uuid"
)

// Sector is the closed set of industry classifications used for targeting.
type Sector string

// Supported sectors.
const (
	SectorBanking       Sector = "banking"
	SectorFintech       Sector = "fintech"
	SectorRetail        Sector = "retail"
	SectorEcommerce     Sector = "ecommerce"
	SectorManufacturing Sector = "manufacturing"
	SectorMining        Sector = "mining"
	SectorTechnology    Sector = "technology"
	SectorHealthcare    Sector = "healthcare"
	SectorOther         Sector = "other"
)

// ParseSector maps a raw string to a known sector, falling back to "other".
func ParseSector(raw string) Sector {
	switch Sector(raw) {
	case SectorBanking, SectorFintech, SectorRetail, SectorEcommerce,
		SectorManufacturing, SectorMining, SectorTechnology, SectorHealthcare:
		return Sector(raw)
	default:
		return SectorOther
	}
}

// CompanySize buckets companies by headcount/revenue.
type CompanySize string

// Recognized company size buckets.
const (
	SizeMicro      CompanySize = "micro"
	SizeSmall      CompanySize = "small"
	SizeMedium     CompanySize = "medium"
	SizeLarge      CompanySize = "large"
	SizeEnterprise CompanySize = "enterprise"
)

// ValidSize reports whether the value is one of the recognized buckets.
func ValidSize(raw string) bool {
	switch CompanySize(raw) {
	case SizeMicro, SizeSmall, SizeMedium, SizeLarge, SizeEnterprise:
		return true
	}
	return false
}

// CloudMaturity describes how deeply a company has adopted cloud infrastructure.
type CloudMaturity string

// Cloud maturity stages, ordered from least to most adopted.
const (
	MaturityNone      CloudMaturity = "none"
	MaturityExploring CloudMaturity = "exploring"
	MaturityAdopting  CloudMaturity = "adopting"
	MaturityMature    CloudMaturity = "mature"
	MaturityNative    CloudMaturity = "native"
)

// Priority is the discrete outreach tier derived from a lead score.
type Priority string

// Priority tiers.
const (
	PriorityHot  Priority = "HOT"
	PriorityWarm Priority = "WARM"
	PriorityCool Priority = "COOL"
	PriorityCold Priority = "COLD"
)

// PriorityForScore derives the tier from a numeric score. Priority is never
// stored on the lead; it is always recomputed from the current score.
func PriorityForScore(score float64) Priority {
	switch {
	case score >= 80:
		return PriorityHot
	case score >= 60:
		return PriorityWarm
	case score >= 40:
		return PriorityCool
	default:
		return PriorityCold
	}
}

// DecisionMaker is a named contact attached to a lead.
type DecisionMaker struct {
	Name       string `json:"name"`
	Role       string `json:"role"`
	ProfileURL string `json:"profile_url,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// Lead represents a prospective company under qualification.
type Lead struct {
	ID              uuid.UUID          `json:"id"`
	CompanyName     string             `json:"company_name"`
	TaxID           *string            `json:"tax_id,omitempty"`
	Website         *string            `json:"website,omitempty"`
	Email           *string            `json:"email,omitempty"`
	Phone           *string            `json:"phone,omitempty"`
	Address         *string            `json:"address,omitempty"`
	City            *string            `json:"city,omitempty"`
	Region          *string            `json:"region,omitempty"`
	Sector          *Sector            `json:"sector,omitempty"`
	CompanySize     *CompanySize       `json:"company_size,omitempty"`
	EmployeeCount   *int               `json:"employee_count,omitempty"`
	AnnualRevenue   *float64           `json:"annual_revenue,omitempty"`
	DecisionMakers  []DecisionMaker    `json:"decision_makers"`
	Technologies    []string           `json:"technologies_used"`
	CloudMaturity   *CloudMaturity     `json:"cloud_maturity,omitempty"`
	UsesTargetCloud bool               `json:"uses_target_cloud"`
	CompetitorCloud *string            `json:"competitor_cloud,omitempty"`
	PainPoints      []string           `json:"pain_points"`
	Score           float64            `json:"score"`
	ScoreDetails    map[string]float64 `json:"score_details"`
	Notes           *string            `json:"notes,omitempty"`
	Source          *string            `json:"source,omitempty"`
	ExtractedAt     time.Time          `json:"extracted_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// Priority returns the tier for the lead's current score.
func (l *Lead) Priority() Priority {
	return PriorityForScore(l.Score)
}
