package technographics

import (
	"github.com/octobees/lead-qualifier/internal/entity"
)

// Profile is the classified technology-signal bag for one company website.
type Profile struct {
	Technologies   []string            `json:"technologies"`
	Categories     map[string][]string `json:"categories"`
	TargetServices []string            `json:"target_cloud_services"`
	TechCount      int                 `json:"tech_count"`
}

// Empty reports whether inspection produced no usable signals.
func (p *Profile) Empty() bool {
	return p == nil || p.TechCount == 0
}

func (p *Profile) hasCategory(category string) bool {
	if p == nil {
		return false
	}
	return len(p.Categories[category]) > 0
}

func (p *Profile) cloudProviders() []string {
	if p == nil {
		return nil
	}
	return p.Categories[CategoryCloudProvider]
}

func (p *Profile) usesTargetProvider() bool {
	for _, provider := range p.cloudProviders() {
		if provider == TargetProviderName {
			return true
		}
	}
	return false
}

// CompetitorProvider returns the first non-target cloud provider detected,
// or "" if there is none.
func (p *Profile) CompetitorProvider() string {
	for _, provider := range p.cloudProviders() {
		if provider != TargetProviderName {
			return provider
		}
	}
	return ""
}

func (p *Profile) hasModernFrontend() bool {
	for _, name := range p.Categories[CategoryFrontend] {
		for _, framework := range modernFrontendFrameworks {
			if name == framework {
				return true
			}
		}
	}
	return false
}

func (p *Profile) hasTargetService(service string) bool {
	for _, s := range p.TargetServices {
		if s == service {
			return true
		}
	}
	return false
}

// CloudMaturity derives the adoption stage from the profile. Rules are
// ordered; the first match wins.
func (p *Profile) CloudMaturity() entity.CloudMaturity {
	if p.Empty() {
		return entity.MaturityNone
	}

	if len(p.cloudProviders()) > 0 {
		if !p.usesTargetProvider() {
			return entity.MaturityAdopting
		}
		switch {
		case len(p.TargetServices) >= 5:
			return entity.MaturityNative
		case len(p.TargetServices) >= 2:
			return entity.MaturityMature
		default:
			return entity.MaturityAdopting
		}
	}

	readiness := 0
	if p.hasCategory(CategoryCDN) {
		readiness++
	}
	if p.hasCategory(CategoryAnalytics) {
		readiness++
	}
	if p.hasModernFrontend() {
		readiness++
	}
	if readiness >= 2 {
		return entity.MaturityExploring
	}
	return entity.MaturityNone
}

// MigrationOpportunities lists every applicable sales opening implied by the
// profile. The checks are independent, not mutually exclusive.
func (p *Profile) MigrationOpportunities() []string {
	if p == nil {
		return nil
	}
	var opportunities []string

	if p.CompetitorProvider() != "" {
		opportunities = append(opportunities, "Migration from competitor cloud to the target platform")
	}
	if !p.hasCategory(CategoryCloudProvider) && p.TechCount > 0 {
		opportunities = append(opportunities, "Cloud migration opportunity - currently on-premises or traditional hosting")
	}
	if p.hasCategory(CategoryEcommerce) && !p.hasCategory(CategoryCloudProvider) {
		opportunities = append(opportunities, "E-commerce platform would benefit from cloud scalability")
	}
	if p.hasCategory(CategoryDatabase) && !p.hasTargetService("rds") {
		opportunities = append(opportunities, "Database migration to a managed database service")
	}
	if !p.hasCategory(CategoryCDN) && p.TechCount > 3 {
		opportunities = append(opportunities, "CDN implementation for better performance")
	}
	if p.hasCategory(CategoryAnalytics) && !p.hasCategory(CategoryCloudProvider) {
		opportunities = append(opportunities, "Analytics workload migration for better insights")
	}

	return opportunities
}

// Urgency buckets for intent signals.
const (
	UrgencyHigh   = "high"
	UrgencyMedium = "medium"
	UrgencyLow    = "low"
)

// IntentSignals summarizes buying-intent indicators derived from the profile.
// Indicators are retained alongside the score for explainability.
type IntentSignals struct {
	Score      int      `json:"score"`
	Indicators []string `json:"indicators"`
	Urgency    string   `json:"urgency"`
}

// Intent scores the profile's buying signals.
func (p *Profile) Intent() IntentSignals {
	signals := IntentSignals{Urgency: UrgencyLow}
	if p == nil {
		return signals
	}

	if !p.hasCategory(CategoryCloudProvider) {
		signals.Score += 20
		signals.Indicators = append(signals.Indicators, "No cloud provider detected - migration opportunity")
	}

	if len(p.cloudProviders()) > 0 && !p.usesTargetProvider() {
		signals.Score += 30
		signals.Indicators = append(signals.Indicators, "Using competitor cloud - potential switch")
	}

	if p.hasCategory(CategoryEcommerce) && !p.hasCategory(CategoryCDN) {
		signals.Score += 25
		signals.Indicators = append(signals.Indicators, "E-commerce without CDN - performance opportunity")
	}

	if p.hasCategory(CategoryDatabase) && !p.hasCategory(CategoryCloudProvider) {
		signals.Score += 15
		signals.Indicators = append(signals.Indicators, "Database workloads not in cloud")
	}

	if p.hasModernFrontend() {
		signals.Score += 10
		signals.Indicators = append(signals.Indicators, "Modern tech stack - cloud-ready")
	}

	switch {
	case signals.Score >= 50:
		signals.Urgency = UrgencyHigh
	case signals.Score >= 30:
		signals.Urgency = UrgencyMedium
	}

	return signals
}
