package technographics

import (
	"context"
	"log"
	"time"

	"github.com/octobees/lead-qualifier/internal/entity"
)

// Up to this many detected opportunities are appended to a lead's pain points.
const maxOpportunityPainPoints = 3

// Enricher applies website technology classification to leads.
type Enricher struct {
	inspector *Inspector
}

// NewEnricher wires an enricher around the given inspector.
func NewEnricher(inspector *Inspector) *Enricher {
	if inspector == nil {
		inspector = NewInspector(nil)
	}
	return &Enricher{inspector: inspector}
}

// EnrichLead inspects the lead's website and fills the cloud fields. Leads
// without a website, or whose site yields no signals, are returned unchanged.
// The classified profile is returned for callers that keep it (intent
// signals, explainability).
func (e *Enricher) EnrichLead(ctx context.Context, lead *entity.Lead) *Profile {
	if lead == nil || lead.Website == nil || *lead.Website == "" {
		return nil
	}

	profile := e.inspector.Inspect(ctx, *lead.Website)
	if profile.Empty() {
		return profile
	}

	lead.Technologies = profile.Technologies

	maturity := profile.CloudMaturity()
	lead.CloudMaturity = &maturity

	if profile.usesTargetProvider() {
		lead.UsesTargetCloud = true
	}
	if competitor := profile.CompetitorProvider(); competitor != "" {
		lead.CompetitorCloud = &competitor
	}

	opportunities := profile.MigrationOpportunities()
	if len(opportunities) > maxOpportunityPainPoints {
		opportunities = opportunities[:maxOpportunityPainPoints]
	}
	lead.PainPoints = append(lead.PainPoints, opportunities...)
	lead.UpdatedAt = time.Now()

	log.Printf("technographics enriched company=%q technologies=%d maturity=%s",
		lead.CompanyName, len(lead.Technologies), maturity)

	return profile
}

// EnrichBatch enriches each lead in place. Each lead is handled
// independently; fetch problems surface as unchanged leads, never as a
// batch failure.
func (e *Enricher) EnrichBatch(ctx context.Context, leads []*entity.Lead) {
	for _, lead := range leads {
		if lead == nil {
			continue
		}
		e.EnrichLead(ctx, lead)
	}
}
