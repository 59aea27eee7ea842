package scoring

import (
	"fmt"

	"github.com/octobees/lead-qualifier/internal/entity"
)

var sectorRecommendations = map[entity.Sector][]string{
	entity.SectorBanking:       {"Compliance and security assessment", "High-availability architecture"},
	entity.SectorRetail:        {"Scalable e-commerce infrastructure", "CDN and performance optimization"},
	entity.SectorHealthcare:    {"Healthcare compliance setup", "Secure data storage solutions"},
	entity.SectorManufacturing: {"IoT and data analytics platform", "Supply chain optimization"},
}

const maxRecommendations = 5

// Recommendations returns advisory next-step suggestions for a scored lead.
// They do not feed back into the score. Conditions are evaluated in a fixed
// precedence order (size, maturity, competitor, sector) and the list is
// capped at five entries.
func Recommendations(lead *entity.Lead) []string {
	if lead == nil {
		return nil
	}

	var recs []string

	if lead.CompanySize != nil &&
		(*lead.CompanySize == entity.SizeLarge || *lead.CompanySize == entity.SizeEnterprise) {
		recs = append(recs,
			"Enterprise-grade cloud solutions with dedicated support",
			"Cost optimization assessment for large-scale infrastructure",
		)
	}

	if lead.CloudMaturity != nil {
		switch *lead.CloudMaturity {
		case entity.MaturityNone:
			recs = append(recs, "Cloud readiness assessment and migration planning")
		case entity.MaturityExploring:
			recs = append(recs, "Proof of concept for key workloads")
		case entity.MaturityAdopting, entity.MaturityMature:
			recs = append(recs,
				"Well-architected review",
				"Advanced services adoption (AI/ML, Analytics)",
			)
		}
	}

	if lead.CompetitorCloud != nil && *lead.CompetitorCloud != "" {
		recs = append(recs,
			fmt.Sprintf("Migration assessment from %s to the target platform", *lead.CompetitorCloud),
			"TCO comparison and migration roadmap",
		)
	}

	if lead.Sector != nil {
		recs = append(recs, sectorRecommendations[*lead.Sector]...)
	}

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}
