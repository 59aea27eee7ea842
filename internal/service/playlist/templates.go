package playlist

import (
	"math"
	"strings"

	"github.com/octobees/lead-qualifier/internal/entity"
)

// Template is a curated playlist definition with a key stable enough to
// create playlists from.
type Template struct {
	Key         string
	Name        string
	Description string
	Criteria    entity.Criteria
}

// templateCatalogue holds the curated playlists, ordered by sales priority.
var templateCatalogue = []Template{
	{
		Key:         "migration-prospects",
		Name:        "Hot Migration Prospects",
		Description: "Companies on a competitor cloud with high migration potential",
		Criteria: entity.Criteria{
			CompetitorClouds: []string{"azure", "gcp"},
			MinScore:         75,
			Sectors:          []entity.Sector{entity.SectorBanking, entity.SectorRetail, entity.SectorManufacturing},
		},
	},
	{
		Key:         "banking-transformation",
		Name:        "Banking Digital Transformation",
		Description: "Banks and fintechs mid digital transformation",
		Criteria: entity.Criteria{
			Sectors:       []entity.Sector{entity.SectorBanking, entity.SectorFintech},
			MinScore:      70,
			CompanySizes:  []entity.CompanySize{entity.SizeLarge, entity.SizeEnterprise},
			CloudMaturity: []entity.CloudMaturity{entity.MaturityExploring, entity.MaturityAdopting},
		},
	},
	{
		Key:         "scaleup-tech",
		Name:        "Scale-up Tech Companies",
		Description: "Growing technology companies that need cloud scale",
		Criteria: entity.Criteria{
			Sectors:      []entity.Sector{entity.SectorTechnology},
			CompanySizes: []entity.CompanySize{entity.SizeMedium, entity.SizeLarge},
			MinScore:     65,
			HasWebsite:   true,
		},
	},
	{
		Key:         "industry-40",
		Name:        "Industry 4.0 Manufacturers",
		Description: "Manufacturers modernizing with IoT and data platforms",
		Criteria: entity.Criteria{
			Sectors:      []entity.Sector{entity.SectorManufacturing},
			MinScore:     60,
			Technologies: []string{"iot", "data", "analytics", "automation"},
		},
	},
	{
		Key:         "ecommerce-growth",
		Name:        "E-commerce Growth Opportunities",
		Description: "Online retailers missing cloud scalability and performance",
		Criteria: entity.Criteria{
			Sectors:    []entity.Sector{entity.SectorRetail, entity.SectorEcommerce},
			MinScore:   55,
			PainPoints: []string{"performance", "scalability", "traffic"},
		},
	},
	{
		Key:         "new-decision-makers",
		Name:        "New Decision Makers",
		Description: "Leads whose contacts recently changed jobs and are open to cloud migration conversations",
		Criteria: entity.Criteria{
			MinScore: 50,
		},
	},
}

// Description keywords that mark a template as squarely inside the sales
// team's specialization.
var specializationKeywords = []string{"aws", "cloud", "migration", "banking", "fintech"}

// Templates returns the catalogue entries compatible with the preferences:
// a template is dropped when its sectors share nothing with the preferred
// sectors, or when it admits leads below the user's score floor.
func Templates(prefs entity.UserPreferences) []Template {
	var compatible []Template
	for _, tpl := range templateCatalogue {
		if len(prefs.Sectors) > 0 && len(tpl.Criteria.Sectors) > 0 && !sectorsOverlap(tpl.Criteria.Sectors, prefs.Sectors) {
			continue
		}
		if tpl.Criteria.MinScore < prefs.MinScore {
			continue
		}
		compatible = append(compatible, tpl)
	}
	return compatible
}

// TemplateByKey finds a catalogue entry.
func TemplateByKey(key string) (Template, bool) {
	for _, tpl := range templateCatalogue {
		if tpl.Key == key {
			return tpl, true
		}
	}
	return Template{}, false
}

// Confidence rates how well a template fits the user's preferences on a
// 0.5 to 1.0 scale.
func Confidence(tpl Template, prefs entity.UserPreferences) float64 {
	confidence := 0.5

	if sectorsOverlap(tpl.Criteria.Sectors, prefs.Sectors) {
		confidence += 0.2
	}

	prefMinScore := prefs.MinScore
	if prefMinScore == 0 {
		prefMinScore = 60
	}
	if math.Abs(tpl.Criteria.MinScore-prefMinScore) <= 10 {
		confidence += 0.15
	}

	description := strings.ToLower(tpl.Description)
	for _, keyword := range specializationKeywords {
		if strings.Contains(description, keyword) {
			confidence += 0.15
			break
		}
	}

	return math.Min(confidence, 1.0)
}

// EstimatedSize projects how many leads a template would hold without
// scanning the pool. The multipliers reflect how selective the score floor
// and sector focus are in typical datasets.
func EstimatedSize(criteria entity.Criteria) int {
	estimate := 100.0

	switch {
	case criteria.MinScore > 80:
		estimate *= 0.3
	case criteria.MinScore > 70:
		estimate *= 0.5
	case criteria.MinScore > 60:
		estimate *= 0.7
	}

	switch len(criteria.Sectors) {
	case 1:
		estimate *= 0.6
	case 2:
		estimate *= 0.8
	}

	return int(estimate)
}

func sectorsOverlap(a, b []entity.Sector) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
