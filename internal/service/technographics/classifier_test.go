package technographics

import (
	"testing"

	"github.com/octobees/lead-qualifier/internal/entity"
)

func TestCloudMaturity_NoTechnologies(t *testing.T) {
	profile := &Profile{Categories: map[string][]string{}}
	if got := profile.CloudMaturity(); got != entity.MaturityNone {
		t.Fatalf("expected none, got %s", got)
	}
	var nilProfile *Profile
	if got := nilProfile.CloudMaturity(); got != entity.MaturityNone {
		t.Fatalf("expected none for nil profile, got %s", got)
	}
}

func TestCloudMaturity_CompetitorOnly(t *testing.T) {
	profile := &Profile{
		Technologies: []string{"azure"},
		Categories:   map[string][]string{CategoryCloudProvider: {"azure"}},
		TechCount:    1,
	}
	if got := profile.CloudMaturity(); got != entity.MaturityAdopting {
		t.Fatalf("expected adopting, got %s", got)
	}
}

func TestCloudMaturity_TargetProviderTiers(t *testing.T) {
	cases := []struct {
		services []string
		want     entity.CloudMaturity
	}{
		{[]string{"s3", "ec2", "rds", "lambda", "ecs"}, entity.MaturityNative},
		{[]string{"s3", "ec2"}, entity.MaturityMature},
		{[]string{"s3"}, entity.MaturityAdopting},
		{nil, entity.MaturityAdopting},
	}

	for _, tc := range cases {
		profile := &Profile{
			Technologies:   []string{"aws"},
			Categories:     map[string][]string{CategoryCloudProvider: {"aws"}},
			TargetServices: tc.services,
			TechCount:      1,
		}
		if got := profile.CloudMaturity(); got != tc.want {
			t.Fatalf("services=%v: expected %s, got %s", tc.services, tc.want, got)
		}
	}
}

func TestCloudMaturity_ExploringFromReadinessSignals(t *testing.T) {
	profile := &Profile{
		Technologies: []string{"cloudflare", "react"},
		Categories: map[string][]string{
			CategoryCDN:      {"cloudflare"},
			CategoryFrontend: {"react"},
		},
		TechCount: 2,
	}
	if got := profile.CloudMaturity(); got != entity.MaturityExploring {
		t.Fatalf("expected exploring, got %s", got)
	}

	// A single readiness signal is not enough.
	profile = &Profile{
		Technologies: []string{"cloudflare"},
		Categories:   map[string][]string{CategoryCDN: {"cloudflare"}},
		TechCount:    1,
	}
	if got := profile.CloudMaturity(); got != entity.MaturityNone {
		t.Fatalf("expected none for single signal, got %s", got)
	}
}

func TestMigrationOpportunities(t *testing.T) {
	profile := &Profile{
		Technologies: []string{"gcp", "magento", "mysql", "google_analytics", "react"},
		Categories: map[string][]string{
			CategoryCloudProvider: {"gcp"},
			CategoryEcommerce:     {"magento"},
			CategoryDatabase:      {"mysql"},
			CategoryAnalytics:     {"google_analytics"},
			CategoryFrontend:      {"react"},
		},
		TechCount: 5,
	}

	opportunities := profile.MigrationOpportunities()

	// Competitor present, database without rds, no CDN with tech_count>3.
	if len(opportunities) != 3 {
		t.Fatalf("expected 3 opportunities, got %d: %v", len(opportunities), opportunities)
	}
	if opportunities[0] != "Migration from competitor cloud to the target platform" {
		t.Fatalf("unexpected first opportunity: %q", opportunities[0])
	}
}

func TestMigrationOpportunities_NoProvider(t *testing.T) {
	profile := &Profile{
		Technologies: []string{"magento", "google_analytics"},
		Categories: map[string][]string{
			CategoryEcommerce: {"magento"},
			CategoryAnalytics: {"google_analytics"},
		},
		TechCount: 2,
	}

	opportunities := profile.MigrationOpportunities()

	// first-time migration, ecommerce scalability, analytics migration.
	if len(opportunities) != 3 {
		t.Fatalf("expected 3 opportunities, got %d: %v", len(opportunities), opportunities)
	}
}

func TestIntent(t *testing.T) {
	profile := &Profile{
		Technologies: []string{"magento", "mysql", "react"},
		Categories: map[string][]string{
			CategoryEcommerce: {"magento"},
			CategoryDatabase:  {"mysql"},
			CategoryFrontend:  {"react"},
		},
		TechCount: 3,
	}

	signals := profile.Intent()

	// 20 (no provider) + 25 (ecommerce without cdn) + 15 (db without cloud) + 10 (modern frontend)
	if signals.Score != 70 {
		t.Fatalf("expected intent score 70, got %d", signals.Score)
	}
	if signals.Urgency != UrgencyHigh {
		t.Fatalf("expected high urgency, got %s", signals.Urgency)
	}
	if len(signals.Indicators) != 4 {
		t.Fatalf("expected 4 indicators retained, got %d", len(signals.Indicators))
	}
}

func TestIntent_CompetitorSwitch(t *testing.T) {
	profile := &Profile{
		Technologies: []string{"azure"},
		Categories:   map[string][]string{CategoryCloudProvider: {"azure"}},
		TechCount:    1,
	}

	signals := profile.Intent()

	if signals.Score != 30 {
		t.Fatalf("expected intent score 30, got %d", signals.Score)
	}
	if signals.Urgency != UrgencyMedium {
		t.Fatalf("expected medium urgency, got %s", signals.Urgency)
	}
}

func TestCompetitorProvider(t *testing.T) {
	profile := &Profile{
		Categories: map[string][]string{CategoryCloudProvider: {"aws", "gcp"}},
	}
	if got := profile.CompetitorProvider(); got != "gcp" {
		t.Fatalf("expected gcp, got %q", got)
	}

	profile = &Profile{
		Categories: map[string][]string{CategoryCloudProvider: {"aws"}},
	}
	if got := profile.CompetitorProvider(); got != "" {
		t.Fatalf("expected no competitor, got %q", got)
	}
}
