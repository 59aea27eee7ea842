package playlist

import (
	"sort"
	"strings"

	"github.com/octobees/lead-qualifier/internal/entity"
)

// Matches reports whether the lead satisfies every present criterion.
// Zero-valued criteria fields impose no constraint, so empty criteria
// match everything.
func Matches(lead *entity.Lead, criteria entity.Criteria) bool {
	if lead == nil {
		return false
	}
	if lead.Score < criteria.MinScore {
		return false
	}
	if len(criteria.Sectors) > 0 && !sectorIn(lead.Sector, criteria.Sectors) {
		return false
	}
	if len(criteria.CompanySizes) > 0 && !sizeIn(lead.CompanySize, criteria.CompanySizes) {
		return false
	}
	if len(criteria.CloudMaturity) > 0 && !maturityIn(lead.CloudMaturity, criteria.CloudMaturity) {
		return false
	}
	if len(criteria.CompetitorClouds) > 0 && !competitorIn(lead.CompetitorCloud, criteria.CompetitorClouds) {
		return false
	}
	if criteria.HasWebsite && (lead.Website == nil || *lead.Website == "") {
		return false
	}
	if len(criteria.Technologies) > 0 && !anyOverlap(lead.Technologies, criteria.Technologies) {
		return false
	}
	if len(criteria.PainPoints) > 0 && !anyOverlap(lead.PainPoints, criteria.PainPoints) {
		return false
	}
	return true
}

// Select filters the pool by the criteria, orders it best-first and caps it
// at the effective limit. Selection is deterministic: ties keep their pool
// order, so repeated runs over the same pool yield the same membership.
func Select(pool []entity.Lead, criteria entity.Criteria, targetCount int) []entity.PlaylistLead {
	var matched []entity.Lead
	for _, lead := range pool {
		lead := lead
		if Matches(&lead, criteria) {
			matched = append(matched, lead)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Score > matched[j].Score
	})

	limit := effectiveLimit(criteria.Limit, targetCount)
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	members := make([]entity.PlaylistLead, 0, len(matched))
	for _, lead := range matched {
		members = append(members, entity.PlaylistLead{
			LeadID:   lead.ID,
			Score:    lead.Score,
			Priority: lead.Priority(),
			Status:   "active",
		})
	}
	return members
}

// effectiveLimit prefers the criteria's own cap; the playlist target count
// is the fallback. Zero means unlimited.
func effectiveLimit(criteriaLimit, targetCount int) int {
	if criteriaLimit > 0 {
		return criteriaLimit
	}
	if targetCount > 0 {
		return targetCount
	}
	return 0
}

func sectorIn(value *entity.Sector, allowed []entity.Sector) bool {
	if value == nil {
		return false
	}
	for _, s := range allowed {
		if *value == s {
			return true
		}
	}
	return false
}

func sizeIn(value *entity.CompanySize, allowed []entity.CompanySize) bool {
	if value == nil {
		return false
	}
	for _, s := range allowed {
		if *value == s {
			return true
		}
	}
	return false
}

func maturityIn(value *entity.CloudMaturity, allowed []entity.CloudMaturity) bool {
	if value == nil {
		return false
	}
	for _, m := range allowed {
		if *value == m {
			return true
		}
	}
	return false
}

func competitorIn(value *string, allowed []string) bool {
	if value == nil {
		return false
	}
	for _, c := range allowed {
		if strings.EqualFold(*value, c) {
			return true
		}
	}
	return false
}

// anyOverlap matches keywords as substrings, so "analytics" catches
// "google_analytics" and "data" catches "database".
func anyOverlap(have, want []string) bool {
	for _, h := range have {
		lowered := strings.ToLower(h)
		for _, w := range want {
			if strings.Contains(lowered, strings.ToLower(w)) {
				return true
			}
		}
	}
	return false
}
