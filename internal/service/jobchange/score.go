package jobchange

import (
	"strings"

	"github.com/octobees/lead-qualifier/internal/entity"
)

// Opportunity score components. The base reflects that any movement by a
// known decision maker is worth a look; the bonuses reward the situations
// where a fresh conversation is most likely to land.
const (
	baseOpportunity     = 50.0
	companyChangeBonus  = 20.0
	promotionBonus      = 30.0
	lateralSeniorBonus  = 15.0
	targetIndustryBonus = 10.0
	recencyBonus        = 10.0
	maxOpportunity      = 100.0
)

var seniorRoleKeywords = []string{
	"diretor", "director", "head", "vp", "vice", "chief", "ceo", "cto", "cio",
}

var targetIndustryKeywords = []string{
	"tecnologia", "tech", "cloud", "aws", "digital", "software",
}

// classifyChange decides what moved between two observations. It must only
// be called when at least one of company or role differs.
func classifyChange(previousCompany, newCompany, previousRole, newRole string) entity.ChangeType {
	companyMoved := previousCompany != newCompany
	roleMoved := previousRole != newRole

	switch {
	case companyMoved && roleMoved:
		return entity.ChangeCompanyAndRole
	case companyMoved:
		return entity.ChangeCompany
	default:
		return entity.ChangeRole
	}
}

// opportunityScore rates how actionable a detected change is, clamped to
// [0, 100]. A promotion into a senior role is the strongest single signal;
// a senior contact staying senior at a new employer still warms the lead.
func opportunityScore(event *entity.JobChangeEvent) float64 {
	score := baseOpportunity

	if event.PreviousCompany != event.NewCompany {
		score += companyChangeBonus
	}

	wasSenior := isSeniorRole(event.PreviousRole)
	nowSenior := isSeniorRole(event.NewRole)
	switch {
	case nowSenior && !wasSenior:
		score += promotionBonus
	case nowSenior && wasSenior:
		score += lateralSeniorBonus
	}

	if hasTargetIndustryKeyword(event.NewCompany) {
		score += targetIndustryBonus
	}

	// Changes are scored the moment they are detected.
	score += recencyBonus

	if score > maxOpportunity {
		score = maxOpportunity
	}
	return score
}

func isSeniorRole(role string) bool {
	lowered := strings.ToLower(role)
	for _, keyword := range seniorRoleKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

func hasTargetIndustryKeyword(company string) bool {
	lowered := strings.ToLower(company)
	for _, keyword := range targetIndustryKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
