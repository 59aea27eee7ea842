package scoring

import (
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/octobees/lead-qualifier/internal/entity"
)

// Factor keys used in the per-lead score breakdown.
const (
	FactorCompanySize     = "company_size"
	FactorDigitalMaturity = "digital_maturity"
	FactorCloudUsage      = "cloud_usage"
	FactorSectorFit       = "sector_fit"
)

// Weights are the per-factor multipliers. They are expected to sum to 1.0
// but any non-negative values are accepted; the total scales accordingly.
type Weights struct {
	CompanySize     float64
	DigitalMaturity float64
	CloudUsage      float64
	SectorFit       float64
}

// DefaultWeights mirror the production configuration defaults.
var DefaultWeights = Weights{
	CompanySize:     0.3,
	DigitalMaturity: 0.25,
	CloudUsage:      0.25,
	SectorFit:       0.2,
}

var sizeScores = map[entity.CompanySize]float64{
	entity.SizeMicro:      10,
	entity.SizeSmall:      30,
	entity.SizeMedium:     60,
	entity.SizeLarge:      90,
	entity.SizeEnterprise: 100,
}

const unknownSizeScore = 30

var maturityScores = map[entity.CloudMaturity]float64{
	entity.MaturityNone:      0,
	entity.MaturityExploring: 20,
	entity.MaturityAdopting:  40,
	entity.MaturityMature:    60,
	entity.MaturityNative:    80,
}

var competitorScores = map[string]float64{
	"azure":        80,
	"gcp":          80,
	"google cloud": 80,
	"ibm":          70,
	"ibm cloud":    70,
	"oracle":       70,
	"oracle cloud": 70,
	"alibaba":      60,
	"other":        50,
}

const unknownCompetitorScore = 50

// Keywords scanned in free-text notes as digital transformation indicators.
var techKeywords = []string{
	"digital", "tech", "software", "cloud", "data",
	"analytics", "ai", "ml", "automation", "devops",
}

// Managed-service keywords counted as existing target-platform usage.
var targetServiceKeywords = []string{
	"ec2", "s3", "rds", "lambda", "cloudfront", "elastic",
	"dynamodb", "redshift", "sagemaker", "ecs", "eks",
	"fargate", "aurora", "cloudwatch", "route53",
}

// Pain points the target platform can plausibly address.
var solvablePainKeywords = []string{
	"scalability", "performance", "cost", "reliability",
	"security", "compliance", "infrastructure", "deployment",
	"monitoring", "backup", "disaster recovery",
}

var targetSectors = map[entity.Sector]bool{
	entity.SectorBanking:       true,
	entity.SectorFintech:       true,
	entity.SectorRetail:        true,
	entity.SectorEcommerce:     true,
	entity.SectorManufacturing: true,
	entity.SectorMining:        true,
	entity.SectorTechnology:    true,
	entity.SectorHealthcare:    true,
}

var sectorSuccessScores = map[entity.Sector]float64{
	entity.SectorBanking:       100,
	entity.SectorFintech:       95,
	entity.SectorRetail:        90,
	entity.SectorMining:        90,
	entity.SectorTechnology:    85,
	entity.SectorHealthcare:    85,
	entity.SectorManufacturing: 80,
	entity.SectorEcommerce:     80,
}

const (
	targetSectorBaseScore  = 80
	unknownSectorScore     = 40
	nonTargetSectorScore   = 40
	notesKeywordPoints     = 5
	websitePoints          = 20
	perTechnologyPoints    = 10
	technologyPointsCap    = 40
	perServiceKeywordScore = 20
	serviceKeywordCap      = 80
	perPainPointScore      = 10
	painPointCap           = 70
)

// ScoreError reports a lead that could not be scored. The batch scorer keeps
// the lead in its output with score zero rather than aborting.
type ScoreError struct {
	CompanyName string
	Reason      string
}

// Error implements the error interface.
func (e ScoreError) Error() string {
	return fmt.Sprintf("score lead %q: %s", e.CompanyName, e.Reason)
}

// ScoreLead computes the weighted fit score and stores it, with its factor
// breakdown, on the lead. Priority is never stored: it derives from the score.
func ScoreLead(lead *entity.Lead, w Weights) error {
	if lead == nil {
		return ScoreError{Reason: "lead is nil"}
	}
	if strings.TrimSpace(lead.CompanyName) == "" {
		return ScoreError{Reason: "company name is required"}
	}

	details := map[string]float64{
		FactorCompanySize:     scoreCompanySize(lead),
		FactorDigitalMaturity: scoreDigitalMaturity(lead),
		FactorCloudUsage:      scoreCloudUsage(lead),
		FactorSectorFit:       scoreSectorFit(lead),
	}

	total := details[FactorCompanySize]*w.CompanySize +
		details[FactorDigitalMaturity]*w.DigitalMaturity +
		details[FactorCloudUsage]*w.CloudUsage +
		details[FactorSectorFit]*w.SectorFit

	lead.Score = math.Round(total*100) / 100
	lead.ScoreDetails = details

	return nil
}

// ScoreBatch scores every lead independently. A failure on one lead leaves it
// in the output with score zero; the batch never aborts and the output always
// has the same length as the input. The result is sorted by score descending;
// equal scores keep their input order (stable sort).
func ScoreBatch(leads []*entity.Lead, w Weights) ([]*entity.Lead, []ScoreError) {
	scored := make([]*entity.Lead, 0, len(leads))
	var failures []ScoreError

	for _, lead := range leads {
		if err := ScoreLead(lead, w); err != nil {
			var scoreErr ScoreError
			if se, ok := err.(ScoreError); ok {
				scoreErr = se
			} else {
				scoreErr = ScoreError{Reason: err.Error()}
			}
			log.Printf("scoring failure company=%q reason=%q", scoreErr.CompanyName, scoreErr.Reason)
			failures = append(failures, scoreErr)
			if lead == nil {
				lead = &entity.Lead{}
			}
			lead.Score = 0
		}
		scored = append(scored, lead)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored, failures
}

func scoreCompanySize(lead *entity.Lead) float64 {
	if lead.CompanySize == nil {
		return unknownSizeScore
	}
	if score, ok := sizeScores[*lead.CompanySize]; ok {
		return score
	}
	return unknownSizeScore
}

// scoreDigitalMaturity mixes additive bonuses with a maturity-stage floor.
// The stage score is taken as max with the running total, not added, so a
// lead with few visible technologies but native cloud usage still floors at 80.
func scoreDigitalMaturity(lead *entity.Lead) float64 {
	score := 0.0

	if lead.Website != nil && strings.TrimSpace(*lead.Website) != "" {
		score += websitePoints
	}

	if len(lead.Technologies) > 0 {
		techScore := float64(len(lead.Technologies)) * perTechnologyPoints
		if techScore > technologyPointsCap {
			techScore = technologyPointsCap
		}
		score += techScore
	}

	if lead.CloudMaturity != nil {
		if floor, ok := maturityScores[*lead.CloudMaturity]; ok && floor > score {
			score = floor
		}
	}

	if lead.Notes != nil {
		notes := strings.ToLower(*lead.Notes)
		for _, keyword := range techKeywords {
			if strings.Contains(notes, keyword) {
				score += notesKeywordPoints
				if score >= 100 {
					break
				}
			}
		}
	}

	return math.Min(score, 100)
}

// scoreCloudUsage takes the maximum of the provider-derived value and the
// pain-point-derived value rather than adding them.
func scoreCloudUsage(lead *entity.Lead) float64 {
	score := 0.0

	switch {
	case lead.UsesTargetCloud:
		score = 100
	case lead.CompetitorCloud != nil && strings.TrimSpace(*lead.CompetitorCloud) != "":
		key := strings.ToLower(strings.TrimSpace(*lead.CompetitorCloud))
		if s, ok := competitorScores[key]; ok {
			score = s
		} else {
			score = unknownCompetitorScore
		}
	case len(lead.Technologies) > 0:
		matches := 0
		for _, tech := range lead.Technologies {
			lowered := strings.ToLower(tech)
			for _, keyword := range targetServiceKeywords {
				if strings.Contains(lowered, keyword) {
					matches++
					break
				}
			}
		}
		score = math.Min(float64(matches)*perServiceKeywordScore, serviceKeywordCap)
	}

	if len(lead.PainPoints) > 0 {
		painScore := 0.0
		for _, pain := range lead.PainPoints {
			lowered := strings.ToLower(pain)
			for _, keyword := range solvablePainKeywords {
				if strings.Contains(lowered, keyword) {
					painScore += perPainPointScore
					break
				}
			}
		}
		score = math.Max(score, math.Min(painScore, painPointCap))
	}

	return score
}

func scoreSectorFit(lead *entity.Lead) float64 {
	if lead.Sector == nil {
		return unknownSectorScore
	}
	if !targetSectors[*lead.Sector] {
		return nonTargetSectorScore
	}
	if score, ok := sectorSuccessScores[*lead.Sector]; ok {
		return score
	}
	return targetSectorBaseScore
}
