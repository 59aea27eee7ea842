package crm

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/octobees/lead-qualifier/internal/entity"
	"github.com/octobees/lead-qualifier/internal/service/scoring"
)

// Deals are only opened for WARM and HOT leads.
const minDealScore = 60

// At most this many decision makers are pushed as contacts per lead.
const maxDecisionMakerContacts = 5

// Result reports the outcome of syncing a single lead.
type Result struct {
	LeadID      string   `json:"lead_id"`
	CompanyName string   `json:"company_name"`
	Success     bool     `json:"success"`
	CompanyID   string   `json:"company_id,omitempty"`
	ContactID   string   `json:"contact_id,omitempty"`
	DealID      string   `json:"deal_id,omitempty"`
	Errors      []string `json:"errors,omitempty"`
}

// BatchSummary aggregates per-lead sync results.
type BatchSummary struct {
	Synced  int      `json:"synced"`
	Failed  int      `json:"failed"`
	Results []Result `json:"results"`
}

// Syncer pushes scored leads to the CRM collaborator. Each lead is handled
// independently; one failure never aborts the batch.
type Syncer struct {
	crm Poster
}

// NewSyncer wires a syncer around the given poster.
func NewSyncer(crm Poster) *Syncer {
	return &Syncer{crm: crm}
}

// SyncBatch syncs every lead and returns per-record results.
func (s *Syncer) SyncBatch(ctx context.Context, leads []entity.Lead, createDeals bool, requestID string) BatchSummary {
	summary := BatchSummary{Results: make([]Result, 0, len(leads))}

	for i := range leads {
		result := s.SyncLead(ctx, &leads[i], createDeals, requestID)
		if result.Success {
			summary.Synced++
		} else {
			summary.Failed++
		}
		summary.Results = append(summary.Results, result)
	}

	log.Printf("crm sync synced=%d failed=%d", summary.Synced, summary.Failed)
	return summary
}

// SyncLead pushes one lead: company record, contacts for the primary email
// and decision makers, and a deal when the score qualifies. The company is
// mandatory; contact and deal failures are reported but do not fail the sync.
func (s *Syncer) SyncLead(ctx context.Context, lead *entity.Lead, createDeal bool, requestID string) Result {
	result := Result{CompanyName: lead.CompanyName}
	if lead.ID != uuid.Nil {
		result.LeadID = lead.ID.String()
	}

	companyID, err := s.syncCompany(ctx, lead, requestID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("company: %v", err))
		return result
	}
	result.CompanyID = companyID

	contactID, err := s.syncContacts(ctx, lead, companyID, requestID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("contacts: %v", err))
	}
	result.ContactID = contactID

	if createDeal && lead.Score >= minDealScore {
		dealID, err := s.syncDeal(ctx, lead, companyID, requestID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("deal: %v", err))
		}
		result.DealID = dealID
	}

	result.Success = true
	return result
}

func (s *Syncer) syncCompany(ctx context.Context, lead *entity.Lead, requestID string) (string, error) {
	payload := map[string]any{
		"name":              lead.CompanyName,
		"score":             lead.Score,
		"priority":          string(lead.Priority()),
		"uses_target_cloud": lead.UsesTargetCloud,
		"description":       companyDescription(lead),
	}
	if lead.Website != nil {
		payload["website"] = *lead.Website
		if domain := extractDomain(*lead.Website); domain != "" {
			payload["domain"] = domain
		}
	}
	putString(payload, "phone", lead.Phone)
	putString(payload, "city", lead.City)
	putString(payload, "region", lead.Region)
	putString(payload, "tax_id", lead.TaxID)
	putString(payload, "competitor_cloud", lead.CompetitorCloud)
	if lead.Sector != nil {
		payload["industry"] = string(*lead.Sector)
	}
	if lead.CompanySize != nil {
		payload["company_size"] = string(*lead.CompanySize)
	}
	if lead.CloudMaturity != nil {
		payload["cloud_maturity"] = string(*lead.CloudMaturity)
	}
	if lead.EmployeeCount != nil {
		payload["employee_count"] = *lead.EmployeeCount
	}
	if lead.AnnualRevenue != nil {
		payload["annual_revenue"] = *lead.AnnualRevenue
	}

	data, err := s.crm.PostJSON(ctx, "/v1/companies", payload, requestID)
	if err != nil {
		return "", err
	}
	id := idFrom(data)
	if id == "" {
		return "", fmt.Errorf("collaborator returned no company id")
	}
	return id, nil
}

func (s *Syncer) syncContacts(ctx context.Context, lead *entity.Lead, companyID, requestID string) (string, error) {
	var primaryID string
	var firstErr error

	if lead.Email != nil && *lead.Email != "" {
		payload := map[string]any{
			"email":      *lead.Email,
			"company":    lead.CompanyName,
			"company_id": companyID,
		}
		putString(payload, "phone", lead.Phone)
		putString(payload, "city", lead.City)
		putString(payload, "source", lead.Source)

		data, err := s.crm.PostJSON(ctx, "/v1/contacts", payload, requestID)
		if err != nil {
			firstErr = err
		} else {
			primaryID = idFrom(data)
		}
	}

	makers := lead.DecisionMakers
	if len(makers) > maxDecisionMakerContacts {
		makers = makers[:maxDecisionMakerContacts]
	}
	for _, dm := range makers {
		if dm.Email == "" {
			continue
		}
		payload := map[string]any{
			"email":      dm.Email,
			"company":    lead.CompanyName,
			"company_id": companyID,
			"job_title":  dm.Role,
		}
		if dm.Name != "" {
			payload["name"] = dm.Name
		}
		if dm.ProfileURL != "" {
			payload["profile_url"] = dm.ProfileURL
		}
		data, err := s.crm.PostJSON(ctx, "/v1/contacts", payload, requestID)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if primaryID == "" {
			primaryID = idFrom(data)
		}
	}

	return primaryID, firstErr
}

func (s *Syncer) syncDeal(ctx context.Context, lead *entity.Lead, companyID, requestID string) (string, error) {
	payload := map[string]any{
		"name":        fmt.Sprintf("Cloud Migration - %s", lead.CompanyName),
		"stage":       dealStage(lead.Score),
		"company_id":  companyID,
		"score":       lead.Score,
		"priority":    string(lead.Priority()),
		"description": dealDescription(lead),
	}
	if len(lead.Technologies) > 0 {
		techs := lead.Technologies
		if len(techs) > 5 {
			techs = techs[:5]
		}
		payload["services_potential"] = strings.Join(techs, ", ")
	}

	data, err := s.crm.PostJSON(ctx, "/v1/deals", payload, requestID)
	if err != nil {
		return "", err
	}
	return idFrom(data), nil
}

func dealStage(score float64) string {
	switch {
	case score >= 80:
		return "qualifiedtobuy"
	case score >= 60:
		return "presentationscheduled"
	default:
		return "appointmentscheduled"
	}
}

func companyDescription(lead *entity.Lead) string {
	var b strings.Builder
	sector := "not identified"
	if lead.Sector != nil {
		sector = string(*lead.Sector)
	}
	size := "not identified"
	if lead.CompanySize != nil {
		size = string(*lead.CompanySize)
	}
	fmt.Fprintf(&b, "Sector: %s. Size: %s. Score: %s (%s).\n",
		sector, size, strconv.FormatFloat(lead.Score, 'f', 2, 64), lead.Priority())

	if lead.CloudMaturity != nil {
		fmt.Fprintf(&b, "Cloud maturity: %s.\n", *lead.CloudMaturity)
	}
	if lead.UsesTargetCloud {
		b.WriteString("Already uses the target cloud.\n")
	} else if lead.CompetitorCloud != nil {
		fmt.Fprintf(&b, "Uses competitor cloud: %s.\n", *lead.CompetitorCloud)
	}
	if len(lead.PainPoints) > 0 {
		points := lead.PainPoints
		if len(points) > 3 {
			points = points[:3]
		}
		fmt.Fprintf(&b, "Pain points: %s.\n", strings.Join(points, ", "))
	}
	return b.String()
}

func dealDescription(lead *entity.Lead) string {
	var b strings.Builder
	b.WriteString("Cloud migration and optimization opportunity.\n")
	for _, rec := range scoring.Recommendations(lead) {
		fmt.Fprintf(&b, "- %s\n", rec)
	}
	return b.String()
}

func extractDomain(website string) string {
	if !strings.Contains(website, "://") {
		website = "https://" + website
	}
	u, err := url.Parse(website)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Host, "www.")
}

func putString(payload map[string]any, key string, value *string) {
	if value != nil && *value != "" {
		payload[key] = *value
	}
}

func idFrom(data map[string]any) string {
	switch v := data["id"].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
