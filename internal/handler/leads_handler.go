package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/lead-qualifier/internal/dto"
	"github.com/octobees/lead-qualifier/internal/entity"
	"github.com/octobees/lead-qualifier/internal/repository"
	"github.com/octobees/lead-qualifier/internal/service"
	"github.com/octobees/lead-qualifier/internal/service/scoring"
)

// LeadsHandler exposes the lead catalogue and qualification endpoints.
type LeadsHandler struct {
	leads *service.LeadsService
}

// NewLeadsHandler creates a new handler instance.
func NewLeadsHandler(leads *service.LeadsService) *LeadsHandler {
	return &LeadsHandler{leads: leads}
}

// List handles GET /leads requests.
func (h *LeadsHandler) List(c echo.Context) error {
	return h.listInternal(c, false)
}

// ListAdmin handles GET /admin/leads requests, including score breakdowns.
func (h *LeadsHandler) ListAdmin(c echo.Context) error {
	return h.listInternal(c, true)
}

func (h *LeadsHandler) listInternal(c echo.Context, includeDetails bool) error {
	filter := dto.LeadFilter{
		Q:             strings.TrimSpace(c.QueryParam("q")),
		Sector:        strings.TrimSpace(c.QueryParam("sector")),
		CompanySize:   strings.TrimSpace(c.QueryParam("company_size")),
		CloudMaturity: strings.TrimSpace(c.QueryParam("cloud_maturity")),
		City:          strings.TrimSpace(c.QueryParam("city")),
		WebsiteStatus: strings.TrimSpace(c.QueryParam("website")),
		Page:          parseIntDefault(c.QueryParam("page"), 1),
		PerPage:       parseIntDefault(c.QueryParam("per_page"), 20),
	}

	if minScoreStr := strings.TrimSpace(c.QueryParam("min_score")); minScoreStr != "" {
		minScore, err := strconv.ParseFloat(minScoreStr, 64)
		if err != nil {
			return Error(c, http.StatusBadRequest, "invalid min_score")
		}
		filter.MinScore = &minScore
	}

	leads, err := h.leads.ListLeads(c.Request().Context(), filter)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to list leads")
	}

	responses := make([]dto.LeadResponse, 0, len(leads))
	for i := range leads {
		responses = append(responses, leadResponse(&leads[i], includeDetails))
	}
	return Success(c, http.StatusOK, "leads retrieved", responses)
}

// Get handles GET /leads/:id requests.
func (h *LeadsHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid lead id")
	}

	lead, err := h.leads.GetLead(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			return Error(c, http.StatusNotFound, "lead not found")
		}
		return Error(c, http.StatusInternalServerError, "failed to load lead")
	}

	return Success(c, http.StatusOK, "lead retrieved", leadResponse(lead, true))
}

// Qualify handles POST /leads/qualify requests.
func (h *LeadsHandler) Qualify(c echo.Context) error {
	var req dto.QualifyRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	response, err := h.leads.Qualify(c.Request().Context(), req.LeadIDs, req.Enrich)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "qualification run failed")
	}

	return Success(c, http.StatusOK, "qualification complete", response)
}

// Export handles GET /leads/export requests. CSV is the default; pass
// format=json for the JSON rendition.
func (h *LeadsHandler) Export(c echo.Context) error {
	filter := dto.LeadFilter{
		Sector:  strings.TrimSpace(c.QueryParam("sector")),
		Page:    parseIntDefault(c.QueryParam("page"), 1),
		PerPage: parseIntDefault(c.QueryParam("per_page"), 100),
	}
	if minScoreStr := strings.TrimSpace(c.QueryParam("min_score")); minScoreStr != "" {
		if minScore, err := strconv.ParseFloat(minScoreStr, 64); err == nil {
			filter.MinScore = &minScore
		}
	}

	if strings.EqualFold(c.QueryParam("format"), "json") {
		leads, err := h.leads.ListLeads(c.Request().Context(), filter)
		if err != nil {
			return Error(c, http.StatusInternalServerError, "failed to export leads")
		}
		responses := make([]dto.LeadResponse, 0, len(leads))
		for i := range leads {
			responses = append(responses, leadResponse(&leads[i], true))
		}
		return Success(c, http.StatusOK, "leads exported", responses)
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="leads.csv"`)
	c.Response().WriteHeader(http.StatusOK)

	if _, err := h.leads.ExportLeadsCSV(c.Request().Context(), filter, c.Response()); err != nil {
		return err
	}
	return nil
}

func leadResponse(lead *entity.Lead, includeDetails bool) dto.LeadResponse {
	resp := dto.LeadResponse{
		ID:              lead.ID,
		CompanyName:     lead.CompanyName,
		TaxID:           lead.TaxID,
		Website:         lead.Website,
		Email:           lead.Email,
		Phone:           lead.Phone,
		Address:         lead.Address,
		City:            lead.City,
		Region:          lead.Region,
		Sector:          sectorString(lead.Sector),
		CompanySize:     sizeString(lead.CompanySize),
		EmployeeCount:   lead.EmployeeCount,
		AnnualRevenue:   lead.AnnualRevenue,
		DecisionMakers:  lead.DecisionMakers,
		Technologies:    lead.Technologies,
		CloudMaturity:   maturityString(lead.CloudMaturity),
		UsesTargetCloud: lead.UsesTargetCloud,
		CompetitorCloud: lead.CompetitorCloud,
		PainPoints:      lead.PainPoints,
		Score:           lead.Score,
		Priority:        string(lead.Priority()),
		Recommendations: scoring.Recommendations(lead),
		Notes:           lead.Notes,
		Source:          lead.Source,
		ExtractedAt:     lead.ExtractedAt.Format(time.RFC3339),
		UpdatedAt:       lead.UpdatedAt.Format(time.RFC3339),
	}
	if includeDetails {
		resp.ScoreDetails = lead.ScoreDetails
	}
	return resp
}

func sectorString(value *entity.Sector) *string {
	if value == nil {
		return nil
	}
	s := string(*value)
	return &s
}

func sizeString(value *entity.CompanySize) *string {
	if value == nil {
		return nil
	}
	s := string(*value)
	return &s
}

func maturityString(value *entity.CloudMaturity) *string {
	if value == nil {
		return nil
	}
	s := string(*value)
	return &s
}

func parseIntDefault(input string, fallback int) int {
	if input == "" {
		return fallback
	}
	if value, err := strconv.Atoi(input); err == nil {
		return value
	}
	return fallback
}
