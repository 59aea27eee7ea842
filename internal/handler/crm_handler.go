package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/lead-qualifier/internal/crm"
	"github.com/octobees/lead-qualifier/internal/dto"
	middlewarepkg "github.com/octobees/lead-qualifier/internal/middleware"
	"github.com/octobees/lead-qualifier/internal/service"
)

// CRMSyncHandler pushes scored leads to the CRM collaborator.
type CRMSyncHandler struct {
	leads  *service.LeadsService
	syncer *crm.Syncer
}

// NewCRMSyncHandler constructs a sync handler backed by an HTTP client.
// If `client == nil`, the CRM client auto-configures an ID-token client.
func NewCRMSyncHandler(leads *service.LeadsService, client *http.Client, crmBaseURL string) *CRMSyncHandler {
	return &CRMSyncHandler{leads: leads, syncer: crm.NewSyncer(crm.NewClient(client, crmBaseURL))}
}

// NewCRMSyncHandlerWithSyncer allows injecting a custom syncer (useful for tests).
func NewCRMSyncHandlerWithSyncer(leads *service.LeadsService, syncer *crm.Syncer) *CRMSyncHandler {
	return &CRMSyncHandler{leads: leads, syncer: syncer}
}

// Sync handles POST /crm/sync requests.
func (h *CRMSyncHandler) Sync(c echo.Context) error {
	var req dto.SyncRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	createDeals := true
	if req.CreateDeals != nil {
		createDeals = *req.CreateDeals
	}

	ctx := c.Request().Context()
	leads, err := h.leads.LoadLeads(ctx, req.LeadIDs, req.MinScore)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to load leads for sync")
	}
	if len(leads) == 0 {
		return Error(c, http.StatusBadRequest, "no leads match the sync request")
	}

	summary := h.syncer.SyncBatch(ctx, leads, createDeals, middlewarepkg.RequestIDFromContext(c))
	return Success(c, http.StatusOK, "crm sync complete", summary)
}
