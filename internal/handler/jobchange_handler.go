package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/octobees/lead-qualifier/internal/dto"
	"github.com/octobees/lead-qualifier/internal/entity"
	"github.com/octobees/lead-qualifier/internal/repository"
	"github.com/octobees/lead-qualifier/internal/service/jobchange"
)

// JobChangeHandler exposes the tracked-contact monitoring endpoints.
type JobChangeHandler struct {
	monitor *jobchange.Monitor
}

// NewJobChangeHandler creates a new handler instance.
func NewJobChangeHandler(monitor *jobchange.Monitor) *JobChangeHandler {
	return &JobChangeHandler{monitor: monitor}
}

// TrackContact handles POST /jobchange/contacts requests.
func (h *JobChangeHandler) TrackContact(c echo.Context) error {
	var req dto.TrackContactRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	contact := &entity.TrackedContact{
		Name:              strings.TrimSpace(req.Name),
		CurrentCompany:    strings.TrimSpace(req.Company),
		CurrentRole:       strings.TrimSpace(req.Role),
		ProfileURL:        strings.TrimSpace(req.ProfileURL),
		Email:             req.Email,
		Phone:             req.Phone,
		OriginalLeadScore: req.LeadScore,
	}

	added, err := h.monitor.Track(c.Request().Context(), contact)
	if err != nil {
		return Error(c, http.StatusBadRequest, err.Error())
	}
	if !added {
		return Success(c, http.StatusOK, "contact already tracked", contactResponse(contact))
	}
	return Success(c, http.StatusCreated, "contact tracked", contactResponse(contact))
}

// ListContacts handles GET /jobchange/contacts requests.
func (h *JobChangeHandler) ListContacts(c echo.Context) error {
	status := entity.ContactStatus(strings.TrimSpace(c.QueryParam("status")))

	contacts, err := h.monitor.Contacts(c.Request().Context(), status)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to list contacts")
	}

	responses := make([]dto.ContactResponse, 0, len(contacts))
	for i := range contacts {
		responses = append(responses, contactResponse(&contacts[i]))
	}
	return Success(c, http.StatusOK, "contacts retrieved", responses)
}

// Poll handles POST /jobchange/poll requests, running one monitor cycle.
func (h *JobChangeHandler) Poll(c echo.Context) error {
	stats, err := h.monitor.RunCycle(c.Request().Context())
	if err != nil {
		return Error(c, http.StatusInternalServerError, "polling cycle failed")
	}

	return Success(c, http.StatusOK, "polling cycle complete", dto.MonitorCycleResponse{
		Checked:        stats.Checked,
		ChangesFound:   stats.ChangesFound,
		AlertsRaised:   stats.AlertsRaised,
		MarkedInactive: stats.MarkedInactive,
	})
}

// defaultAlertMinScore is the opportunity score an event needs before it
// surfaces as an alert when the caller sets no threshold.
const defaultAlertMinScore = 60.0

// Alerts handles GET /jobchange/alerts requests. The window defaults to
// seven days and the opportunity threshold to 60; pass days=N and
// min_score=N to adjust either.
func (h *JobChangeHandler) Alerts(c echo.Context) error {
	var window time.Duration
	if daysStr := strings.TrimSpace(c.QueryParam("days")); daysStr != "" {
		days, err := strconv.Atoi(daysStr)
		if err != nil || days <= 0 {
			return Error(c, http.StatusBadRequest, "invalid days")
		}
		window = time.Duration(days) * 24 * time.Hour
	}
	minScore := defaultAlertMinScore
	if raw := strings.TrimSpace(c.QueryParam("min_score")); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			return Error(c, http.StatusBadRequest, "invalid min_score")
		}
		minScore = parsed
	}
	status := entity.AlertStatus(strings.TrimSpace(c.QueryParam("status")))

	alerts, err := h.monitor.RecentAlerts(c.Request().Context(), window, minScore, status)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to load alerts")
	}

	responses := make([]dto.AlertResponse, 0, len(alerts))
	for _, alert := range alerts {
		responses = append(responses, dto.AlertResponse{
			EventID:          alert.Event.ID,
			ContactID:        alert.Contact.ID,
			ContactName:      alert.Contact.Name,
			ProfileURL:       alert.Contact.ProfileURL,
			PreviousCompany:  alert.Event.PreviousCompany,
			NewCompany:       alert.Event.NewCompany,
			PreviousRole:     alert.Event.PreviousRole,
			NewRole:          alert.Event.NewRole,
			ChangeType:       string(alert.Event.ChangeType),
			DetectedAt:       alert.Event.DetectedAt.Format(time.RFC3339),
			OpportunityScore: alert.Event.OpportunityScore,
			Priority:         string(alert.Priority),
			Message:          alert.Message,
			SuggestedAction:  alert.SuggestedAction,
			AlertStatus:      string(alert.Event.AlertStatus),
		})
	}
	return Success(c, http.StatusOK, "alerts retrieved", responses)
}

// UpdateAlert handles PATCH /jobchange/alerts/:id requests.
func (h *JobChangeHandler) UpdateAlert(c echo.Context) error {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid alert id")
	}

	var req dto.AlertStatusRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	err = h.monitor.UpdateAlertStatus(c.Request().Context(), eventID, entity.AlertStatus(req.Status))
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return Error(c, http.StatusNotFound, "alert not found")
		}
		return Error(c, http.StatusBadRequest, err.Error())
	}
	return Success(c, http.StatusOK, "alert updated", nil)
}

func contactResponse(contact *entity.TrackedContact) dto.ContactResponse {
	resp := dto.ContactResponse{
		ID:             contact.ID,
		Name:           contact.Name,
		CurrentCompany: contact.CurrentCompany,
		CurrentRole:    contact.CurrentRole,
		ProfileURL:     contact.ProfileURL,
		Email:          contact.Email,
		Phone:          contact.Phone,
		AddedAt:        contact.AddedAt.Format(time.RFC3339),
		Status:         string(contact.Status),
	}
	if contact.LastChecked != nil {
		checked := contact.LastChecked.Format(time.RFC3339)
		resp.LastChecked = &checked
	}
	return resp
}
