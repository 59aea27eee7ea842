package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/lead-qualifier/internal/dto"
	"github.com/octobees/lead-qualifier/internal/entity"
	middlewarepkg "github.com/octobees/lead-qualifier/internal/middleware"
	"github.com/octobees/lead-qualifier/internal/repository"
	"github.com/octobees/lead-qualifier/internal/service/playlist"
)

// PlaylistsHandler exposes playlist and recommendation endpoints.
type PlaylistsHandler struct {
	playlists *playlist.Service
}

// NewPlaylistsHandler creates a new handler instance.
func NewPlaylistsHandler(playlists *playlist.Service) *PlaylistsHandler {
	return &PlaylistsHandler{playlists: playlists}
}

// List handles GET /playlists requests.
func (h *PlaylistsHandler) List(c echo.Context) error {
	status := entity.PlaylistStatus(strings.TrimSpace(c.QueryParam("status")))
	if status == "" {
		status = entity.PlaylistActive
	}

	ctx := c.Request().Context()
	playlists, err := h.playlists.List(ctx, status)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to list playlists")
	}

	responses := make([]dto.PlaylistResponse, 0, len(playlists))
	for i := range playlists {
		count, err := h.playlists.MemberCount(ctx, playlists[i].ID)
		if err != nil {
			count = 0
		}
		responses = append(responses, playlistResponse(&playlists[i], count))
	}
	return Success(c, http.StatusOK, "playlists retrieved", responses)
}

// Create handles POST /playlists requests. A template key delegates to the
// catalogue; otherwise the playlist is built from the request body.
func (h *PlaylistsHandler) Create(c echo.Context) error {
	var req dto.CreatePlaylistRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	ctx := c.Request().Context()

	if key := strings.TrimSpace(req.Template); key != "" {
		created, err := h.playlists.CreateFromTemplate(ctx, key)
		if err != nil {
			return Error(c, http.StatusBadRequest, err.Error())
		}
		count, _ := h.playlists.MemberCount(ctx, created.ID)
		return Success(c, http.StatusCreated, "playlist created from template", playlistResponse(created, count))
	}

	created := &entity.Playlist{
		Name:         strings.TrimSpace(req.Name),
		Description:  strings.TrimSpace(req.Description),
		Type:         entity.PlaylistType(req.Type),
		Criteria:     req.Criteria,
		TargetCount:  req.TargetCount,
		RefreshHours: req.RefreshHours,
	}
	if err := h.playlists.Create(ctx, created); err != nil {
		return Error(c, http.StatusBadRequest, err.Error())
	}

	count, _ := h.playlists.MemberCount(ctx, created.ID)
	return Success(c, http.StatusCreated, "playlist created", playlistResponse(created, count))
}

// Refresh handles POST /playlists/:id/refresh requests.
func (h *PlaylistsHandler) Refresh(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid playlist id")
	}

	count, err := h.playlists.RefreshByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrPlaylistNotFound) {
			return Error(c, http.StatusNotFound, "playlist not found")
		}
		return Error(c, http.StatusBadRequest, err.Error())
	}

	return Success(c, http.StatusOK, "playlist refreshed", dto.RefreshResponse{
		PlaylistID: id,
		LeadCount:  count,
	})
}

// Leads handles GET /playlists/:id/leads requests.
func (h *PlaylistsHandler) Leads(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid playlist id")
	}

	members, err := h.playlists.Members(c.Request().Context(), id)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to load playlist leads")
	}

	responses := make([]dto.PlaylistLeadResponse, 0, len(members))
	for _, m := range members {
		responses = append(responses, dto.PlaylistLeadResponse{
			LeadID:      m.Membership.LeadID,
			CompanyName: m.CompanyName,
			Sector:      m.Sector,
			Score:       m.Membership.Score,
			Priority:    string(m.Membership.Priority),
			AddedAt:     m.Membership.AddedAt.Format(time.RFC3339),
		})
	}
	return Success(c, http.StatusOK, "playlist leads retrieved", responses)
}

// Stats handles GET /playlists/:id/stats requests.
func (h *PlaylistsHandler) Stats(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid playlist id")
	}

	stats, conversionRate, err := h.playlists.Stats(c.Request().Context(), id)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to load playlist stats")
	}

	return Success(c, http.StatusOK, "playlist stats retrieved", map[string]any{
		"stats":           stats,
		"conversion_rate": conversionRate,
	})
}

// Archive handles DELETE /playlists/:id requests.
func (h *PlaylistsHandler) Archive(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid playlist id")
	}

	if err := h.playlists.Archive(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrPlaylistNotFound) {
			return Error(c, http.StatusNotFound, "playlist not found")
		}
		return Error(c, http.StatusInternalServerError, "failed to archive playlist")
	}
	return Success(c, http.StatusOK, "playlist archived", nil)
}

// Recommendations handles GET /playlists/recommendations requests.
func (h *PlaylistsHandler) Recommendations(c echo.Context) error {
	userID, _ := c.Get(middlewarepkg.ContextKeyUserID).(string)

	recommendations, err := h.playlists.Recommendations(c.Request().Context(), userID)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to build recommendations")
	}

	responses := make([]dto.TemplateResponse, 0, len(recommendations))
	for _, rec := range recommendations {
		responses = append(responses, dto.TemplateResponse{
			Key:           rec.Template.Key,
			Name:          rec.Template.Name,
			Description:   rec.Template.Description,
			Criteria:      rec.Template.Criteria,
			Confidence:    rec.Confidence,
			EstimatedSize: rec.EstimatedSize,
		})
	}
	return Success(c, http.StatusOK, "playlist recommendations", responses)
}

// Daily handles GET /recommendations/daily requests.
func (h *PlaylistsHandler) Daily(c echo.Context) error {
	userID, _ := c.Get(middlewarepkg.ContextKeyUserID).(string)

	picks, err := h.playlists.DailyRecommendations(c.Request().Context(), userID)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to build daily recommendations")
	}

	responses := make([]dto.DailyRecommendation, 0, len(picks))
	for _, pick := range picks {
		responses = append(responses, dto.DailyRecommendation{
			LeadID:      pick.Lead.ID,
			CompanyName: pick.Lead.CompanyName,
			Sector:      sectorString(pick.Lead.Sector),
			Score:       pick.Lead.Score,
			Priority:    string(pick.Priority),
			Reason:      pick.Reason,
		})
	}
	return Success(c, http.StatusOK, "daily recommendations", responses)
}

// TrackEngagement handles POST /recommendations/engagement requests.
func (h *PlaylistsHandler) TrackEngagement(c echo.Context) error {
	var req dto.EngagementRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	userID, _ := c.Get(middlewarepkg.ContextKeyUserID).(string)
	engagement := &entity.LeadEngagement{
		LeadID:     req.LeadID,
		UserID:     userID,
		ActionType: strings.TrimSpace(req.Action),
	}
	if err := h.playlists.TrackEngagement(c.Request().Context(), engagement); err != nil {
		return Error(c, http.StatusBadRequest, err.Error())
	}

	return Success(c, http.StatusCreated, "engagement recorded", engagement)
}

// SetPreferences handles PUT /recommendations/preferences requests.
func (h *PlaylistsHandler) SetPreferences(c echo.Context) error {
	var req dto.PreferencesRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	userID, _ := c.Get(middlewarepkg.ContextKeyUserID).(string)
	prefs := &entity.UserPreferences{
		UserID:          userID,
		MinScore:        req.MinScore,
		MaxLeadsPerDay:  req.MaxLeadsPerDay,
		TrackEngagement: req.TrackEngagement,
	}
	for _, s := range req.Sectors {
		prefs.Sectors = append(prefs.Sectors, entity.ParseSector(strings.ToLower(s)))
	}
	for _, s := range req.CompanySizes {
		if entity.ValidSize(strings.ToLower(s)) {
			prefs.CompanySizes = append(prefs.CompanySizes, entity.CompanySize(strings.ToLower(s)))
		}
	}

	if err := h.playlists.SetPreferences(c.Request().Context(), prefs); err != nil {
		return Error(c, http.StatusBadRequest, err.Error())
	}
	return Success(c, http.StatusOK, "preferences saved", prefs)
}

func playlistResponse(p *entity.Playlist, leadCount int) dto.PlaylistResponse {
	resp := dto.PlaylistResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Type:         string(p.Type),
		Criteria:     p.Criteria,
		TargetCount:  p.TargetCount,
		RefreshHours: p.RefreshHours,
		LeadCount:    leadCount,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
		Status:       string(p.Status),
	}
	if p.LastRefreshed != nil {
		refreshed := p.LastRefreshed.Format(time.RFC3339)
		resp.LastRefreshed = &refreshed
	}
	return resp
}
