package playlist

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/lead-qualifier/internal/entity"
	"github.com/octobees/lead-qualifier/internal/repository"
)

// Recommendation is a catalogue template annotated with fit and size.
type Recommendation struct {
	Template      Template
	Confidence    float64
	EstimatedSize int
}

// DailyPick is one lead suggested for today's outreach.
type DailyPick struct {
	Lead     entity.Lead
	Priority entity.Priority
	Reason   string
}

// Default preferences applied when the user never set any.
var defaultPreferences = entity.UserPreferences{
	Sectors:        []entity.Sector{entity.SectorBanking, entity.SectorTechnology, entity.SectorRetail},
	CompanySizes:   []entity.CompanySize{entity.SizeMedium, entity.SizeLarge, entity.SizeEnterprise},
	MinScore:       60,
	MaxLeadsPerDay: 10,
}

// Service manages playlists: creation, refresh, recommendations and
// engagement tracking.
type Service struct {
	playlists repository.PlaylistsRepository
	leads     repository.LeadsRepository
	now       func() time.Time
}

// NewService wires a playlist service.
func NewService(playlists repository.PlaylistsRepository, leads repository.LeadsRepository) *Service {
	return &Service{playlists: playlists, leads: leads, now: time.Now}
}

// Create validates and stores a playlist. Dynamic playlists are populated
// immediately so they are never empty between creation and first refresh.
func (s *Service) Create(ctx context.Context, playlist *entity.Playlist) error {
	if playlist == nil || playlist.Name == "" {
		return fmt.Errorf("playlist name is required")
	}
	switch playlist.Type {
	case entity.PlaylistDynamic, entity.PlaylistStatic:
	case "":
		playlist.Type = entity.PlaylistDynamic
	default:
		return fmt.Errorf("unknown playlist type %q", playlist.Type)
	}
	if playlist.TargetCount <= 0 {
		playlist.TargetCount = 50
	}
	if playlist.RefreshHours <= 0 {
		playlist.RefreshHours = 24
	}

	if err := s.playlists.Create(ctx, playlist); err != nil {
		return err
	}

	if playlist.Type == entity.PlaylistDynamic {
		if _, err := s.Refresh(ctx, playlist); err != nil {
			log.Printf("playlist initial refresh failed id=%s err=%v", playlist.ID, err)
		}
	}
	return nil
}

// CreateFromTemplate instantiates a catalogue template as a new playlist.
func (s *Service) CreateFromTemplate(ctx context.Context, key string) (*entity.Playlist, error) {
	tpl, ok := TemplateByKey(key)
	if !ok {
		return nil, fmt.Errorf("unknown template %q", key)
	}

	playlist := &entity.Playlist{
		Name:        tpl.Name,
		Description: tpl.Description,
		Type:        entity.PlaylistDynamic,
		Criteria:    tpl.Criteria,
	}
	if err := s.Create(ctx, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

// List returns playlists, optionally filtered by status.
func (s *Service) List(ctx context.Context, status entity.PlaylistStatus) ([]entity.Playlist, error) {
	return s.playlists.List(ctx, status)
}

// Get fetches a single playlist.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*entity.Playlist, error) {
	return s.playlists.GetByID(ctx, id)
}

// Archive retires a playlist from refresh cycles and recommendations.
func (s *Service) Archive(ctx context.Context, id uuid.UUID) error {
	return s.playlists.SetStatus(ctx, id, entity.PlaylistArchived)
}

// Members returns the playlist's current membership.
func (s *Service) Members(ctx context.Context, id uuid.UUID) ([]repository.PlaylistMember, error) {
	return s.playlists.Members(ctx, id)
}

// MemberCount returns the playlist's current size.
func (s *Service) MemberCount(ctx context.Context, id uuid.UUID) (int, error) {
	return s.playlists.MemberCount(ctx, id)
}

// Stats returns membership and engagement figures plus the derived
// conversion rate.
func (s *Service) Stats(ctx context.Context, id uuid.UUID) (*repository.PlaylistStats, float64, error) {
	stats, err := s.playlists.Stats(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	var conversion float64
	if stats.TotalLeads > 0 {
		conversion = float64(stats.ContactedLeads) / float64(stats.TotalLeads) * 100
	}
	return stats, conversion, nil
}

// Refresh recomputes a dynamic playlist's membership from the current lead
// pool and replaces it atomically. Returns the new member count.
func (s *Service) Refresh(ctx context.Context, playlist *entity.Playlist) (int, error) {
	if playlist == nil {
		return 0, fmt.Errorf("playlist is nil")
	}
	if playlist.Type != entity.PlaylistDynamic {
		return 0, fmt.Errorf("playlist %q is static; membership is managed manually", playlist.Name)
	}

	pool, err := s.leads.Candidates(ctx, playlist.Criteria.MinScore)
	if err != nil {
		return 0, fmt.Errorf("load candidate leads: %w", err)
	}

	members := Select(pool, playlist.Criteria, playlist.TargetCount)
	if err := s.playlists.ReplaceMembership(ctx, playlist.ID, members); err != nil {
		return 0, err
	}

	log.Printf("playlist refreshed id=%s name=%q leads=%d", playlist.ID, playlist.Name, len(members))
	return len(members), nil
}

// RefreshByID loads the playlist and refreshes it.
func (s *Service) RefreshByID(ctx context.Context, id uuid.UUID) (int, error) {
	playlist, err := s.playlists.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return s.Refresh(ctx, playlist)
}

// RefreshDue refreshes every active dynamic playlist whose interval has
// elapsed. Per-playlist failures are logged; the pass continues.
func (s *Service) RefreshDue(ctx context.Context) (int, error) {
	due, err := s.playlists.DueForRefresh(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("load playlists due for refresh: %w", err)
	}

	refreshed := 0
	for i := range due {
		if _, err := s.Refresh(ctx, &due[i]); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return refreshed, err
			}
			log.Printf("playlist refresh failed id=%s err=%v", due[i].ID, err)
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

// Run refreshes due playlists on the given interval until the context is
// cancelled.
func (s *Service) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = time.Hour
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RefreshDue(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("playlist refresh pass failed err=%v", err)
			}
		}
	}
}

// Recommendations returns up to five catalogue templates ranked by fit for
// the user, most confident first.
func (s *Service) Recommendations(ctx context.Context, userID string) ([]Recommendation, error) {
	prefs := s.preferences(ctx, userID)

	templates := Templates(prefs)
	recommendations := make([]Recommendation, 0, len(templates))
	for _, tpl := range templates {
		recommendations = append(recommendations, Recommendation{
			Template:      tpl,
			Confidence:    Confidence(tpl, prefs),
			EstimatedSize: EstimatedSize(tpl.Criteria),
		})
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		if recommendations[i].Confidence != recommendations[j].Confidence {
			return recommendations[i].Confidence > recommendations[j].Confidence
		}
		return recommendations[i].EstimatedSize > recommendations[j].EstimatedSize
	})

	if len(recommendations) > 5 {
		recommendations = recommendations[:5]
	}
	return recommendations, nil
}

// DailyRecommendations picks today's leads for the user: the best-scoring
// members of active playlists matching their preferences, de-duplicated by
// company name and excluding anything they already engaged with in the
// last day. Leads outside every active playlist are never suggested.
func (s *Service) DailyRecommendations(ctx context.Context, userID string) ([]DailyPick, error) {
	prefs := s.preferences(ctx, userID)

	limit := prefs.MaxLeadsPerDay
	if limit <= 0 {
		limit = 10
	}

	pool, err := s.playlists.ActivePlaylistLeads(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active playlist leads: %w", err)
	}

	engaged, err := s.playlists.EngagedLeadIDs(ctx, userID, s.now().Add(-24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("load engaged leads: %w", err)
	}

	criteria := entity.Criteria{
		MinScore:     prefs.MinScore,
		Sectors:      prefs.Sectors,
		CompanySizes: prefs.CompanySizes,
	}

	picks := make([]DailyPick, 0, limit)
	seenCompanies := make(map[string]bool)
	for i := range pool {
		if len(picks) >= limit {
			break
		}
		lead := pool[i]
		if engaged[lead.ID] || seenCompanies[lead.CompanyName] {
			continue
		}
		if !Matches(&lead, criteria) {
			continue
		}
		seenCompanies[lead.CompanyName] = true
		picks = append(picks, DailyPick{
			Lead:     lead,
			Priority: lead.Priority(),
			Reason:   pickReason(&lead),
		})
	}
	return picks, nil
}

// TrackEngagement records an outreach action against a lead.
func (s *Service) TrackEngagement(ctx context.Context, engagement *entity.LeadEngagement) error {
	if engagement == nil || engagement.LeadID == uuid.Nil {
		return fmt.Errorf("engagement lead id is required")
	}
	if engagement.ActionType == "" {
		return fmt.Errorf("engagement action type is required")
	}
	return s.playlists.RecordEngagement(ctx, engagement)
}

// SetPreferences stores the user's recommendation preferences.
func (s *Service) SetPreferences(ctx context.Context, prefs *entity.UserPreferences) error {
	if prefs == nil || prefs.UserID == "" {
		return fmt.Errorf("preferences user id is required")
	}
	return s.playlists.UpsertPreferences(ctx, prefs)
}

// preferences loads the user's stored preferences, falling back to the
// defaults when none exist or the store is unreachable.
func (s *Service) preferences(ctx context.Context, userID string) entity.UserPreferences {
	prefs, err := s.playlists.GetPreferences(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrPreferencesNotFound) {
			log.Printf("preferences lookup failed user=%s err=%v", userID, err)
		}
		defaults := defaultPreferences
		defaults.UserID = userID
		return defaults
	}
	return *prefs
}

// pickReason explains why a lead made today's list, strongest signal first.
func pickReason(lead *entity.Lead) string {
	switch {
	case lead.Score >= 80:
		return "Top-tier score: extremely qualified prospect"
	case lead.UsesTargetCloud:
		return "Already on the target cloud: expansion opportunity"
	case lead.CompetitorCloud != nil:
		return fmt.Sprintf("On %s today: migration conversation", *lead.CompetitorCloud)
	case lead.Score >= 70:
		return "High score: strong opportunity"
	default:
		return "No cloud footprint yet: first-migration opportunity"
	}
}
