package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/lead-qualifier/internal/entity"
)

// PlaylistsRepository describes persistence for playlists, their
// membership, user preferences and engagement records.
type PlaylistsRepository interface {
	Create(ctx context.Context, playlist *entity.Playlist) error
	List(ctx context.Context, status entity.PlaylistStatus) ([]entity.Playlist, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Playlist, error)
	SetStatus(ctx context.Context, id uuid.UUID, status entity.PlaylistStatus) error
	DueForRefresh(ctx context.Context, now time.Time) ([]entity.Playlist, error)
	ReplaceMembership(ctx context.Context, playlistID uuid.UUID, members []entity.PlaylistLead) error
	Members(ctx context.Context, playlistID uuid.UUID) ([]PlaylistMember, error)
	ActivePlaylistLeads(ctx context.Context) ([]entity.Lead, error)
	MemberCount(ctx context.Context, playlistID uuid.UUID) (int, error)
	UpsertPreferences(ctx context.Context, prefs *entity.UserPreferences) error
	GetPreferences(ctx context.Context, userID string) (*entity.UserPreferences, error)
	RecordEngagement(ctx context.Context, engagement *entity.LeadEngagement) error
	EngagedLeadIDs(ctx context.Context, userID string, since time.Time) (map[uuid.UUID]bool, error)
	Stats(ctx context.Context, playlistID uuid.UUID) (*PlaylistStats, error)
}

// ActionStats counts engagements of one action type.
type ActionStats struct {
	Count            int `json:"count"`
	PositiveOutcomes int `json:"positive_outcomes"`
}

// PlaylistStats aggregates membership and engagement numbers for a playlist.
type PlaylistStats struct {
	TotalLeads         int                    `json:"total_leads"`
	AverageScore       float64                `json:"average_score"`
	HotLeads           int                    `json:"hot_leads"`
	WarmLeads          int                    `json:"warm_leads"`
	ContactedLeads     int                    `json:"contacted_leads"`
	EngagementByAction map[string]ActionStats `json:"engagement_by_action"`
}

// ErrPlaylistNotFound indicates no playlist exists for the id.
var ErrPlaylistNotFound = errors.New("playlist not found")

// ErrPreferencesNotFound indicates the user has not set preferences yet.
var ErrPreferencesNotFound = errors.New("user preferences not found")

// PlaylistMember is a membership row joined with its lead summary.
type PlaylistMember struct {
	Membership  entity.PlaylistLead
	CompanyName string
	Sector      *string
}

// PGXPlaylistsRepository implements PlaylistsRepository using pgx.
type PGXPlaylistsRepository struct {
	pool pgxPool
}

// NewPGXPlaylistsRepository wires a pgx backed repository.
func NewPGXPlaylistsRepository(pool *pgxpool.Pool) *PGXPlaylistsRepository {
	return &PGXPlaylistsRepository{pool: pool}
}

// Create stores a new playlist and fills the generated id and timestamps.
func (r *PGXPlaylistsRepository) Create(ctx context.Context, playlist *entity.Playlist) error {
	if playlist == nil {
		return fmt.Errorf("playlist payload is nil")
	}

	criteria, err := json.Marshal(playlist.Criteria)
	if err != nil {
		return fmt.Errorf("marshal playlist criteria: %w", err)
	}

	query := `
        INSERT INTO playlists (name, description, type, criteria, target_count, refresh_hours, created_at, status)
        VALUES ($1, $2, $3, $4::jsonb, $5, $6, NOW(), $7)
        RETURNING id, created_at;
    `

	row := r.pool.QueryRow(ctx, query,
		playlist.Name,
		playlist.Description,
		string(playlist.Type),
		string(criteria),
		playlist.TargetCount,
		playlist.RefreshHours,
		string(entity.PlaylistActive),
	)
	if err := row.Scan(&playlist.ID, &playlist.CreatedAt); err != nil {
		return fmt.Errorf("create playlist: %w", err)
	}
	playlist.Status = entity.PlaylistActive
	return nil
}

const playlistColumns = `
            id, name, description, type, criteria, target_count, refresh_hours,
            created_at, last_refreshed, status
`

// List returns playlists, optionally filtered by status, newest first.
func (r *PGXPlaylistsRepository) List(ctx context.Context, status entity.PlaylistStatus) ([]entity.Playlist, error) {
	query := "SELECT " + playlistColumns + " FROM playlists"
	var args []any
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, string(status))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	defer rows.Close()

	return scanPlaylists(rows)
}

// GetByID fetches a single playlist.
func (r *PGXPlaylistsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Playlist, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+playlistColumns+" FROM playlists WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("get playlist: %w", err)
	}
	defer rows.Close()

	playlists, err := scanPlaylists(rows)
	if err != nil {
		return nil, err
	}
	if len(playlists) == 0 {
		return nil, ErrPlaylistNotFound
	}
	return &playlists[0], nil
}

// SetStatus transitions a playlist between active and archived.
func (r *PGXPlaylistsRepository) SetStatus(ctx context.Context, id uuid.UUID, status entity.PlaylistStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE playlists SET status = $1 WHERE id = $2`, string(status), id,
	)
	if err != nil {
		return fmt.Errorf("set playlist status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlaylistNotFound
	}
	return nil
}

// DueForRefresh returns active dynamic playlists whose refresh interval has
// elapsed. Never-refreshed playlists are always due.
func (r *PGXPlaylistsRepository) DueForRefresh(ctx context.Context, now time.Time) ([]entity.Playlist, error) {
	query := "SELECT " + playlistColumns + ` FROM playlists
        WHERE status = $1
          AND type = $2
          AND (last_refreshed IS NULL
               OR last_refreshed + make_interval(hours => refresh_hours) <= $3)
        ORDER BY last_refreshed ASC NULLS FIRST`

	rows, err := r.pool.Query(ctx, query, string(entity.PlaylistActive), string(entity.PlaylistDynamic), now)
	if err != nil {
		return nil, fmt.Errorf("playlists due for refresh: %w", err)
	}
	defer rows.Close()

	return scanPlaylists(rows)
}

// ReplaceMembership atomically swaps a playlist's membership for the given
// rows and stamps last_refreshed. Readers never observe a partially
// refreshed playlist.
func (r *PGXPlaylistsRepository) ReplaceMembership(ctx context.Context, playlistID uuid.UUID, members []entity.PlaylistLead) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("start membership tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM playlist_leads WHERE playlist_id = $1`, playlistID); err != nil {
		return fmt.Errorf("clear playlist membership: %w", err)
	}

	for _, member := range members {
		_, err := tx.Exec(ctx,
			`INSERT INTO playlist_leads (playlist_id, lead_id, added_at, score, priority, status)
             VALUES ($1, $2, NOW(), $3, $4, $5)`,
			playlistID, member.LeadID, member.Score, string(member.Priority), member.Status,
		)
		if err != nil {
			return fmt.Errorf("insert playlist member: %w", err)
		}
	}

	tag, err := tx.Exec(ctx, `UPDATE playlists SET last_refreshed = NOW() WHERE id = $1`, playlistID)
	if err != nil {
		return fmt.Errorf("stamp playlist refresh: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlaylistNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit membership tx: %w", err)
	}
	return nil
}

// Members returns the playlist's membership joined with lead summaries,
// best score first.
func (r *PGXPlaylistsRepository) Members(ctx context.Context, playlistID uuid.UUID) ([]PlaylistMember, error) {
	query := `
        SELECT pl.id, pl.playlist_id, pl.lead_id, pl.added_at, pl.score, pl.priority, pl.status,
               l.company_name, l.sector
        FROM playlist_leads pl
        JOIN leads l ON l.id = pl.lead_id
        WHERE pl.playlist_id = $1
        ORDER BY pl.score DESC, l.company_name ASC`

	rows, err := r.pool.Query(ctx, query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("playlist members: %w", err)
	}
	defer rows.Close()

	var members []PlaylistMember
	for rows.Next() {
		var (
			m        PlaylistMember
			priority string
			sector   sql.NullString
		)
		if err := rows.Scan(
			&m.Membership.ID,
			&m.Membership.PlaylistID,
			&m.Membership.LeadID,
			&m.Membership.AddedAt,
			&m.Membership.Score,
			&priority,
			&m.Membership.Status,
			&m.CompanyName,
			&sector,
		); err != nil {
			return nil, fmt.Errorf("scan playlist member: %w", err)
		}
		m.Membership.Priority = entity.Priority(priority)
		m.Sector = nullStringToPtr(sector)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlist members: %w", err)
	}
	return members, nil
}

// ActivePlaylistLeads returns the distinct leads that belong to at least
// one active playlist, best score first, then most recently updated.
func (r *PGXPlaylistsRepository) ActivePlaylistLeads(ctx context.Context) ([]entity.Lead, error) {
	query := "SELECT " + leadColumns + ` FROM leads
        WHERE id IN (
            SELECT pl.lead_id
            FROM playlist_leads pl
            JOIN playlists p ON p.id = pl.playlist_id
            WHERE p.status = $1
        )
        ORDER BY score DESC, updated_at DESC`

	rows, err := r.pool.Query(ctx, query, string(entity.PlaylistActive))
	if err != nil {
		return nil, fmt.Errorf("active playlist leads: %w", err)
	}
	defer rows.Close()

	return scanLeads(rows)
}

// MemberCount returns how many leads a playlist currently holds.
func (r *PGXPlaylistsRepository) MemberCount(ctx context.Context, playlistID uuid.UUID) (int, error) {
	var count int
	row := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM playlist_leads WHERE playlist_id = $1`, playlistID,
	)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("playlist member count: %w", err)
	}
	return count, nil
}

// UpsertPreferences stores the user's recommendation preferences.
func (r *PGXPlaylistsRepository) UpsertPreferences(ctx context.Context, prefs *entity.UserPreferences) error {
	if prefs == nil {
		return fmt.Errorf("preferences payload is nil")
	}

	sectors := make([]string, 0, len(prefs.Sectors))
	for _, s := range prefs.Sectors {
		sectors = append(sectors, string(s))
	}
	sizes := make([]string, 0, len(prefs.CompanySizes))
	for _, s := range prefs.CompanySizes {
		sizes = append(sizes, string(s))
	}

	_, err := r.pool.Exec(ctx, `
        INSERT INTO user_preferences (user_id, sectors, company_sizes, min_score, max_leads_per_day, track_engagement, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
        ON CONFLICT (user_id) DO UPDATE SET
            sectors = EXCLUDED.sectors,
            company_sizes = EXCLUDED.company_sizes,
            min_score = EXCLUDED.min_score,
            max_leads_per_day = EXCLUDED.max_leads_per_day,
            track_engagement = EXCLUDED.track_engagement,
            updated_at = NOW()`,
		prefs.UserID, sectors, sizes, prefs.MinScore, prefs.MaxLeadsPerDay, prefs.TrackEngagement,
	)
	if err != nil {
		return fmt.Errorf("upsert user preferences: %w", err)
	}
	return nil
}

// GetPreferences fetches the user's recommendation preferences.
func (r *PGXPlaylistsRepository) GetPreferences(ctx context.Context, userID string) (*entity.UserPreferences, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT user_id, sectors, company_sizes, min_score, max_leads_per_day, track_engagement
        FROM user_preferences WHERE user_id = $1`, userID,
	)

	var (
		prefs   entity.UserPreferences
		sectors []string
		sizes   []string
	)
	err := row.Scan(&prefs.UserID, &sectors, &sizes, &prefs.MinScore, &prefs.MaxLeadsPerDay, &prefs.TrackEngagement)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPreferencesNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user preferences: %w", err)
	}

	for _, s := range sectors {
		prefs.Sectors = append(prefs.Sectors, entity.Sector(s))
	}
	for _, s := range sizes {
		prefs.CompanySizes = append(prefs.CompanySizes, entity.CompanySize(s))
	}
	return &prefs, nil
}

// RecordEngagement stores an outreach action against a lead.
func (r *PGXPlaylistsRepository) RecordEngagement(ctx context.Context, engagement *entity.LeadEngagement) error {
	if engagement == nil {
		return fmt.Errorf("engagement payload is nil")
	}

	row := r.pool.QueryRow(ctx, `
        INSERT INTO lead_engagements (lead_id, user_id, action_type, action_at, outcome, notes)
        VALUES ($1, $2, $3, COALESCE($4, NOW()), $5, $6)
        RETURNING id, action_at`,
		engagement.LeadID, engagement.UserID, engagement.ActionType,
		nilIfZeroTime(engagement.ActionAt), engagement.Outcome, engagement.Notes,
	)
	if err := row.Scan(&engagement.ID, &engagement.ActionAt); err != nil {
		return fmt.Errorf("record engagement: %w", err)
	}
	return nil
}

// EngagedLeadIDs returns the ids of leads the user has acted on since the
// given time. Used to de-duplicate daily recommendations.
func (r *PGXPlaylistsRepository) EngagedLeadIDs(ctx context.Context, userID string, since time.Time) (map[uuid.UUID]bool, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT DISTINCT lead_id FROM lead_engagements
        WHERE user_id = $1 AND action_at >= $2`, userID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("engaged lead ids: %w", err)
	}
	defer rows.Close()

	seen := make(map[uuid.UUID]bool)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan engaged lead id: %w", err)
		}
		seen[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate engaged lead ids: %w", err)
	}
	return seen, nil
}

// Stats aggregates membership and engagement figures for one playlist.
func (r *PGXPlaylistsRepository) Stats(ctx context.Context, playlistID uuid.UUID) (*PlaylistStats, error) {
	stats := &PlaylistStats{EngagementByAction: make(map[string]ActionStats)}

	row := r.pool.QueryRow(ctx, `
        SELECT COUNT(*),
               COALESCE(AVG(score), 0),
               COUNT(*) FILTER (WHERE priority = 'HOT'),
               COUNT(*) FILTER (WHERE priority = 'WARM'),
               COUNT(*) FILTER (WHERE status = 'contacted')
        FROM playlist_leads WHERE playlist_id = $1`, playlistID,
	)
	if err := row.Scan(&stats.TotalLeads, &stats.AverageScore, &stats.HotLeads, &stats.WarmLeads, &stats.ContactedLeads); err != nil {
		return nil, fmt.Errorf("playlist lead stats: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
        SELECT le.action_type,
               COUNT(*),
               COUNT(*) FILTER (WHERE le.outcome = 'positive')
        FROM lead_engagements le
        JOIN playlist_leads pl ON pl.lead_id = le.lead_id
        WHERE pl.playlist_id = $1
        GROUP BY le.action_type`, playlistID,
	)
	if err != nil {
		return nil, fmt.Errorf("playlist engagement stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var action string
		var as ActionStats
		if err := rows.Scan(&action, &as.Count, &as.PositiveOutcomes); err != nil {
			return nil, fmt.Errorf("scan engagement stats: %w", err)
		}
		stats.EngagementByAction[action] = as
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate engagement stats: %w", err)
	}

	return stats, nil
}

func scanPlaylists(rows pgx.Rows) ([]entity.Playlist, error) {
	var playlists []entity.Playlist
	for rows.Next() {
		var (
			p             entity.Playlist
			playlistType  string
			criteria      []byte
			lastRefreshed sql.NullTime
			status        string
		)
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&playlistType,
			&criteria,
			&p.TargetCount,
			&p.RefreshHours,
			&p.CreatedAt,
			&lastRefreshed,
			&status,
		); err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		p.Type = entity.PlaylistType(playlistType)
		p.Status = entity.PlaylistStatus(status)
		if lastRefreshed.Valid {
			refreshed := lastRefreshed.Time
			p.LastRefreshed = &refreshed
		}
		if len(criteria) > 0 {
			if err := json.Unmarshal(criteria, &p.Criteria); err != nil {
				return nil, fmt.Errorf("unmarshal playlist criteria: %w", err)
			}
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}
	return playlists, nil
}

func nilIfZeroTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
