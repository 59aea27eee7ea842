package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/lead-qualifier/internal/entity"
)

// ContactsRepository describes persistence for tracked contacts and the
// job-change events detected for them.
type ContactsRepository interface {
	Add(ctx context.Context, contact *entity.TrackedContact) (bool, error)
	List(ctx context.Context, status entity.ContactStatus) ([]entity.TrackedContact, error)
	DueForCheck(ctx context.Context, limit int) ([]entity.TrackedContact, error)
	RecordObservation(ctx context.Context, contactID int64, company, role string, checkedAt time.Time) error
	MarkInactive(ctx context.Context, inactiveBefore time.Time) (int, error)
	InsertEvent(ctx context.Context, event *entity.JobChangeEvent) error
	RecentEvents(ctx context.Context, since time.Time, status entity.AlertStatus) ([]ContactEvent, error)
	UpdateAlertStatus(ctx context.Context, eventID int64, status entity.AlertStatus) error
	PurgeEventsBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// ErrContactNotFound indicates no tracked contact exists for the id.
var ErrContactNotFound = errors.New("tracked contact not found")

// ErrEventNotFound indicates no job change event exists for the id.
var ErrEventNotFound = errors.New("job change event not found")

// ContactEvent pairs a job change event with its contact for alert views.
type ContactEvent struct {
	Event   entity.JobChangeEvent
	Contact entity.TrackedContact
}

// PGXContactsRepository implements ContactsRepository using pgx.
type PGXContactsRepository struct {
	pool pgxPool
}

// NewPGXContactsRepository wires a pgx backed repository.
func NewPGXContactsRepository(pool *pgxpool.Pool) *PGXContactsRepository {
	return &PGXContactsRepository{pool: pool}
}

// Add registers a contact for monitoring. Contacts are keyed by profile
// URL; re-adding an already tracked profile is a no-op and returns false.
func (r *PGXContactsRepository) Add(ctx context.Context, contact *entity.TrackedContact) (bool, error) {
	if contact == nil {
		return false, fmt.Errorf("contact payload is nil")
	}

	query := `
        INSERT INTO tracked_contacts (
            name, current_company, current_role, profile_url, email, phone,
            original_company, original_role, original_lead_score, added_at, status
        ) VALUES ($1, $2, $3, $4, $5, $6, $2, $3, $7, NOW(), $8)
        ON CONFLICT (profile_url) DO NOTHING
        RETURNING id, added_at;
    `

	row := r.pool.QueryRow(ctx, query,
		contact.Name,
		contact.CurrentCompany,
		contact.CurrentRole,
		contact.ProfileURL,
		contact.Email,
		contact.Phone,
		contact.OriginalLeadScore,
		string(entity.ContactActive),
	)
	err := row.Scan(&contact.ID, &contact.AddedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("add tracked contact: %w", err)
	}

	contact.OriginalCompany = contact.CurrentCompany
	contact.OriginalRole = contact.CurrentRole
	contact.Status = entity.ContactActive
	return true, nil
}

const contactColumns = `
            id, name, current_company, current_role, profile_url, email, phone,
            original_company, original_role, original_lead_score,
            added_at, last_checked, status
`

// List returns tracked contacts, optionally filtered by status.
func (r *PGXContactsRepository) List(ctx context.Context, status entity.ContactStatus) ([]entity.TrackedContact, error) {
	query := "SELECT " + contactColumns + " FROM tracked_contacts"
	var args []any
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, string(status))
	}
	query += " ORDER BY added_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tracked contacts: %w", err)
	}
	defer rows.Close()

	return scanContacts(rows)
}

// DueForCheck returns active contacts ordered by staleness: never-checked
// contacts first, then those with the oldest last check.
func (r *PGXContactsRepository) DueForCheck(ctx context.Context, limit int) ([]entity.TrackedContact, error) {
	if limit <= 0 {
		limit = 100
	}

	query := "SELECT " + contactColumns + ` FROM tracked_contacts
        WHERE status = $1
        ORDER BY last_checked ASC NULLS FIRST, added_at ASC
        LIMIT $2`

	rows, err := r.pool.Query(ctx, query, string(entity.ContactActive), limit)
	if err != nil {
		return nil, fmt.Errorf("contacts due for check: %w", err)
	}
	defer rows.Close()

	return scanContacts(rows)
}

// RecordObservation stores the latest observed company and role and stamps
// the check time.
func (r *PGXContactsRepository) RecordObservation(ctx context.Context, contactID int64, company, role string, checkedAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tracked_contacts SET current_company = $1, current_role = $2, last_checked = $3 WHERE id = $4`,
		company, role, checkedAt, contactID,
	)
	if err != nil {
		return fmt.Errorf("record observation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrContactNotFound
	}
	return nil
}

// MarkInactive flips contacts whose last check predates the cutoff to
// inactive and reports how many were affected. Never-checked contacts are
// judged by when they were added.
func (r *PGXContactsRepository) MarkInactive(ctx context.Context, inactiveBefore time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tracked_contacts SET status = $1
         WHERE status = $2 AND COALESCE(last_checked, added_at) < $3`,
		string(entity.ContactInactive), string(entity.ContactActive), inactiveBefore,
	)
	if err != nil {
		return 0, fmt.Errorf("mark contacts inactive: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// InsertEvent stores a detected job change.
func (r *PGXContactsRepository) InsertEvent(ctx context.Context, event *entity.JobChangeEvent) error {
	if event == nil {
		return fmt.Errorf("event payload is nil")
	}

	query := `
        INSERT INTO job_change_events (
            contact_id, previous_company, new_company, previous_role, new_role,
            change_type, detected_at, opportunity_score, alert_status
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id;
    `

	row := r.pool.QueryRow(ctx, query,
		event.ContactID,
		event.PreviousCompany,
		event.NewCompany,
		event.PreviousRole,
		event.NewRole,
		string(event.ChangeType),
		event.DetectedAt,
		event.OpportunityScore,
		string(entity.AlertNew),
	)
	if err := row.Scan(&event.ID); err != nil {
		return fmt.Errorf("insert job change event: %w", err)
	}
	event.AlertStatus = entity.AlertNew
	return nil
}

// RecentEvents returns events detected since the given time joined with
// their contact, highest opportunity first. An empty status matches all.
func (r *PGXContactsRepository) RecentEvents(ctx context.Context, since time.Time, status entity.AlertStatus) ([]ContactEvent, error) {
	query := `
        SELECT
            e.id, e.contact_id, e.previous_company, e.new_company,
            e.previous_role, e.new_role, e.change_type, e.detected_at,
            e.opportunity_score, e.alert_status,
            ` + contactColumnsAliased("c") + `
        FROM job_change_events e
        JOIN tracked_contacts c ON c.id = e.contact_id
        WHERE e.detected_at >= $1`

	args := []any{since}
	if status != "" {
		query += " AND e.alert_status = $2"
		args = append(args, string(status))
	}
	query += " ORDER BY e.opportunity_score DESC, e.detected_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("recent job change events: %w", err)
	}
	defer rows.Close()

	var results []ContactEvent
	for rows.Next() {
		var (
			ce          ContactEvent
			changeType  string
			alertStatus string
		)
		if err := rows.Scan(
			&ce.Event.ID,
			&ce.Event.ContactID,
			&ce.Event.PreviousCompany,
			&ce.Event.NewCompany,
			&ce.Event.PreviousRole,
			&ce.Event.NewRole,
			&changeType,
			&ce.Event.DetectedAt,
			&ce.Event.OpportunityScore,
			&alertStatus,
			&ce.Contact.ID,
			&ce.Contact.Name,
			&ce.Contact.CurrentCompany,
			&ce.Contact.CurrentRole,
			&ce.Contact.ProfileURL,
			&ce.Contact.Email,
			&ce.Contact.Phone,
			&ce.Contact.OriginalCompany,
			&ce.Contact.OriginalRole,
			&ce.Contact.OriginalLeadScore,
			&ce.Contact.AddedAt,
			&ce.Contact.LastChecked,
			&ce.Contact.Status,
		); err != nil {
			return nil, fmt.Errorf("scan contact event: %w", err)
		}
		ce.Event.ChangeType = entity.ChangeType(changeType)
		ce.Event.AlertStatus = entity.AlertStatus(alertStatus)
		results = append(results, ce)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contact events: %w", err)
	}
	return results, nil
}

// UpdateAlertStatus transitions an alert to a new status.
func (r *PGXContactsRepository) UpdateAlertStatus(ctx context.Context, eventID int64, status entity.AlertStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE job_change_events SET alert_status = $1 WHERE id = $2`,
		string(status), eventID,
	)
	if err != nil {
		return fmt.Errorf("update alert status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

// PurgeEventsBefore deletes events older than the retention cutoff.
func (r *PGXContactsRepository) PurgeEventsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM job_change_events WHERE detected_at < $1`, cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("purge job change events: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func contactColumnsAliased(alias string) string {
	return alias + `.id, ` + alias + `.name, ` + alias + `.current_company, ` + alias + `.current_role, ` +
		alias + `.profile_url, ` + alias + `.email, ` + alias + `.phone, ` +
		alias + `.original_company, ` + alias + `.original_role, ` + alias + `.original_lead_score, ` +
		alias + `.added_at, ` + alias + `.last_checked, ` + alias + `.status`
}

func scanContacts(rows pgx.Rows) ([]entity.TrackedContact, error) {
	var contacts []entity.TrackedContact
	for rows.Next() {
		var (
			c           entity.TrackedContact
			email       sql.NullString
			phone       sql.NullString
			lastChecked sql.NullTime
			status      string
		)
		if err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.CurrentCompany,
			&c.CurrentRole,
			&c.ProfileURL,
			&email,
			&phone,
			&c.OriginalCompany,
			&c.OriginalRole,
			&c.OriginalLeadScore,
			&c.AddedAt,
			&lastChecked,
			&status,
		); err != nil {
			return nil, fmt.Errorf("scan tracked contact: %w", err)
		}
		c.Email = nullStringToPtr(email)
		c.Phone = nullStringToPtr(phone)
		if lastChecked.Valid {
			checked := lastChecked.Time
			c.LastChecked = &checked
		}
		c.Status = entity.ContactStatus(status)
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tracked contacts: %w", err)
	}
	return contacts, nil
}
