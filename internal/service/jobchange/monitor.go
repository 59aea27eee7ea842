package jobchange

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"

	"github.com/octobees/lead-qualifier/internal/config"
	"github.com/octobees/lead-qualifier/internal/entity"
	"github.com/octobees/lead-qualifier/internal/repository"
)

// Observation is a point-in-time snapshot of a contact's employment.
type Observation struct {
	Company string
	Role    string
}

// ProfileSource looks up a contact's current employment. A nil observation
// with a nil error means the profile yielded no usable data this time.
type ProfileSource interface {
	Snapshot(ctx context.Context, contact entity.TrackedContact) (*Observation, error)
}

// CycleStats summarises one polling cycle.
type CycleStats struct {
	Checked        int
	ChangesFound   int
	AlertsRaised   int
	MarkedInactive int
}

// Monitor polls tracked contacts for employment changes. A single monitor
// owns all writes to the tracked-contact tables; lookups are paced so the
// profile provider never sees bursts.
type Monitor struct {
	contacts repository.ContactsRepository
	source   ProfileSource
	cfg      config.JobChangeConfig
	limiter  *rate.Limiter
	now      func() time.Time
}

// NewMonitor wires a monitor over the given contact store and profile source.
func NewMonitor(contacts repository.ContactsRepository, source ProfileSource, cfg config.JobChangeConfig) *Monitor {
	delay := cfg.PollDelay
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &Monitor{
		contacts: contacts,
		source:   source,
		cfg:      cfg,
		limiter:  rate.NewLimiter(rate.Every(delay), 1),
		now:      time.Now,
	}
}

// Track registers a contact for monitoring. Re-tracking an existing profile
// URL is a no-op.
func (m *Monitor) Track(ctx context.Context, contact *entity.TrackedContact) (bool, error) {
	if contact == nil {
		return false, fmt.Errorf("contact is nil")
	}
	if contact.Name == "" || contact.ProfileURL == "" {
		return false, fmt.Errorf("contact name and profile url are required")
	}
	return m.contacts.Add(ctx, contact)
}

// AddContactsFromLeads seeds the roster from lead decision makers. Only
// contacts with a profile URL can be monitored; already-tracked profiles
// are skipped. Returns how many new contacts were added.
func (m *Monitor) AddContactsFromLeads(ctx context.Context, leads []entity.Lead) (int, error) {
	added := 0
	for _, lead := range leads {
		for _, dm := range lead.DecisionMakers {
			if dm.ProfileURL == "" || dm.Name == "" {
				continue
			}
			contact := &entity.TrackedContact{
				Name:              dm.Name,
				CurrentCompany:    lead.CompanyName,
				CurrentRole:       dm.Role,
				ProfileURL:        dm.ProfileURL,
				OriginalLeadScore: lead.Score,
			}
			if dm.Email != "" {
				email := dm.Email
				contact.Email = &email
			}
			if dm.Phone != "" {
				phone := dm.Phone
				contact.Phone = &phone
			}
			ok, err := m.contacts.Add(ctx, contact)
			if err != nil {
				return added, fmt.Errorf("track decision maker %q: %w", dm.Name, err)
			}
			if ok {
				added++
			}
		}
	}
	if added > 0 {
		log.Printf("jobchange seeded contacts=%d", added)
	}
	return added, nil
}

// Contacts lists tracked contacts, optionally filtered by status.
func (m *Monitor) Contacts(ctx context.Context, status entity.ContactStatus) ([]entity.TrackedContact, error) {
	return m.contacts.List(ctx, status)
}

// RunCycle performs one polling pass: check the stalest active contacts,
// record any employment changes as events, and retire contacts that have
// been unobservable for too long.
func (m *Monitor) RunCycle(ctx context.Context) (CycleStats, error) {
	var stats CycleStats

	due, err := m.contacts.DueForCheck(ctx, m.cfg.MaxPerCycle)
	if err != nil {
		return stats, fmt.Errorf("load contacts due for check: %w", err)
	}

	for _, contact := range due {
		if err := m.limiter.Wait(ctx); err != nil {
			return stats, err
		}

		changed, err := m.checkContact(ctx, contact)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return stats, err
			}
			log.Printf("jobchange check failed contact_id=%d profile=%s err=%v",
				contact.ID, contact.ProfileURL, err)
			continue
		}

		stats.Checked++
		if changed {
			stats.ChangesFound++
			stats.AlertsRaised++
		}
	}

	now := m.now()
	inactive, err := m.contacts.MarkInactive(ctx, now.Add(-m.cfg.InactiveAfter))
	if err != nil {
		return stats, fmt.Errorf("mark inactive contacts: %w", err)
	}
	stats.MarkedInactive = inactive

	if m.cfg.Retention > 0 {
		purged, err := m.contacts.PurgeEventsBefore(ctx, now.Add(-m.cfg.Retention))
		if err != nil {
			return stats, fmt.Errorf("purge old events: %w", err)
		}
		if purged > 0 {
			log.Printf("jobchange purged events=%d", purged)
		}
	}

	log.Printf("jobchange cycle checked=%d changes=%d inactive=%d",
		stats.Checked, stats.ChangesFound, stats.MarkedInactive)
	return stats, nil
}

// checkContact compares the live snapshot against the stored observation.
// It reports whether a change event was recorded.
func (m *Monitor) checkContact(ctx context.Context, contact entity.TrackedContact) (bool, error) {
	observation, err := m.source.Snapshot(ctx, contact)
	if err != nil {
		return false, err
	}
	now := m.now()

	if observation == nil {
		// Nothing usable this round; still counts as a check so the
		// contact rotates to the back of the queue.
		if err := m.contacts.RecordObservation(ctx, contact.ID, contact.CurrentCompany, contact.CurrentRole, now); err != nil {
			return false, err
		}
		return false, nil
	}

	company := observation.Company
	if company == "" {
		company = contact.CurrentCompany
	}
	role := observation.Role
	if role == "" {
		role = contact.CurrentRole
	}

	if company == contact.CurrentCompany && role == contact.CurrentRole {
		if err := m.contacts.RecordObservation(ctx, contact.ID, company, role, now); err != nil {
			return false, err
		}
		return false, nil
	}

	event := &entity.JobChangeEvent{
		ContactID:       contact.ID,
		PreviousCompany: contact.CurrentCompany,
		NewCompany:      company,
		PreviousRole:    contact.CurrentRole,
		NewRole:         role,
		ChangeType:      classifyChange(contact.CurrentCompany, company, contact.CurrentRole, role),
		DetectedAt:      now,
	}
	event.OpportunityScore = opportunityScore(event)

	if err := m.contacts.InsertEvent(ctx, event); err != nil {
		return false, err
	}
	if err := m.contacts.RecordObservation(ctx, contact.ID, company, role, now); err != nil {
		return false, err
	}

	log.Printf("jobchange detected contact_id=%d type=%s opportunity=%.0f",
		contact.ID, event.ChangeType, event.OpportunityScore)
	return true, nil
}

// Run polls on the given interval until the context is cancelled. Cycle
// failures are logged and the loop keeps going.
func (m *Monitor) Run(ctx context.Context, every time.Duration) {
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
			if _, err := m.RunCycle(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("jobchange cycle failed err=%v", err)
			}
		}
	}
}
