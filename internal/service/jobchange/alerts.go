package jobchange

import (
	"context"
	"fmt"
	"time"

	"github.com/octobees/lead-qualifier/internal/entity"
	"github.com/octobees/lead-qualifier/internal/repository"
)

// AlertPriority buckets an alert by how quickly it should be worked.
type AlertPriority string

// Alert priorities and their opportunity-score bands.
const (
	PriorityHigh   AlertPriority = "HIGH"
	PriorityMedium AlertPriority = "MEDIUM"
	PriorityLow    AlertPriority = "LOW"

	highPriorityThreshold   = 80.0
	mediumPriorityThreshold = 65.0
)

// Alert is a job change event prepared for presentation: joined with its
// contact and annotated with a priority, message and suggested action.
type Alert struct {
	Event           entity.JobChangeEvent
	Contact         entity.TrackedContact
	Priority        AlertPriority
	Message         string
	SuggestedAction string
}

// AlertPriorityFor maps an opportunity score to its priority band.
func AlertPriorityFor(score float64) AlertPriority {
	switch {
	case score >= highPriorityThreshold:
		return PriorityHigh
	case score >= mediumPriorityThreshold:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// RecentAlerts returns alerts for events detected within the window,
// highest opportunity first. Events scoring below minScore are dropped;
// an empty status matches all alert states.
func (m *Monitor) RecentAlerts(ctx context.Context, window time.Duration, minScore float64, status entity.AlertStatus) ([]Alert, error) {
	if window <= 0 {
		window = 7 * 24 * time.Hour
	}
	since := m.now().Add(-window)

	events, err := m.contacts.RecentEvents(ctx, since, status)
	if err != nil {
		return nil, fmt.Errorf("load recent events: %w", err)
	}

	alerts := make([]Alert, 0, len(events))
	for _, ce := range events {
		if ce.Event.OpportunityScore < minScore {
			continue
		}
		alerts = append(alerts, buildAlert(ce))
	}
	return alerts, nil
}

// UpdateAlertStatus transitions an alert. Only actioned and dismissed are
// legal targets; alerts are born new and never return to it.
func (m *Monitor) UpdateAlertStatus(ctx context.Context, eventID int64, status entity.AlertStatus) error {
	if status != entity.AlertActioned && status != entity.AlertDismissed {
		return fmt.Errorf("invalid alert status %q", status)
	}
	return m.contacts.UpdateAlertStatus(ctx, eventID, status)
}

func buildAlert(ce repository.ContactEvent) Alert {
	return Alert{
		Event:           ce.Event,
		Contact:         ce.Contact,
		Priority:        AlertPriorityFor(ce.Event.OpportunityScore),
		Message:         alertMessage(ce),
		SuggestedAction: suggestedAction(ce),
	}
}

func alertMessage(ce repository.ContactEvent) string {
	name := ce.Contact.Name
	event := ce.Event
	switch event.ChangeType {
	case entity.ChangeCompany:
		return fmt.Sprintf("%s moved from %s to %s", name, event.PreviousCompany, event.NewCompany)
	case entity.ChangeRole:
		return fmt.Sprintf("%s is now %s at %s", name, event.NewRole, event.NewCompany)
	default:
		return fmt.Sprintf("%s joined %s as %s", name, event.NewCompany, event.NewRole)
	}
}

func suggestedAction(ce repository.ContactEvent) string {
	event := ce.Event
	if event.ChangeType != entity.ChangeRole && isSeniorRole(event.NewRole) {
		return fmt.Sprintf("Reach out within 90 days: %s can now sponsor a cloud conversation at %s",
			ce.Contact.Name, event.NewCompany)
	}
	if event.ChangeType == entity.ChangeRole && isSeniorRole(event.NewRole) {
		return fmt.Sprintf("Congratulate %s on the promotion and revisit the open opportunity", ce.Contact.Name)
	}
	return fmt.Sprintf("Update the CRM record for %s and monitor for buying signals", ce.Contact.Name)
}
