package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/project-tracker/internal/domain"
)

// recordHistory prepends an audit event; history is kept newest first
func recordHistory(p *domain.Project, at time.Time, summary, details string) domain.HistoryEvent {
	event := domain.HistoryEvent{
		ID:         uuid.New(),
		OccurredAt: at,
		Summary:    summary,
		Details:    details,
	}
	p.History = append([]domain.HistoryEvent{event}, p.History...)
	return event
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// historyEvent builds an event for repository writes that prepend history themselves
func historyEvent(summary, details string) domain.HistoryEvent {
	return domain.HistoryEvent{
		ID:         uuid.New(),
		OccurredAt: nowUTC(),
		Summary:    summary,
		Details:    details,
	}
}
