package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/project-tracker/internal/domain"
	"github.com/straye-as/project-tracker/internal/repository"
	"go.uber.org/zap"
)

const (
	defaultUpcomingLimit = 10
	defaultChangesLimit  = 20
)

// Upcoming item kinds
const (
	UpcomingKindStage = "gtm_stage"
	UpcomingKindTask  = "task"
)

// DashboardFilters narrows the projects a dashboard is built from
type DashboardFilters struct {
	IncludeArchived bool
	GroupID         *uuid.UUID
	Brand           string
	Statuses        []domain.ProjectStatus
	UpcomingLimit   int
	ChangesLimit    int
}

type DashboardService struct {
	projectRepo *repository.ProjectRepository
	groupRepo   *repository.GroupRepository
	now         func() time.Time
	logger      *zap.Logger
}

func NewDashboardService(projectRepo *repository.ProjectRepository, groupRepo *repository.GroupRepository, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		projectRepo: projectRepo,
		groupRepo:   groupRepo,
		now:         time.Now,
		logger:      logger,
	}
}

// WithClock replaces the clock used to compute "today"
func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
	s.now = now
	return s
}

// Get builds the dashboard: status counts, group cards, upcoming deadlines and recent history
func (s *DashboardService) Get(ctx context.Context, filters DashboardFilters) (*domain.DashboardPayload, error) {
	projects, err := s.projectRepo.List(ctx, repository.ProjectFilters{
		IncludeArchived: filters.IncludeArchived,
		GroupID:         filters.GroupID,
		Brand:           filters.Brand,
		Statuses:        filters.Statuses,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	groups, err := s.groupRepo.List(ctx, repository.GroupFilters{IncludeArchived: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	today := domain.DateOf(s.now())
	groupNames := make(map[uuid.UUID]string, len(groups))
	for _, g := range groups {
		groupNames[g.ID] = g.Name
	}

	upcomingLimit := filters.UpcomingLimit
	if upcomingLimit <= 0 {
		upcomingLimit = defaultUpcomingLimit
	}
	changesLimit := filters.ChangesLimit
	if changesLimit <= 0 {
		changesLimit = defaultChangesLimit
	}

	payload := &domain.DashboardPayload{
		Statuses:      statusSummary(projects),
		Groups:        groupCards(groups, projects, filters, today),
		Upcoming:      upcomingItems(projects, groupNames, today, upcomingLimit),
		RecentChanges: recentChanges(projects, groupNames, changesLimit),
	}

	s.logger.Debug("Dashboard built",
		zap.Int("project_count", len(projects)),
		zap.Int("upcoming_count", len(payload.Upcoming)),
	)
	return payload, nil
}

func statusSummary(projects []domain.Project) domain.StatusSummary {
	var summary domain.StatusSummary
	for _, p := range projects {
		switch p.Status {
		case domain.ProjectStatusActive:
			summary.Active++
		case domain.ProjectStatusClosed:
			summary.Closed++
		case domain.ProjectStatusArchived:
			summary.Archived++
		}
	}
	return summary
}

// groupCards lists one card per group; archived groups only when archived data is requested
func groupCards(groups []domain.ProductGroup, projects []domain.Project, filters DashboardFilters, today domain.Date) []domain.GroupDashboardCard {
	cards := make([]domain.GroupDashboardCard, 0, len(groups))
	for _, g := range groups {
		if g.Status == domain.GroupStatusArchived && !filters.IncludeArchived {
			continue
		}
		if filters.GroupID != nil && g.ID != *filters.GroupID {
			continue
		}
		card := domain.GroupDashboardCard{ID: g.ID, Name: g.Name}
		for i := range projects {
			p := &projects[i]
			if p.GroupID != g.ID {
				continue
			}
			if p.Status != domain.ProjectStatusArchived {
				card.ActiveProjects++
			}
			if projectHasRisk(p, today) {
				card.Risk = true
			}
		}
		cards = append(cards, card)
	}
	return cards
}

// projectHasRisk is true when a stage is flagged, an open stage is overdue or an unfinished task is overdue
func projectHasRisk(p *domain.Project, today domain.Date) bool {
	for _, stage := range p.GTMStages {
		if stage.RiskFlag {
			return true
		}
		if !stage.Status.IsClosed() && stage.PlannedEnd != nil && stage.PlannedEnd.Before(today) {
			return true
		}
	}
	for _, task := range p.Tasks {
		if task.Status != domain.TaskStatusDone && task.DueDate != nil && task.DueDate.Before(today) {
			return true
		}
	}
	return false
}

func upcomingItems(projects []domain.Project, groupNames map[uuid.UUID]string, today domain.Date, limit int) []domain.UpcomingItem {
	items := []domain.UpcomingItem{}
	for i := range projects {
		p := &projects[i]
		for _, stage := range p.GTMStages {
			if stage.Status.IsClosed() || stage.PlannedEnd == nil {
				continue
			}
			delta := today.DaysUntil(*stage.PlannedEnd)
			items = append(items, domain.UpcomingItem{
				ProjectID:   p.ID,
				ProjectName: p.Name,
				GroupName:   groupNames[p.GroupID],
				Kind:        UpcomingKindStage,
				Title:       stage.Title,
				PlannedDate: *stage.PlannedEnd,
				DaysDelta:   delta,
				Risk:        stage.RiskFlag || delta < 0,
			})
		}
		for _, task := range p.Tasks {
			if !task.Important || task.Status == domain.TaskStatusDone || task.DueDate == nil {
				continue
			}
			delta := today.DaysUntil(*task.DueDate)
			items = append(items, domain.UpcomingItem{
				ProjectID:   p.ID,
				ProjectName: p.Name,
				GroupName:   groupNames[p.GroupID],
				Kind:        UpcomingKindTask,
				Title:       task.Title,
				PlannedDate: *task.DueDate,
				DaysDelta:   delta,
				Risk:        delta < 0,
			})
		}
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].DaysDelta < items[j].DaysDelta })
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

func recentChanges(projects []domain.Project, groupNames map[uuid.UUID]string, limit int) []domain.RecentChange {
	changes := []domain.RecentChange{}
	for _, p := range projects {
		for _, event := range p.History {
			changes = append(changes, domain.RecentChange{
				ProjectID:   p.ID,
				ProjectName: p.Name,
				GroupName:   groupNames[p.GroupID],
				OccurredAt:  event.OccurredAt,
				Summary:     event.Summary,
				Details:     event.Details,
			})
		}
	}

	sort.SliceStable(changes, func(i, j int) bool { return changes[i].OccurredAt.After(changes[j].OccurredAt) })
	if len(changes) > limit {
		changes = changes[:limit]
	}
	return changes
}
