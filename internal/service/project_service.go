package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/straye-as/project-tracker/internal/domain"
	"github.com/straye-as/project-tracker/internal/logger"
	"github.com/straye-as/project-tracker/internal/repository"
	"go.uber.org/zap"
)

// AttachmentPurger removes stored bytes of a project's files and images
type AttachmentPurger interface {
	Purge(ctx context.Context, project *domain.Project)
}

// ProjectService handles business logic for projects, their comments and history
type ProjectService struct {
	projectRepo *repository.ProjectRepository
	groupRepo   *repository.GroupRepository
	purger      AttachmentPurger
	logger      *zap.Logger
}

// NewProjectService creates a new ProjectService. purger may be nil.
func NewProjectService(
	projectRepo *repository.ProjectRepository,
	groupRepo *repository.GroupRepository,
	purger AttachmentPurger,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		groupRepo:   groupRepo,
		purger:      purger,
		logger:      logger,
	}
}

func (s *ProjectService) List(ctx context.Context, filters repository.ProjectFilters) ([]domain.Project, error) {
	projects, err := s.projectRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (s *ProjectService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrProjectNotFound)
	}
	return project, nil
}

// Create adds a project to an existing group. A new project has no stages,
// so a current stage in the request is ignored.
func (s *ProjectService) Create(ctx context.Context, req *domain.CreateProjectRequest) (*domain.Project, error) {
	if _, err := s.groupRepo.GetByID(ctx, req.GroupID); err != nil {
		return nil, mapNotFound(err, ErrGroupNotFound)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	status := req.Status
	if status == "" {
		status = domain.ProjectStatusActive
	}

	now := nowUTC()
	project := &domain.Project{
		ID:               uuid.New(),
		GroupID:          req.GroupID,
		Name:             name,
		Brand:            strings.TrimSpace(req.Brand),
		Market:           strings.TrimSpace(req.Market),
		ShortDescription: req.ShortDescription,
		FullDescription:  req.FullDescription,
		Status:           status,
		PlannedLaunch:    req.PlannedLaunch,
		ActualLaunch:     req.ActualLaunch,
		Priority:         req.Priority,
		MOQ:              req.MOQ,
		FOBPrice:         req.FOBPrice,
		PromoPrice:       req.PromoPrice,
		RRPPrice:         req.RRPPrice,
		CustomFields:     cloneFields(req.CustomFields),
		CreatedAt:        now,
	}
	recordHistory(project, now, "Project created", "")

	if err := s.projectRepo.Create(ctx, project); err != nil {
		s.logger.Error("failed to create project", zap.Error(err))
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	logger.WithProject(s.logger, project.ID.String(), project.ShortID).Info("Project created",
		zap.String("name", project.Name),
		zap.String("group_id", project.GroupID.String()),
	)
	return s.GetByID(ctx, project.ID)
}

// Update replaces the editable project attributes. Nested collections are left untouched.
func (s *ProjectService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateProjectRequest) (*domain.Project, error) {
	if _, err := s.groupRepo.GetByID(ctx, req.GroupID); err != nil {
		return nil, mapNotFound(err, ErrGroupNotFound)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	updated, err := s.projectRepo.Mutate(ctx, id, func(p *domain.Project) error {
		if req.CurrentGTMStageID != nil {
			if _, ok := p.FindStage(*req.CurrentGTMStageID); !ok {
				return ErrStageNotFound
			}
		}

		changes := describeProjectChanges(p, req)

		p.GroupID = req.GroupID
		p.Name = name
		p.Brand = strings.TrimSpace(req.Brand)
		p.Market = strings.TrimSpace(req.Market)
		p.ShortDescription = req.ShortDescription
		p.FullDescription = req.FullDescription
		p.Status = req.Status
		p.CurrentGTMStageID = req.CurrentGTMStageID
		p.PlannedLaunch = req.PlannedLaunch
		p.ActualLaunch = req.ActualLaunch
		p.Priority = req.Priority
		p.MOQ = req.MOQ
		p.FOBPrice = req.FOBPrice
		p.PromoPrice = req.PromoPrice
		p.RRPPrice = req.RRPPrice
		p.CustomFields = cloneFields(req.CustomFields)

		recordHistory(p, nowUTC(), "Project updated", changes)
		return nil
	})
	if err != nil {
		return nil, mapNotFound(err, ErrProjectNotFound)
	}

	logger.WithProject(s.logger, updated.ID.String(), updated.ShortID).Info("Project updated")
	return updated, nil
}

// describeProjectChanges summarizes the attribute changes worth reading in history
func describeProjectChanges(p *domain.Project, req *domain.UpdateProjectRequest) string {
	var parts []string
	if p.Name != strings.TrimSpace(req.Name) {
		parts = append(parts, fmt.Sprintf("name: %s -> %s", p.Name, strings.TrimSpace(req.Name)))
	}
	if p.Status != req.Status {
		parts = append(parts, fmt.Sprintf("status: %s -> %s", p.Status, req.Status))
	}
	if p.GroupID != req.GroupID {
		parts = append(parts, "group changed")
	}
	if !sameStage(p.CurrentGTMStageID, req.CurrentGTMStageID) {
		title := ""
		if req.CurrentGTMStageID != nil {
			if stage, ok := p.FindStage(*req.CurrentGTMStageID); ok {
				title = stage.Title
			}
		}
		parts = append(parts, fmt.Sprintf("current stage: %s", orDash(title)))
	}
	return strings.Join(parts, "; ")
}

func sameStage(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Delete removes a project and, when configured, its stored attachments
func (s *ProjectService) Delete(ctx context.Context, id uuid.UUID) error {
	project, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return mapNotFound(err, ErrProjectNotFound)
	}

	if s.purger != nil {
		s.purger.Purge(ctx, project)
	}

	logger.WithProject(s.logger, project.ID.String(), project.ShortID).Info("Project deleted")
	return nil
}

// FieldMeta describes custom fields shared between projects, for filter UIs
func (s *ProjectService) FieldMeta(ctx context.Context) ([]domain.CustomFieldMeta, error) {
	return s.projectRepo.FieldMeta(ctx)
}

// ============================================================================
// Comments
// ============================================================================

func (s *ProjectService) ListComments(ctx context.Context, projectID uuid.UUID) ([]domain.Comment, error) {
	project, err := s.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return project.Comments, nil
}

// AddComment stores a comment; comments are kept newest first
func (s *ProjectService) AddComment(ctx context.Context, projectID uuid.UUID, req *domain.CommentRequest) (*domain.Comment, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}

	now := nowUTC()
	comment := domain.Comment{ID: uuid.New(), Text: text, CreatedAt: now}

	_, err := s.projectRepo.Mutate(ctx, projectID, func(p *domain.Project) error {
		p.Comments = append([]domain.Comment{comment}, p.Comments...)
		recordHistory(p, now, "Comment added", "")
		return nil
	})
	if err != nil {
		return nil, mapNotFound(err, ErrProjectNotFound)
	}
	return &comment, nil
}

func (s *ProjectService) UpdateComment(ctx context.Context, projectID, commentID uuid.UUID, req *domain.CommentRequest) (*domain.Comment, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}

	var updated domain.Comment
	_, err := s.projectRepo.Mutate(ctx, projectID, func(p *domain.Project) error {
		for i := range p.Comments {
			if p.Comments[i].ID == commentID {
				p.Comments[i].Text = text
				updated = p.Comments[i]
				return nil
			}
		}
		return ErrCommentNotFound
	})
	if err != nil {
		return nil, mapNotFound(err, ErrProjectNotFound)
	}
	return &updated, nil
}

func (s *ProjectService) DeleteComment(ctx context.Context, projectID, commentID uuid.UUID) error {
	_, err := s.projectRepo.Mutate(ctx, projectID, func(p *domain.Project) error {
		for i := range p.Comments {
			if p.Comments[i].ID == commentID {
				p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
				recordHistory(p, nowUTC(), "Comment deleted", "")
				return nil
			}
		}
		return ErrCommentNotFound
	})
	return mapNotFound(err, ErrProjectNotFound)
}

// ============================================================================
// History
// ============================================================================

func (s *ProjectService) ListHistory(ctx context.Context, projectID uuid.UUID) ([]domain.HistoryEvent, error) {
	project, err := s.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return project.History, nil
}

// AddHistoryEvent records a manual history entry
func (s *ProjectService) AddHistoryEvent(ctx context.Context, projectID uuid.UUID, req *domain.HistoryEventRequest) (*domain.HistoryEvent, error) {
	summary := strings.TrimSpace(req.Summary)
	if summary == "" {
		return nil, fmt.Errorf("%w: summary is required", ErrInvalidInput)
	}

	var event domain.HistoryEvent
	_, err := s.projectRepo.Mutate(ctx, projectID, func(p *domain.Project) error {
		event = recordHistory(p, nowUTC(), summary, strings.TrimSpace(req.Details))
		return nil
	})
	if err != nil {
		return nil, mapNotFound(err, ErrProjectNotFound)
	}
	return &event, nil
}

func (s *ProjectService) DeleteHistoryEvent(ctx context.Context, projectID, eventID uuid.UUID) error {
	_, err := s.projectRepo.Mutate(ctx, projectID, func(p *domain.Project) error {
		for i := range p.History {
			if p.History[i].ID == eventID {
				p.History = append(p.History[:i], p.History[i+1:]...)
				return nil
			}
		}
		return ErrHistoryEventNotFound
	})
	return mapNotFound(err, ErrProjectNotFound)
}
