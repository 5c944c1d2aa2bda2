package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/straye-as/project-tracker/internal/domain"
	"github.com/straye-as/project-tracker/internal/repository"
	"github.com/straye-as/project-tracker/internal/spreadsheet"
	"go.uber.org/zap"
)

// TaskFilters narrows a project's task list
type TaskFilters struct {
	Statuses   []domain.TaskStatus
	OnlyActive bool
	StageID    *uuid.UUID
}

func (f TaskFilters) matches(t *domain.Task) bool {
	if f.OnlyActive && t.Status == domain.TaskStatusDone {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if t.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.StageID != nil && (t.GTMStageID == nil || *t.GTMStageID != *f.StageID) {
		return false
	}
	return true
}

// GTMService manages a project's go-to-market stages, tasks and subtasks
type GTMService struct {
	projectRepo  *repository.ProjectRepository
	templateRepo *repository.TemplateRepository
	logger       *zap.Logger
}

func NewGTMService(projectRepo *repository.ProjectRepository, templateRepo *repository.TemplateRepository, logger *zap.Logger) *GTMService {
	return &GTMService{
		projectRepo:  projectRepo,
		templateRepo: templateRepo,
		logger:       logger,
	}
}

func (s *GTMService) mutate(ctx context.Context, projectID uuid.UUID, fn func(p *domain.Project) error) (*domain.Project, error) {
	project, err := s.projectRepo.Mutate(ctx, projectID, fn)
	if err != nil {
		return nil, mapNotFound(err, ErrProjectNotFound)
	}
	return project, nil
}

// ============================================================================
// Stages
// ============================================================================

// ListStages returns the project's stages sorted by order
func (s *GTMService) ListStages(ctx context.Context, projectID uuid.UUID) ([]domain.GTMStage, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, mapNotFound(err, ErrProjectNotFound)
	}
	return spreadsheet.SortStages(project.GTMStages), nil
}

// AddStage appends a stage. Order 0 on a non-empty list means "append at the end".
func (s *GTMService) AddStage(ctx context.Context, projectID uuid.UUID, req *domain.StageRequest) (*domain.GTMStage, error) {
	stage, err := stageFromRequest(req, nil)
	if err != nil {
		return nil, err
	}

	_, err = s.mutate(ctx, projectID, func(p *domain.Project) error {
		if stage.Order == 0 && len(p.GTMStages) > 0 {
			stage.Order = len(p.GTMStages)
		}
		p.GTMStages = append(p.GTMStages, stage.Clone())
		recordHistory(p, nowUTC(), "GTM stage added", stage.Title)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("GTM stage added",
		zap.String("project_id", projectID.String()),
		zap.String("stage_id", stage.ID.String()),
	)
	return &stage, nil
}

func (s *GTMService) UpdateStage(ctx context.Context, projectID, stageID uuid.UUID, req *domain.StageRequest) (*domain.GTMStage, error) {
	var updated domain.GTMStage
	_, err := s.mutate(ctx, projectID, func(p *domain.Project) error {
		existing, ok := p.FindStage(stageID)
		if !ok {
			return ErrStageNotFound
		}
		stage, err := stageFromRequest(req, existing)
		if err != nil {
			return err
		}
		if existing.Status != stage.Status {
			recordHistory(p, nowUTC(), "GTM stage status changed",
				fmt.Sprintf("%s: %s -> %s", stage.Title, existing.Status, stage.Status))
		} else {
			recordHistory(p, nowUTC(), "GTM stage updated", stage.Title)
		}
		*existing = stage
		updated = stage.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteStage removes a stage, detaches its tasks and clears it as the current stage
func (s *GTMService) DeleteStage(ctx context.Context, projectID, stageID uuid.UUID) error {
	_, err := s.mutate(ctx, projectID, func(p *domain.Project) error {
		for i := range p.GTMStages {
			if p.GTMStages[i].ID != stageID {
				continue
			}
			title := p.GTMStages[i].Title
			p.GTMStages = append(p.GTMStages[:i], p.GTMStages[i+1:]...)
			detachDanglingStages(p)
			recordHistory(p, nowUTC(), "GTM stage deleted", title)
			return nil
		}
		return ErrStageNotFound
	})
	return err
}

// ApplyTemplate replaces the project's stages with copies of the template's stages
func (s *GTMService) ApplyTemplate(ctx context.Context, projectID, templateID uuid.UUID) ([]domain.GTMStage, error) {
	template, err := s.templateRepo.GetGTM(ctx, templateID)
	if err != nil {
		return nil, mapNotFound(err, ErrTemplateNotFound)
	}

	stages := freshStages(template.Stages)
	project, err := s.mutate(ctx, projectID, func(p *domain.Project) error {
		p.GTMStages = stages
		detachDanglingStages(p)
		recordHistory(p, nowUTC(), "GTM template applied", template.Name)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("GTM template applied",
		zap.String("project_id", projectID.String()),
		zap.String("template_id", templateID.String()),
		zap.Int("stage_count", len(stages)),
	)
	return spreadsheet.SortStages(project.GTMStages), nil
}

// SetCurrentStage points the project at one of its stages, or clears the pointer when stageID is nil
func (s *GTMService) SetCurrentStage(ctx context.Context, projectID uuid.UUID, stageID *uuid.UUID) (*domain.Project, error) {
	return s.mutate(ctx, projectID, func(p *domain.Project) error {
		if stageID == nil {
			p.CurrentGTMStageID = nil
			recordHistory(p, nowUTC(), "Current stage cleared", "")
			return nil
		}
		stage, ok := p.FindStage(*stageID)
		if !ok {
			return ErrStageNotFound
		}
		id := stage.ID
		p.CurrentGTMStageID = &id
		recordHistory(p, nowUTC(), "Current stage changed", stage.Title)
		return nil
	})
}

// detachDanglingStages clears references to stages that no longer exist
func detachDanglingStages(p *domain.Project) {
	if p.CurrentGTMStageID != nil {
		if _, ok := p.FindStage(*p.CurrentGTMStageID); !ok {
			p.CurrentGTMStageID = nil
		}
	}
	for i := range p.Tasks {
		if p.Tasks[i].GTMStageID == nil {
			continue
		}
		if _, ok := p.FindStage(*p.Tasks[i].GTMStageID); !ok {
			p.Tasks[i].GTMStageID = nil
		}
	}
}

// stageFromRequest builds a stage, keeping the id and checklist item ids of existing when given
func stageFromRequest(req *domain.StageRequest, existing *domain.GTMStage) (domain.GTMStage, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.GTMStage{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	status := req.Status
	if status == "" {
		status = domain.StageStatusNotStarted
	}

	stage := domain.GTMStage{
		ID:           uuid.New(),
		Title:        title,
		Description:  req.Description,
		Order:        req.Order,
		PlannedStart: req.PlannedStart,
		PlannedEnd:   req.PlannedEnd,
		ActualEnd:    req.ActualEnd,
		Status:       status,
		RiskFlag:     req.RiskFlag,
		Checklist:    make([]domain.ChecklistItem, 0, len(req.Checklist)),
	}

	knownItems := map[string]uuid.UUID{}
	if existing != nil {
		stage.ID = existing.ID
		for _, item := range existing.Checklist {
			knownItems[strings.ToLower(item.Title)] = item.ID
		}
	}

	for i, item := range req.Checklist {
		itemTitle := strings.TrimSpace(item.Title)
		if itemTitle == "" {
			continue
		}
		id, ok := knownItems[strings.ToLower(itemTitle)]
		if !ok {
			id = uuid.New()
		}
		order := item.Order
		if order == 0 {
			order = i
		}
		stage.Checklist = append(stage.Checklist, domain.ChecklistItem{
			ID:    id,
			Title: itemTitle,
			Done:  item.Done,
			Order: order,
		})
	}
	return stage, nil
}

// freshStages copies stages with new stage and checklist ids
func freshStages(stages []domain.GTMStage) []domain.GTMStage {
	out := domain.CloneStages(stages)
	for i := range out {
		out[i].ID = uuid.New()
		for j := range out[i].Checklist {
			out[i].Checklist[j].ID = uuid.New()
		}
	}
	return out
}

// ============================================================================
// Tasks
// ============================================================================

// ListTasks returns matching tasks sorted by order, due date and title
func (s *GTMService) ListTasks(ctx context.Context, projectID uuid.UUID, filters TaskFilters) ([]domain.Task, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, mapNotFound(err, ErrProjectNotFound)
	}

	tasks := make([]domain.Task, 0, len(project.Tasks))
	for i := range project.Tasks {
		if filters.matches(&project.Tasks[i]) {
			tasks = append(tasks, project.Tasks[i])
		}
	}
	return spreadsheet.SortTasks(tasks), nil
}

func (s *GTMService) AddTask(ctx context.Context, projectID uuid.UUID, req *domain.TaskRequest) (*domain.Task, error) {
	task, err := taskFromRequest(req)
	if err != nil {
		return nil, err
	}
	task.ID = uuid.New()

	_, err = s.mutate(ctx, projectID, func(p *domain.Project) error {
		if err := checkTaskStage(p, task.GTMStageID); err != nil {
			return err
		}
		p.Tasks = append(p.Tasks, task.Clone())
		recordHistory(p, nowUTC(), "Task added", task.Title)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask replaces a task's attributes; subtasks and comments are kept
func (s *GTMService) UpdateTask(ctx context.Context, projectID, taskID uuid.UUID, req *domain.TaskRequest) (*domain.Task, error) {
	task, err := taskFromRequest(req)
	if err != nil {
		return nil, err
	}

	var updated domain.Task
	_, err = s.mutate(ctx, projectID, func(p *domain.Project) error {
		existing, ok := p.FindTask(taskID)
		if !ok {
			return ErrTaskNotFound
		}
		if err := checkTaskStage(p, task.GTMStageID); err != nil {
			return err
		}
		if existing.Status != task.Status && task.Status == domain.TaskStatusDone {
			recordHistory(p, nowUTC(), "Task completed", task.Title)
		}
		task.ID = existing.ID
		task.Subtasks = existing.Subtasks
		task.Comments = existing.Comments
		*existing = task
		updated = task.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *GTMService) DeleteTask(ctx context.Context, projectID, taskID uuid.UUID) error {
	_, err := s.mutate(ctx, projectID, func(p *domain.Project) error {
		for i := range p.Tasks {
			if p.Tasks[i].ID == taskID {
				title := p.Tasks[i].Title
				p.Tasks = append(p.Tasks[:i], p.Tasks[i+1:]...)
				recordHistory(p, nowUTC(), "Task deleted", title)
				return nil
			}
		}
		return ErrTaskNotFound
	})
	return err
}

func checkTaskStage(p *domain.Project, stageID *uuid.UUID) error {
	if stageID == nil {
		return nil
	}
	if _, ok := p.FindStage(*stageID); !ok {
		return ErrStageNotFound
	}
	return nil
}

func taskFromRequest(req *domain.TaskRequest) (domain.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Task{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	status := req.Status
	if status == "" {
		status = domain.TaskStatusTodo
	}
	urgency := req.Urgency
	if urgency == "" {
		urgency = domain.TaskUrgencyNormal
	}

	return domain.Task{
		Title:       title,
		Description: req.Description,
		Order:       req.Order,
		Status:      status,
		DueDate:     req.DueDate,
		Important:   req.Important,
		Urgency:     urgency,
		GTMStageID:  req.GTMStageID,
		Subtasks:    []domain.Subtask{},
		Comments:    []domain.Comment{},
	}, nil
}

// ============================================================================
// Subtasks
// ============================================================================

func (s *GTMService) AddSubtask(ctx context.Context, projectID, taskID uuid.UUID, req *domain.SubtaskRequest) (*domain.Subtask, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	subtask := domain.Subtask{ID: uuid.New(), Title: title, Done: req.Done, Order: req.Order}
	_, err := s.mutate(ctx, projectID, func(p *domain.Project) error {
		task, ok := p.FindTask(taskID)
		if !ok {
			return ErrTaskNotFound
		}
		if subtask.Order == 0 && len(task.Subtasks) > 0 {
			subtask.Order = len(task.Subtasks)
		}
		task.Subtasks = append(task.Subtasks, subtask)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &subtask, nil
}

func (s *GTMService) UpdateSubtask(ctx context.Context, projectID, taskID, subtaskID uuid.UUID, req *domain.SubtaskRequest) (*domain.Subtask, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	var updated domain.Subtask
	_, err := s.mutate(ctx, projectID, func(p *domain.Project) error {
		task, ok := p.FindTask(taskID)
		if !ok {
			return ErrTaskNotFound
		}
		for i := range task.Subtasks {
			if task.Subtasks[i].ID == subtaskID {
				task.Subtasks[i].Title = title
				task.Subtasks[i].Done = req.Done
				task.Subtasks[i].Order = req.Order
				updated = task.Subtasks[i]
				return nil
			}
		}
		return ErrSubtaskNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *GTMService) DeleteSubtask(ctx context.Context, projectID, taskID, subtaskID uuid.UUID) error {
	_, err := s.mutate(ctx, projectID, func(p *domain.Project) error {
		task, ok := p.FindTask(taskID)
		if !ok {
			return ErrTaskNotFound
		}
		for i := range task.Subtasks {
			if task.Subtasks[i].ID == subtaskID {
				task.Subtasks = append(task.Subtasks[:i], task.Subtasks[i+1:]...)
				return nil
			}
		}
		return ErrSubtaskNotFound
	})
	return err
}

// ============================================================================
// Task comments
// ============================================================================

// AddTaskComment stores a comment on a task, newest first
func (s *GTMService) AddTaskComment(ctx context.Context, projectID, taskID uuid.UUID, req *domain.CommentRequest) (*domain.Comment, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}

	comment := domain.Comment{ID: uuid.New(), Text: text, CreatedAt: nowUTC()}
	_, err := s.mutate(ctx, projectID, func(p *domain.Project) error {
		task, ok := p.FindTask(taskID)
		if !ok {
			return ErrTaskNotFound
		}
		task.Comments = append([]domain.Comment{comment}, task.Comments...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *GTMService) DeleteTaskComment(ctx context.Context, projectID, taskID, commentID uuid.UUID) error {
	_, err := s.mutate(ctx, projectID, func(p *domain.Project) error {
		task, ok := p.FindTask(taskID)
		if !ok {
			return ErrTaskNotFound
		}
		for i := range task.Comments {
			if task.Comments[i].ID == commentID {
				task.Comments = append(task.Comments[:i], task.Comments[i+1:]...)
				return nil
			}
		}
		return ErrCommentNotFound
	})
	return err
}
