package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/project-tracker/internal/domain"
	"github.com/straye-as/project-tracker/internal/logger"
	"github.com/straye-as/project-tracker/internal/repository"
	"github.com/straye-as/project-tracker/internal/spreadsheet"
	"go.uber.org/zap"
)

// XLSXContentType is the media type of exported workbooks
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Export is a rendered workbook with a suggested download name
type Export struct {
	FileName string
	Data     []byte
}

// SyncService moves projects, GTM plans and characteristics between the store and Excel workbooks.
// Imports never commit a workbook that produced any error.
type SyncService struct {
	codec       *spreadsheet.Codec
	projectRepo *repository.ProjectRepository
	groupRepo   *repository.GroupRepository
	now         func() time.Time
	logger      *zap.Logger
}

func NewSyncService(
	codec *spreadsheet.Codec,
	projectRepo *repository.ProjectRepository,
	groupRepo *repository.GroupRepository,
	logger *zap.Logger,
) *SyncService {
	return &SyncService{
		codec:       codec,
		projectRepo: projectRepo,
		groupRepo:   groupRepo,
		now:         time.Now,
		logger:      logger,
	}
}

func (s *SyncService) allGroups(ctx context.Context) ([]domain.ProductGroup, error) {
	groups, err := s.groupRepo.List(ctx, repository.GroupFilters{IncludeArchived: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

func (s *SyncService) getProject(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrProjectNotFound)
	}
	return project, nil
}

func (s *SyncService) fileName(parts ...string) string {
	stamp := s.now().UTC().Format("20060102")
	return strings.Join(append(parts, stamp), "_") + ".xlsx"
}

// ============================================================================
// Exports
// ============================================================================

// ExportProjects renders the projects matching filters
func (s *SyncService) ExportProjects(ctx context.Context, filters repository.ProjectFilters) (*Export, error) {
	projects, err := s.projectRepo.List(ctx, repository.ProjectFilters{IncludeArchived: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	groups, err := s.allGroups(ctx)
	if err != nil {
		return nil, err
	}

	data, err := s.codec.ExportProjects(projects, groups, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to export projects: %w", err)
	}
	return &Export{FileName: s.fileName("projects"), Data: data}, nil
}

// ExportProjectBundle renders one project with its characteristics and GTM plan
func (s *SyncService) ExportProjectBundle(ctx context.Context, projectID uuid.UUID) (*Export, error) {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	groups, err := s.allGroups(ctx)
	if err != nil {
		return nil, err
	}

	data, err := s.codec.ExportProjectBundle(project, groups)
	if err != nil {
		return nil, fmt.Errorf("failed to export project: %w", err)
	}
	return &Export{FileName: s.fileName("project", fmt.Sprint(project.ShortID)), Data: data}, nil
}

func (s *SyncService) ExportStages(ctx context.Context, projectID uuid.UUID) (*Export, error) {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	data, err := s.codec.ExportStages(project.GTMStages, project.Tasks)
	if err != nil {
		return nil, fmt.Errorf("failed to export stages: %w", err)
	}
	return &Export{FileName: s.fileName("gtm", fmt.Sprint(project.ShortID)), Data: data}, nil
}

func (s *SyncService) ExportCharacteristics(ctx context.Context, projectID uuid.UUID) (*Export, error) {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	data, err := s.codec.ExportCharacteristics(project.Characteristics)
	if err != nil {
		return nil, fmt.Errorf("failed to export characteristics: %w", err)
	}
	return &Export{FileName: s.fileName("characteristics", fmt.Sprint(project.ShortID)), Data: data}, nil
}

// ExportGTMOverview renders one GTM sheet per matching project
func (s *SyncService) ExportGTMOverview(ctx context.Context, filters repository.ProjectFilters) (*Export, error) {
	projects, err := s.projectRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	data, err := s.codec.ExportGTMOverview(projects)
	if err != nil {
		return nil, fmt.Errorf("failed to export GTM overview: %w", err)
	}
	return &Export{FileName: s.fileName("gtm_overview"), Data: data}, nil
}

// ============================================================================
// Imports
// ============================================================================

func rejected(errs []spreadsheet.ImportError) error {
	return &ImportRejectedError{Errors: errs}
}

// ImportStages replaces the project's stages and tasks with the workbook's plan.
// With dryRun the parsed plan is returned without committing.
func (s *SyncService) ImportStages(ctx context.Context, projectID uuid.UUID, data []byte, dryRun bool) (*spreadsheet.StageImportResult, error) {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	log := logger.WithProject(s.logger, project.ID.String(), project.ShortID)

	result := s.codec.ImportStagesAndTasks(data, project.GTMStages, project.Tasks)
	if result.HasErrors() {
		log.Warn("GTM import rejected", zap.Int("error_count", len(result.Errors)))
		return result, rejected(result.Errors)
	}
	if dryRun {
		return result, nil
	}

	event := historyEvent("GTM imported from spreadsheet",
		fmt.Sprintf("stages: %d, tasks: %d", len(result.Stages), len(result.Tasks)))
	if _, err := s.projectRepo.ReplaceGTM(ctx, projectID, result.Stages, result.Tasks, event); err != nil {
		return nil, mapNotFound(err, ErrProjectNotFound)
	}

	log.Info("GTM imported",
		zap.Int("stage_count", len(result.Stages)),
		zap.Int("task_count", len(result.Tasks)),
	)
	return result, nil
}

// ImportCharacteristics reconciles the workbook with the project's characteristics and
// commits the merged section list
func (s *SyncService) ImportCharacteristics(ctx context.Context, projectID uuid.UUID, data []byte, dryRun bool) (*spreadsheet.CharacteristicImportResult, error) {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	log := logger.WithProject(s.logger, project.ID.String(), project.ShortID)

	result := s.codec.ImportCharacteristics(data, project.Characteristics)
	if result.HasErrors() {
		log.Warn("Characteristics import rejected", zap.Int("error_count", len(result.Errors)))
		return result, rejected(result.Errors)
	}
	if dryRun {
		return result, nil
	}

	event := historyEvent("Characteristics imported from spreadsheet",
		fmt.Sprintf("sections created: %d, fields created: %d, fields updated: %d",
			result.Report.SectionsCreated, result.Report.FieldsCreated, result.Report.FieldsUpdated))
	if _, err := s.projectRepo.ReplaceCharacteristics(ctx, projectID, result.Sections, event); err != nil {
		return nil, mapNotFound(err, ErrProjectNotFound)
	}

	log.Info("Characteristics imported",
		zap.Int("sections_created", result.Report.SectionsCreated),
		zap.Int("fields_created", result.Report.FieldsCreated),
		zap.Int("fields_updated", result.Report.FieldsUpdated),
	)
	return result, nil
}

// ImportProjects upserts the workbook's projects by id in one write. Committed results
// carry the stored projects, short ids included.
func (s *SyncService) ImportProjects(ctx context.Context, data []byte, dryRun bool) (*spreadsheet.ProjectImportResult, error) {
	groups, err := s.allGroups(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := s.projectRepo.List(ctx, repository.ProjectFilters{IncludeArchived: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	result := s.codec.ImportProjects(data, groups, existing)
	if result.HasErrors() {
		s.logger.Warn("Project import rejected", zap.Int("error_count", len(result.Errors)))
		return result, rejected(result.Errors)
	}
	if dryRun {
		return result, nil
	}

	known := make(map[uuid.UUID]bool, len(existing))
	for _, p := range existing {
		known[p.ID] = true
	}
	for i := range result.Projects {
		summary := "Project imported from spreadsheet"
		if known[result.Projects[i].ID] {
			summary = "Project updated from spreadsheet"
		}
		result.Projects[i].History = append([]domain.HistoryEvent{historyEvent(summary, "")}, result.Projects[i].History...)
	}

	upserted, err := s.projectRepo.Upsert(ctx, result.Projects)
	if err != nil {
		return nil, fmt.Errorf("failed to save imported projects: %w", err)
	}
	result.Projects = upserted.Projects
	result.Created = upserted.Created
	result.Updated = upserted.Updated

	s.logger.Info("Projects imported",
		zap.Int("created", upserted.Created),
		zap.Int("updated", upserted.Updated),
	)
	return result, nil
}
