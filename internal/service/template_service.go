package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/straye-as/project-tracker/internal/domain"
	"github.com/straye-as/project-tracker/internal/repository"
	"go.uber.org/zap"
)

// TemplateService manages reusable GTM and characteristic templates
type TemplateService struct {
	templateRepo *repository.TemplateRepository
	logger       *zap.Logger
}

func NewTemplateService(templateRepo *repository.TemplateRepository, logger *zap.Logger) *TemplateService {
	return &TemplateService{
		templateRepo: templateRepo,
		logger:       logger,
	}
}

// ============================================================================
// GTM templates
// ============================================================================

func (s *TemplateService) ListGTM(ctx context.Context) ([]domain.GTMTemplate, error) {
	return s.templateRepo.ListGTM(ctx)
}

func (s *TemplateService) GetGTM(ctx context.Context, id uuid.UUID) (*domain.GTMTemplate, error) {
	template, err := s.templateRepo.GetGTM(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrTemplateNotFound)
	}
	return template, nil
}

func (s *TemplateService) CreateGTM(ctx context.Context, req *domain.GTMTemplateRequest) (*domain.GTMTemplate, error) {
	template, err := gtmTemplateFromRequest(req)
	if err != nil {
		return nil, err
	}
	template.ID = uuid.New()

	if err := s.templateRepo.CreateGTM(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to create GTM template: %w", err)
	}

	s.logger.Info("GTM template created",
		zap.String("template_id", template.ID.String()),
		zap.Int("stage_count", len(template.Stages)),
	)
	return template, nil
}

func (s *TemplateService) UpdateGTM(ctx context.Context, id uuid.UUID, req *domain.GTMTemplateRequest) (*domain.GTMTemplate, error) {
	template, err := gtmTemplateFromRequest(req)
	if err != nil {
		return nil, err
	}
	template.ID = id

	if err := s.templateRepo.UpdateGTM(ctx, template); err != nil {
		return nil, mapNotFound(err, ErrTemplateNotFound)
	}
	return template, nil
}

func (s *TemplateService) DeleteGTM(ctx context.Context, id uuid.UUID) error {
	return mapNotFound(s.templateRepo.DeleteGTM(ctx, id), ErrTemplateNotFound)
}

func gtmTemplateFromRequest(req *domain.GTMTemplateRequest) (*domain.GTMTemplate, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	template := &domain.GTMTemplate{
		Name:        name,
		Description: req.Description,
		Stages:      make([]domain.GTMStage, 0, len(req.Stages)),
	}
	for i := range req.Stages {
		stage, err := stageFromRequest(&req.Stages[i], nil)
		if err != nil {
			return nil, err
		}
		if stage.Order == 0 {
			stage.Order = i
		}
		template.Stages = append(template.Stages, stage)
	}
	return template, nil
}

// ============================================================================
// Characteristic templates
// ============================================================================

func (s *TemplateService) ListCharacteristic(ctx context.Context) ([]domain.CharacteristicTemplate, error) {
	return s.templateRepo.ListCharacteristic(ctx)
}

func (s *TemplateService) GetCharacteristic(ctx context.Context, id uuid.UUID) (*domain.CharacteristicTemplate, error) {
	template, err := s.templateRepo.GetCharacteristic(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrTemplateNotFound)
	}
	return template, nil
}

func (s *TemplateService) CreateCharacteristic(ctx context.Context, req *domain.CharacteristicTemplateRequest) (*domain.CharacteristicTemplate, error) {
	template, err := characteristicTemplateFromRequest(req)
	if err != nil {
		return nil, err
	}
	template.ID = uuid.New()

	if err := s.templateRepo.CreateCharacteristic(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to create characteristic template: %w", err)
	}

	s.logger.Info("Characteristic template created",
		zap.String("template_id", template.ID.String()),
		zap.Int("section_count", len(template.Sections)),
	)
	return template, nil
}

func (s *TemplateService) UpdateCharacteristic(ctx context.Context, id uuid.UUID, req *domain.CharacteristicTemplateRequest) (*domain.CharacteristicTemplate, error) {
	template, err := characteristicTemplateFromRequest(req)
	if err != nil {
		return nil, err
	}
	template.ID = id

	if err := s.templateRepo.UpdateCharacteristic(ctx, template); err != nil {
		return nil, mapNotFound(err, ErrTemplateNotFound)
	}
	return template, nil
}

func (s *TemplateService) DeleteCharacteristic(ctx context.Context, id uuid.UUID) error {
	return mapNotFound(s.templateRepo.DeleteCharacteristic(ctx, id), ErrTemplateNotFound)
}

func characteristicTemplateFromRequest(req *domain.CharacteristicTemplateRequest) (*domain.CharacteristicTemplate, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	template := &domain.CharacteristicTemplate{
		Name:        name,
		Description: req.Description,
		Sections:    make([]domain.CharacteristicSection, 0, len(req.Sections)),
	}
	for i, sr := range req.Sections {
		title := strings.TrimSpace(sr.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: section title is required", ErrInvalidInput)
		}
		section := domain.CharacteristicSection{
			ID:     uuid.New(),
			Title:  title,
			Order:  sr.Order,
			Fields: make([]domain.CharacteristicField, 0, len(sr.Fields)),
		}
		if section.Order == 0 {
			section.Order = i
		}
		for j := range sr.Fields {
			field, err := fieldFromRequest(&sr.Fields[j])
			if err != nil {
				return nil, err
			}
			field.ID = uuid.New()
			if field.Order == 0 {
				field.Order = j
			}
			section.Fields = append(section.Fields, field)
		}
		template.Sections = append(template.Sections, section)
	}
	return template, nil
}
