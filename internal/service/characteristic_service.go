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

// CharacteristicService manages a project's characteristic sections and fields
type CharacteristicService struct {
	projectRepo  *repository.ProjectRepository
	templateRepo *repository.TemplateRepository
	logger       *zap.Logger
}

func NewCharacteristicService(projectRepo *repository.ProjectRepository, templateRepo *repository.TemplateRepository, logger *zap.Logger) *CharacteristicService {
	return &CharacteristicService{
		projectRepo:  projectRepo,
		templateRepo: templateRepo,
		logger:       logger,
	}
}

func (s *CharacteristicService) mutate(ctx context.Context, projectID uuid.UUID, fn func(p *domain.Project) error) (*domain.Project, error) {
	project, err := s.projectRepo.Mutate(ctx, projectID, fn)
	if err != nil {
		return nil, mapNotFound(err, ErrProjectNotFound)
	}
	return project, nil
}

func (s *CharacteristicService) ListSections(ctx context.Context, projectID uuid.UUID) ([]domain.CharacteristicSection, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, mapNotFound(err, ErrProjectNotFound)
	}
	return project.Characteristics, nil
}

// AddSection appends an empty section. Order 0 on a non-empty list appends at the end.
func (s *CharacteristicService) AddSection(ctx context.Context, projectID uuid.UUID, req *domain.SectionRequest) (*domain.CharacteristicSection, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	section := domain.CharacteristicSection{
		ID:     uuid.New(),
		Title:  title,
		Order:  req.Order,
		Fields: []domain.CharacteristicField{},
	}
	_, err := s.mutate(ctx, projectID, func(p *domain.Project) error {
		if section.Order == 0 && len(p.Characteristics) > 0 {
			section.Order = len(p.Characteristics)
		}
		p.Characteristics = append(p.Characteristics, section.Clone())
		recordHistory(p, nowUTC(), "Characteristic section added", title)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &section, nil
}

func (s *CharacteristicService) UpdateSection(ctx context.Context, projectID, sectionID uuid.UUID, req *domain.SectionRequest) (*domain.CharacteristicSection, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	var updated domain.CharacteristicSection
	_, err := s.mutate(ctx, projectID, func(p *domain.Project) error {
		section, ok := p.FindSection(sectionID)
		if !ok {
			return ErrSectionNotFound
		}
		section.Title = title
		section.Order = req.Order
		updated = section.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *CharacteristicService) DeleteSection(ctx context.Context, projectID, sectionID uuid.UUID) error {
	_, err := s.mutate(ctx, projectID, func(p *domain.Project) error {
		for i := range p.Characteristics {
			if p.Characteristics[i].ID == sectionID {
				title := p.Characteristics[i].Title
				p.Characteristics = append(p.Characteristics[:i], p.Characteristics[i+1:]...)
				recordHistory(p, nowUTC(), "Characteristic section deleted", title)
				return nil
			}
		}
		return ErrSectionNotFound
	})
	return err
}

// AddField appends a field to a section; the type defaults to text
func (s *CharacteristicService) AddField(ctx context.Context, projectID, sectionID uuid.UUID, req *domain.FieldRequest) (*domain.CharacteristicField, error) {
	field, err := fieldFromRequest(req)
	if err != nil {
		return nil, err
	}
	field.ID = uuid.New()

	_, err = s.mutate(ctx, projectID, func(p *domain.Project) error {
		section, ok := p.FindSection(sectionID)
		if !ok {
			return ErrSectionNotFound
		}
		if field.Order == 0 && len(section.Fields) > 0 {
			field.Order = len(section.Fields)
		}
		section.Fields = append(section.Fields, field)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &field, nil
}

func (s *CharacteristicService) UpdateField(ctx context.Context, projectID, sectionID, fieldID uuid.UUID, req *domain.FieldRequest) (*domain.CharacteristicField, error) {
	field, err := fieldFromRequest(req)
	if err != nil {
		return nil, err
	}

	_, err = s.mutate(ctx, projectID, func(p *domain.Project) error {
		section, ok := p.FindSection(sectionID)
		if !ok {
			return ErrSectionNotFound
		}
		for i := range section.Fields {
			if section.Fields[i].ID == fieldID {
				field.ID = fieldID
				section.Fields[i] = field
				return nil
			}
		}
		return ErrFieldNotFound
	})
	if err != nil {
		return nil, err
	}
	return &field, nil
}

func (s *CharacteristicService) DeleteField(ctx context.Context, projectID, sectionID, fieldID uuid.UUID) error {
	_, err := s.mutate(ctx, projectID, func(p *domain.Project) error {
		section, ok := p.FindSection(sectionID)
		if !ok {
			return ErrSectionNotFound
		}
		for i := range section.Fields {
			if section.Fields[i].ID == fieldID {
				section.Fields = append(section.Fields[:i], section.Fields[i+1:]...)
				return nil
			}
		}
		return ErrFieldNotFound
	})
	return err
}

// ApplyTemplate replaces the project's characteristics with the template's structure, values cleared
func (s *CharacteristicService) ApplyTemplate(ctx context.Context, projectID, templateID uuid.UUID) ([]domain.CharacteristicSection, error) {
	template, err := s.templateRepo.GetCharacteristic(ctx, templateID)
	if err != nil {
		return nil, mapNotFound(err, ErrTemplateNotFound)
	}

	sections := blankSections(template.Sections)
	project, err := s.projectRepo.ReplaceCharacteristics(ctx, projectID, sections,
		historyEvent("Characteristic template applied", template.Name))
	if err != nil {
		return nil, mapNotFound(err, ErrProjectNotFound)
	}

	s.logger.Info("Characteristic template applied",
		zap.String("project_id", projectID.String()),
		zap.String("template_id", templateID.String()),
	)
	return project.Characteristics, nil
}

// CopyFromProject replaces the project's characteristics with another project's structure, values cleared
func (s *CharacteristicService) CopyFromProject(ctx context.Context, projectID, sourceID uuid.UUID) ([]domain.CharacteristicSection, error) {
	source, err := s.projectRepo.GetByID(ctx, sourceID)
	if err != nil {
		return nil, mapNotFound(err, ErrProjectNotFound)
	}

	sections := blankSections(source.Characteristics)
	project, err := s.projectRepo.ReplaceCharacteristics(ctx, projectID, sections,
		historyEvent("Characteristics copied", source.Name))
	if err != nil {
		return nil, mapNotFound(err, ErrProjectNotFound)
	}

	s.logger.Info("Characteristics copied",
		zap.String("project_id", projectID.String()),
		zap.String("source_project_id", sourceID.String()),
	)
	return project.Characteristics, nil
}

// blankSections copies a section structure with new ids and null values
func blankSections(sections []domain.CharacteristicSection) []domain.CharacteristicSection {
	out := domain.CloneSections(sections)
	for i := range out {
		out[i].ID = uuid.New()
		for j := range out[i].Fields {
			out[i].Fields[j].ID = uuid.New()
			out[i].Fields[j].ValueRu = domain.Null()
			out[i].Fields[j].ValueEn = domain.Null()
		}
	}
	return out
}

func fieldFromRequest(req *domain.FieldRequest) (domain.CharacteristicField, error) {
	labelRu := strings.TrimSpace(req.LabelRu)
	labelEn := strings.TrimSpace(req.LabelEn)
	if labelRu == "" && labelEn == "" {
		return domain.CharacteristicField{}, fmt.Errorf("%w: a label is required", ErrInvalidInput)
	}

	fieldType := req.FieldType
	if fieldType == "" {
		fieldType = domain.FieldTypeText
	}

	return domain.CharacteristicField{
		LabelRu:   labelRu,
		LabelEn:   labelEn,
		ValueRu:   req.ValueRu,
		ValueEn:   req.ValueEn,
		FieldType: fieldType,
		Order:     req.Order,
	}, nil
}
