package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/straye-as/project-tracker/internal/domain"
)

type TemplateRepository struct {
	store *Store
}

func NewTemplateRepository(store *Store) *TemplateRepository {
	return &TemplateRepository{store: store}
}

func (r *TemplateRepository) ListGTM(ctx context.Context) ([]domain.GTMTemplate, error) {
	var templates []domain.GTMTemplate
	err := r.store.View(func(doc *Document) error {
		templates = make([]domain.GTMTemplate, 0, len(doc.GTMTemplates))
		for _, t := range doc.GTMTemplates {
			templates = append(templates, t.Clone())
		}
		return nil
	})
	return templates, err
}

func (r *TemplateRepository) GetGTM(ctx context.Context, id uuid.UUID) (*domain.GTMTemplate, error) {
	var template *domain.GTMTemplate
	err := r.store.View(func(doc *Document) error {
		for _, t := range doc.GTMTemplates {
			if t.ID == id {
				c := t.Clone()
				template = &c
				return nil
			}
		}
		return ErrNotFound
	})
	return template, err
}

func (r *TemplateRepository) CreateGTM(ctx context.Context, template *domain.GTMTemplate) error {
	return r.store.Update(func(doc *Document) error {
		doc.GTMTemplates = append(doc.GTMTemplates, template.Clone())
		return nil
	})
}

func (r *TemplateRepository) UpdateGTM(ctx context.Context, template *domain.GTMTemplate) error {
	return r.store.Update(func(doc *Document) error {
		for i := range doc.GTMTemplates {
			if doc.GTMTemplates[i].ID == template.ID {
				doc.GTMTemplates[i] = template.Clone()
				return nil
			}
		}
		return ErrNotFound
	})
}

func (r *TemplateRepository) DeleteGTM(ctx context.Context, id uuid.UUID) error {
	return r.store.Update(func(doc *Document) error {
		for i := range doc.GTMTemplates {
			if doc.GTMTemplates[i].ID == id {
				doc.GTMTemplates = append(doc.GTMTemplates[:i], doc.GTMTemplates[i+1:]...)
				return nil
			}
		}
		return ErrNotFound
	})
}

func (r *TemplateRepository) ListCharacteristic(ctx context.Context) ([]domain.CharacteristicTemplate, error) {
	var templates []domain.CharacteristicTemplate
	err := r.store.View(func(doc *Document) error {
		templates = make([]domain.CharacteristicTemplate, 0, len(doc.CharacteristicTemplates))
		for _, t := range doc.CharacteristicTemplates {
			templates = append(templates, t.Clone())
		}
		return nil
	})
	return templates, err
}

func (r *TemplateRepository) GetCharacteristic(ctx context.Context, id uuid.UUID) (*domain.CharacteristicTemplate, error) {
	var template *domain.CharacteristicTemplate
	err := r.store.View(func(doc *Document) error {
		for _, t := range doc.CharacteristicTemplates {
			if t.ID == id {
				c := t.Clone()
				template = &c
				return nil
			}
		}
		return ErrNotFound
	})
	return template, err
}

func (r *TemplateRepository) CreateCharacteristic(ctx context.Context, template *domain.CharacteristicTemplate) error {
	return r.store.Update(func(doc *Document) error {
		doc.CharacteristicTemplates = append(doc.CharacteristicTemplates, template.Clone())
		return nil
	})
}

func (r *TemplateRepository) UpdateCharacteristic(ctx context.Context, template *domain.CharacteristicTemplate) error {
	return r.store.Update(func(doc *Document) error {
		for i := range doc.CharacteristicTemplates {
			if doc.CharacteristicTemplates[i].ID == template.ID {
				doc.CharacteristicTemplates[i] = template.Clone()
				return nil
			}
		}
		return ErrNotFound
	})
}

func (r *TemplateRepository) DeleteCharacteristic(ctx context.Context, id uuid.UUID) error {
	return r.store.Update(func(doc *Document) error {
		for i := range doc.CharacteristicTemplates {
			if doc.CharacteristicTemplates[i].ID == id {
				doc.CharacteristicTemplates = append(doc.CharacteristicTemplates[:i], doc.CharacteristicTemplates[i+1:]...)
				return nil
			}
		}
		return ErrNotFound
	})
}
