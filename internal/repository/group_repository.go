package repository

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/straye-as/project-tracker/internal/domain"
)

type GroupRepository struct {
	store *Store
}

func NewGroupRepository(store *Store) *GroupRepository {
	return &GroupRepository{store: store}
}

func (r *GroupRepository) List(ctx context.Context, filters GroupFilters) ([]domain.ProductGroup, error) {
	var groups []domain.ProductGroup
	err := r.store.View(func(doc *Document) error {
		groups = make([]domain.ProductGroup, 0, len(doc.ProductGroups))
		for i := range doc.ProductGroups {
			if !filters.Matches(&doc.ProductGroups[i]) {
				continue
			}
			groups = append(groups, doc.ProductGroups[i].Clone())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return strings.ToLower(groups[i].Name) < strings.ToLower(groups[j].Name)
	})
	return groups, nil
}

func (r *GroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProductGroup, error) {
	var group *domain.ProductGroup
	err := r.store.View(func(doc *Document) error {
		idx := groupIndex(doc, id)
		if idx < 0 {
			return ErrNotFound
		}
		g := doc.ProductGroups[idx].Clone()
		group = &g
		return nil
	})
	return group, err
}

func (r *GroupRepository) Create(ctx context.Context, group *domain.ProductGroup) error {
	return r.store.Update(func(doc *Document) error {
		doc.ProductGroups = append(doc.ProductGroups, group.Clone())
		return nil
	})
}

func (r *GroupRepository) Update(ctx context.Context, group *domain.ProductGroup) error {
	return r.store.Update(func(doc *Document) error {
		idx := groupIndex(doc, group.ID)
		if idx < 0 {
			return ErrNotFound
		}
		doc.ProductGroups[idx] = group.Clone()
		return nil
	})
}

// Delete removes a group that no project references
func (r *GroupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.store.Update(func(doc *Document) error {
		idx := groupIndex(doc, id)
		if idx < 0 {
			return ErrNotFound
		}
		for _, p := range doc.Projects {
			if p.GroupID == id {
				return ErrGroupInUse
			}
		}
		doc.ProductGroups = append(doc.ProductGroups[:idx], doc.ProductGroups[idx+1:]...)
		return nil
	})
}

// CountProjects returns how many projects reference the group
func (r *GroupRepository) CountProjects(ctx context.Context, id uuid.UUID) (int, error) {
	count := 0
	err := r.store.View(func(doc *Document) error {
		for _, p := range doc.Projects {
			if p.GroupID == id {
				count++
			}
		}
		return nil
	})
	return count, err
}

// FieldMeta lists extra fields shared by more than one group
func (r *GroupRepository) FieldMeta(ctx context.Context) ([]domain.CustomFieldMeta, error) {
	var meta []domain.CustomFieldMeta
	err := r.store.View(func(doc *Document) error {
		bags := make([]map[string]domain.Scalar, 0, len(doc.ProductGroups))
		for _, g := range doc.ProductGroups {
			bags = append(bags, g.ExtraFields)
		}
		meta = BuildFieldMeta(bags)
		return nil
	})
	return meta, err
}

func groupIndex(doc *Document, id uuid.UUID) int {
	for i := range doc.ProductGroups {
		if doc.ProductGroups[i].ID == id {
			return i
		}
	}
	return -1
}
