package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/straye-as/project-tracker/internal/domain"
	"github.com/straye-as/project-tracker/internal/repository"
	"go.uber.org/zap"
)

// GroupService handles business logic for product groups
type GroupService struct {
	groupRepo *repository.GroupRepository
	logger    *zap.Logger
}

// NewGroupService creates a new GroupService
func NewGroupService(groupRepo *repository.GroupRepository, logger *zap.Logger) *GroupService {
	return &GroupService{
		groupRepo: groupRepo,
		logger:    logger,
	}
}

// List returns groups sorted by name
func (s *GroupService) List(ctx context.Context, filters repository.GroupFilters) ([]domain.ProductGroup, error) {
	groups, err := s.groupRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

func (s *GroupService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProductGroup, error) {
	group, err := s.groupRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrGroupNotFound)
	}
	return group, nil
}

// Create adds a group; status defaults to active
func (s *GroupService) Create(ctx context.Context, req *domain.CreateGroupRequest) (*domain.ProductGroup, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	status := req.Status
	if status == "" {
		status = domain.GroupStatusActive
	}

	group := &domain.ProductGroup{
		ID:          uuid.New(),
		Name:        name,
		Description: req.Description,
		Status:      status,
		Brands:      cleanBrands(req.Brands),
		ExtraFields: cloneFields(req.ExtraFields),
		CreatedAt:   nowUTC(),
	}

	if err := s.groupRepo.Create(ctx, group); err != nil {
		s.logger.Error("failed to create group", zap.Error(err))
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	s.logger.Info("Product group created",
		zap.String("group_id", group.ID.String()),
		zap.String("name", group.Name),
	)
	return group, nil
}

func (s *GroupService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateGroupRequest) (*domain.ProductGroup, error) {
	group, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	now := nowUTC()
	group.Name = name
	group.Description = req.Description
	group.Status = req.Status
	group.Brands = cleanBrands(req.Brands)
	group.ExtraFields = cloneFields(req.ExtraFields)
	group.UpdatedAt = &now

	if err := s.groupRepo.Update(ctx, group); err != nil {
		return nil, mapNotFound(err, ErrGroupNotFound)
	}

	s.logger.Info("Product group updated", zap.String("group_id", id.String()))
	return group, nil
}

// Delete removes a group. Groups still referenced by projects cannot be deleted.
func (s *GroupService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.groupRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrGroupInUse) {
			return ErrGroupHasProjects
		}
		return mapNotFound(err, ErrGroupNotFound)
	}

	s.logger.Info("Product group deleted", zap.String("group_id", id.String()))
	return nil
}

// FieldMeta describes extra fields shared between groups, for filter UIs
func (s *GroupService) FieldMeta(ctx context.Context) ([]domain.CustomFieldMeta, error) {
	return s.groupRepo.FieldMeta(ctx)
}

func cleanBrands(brands []string) []string {
	out := make([]string, 0, len(brands))
	seen := make(map[string]bool, len(brands))
	for _, b := range brands {
		b = strings.TrimSpace(b)
		key := strings.ToLower(b)
		if b == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, b)
	}
	return out
}

func cloneFields(fields map[string]domain.Scalar) map[string]domain.Scalar {
	out := make(map[string]domain.Scalar, len(fields))
	for k, v := range fields {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		out[k] = v
	}
	return out
}
