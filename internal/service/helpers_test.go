package service_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/straye-as/project-tracker/internal/domain"
	"github.com/straye-as/project-tracker/internal/repository"
	"github.com/straye-as/project-tracker/internal/service"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	store     *repository.Store
	groups    *repository.GroupRepository
	projects  *repository.ProjectRepository
	templates *repository.TemplateRepository

	groupService   *service.GroupService
	projectService *service.ProjectService
	gtmService     *service.GTMService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := repository.OpenStore(filepath.Join(t.TempDir(), "project_tracker.json"), zap.NewNop())
	require.NoError(t, err)

	env := &testEnv{
		store:     store,
		groups:    repository.NewGroupRepository(store),
		projects:  repository.NewProjectRepository(store),
		templates: repository.NewTemplateRepository(store),
	}
	env.groupService = service.NewGroupService(env.groups, zap.NewNop())
	env.projectService = service.NewProjectService(env.projects, env.groups, nil, zap.NewNop())
	env.gtmService = service.NewGTMService(env.projects, env.templates, zap.NewNop())
	return env
}

func (e *testEnv) createGroup(t *testing.T, name string) *domain.ProductGroup {
	t.Helper()
	group, err := e.groupService.Create(context.Background(), &domain.CreateGroupRequest{Name: name})
	require.NoError(t, err)
	return group
}

func (e *testEnv) createProject(t *testing.T, groupID uuid.UUID, name string) *domain.Project {
	t.Helper()
	project, err := e.projectService.Create(context.Background(), &domain.CreateProjectRequest{
		GroupID: groupID,
		Name:    name,
		Brand:   "Alpha",
		Market:  "RU",
	})
	require.NoError(t, err)
	return project
}

func (e *testEnv) addStage(t *testing.T, projectID uuid.UUID, title string) *domain.GTMStage {
	t.Helper()
	stage, err := e.gtmService.AddStage(context.Background(), projectID, &domain.StageRequest{Title: title})
	require.NoError(t, err)
	return stage
}

func projectFiltersAll() repository.ProjectFilters {
	return repository.ProjectFilters{IncludeArchived: true}
}
