package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/straye-as/project-tracker/internal/domain"
	"github.com/straye-as/project-tracker/internal/repository"
	"github.com/straye-as/project-tracker/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPurger struct {
	purged []uuid.UUID
}

func (r *recordingPurger) Purge(ctx context.Context, project *domain.Project) {
	r.purged = append(r.purged, project.ID)
}

func TestGroupService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	group, err := env.groupService.Create(ctx, &domain.CreateGroupRequest{
		Name:   "  Kitchen  ",
		Brands: []string{"Alpha", " alpha ", "", "Beta"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Kitchen", group.Name)
	assert.Equal(t, domain.GroupStatusActive, group.Status)
	assert.Equal(t, []string{"Alpha", "Beta"}, group.Brands)

	_, err = env.groupService.Create(ctx, &domain.CreateGroupRequest{Name: "   "})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestGroupService_DeleteRefusedWhileReferenced(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	group := env.createGroup(t, "Kitchen")
	project := env.createProject(t, group.ID, "Kettle")

	assert.ErrorIs(t, env.groupService.Delete(ctx, group.ID), service.ErrGroupHasProjects)

	require.NoError(t, env.projectService.Delete(ctx, project.ID))
	require.NoError(t, env.groupService.Delete(ctx, group.ID))
	assert.ErrorIs(t, env.groupService.Delete(ctx, group.ID), service.ErrGroupNotFound)
}

func TestProjectService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	group := env.createGroup(t, "Kitchen")

	_, err := env.projectService.Create(ctx, &domain.CreateProjectRequest{GroupID: uuid.New(), Name: "Kettle"})
	assert.ErrorIs(t, err, service.ErrGroupNotFound)

	first := env.createProject(t, group.ID, "Kettle")
	second := env.createProject(t, group.ID, "Toaster")

	assert.Equal(t, 1, first.ShortID)
	assert.Equal(t, 2, second.ShortID)
	assert.Equal(t, domain.ProjectStatusActive, first.Status)
	assert.NotNil(t, first.GTMStages)
	assert.NotNil(t, first.CustomFields)
	require.Len(t, first.History, 1)
	assert.Equal(t, "Project created", first.History[0].Summary)
}

func TestProjectService_UpdateValidatesCurrentStage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	group := env.createGroup(t, "Kitchen")
	project := env.createProject(t, group.ID, "Kettle")
	stage := env.addStage(t, project.ID, "Research")

	req := &domain.UpdateProjectRequest{
		GroupID: group.ID,
		Name:    "Kettle Pro",
		Brand:   "Alpha",
		Market:  "RU",
		Status:  domain.ProjectStatusClosed,
	}

	unknown := uuid.New()
	req.CurrentGTMStageID = &unknown
	_, err := env.projectService.Update(ctx, project.ID, req)
	assert.ErrorIs(t, err, service.ErrStageNotFound)

	stored, err := env.projectService.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kettle", stored.Name, "a failed update leaves the project untouched")

	req.CurrentGTMStageID = &stage.ID
	updated, err := env.projectService.Update(ctx, project.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Kettle Pro", updated.Name)
	assert.Equal(t, "Research", updated.CurrentStageTitle())
	require.Len(t, updated.GTMStages, 1, "nested collections survive an update")

	event := updated.History[0]
	assert.Equal(t, "Project updated", event.Summary)
	assert.Contains(t, event.Details, "status: active -> closed")
	assert.Contains(t, event.Details, "current stage: Research")

	_, err = env.projectService.Update(ctx, uuid.New(), req)
	assert.ErrorIs(t, err, service.ErrProjectNotFound)
}

func TestProjectService_ListFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	kitchen := env.createGroup(t, "Kitchen")
	care := env.createGroup(t, "Care")
	env.createProject(t, kitchen.ID, "Kettle")
	env.createProject(t, care.ID, "Dryer")

	all, err := env.projectService.List(ctx, repository.ProjectFilters{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	only, err := env.projectService.List(ctx, repository.ProjectFilters{GroupID: &care.ID})
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, "Dryer", only[0].Name)
}

func TestProjectService_Comments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project := env.createProject(t, env.createGroup(t, "Kitchen").ID, "Kettle")

	first, err := env.projectService.AddComment(ctx, project.ID, &domain.CommentRequest{Text: "first"})
	require.NoError(t, err)
	_, err = env.projectService.AddComment(ctx, project.ID, &domain.CommentRequest{Text: "second"})
	require.NoError(t, err)

	comments, err := env.projectService.ListComments(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "second", comments[0].Text, "newest first")

	updated, err := env.projectService.UpdateComment(ctx, project.ID, first.ID, &domain.CommentRequest{Text: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Text)

	require.NoError(t, env.projectService.DeleteComment(ctx, project.ID, first.ID))
	assert.ErrorIs(t, env.projectService.DeleteComment(ctx, project.ID, first.ID), service.ErrCommentNotFound)

	_, err = env.projectService.AddComment(ctx, project.ID, &domain.CommentRequest{Text: "  "})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestProjectService_History(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project := env.createProject(t, env.createGroup(t, "Kitchen").ID, "Kettle")

	event, err := env.projectService.AddHistoryEvent(ctx, project.ID, &domain.HistoryEventRequest{
		Summary: "Supplier meeting",
		Details: "Agreed on samples",
	})
	require.NoError(t, err)

	history, err := env.projectService.ListHistory(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, event.ID, history[0].ID)

	require.NoError(t, env.projectService.DeleteHistoryEvent(ctx, project.ID, event.ID))
	assert.ErrorIs(t, env.projectService.DeleteHistoryEvent(ctx, project.ID, event.ID), service.ErrHistoryEventNotFound)
	assert.ErrorIs(t, env.projectService.DeleteHistoryEvent(ctx, uuid.New(), event.ID), service.ErrProjectNotFound)
}

func TestProjectService_DeletePurgesAttachments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	purger := &recordingPurger{}
	projects := service.NewProjectService(env.projects, env.groups, purger, zap.NewNop())
	project := env.createProject(t, env.createGroup(t, "Kitchen").ID, "Kettle")

	require.NoError(t, projects.Delete(ctx, project.ID))
	assert.Equal(t, []uuid.UUID{project.ID}, purger.purged)

	assert.ErrorIs(t, projects.Delete(ctx, project.ID), service.ErrProjectNotFound)
	assert.Len(t, purger.purged, 1)
}
