package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/straye-as/project-tracker/internal/domain"
	"github.com/straye-as/project-tracker/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectRepository_CreateAssignsShortIDs(t *testing.T) {
	store := openTestStore(t)
	repo := repository.NewProjectRepository(store)
	ctx := context.Background()
	groupID := uuid.New()

	first := newTestProject(groupID, "One")
	second := newTestProject(groupID, "Two")
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	assert.Equal(t, 1, first.ShortID)
	assert.Equal(t, 2, second.ShortID)

	// Deleting does not free the counter
	require.NoError(t, repo.Delete(ctx, second.ID))
	third := newTestProject(groupID, "Three")
	require.NoError(t, repo.Create(ctx, third))
	assert.Equal(t, 3, third.ShortID)
}

func TestProjectRepository_UpdateKeepsShortID(t *testing.T) {
	store := openTestStore(t)
	repo := repository.NewProjectRepository(store)
	ctx := context.Background()

	project := newTestProject(uuid.New(), "One")
	require.NoError(t, repo.Create(ctx, project))

	project.ShortID = 42
	project.Name = "Renamed"
	require.NoError(t, repo.Update(ctx, project))

	found, err := repo.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, found.ShortID)
	assert.Equal(t, "Renamed", found.Name)
}

func TestProjectRepository_NotFound(t *testing.T) {
	repo := repository.NewProjectRepository(openTestStore(t))
	ctx := context.Background()

	_, err := repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), repository.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, newTestProject(uuid.New(), "x")), repository.ErrNotFound)
}

func TestProjectRepository_Upsert(t *testing.T) {
	store := openTestStore(t)
	repo := repository.NewProjectRepository(store)
	ctx := context.Background()
	groupID := uuid.New()

	existing := newTestProject(groupID, "Existing")
	require.NoError(t, repo.Create(ctx, existing))

	changed := existing.Clone()
	changed.Name = "Existing v2"
	changed.ShortID = 0
	fresh := newTestProject(groupID, "Fresh")
	fresh.ShortID = 1

	result, err := repo.Upsert(ctx, []domain.Project{changed, *fresh})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Created)

	found, err := repo.GetByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Existing v2", found.Name)
	assert.Equal(t, 1, found.ShortID)
	assert.NotNil(t, found.UpdatedAt)

	created, err := repo.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, created.ShortID)
}

func TestProjectRepository_MutateRollsBack(t *testing.T) {
	store := openTestStore(t)
	repo := repository.NewProjectRepository(store)
	ctx := context.Background()

	project := newTestProject(uuid.New(), "One")
	require.NoError(t, repo.Create(ctx, project))

	_, err := repo.Mutate(ctx, project.ID, func(p *domain.Project) error {
		p.Name = "half-done"
		return errors.New("nope")
	})
	require.Error(t, err)

	found, err := repo.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "One", found.Name)

	updated, err := repo.Mutate(ctx, project.ID, func(p *domain.Project) error {
		p.Name = "Two"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Two", updated.Name)
}

func TestProjectRepository_ReplaceGTMClearsDanglingCurrentStage(t *testing.T) {
	store := openTestStore(t)
	repo := repository.NewProjectRepository(store)
	ctx := context.Background()

	oldStage := domain.GTMStage{ID: uuid.New(), Title: "Old", Status: domain.StageStatusNotStarted}
	project := newTestProject(uuid.New(), "One")
	project.GTMStages = []domain.GTMStage{oldStage}
	project.CurrentGTMStageID = &oldStage.ID
	require.NoError(t, repo.Create(ctx, project))

	newStage := domain.GTMStage{ID: uuid.New(), Title: "New", Status: domain.StageStatusInProgress}
	task := domain.Task{ID: uuid.New(), Title: "Task", Status: domain.TaskStatusTodo, GTMStageID: &newStage.ID}

	event := domain.HistoryEvent{ID: uuid.New(), Summary: "GTM imported"}
	updated, err := repo.ReplaceGTM(ctx, project.ID, []domain.GTMStage{newStage}, []domain.Task{task}, event)
	require.NoError(t, err)
	require.Len(t, updated.GTMStages, 1)
	assert.Equal(t, "New", updated.GTMStages[0].Title)
	require.Len(t, updated.Tasks, 1)
	assert.Nil(t, updated.CurrentGTMStageID)
	require.Len(t, updated.History, 1)
	assert.Equal(t, "GTM imported", updated.History[0].Summary)
}

func TestProjectRepository_ReplaceGTMKeepsUnstagedTasks(t *testing.T) {
	store := openTestStore(t)
	repo := repository.NewProjectRepository(store)
	ctx := context.Background()

	oldStage := domain.GTMStage{ID: uuid.New(), Title: "Old", Status: domain.StageStatusNotStarted}
	project := newTestProject(uuid.New(), "One")
	project.GTMStages = []domain.GTMStage{oldStage}
	project.Tasks = []domain.Task{
		{ID: uuid.New(), Title: "Staged", Status: domain.TaskStatusTodo, GTMStageID: &oldStage.ID},
		{ID: uuid.New(), Title: "Loose", Status: domain.TaskStatusTodo},
	}
	require.NoError(t, repo.Create(ctx, project))

	newStage := domain.GTMStage{ID: uuid.New(), Title: "New", Status: domain.StageStatusInProgress}
	imported := domain.Task{ID: uuid.New(), Title: "Imported", Status: domain.TaskStatusTodo, GTMStageID: &newStage.ID}

	updated, err := repo.ReplaceGTM(ctx, project.ID, []domain.GTMStage{newStage}, []domain.Task{imported})
	require.NoError(t, err)
	require.Len(t, updated.Tasks, 2)
	assert.Equal(t, "Imported", updated.Tasks[0].Title)
	assert.Equal(t, "Loose", updated.Tasks[1].Title)
	assert.Nil(t, updated.Tasks[1].GTMStageID)
}

func TestProjectRepository_ListFilters(t *testing.T) {
	store := openTestStore(t)
	repo := repository.NewProjectRepository(store)
	ctx := context.Background()
	groupA, groupB := uuid.New(), uuid.New()

	p1 := newTestProject(groupA, "Project 1")
	p1.CustomFields = map[string]domain.Scalar{"color": domain.Text("red"), "size": domain.Int(10), "approved": domain.Bool(true)}
	p2 := newTestProject(groupB, "Project 2")
	p2.Brand = "Beta"
	p2.Status = domain.ProjectStatusClosed
	p2.CustomFields = map[string]domain.Scalar{"color": domain.Text("blue"), "size": domain.Int(12), "approved": domain.Bool(false)}
	p3 := newTestProject(groupA, "Project 3")
	p3.Status = domain.ProjectStatusArchived
	p3.PlannedLaunch = domain.DatePtr(domain.NewDate(2024, 12, 31))
	p3.CustomFields = map[string]domain.Scalar{"color": domain.Text("red"), "size": domain.Int(15)}
	for _, p := range []*domain.Project{p1, p2, p3} {
		require.NoError(t, repo.Create(ctx, p))
	}

	names := func(projects []domain.Project) []string {
		out := make([]string, 0, len(projects))
		for _, p := range projects {
			out = append(out, p.Name)
		}
		return out
	}

	from, to := 12.0, 20.0
	yes := true
	tests := []struct {
		name    string
		filters repository.ProjectFilters
		want    []string
	}{
		{"archived hidden by default", repository.ProjectFilters{}, []string{"Project 1", "Project 2"}},
		{"include archived", repository.ProjectFilters{IncludeArchived: true}, []string{"Project 1", "Project 2", "Project 3"}},
		{"brand is case-insensitive", repository.ProjectFilters{Brand: "beta"}, []string{"Project 2"}},
		{"group", repository.ProjectFilters{IncludeArchived: true, GroupID: &groupA}, []string{"Project 1", "Project 3"}},
		{"statuses", repository.ProjectFilters{IncludeArchived: true, Statuses: []domain.ProjectStatus{domain.ProjectStatusClosed}}, []string{"Project 2"}},
		{
			"select and number range",
			repository.ProjectFilters{IncludeArchived: true, CustomFields: []domain.CustomFieldFilter{
				{FieldID: "color", Type: "select", Values: []string{"red"}},
				{FieldID: "size", Type: "number", ValueFrom: &from, ValueTo: &to},
			}},
			[]string{"Project 3"},
		},
		{
			"checkbox",
			repository.ProjectFilters{IncludeArchived: true, CustomFields: []domain.CustomFieldFilter{
				{FieldID: "approved", Type: "checkbox", Bool: &yes},
			}},
			[]string{"Project 1"},
		},
		{
			"planned launch range",
			repository.ProjectFilters{
				IncludeArchived: true,
				PlannedFrom:     domain.DatePtr(domain.NewDate(2024, 12, 1)),
				PlannedTo:       domain.DatePtr(domain.NewDate(2024, 12, 31)),
			},
			[]string{"Project 3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := repo.List(ctx, tt.filters)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(list))
		})
	}
}

func TestProjectRepository_FieldMetaOnlyReusedFields(t *testing.T) {
	store := openTestStore(t)
	repo := repository.NewProjectRepository(store)
	ctx := context.Background()

	p1 := newTestProject(uuid.New(), "One")
	p1.CustomFields = map[string]domain.Scalar{"color": domain.Text("red"), "size": domain.Int(10), "note": domain.Text("only here")}
	p2 := newTestProject(uuid.New(), "Two")
	p2.CustomFields = map[string]domain.Scalar{"color": domain.Text("blue"), "size": domain.Float(12.5)}
	require.NoError(t, repo.Create(ctx, p1))
	require.NoError(t, repo.Create(ctx, p2))

	meta, err := repo.FieldMeta(ctx)
	require.NoError(t, err)
	require.Len(t, meta, 2)

	assert.Equal(t, "color", meta[0].FieldID)
	assert.Equal(t, "select", meta[0].Type)
	assert.Equal(t, []string{"blue", "red"}, meta[0].Values)

	assert.Equal(t, "size", meta[1].FieldID)
	assert.Equal(t, "number", meta[1].Type)
	assert.Equal(t, 10.0, *meta[1].Min)
	assert.Equal(t, 12.5, *meta[1].Max)
}

func TestGroupRepository_DeleteRefusedWhileReferenced(t *testing.T) {
	store := openTestStore(t)
	groups := repository.NewGroupRepository(store)
	projects := repository.NewProjectRepository(store)
	ctx := context.Background()

	group := newTestGroup("Кухня")
	require.NoError(t, groups.Create(ctx, group))
	project := newTestProject(group.ID, "Чайник")
	require.NoError(t, projects.Create(ctx, project))

	assert.ErrorIs(t, groups.Delete(ctx, group.ID), repository.ErrGroupInUse)
	count, err := groups.CountProjects(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, projects.Delete(ctx, project.ID))
	require.NoError(t, groups.Delete(ctx, group.ID))
	_, err = groups.GetByID(ctx, group.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
