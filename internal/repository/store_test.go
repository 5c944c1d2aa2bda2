package repository_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/project-tracker/internal/domain"
	"github.com/straye-as/project-tracker/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestStore(t *testing.T) *repository.Store {
	t.Helper()
	store, err := repository.OpenStore(filepath.Join(t.TempDir(), "project_tracker.json"), zap.NewNop())
	require.NoError(t, err)
	return store
}

func newTestGroup(name string) *domain.ProductGroup {
	return &domain.ProductGroup{
		ID:          uuid.New(),
		Name:        name,
		Status:      domain.GroupStatusActive,
		Brands:      []string{},
		ExtraFields: map[string]domain.Scalar{},
		CreatedAt:   time.Now().UTC(),
	}
}

func newTestProject(groupID uuid.UUID, name string) *domain.Project {
	return &domain.Project{
		ID:           uuid.New(),
		GroupID:      groupID,
		Name:         name,
		Brand:        "Alpha",
		Market:       "RU",
		Status:       domain.ProjectStatusActive,
		CustomFields: map[string]domain.Scalar{},
		CreatedAt:    time.Now().UTC(),
	}
}

func TestOpenStore_MissingFileStartsEmpty(t *testing.T) {
	store := openTestStore(t)

	err := store.View(func(doc *repository.Document) error {
		assert.Empty(t, doc.ProductGroups)
		assert.Empty(t, doc.Projects)
		assert.Equal(t, 1, doc.NextShortID)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_UpdatePersistsWholeDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	store, err := repository.OpenStore(path, zap.NewNop())
	require.NoError(t, err)

	group := newTestGroup("Kitchen")
	require.NoError(t, repository.NewGroupRepository(store).Create(context.Background(), group))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "product_groups")
	assert.Contains(t, raw, "projects")

	reopened, err := repository.OpenStore(path, zap.NewNop())
	require.NoError(t, err)
	found, err := repository.NewGroupRepository(reopened).GetByID(context.Background(), group.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kitchen", found.Name)
}

func TestStore_UpdateRollsBackOnError(t *testing.T) {
	store := openTestStore(t)
	groups := repository.NewGroupRepository(store)
	require.NoError(t, groups.Create(context.Background(), newTestGroup("Kept")))

	boom := errors.New("boom")
	err := store.Update(func(doc *repository.Document) error {
		doc.ProductGroups = nil
		doc.NextShortID = 99
		return boom
	})
	assert.ErrorIs(t, err, boom)

	list, err := groups.List(context.Background(), repository.GroupFilters{IncludeArchived: true})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Kept", list[0].Name)

	_ = store.View(func(doc *repository.Document) error {
		assert.Equal(t, 1, doc.NextShortID)
		return nil
	})
}

func TestStore_CorruptFileFailsToOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := repository.OpenStore(path, zap.NewNop())
	assert.Error(t, err)
}

func TestStore_ReturnedValuesDoNotAlias(t *testing.T) {
	store := openTestStore(t)
	groups := repository.NewGroupRepository(store)
	projects := repository.NewProjectRepository(store)
	ctx := context.Background()

	group := newTestGroup("Kitchen")
	require.NoError(t, groups.Create(ctx, group))
	project := newTestProject(group.ID, "Blender")
	project.CustomFields["color"] = domain.Text("red")
	require.NoError(t, projects.Create(ctx, project))

	first, err := projects.GetByID(ctx, project.ID)
	require.NoError(t, err)
	first.Name = "Changed"
	first.CustomFields["color"] = domain.Text("blue")

	second, err := projects.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Blender", second.Name)
	assert.Equal(t, "red", second.CustomFields["color"].Text)
}
