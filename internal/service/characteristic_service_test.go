package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/straye-as/project-tracker/internal/domain"
	"github.com/straye-as/project-tracker/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCharacteristicService_SectionsAndFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	chars := service.NewCharacteristicService(env.projects, env.templates, zap.NewNop())
	project := env.createProject(t, env.createGroup(t, "Kitchen").ID, "Kettle")

	dims, err := chars.AddSection(ctx, project.ID, &domain.SectionRequest{Title: "Dimensions"})
	require.NoError(t, err)
	pack, err := chars.AddSection(ctx, project.ID, &domain.SectionRequest{Title: "Packaging"})
	require.NoError(t, err)
	assert.Equal(t, 0, dims.Order)
	assert.Equal(t, 1, pack.Order)

	weight, err := chars.AddField(ctx, project.ID, dims.ID, &domain.FieldRequest{
		LabelRu: "Вес", LabelEn: "Weight", ValueRu: domain.Int(5), FieldType: domain.FieldTypeNumber,
	})
	require.NoError(t, err)
	color, err := chars.AddField(ctx, project.ID, dims.ID, &domain.FieldRequest{LabelRu: "Цвет", LabelEn: "Color"})
	require.NoError(t, err)
	assert.Equal(t, 1, color.Order)
	assert.Equal(t, domain.FieldTypeText, color.FieldType)

	updated, err := chars.UpdateField(ctx, project.ID, dims.ID, weight.ID, &domain.FieldRequest{
		LabelRu: "Вес", LabelEn: "Weight", ValueRu: domain.Float(5.5), FieldType: domain.FieldTypeNumber,
	})
	require.NoError(t, err)
	assert.Equal(t, weight.ID, updated.ID)

	_, err = chars.AddField(ctx, project.ID, uuid.New(), &domain.FieldRequest{LabelRu: "X", LabelEn: "X"})
	assert.ErrorIs(t, err, service.ErrSectionNotFound)
	assert.ErrorIs(t, chars.DeleteField(ctx, project.ID, dims.ID, uuid.New()), service.ErrFieldNotFound)

	renamed, err := chars.UpdateSection(ctx, project.ID, pack.ID, &domain.SectionRequest{Title: "Box", Order: 5})
	require.NoError(t, err)
	assert.Equal(t, "Box", renamed.Title)

	require.NoError(t, chars.DeleteField(ctx, project.ID, dims.ID, color.ID))
	require.NoError(t, chars.DeleteSection(ctx, project.ID, pack.ID))

	sections, err := chars.ListSections(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	require.Len(t, sections[0].Fields, 1)
	v, ok := sections[0].Fields[0].ValueRu.Number()
	require.True(t, ok)
	assert.Equal(t, 5.5, v)
}

func TestCharacteristicService_ApplyTemplateClearsValues(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	chars := service.NewCharacteristicService(env.projects, env.templates, zap.NewNop())
	templates := service.NewTemplateService(env.templates, zap.NewNop())
	project := env.createProject(t, env.createGroup(t, "Kitchen").ID, "Kettle")

	template, err := templates.CreateCharacteristic(ctx, &domain.CharacteristicTemplateRequest{
		Name: "Appliance",
		Sections: []domain.TemplateSectionRequest{{
			Title: "Power",
			Fields: []domain.FieldRequest{
				{LabelRu: "Мощность", LabelEn: "Power", ValueRu: domain.Int(2200), FieldType: domain.FieldTypeNumber},
			},
		}},
	})
	require.NoError(t, err)

	sections, err := chars.ApplyTemplate(ctx, project.ID, template.ID)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	field := sections[0].Fields[0]
	assert.Equal(t, "Мощность", field.LabelRu)
	assert.True(t, field.ValueRu.IsNull())
	assert.True(t, field.ValueEn.IsNull())
	assert.NotEqual(t, template.Sections[0].ID, sections[0].ID)
	assert.NotEqual(t, template.Sections[0].Fields[0].ID, field.ID)

	stored, err := env.projectService.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Characteristic template applied", stored.History[0].Summary)

	_, err = chars.ApplyTemplate(ctx, project.ID, uuid.New())
	assert.ErrorIs(t, err, service.ErrTemplateNotFound)
	_, err = chars.ApplyTemplate(ctx, uuid.New(), template.ID)
	assert.ErrorIs(t, err, service.ErrProjectNotFound)
}

func TestCharacteristicService_CopyFromProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	chars := service.NewCharacteristicService(env.projects, env.templates, zap.NewNop())
	group := env.createGroup(t, "Kitchen")
	source := env.createProject(t, group.ID, "Kettle")
	target := env.createProject(t, group.ID, "Kettle 2")

	section, err := chars.AddSection(ctx, source.ID, &domain.SectionRequest{Title: "Power"})
	require.NoError(t, err)
	_, err = chars.AddField(ctx, source.ID, section.ID, &domain.FieldRequest{
		LabelRu: "Мощность", LabelEn: "Power", ValueRu: domain.Int(2200), ValueEn: domain.Text("2200 W"),
	})
	require.NoError(t, err)

	copied, err := chars.CopyFromProject(ctx, target.ID, source.ID)
	require.NoError(t, err)
	require.Len(t, copied, 1)
	assert.NotEqual(t, section.ID, copied[0].ID)
	assert.True(t, copied[0].Fields[0].ValueRu.IsNull())

	// The source keeps its values
	original, err := chars.ListSections(ctx, source.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Int(2200), original[0].Fields[0].ValueRu)

	_, err = chars.CopyFromProject(ctx, target.ID, uuid.New())
	assert.ErrorIs(t, err, service.ErrProjectNotFound)
}

func TestTemplateService_CRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	templates := service.NewTemplateService(env.templates, zap.NewNop())

	created, err := templates.CreateGTM(ctx, &domain.GTMTemplateRequest{
		Name:   "Standard",
		Stages: []domain.StageRequest{{Title: "Research"}, {Title: "Launch"}},
	})
	require.NoError(t, err)

	updated, err := templates.UpdateGTM(ctx, created.ID, &domain.GTMTemplateRequest{
		Name:   "Standard v2",
		Stages: []domain.StageRequest{{Title: "Research"}},
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	list, err := templates.ListGTM(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Standard v2", list[0].Name)
	assert.Len(t, list[0].Stages, 1)

	require.NoError(t, templates.DeleteGTM(ctx, created.ID))
	_, err = templates.GetGTM(ctx, created.ID)
	assert.ErrorIs(t, err, service.ErrTemplateNotFound)
	assert.ErrorIs(t, templates.DeleteGTM(ctx, created.ID), service.ErrTemplateNotFound)

	_, err = templates.UpdateCharacteristic(ctx, uuid.New(), &domain.CharacteristicTemplateRequest{Name: "X"})
	assert.ErrorIs(t, err, service.ErrTemplateNotFound)

	_, err = templates.CreateCharacteristic(ctx, &domain.CharacteristicTemplateRequest{
		Name:     "Broken",
		Sections: []domain.TemplateSectionRequest{{Title: " "}},
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}
