package spreadsheet_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/straye-as/project-tracker/internal/domain"
	"github.com/straye-as/project-tracker/internal/spreadsheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brandFilter string

func (f brandFilter) Matches(p *domain.Project) bool {
	return p.Brand == string(f)
}

func TestExportProjects_CustomFieldColumnsAndFilter(t *testing.T) {
	groups := testGroups()
	projects := []domain.Project{
		{ID: uuid.New(), ShortID: 1, GroupID: groups[0].ID, Name: "Чайник", Brand: "Alpha", Status: domain.ProjectStatusActive,
			CustomFields: map[string]domain.Scalar{"цвет": domain.Text("белый"), "мощность": domain.Int(2200)}},
		{ID: uuid.New(), ShortID: 2, GroupID: groups[0].ID, Name: "Тостер", Brand: "Beta", Status: domain.ProjectStatusActive,
			CustomFields: map[string]domain.Scalar{"артикул": domain.Text("T-1")}},
		{ID: uuid.New(), ShortID: 3, GroupID: groups[1].ID, Name: "Фен", Brand: "Alpha", Status: domain.ProjectStatusClosed,
			CustomFields: map[string]domain.Scalar{"вес": domain.Float(0.75)}},
	}

	data, err := newTestCodec().ExportProjects(projects, groups, brandFilter("Alpha"))
	require.NoError(t, err)

	sheets := readSheets(t, data)
	rows, ok := sheets[spreadsheet.SheetProjects]
	require.True(t, ok)
	require.Len(t, rows, 3)

	header := rows[0]
	require.Len(t, header, 20)
	assert.Equal(t, []string{"CF:вес", "CF:мощность", "CF:цвет"}, header[17:])

	assert.Equal(t, "Чайник", rows[1][2])
	assert.Equal(t, "Кухня", rows[1][3])
	assert.Equal(t, "Активный", rows[1][6])
	assert.Equal(t, "2200", rows[1][18])
	assert.Equal(t, "белый", rows[1][19])

	assert.Equal(t, "Фен", rows[2][2])
	assert.Equal(t, "Закрыт", rows[2][6])
	assert.Equal(t, "0.75", rows[2][17])
}

func TestExportProjectBundle_Sheets(t *testing.T) {
	groups := testGroups()
	stageID := uuid.New()
	project := &domain.Project{
		ID: uuid.New(), ShortID: 4, GroupID: groups[0].ID, Name: "Чайник", Brand: "Alpha", Status: domain.ProjectStatusActive,
		GTMStages: []domain.GTMStage{{ID: stageID, Title: "Дизайн", Status: domain.StageStatusDone}},
		Tasks: []domain.Task{
			{ID: uuid.New(), Title: "Эскизы", Status: domain.TaskStatusDone, Urgency: domain.TaskUrgencyNormal, GTMStageID: &stageID},
			{ID: uuid.New(), Title: "Без этапа", Status: domain.TaskStatusTodo, Urgency: domain.TaskUrgencyNormal},
		},
		Characteristics: []domain.CharacteristicSection{{ID: uuid.New(), Title: "Пусто", Order: 0}},
	}

	data, err := newTestCodec().ExportProjectBundle(project, groups)
	require.NoError(t, err)

	assert.Equal(t, []string{spreadsheet.SheetProject, spreadsheet.SheetCharacteristics, spreadsheet.SheetGTM}, sheetList(t, data))

	sheets := readSheets(t, data)
	require.Len(t, sheets[spreadsheet.SheetProject], 2)

	characteristics := sheets[spreadsheet.SheetCharacteristics]
	require.Len(t, characteristics, 2)
	assert.Equal(t, "Пусто", characteristics[1][0])

	gtm := sheets[spreadsheet.SheetGTM]
	require.Len(t, gtm, 2, "tasks without a stage are not exported")
	assert.Equal(t, "Дизайн", gtm[1][1])
	assert.Equal(t, "Завершён", gtm[1][3])
	assert.Equal(t, "Эскизы", gtm[1][9])
}

func TestExportGTMOverview_SheetNameCollisions(t *testing.T) {
	projects := []domain.Project{
		{ID: uuid.New(), Name: "A/B", GTMStages: []domain.GTMStage{{ID: uuid.New(), Title: "S1"}}},
		{ID: uuid.New(), Name: "A:B", GTMStages: []domain.GTMStage{{ID: uuid.New(), Title: "S2"}}},
		{ID: uuid.New(), Name: "Другой"},
	}

	data, err := newTestCodec().ExportGTMOverview(projects)
	require.NoError(t, err)

	assert.Equal(t, []string{"A_B", "A_B_1", "Другой"}, sheetList(t, data))

	sheets := readSheets(t, data)
	assert.Equal(t, "S1", sheets["A_B"][1][1])
	assert.Equal(t, "S2", sheets["A_B_1"][1][1])
	assert.Len(t, sheets["Другой"], 1, "a project without stages gets a header-only sheet")
}

func TestExportGTMOverview_NoProjects(t *testing.T) {
	data, err := newTestCodec().ExportGTMOverview(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{spreadsheet.SheetGTM}, sheetList(t, data))
}
