package spreadsheet_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/project-tracker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGroups() []domain.ProductGroup {
	return []domain.ProductGroup{
		{ID: uuid.New(), Name: "Кухня", Status: domain.GroupStatusActive},
		{ID: uuid.New(), Name: "Уход", Status: domain.GroupStatusActive},
	}
}

func TestImportProjects_UnknownGroupIsSkipped(t *testing.T) {
	groups := testGroups()
	data := buildWorkbook(t, sheetData{name: "Проекты", rows: [][]interface{}{
		row("Название проекта", "Продуктовая группа", "Бренд", "Рынок/регион", "Статус"),
		row("Чайник", "кухня", "Alpha", "RU", "Активный"),
		row("Фен", "Садовая техника", "Beta", "KZ", "active"),
	}})

	res := newTestCodec().ImportProjects(data, groups, nil)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 3, res.Errors[0].Row)
	assert.Contains(t, res.Errors[0].Message, "Садовая техника")

	require.Len(t, res.Projects, 1)
	p := res.Projects[0]
	assert.Equal(t, "Чайник", p.Name)
	assert.Equal(t, groups[0].ID, p.GroupID)
	assert.Equal(t, domain.ProjectStatusActive, p.Status)
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, 1, res.Created)
}

func TestImportProjects_CustomFieldColumns(t *testing.T) {
	groups := testGroups()
	data := buildWorkbook(t, sheetData{name: "Проекты", rows: [][]interface{}{
		row("Название проекта", "Продуктовая группа", "Бренд", "Статус", "CF:Мощность", "CF: цвет", "CF:Гарантия"),
		row("Чайник", "Кухня", "Alpha", "", "2200", "белый", ""),
		row("Тостер", "Кухня", "Alpha", "closed", "1,5", "true", "2"),
	}})

	res := newTestCodec().ImportProjects(data, groups, nil)
	require.Empty(t, res.Errors)
	require.Len(t, res.Projects, 2)

	kettle := res.Projects[0]
	assert.Equal(t, domain.Int(2200), kettle.CustomFields["Мощность"])
	assert.Equal(t, domain.Text("белый"), kettle.CustomFields["цвет"])
	_, has := kettle.CustomFields["Гарантия"]
	assert.False(t, has, "empty cells are omitted")

	toaster := res.Projects[1]
	assert.Equal(t, domain.ProjectStatusClosed, toaster.Status)
	assert.Equal(t, 1.5, toaster.CustomFields["Мощность"].Float)
	assert.Equal(t, domain.Bool(true), toaster.CustomFields["цвет"])
	assert.Equal(t, domain.Int(2), toaster.CustomFields["Гарантия"])
}

func TestImportProjects_LeadingZeroCodesStayText(t *testing.T) {
	data := buildWorkbook(t, sheetData{name: "Проекты", rows: [][]interface{}{
		row("Название проекта", "Продуктовая группа", "Бренд", "Статус", "CF:Артикул", "CF:Доля", "CF:Ноль"),
		row("Чайник", "Кухня", "Alpha", "", "007", "0,25", "0"),
	}})

	res := newTestCodec().ImportProjects(data, testGroups(), nil)
	require.Empty(t, res.Errors)
	require.Len(t, res.Projects, 1)

	fields := res.Projects[0].CustomFields
	assert.Equal(t, domain.Text("007"), fields["Артикул"])
	assert.Equal(t, 0.25, fields["Доля"].Float)
	assert.Equal(t, domain.Int(0), fields["Ноль"])
}

func TestImportProjects_MergesMatchedID(t *testing.T) {
	groups := testGroups()
	stageID := uuid.New()
	moq := 500
	existing := []domain.Project{{
		ID:               uuid.New(),
		ShortID:          7,
		GroupID:          groups[0].ID,
		Name:             "Чайник",
		Brand:            "Alpha",
		Market:           "RU",
		ShortDescription: "old",
		Status:           domain.ProjectStatusActive,
		MOQ:              &moq,
		CustomFields:     map[string]domain.Scalar{"цвет": domain.Text("белый"), "вес": domain.Int(1)},
		GTMStages:        []domain.GTMStage{{ID: stageID, Title: "Дизайн", Status: domain.StageStatusInProgress}},
		CreatedAt:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}}

	data := buildWorkbook(t, sheetData{name: "Проекты", rows: [][]interface{}{
		row("ID", "Название проекта", "Продуктовая группа", "Бренд", "Статус", "Текущий GTM-этап", "FOB цена", "CF:цвет"),
		row(existing[0].ID.String(), "Чайник 2", "Уход", "Alpha", "в архиве", "дизайн", "12,5", ""),
	}})

	res := newTestCodec().ImportProjects(data, groups, existing)
	require.Empty(t, res.Errors)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 0, res.Created)

	require.Len(t, res.Projects, 1)
	p := res.Projects[0]
	assert.Equal(t, existing[0].ID, p.ID)
	assert.Equal(t, 7, p.ShortID)
	assert.Equal(t, "Чайник 2", p.Name)
	assert.Equal(t, groups[1].ID, p.GroupID)
	assert.Equal(t, domain.ProjectStatusArchived, p.Status)
	require.NotNil(t, p.CurrentGTMStageID)
	assert.Equal(t, stageID, *p.CurrentGTMStageID)
	require.NotNil(t, p.FOBPrice)
	assert.Equal(t, 12.5, *p.FOBPrice)

	// Columns missing from the sheet keep their values
	assert.Equal(t, "RU", p.Market)
	assert.Equal(t, "old", p.ShortDescription)
	require.NotNil(t, p.MOQ)
	assert.Equal(t, 500, *p.MOQ)

	// An empty CF cell removes the key, other keys survive
	_, has := p.CustomFields["цвет"]
	assert.False(t, has)
	assert.Equal(t, domain.Int(1), p.CustomFields["вес"])

	// The input is not mutated
	assert.Equal(t, "Чайник", existing[0].Name)
	assert.Contains(t, existing[0].CustomFields, "цвет")
}

func TestImportProjects_RowValidation(t *testing.T) {
	groups := testGroups()
	id := uuid.New()
	existing := []domain.Project{{ID: id, GroupID: groups[0].ID, Name: "A", Brand: "B", Status: domain.ProjectStatusActive}}

	data := buildWorkbook(t, sheetData{name: "Проекты", rows: [][]interface{}{
		row("ID", "Название проекта", "Продуктовая группа", "Бренд", "Статус", "MOQ", "РРЦ", "Текущий GTM-этап"),
		row("", "", "Кухня", "Alpha", "", "", "", ""),
		row("", "X", "Кухня", "Alpha", "paused", "", "", ""),
		row("", "X", "Кухня", "Alpha", "", "-1", "", ""),
		row("", "X", "Кухня", "Alpha", "", "", "дорого", ""),
		row("", "X", "Кухня", "Alpha", "", "", "", "Нет такого"),
		row(id.String(), "A", "Кухня", "B", "", "", "", ""),
		row(id.String(), "A", "Кухня", "B", "", "", "", ""),
	}})

	res := newTestCodec().ImportProjects(data, groups, existing)
	require.Len(t, res.Errors, 6)
	rows := make([]int, len(res.Errors))
	for i, e := range res.Errors {
		rows[i] = e.Row
	}
	assert.Equal(t, []int{2, 3, 4, 5, 6, 8}, rows)
	assert.True(t, res.HasErrors())

	require.Len(t, res.Projects, 1)
	assert.Equal(t, id, res.Projects[0].ID)
}

func TestImportProjects_MissingRequiredColumn(t *testing.T) {
	data := buildWorkbook(t, sheetData{name: "Проекты", rows: [][]interface{}{
		row("Название проекта", "Бренд", "Статус"),
		row("Чайник", "Alpha", "active"),
	}})

	res := newTestCodec().ImportProjects(data, testGroups(), nil)
	require.Len(t, res.Errors, 1)
	assert.True(t, res.Errors[0].Structural())
	assert.Empty(t, res.Projects)
}

func TestProjectsRoundTrip(t *testing.T) {
	codec := newTestCodec()
	groups := testGroups()
	priority := domain.PriorityHigh
	moq := 1000
	rrp := 2499.9
	planned := domain.NewDate(2025, 3, 1)
	stageID := uuid.New()

	projects := []domain.Project{
		{
			ID: uuid.New(), ShortID: 1, GroupID: groups[0].ID, Name: "Чайник", Brand: "Alpha", Market: "RU",
			Status: domain.ProjectStatusActive, Priority: &priority, MOQ: &moq, RRPPrice: &rrp,
			PlannedLaunch:     &planned,
			CurrentGTMStageID: &stageID,
			GTMStages:         []domain.GTMStage{{ID: stageID, Title: "Производство"}},
			CustomFields:      map[string]domain.Scalar{"мощность": domain.Int(2200), "цвет": domain.Text("белый")},
			ShortDescription:  "Электрический чайник",
		},
		{
			ID: uuid.New(), ShortID: 2, GroupID: groups[1].ID, Name: "Фен", Brand: "Beta", Market: "KZ",
			Status:       domain.ProjectStatusClosed,
			CustomFields: map[string]domain.Scalar{"складной": domain.Bool(false)},
		},
	}

	data, err := codec.ExportProjects(projects, groups, nil)
	require.NoError(t, err)

	res := codec.ImportProjects(data, groups, projects)
	require.Empty(t, res.Errors)
	assert.Equal(t, 2, res.Updated)
	require.Len(t, res.Projects, 2)

	for i := range projects {
		got, want := res.Projects[i], projects[i]
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.GroupID, got.GroupID)
		assert.Equal(t, want.Status, got.Status)
		assert.Equal(t, want.CustomFields, got.CustomFields)
		assert.Equal(t, want.CurrentGTMStageID, got.CurrentGTMStageID)
	}
	assert.Equal(t, planned.String(), res.Projects[0].PlannedLaunch.String())
	assert.Equal(t, domain.PriorityHigh, *res.Projects[0].Priority)
	assert.Equal(t, 1000, *res.Projects[0].MOQ)
	assert.InDelta(t, 2499.9, *res.Projects[0].RRPPrice, 0.0001)
	assert.Nil(t, res.Projects[1].Priority)
}
