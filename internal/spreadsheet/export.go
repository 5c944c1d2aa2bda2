package spreadsheet

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/straye-as/project-tracker/internal/domain"
)

// ProjectMatcher selects projects for export
type ProjectMatcher interface {
	Matches(p *domain.Project) bool
}

// ExportProjects renders one row per matching project, in the order given.
// Custom fields become CF:<key> columns, sorted by key.
func (c *Codec) ExportProjects(projects []domain.Project, groups []domain.ProductGroup, filter ProjectMatcher) ([]byte, error) {
	selected := make([]domain.Project, 0, len(projects))
	for i := range projects {
		if filter == nil || filter.Matches(&projects[i]) {
			selected = append(selected, projects[i])
		}
	}

	wb, err := newWorkbook()
	if err != nil {
		return nil, err
	}
	header, rows := projectRows(selected, groupNames(groups))
	if _, err := wb.addSheet(SheetProjects, header, rows); err != nil {
		wb.file.Close()
		return nil, err
	}
	c.logger.Debug("Projects exported")
	return wb.bytes()
}

// ExportProjectBundle renders a project, its characteristics and its flattened GTM plan as three sheets
func (c *Codec) ExportProjectBundle(project *domain.Project, groups []domain.ProductGroup) ([]byte, error) {
	wb, err := newWorkbook()
	if err != nil {
		return nil, err
	}

	header, rows := projectRows([]domain.Project{*project}, groupNames(groups))
	if _, err := wb.addSheet(SheetProject, header, rows); err != nil {
		wb.file.Close()
		return nil, err
	}
	if _, err := wb.addSheet(SheetCharacteristics, headers(characteristicColumns), characteristicRows(project.Characteristics)); err != nil {
		wb.file.Close()
		return nil, err
	}
	if _, err := wb.addSheet(SheetGTM, headers(gtmColumns), gtmRows(project.GTMStages, project.Tasks)); err != nil {
		wb.file.Close()
		return nil, err
	}
	return wb.bytes()
}

// ExportStages renders stages and their tasks as a single combined GTM sheet
func (c *Codec) ExportStages(stages []domain.GTMStage, tasks []domain.Task) ([]byte, error) {
	wb, err := newWorkbook()
	if err != nil {
		return nil, err
	}
	if _, err := wb.addSheet(SheetGTM, headers(gtmColumns), gtmRows(stages, tasks)); err != nil {
		wb.file.Close()
		return nil, err
	}
	return wb.bytes()
}

// ExportCharacteristics renders characteristic sections, one row per field
func (c *Codec) ExportCharacteristics(sections []domain.CharacteristicSection) ([]byte, error) {
	wb, err := newWorkbook()
	if err != nil {
		return nil, err
	}
	if _, err := wb.addSheet(SheetCharacteristics, headers(characteristicColumns), characteristicRows(sections)); err != nil {
		wb.file.Close()
		return nil, err
	}
	return wb.bytes()
}

// ExportGTMOverview renders one GTM sheet per project, named after the project
func (c *Codec) ExportGTMOverview(projects []domain.Project) ([]byte, error) {
	wb, err := newWorkbook()
	if err != nil {
		return nil, err
	}

	if len(projects) == 0 {
		if _, err := wb.addSheet(SheetGTM, headers(gtmColumns), nil); err != nil {
			wb.file.Close()
			return nil, err
		}
		return wb.bytes()
	}

	for i := range projects {
		p := &projects[i]
		if _, err := wb.addSheet(p.Name, headers(gtmColumns), gtmRows(p.GTMStages, p.Tasks)); err != nil {
			wb.file.Close()
			return nil, err
		}
	}
	c.logger.Debug("GTM overview exported")
	return wb.bytes()
}

func groupNames(groups []domain.ProductGroup) map[uuid.UUID]string {
	names := make(map[uuid.UUID]string, len(groups))
	for _, g := range groups {
		names[g.ID] = g.Name
	}
	return names
}

func customFieldKeys(projects []domain.Project) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, p := range projects {
		for key := range p.CustomFields {
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

func projectRows(projects []domain.Project, groups map[uuid.UUID]string) ([]string, [][]interface{}) {
	keys := customFieldKeys(projects)

	header := headers(projectColumns)
	for _, key := range keys {
		header = append(header, CustomFieldPrefix+key)
	}

	rows := make([][]interface{}, 0, len(projects))
	for i := range projects {
		p := &projects[i]
		row := []interface{}{
			p.ID.String(),
			p.ShortID,
			p.Name,
			groups[p.GroupID],
			p.Brand,
			p.Market,
			projectStatusLabels[p.Status],
			dateCell(p.PlannedLaunch),
			dateCell(p.ActualLaunch),
			p.CurrentStageTitle(),
			nil,
			nil,
			nil,
			nil,
			nil,
			p.ShortDescription,
			p.FullDescription,
		}
		if p.Priority != nil {
			row[10] = priorityLabels[*p.Priority]
		}
		if p.MOQ != nil {
			row[11] = *p.MOQ
		}
		if p.FOBPrice != nil {
			row[12] = *p.FOBPrice
		}
		if p.PromoPrice != nil {
			row[13] = *p.PromoPrice
		}
		if p.RRPPrice != nil {
			row[14] = *p.RRPPrice
		}
		for _, key := range keys {
			value, ok := p.CustomFields[key]
			if !ok {
				row = append(row, nil)
				continue
			}
			row = append(row, scalarCell(value))
		}
		rows = append(rows, row)
	}
	return header, rows
}

// SortStages orders stages by order, keeping the original sequence for ties
func SortStages(stages []domain.GTMStage) []domain.GTMStage {
	sorted := append([]domain.GTMStage{}, stages...)
	sortStableBy(sorted, func(a, b domain.GTMStage) bool { return a.Order < b.Order })
	return sorted
}

// SortTasks orders tasks by order, then due date with undated last, then title ignoring case
func SortTasks(tasks []domain.Task) []domain.Task {
	sorted := append([]domain.Task{}, tasks...)
	sortStableBy(sorted, func(a, b domain.Task) bool {
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		switch {
		case a.DueDate != nil && b.DueDate == nil:
			return true
		case a.DueDate == nil && b.DueDate != nil:
			return false
		case a.DueDate != nil && b.DueDate != nil && !a.DueDate.Equal(b.DueDate.Time):
			return a.DueDate.Before(*b.DueDate)
		}
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	})
	return sorted
}

// gtmRows flattens stage -> task -> subtask/comment. Each task spans max(1, subtasks, comments) rows;
// the n-th subtask and n-th comment share a row only for display, they are not related.
// Tasks without a stage are not exported; a GTM import keeps them in place.
func gtmRows(stages []domain.GTMStage, tasks []domain.Task) [][]interface{} {
	byStage := make(map[uuid.UUID][]domain.Task)
	for _, t := range tasks {
		if t.GTMStageID != nil {
			byStage[*t.GTMStageID] = append(byStage[*t.GTMStageID], t)
		}
	}

	var rows [][]interface{}
	for _, stage := range SortStages(stages) {
		stageCells := []interface{}{
			stage.Order,
			stage.Title,
			stage.Description,
			stageStatusLabels[stage.Status],
			dateCell(stage.PlannedStart),
			dateCell(stage.PlannedEnd),
			dateCell(stage.ActualEnd),
			formatBool(stage.RiskFlag),
			FormatChecklist(stage.Checklist),
		}

		stageTasks := SortTasks(byStage[stage.ID])
		if len(stageTasks) == 0 {
			rows = append(rows, stageCells)
			continue
		}

		for _, task := range stageTasks {
			subtasks := append([]domain.Subtask{}, task.Subtasks...)
			sortStableBy(subtasks, func(a, b domain.Subtask) bool { return a.Order < b.Order })

			n := 1
			if len(subtasks) > n {
				n = len(subtasks)
			}
			if len(task.Comments) > n {
				n = len(task.Comments)
			}

			for i := 0; i < n; i++ {
				row := append([]interface{}{}, stageCells...)
				row = append(row,
					task.Title,
					task.Order,
					taskStatusLabels[task.Status],
					dateCell(task.DueDate),
					formatBool(task.Important),
					urgencyLabels[task.Urgency],
					task.Description,
				)
				if i < len(subtasks) {
					row = append(row, subtasks[i].Title, formatBool(subtasks[i].Done))
				} else {
					row = append(row, nil, nil)
				}
				if i < len(task.Comments) {
					row = append(row, task.Comments[i].Text, task.Comments[i].CreatedAt.UTC().Format(timestampLayout))
				} else {
					row = append(row, nil, nil)
				}
				rows = append(rows, row)
			}
		}
	}
	return rows
}

func characteristicRows(sections []domain.CharacteristicSection) [][]interface{} {
	sorted := append([]domain.CharacteristicSection{}, sections...)
	sortStableBy(sorted, func(a, b domain.CharacteristicSection) bool { return a.Order < b.Order })

	var rows [][]interface{}
	for _, section := range sorted {
		fields := append([]domain.CharacteristicField{}, section.Fields...)
		sortStableBy(fields, func(a, b domain.CharacteristicField) bool { return a.Order < b.Order })
		if len(fields) == 0 {
			rows = append(rows, []interface{}{section.Title, section.Order})
			continue
		}
		for _, field := range fields {
			rows = append(rows, []interface{}{
				section.Title,
				section.Order,
				field.LabelRu,
				field.LabelEn,
				scalarCell(field.ValueRu),
				scalarCell(field.ValueEn),
				string(field.FieldType),
				field.Order,
			})
		}
	}
	return rows
}
