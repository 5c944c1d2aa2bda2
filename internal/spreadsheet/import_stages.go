package spreadsheet

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/straye-as/project-tracker/internal/domain"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// StageImportResult is the candidate GTM plan parsed from a workbook
type StageImportResult struct {
	Stages []domain.GTMStage `json:"stages"`
	Tasks  []domain.Task     `json:"tasks"`
	Errors []ImportError     `json:"errors"`
}

// HasErrors reports whether the result must not be committed
func (r *StageImportResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// stageBuilder accumulates stages and tasks, reusing the first entity seen for a natural key
type stageBuilder struct {
	codec *Codec

	stages     []*domain.GTMStage
	stageByKey map[string]*domain.GTMStage
	tasks      []*domain.Task
	taskByKey  map[string]*domain.Task
	taskCount  map[uuid.UUID]int

	existingStages map[string]uuid.UUID
	existingTasks  map[string]uuid.UUID

	errors []ImportError
}

func newStageBuilder(c *Codec, existingStages []domain.GTMStage, existingTasks []domain.Task) *stageBuilder {
	b := &stageBuilder{
		codec:          c,
		stageByKey:     make(map[string]*domain.GTMStage),
		taskByKey:      make(map[string]*domain.Task),
		taskCount:      make(map[uuid.UUID]int),
		existingStages: make(map[string]uuid.UUID),
		existingTasks:  make(map[string]uuid.UUID),
		errors:         []ImportError{},
	}

	stageTitles := make(map[uuid.UUID]string)
	for _, s := range existingStages {
		key := normalize(s.Title)
		if _, dup := b.existingStages[key]; !dup {
			b.existingStages[key] = s.ID
		}
		stageTitles[s.ID] = key
	}
	for _, t := range existingTasks {
		if t.GTMStageID == nil {
			continue
		}
		key := stageTitles[*t.GTMStageID] + "\x00" + normalize(t.Title)
		if _, dup := b.existingTasks[key]; !dup {
			b.existingTasks[key] = t.ID
		}
	}
	return b
}

func (b *stageBuilder) fail(t *table, i int, format string, args ...interface{}) {
	b.errors = append(b.errors, ImportError{Sheet: t.sheet, Row: t.rowNumber(i), Message: fmt.Sprintf(format, args...)})
}

// parseStage reads stage columns from a row without registering anything
func (b *stageBuilder) parseStage(t *table, row []string) (*domain.GTMStage, error) {
	title := t.get(row, colStageTitle)
	if title == "" {
		return nil, fmt.Errorf("stage title is required")
	}

	stage := &domain.GTMStage{
		Title:       title,
		Description: t.get(row, colStageDescription),
		Order:       len(b.stages),
		Status:      domain.StageStatusNotStarted,
		RiskFlag:    ParseBool(t.get(row, colStageRisk)),
		Checklist:   ParseChecklist(t.get(row, colStageChecklist)),
	}

	if raw := t.get(row, colStageOrder); raw != "" {
		if n, err := parseInt(raw); err == nil {
			stage.Order = n
		}
	}

	if raw := t.get(row, colStageStatus); raw != "" {
		status, ok := stageStatusAliases.lookup(raw)
		if !ok {
			return nil, fmt.Errorf("unknown stage status %q", raw)
		}
		stage.Status = status
	}

	var err error
	if stage.PlannedStart, err = ParseDateCell(t.get(row, colStagePlannedStart)); err != nil {
		return nil, fmt.Errorf("planned start: %w", err)
	}
	if stage.PlannedEnd, err = ParseDateCell(t.get(row, colStagePlannedEnd)); err != nil {
		return nil, fmt.Errorf("planned end: %w", err)
	}
	if stage.ActualEnd, err = ParseDateCell(t.get(row, colStageActualEnd)); err != nil {
		return nil, fmt.Errorf("actual end: %w", err)
	}
	return stage, nil
}

// resolveStage returns the stage already registered under the row's title, or parses and registers it
func (b *stageBuilder) resolveStage(t *table, row []string) (*domain.GTMStage, error) {
	key := normalize(t.get(row, colStageTitle))
	if key != "" {
		if existing, ok := b.stageByKey[key]; ok {
			return existing, nil
		}
	}

	stage, err := b.parseStage(t, row)
	if err != nil {
		return nil, err
	}
	b.register(stage)
	return stage, nil
}

func (b *stageBuilder) register(stage *domain.GTMStage) {
	key := normalize(stage.Title)
	if id, ok := b.existingStages[key]; ok {
		stage.ID = id
	} else {
		stage.ID = uuid.New()
	}
	b.stages = append(b.stages, stage)
	b.stageByKey[key] = stage
}

// parseTask reads task columns from a row without registering anything
func (b *stageBuilder) parseTask(t *table, row []string, stage *domain.GTMStage) (*domain.Task, error) {
	title := t.get(row, colTaskTitle)
	if title == "" {
		return nil, fmt.Errorf("task title is required")
	}

	stageID := stage.ID
	task := &domain.Task{
		Title:       title,
		Description: t.get(row, colTaskDescription),
		Order:       b.taskCount[stage.ID],
		Status:      domain.TaskStatusTodo,
		Important:   ParseBool(t.get(row, colTaskImportant)),
		Urgency:     domain.TaskUrgencyNormal,
		GTMStageID:  &stageID,
		Subtasks:    []domain.Subtask{},
		Comments:    []domain.Comment{},
	}

	if raw := t.get(row, colTaskOrder); raw != "" {
		n, err := parseInt(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid task order %q", raw)
		}
		task.Order = n
	}
	if raw := t.get(row, colTaskStatus); raw != "" {
		status, ok := taskStatusAliases.lookup(raw)
		if !ok {
			return nil, fmt.Errorf("unknown task status %q", raw)
		}
		task.Status = status
	}
	if raw := t.get(row, colTaskUrgency); raw != "" {
		urgency, ok := urgencyAliases.lookup(raw)
		if !ok {
			return nil, fmt.Errorf("unknown urgency %q", raw)
		}
		task.Urgency = urgency
	}

	var err error
	if task.DueDate, err = ParseDateCell(t.get(row, colTaskDueDate)); err != nil {
		return nil, fmt.Errorf("due date: %w", err)
	}
	return task, nil
}

func taskKey(stage *domain.GTMStage, title string, order int) string {
	return normalize(stage.Title) + "\x00" + normalize(title) + "\x00" + strconv.Itoa(order)
}

func (b *stageBuilder) registerTask(stage *domain.GTMStage, task *domain.Task) {
	if id, ok := b.existingTasks[normalize(stage.Title)+"\x00"+normalize(task.Title)]; ok {
		task.ID = id
		delete(b.existingTasks, normalize(stage.Title)+"\x00"+normalize(task.Title))
	} else {
		task.ID = uuid.New()
	}
	b.tasks = append(b.tasks, task)
	b.taskByKey[taskKey(stage, task.Title, task.Order)] = task
	b.taskCount[stage.ID]++
}

func (b *stageBuilder) result() *StageImportResult {
	stages := make([]domain.GTMStage, 0, len(b.stages))
	for _, s := range b.stages {
		stages = append(stages, *s)
	}
	tasks := make([]domain.Task, 0, len(b.tasks))
	for _, t := range b.tasks {
		tasks = append(tasks, *t)
	}
	return &StageImportResult{Stages: SortStages(stages), Tasks: tasks, Errors: b.errors}
}

// ImportStagesAndTasks parses a GTM workbook in either the combined single-sheet layout or the
// legacy stages/tasks/subtasks layout. Existing stages and tasks matched by title keep their ids.
func (c *Codec) ImportStagesAndTasks(data []byte, existingStages []domain.GTMStage, existingTasks []domain.Task) *StageImportResult {
	empty := func(errs []ImportError) *StageImportResult {
		return &StageImportResult{Stages: []domain.GTMStage{}, Tasks: []domain.Task{}, Errors: errs}
	}

	f, errs := openWorkbook(data)
	if errs != nil {
		return empty(errs)
	}
	defer f.Close()

	sheet := findSheet(f, SheetGTM, "Этапы", "Stages", "GTM-этапы")
	t, errs := readTable(f, sheet)
	if errs != nil {
		return empty(errs)
	}
	if missing := t.missing(colStageTitle); len(missing) > 0 {
		return empty(structuralError(t.sheet, "missing required column %q", missing[0]))
	}

	b := newStageBuilder(c, existingStages, existingTasks)
	if t.has(colTaskTitle) || t.has(colSubtaskTitle) || t.has(colTaskComment) {
		b.importCombined(t)
	} else {
		b.importStageRows(t)
		if structural := b.importLegacyTasks(f); structural != nil {
			return empty(structural)
		}
	}

	res := b.result()
	c.logger.Info("GTM workbook parsed",
		zap.Int("stage_count", len(res.Stages)),
		zap.Int("task_count", len(res.Tasks)),
		zap.Int("error_count", len(res.Errors)),
	)
	return res
}

// importCombined handles one row per stage/task/subtask/comment combination
func (b *stageBuilder) importCombined(t *table) {
	for i, row := range t.rows {
		if isBlankRow(row) {
			continue
		}

		taskTitle := t.get(row, colTaskTitle)
		subtaskTitle := t.get(row, colSubtaskTitle)
		commentText := t.get(row, colTaskComment)

		if t.get(row, colStageTitle) == "" {
			if taskTitle != "" {
				b.fail(t, i, "task %q has no stage", taskTitle)
			} else {
				b.fail(t, i, "stage title is required")
			}
			continue
		}

		// Validate everything in the row before registering any entity from it
		var candidate *domain.GTMStage
		stage, known := b.stageByKey[normalize(t.get(row, colStageTitle))]
		if !known {
			var err error
			if candidate, err = b.parseStage(t, row); err != nil {
				b.fail(t, i, "%v", err)
				continue
			}
			stage = candidate
		}

		if taskTitle == "" {
			if subtaskTitle != "" || commentText != "" {
				b.fail(t, i, "subtask or comment without a task")
				continue
			}
			if candidate != nil {
				b.register(candidate)
			}
			continue
		}

		var commentAt *domain.Comment
		if commentText != "" {
			createdAt, err := parseTimestampCell(t.get(row, colTaskCommentDate))
			if err != nil {
				b.fail(t, i, "comment date: %v", err)
				continue
			}
			comment := domain.Comment{ID: uuid.New(), Text: commentText, CreatedAt: b.codec.now()}
			if createdAt != nil {
				comment.CreatedAt = createdAt.UTC()
			}
			commentAt = &comment
		}

		orderRaw := t.get(row, colTaskOrder)
		var task *domain.Task
		seen := false
		if orderRaw != "" {
			if n, err := parseInt(orderRaw); err == nil {
				task, seen = b.taskByKey[taskKey(stage, taskTitle, n)]
			}
		} else {
			task, seen = b.findTaskByTitle(stage, taskTitle)
		}

		if !seen {
			parsed, err := b.parseTask(t, row, stage)
			if err != nil {
				b.fail(t, i, "%v", err)
				continue
			}
			if candidate != nil {
				b.register(candidate)
				stageID := candidate.ID
				parsed.GTMStageID = &stageID
			}
			b.registerTask(stage, parsed)
			task = parsed
		}

		if subtaskTitle != "" {
			task.Subtasks = append(task.Subtasks, domain.Subtask{
				ID:    uuid.New(),
				Title: subtaskTitle,
				Done:  ParseBool(t.get(row, colSubtaskDone)),
				Order: len(task.Subtasks),
			})
		}
		if commentAt != nil {
			task.Comments = append(task.Comments, *commentAt)
		}
	}
}

func (b *stageBuilder) findTaskByTitle(stage *domain.GTMStage, title string) (*domain.Task, bool) {
	key := normalize(title)
	for _, task := range b.tasks {
		if task.GTMStageID != nil && *task.GTMStageID == stage.ID && normalize(task.Title) == key {
			return task, true
		}
	}
	return nil, false
}

// importStageRows registers one stage per row; repeated titles keep the first row
func (b *stageBuilder) importStageRows(t *table) {
	for i, row := range t.rows {
		if isBlankRow(row) {
			continue
		}
		if _, err := b.resolveStage(t, row); err != nil {
			b.fail(t, i, "%v", err)
		}
	}
}

// importLegacyTasks reads the optional tasks and subtasks sheets, joined to stages by title
// and to tasks by (stage title, task order)
func (b *stageBuilder) importLegacyTasks(f *excelize.File) []ImportError {
	tasksSheet, found := sheetByName(f, SheetTasks, "Tasks")
	if !found {
		return nil
	}
	tt, errs := readTable(f, tasksSheet)
	if errs != nil {
		return errs
	}
	if missing := tt.missing(colStageTitle, colTaskTitle); len(missing) > 0 {
		return structuralError(tt.sheet, "missing required column %q", missing[0])
	}

	for i, row := range tt.rows {
		if isBlankRow(row) {
			continue
		}
		stageTitle := tt.get(row, colStageTitle)
		stage, ok := b.stageByKey[normalize(stageTitle)]
		if !ok {
			b.fail(tt, i, "task %q references unknown stage %q", tt.get(row, colTaskTitle), stageTitle)
			continue
		}
		task, err := b.parseTask(tt, row, stage)
		if err != nil {
			b.fail(tt, i, "%v", err)
			continue
		}
		if _, dup := b.taskByKey[taskKey(stage, task.Title, task.Order)]; dup {
			continue
		}
		b.registerTask(stage, task)
	}

	subtasksSheet, found := sheetByName(f, SheetSubtasks, "Subtasks")
	if !found {
		return nil
	}
	st, errs := readTable(f, subtasksSheet)
	if errs != nil {
		return errs
	}
	if missing := st.missing(colStageTitle, colTaskOrder, colSubtaskTitle); len(missing) > 0 {
		return structuralError(st.sheet, "missing required column %q", missing[0])
	}

	for i, row := range st.rows {
		if isBlankRow(row) {
			continue
		}
		stageKey := normalize(st.get(row, colStageTitle))
		orderRaw := st.get(row, colTaskOrder)
		order, err := parseInt(orderRaw)
		if err != nil {
			b.fail(st, i, "invalid task order %q", orderRaw)
			continue
		}
		task := b.taskByStageOrder(stageKey, order)
		if task == nil {
			b.fail(st, i, "no task with order %d in stage %q", order, st.get(row, colStageTitle))
			continue
		}
		title := st.get(row, colSubtaskTitle)
		if title == "" {
			b.fail(st, i, "subtask title is required")
			continue
		}
		task.Subtasks = append(task.Subtasks, domain.Subtask{
			ID:    uuid.New(),
			Title: title,
			Done:  ParseBool(st.get(row, colSubtaskDone)),
			Order: len(task.Subtasks),
		})
	}
	return nil
}

func (b *stageBuilder) taskByStageOrder(stageKey string, order int) *domain.Task {
	stage, ok := b.stageByKey[stageKey]
	if !ok {
		return nil
	}
	for _, task := range b.tasks {
		if task.GTMStageID != nil && *task.GTMStageID == stage.ID && task.Order == order {
			return task
		}
	}
	return nil
}
