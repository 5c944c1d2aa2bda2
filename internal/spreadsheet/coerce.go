package spreadsheet

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/project-tracker/internal/domain"
	"github.com/xuri/excelize/v2"
)

// aliases maps normalized localized and English tokens to enum values
type aliases[T ~string] map[string]T

func (a aliases[T]) lookup(raw string) (T, bool) {
	v, ok := a[normalize(raw)]
	return v, ok
}

var stageStatusAliases = aliases[domain.StageStatus]{
	"not_started": domain.StageStatusNotStarted,
	"not started": domain.StageStatusNotStarted,
	"не начат":    domain.StageStatusNotStarted,
	"не начато":   domain.StageStatusNotStarted,
	"in_progress": domain.StageStatusInProgress,
	"in progress": domain.StageStatusInProgress,
	"в работе":    domain.StageStatusInProgress,
	"в процессе":  domain.StageStatusInProgress,
	"done":        domain.StageStatusDone,
	"completed":   domain.StageStatusDone,
	"завершен":    domain.StageStatusDone,
	"завершено":   domain.StageStatusDone,
	"выполнен":    domain.StageStatusDone,
	"готово":      domain.StageStatusDone,
	"cancelled":   domain.StageStatusCancelled,
	"canceled":    domain.StageStatusCancelled,
	"отменен":     domain.StageStatusCancelled,
	"отменено":    domain.StageStatusCancelled,
}

var taskStatusAliases = aliases[domain.TaskStatus]{
	"todo":         domain.TaskStatusTodo,
	"to do":        domain.TaskStatusTodo,
	"к выполнению": domain.TaskStatusTodo,
	"новая":        domain.TaskStatusTodo,
	"не начата":    domain.TaskStatusTodo,
	"in_progress":  domain.TaskStatusInProgress,
	"in progress":  domain.TaskStatusInProgress,
	"в работе":     domain.TaskStatusInProgress,
	"в процессе":   domain.TaskStatusInProgress,
	"done":         domain.TaskStatusDone,
	"completed":    domain.TaskStatusDone,
	"выполнена":    domain.TaskStatusDone,
	"выполнено":    domain.TaskStatusDone,
	"завершена":    domain.TaskStatusDone,
	"готово":       domain.TaskStatusDone,
}

var urgencyAliases = aliases[domain.TaskUrgency]{
	"normal":  domain.TaskUrgencyNormal,
	"обычная": domain.TaskUrgencyNormal,
	"обычный": domain.TaskUrgencyNormal,
	"high":    domain.TaskUrgencyHigh,
	"urgent":  domain.TaskUrgencyHigh,
	"высокая": domain.TaskUrgencyHigh,
	"срочная": domain.TaskUrgencyHigh,
	"срочно":  domain.TaskUrgencyHigh,
}

var priorityAliases = aliases[domain.PriorityLevel]{
	"low":     domain.PriorityLow,
	"низкий":  domain.PriorityLow,
	"medium":  domain.PriorityMedium,
	"средний": domain.PriorityMedium,
	"high":    domain.PriorityHigh,
	"высокий": domain.PriorityHigh,
}

var projectStatusAliases = aliases[domain.ProjectStatus]{
	"active":   domain.ProjectStatusActive,
	"активный": domain.ProjectStatusActive,
	"активен":  domain.ProjectStatusActive,
	"closed":   domain.ProjectStatusClosed,
	"закрыт":   domain.ProjectStatusClosed,
	"archived": domain.ProjectStatusArchived,
	"архив":    domain.ProjectStatusArchived,
	"в архиве": domain.ProjectStatusArchived,
}

var fieldTypeAliases = aliases[domain.FieldType]{
	"text":     domain.FieldTypeText,
	"текст":    domain.FieldTypeText,
	"number":   domain.FieldTypeNumber,
	"число":    domain.FieldTypeNumber,
	"числовой": domain.FieldTypeNumber,
	"select":   domain.FieldTypeSelect,
	"список":   domain.FieldTypeSelect,
	"выбор":    domain.FieldTypeSelect,
	"checkbox": domain.FieldTypeCheckbox,
	"флажок":   domain.FieldTypeCheckbox,
	"чекбокс":  domain.FieldTypeCheckbox,
	"да/нет":   domain.FieldTypeCheckbox,
	"other":    domain.FieldTypeOther,
	"другое":   domain.FieldTypeOther,
}

// Labels written on export; each is also accepted back through the alias tables.
var (
	stageStatusLabels = map[domain.StageStatus]string{
		domain.StageStatusNotStarted: "Не начат",
		domain.StageStatusInProgress: "В работе",
		domain.StageStatusDone:       "Завершён",
		domain.StageStatusCancelled:  "Отменён",
	}
	taskStatusLabels = map[domain.TaskStatus]string{
		domain.TaskStatusTodo:       "К выполнению",
		domain.TaskStatusInProgress: "В работе",
		domain.TaskStatusDone:       "Выполнена",
	}
	urgencyLabels = map[domain.TaskUrgency]string{
		domain.TaskUrgencyNormal: "Обычная",
		domain.TaskUrgencyHigh:   "Высокая",
	}
	priorityLabels = map[domain.PriorityLevel]string{
		domain.PriorityLow:    "Низкий",
		domain.PriorityMedium: "Средний",
		domain.PriorityHigh:   "Высокий",
	}
	projectStatusLabels = map[domain.ProjectStatus]string{
		domain.ProjectStatusActive:   "Активный",
		domain.ProjectStatusClosed:   "Закрыт",
		domain.ProjectStatusArchived: "В архиве",
	}
)

var trueTokens = map[string]bool{"1": true, "true": true, "yes": true, "on": true, "да": true}

// ParseBool accepts 1/true/yes/on/да case-insensitively; anything else is false
func ParseBool(raw string) bool {
	return trueTokens[strings.ToLower(strings.TrimSpace(raw))]
}

func formatBool(b bool) string {
	if b {
		return "да"
	}
	return "нет"
}

// ParseNumber parses a decimal that may use a comma separator and spaces as thousands separators.
// Whole values become integers. On failure the raw string is returned as text with ok=false.
func ParseNumber(raw string) (domain.Scalar, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return domain.Null(), false
	}
	f, err := parseFloat(s)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return domain.Text(s), false
	}
	return domain.Float(f), true
}

func parseFloat(s string) (float64, error) {
	cleaned := strings.NewReplacer(" ", "", "\u00a0", "", ",", ".").Replace(strings.TrimSpace(s))
	return strconv.ParseFloat(cleaned, 64)
}

// parseInt accepts whole numbers, including ones written as 3.0 by spreadsheet tools
func parseInt(s string) (int, error) {
	f, err := parseFloat(s)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return int(f), nil
}

// ParseChecklist parses "[x] A; [ ] B" into ordered checklist items. Items without a marker are not done.
func ParseChecklist(raw string) []domain.ChecklistItem {
	items := []domain.ChecklistItem{}
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		done := false
		lower := strings.ToLower(part)
		switch {
		case strings.HasPrefix(lower, "[x]"):
			done = true
			part = strings.TrimSpace(part[3:])
		case strings.HasPrefix(lower, "[ ]"):
			part = strings.TrimSpace(part[3:])
		case strings.HasPrefix(lower, "[]"):
			part = strings.TrimSpace(part[2:])
		}
		if part == "" {
			continue
		}
		items = append(items, domain.ChecklistItem{
			ID:    uuid.New(),
			Title: part,
			Done:  done,
			Order: len(items),
		})
	}
	return items
}

// FormatChecklist renders checklist items in the form ParseChecklist reads
func FormatChecklist(items []domain.ChecklistItem) string {
	sorted := append([]domain.ChecklistItem{}, items...)
	sortStableBy(sorted, func(a, b domain.ChecklistItem) bool { return a.Order < b.Order })

	parts := make([]string, 0, len(sorted))
	for _, item := range sorted {
		marker := "[ ]"
		if item.Done {
			marker = "[x]"
		}
		parts = append(parts, marker+" "+item.Title)
	}
	return strings.Join(parts, "; ")
}

// ParseDateCell reads an ISO-ish string, a dd.mm.yyyy string or an Excel serial number.
// A trailing time component is ignored. An empty cell yields nil.
func ParseDateCell(raw string) (*domain.Date, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q", s)
		}
		d := domain.DateOf(t)
		return &d, nil
	}
	if i := strings.IndexAny(s, "T "); i >= 0 {
		s = s[:i]
	}
	for _, layout := range []string{domain.DateLayout, "02.01.2006", "2006/01/02"} {
		if t, err := time.Parse(layout, s); err == nil {
			d := domain.DateOf(t)
			return &d, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q", raw)
}

const timestampLayout = "2006-01-02 15:04:05"

// parseTimestampCell keeps the time of day when the cell has one
func parseTimestampCell(raw string) (*time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q", s)
		}
		return &t, nil
	}
	for _, layout := range []string{time.RFC3339, timestampLayout, "2006-01-02 15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	d, err := ParseDateCell(s)
	if err != nil {
		return nil, err
	}
	return &d.Time, nil
}

// coerceFieldValue converts a characteristic value cell according to its declared type
func coerceFieldValue(raw string, fieldType domain.FieldType) domain.Scalar {
	s := strings.TrimSpace(raw)
	switch fieldType {
	case domain.FieldTypeCheckbox:
		return domain.Bool(ParseBool(s))
	case domain.FieldTypeNumber:
		v, _ := ParseNumber(s)
		return v
	}
	if s == "" {
		return domain.Null()
	}
	return domain.Text(s)
}

// coerceCustomField infers a scalar from a CF: cell: numbers, then true/false, then text.
// Digit strings with a leading zero ("007") are codes and stay text.
func coerceCustomField(raw string) domain.Scalar {
	s := strings.TrimSpace(raw)
	if !hasLeadingZero(s) {
		if v, ok := ParseNumber(s); ok {
			return v
		}
	}
	switch strings.ToLower(s) {
	case "true":
		return domain.Bool(true)
	case "false":
		return domain.Bool(false)
	}
	return domain.Text(s)
}

func hasLeadingZero(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) > 1 && s[0] == '0' && s[1] >= '0' && s[1] <= '9'
}

// scalarCell renders a scalar for writing; numbers stay numeric
func scalarCell(v domain.Scalar) interface{} {
	switch v.Kind {
	case domain.ScalarInt:
		return v.Int
	case domain.ScalarFloat:
		return v.Float
	case domain.ScalarNull, "":
		return nil
	}
	return v.String()
}

func dateCell(d *domain.Date) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}
