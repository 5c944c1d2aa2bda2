package spreadsheet

import "strings"

// Sheet names used on export and preferred on import
const (
	SheetProjects        = "Проекты"
	SheetProject         = "Проект"
	SheetGTM             = "GTM"
	SheetCharacteristics = "Характеристики"
	SheetTasks           = "Задачи"
	SheetSubtasks        = "Подзадачи"

	// CustomFieldPrefix marks dynamic custom field columns
	CustomFieldPrefix = "CF:"
)

// column is a header name followed by accepted aliases. Only the first entry is written on export.
type column []string

func (c column) header() string {
	return c[0]
}

var (
	colProjectID        = column{"ID", "project id", "id проекта"}
	colProjectShortID   = column{"Короткий ID", "short id", "short_id"}
	colProjectName      = column{"Название проекта", "project name", "проект", "name"}
	colProjectGroup     = column{"Продуктовая группа", "product group", "group", "группа"}
	colProjectBrand     = column{"Бренд", "brand"}
	colProjectMarket    = column{"Рынок/регион", "market", "рынок", "регион"}
	colProjectStatus    = column{"Статус", "status", "статус проекта"}
	colPlannedLaunch    = column{"Плановая дата запуска", "planned launch", "planned_launch"}
	colActualLaunch     = column{"Фактическая дата запуска", "actual launch", "actual_launch"}
	colCurrentStage     = column{"Текущий GTM-этап", "current gtm stage", "текущий этап"}
	colPriority         = column{"Приоритет", "priority"}
	colMOQ              = column{"MOQ", "moq"}
	colFOBPrice         = column{"FOB цена", "fob price", "fob"}
	colPromoPrice       = column{"Промо цена", "promo price"}
	colRRPPrice         = column{"РРЦ", "rrp", "rrp price"}
	colShortDescription = column{"Краткое описание", "short description"}
	colFullDescription  = column{"Полное описание", "full description"}

	colStageOrder        = column{"Порядок этапа", "stage order"}
	colStageTitle        = column{"Название этапа", "stage title", "stage", "этап"}
	colStageDescription  = column{"Описание этапа", "stage description"}
	colStageStatus       = column{"Статус этапа", "stage status"}
	colStagePlannedStart = column{"Плановое начало", "planned start"}
	colStagePlannedEnd   = column{"Плановое окончание", "planned end"}
	colStageActualEnd    = column{"Фактическое окончание", "actual end"}
	colStageRisk         = column{"Риск", "risk", "risk flag"}
	colStageChecklist    = column{"Чек-лист", "checklist", "чеклист"}

	colTaskTitle       = column{"Задача", "task", "task title", "название задачи"}
	colTaskOrder       = column{"Порядок задачи", "task order"}
	colTaskStatus      = column{"Статус задачи", "task status"}
	colTaskDueDate     = column{"Срок задачи", "due date", "task due date", "срок"}
	colTaskImportant   = column{"Важная", "important"}
	colTaskUrgency     = column{"Срочность", "urgency"}
	colTaskDescription = column{"Описание задачи", "task description"}
	colSubtaskTitle    = column{"Подзадача", "subtask", "subtask title"}
	colSubtaskDone     = column{"Подзадача выполнена", "subtask done"}
	colTaskComment     = column{"Комментарий к задаче", "task comment", "comment"}
	colTaskCommentDate = column{"Дата комментария", "comment date"}

	colSectionTitle = column{"Раздел", "section", "section title"}
	colSectionOrder = column{"Порядок раздела", "section order"}
	colLabelRu      = column{"Характеристика (RU)", "label ru", "label_ru"}
	colLabelEn      = column{"Характеристика (EN)", "label en", "label_en"}
	colValueRu      = column{"Значение (RU)", "value ru", "value_ru"}
	colValueEn      = column{"Значение (EN)", "value en", "value_en"}
	colFieldType    = column{"Тип поля", "field type", "field_type", "тип"}
	colFieldOrder   = column{"Порядок поля", "field order"}
)

var projectColumns = []column{
	colProjectID, colProjectShortID, colProjectName, colProjectGroup, colProjectBrand,
	colProjectMarket, colProjectStatus, colPlannedLaunch, colActualLaunch, colCurrentStage,
	colPriority, colMOQ, colFOBPrice, colPromoPrice, colRRPPrice, colShortDescription,
	colFullDescription,
}

var gtmColumns = []column{
	colStageOrder, colStageTitle, colStageDescription, colStageStatus, colStagePlannedStart,
	colStagePlannedEnd, colStageActualEnd, colStageRisk, colStageChecklist,
	colTaskTitle, colTaskOrder, colTaskStatus, colTaskDueDate, colTaskImportant, colTaskUrgency,
	colTaskDescription, colSubtaskTitle, colSubtaskDone, colTaskComment, colTaskCommentDate,
}

var characteristicColumns = []column{
	colSectionTitle, colSectionOrder, colLabelRu, colLabelEn, colValueRu, colValueEn,
	colFieldType, colFieldOrder,
}

func headers(cols []column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.header()
	}
	return out
}

// normalize folds a header or token for case-insensitive comparison
func normalize(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	return strings.ReplaceAll(s, "ё", "е")
}
