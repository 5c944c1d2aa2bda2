package domain

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// Product groups
// ============================================================================

type CreateGroupRequest struct {
	Name        string            `json:"name" validate:"required,max=200"`
	Description string            `json:"description,omitempty" validate:"max=2000"`
	Status      GroupStatus       `json:"status,omitempty" validate:"omitempty,oneof=active archived"`
	Brands      []string          `json:"brands,omitempty"`
	ExtraFields map[string]Scalar `json:"extra_fields,omitempty"`
}

type UpdateGroupRequest struct {
	Name        string            `json:"name" validate:"required,max=200"`
	Description string            `json:"description,omitempty" validate:"max=2000"`
	Status      GroupStatus       `json:"status" validate:"required,oneof=active archived"`
	Brands      []string          `json:"brands,omitempty"`
	ExtraFields map[string]Scalar `json:"extra_fields,omitempty"`
}

// ============================================================================
// Projects
// ============================================================================

type CreateProjectRequest struct {
	GroupID           uuid.UUID         `json:"group_id" validate:"required"`
	Name              string            `json:"name" validate:"required,max=200"`
	Brand             string            `json:"brand" validate:"required,max=100"`
	Market            string            `json:"market" validate:"required,max=100"`
	ShortDescription  string            `json:"short_description,omitempty"`
	FullDescription   string            `json:"full_description,omitempty"`
	Status            ProjectStatus     `json:"status,omitempty" validate:"omitempty,oneof=active closed archived"`
	CurrentGTMStageID *uuid.UUID        `json:"current_gtm_stage_id,omitempty"`
	PlannedLaunch     *Date             `json:"planned_launch,omitempty"`
	ActualLaunch      *Date             `json:"actual_launch,omitempty"`
	Priority          *PriorityLevel    `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	MOQ               *int              `json:"moq,omitempty" validate:"omitempty,gte=0"`
	FOBPrice          *float64          `json:"fob_price,omitempty" validate:"omitempty,gte=0"`
	PromoPrice        *float64          `json:"promo_price,omitempty" validate:"omitempty,gte=0"`
	RRPPrice          *float64          `json:"rrp_price,omitempty" validate:"omitempty,gte=0"`
	CustomFields      map[string]Scalar `json:"custom_fields,omitempty"`
}

type UpdateProjectRequest struct {
	GroupID           uuid.UUID         `json:"group_id" validate:"required"`
	Name              string            `json:"name" validate:"required,max=200"`
	Brand             string            `json:"brand" validate:"required,max=100"`
	Market            string            `json:"market" validate:"required,max=100"`
	ShortDescription  string            `json:"short_description,omitempty"`
	FullDescription   string            `json:"full_description,omitempty"`
	Status            ProjectStatus     `json:"status" validate:"required,oneof=active closed archived"`
	CurrentGTMStageID *uuid.UUID        `json:"current_gtm_stage_id,omitempty"`
	PlannedLaunch     *Date             `json:"planned_launch,omitempty"`
	ActualLaunch      *Date             `json:"actual_launch,omitempty"`
	Priority          *PriorityLevel    `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	MOQ               *int              `json:"moq,omitempty" validate:"omitempty,gte=0"`
	FOBPrice          *float64          `json:"fob_price,omitempty" validate:"omitempty,gte=0"`
	PromoPrice        *float64          `json:"promo_price,omitempty" validate:"omitempty,gte=0"`
	RRPPrice          *float64          `json:"rrp_price,omitempty" validate:"omitempty,gte=0"`
	CustomFields      map[string]Scalar `json:"custom_fields,omitempty"`
}

// CustomFieldFilter narrows project or group lists by a custom/extra field value.
// Type "select" matches any of Values, "number" an inclusive range, "checkbox" an exact boolean.
type CustomFieldFilter struct {
	FieldID   string   `json:"field_id" validate:"required"`
	Type      string   `json:"type" validate:"required,oneof=select number checkbox text"`
	Values    []string `json:"values,omitempty"`
	ValueFrom *float64 `json:"value_from,omitempty"`
	ValueTo   *float64 `json:"value_to,omitempty"`
	Bool      *bool    `json:"bool,omitempty"`
}

// CustomFieldMeta describes a custom field reused across entities, for building filter UIs
type CustomFieldMeta struct {
	FieldID string   `json:"field_id"`
	Type    string   `json:"type"`
	Count   int      `json:"count"`
	Values  []string `json:"values,omitempty"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
}

type CommentRequest struct {
	Text string `json:"text" validate:"required,max=5000"`
}

type HistoryEventRequest struct {
	Summary string `json:"summary" validate:"required,max=500"`
	Details string `json:"details,omitempty"`
}

// ============================================================================
// GTM stages and tasks
// ============================================================================

type ChecklistItemRequest struct {
	Title string `json:"title" validate:"required,max=500"`
	Done  bool   `json:"done"`
	Order int    `json:"order" validate:"gte=0"`
}

type StageRequest struct {
	Title        string                 `json:"title" validate:"required,max=200"`
	Description  string                 `json:"description,omitempty"`
	Order        int                    `json:"order" validate:"gte=0"`
	PlannedStart *Date                  `json:"planned_start,omitempty"`
	PlannedEnd   *Date                  `json:"planned_end,omitempty"`
	ActualEnd    *Date                  `json:"actual_end,omitempty"`
	Status       StageStatus            `json:"status,omitempty" validate:"omitempty,oneof=not_started in_progress done cancelled"`
	RiskFlag     bool                   `json:"risk_flag"`
	Checklist    []ChecklistItemRequest `json:"checklist,omitempty" validate:"dive"`
}

type SetCurrentStageRequest struct {
	StageID *uuid.UUID `json:"stage_id"`
}

type TaskRequest struct {
	Title       string      `json:"title" validate:"required,max=300"`
	Description string      `json:"description,omitempty"`
	Order       int         `json:"order" validate:"gte=0"`
	Status      TaskStatus  `json:"status,omitempty" validate:"omitempty,oneof=todo in_progress done"`
	DueDate     *Date       `json:"due_date,omitempty"`
	Important   bool        `json:"important"`
	Urgency     TaskUrgency `json:"urgency,omitempty" validate:"omitempty,oneof=normal high"`
	GTMStageID  *uuid.UUID  `json:"gtm_stage_id,omitempty"`
}

type SubtaskRequest struct {
	Title string `json:"title" validate:"required,max=300"`
	Done  bool   `json:"done"`
	Order int    `json:"order" validate:"gte=0"`
}

// ============================================================================
// Characteristics and templates
// ============================================================================

type SectionRequest struct {
	Title string `json:"title" validate:"required,max=200"`
	Order int    `json:"order" validate:"gte=0"`
}

type FieldRequest struct {
	LabelRu   string    `json:"label_ru" validate:"required,max=300"`
	LabelEn   string    `json:"label_en" validate:"required,max=300"`
	ValueRu   Scalar    `json:"value_ru"`
	ValueEn   Scalar    `json:"value_en"`
	FieldType FieldType `json:"field_type,omitempty" validate:"omitempty,oneof=text number select checkbox other"`
	Order     int       `json:"order" validate:"gte=0"`
}

type TemplateSectionRequest struct {
	Title  string         `json:"title" validate:"required,max=200"`
	Order  int            `json:"order" validate:"gte=0"`
	Fields []FieldRequest `json:"fields,omitempty" validate:"dive"`
}

type GTMTemplateRequest struct {
	Name        string         `json:"name" validate:"required,max=200"`
	Description string         `json:"description,omitempty"`
	Stages      []StageRequest `json:"stages,omitempty" validate:"dive"`
}

type CharacteristicTemplateRequest struct {
	Name        string                   `json:"name" validate:"required,max=200"`
	Description string                   `json:"description,omitempty"`
	Sections    []TemplateSectionRequest `json:"sections,omitempty" validate:"dive"`
}

type ApplyTemplateRequest struct {
	TemplateID uuid.UUID `json:"template_id" validate:"required"`
}

type CopyCharacteristicsRequest struct {
	SourceProjectID uuid.UUID `json:"source_project_id" validate:"required"`
}

// ============================================================================
// Attachments
// ============================================================================

type UpdateFileRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty" validate:"max=100"`
}

type UpdateImageRequest struct {
	Caption string `json:"caption,omitempty" validate:"max=500"`
	Order   int    `json:"order" validate:"gte=0"`
	IsCover bool   `json:"is_cover"`
}

// ============================================================================
// Backups
// ============================================================================

type RestoreBackupRequest struct {
	FileName string `json:"file_name" validate:"required,max=255"`
}

// ============================================================================
// Dashboard
// ============================================================================

type StatusSummary struct {
	Active   int `json:"active"`
	Closed   int `json:"closed"`
	Archived int `json:"archived"`
}

type GroupDashboardCard struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	ActiveProjects int       `json:"active_projects"`
	Risk           bool      `json:"risk"`
}

type UpcomingItem struct {
	ProjectID   uuid.UUID `json:"project_id"`
	ProjectName string    `json:"project_name"`
	GroupName   string    `json:"group_name"`
	Kind        string    `json:"kind"`
	Title       string    `json:"title"`
	PlannedDate Date      `json:"planned_date"`
	DaysDelta   int       `json:"days_delta"`
	Risk        bool      `json:"risk"`
}

type RecentChange struct {
	ProjectID   uuid.UUID `json:"project_id"`
	ProjectName string    `json:"project_name"`
	GroupName   string    `json:"group_name"`
	OccurredAt  time.Time `json:"occurred_at"`
	Summary     string    `json:"summary"`
	Details     string    `json:"details,omitempty"`
}

type DashboardPayload struct {
	Statuses      StatusSummary        `json:"statuses"`
	Groups        []GroupDashboardCard `json:"groups"`
	Upcoming      []UpcomingItem       `json:"upcoming"`
	RecentChanges []RecentChange       `json:"recent_changes"`
}
