package domain

import (
	"time"

	"github.com/google/uuid"
)

// GroupStatus represents the lifecycle status of a product group
type GroupStatus string

const (
	GroupStatusActive   GroupStatus = "active"
	GroupStatusArchived GroupStatus = "archived"
)

// ProjectStatus represents the lifecycle status of a project
type ProjectStatus string

const (
	ProjectStatusActive   ProjectStatus = "active"
	ProjectStatusClosed   ProjectStatus = "closed"
	ProjectStatusArchived ProjectStatus = "archived"
)

// IsValid checks if the project status is a known value
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusClosed, ProjectStatusArchived:
		return true
	}
	return false
}

// StageStatus represents the status of a GTM stage
type StageStatus string

const (
	StageStatusNotStarted StageStatus = "not_started"
	StageStatusInProgress StageStatus = "in_progress"
	StageStatusDone       StageStatus = "done"
	StageStatusCancelled  StageStatus = "cancelled"
)

// IsClosed reports whether the stage no longer contributes to schedule risk
func (s StageStatus) IsClosed() bool {
	return s == StageStatusDone || s == StageStatusCancelled
}

// TaskStatus represents the status of a task
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// TaskUrgency represents how urgent a task is
type TaskUrgency string

const (
	TaskUrgencyNormal TaskUrgency = "normal"
	TaskUrgencyHigh   TaskUrgency = "high"
)

// PriorityLevel represents project priority
type PriorityLevel string

const (
	PriorityLow    PriorityLevel = "low"
	PriorityMedium PriorityLevel = "medium"
	PriorityHigh   PriorityLevel = "high"
)

// FieldType is the declared value type of a characteristic field
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeSelect   FieldType = "select"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeOther    FieldType = "other"
)

// ProductGroup groups projects of one product line
type ProductGroup struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Status      GroupStatus       `json:"status"`
	Brands      []string          `json:"brands"`
	ExtraFields map[string]Scalar `json:"extra_fields"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   *time.Time        `json:"updated_at,omitempty"`
}

// ChecklistItem is a single check inside a GTM stage
type ChecklistItem struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Done  bool      `json:"done"`
	Order int       `json:"order"`
}

// GTMStage is one phase of a project's go-to-market pipeline
type GTMStage struct {
	ID           uuid.UUID       `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	Order        int             `json:"order"`
	PlannedStart *Date           `json:"planned_start,omitempty"`
	PlannedEnd   *Date           `json:"planned_end,omitempty"`
	ActualEnd    *Date           `json:"actual_end,omitempty"`
	Status       StageStatus     `json:"status"`
	RiskFlag     bool            `json:"risk_flag"`
	Checklist    []ChecklistItem `json:"checklist"`
}

// Subtask is a checklist-like child of a task
type Subtask struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Done  bool      `json:"done"`
	Order int       `json:"order"`
}

// Comment is a free-text note attached to a project or a task
type Comment struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Task is a unit of work, usually bound to a GTM stage
type Task struct {
	ID          uuid.UUID   `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Order       int         `json:"order"`
	Status      TaskStatus  `json:"status"`
	DueDate     *Date       `json:"due_date,omitempty"`
	Important   bool        `json:"important"`
	Urgency     TaskUrgency `json:"urgency"`
	GTMStageID  *uuid.UUID  `json:"gtm_stage_id,omitempty"`
	Subtasks    []Subtask   `json:"subtasks"`
	Comments    []Comment   `json:"comments"`
}

// CharacteristicField is one bilingual label/value row of a characteristic section
type CharacteristicField struct {
	ID        uuid.UUID `json:"id"`
	LabelRu   string    `json:"label_ru"`
	LabelEn   string    `json:"label_en"`
	ValueRu   Scalar    `json:"value_ru"`
	ValueEn   Scalar    `json:"value_en"`
	FieldType FieldType `json:"field_type"`
	Order     int       `json:"order"`
}

// CharacteristicSection is a titled block of characteristic fields
type CharacteristicSection struct {
	ID     uuid.UUID             `json:"id"`
	Title  string                `json:"title"`
	Order  int                   `json:"order"`
	Fields []CharacteristicField `json:"fields"`
}

// GTMTemplate is a reusable stage list applied to projects
type GTMTemplate struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Stages      []GTMStage `json:"stages"`
}

// CharacteristicTemplate is a reusable characteristic structure
type CharacteristicTemplate struct {
	ID          uuid.UUID               `json:"id"`
	Name        string                  `json:"name"`
	Description string                  `json:"description,omitempty"`
	Sections    []CharacteristicSection `json:"sections"`
}

// FileAttachment is a document stored alongside a project
type FileAttachment struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	StoragePath string    `json:"storage_path"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// ImageAttachment is a project picture; at most one image per project is the cover
type ImageAttachment struct {
	ID          uuid.UUID `json:"id"`
	Filename    string    `json:"filename"`
	Caption     string    `json:"caption,omitempty"`
	Order       int       `json:"order"`
	IsCover     bool      `json:"is_cover"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	StoragePath string    `json:"storage_path"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// HistoryEvent is an audit entry in a project's history, newest first
type HistoryEvent struct {
	ID         uuid.UUID `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`
	Summary    string    `json:"summary"`
	Details    string    `json:"details,omitempty"`
}

// Project is the root aggregate of the tracker
type Project struct {
	ID                uuid.UUID               `json:"id"`
	ShortID           int                     `json:"short_id"`
	GroupID           uuid.UUID               `json:"group_id"`
	Name              string                  `json:"name"`
	Brand             string                  `json:"brand"`
	Market            string                  `json:"market"`
	ShortDescription  string                  `json:"short_description,omitempty"`
	FullDescription   string                  `json:"full_description,omitempty"`
	Status            ProjectStatus           `json:"status"`
	CurrentGTMStageID *uuid.UUID              `json:"current_gtm_stage_id,omitempty"`
	PlannedLaunch     *Date                   `json:"planned_launch,omitempty"`
	ActualLaunch      *Date                   `json:"actual_launch,omitempty"`
	Priority          *PriorityLevel          `json:"priority,omitempty"`
	MOQ               *int                    `json:"moq,omitempty"`
	FOBPrice          *float64                `json:"fob_price,omitempty"`
	PromoPrice        *float64                `json:"promo_price,omitempty"`
	RRPPrice          *float64                `json:"rrp_price,omitempty"`
	CustomFields      map[string]Scalar       `json:"custom_fields"`
	GTMStages         []GTMStage              `json:"gtm_stages"`
	Tasks             []Task                  `json:"tasks"`
	Characteristics   []CharacteristicSection `json:"characteristics"`
	Files             []FileAttachment        `json:"files"`
	Images            []ImageAttachment       `json:"images"`
	Comments          []Comment               `json:"comments"`
	History           []HistoryEvent          `json:"history"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         *time.Time              `json:"updated_at,omitempty"`
}

// FindStage returns the stage with the given ID
func (p *Project) FindStage(id uuid.UUID) (*GTMStage, bool) {
	for i := range p.GTMStages {
		if p.GTMStages[i].ID == id {
			return &p.GTMStages[i], true
		}
	}
	return nil, false
}

// FindTask returns the task with the given ID
func (p *Project) FindTask(id uuid.UUID) (*Task, bool) {
	for i := range p.Tasks {
		if p.Tasks[i].ID == id {
			return &p.Tasks[i], true
		}
	}
	return nil, false
}

// FindSection returns the characteristic section with the given ID
func (p *Project) FindSection(id uuid.UUID) (*CharacteristicSection, bool) {
	for i := range p.Characteristics {
		if p.Characteristics[i].ID == id {
			return &p.Characteristics[i], true
		}
	}
	return nil, false
}

// CurrentStageTitle returns the title of the current GTM stage, or "" when unset
func (p *Project) CurrentStageTitle() string {
	if p.CurrentGTMStageID == nil {
		return ""
	}
	if stage, ok := p.FindStage(*p.CurrentGTMStageID); ok {
		return stage.Title
	}
	return ""
}

// BackupInfo describes a backup file of the store
type BackupInfo struct {
	FileName  string    `json:"file_name"`
	CreatedAt time.Time `json:"created_at"`
}
