package spreadsheet

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/straye-as/project-tracker/internal/domain"
	"go.uber.org/zap"
)

// ProjectImportResult holds the projects parsed from a workbook, merged with existing ones where matched
type ProjectImportResult struct {
	Projects []domain.Project `json:"projects"`
	Errors   []ImportError    `json:"errors"`
	Created  int              `json:"created"`
	Updated  int              `json:"updated"`
}

// HasErrors reports whether the result must not be committed
func (r *ProjectImportResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// ImportProjects parses project rows. A row whose ID column holds the id of an existing project
// is merged into it column by column; any other row becomes a new project. Short ids are left
// to the store.
func (c *Codec) ImportProjects(data []byte, groups []domain.ProductGroup, existing []domain.Project) *ProjectImportResult {
	res := &ProjectImportResult{Projects: []domain.Project{}, Errors: []ImportError{}}
	abort := func(errs []ImportError) *ProjectImportResult {
		return &ProjectImportResult{Projects: []domain.Project{}, Errors: errs}
	}

	f, errs := openWorkbook(data)
	if errs != nil {
		return abort(errs)
	}
	defer f.Close()

	t, errs := readTable(f, findSheet(f, SheetProjects, SheetProject, "Projects"))
	if errs != nil {
		return abort(errs)
	}
	if missing := t.missing(colProjectName, colProjectGroup, colProjectBrand, colProjectStatus); len(missing) > 0 {
		return abort(structuralError(t.sheet, "missing required column %q", missing[0]))
	}

	groupByName := make(map[string]uuid.UUID, len(groups))
	for _, g := range groups {
		key := normalize(g.Name)
		if _, dup := groupByName[key]; !dup {
			groupByName[key] = g.ID
		}
	}
	existingByID := make(map[uuid.UUID]*domain.Project, len(existing))
	for i := range existing {
		existingByID[existing[i].ID] = &existing[i]
	}

	customColumns := make(map[int]string)
	for i, name := range t.names {
		trimmed := strings.TrimSpace(name)
		if len(trimmed) > len(CustomFieldPrefix) && strings.EqualFold(trimmed[:len(CustomFieldPrefix)], CustomFieldPrefix) {
			if key := strings.TrimSpace(trimmed[len(CustomFieldPrefix):]); key != "" {
				customColumns[i] = key
			}
		}
	}

	seen := make(map[uuid.UUID]int)
	for i, row := range t.rows {
		if isBlankRow(row) {
			continue
		}

		var base *domain.Project
		if raw := t.get(row, colProjectID); raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				base = existingByID[id]
			}
		}
		if base != nil {
			if first, dup := seen[base.ID]; dup {
				res.Errors = append(res.Errors, ImportError{Sheet: t.sheet, Row: t.rowNumber(i),
					Message: fmt.Sprintf("project %s already imported from row %d", base.ID, first)})
				continue
			}
		}

		project, err := c.projectFromRow(t, row, base, groupByName, customColumns)
		if err != nil {
			res.Errors = append(res.Errors, ImportError{Sheet: t.sheet, Row: t.rowNumber(i), Message: err.Error()})
			continue
		}

		if base != nil {
			seen[base.ID] = t.rowNumber(i)
			res.Updated++
		} else {
			res.Created++
		}
		res.Projects = append(res.Projects, *project)
	}

	c.logger.Info("Projects workbook parsed",
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Int("error_count", len(res.Errors)),
	)
	return res
}

func (c *Codec) projectFromRow(t *table, row []string, base *domain.Project, groupByName map[string]uuid.UUID, customColumns map[int]string) (*domain.Project, error) {
	var p domain.Project
	if base != nil {
		p = base.Clone()
	} else {
		p = domain.Project{
			ID:              uuid.New(),
			Status:          domain.ProjectStatusActive,
			CustomFields:    map[string]domain.Scalar{},
			GTMStages:       []domain.GTMStage{},
			Tasks:           []domain.Task{},
			Characteristics: []domain.CharacteristicSection{},
			Files:           []domain.FileAttachment{},
			Images:          []domain.ImageAttachment{},
			Comments:        []domain.Comment{},
			History:         []domain.HistoryEvent{},
			CreatedAt:       c.now(),
		}
	}
	if p.CustomFields == nil {
		p.CustomFields = map[string]domain.Scalar{}
	}

	if p.Name = t.get(row, colProjectName); p.Name == "" {
		return nil, fmt.Errorf("project name is required")
	}

	groupName := t.get(row, colProjectGroup)
	groupID, ok := groupByName[normalize(groupName)]
	if groupName == "" || !ok {
		return nil, fmt.Errorf("unknown product group %q", groupName)
	}
	p.GroupID = groupID

	if p.Brand = t.get(row, colProjectBrand); p.Brand == "" {
		return nil, fmt.Errorf("brand is required")
	}

	if raw := t.get(row, colProjectStatus); raw != "" {
		status, ok := projectStatusAliases.lookup(raw)
		if !ok {
			return nil, fmt.Errorf("unknown project status %q", raw)
		}
		p.Status = status
	} else if base == nil {
		p.Status = domain.ProjectStatusActive
	}

	if raw, ok := t.lookup(row, colProjectMarket); ok {
		p.Market = raw
	}
	if raw, ok := t.lookup(row, colShortDescription); ok {
		p.ShortDescription = raw
	}
	if raw, ok := t.lookup(row, colFullDescription); ok {
		p.FullDescription = raw
	}

	var err error
	if raw, ok := t.lookup(row, colPlannedLaunch); ok {
		if p.PlannedLaunch, err = ParseDateCell(raw); err != nil {
			return nil, fmt.Errorf("planned launch: %w", err)
		}
	}
	if raw, ok := t.lookup(row, colActualLaunch); ok {
		if p.ActualLaunch, err = ParseDateCell(raw); err != nil {
			return nil, fmt.Errorf("actual launch: %w", err)
		}
	}

	if raw, ok := t.lookup(row, colCurrentStage); ok {
		if raw == "" {
			p.CurrentGTMStageID = nil
		} else {
			stageID, found := stageIDByTitle(p.GTMStages, raw)
			if !found {
				return nil, fmt.Errorf("unknown GTM stage %q", raw)
			}
			p.CurrentGTMStageID = &stageID
		}
	}

	if raw, ok := t.lookup(row, colPriority); ok {
		if raw == "" {
			p.Priority = nil
		} else {
			priority, found := priorityAliases.lookup(raw)
			if !found {
				return nil, fmt.Errorf("unknown priority %q", raw)
			}
			p.Priority = &priority
		}
	}

	if raw, ok := t.lookup(row, colMOQ); ok {
		if raw == "" {
			p.MOQ = nil
		} else {
			n, err := parseInt(raw)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid MOQ %q", raw)
			}
			p.MOQ = &n
		}
	}

	prices := []struct {
		col   column
		label string
		dst   **float64
	}{
		{colFOBPrice, "FOB price", &p.FOBPrice},
		{colPromoPrice, "promo price", &p.PromoPrice},
		{colRRPPrice, "RRP", &p.RRPPrice},
	}
	for _, price := range prices {
		raw, ok := t.lookup(row, price.col)
		if !ok {
			continue
		}
		if raw == "" {
			*price.dst = nil
			continue
		}
		v, err := parseFloat(raw)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid %s %q", price.label, raw)
		}
		*price.dst = &v
	}

	for idx, key := range customColumns {
		raw := ""
		if idx < len(row) {
			raw = strings.TrimSpace(row[idx])
		}
		if raw == "" {
			delete(p.CustomFields, key)
			continue
		}
		p.CustomFields[key] = coerceCustomField(raw)
	}

	return &p, nil
}

func stageIDByTitle(stages []domain.GTMStage, title string) (uuid.UUID, bool) {
	key := normalize(title)
	for _, s := range stages {
		if normalize(s.Title) == key {
			return s.ID, true
		}
	}
	return uuid.Nil, false
}
