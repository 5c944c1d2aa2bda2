package repository

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/straye-as/project-tracker/internal/domain"
)

// ProjectFilters narrows project listings. All set criteria are AND-combined.
type ProjectFilters struct {
	IncludeArchived bool
	GroupID         *uuid.UUID
	Brand           string
	Statuses        []domain.ProjectStatus
	CurrentStageID  *uuid.UUID
	PlannedFrom     *domain.Date
	PlannedTo       *domain.Date
	CustomFields    []domain.CustomFieldFilter
}

// GroupFilters narrows group listings
type GroupFilters struct {
	IncludeArchived bool
	CustomFields    []domain.CustomFieldFilter
}

// Matches reports whether the project satisfies every filter criterion
func (f ProjectFilters) Matches(p *domain.Project) bool {
	if !f.IncludeArchived && p.Status == domain.ProjectStatusArchived {
		return false
	}
	if f.GroupID != nil && p.GroupID != *f.GroupID {
		return false
	}
	if f.Brand != "" && !strings.EqualFold(strings.TrimSpace(p.Brand), strings.TrimSpace(f.Brand)) {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if p.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.CurrentStageID != nil && (p.CurrentGTMStageID == nil || *p.CurrentGTMStageID != *f.CurrentStageID) {
		return false
	}
	if f.PlannedFrom != nil || f.PlannedTo != nil {
		if p.PlannedLaunch == nil {
			return false
		}
		if f.PlannedFrom != nil && p.PlannedLaunch.Before(*f.PlannedFrom) {
			return false
		}
		if f.PlannedTo != nil && f.PlannedTo.Before(*p.PlannedLaunch) {
			return false
		}
	}
	return MatchCustomFields(p.CustomFields, f.CustomFields)
}

// Matches reports whether the group satisfies every filter criterion
func (f GroupFilters) Matches(g *domain.ProductGroup) bool {
	if !f.IncludeArchived && g.Status == domain.GroupStatusArchived {
		return false
	}
	return MatchCustomFields(g.ExtraFields, f.CustomFields)
}

// MatchCustomFields applies custom field filters to an open key/value bag.
// A filter on a key the bag lacks never matches.
func MatchCustomFields(fields map[string]domain.Scalar, filters []domain.CustomFieldFilter) bool {
	for _, f := range filters {
		value, ok := fields[f.FieldID]
		if !ok || value.IsNull() {
			return false
		}
		switch f.Type {
		case "select", "text":
			if len(f.Values) == 0 {
				continue
			}
			matched := false
			for _, candidate := range f.Values {
				if strings.EqualFold(strings.TrimSpace(candidate), strings.TrimSpace(value.String())) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		case "number":
			n, ok := value.Number()
			if !ok {
				return false
			}
			if f.ValueFrom != nil && n < *f.ValueFrom {
				return false
			}
			if f.ValueTo != nil && n > *f.ValueTo {
				return false
			}
		case "checkbox":
			if f.Bool == nil {
				continue
			}
			if value.Kind != domain.ScalarBool || value.Bool != *f.Bool {
				return false
			}
		}
	}
	return true
}

// BuildFieldMeta summarises custom fields used by more than one entity.
// The type is checkbox when every value is boolean, number when every value is numeric, otherwise select.
func BuildFieldMeta(bags []map[string]domain.Scalar) []domain.CustomFieldMeta {
	type acc struct {
		count   int
		allBool bool
		allNum  bool
		values  map[string]struct{}
		min     float64
		max     float64
		hasNum  bool
	}
	stats := make(map[string]*acc)

	for _, bag := range bags {
		for key, value := range bag {
			if value.IsNull() {
				continue
			}
			a, ok := stats[key]
			if !ok {
				a = &acc{allBool: true, allNum: true, values: make(map[string]struct{})}
				stats[key] = a
			}
			a.count++
			if value.Kind != domain.ScalarBool {
				a.allBool = false
			}
			if n, isNum := value.Number(); isNum {
				if !a.hasNum || n < a.min {
					a.min = n
				}
				if !a.hasNum || n > a.max {
					a.max = n
				}
				a.hasNum = true
			} else {
				a.allNum = false
			}
			a.values[value.String()] = struct{}{}
		}
	}

	meta := make([]domain.CustomFieldMeta, 0, len(stats))
	for key, a := range stats {
		if a.count < 2 {
			continue
		}
		m := domain.CustomFieldMeta{FieldID: key, Count: a.count}
		switch {
		case a.allBool:
			m.Type = "checkbox"
		case a.allNum:
			m.Type = "number"
			min, max := a.min, a.max
			m.Min = &min
			m.Max = &max
		default:
			m.Type = "select"
			for v := range a.values {
				m.Values = append(m.Values, v)
			}
			sort.Strings(m.Values)
		}
		meta = append(meta, m)
	}

	sort.Slice(meta, func(i, j int) bool { return meta[i].FieldID < meta[j].FieldID })
	return meta
}
