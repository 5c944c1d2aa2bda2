package domain

import "github.com/google/uuid"

// Deep copies used by the store so callers never alias the in-memory document.

func cloneDate(d *Date) *Date {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

func cloneUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}

func cloneScalars(m map[string]Scalar) map[string]Scalar {
	out := make(map[string]Scalar, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Clone returns a deep copy of the group
func (g ProductGroup) Clone() ProductGroup {
	c := g
	c.Brands = append([]string{}, g.Brands...)
	c.ExtraFields = cloneScalars(g.ExtraFields)
	if g.UpdatedAt != nil {
		t := *g.UpdatedAt
		c.UpdatedAt = &t
	}
	return c
}

// Clone returns a deep copy of the stage
func (s GTMStage) Clone() GTMStage {
	c := s
	c.PlannedStart = cloneDate(s.PlannedStart)
	c.PlannedEnd = cloneDate(s.PlannedEnd)
	c.ActualEnd = cloneDate(s.ActualEnd)
	c.Checklist = append([]ChecklistItem{}, s.Checklist...)
	return c
}

// Clone returns a deep copy of the task
func (t Task) Clone() Task {
	c := t
	c.DueDate = cloneDate(t.DueDate)
	c.GTMStageID = cloneUUID(t.GTMStageID)
	c.Subtasks = append([]Subtask{}, t.Subtasks...)
	c.Comments = append([]Comment{}, t.Comments...)
	return c
}

// Clone returns a deep copy of the section
func (s CharacteristicSection) Clone() CharacteristicSection {
	c := s
	c.Fields = append([]CharacteristicField{}, s.Fields...)
	return c
}

// CloneStages deep-copies a stage list
func CloneStages(stages []GTMStage) []GTMStage {
	out := make([]GTMStage, len(stages))
	for i, s := range stages {
		out[i] = s.Clone()
	}
	return out
}

// CloneTasks deep-copies a task list
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

// CloneSections deep-copies a section list
func CloneSections(sections []CharacteristicSection) []CharacteristicSection {
	out := make([]CharacteristicSection, len(sections))
	for i, s := range sections {
		out[i] = s.Clone()
	}
	return out
}

// Clone returns a deep copy of the template
func (t GTMTemplate) Clone() GTMTemplate {
	c := t
	c.Stages = CloneStages(t.Stages)
	return c
}

// Clone returns a deep copy of the template
func (t CharacteristicTemplate) Clone() CharacteristicTemplate {
	c := t
	c.Sections = CloneSections(t.Sections)
	return c
}

// Clone returns a deep copy of the project including all nested collections
func (p Project) Clone() Project {
	c := p
	c.CurrentGTMStageID = cloneUUID(p.CurrentGTMStageID)
	c.PlannedLaunch = cloneDate(p.PlannedLaunch)
	c.ActualLaunch = cloneDate(p.ActualLaunch)
	if p.Priority != nil {
		v := *p.Priority
		c.Priority = &v
	}
	if p.MOQ != nil {
		v := *p.MOQ
		c.MOQ = &v
	}
	if p.FOBPrice != nil {
		v := *p.FOBPrice
		c.FOBPrice = &v
	}
	if p.PromoPrice != nil {
		v := *p.PromoPrice
		c.PromoPrice = &v
	}
	if p.RRPPrice != nil {
		v := *p.RRPPrice
		c.RRPPrice = &v
	}
	if p.UpdatedAt != nil {
		t := *p.UpdatedAt
		c.UpdatedAt = &t
	}
	c.CustomFields = cloneScalars(p.CustomFields)
	c.GTMStages = CloneStages(p.GTMStages)
	c.Tasks = CloneTasks(p.Tasks)
	c.Characteristics = CloneSections(p.Characteristics)
	c.Files = append([]FileAttachment{}, p.Files...)
	c.Images = append([]ImageAttachment{}, p.Images...)
	c.Comments = append([]Comment{}, p.Comments...)
	c.History = append([]HistoryEvent{}, p.History...)
	return c
}
