package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/project-tracker/internal/domain"
)

type ProjectRepository struct {
	store *Store
}

func NewProjectRepository(store *Store) *ProjectRepository {
	return &ProjectRepository{store: store}
}

// List returns projects matching filters in document order
func (r *ProjectRepository) List(ctx context.Context, filters ProjectFilters) ([]domain.Project, error) {
	var projects []domain.Project
	err := r.store.View(func(doc *Document) error {
		projects = make([]domain.Project, 0, len(doc.Projects))
		for i := range doc.Projects {
			if filters.Matches(&doc.Projects[i]) {
				projects = append(projects, doc.Projects[i].Clone())
			}
		}
		return nil
	})
	return projects, err
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var project *domain.Project
	err := r.store.View(func(doc *Document) error {
		idx := projectIndex(doc, id)
		if idx < 0 {
			return ErrNotFound
		}
		p := doc.Projects[idx].Clone()
		project = &p
		return nil
	})
	return project, err
}

// Create stores a new project and assigns it the next short id
func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	return r.store.Update(func(doc *Document) error {
		project.ShortID = doc.NextShortID
		doc.NextShortID++
		stored := project.Clone()
		normalizeProject(&stored)
		doc.Projects = append(doc.Projects, stored)
		return nil
	})
}

// Update replaces a project; the stored short id always wins
func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	return r.store.Update(func(doc *Document) error {
		idx := projectIndex(doc, project.ID)
		if idx < 0 {
			return ErrNotFound
		}
		project.ShortID = doc.Projects[idx].ShortID
		stored := project.Clone()
		normalizeProject(&stored)
		doc.Projects[idx] = stored
		return nil
	})
}

func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.store.Update(func(doc *Document) error {
		idx := projectIndex(doc, id)
		if idx < 0 {
			return ErrNotFound
		}
		doc.Projects = append(doc.Projects[:idx], doc.Projects[idx+1:]...)
		return nil
	})
}

// UpsertResult reports what an upsert did to each incoming project
type UpsertResult struct {
	Projects []domain.Project
	Created  int
	Updated  int
}

// Upsert merges projects by id in a single write. Matched records keep their short id;
// new records get the next unused counter value.
func (r *ProjectRepository) Upsert(ctx context.Context, projects []domain.Project) (*UpsertResult, error) {
	result := &UpsertResult{Projects: make([]domain.Project, 0, len(projects))}
	now := time.Now().UTC()

	err := r.store.Update(func(doc *Document) error {
		for _, incoming := range projects {
			stored := incoming.Clone()
			normalizeProject(&stored)

			if idx := projectIndex(doc, stored.ID); idx >= 0 {
				stored.ShortID = doc.Projects[idx].ShortID
				stored.CreatedAt = doc.Projects[idx].CreatedAt
				stored.UpdatedAt = &now
				doc.Projects[idx] = stored
				result.Updated++
			} else {
				if stored.ID == uuid.Nil {
					stored.ID = uuid.New()
				}
				if stored.CreatedAt.IsZero() {
					stored.CreatedAt = now
				}
				stored.ShortID = doc.NextShortID
				doc.NextShortID++
				doc.Projects = append(doc.Projects, stored)
				result.Created++
			}
			result.Projects = append(result.Projects, stored.Clone())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Mutate applies fn to the stored project inside one write and returns the updated copy.
// An error from fn discards every change fn made.
func (r *ProjectRepository) Mutate(ctx context.Context, id uuid.UUID, fn func(p *domain.Project) error) (*domain.Project, error) {
	var updated *domain.Project
	err := r.store.Update(func(doc *Document) error {
		idx := projectIndex(doc, id)
		if idx < 0 {
			return ErrNotFound
		}
		p := &doc.Projects[idx]
		shortID := p.ShortID
		if err := fn(p); err != nil {
			return err
		}
		p.ShortID = shortID
		now := time.Now().UTC()
		p.UpdatedAt = &now
		normalizeProject(p)
		c := p.Clone()
		updated = &c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ReplaceGTM substitutes the project's whole stage and staged task lists.
// Tasks without a stage are not part of the GTM sheet and are kept after the new tasks.
// A current stage pointer that no longer resolves is cleared.
// Events are prepended to the history in the same write.
func (r *ProjectRepository) ReplaceGTM(ctx context.Context, id uuid.UUID, stages []domain.GTMStage, tasks []domain.Task, events ...domain.HistoryEvent) (*domain.Project, error) {
	return r.Mutate(ctx, id, func(p *domain.Project) error {
		replaced := domain.CloneTasks(tasks)
		for _, t := range p.Tasks {
			if t.GTMStageID == nil {
				replaced = append(replaced, t)
			}
		}
		p.GTMStages = domain.CloneStages(stages)
		p.Tasks = replaced
		if p.CurrentGTMStageID != nil {
			if _, ok := p.FindStage(*p.CurrentGTMStageID); !ok {
				p.CurrentGTMStageID = nil
			}
		}
		prependHistory(p, events)
		return nil
	})
}

// ReplaceCharacteristics substitutes the project's whole characteristic section list
func (r *ProjectRepository) ReplaceCharacteristics(ctx context.Context, id uuid.UUID, sections []domain.CharacteristicSection, events ...domain.HistoryEvent) (*domain.Project, error) {
	return r.Mutate(ctx, id, func(p *domain.Project) error {
		p.Characteristics = domain.CloneSections(sections)
		prependHistory(p, events)
		return nil
	})
}

func prependHistory(p *domain.Project, events []domain.HistoryEvent) {
	if len(events) == 0 {
		return
	}
	p.History = append(append([]domain.HistoryEvent{}, events...), p.History...)
}

// FieldMeta lists custom fields shared by more than one project
func (r *ProjectRepository) FieldMeta(ctx context.Context) ([]domain.CustomFieldMeta, error) {
	var meta []domain.CustomFieldMeta
	err := r.store.View(func(doc *Document) error {
		bags := make([]map[string]domain.Scalar, 0, len(doc.Projects))
		for _, p := range doc.Projects {
			bags = append(bags, p.CustomFields)
		}
		meta = BuildFieldMeta(bags)
		return nil
	})
	return meta, err
}

func projectIndex(doc *Document, id uuid.UUID) int {
	for i := range doc.Projects {
		if doc.Projects[i].ID == id {
			return i
		}
	}
	return -1
}
