package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/straye-as/project-tracker/internal/domain"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a record does not exist in the document
var ErrNotFound = errors.New("record not found")

// ErrGroupInUse is returned when deleting a group that projects still reference
var ErrGroupInUse = errors.New("product group has projects")

// Document is the single JSON document persisted on disk
type Document struct {
	ProductGroups           []domain.ProductGroup           `json:"product_groups"`
	Projects                []domain.Project                `json:"projects"`
	GTMTemplates            []domain.GTMTemplate            `json:"gtm_templates"`
	CharacteristicTemplates []domain.CharacteristicTemplate `json:"characteristic_templates"`
	NextShortID             int                             `json:"next_short_id"`
}

// Store holds the canonical in-memory document and rewrites the whole file on every mutation.
// Writes are serialized by a single-writer lock; readers share a read lock.
type Store struct {
	path   string
	mu     sync.RWMutex
	doc    *Document
	logger *zap.Logger
}

// OpenStore loads the document at path; a missing file yields an empty document
func OpenStore(path string, logger *zap.Logger) (*Store, error) {
	doc, err := readDocument(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		doc = &Document{}
	}
	doc.normalize()

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	logger.Info("Document store opened",
		zap.String("path", path),
		zap.Int("groups", len(doc.ProductGroups)),
		zap.Int("projects", len(doc.Projects)),
	)

	return &Store{path: path, doc: doc, logger: logger}, nil
}

// Path returns the location of the primary document
func (s *Store) Path() string {
	return s.path
}

// View runs fn under the read lock. fn must not retain references into the document.
func (s *Store) View(fn func(doc *Document) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.doc)
}

// Update runs fn under the write lock and persists the document.
// If fn or the write fails, the in-memory document is rolled back.
func (s *Store) Update(fn func(doc *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := json.Marshal(s.doc)
	if err != nil {
		return fmt.Errorf("failed to snapshot document: %w", err)
	}

	rollback := func() {
		var restored Document
		if uerr := json.Unmarshal(snapshot, &restored); uerr != nil {
			s.logger.Error("failed to roll back document", zap.Error(uerr))
			return
		}
		restored.normalize()
		s.doc = &restored
	}

	if err := fn(s.doc); err != nil {
		rollback()
		return err
	}

	if err := writeDocument(s.path, s.doc); err != nil {
		rollback()
		return err
	}
	return nil
}

// replace swaps the whole document and persists it
func (s *Store) replace(doc *Document) error {
	doc.normalize()
	return s.Update(func(current *Document) error {
		*current = *doc
		return nil
	})
}

func readDocument(path string) (*Document, error) {
	// #nosec G304 - path comes from configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", path, err)
	}
	return &doc, nil
}

// writeDocument writes to a temp file in the same directory and renames it into place
func writeDocument(path string, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close document: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace document: %w", err)
	}
	return nil
}

// normalize fills nil collections and repairs the short id counter
func (d *Document) normalize() {
	if d.ProductGroups == nil {
		d.ProductGroups = []domain.ProductGroup{}
	}
	if d.Projects == nil {
		d.Projects = []domain.Project{}
	}
	if d.GTMTemplates == nil {
		d.GTMTemplates = []domain.GTMTemplate{}
	}
	if d.CharacteristicTemplates == nil {
		d.CharacteristicTemplates = []domain.CharacteristicTemplate{}
	}
	for i := range d.Projects {
		normalizeProject(&d.Projects[i])
		if d.Projects[i].ShortID >= d.NextShortID {
			d.NextShortID = d.Projects[i].ShortID + 1
		}
	}
	if d.NextShortID < 1 {
		d.NextShortID = 1
	}
}

func normalizeProject(p *domain.Project) {
	if p.CustomFields == nil {
		p.CustomFields = map[string]domain.Scalar{}
	}
	if p.GTMStages == nil {
		p.GTMStages = []domain.GTMStage{}
	}
	if p.Tasks == nil {
		p.Tasks = []domain.Task{}
	}
	if p.Characteristics == nil {
		p.Characteristics = []domain.CharacteristicSection{}
	}
	if p.Files == nil {
		p.Files = []domain.FileAttachment{}
	}
	if p.Images == nil {
		p.Images = []domain.ImageAttachment{}
	}
	if p.Comments == nil {
		p.Comments = []domain.Comment{}
	}
	if p.History == nil {
		p.History = []domain.HistoryEvent{}
	}
}
