package service

import (
	"errors"
	"fmt"

	"github.com/straye-as/project-tracker/internal/repository"
	"github.com/straye-as/project-tracker/internal/spreadsheet"
)

// Common service errors
var (
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	ErrGroupNotFound        = errors.New("product group not found")
	ErrProjectNotFound      = errors.New("project not found")
	ErrStageNotFound        = errors.New("GTM stage not found")
	ErrTaskNotFound         = errors.New("task not found")
	ErrSubtaskNotFound      = errors.New("subtask not found")
	ErrSectionNotFound      = errors.New("characteristic section not found")
	ErrFieldNotFound        = errors.New("characteristic field not found")
	ErrFileNotFound         = errors.New("file not found")
	ErrImageNotFound        = errors.New("image not found")
	ErrCommentNotFound      = errors.New("comment not found")
	ErrHistoryEventNotFound = errors.New("history event not found")
	ErrTemplateNotFound     = errors.New("template not found")
	ErrBackupNotFound       = errors.New("backup not found")

	// ErrGroupHasProjects is returned when deleting a group that projects still reference
	ErrGroupHasProjects = errors.New("product group has projects")

	// ErrImportRejected is returned when a parsed workbook has row or structural errors
	ErrImportRejected = errors.New("import rejected")
)

// ImportRejectedError carries the parse errors of a rejected import
type ImportRejectedError struct {
	Errors []spreadsheet.ImportError
}

func (e *ImportRejectedError) Error() string {
	return fmt.Sprintf("import rejected: %d error(s)", len(e.Errors))
}

func (e *ImportRejectedError) Unwrap() error {
	return ErrImportRejected
}

// mapNotFound translates the repository's generic not-found into a service error
func mapNotFound(err error, target error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return target
	}
	return err
}
