package docstore

import (
	"fmt"
)

const (
	// DefaultListLimit is applied when a filter does not specify one.
	DefaultListLimit = 50
	// MaxListLimit caps a single listing page.
	MaxListLimit = 200
)

// DocumentFilter describes a filtered document listing. All populated
// fields combine with logical AND. Soft-deleted documents are excluded
// unless Status explicitly asks for them.
type DocumentFilter struct {
	FolderID *string         `json:"folder_id,omitempty"`
	CaseID   *string         `json:"case_id,omitempty"`
	Type     *DocumentType   `json:"type,omitempty"`
	Status   *DocumentStatus `json:"status,omitempty"`

	// Search is a free-text substring matched against title, filename
	// and description (case-insensitive).
	Search string `json:"search,omitempty"`

	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// ApplyDefaults fills in defaults and corrects out-of-range pagination.
func (f *DocumentFilter) ApplyDefaults() {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// Validate checks enum fields against their known values.
func (f *DocumentFilter) Validate() error {
	if f.Status != nil {
		switch *f.Status {
		case StatusActive, StatusLocked, StatusArchived, StatusDeleted:
		default:
			return fmt.Errorf("unknown status %q", *f.Status)
		}
	}
	if f.Type != nil {
		switch *f.Type {
		case TypeContract, TypePleading, TypeCorrespondence, TypeBrief, TypeMemo, TypeOther:
		default:
			return fmt.Errorf("unknown document type %q", *f.Type)
		}
	}
	return nil
}
