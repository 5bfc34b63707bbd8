package docstore

import (
	"time"
)

// DocumentStatus describes the lifecycle state of a document.
type DocumentStatus string

const (
	StatusActive   DocumentStatus = "active"
	StatusLocked   DocumentStatus = "locked"
	StatusArchived DocumentStatus = "archived"
	StatusDeleted  DocumentStatus = "deleted"
)

// DocumentType categorizes a document for filtering and reporting.
type DocumentType string

const (
	TypeContract       DocumentType = "contract"
	TypePleading       DocumentType = "pleading"
	TypeCorrespondence DocumentType = "correspondence"
	TypeBrief          DocumentType = "brief"
	TypeMemo           DocumentType = "memo"
	TypeOther          DocumentType = "other"
)

// AccessLevel is an ordinal permission tier attached to documents and folders.
type AccessLevel int

const (
	AccessNone AccessLevel = iota
	AccessRead
	AccessWrite
	AccessAdmin
)

// Document is a logical file entity with metadata and a version history.
// It is the unit of locking: the lock fields are part of the document row,
// not a separate table, so lock transitions and version advancement share
// the same serialization point.
type Document struct {
	ID          string         `json:"id" db:"id"`
	Filename    string         `json:"filename" db:"filename"`
	Title       string         `json:"title" db:"title"`
	Description string         `json:"description" db:"description"`
	Type        DocumentType   `json:"type" db:"doc_type"`
	Status      DocumentStatus `json:"status" db:"status"`
	FolderID    *string        `json:"folder_id,omitempty" db:"folder_id"` // NULL = no folder
	CaseID      *string        `json:"case_id,omitempty" db:"case_id"`

	// MimeType and FileSize always reflect the current version. MimeType is
	// derived from the filename extension once, at creation.
	MimeType string `json:"mime_type" db:"mime_type"`
	FileSize int64  `json:"file_size" db:"file_size"`

	// CurrentVersion starts at 1 and increases by exactly 1 on every
	// accepted upload. StoragePath is the physical path of that version.
	CurrentVersion int    `json:"current_version" db:"current_version"`
	StoragePath    string `json:"-" db:"storage_path"`

	AccessLevel AccessLevel `json:"access_level" db:"access_level"`
	OwnerID     string      `json:"owner_id" db:"owner_id"`

	// Lock state: absent (both nil) or held by exactly one user.
	LockedBy *string    `json:"locked_by,omitempty" db:"locked_by"`
	LockedAt *time.Time `json:"locked_at,omitempty" db:"locked_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsLocked reports whether the document currently has an editor.
func (d *Document) IsLocked() bool {
	return d.LockedBy != nil
}

// LockedByUser reports whether the document is locked by the given user.
func (d *Document) LockedByUser(userID string) bool {
	return d.LockedBy != nil && *d.LockedBy == userID
}
