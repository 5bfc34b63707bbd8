package docstore

import (
	"context"
	"io"

	models "lexvault/internal/domain/models/docstore"
)

// DocumentService is the repository facade: it combines folder placement,
// initial version creation, locking and filtered listing behind one
// surface. Callers (case management, workflow engine, HTTP handlers) go
// through this interface; if the repository is exposed remotely, these
// operations are the complete surface to wrap.
type DocumentService interface {
	// Create validates the request, derives the MIME type from the
	// filename, and creates the document together with version 1 in one
	// transaction - a document is never observable with zero versions.
	Create(ctx context.Context, req *CreateDocumentRequest) (*models.Document, error)

	// Get retrieves a document by ID. Soft-deleted documents are still
	// fetchable by ID.
	Get(ctx context.Context, id string) (*models.Document, error)

	// Update changes mutable metadata fields only; version and storage
	// fields are owned exclusively by the version service.
	Update(ctx context.Context, id string, req *UpdateDocumentRequest) (*models.Document, error)

	// Delete soft-deletes by default (status flag, row retained). With
	// permanent=true it removes every version's backing file, every
	// version row, then the document row - files before rows.
	Delete(ctx context.Context, id string, permanent bool) error

	// List returns documents matching the filter. Filter fields combine
	// with AND; soft-deleted documents are excluded unless the filter
	// explicitly requests a status.
	List(ctx context.Context, filter *models.DocumentFilter) ([]models.Document, error)

	// Download streams the bytes of a version. version <= 0 means the
	// current version. The caller closes the reader.
	Download(ctx context.Context, id string, version int) (io.ReadCloser, *models.DocumentVersion, error)

	// Checkout, Checkin and ForceUnlock delegate to the lock service so
	// the facade covers the full remote surface.
	Checkout(ctx context.Context, id, userID string) (*models.Document, error)
	Checkin(ctx context.Context, req *CheckinRequest) (*models.Document, error)
	ForceUnlock(ctx context.Context, id, actorID string) error
}

// CreateDocumentRequest represents a document creation request.
type CreateDocumentRequest struct {
	Filename    string              `json:"filename"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Type        models.DocumentType `json:"type"`
	FolderID    *string             `json:"folder_id,omitempty"`
	CaseID      *string             `json:"case_id,omitempty"`
	AccessLevel models.AccessLevel  `json:"access_level"`
	OwnerID     string              `json:"-"` // set from auth context, not the request body

	// Content is the version-1 byte source. Consumed once.
	Content io.Reader `json:"-"`

	ChangeDescription string `json:"change_description,omitempty"`
}

// UpdateDocumentRequest represents a metadata update. Nil fields are
// left unchanged.
type UpdateDocumentRequest struct {
	Title       *string                `json:"title,omitempty"`
	Description *string                `json:"description,omitempty"`
	Type        *models.DocumentType   `json:"type,omitempty"`
	Status      *models.DocumentStatus `json:"status,omitempty"`
	FolderID    *string                `json:"folder_id,omitempty"`
	CaseID      *string                `json:"case_id,omitempty"`
	AccessLevel *models.AccessLevel    `json:"access_level,omitempty"`
}
