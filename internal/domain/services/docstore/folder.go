package docstore

import (
	"context"

	models "lexvault/internal/domain/models/docstore"
)

// FolderService maintains the folder tree and its materialized paths.
type FolderService interface {
	// Create makes a folder under parent_id (nil = root). The
	// materialized full path is computed once here; a missing parent
	// fails fast with a not-found error.
	Create(ctx context.Context, req *CreateFolderRequest) (*models.Folder, error)

	// Get retrieves a folder by ID.
	Get(ctx context.Context, id string) (*models.Folder, error)

	// List lists folders under parentID; nil lists roots.
	List(ctx context.Context, parentID *string) ([]models.Folder, error)

	// Rename changes a folder's name and recomputes its own path.
	// Refused for folders with subfolders or documents: materialized
	// descendant paths are never retroactively rewritten, so renames are
	// limited to leaves (delete and recreate to restructure).
	Rename(ctx context.Context, id, name string) (*models.Folder, error)

	// Delete removes a folder. Non-recursive deletion fails when the
	// folder still has documents or subfolders. Recursive deletion works
	// pre-order (documents, then child subtrees, then the folder row)
	// and is idempotent under retry.
	Delete(ctx context.Context, id string, recursive bool) error
}

// CreateFolderRequest represents a folder creation request.
type CreateFolderRequest struct {
	Name        string             `json:"name"`
	ParentID    *string            `json:"parent_id,omitempty"`
	CaseID      *string            `json:"case_id,omitempty"`
	AccessLevel models.AccessLevel `json:"access_level"`
	OwnerID     string             `json:"-"` // set from auth context
}
