package docstore

import (
	"context"

	models "lexvault/internal/domain/models/docstore"
)

// FolderRepository persists the folder tree.
type FolderRepository interface {
	// Create inserts a new folder row. The caller has already computed
	// the materialized FullPath.
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder by ID.
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	// ListChildren lists folders under parentID; nil lists roots.
	ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error)

	// CountChildren counts direct subfolders of a folder.
	CountChildren(ctx context.Context, id string) (int, error)

	// Update persists a rename (name + recomputed FullPath).
	Update(ctx context.Context, folder *models.Folder) error

	// Delete removes the folder row. Idempotent: deleting a missing row
	// is not an error, so a partially-deleted subtree can be retried.
	Delete(ctx context.Context, id string) error
}
