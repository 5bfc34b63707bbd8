package docstore

import (
	"context"
	"time"

	models "lexvault/internal/domain/models/docstore"
)

// DocumentRepository persists document rows. The lock fields and
// current_version column live on the document row; both are mutated
// only through the conditional single-statement updates below, never
// through a read-then-write.
type DocumentRepository interface {
	// Create inserts a new document row.
	Create(ctx context.Context, doc *models.Document) error

	// GetByID retrieves a document by ID. Soft-deleted documents are
	// still returned; only a missing row is a NotFound.
	GetByID(ctx context.Context, id string) (*models.Document, error)

	// UpdateMetadata updates mutable metadata fields only (title,
	// description, type, status, folder/case association, access level).
	// Version, storage and lock fields are never touched here.
	UpdateMetadata(ctx context.Context, doc *models.Document) error

	// List returns documents matching the filter, newest first.
	List(ctx context.Context, filter *models.DocumentFilter) ([]models.Document, error)

	// ListByFolder returns every document directly in a folder, including
	// soft-deleted ones. Callers deciding whether a folder is empty or
	// deleting its contents need the full set: soft-deleted rows still
	// reference the folder.
	ListByFolder(ctx context.Context, folderID string) ([]models.Document, error)

	// SetStatus flips the lifecycle status (soft delete, archive).
	SetStatus(ctx context.Context, id string, status models.DocumentStatus) error

	// DeleteRow removes the document row. Idempotent: deleting a missing
	// row is not an error (permanent deletes must be retryable).
	DeleteRow(ctx context.Context, id string) error

	// AcquireLock atomically sets the lock columns where they are
	// currently null. Returns false if the document is already locked.
	// Missing documents also report false; callers disambiguate via GetByID.
	AcquireLock(ctx context.Context, id, userID string, at time.Time) (bool, error)

	// ReleaseLock atomically clears the lock columns where the lock is
	// held by userID. Returns false if the caller is not the holder.
	ReleaseLock(ctx context.Context, id, userID string) (bool, error)

	// ForceReleaseLock clears the lock columns unconditionally.
	ForceReleaseLock(ctx context.Context, id string) error

	// AdvanceVersion performs the atomic compare-and-increment that
	// serializes version appends: it moves current_version from
	// fromVersion to fromVersion+1 together with the new storage path
	// and size, and returns false when another writer got there first.
	AdvanceVersion(ctx context.Context, id string, fromVersion int, storagePath string, fileSize int64, at time.Time) (bool, error)
}
