package docstore

import (
	"context"
	"io"

	models "lexvault/internal/domain/models/docstore"
)

// VersionService is the version chain manager: it appends immutable
// version records and advances the document's current-version pointer
// atomically. Two concurrent appends on the same document serialize on
// the document row's current_version column; on any failure the
// document's current_version and storage_path are unchanged.
type VersionService interface {
	// Append records a new version from the byte source. The source is
	// streamed to storage once; the content fingerprint and byte size
	// are computed during that pass. Rejected with a permission error
	// when the document is locked by a user other than authorID.
	Append(ctx context.Context, documentID string, content io.Reader, changeDescription, authorID string) (*models.DocumentVersion, error)

	// Get retrieves one version of a document.
	Get(ctx context.Context, documentID string, number int) (*models.DocumentVersion, error)

	// List returns all versions of a document, newest first.
	List(ctx context.Context, documentID string) ([]models.DocumentVersion, error)
}
