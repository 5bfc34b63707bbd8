package docstore

import (
	"context"

	models "lexvault/internal/domain/models/docstore"
)

// VersionRepository persists the append-only version chain of a document.
type VersionRepository interface {
	// Create inserts a new version row.
	Create(ctx context.Context, version *models.DocumentVersion) error

	// GetByNumber retrieves one version of a document.
	GetByNumber(ctx context.Context, documentID string, number int) (*models.DocumentVersion, error)

	// ListByDocument returns all versions of a document, newest first.
	ListByDocument(ctx context.Context, documentID string) ([]models.DocumentVersion, error)

	// DeleteByDocument removes every version row of a document. Used only
	// by permanent document deletion, after the backing files are gone.
	DeleteByDocument(ctx context.Context, documentID string) error
}
