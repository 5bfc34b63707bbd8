package docstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"lexvault/internal/domain"
	models "lexvault/internal/domain/models/docstore"
	docstoreRepo "lexvault/internal/domain/repositories/docstore"
	"lexvault/internal/repository/postgres"
)

// PostgresVersionRepository implements the VersionRepository interface
type PostgresVersionRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewVersionRepository creates a new version repository
func NewVersionRepository(config *postgres.RepositoryConfig) docstoreRepo.VersionRepository {
	return &PostgresVersionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a new version row. The unique (document_id,
// version_number) constraint is the database-side backstop for the
// contiguous-run invariant.
func (r *PostgresVersionRepository) Create(ctx context.Context, version *models.DocumentVersion) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, document_id, version_number, content_hash, file_size,
			storage_path, change_description, author_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.tables.Versions)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		version.ID,
		version.DocumentID,
		version.Number,
		version.ContentHash,
		version.FileSize,
		version.StoragePath,
		version.ChangeDescription,
		version.AuthorID,
		version.CreatedAt,
	)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("version %d of document %s already exists", version.Number, version.DocumentID),
				ResourceType: "document_version",
				ResourceID:   version.DocumentID,
			}
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("document %s: %w", version.DocumentID, domain.ErrNotFound)
		}
		return fmt.Errorf("create version: %w: %v", domain.ErrDatabase, err)
	}

	return nil
}

// GetByNumber retrieves one version of a document
func (r *PostgresVersionRepository) GetByNumber(ctx context.Context, documentID string, number int) (*models.DocumentVersion, error) {
	query := fmt.Sprintf(`
		SELECT id, document_id, version_number, content_hash, file_size,
			storage_path, change_description, author_id, created_at
		FROM %s
		WHERE document_id = $1 AND version_number = $2
	`, r.tables.Versions)

	var v models.DocumentVersion
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, documentID, number).Scan(
		&v.ID,
		&v.DocumentID,
		&v.Number,
		&v.ContentHash,
		&v.FileSize,
		&v.StoragePath,
		&v.ChangeDescription,
		&v.AuthorID,
		&v.CreatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("version %d of document %s: %w", number, documentID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get version: %w: %v", domain.ErrDatabase, err)
	}

	return &v, nil
}

// ListByDocument returns all versions of a document, newest first
func (r *PostgresVersionRepository) ListByDocument(ctx context.Context, documentID string) ([]models.DocumentVersion, error) {
	query := fmt.Sprintf(`
		SELECT id, document_id, version_number, content_hash, file_size,
			storage_path, change_description, author_id, created_at
		FROM %s
		WHERE document_id = $1
		ORDER BY version_number DESC
	`, r.tables.Versions)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w: %v", domain.ErrDatabase, err)
	}
	defer rows.Close()

	var versions []models.DocumentVersion
	for rows.Next() {
		var v models.DocumentVersion
		err := rows.Scan(
			&v.ID,
			&v.DocumentID,
			&v.Number,
			&v.ContentHash,
			&v.FileSize,
			&v.StoragePath,
			&v.ChangeDescription,
			&v.AuthorID,
			&v.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w: %v", domain.ErrDatabase, err)
		}
		versions = append(versions, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w: %v", domain.ErrDatabase, err)
	}

	// Return empty slice instead of nil
	if versions == nil {
		versions = []models.DocumentVersion{}
	}

	return versions, nil
}

// DeleteByDocument removes every version row of a document
func (r *PostgresVersionRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE document_id = $1`, r.tables.Versions)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, documentID); err != nil {
		return fmt.Errorf("delete versions: %w: %v", domain.ErrDatabase, err)
	}

	return nil
}
