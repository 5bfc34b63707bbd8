package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"lexvault/internal/domain"
	models "lexvault/internal/domain/models/docstore"
	docstoreRepo "lexvault/internal/domain/repositories/docstore"
	"lexvault/internal/repository/postgres"
)

const documentColumns = `id, filename, title, description, doc_type, status, folder_id, case_id,
		mime_type, file_size, current_version, storage_path, access_level, owner_id,
		locked_by, locked_at, created_at, updated_at`

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *postgres.RepositoryConfig) docstoreRepo.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a new document row
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, filename, title, description, doc_type, status, folder_id, case_id,
			mime_type, file_size, current_version, storage_path, access_level, owner_id,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		doc.ID,
		doc.Filename,
		doc.Title,
		doc.Description,
		doc.Type,
		doc.Status,
		doc.FolderID,
		doc.CaseID,
		doc.MimeType,
		doc.FileSize,
		doc.CurrentVersion,
		doc.StoragePath,
		doc.AccessLevel,
		doc.OwnerID,
		doc.CreatedAt,
		doc.UpdatedAt,
	)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("document %s already exists", doc.ID),
				ResourceType: "document",
				ResourceID:   doc.ID,
			}
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("document folder reference: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create document: %w: %v", domain.ErrDatabase, err)
	}

	return nil
}

// GetByID retrieves a document by ID. Soft-deleted documents are still
// returned; only a missing row maps to not-found.
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, documentColumns, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	doc, err := scanDocument(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w: %v", domain.ErrDatabase, err)
	}

	return doc, nil
}

// UpdateMetadata updates mutable metadata fields only. Version, storage
// and lock columns are intentionally absent from the SET list.
func (r *PostgresDocumentRepository) UpdateMetadata(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, description = $2, doc_type = $3, status = $4,
			folder_id = $5, case_id = $6, access_level = $7, updated_at = $8
		WHERE id = $9
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		doc.Title,
		doc.Description,
		doc.Type,
		doc.Status,
		doc.FolderID,
		doc.CaseID,
		doc.AccessLevel,
		doc.UpdatedAt,
		doc.ID,
	)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("document folder reference: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("update document: %w: %v", domain.ErrDatabase, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
	}

	return nil
}

// List returns documents matching the filter, newest first. Filter fields
// combine with AND; soft-deleted rows are excluded unless the filter asks
// for a status explicitly.
func (r *PostgresDocumentRepository) List(ctx context.Context, filter *models.DocumentFilter) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE 1=1
	`, documentColumns, r.tables.Documents)

	var args []interface{}
	paramIndex := 1

	if filter.Status != nil {
		query += fmt.Sprintf(` AND status = $%d`, paramIndex)
		args = append(args, *filter.Status)
		paramIndex++
	} else {
		query += fmt.Sprintf(` AND status <> $%d`, paramIndex)
		args = append(args, models.StatusDeleted)
		paramIndex++
	}

	if filter.FolderID != nil {
		query += fmt.Sprintf(` AND folder_id = $%d`, paramIndex)
		args = append(args, *filter.FolderID)
		paramIndex++
	}

	if filter.CaseID != nil {
		query += fmt.Sprintf(` AND case_id = $%d`, paramIndex)
		args = append(args, *filter.CaseID)
		paramIndex++
	}

	if filter.Type != nil {
		query += fmt.Sprintf(` AND doc_type = $%d`, paramIndex)
		args = append(args, *filter.Type)
		paramIndex++
	}

	if filter.Search != "" {
		query += fmt.Sprintf(` AND (title ILIKE $%d OR filename ILIKE $%d OR description ILIKE $%d)`,
			paramIndex, paramIndex, paramIndex)
		args = append(args, "%"+filter.Search+"%")
		paramIndex++
	}

	query += ` ORDER BY updated_at DESC`
	query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, paramIndex, paramIndex+1)
	args = append(args, filter.Limit, filter.Offset)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w: %v", domain.ErrDatabase, err)
	}
	defer rows.Close()

	var documents []models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w: %v", domain.ErrDatabase, err)
		}
		documents = append(documents, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w: %v", domain.ErrDatabase, err)
	}

	// Return empty slice instead of nil
	if documents == nil {
		documents = []models.Document{}
	}

	return documents, nil
}

// ListByFolder returns every document directly in a folder, soft-deleted
// ones included. The folder service depends on seeing those rows: they
// still reference the folder, so emptiness checks and subtree deletes
// must account for them.
func (r *PostgresDocumentRepository) ListByFolder(ctx context.Context, folderID string) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE folder_id = $1
		ORDER BY filename ASC
	`, documentColumns, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, folderID)
	if err != nil {
		return nil, fmt.Errorf("list documents in folder: %w: %v", domain.ErrDatabase, err)
	}
	defer rows.Close()

	var documents []models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w: %v", domain.ErrDatabase, err)
		}
		documents = append(documents, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w: %v", domain.ErrDatabase, err)
	}

	if documents == nil {
		documents = []models.Document{}
	}

	return documents, nil
}

// SetStatus flips the lifecycle status
func (r *PostgresDocumentRepository) SetStatus(ctx context.Context, id string, status models.DocumentStatus) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("set document status: %w: %v", domain.ErrDatabase, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DeleteRow removes the document row. Zero rows affected is not an error:
// permanent deletes must be idempotent under retry.
func (r *PostgresDocumentRepository) DeleteRow(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("delete document row: %w: %v", domain.ErrDatabase, err)
	}

	return nil
}

// AcquireLock sets the lock columns where they are currently null. The
// guard closes the read/act race between two concurrent checkouts: only
// one UPDATE can match the NULL holder.
func (r *PostgresDocumentRepository) AcquireLock(ctx context.Context, id, userID string, at time.Time) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET locked_by = $1, locked_at = $2, status = $3, updated_at = $2
		WHERE id = $4 AND locked_by IS NULL AND status = $5
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, userID, at, models.StatusLocked, id, models.StatusActive)
	if err != nil {
		return false, fmt.Errorf("acquire lock: %w: %v", domain.ErrDatabase, err)
	}

	return result.RowsAffected() == 1, nil
}

// ReleaseLock clears the lock columns where userID is the holder. Status
// only moves back to active when it is still locked; a document deleted
// while checked out keeps its deleted status.
func (r *PostgresDocumentRepository) ReleaseLock(ctx context.Context, id, userID string) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET locked_by = NULL, locked_at = NULL,
			status = CASE WHEN status = $1 THEN $2 ELSE status END,
			updated_at = NOW()
		WHERE id = $3 AND locked_by = $4
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, models.StatusLocked, models.StatusActive, id, userID)
	if err != nil {
		return false, fmt.Errorf("release lock: %w: %v", domain.ErrDatabase, err)
	}

	return result.RowsAffected() == 1, nil
}

// ForceReleaseLock clears the lock columns regardless of the holder,
// with the same status guard as ReleaseLock.
func (r *PostgresDocumentRepository) ForceReleaseLock(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET locked_by = NULL, locked_at = NULL,
			status = CASE WHEN status = $1 THEN $2 ELSE status END,
			updated_at = NOW()
		WHERE id = $3 AND locked_by IS NOT NULL
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, models.StatusLocked, models.StatusActive, id); err != nil {
		return fmt.Errorf("force release lock: %w: %v", domain.ErrDatabase, err)
	}

	return nil
}

// AdvanceVersion moves current_version from fromVersion to fromVersion+1
// together with the new storage path and size. The WHERE guard on the old
// value serializes concurrent appends: two writers can never both advance
// from the same starting version.
func (r *PostgresDocumentRepository) AdvanceVersion(ctx context.Context, id string, fromVersion int, storagePath string, fileSize int64, at time.Time) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET current_version = $1, storage_path = $2, file_size = $3, updated_at = $4
		WHERE id = $5 AND current_version = $6
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, fromVersion+1, storagePath, fileSize, at, id, fromVersion)
	if err != nil {
		return false, fmt.Errorf("advance version: %w: %v", domain.ErrDatabase, err)
	}

	return result.RowsAffected() == 1, nil
}

// rowScanner covers pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var doc models.Document
	err := row.Scan(
		&doc.ID,
		&doc.Filename,
		&doc.Title,
		&doc.Description,
		&doc.Type,
		&doc.Status,
		&doc.FolderID,
		&doc.CaseID,
		&doc.MimeType,
		&doc.FileSize,
		&doc.CurrentVersion,
		&doc.StoragePath,
		&doc.AccessLevel,
		&doc.OwnerID,
		&doc.LockedBy,
		&doc.LockedAt,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
