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

const folderColumns = `id, name, parent_id, full_path, case_id, access_level, owner_id, created_at, updated_at`

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *postgres.RepositoryConfig) docstoreRepo.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a new folder row
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, parent_id, full_path, case_id, access_level, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		folder.ID,
		folder.Name,
		folder.ParentID,
		folder.FullPath,
		folder.CaseID,
		folder.AccessLevel,
		folder.OwnerID,
		folder.CreatedAt,
		folder.UpdatedAt,
	)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a folder named %q already exists in this location", folder.Name),
				ResourceType: "folder",
				ResourceID:   folder.ID,
			}
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("parent folder: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create folder: %w: %v", domain.ErrDatabase, err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, folderColumns, r.tables.Folders)

	var folder models.Folder
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&folder.ID,
		&folder.Name,
		&folder.ParentID,
		&folder.FullPath,
		&folder.CaseID,
		&folder.AccessLevel,
		&folder.OwnerID,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w: %v", domain.ErrDatabase, err)
	}

	return &folder, nil
}

// ListChildren lists folders under parentID; nil lists roots
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error) {
	var query string
	var args []interface{}

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE parent_id IS NULL
			ORDER BY name ASC
		`, folderColumns, r.tables.Folders)
	} else {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE parent_id = $1
			ORDER BY name ASC
		`, folderColumns, r.tables.Folders)
		args = append(args, *parentID)
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w: %v", domain.ErrDatabase, err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		err := rows.Scan(
			&folder.ID,
			&folder.Name,
			&folder.ParentID,
			&folder.FullPath,
			&folder.CaseID,
			&folder.AccessLevel,
			&folder.OwnerID,
			&folder.CreatedAt,
			&folder.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w: %v", domain.ErrDatabase, err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w: %v", domain.ErrDatabase, err)
	}

	// Return empty slice instead of nil
	if folders == nil {
		folders = []models.Folder{}
	}

	return folders, nil
}

// CountChildren counts direct subfolders of a folder
func (r *PostgresFolderRepository) CountChildren(ctx context.Context, id string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE parent_id = $1`, r.tables.Folders)

	var count int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("count subfolders: %w: %v", domain.ErrDatabase, err)
	}

	return count, nil
}

// Update persists a rename
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, full_path = $2, updated_at = $3
		WHERE id = $4
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		folder.Name,
		folder.FullPath,
		folder.UpdatedAt,
		folder.ID,
	)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a folder named %q already exists in this location", folder.Name),
				ResourceType: "folder",
				ResourceID:   folder.ID,
			}
		}
		return fmt.Errorf("update folder: %w: %v", domain.ErrDatabase, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes the folder row. Zero rows affected is not an error so a
// partially-deleted subtree can be swept again.
func (r *PostgresFolderRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("delete folder: %w: %v", domain.ErrDatabase, err)
	}

	return nil
}
