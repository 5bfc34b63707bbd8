package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"lexvault/internal/domain"
	models "lexvault/internal/domain/models/docstore"
	docstoreRepo "lexvault/internal/domain/repositories/docstore"
	docstoreSvc "lexvault/internal/domain/services/docstore"
)

// MaxFolderNameLength bounds folder names.
const MaxFolderNameLength = 255

// folderService implements the FolderService interface
type folderService struct {
	folderRepo docstoreRepo.FolderRepository
	docRepo    docstoreRepo.DocumentRepository
	docDeleter DocumentDeleter
	logger     *slog.Logger
}

// DocumentDeleter is the slice of the document facade the folder service
// needs for recursive deletion. Document removal stays owned by the
// document service; folders only orchestrate.
type DocumentDeleter interface {
	Delete(ctx context.Context, id string, permanent bool) error
}

// NewFolderService creates a new folder hierarchy manager
func NewFolderService(
	folderRepo docstoreRepo.FolderRepository,
	docRepo docstoreRepo.DocumentRepository,
	docDeleter DocumentDeleter,
	logger *slog.Logger,
) docstoreSvc.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		docRepo:    docRepo,
		docDeleter: docDeleter,
		logger:     logger,
	}
}

// Create makes a folder, computing its materialized path once from the
// parent's path. A missing parent fails fast with not-found.
func (s *folderService) Create(ctx context.Context, req *docstoreSvc.CreateFolderRequest) (*models.Folder, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	name := strings.TrimSpace(req.Name)

	var parent *models.Folder
	if req.ParentID != nil {
		var err error
		parent, err = s.folderRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("parent folder: %w", err)
		}
	}

	// Duplicate sibling names would make materialized paths ambiguous.
	siblings, err := s.folderRepo.ListChildren(ctx, req.ParentID)
	if err != nil {
		return nil, err
	}
	for _, sibling := range siblings {
		if sibling.Name == name {
			return nil, &domain.ConflictError{
				Message:      fmt.Sprintf("a folder named %q already exists in this location", name),
				ResourceType: "folder",
				ResourceID:   sibling.ID,
			}
		}
	}

	now := time.Now()
	folder := &models.Folder{
		ID:          uuid.NewString(),
		Name:        name,
		ParentID:    req.ParentID,
		FullPath:    parent.ChildPath(name),
		CaseID:      req.CaseID,
		AccessLevel: req.AccessLevel,
		OwnerID:     req.OwnerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"path", folder.FullPath,
		"parent_id", folder.ParentID,
	)

	return folder, nil
}

// Get retrieves a folder by ID
func (s *folderService) Get(ctx context.Context, id string) (*models.Folder, error) {
	return s.folderRepo.GetByID(ctx, id)
}

// List lists folders under parentID; nil lists roots
func (s *folderService) List(ctx context.Context, parentID *string) ([]models.Folder, error) {
	return s.folderRepo.ListChildren(ctx, parentID)
}

// Rename changes a folder's name and recomputes its own materialized
// path. Folders with subfolders or documents refuse the rename: their
// descendants' stored paths would go stale, and stale paths are the one
// thing a materialized-path tree cannot tolerate. Restructure by delete
// and recreate instead.
func (s *folderService) Rename(ctx context.Context, id, name string) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if err := validation.Validate(name,
		validation.Required,
		validation.Length(1, MaxFolderNameLength),
		validation.By(noPathSeparators),
	); err != nil {
		return nil, fmt.Errorf("%w: name: %v", domain.ErrValidation, err)
	}

	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	subfolders, err := s.folderRepo.CountChildren(ctx, id)
	if err != nil {
		return nil, err
	}
	docs, err := s.docRepo.ListByFolder(ctx, id)
	if err != nil {
		return nil, err
	}
	if subfolders > 0 || len(docs) > 0 {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("folder %q has contents; renames are limited to empty folders", folder.Name),
			ResourceType: "folder",
			ResourceID:   id,
		}
	}

	var parent *models.Folder
	if folder.ParentID != nil {
		parent, err = s.folderRepo.GetByID(ctx, *folder.ParentID)
		if err != nil {
			return nil, fmt.Errorf("parent folder: %w", err)
		}
	}

	folder.Name = name
	folder.FullPath = parent.ChildPath(name)
	folder.UpdatedAt = time.Now()

	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder renamed", "id", folder.ID, "name", folder.Name, "path", folder.FullPath)

	return folder, nil
}

// Delete removes a folder. Without recursive it fails when the folder
// still holds documents or subfolders. With recursive it deletes
// pre-order: documents of the folder, then each child subtree, then the
// folder row. Every step tolerates already-deleted rows, so a retry over
// a partially-deleted subtree completes cleanly.
func (s *folderService) Delete(ctx context.Context, id string, recursive bool) error {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !recursive {
		subfolders, err := s.folderRepo.CountChildren(ctx, id)
		if err != nil {
			return err
		}
		docs, err := s.docRepo.ListByFolder(ctx, id)
		if err != nil {
			return err
		}
		if subfolders > 0 || len(docs) > 0 {
			return &domain.NotEmptyError{FolderID: id}
		}

		if err := s.folderRepo.Delete(ctx, id); err != nil {
			return err
		}
		s.logger.Info("folder deleted", "id", id, "name", folder.Name)
		return nil
	}

	if err := s.deleteSubtree(ctx, id); err != nil {
		return err
	}

	s.logger.Info("folder deleted recursively", "id", id, "name", folder.Name, "path", folder.FullPath)
	return nil
}

// deleteSubtree removes a folder's documents, then its child subtrees,
// then the folder row itself.
func (s *folderService) deleteSubtree(ctx context.Context, folderID string) error {
	docs, err := s.docRepo.ListByFolder(ctx, folderID)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if err := s.docDeleter.Delete(ctx, doc.ID, true); err != nil {
			return fmt.Errorf("delete document %q: %w", doc.Filename, err)
		}
	}

	folderIDCopy := folderID
	children, err := s.folderRepo.ListChildren(ctx, &folderIDCopy)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := s.deleteSubtree(ctx, child.ID); err != nil {
			return err
		}
	}

	return s.folderRepo.Delete(ctx, folderID)
}

func (s *folderService) validateCreateRequest(req *docstoreSvc.CreateFolderRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, MaxFolderNameLength),
			validation.By(noPathSeparators),
		),
		validation.Field(&req.OwnerID, validation.Required),
	)
}

// noPathSeparators rejects names that would corrupt materialized paths.
func noPathSeparators(value interface{}) error {
	name, _ := value.(string)
	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("must not contain path separators")
	}
	return nil
}
