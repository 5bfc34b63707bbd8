package docstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"lexvault/internal/domain"
	models "lexvault/internal/domain/models/docstore"
	"lexvault/internal/domain/repositories"
	docstoreRepo "lexvault/internal/domain/repositories/docstore"
	docstoreSvc "lexvault/internal/domain/services/docstore"
	"lexvault/internal/storage"
)

// MaxFilenameLength bounds document filenames.
const MaxFilenameLength = 255

// documentService implements the DocumentService facade
type documentService struct {
	docRepo     docstoreRepo.DocumentRepository
	versionRepo docstoreRepo.VersionRepository
	folderRepo  docstoreRepo.FolderRepository
	versionSvc  docstoreSvc.VersionService
	lockSvc     docstoreSvc.LockService
	authorizer  docstoreSvc.UnlockAuthorizer
	txManager   repositories.TransactionManager
	blobs       storage.BlobStore
	mimes       *MimeRegistry
	logger      *slog.Logger
}

// NewDocumentService creates the document repository facade
func NewDocumentService(
	docRepo docstoreRepo.DocumentRepository,
	versionRepo docstoreRepo.VersionRepository,
	folderRepo docstoreRepo.FolderRepository,
	versionSvc docstoreSvc.VersionService,
	lockSvc docstoreSvc.LockService,
	authorizer docstoreSvc.UnlockAuthorizer,
	txManager repositories.TransactionManager,
	blobs storage.BlobStore,
	mimes *MimeRegistry,
	logger *slog.Logger,
) docstoreSvc.DocumentService {
	return &documentService{
		docRepo:     docRepo,
		versionRepo: versionRepo,
		folderRepo:  folderRepo,
		versionSvc:  versionSvc,
		lockSvc:     lockSvc,
		authorizer:  authorizer,
		txManager:   txManager,
		blobs:       blobs,
		mimes:       mimes,
		logger:      logger,
	}
}

// Create inserts the document row and appends version 1 in the same
// transaction, so a document is never observable with zero versions.
func (s *documentService) Create(ctx context.Context, req *docstoreSvc.CreateDocumentRequest) (*models.Document, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if req.FolderID != nil {
		if _, err := s.folderRepo.GetByID(ctx, *req.FolderID); err != nil {
			return nil, fmt.Errorf("folder: %w", err)
		}
	}

	title := req.Title
	if title == "" {
		title = req.Filename
	}
	docType := req.Type
	if docType == "" {
		docType = models.TypeOther
	}

	now := time.Now()
	doc := &models.Document{
		ID:          uuid.NewString(),
		Filename:    req.Filename,
		Title:       title,
		Description: req.Description,
		Type:        docType,
		Status:      models.StatusActive,
		FolderID:    req.FolderID,
		CaseID:      req.CaseID,
		MimeType:    s.mimes.Lookup(req.Filename),
		AccessLevel: req.AccessLevel,
		OwnerID:     req.OwnerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		// The row is inserted with current_version 0; the initial append
		// advances it to 1 under the same commit.
		if err := s.docRepo.Create(txCtx, doc); err != nil {
			return err
		}

		changeDesc := req.ChangeDescription
		if changeDesc == "" {
			changeDesc = "initial version"
		}

		version, err := s.versionSvc.Append(txCtx, doc.ID, req.Content, changeDesc, req.OwnerID)
		if err != nil {
			return err
		}

		doc.CurrentVersion = version.Number
		doc.StoragePath = version.StoragePath
		doc.FileSize = version.FileSize
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document created",
		"id", doc.ID,
		"filename", doc.Filename,
		"mime_type", doc.MimeType,
		"folder_id", doc.FolderID,
		"owner_id", doc.OwnerID,
	)

	return doc, nil
}

// Get retrieves a document by ID. Soft-deleted documents remain
// fetchable by ID; they are only hidden from default listings.
func (s *documentService) Get(ctx context.Context, id string) (*models.Document, error) {
	return s.docRepo.GetByID(ctx, id)
}

// Update changes mutable metadata only. Version, storage and lock fields
// are owned by the version and lock services and never change here.
func (s *documentService) Update(ctx context.Context, id string, req *docstoreSvc.UpdateDocumentRequest) (*models.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		doc.Title = *req.Title
	}
	if req.Description != nil {
		doc.Description = *req.Description
	}
	if req.Type != nil {
		doc.Type = *req.Type
	}
	if req.Status != nil {
		doc.Status = *req.Status
	}
	if req.FolderID != nil {
		if *req.FolderID == "" {
			doc.FolderID = nil
		} else {
			if _, err := s.folderRepo.GetByID(ctx, *req.FolderID); err != nil {
				return nil, fmt.Errorf("folder: %w", err)
			}
			doc.FolderID = req.FolderID
		}
	}
	if req.CaseID != nil {
		if *req.CaseID == "" {
			doc.CaseID = nil
		} else {
			doc.CaseID = req.CaseID
		}
	}
	if req.AccessLevel != nil {
		doc.AccessLevel = *req.AccessLevel
	}
	doc.UpdatedAt = time.Now()

	if err := s.docRepo.UpdateMetadata(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("document updated", "id", doc.ID)

	return doc, nil
}

// Delete soft-deletes by default. Permanent deletion removes the version
// files first, then the version rows, then the document row: a surviving
// row never claims storage that is already gone, while a leftover file
// without rows is just a sweepable orphan.
func (s *documentService) Delete(ctx context.Context, id string, permanent bool) error {
	if !permanent {
		if err := s.docRepo.SetStatus(ctx, id, models.StatusDeleted); err != nil {
			return err
		}
		s.logger.Info("document soft-deleted", "id", id)
		return nil
	}

	versions, err := s.versionRepo.ListByDocument(ctx, id)
	if err != nil {
		return err
	}
	for _, v := range versions {
		if err := s.blobs.Remove(ctx, v.StoragePath); err != nil {
			return err
		}
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.versionRepo.DeleteByDocument(txCtx, id); err != nil {
			return err
		}
		return s.docRepo.DeleteRow(txCtx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("document permanently deleted", "id", id, "versions", len(versions))
	return nil
}

// List returns documents matching the filter
func (s *documentService) List(ctx context.Context, filter *models.DocumentFilter) ([]models.Document, error) {
	if filter == nil {
		filter = &models.DocumentFilter{}
	}
	filter.ApplyDefaults()
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	return s.docRepo.List(ctx, filter)
}

// Download streams one version's bytes. version <= 0 means current.
func (s *documentService) Download(ctx context.Context, id string, version int) (io.ReadCloser, *models.DocumentVersion, error) {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if version <= 0 {
		version = doc.CurrentVersion
	}

	v, err := s.versionRepo.GetByNumber(ctx, id, version)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.blobs.Open(ctx, v.StoragePath)
	if err != nil {
		return nil, nil, err
	}

	return rc, v, nil
}

// Checkout delegates to the lock manager
func (s *documentService) Checkout(ctx context.Context, id, userID string) (*models.Document, error) {
	return s.lockSvc.Checkout(ctx, id, userID)
}

// Checkin delegates to the lock manager
func (s *documentService) Checkin(ctx context.Context, req *docstoreSvc.CheckinRequest) (*models.Document, error) {
	return s.lockSvc.Checkin(ctx, req)
}

// ForceUnlock obtains an authorization decision from the external policy
// collaborator and hands it to the lock manager.
func (s *documentService) ForceUnlock(ctx context.Context, id, actorID string) error {
	decision, err := s.authorizer.AuthorizeForceUnlock(ctx, actorID, id)
	if err != nil {
		return err
	}
	return s.lockSvc.ForceUnlock(ctx, id, actorID, decision)
}

func (s *documentService) validateCreateRequest(req *docstoreSvc.CreateDocumentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Filename,
			validation.Required,
			validation.Length(1, MaxFilenameLength),
			validation.By(noPathSeparators),
		),
		validation.Field(&req.OwnerID, validation.Required),
	)
}
