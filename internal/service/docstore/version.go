package docstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"lexvault/internal/domain"
	models "lexvault/internal/domain/models/docstore"
	"lexvault/internal/domain/repositories"
	docstoreRepo "lexvault/internal/domain/repositories/docstore"
	docstoreSvc "lexvault/internal/domain/services/docstore"
	"lexvault/internal/storage"
)

// versionService implements the VersionService interface
type versionService struct {
	docRepo     docstoreRepo.DocumentRepository
	versionRepo docstoreRepo.VersionRepository
	txManager   repositories.TransactionManager
	blobs       storage.BlobStore
	baseDir     string
	logger      *slog.Logger
}

// NewVersionService creates a new version chain manager
func NewVersionService(
	docRepo docstoreRepo.DocumentRepository,
	versionRepo docstoreRepo.VersionRepository,
	txManager repositories.TransactionManager,
	blobs storage.BlobStore,
	baseDir string,
	logger *slog.Logger,
) docstoreSvc.VersionService {
	return &versionService{
		docRepo:     docRepo,
		versionRepo: versionRepo,
		txManager:   txManager,
		blobs:       blobs,
		baseDir:     baseDir,
		logger:      logger,
	}
}

// Append records a new version of a document. The whole operation runs in
// one transaction:
//
//  1. read the document row and compute next version
//  2. derive the physical path and stream the bytes there, computing the
//     fingerprint and size in the same pass
//  3. insert the version row
//  4. advance the document row with a compare-and-increment on
//     current_version
//
// If anything fails after the copy, the relational writes roll back and
// the copied file is left behind as an orphan: versioned paths are never
// reused, so it can never corrupt a later version, and the sweep tool
// reclaims the space. No partial version bump is ever observable.
func (s *versionService) Append(ctx context.Context, documentID string, content io.Reader, changeDescription, authorID string) (*models.DocumentVersion, error) {
	if content == nil {
		return nil, fmt.Errorf("%w: content is required", domain.ErrValidation)
	}
	if authorID == "" {
		return nil, fmt.Errorf("%w: author is required", domain.ErrValidation)
	}

	var version *models.DocumentVersion

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		doc, err := s.docRepo.GetByID(txCtx, documentID)
		if err != nil {
			return err
		}
		if doc.Status == models.StatusDeleted {
			return fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
		}

		// Direct uploads obey the same ownership rule as check-in: a lock
		// held by someone else rejects the write. A lock held by the
		// author (the check-in path) is fine.
		if doc.IsLocked() && !doc.LockedByUser(authorID) {
			return fmt.Errorf("document %s is checked out by another user: %w", documentID, domain.ErrForbidden)
		}

		newVersion := doc.CurrentVersion + 1
		path := storage.PathFor(s.baseDir, documentID, newVersion)

		result, err := s.blobs.Write(txCtx, path, content)
		if err != nil {
			return err
		}

		now := time.Now()
		version = &models.DocumentVersion{
			ID:                uuid.NewString(),
			DocumentID:        documentID,
			Number:            newVersion,
			ContentHash:       result.ContentHash,
			FileSize:          result.Size,
			StoragePath:       path,
			ChangeDescription: changeDescription,
			AuthorID:          authorID,
			CreatedAt:         now,
		}

		if err := s.versionRepo.Create(txCtx, version); err != nil {
			return err
		}

		advanced, err := s.docRepo.AdvanceVersion(txCtx, documentID, doc.CurrentVersion, path, result.Size, now)
		if err != nil {
			return err
		}
		if !advanced {
			// Another append won the race from the same starting version.
			// Roll back; the caller may retry, and the copied file becomes
			// a sweepable orphan.
			return &domain.ConflictError{
				Message:      fmt.Sprintf("concurrent version append on document %s", documentID),
				ResourceType: "document",
				ResourceID:   documentID,
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("version appended",
		"document_id", documentID,
		"version", version.Number,
		"size", version.FileSize,
		"author_id", authorID,
	)

	return version, nil
}

// Get retrieves one version of a document
func (s *versionService) Get(ctx context.Context, documentID string, number int) (*models.DocumentVersion, error) {
	if number < 1 {
		return nil, fmt.Errorf("%w: version number must be positive", domain.ErrValidation)
	}
	return s.versionRepo.GetByNumber(ctx, documentID, number)
}

// List returns all versions of a document, newest first
func (s *versionService) List(ctx context.Context, documentID string) ([]models.DocumentVersion, error) {
	// Listing versions of a missing document is a not-found, not an
	// empty list.
	if _, err := s.docRepo.GetByID(ctx, documentID); err != nil {
		return nil, err
	}
	return s.versionRepo.ListByDocument(ctx, documentID)
}
