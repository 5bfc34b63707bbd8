package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lexvault/internal/domain"
	models "lexvault/internal/domain/models/docstore"
	docstoreRepo "lexvault/internal/domain/repositories/docstore"
	docstoreSvc "lexvault/internal/domain/services/docstore"
)

// lockService implements the LockService interface
type lockService struct {
	docRepo    docstoreRepo.DocumentRepository
	versionSvc docstoreSvc.VersionService
	logger     *slog.Logger
}

// NewLockService creates a new check-out/check-in lock manager
func NewLockService(
	docRepo docstoreRepo.DocumentRepository,
	versionSvc docstoreSvc.VersionService,
	logger *slog.Logger,
) docstoreSvc.LockService {
	return &lockService{
		docRepo:    docRepo,
		versionSvc: versionSvc,
		logger:     logger,
	}
}

// Checkout acquires the exclusive edit lock. Acquisition is one
// conditional update guarded by "lock holder is currently absent"; the
// affected-row count decides the outcome, so two concurrent checkouts can
// never both succeed.
func (s *lockService) Checkout(ctx context.Context, documentID, userID string) (*models.Document, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user is required", domain.ErrValidation)
	}

	acquired, err := s.docRepo.AcquireLock(ctx, documentID, userID, time.Now())
	if err != nil {
		return nil, err
	}

	if !acquired {
		// The guarded update did not match: the document is missing,
		// deleted, or already locked. One read disambiguates.
		doc, err := s.docRepo.GetByID(ctx, documentID)
		if err != nil {
			return nil, err
		}
		if doc.Status == models.StatusDeleted {
			return nil, fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
		}
		if doc.IsLocked() {
			return nil, &domain.LockedError{DocumentID: documentID, HolderID: *doc.LockedBy}
		}
		return nil, fmt.Errorf("document %s is not checkout-able in status %q: %w", documentID, doc.Status, domain.ErrConflict)
	}

	s.logger.Info("document checked out", "document_id", documentID, "user_id", userID)

	return s.docRepo.GetByID(ctx, documentID)
}

// Checkin releases the lock, optionally recording new content first. The
// caller must be the current holder. If the version append fails, the
// lock stays held so the caller can retry without checking out again.
func (s *lockService) Checkin(ctx context.Context, req *docstoreSvc.CheckinRequest) (*models.Document, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("%w: user is required", domain.ErrValidation)
	}

	doc, err := s.docRepo.GetByID(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	if !doc.LockedByUser(req.UserID) {
		return nil, fmt.Errorf("check-in of document %s requires holding its lock: %w", req.DocumentID, domain.ErrForbidden)
	}

	if req.Content != nil {
		if _, err := s.versionSvc.Append(ctx, req.DocumentID, req.Content, req.ChangeDescription, req.UserID); err != nil {
			return nil, err
		}
	}

	released, err := s.docRepo.ReleaseLock(ctx, req.DocumentID, req.UserID)
	if err != nil {
		return nil, err
	}
	if !released {
		// The lock changed hands between the ownership read and the
		// release (a force-unlock raced us).
		return nil, fmt.Errorf("lock on document %s no longer held by %s: %w", req.DocumentID, req.UserID, domain.ErrForbidden)
	}

	s.logger.Info("document checked in",
		"document_id", req.DocumentID,
		"user_id", req.UserID,
		"new_content", req.Content != nil,
	)

	return s.docRepo.GetByID(ctx, req.DocumentID)
}

// ForceUnlock clears any lock unconditionally. Authorization is decided
// by the external policy collaborator and handed in pre-validated; the
// lock manager only enforces that a decision was made.
func (s *lockService) ForceUnlock(ctx context.Context, documentID, actorID string, decision docstoreSvc.AccessDecision) error {
	if !decision.Allowed {
		reason := decision.Reason
		if reason == "" {
			reason = "force-unlock not authorized"
		}
		return fmt.Errorf("%s: %w", reason, domain.ErrForbidden)
	}

	if _, err := s.docRepo.GetByID(ctx, documentID); err != nil {
		return err
	}

	if err := s.docRepo.ForceReleaseLock(ctx, documentID); err != nil {
		return err
	}

	s.logger.Warn("document force-unlocked", "document_id", documentID, "actor_id", actorID)

	return nil
}
