package auth

import (
	"context"
	"fmt"

	docstoreRepo "lexvault/internal/domain/repositories/docstore"
	docstoreSvc "lexvault/internal/domain/services/docstore"
)

// OwnerBasedUnlockAuthorizer implements UnlockAuthorizer using ownership
// checks: the document owner may always clear a stuck lock, as may any
// user on the configured administrator list.
//
// This is the simplest policy. The lock manager only consumes the
// resulting decision, so swapping in a role- or permission-based
// authorizer later does not touch the locking core.
type OwnerBasedUnlockAuthorizer struct {
	docRepo docstoreRepo.DocumentRepository
	admins  map[string]bool
}

// NewOwnerBasedUnlockAuthorizer creates a new ownership-based authorizer.
func NewOwnerBasedUnlockAuthorizer(docRepo docstoreRepo.DocumentRepository, adminIDs []string) *OwnerBasedUnlockAuthorizer {
	admins := make(map[string]bool, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = true
	}
	return &OwnerBasedUnlockAuthorizer{
		docRepo: docRepo,
		admins:  admins,
	}
}

// AuthorizeForceUnlock allows the document owner and administrators.
func (a *OwnerBasedUnlockAuthorizer) AuthorizeForceUnlock(ctx context.Context, actorID, documentID string) (docstoreSvc.AccessDecision, error) {
	if a.admins[actorID] {
		return docstoreSvc.AccessDecision{Allowed: true}, nil
	}

	doc, err := a.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return docstoreSvc.AccessDecision{}, fmt.Errorf("get document for unlock authorization: %w", err)
	}

	if doc.OwnerID == actorID {
		return docstoreSvc.AccessDecision{Allowed: true}, nil
	}

	return docstoreSvc.AccessDecision{
		Allowed: false,
		Reason:  fmt.Sprintf("user %s may not force-unlock document %s", actorID, documentID),
	}, nil
}
