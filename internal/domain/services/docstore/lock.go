package docstore

import (
	"context"
	"io"

	models "lexvault/internal/domain/models/docstore"
)

// LockService enforces the check-out/check-in protocol: at most one
// concurrent editor per document.
type LockService interface {
	// Checkout moves UNLOCKED -> LOCKED(userID). Fails with a locked
	// error if anyone holds the lock, including userID itself (no
	// re-entrant checkout). Acquisition is a single conditional update,
	// not a read followed by a write.
	Checkout(ctx context.Context, documentID, userID string) (*models.Document, error)

	// Checkin requires LOCKED(userID). If req.Content is non-nil a new
	// version is appended first; if that fails the lock stays held so
	// the caller can retry without checking out again. On success the
	// lock is released.
	Checkin(ctx context.Context, req *CheckinRequest) (*models.Document, error)

	// ForceUnlock is the administrative override LOCKED(*) -> UNLOCKED.
	// The decision must come from the external authorization
	// collaborator; the lock service itself never authorizes.
	ForceUnlock(ctx context.Context, documentID, actorID string, decision AccessDecision) error
}

// CheckinRequest represents a check-in, optionally with new content.
type CheckinRequest struct {
	DocumentID        string    `json:"-"`
	UserID            string    `json:"-"`
	Content           io.Reader `json:"-"` // nil = release without a new version
	ChangeDescription string    `json:"change_description,omitempty"`
}

// AccessDecision is a pre-validated authorization result supplied by an
// external policy collaborator.
type AccessDecision struct {
	Allowed bool
	Reason  string
}

// UnlockAuthorizer decides whether an actor may forcibly clear another
// user's lock. Implementations live outside the locking core (role
// checks, policy engines).
type UnlockAuthorizer interface {
	AuthorizeForceUnlock(ctx context.Context, actorID, documentID string) (AccessDecision, error)
}
