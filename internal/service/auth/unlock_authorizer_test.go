package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"lexvault/internal/domain"
	models "lexvault/internal/domain/models/docstore"
	docstoreRepo "lexvault/internal/domain/repositories/docstore"
)

// stubDocRepo implements only GetByID; the authorizer uses nothing else.
type stubDocRepo struct {
	docstoreRepo.DocumentRepository
	doc *models.Document
}

func (s *stubDocRepo) GetByID(ctx context.Context, id string) (*models.Document, error) {
	if s.doc == nil || s.doc.ID != id {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return s.doc, nil
}

func TestAuthorizeForceUnlock(t *testing.T) {
	repo := &stubDocRepo{doc: &models.Document{ID: "doc-1", OwnerID: "user-owner"}}
	authorizer := NewOwnerBasedUnlockAuthorizer(repo, []string{"user-admin"})

	tests := []struct {
		name    string
		actorID string
		allowed bool
	}{
		{"admin allowed", "user-admin", true},
		{"owner allowed", "user-owner", true},
		{"stranger denied", "user-other", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := authorizer.AuthorizeForceUnlock(context.Background(), tt.actorID, "doc-1")
			if err != nil {
				t.Fatalf("AuthorizeForceUnlock() error = %v", err)
			}
			if decision.Allowed != tt.allowed {
				t.Errorf("Allowed = %v, want %v", decision.Allowed, tt.allowed)
			}
			if !decision.Allowed && decision.Reason == "" {
				t.Error("denied decision carries no reason")
			}
		})
	}
}

func TestAuthorizeForceUnlock_MissingDocument(t *testing.T) {
	authorizer := NewOwnerBasedUnlockAuthorizer(&stubDocRepo{}, nil)

	_, err := authorizer.AuthorizeForceUnlock(context.Background(), "user-x", "no-such-doc")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("AuthorizeForceUnlock() error = %v, want ErrNotFound", err)
	}
}
