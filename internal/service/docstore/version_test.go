package docstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"strings"
	"testing"

	"lexvault/internal/domain"
)

func TestAppend_AdvancesVersionChain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doc := env.mustCreateDocument(t, "brief.docx", "user-a", "first draft")

	v2, err := env.versionSvc.Append(ctx, doc.ID, strings.NewReader("second draft"), "tightened argument", "user-a")
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if v2.Number != 2 {
		t.Errorf("Number = %d, want 2", v2.Number)
	}

	sum := sha256.Sum256([]byte("second draft"))
	if want := hex.EncodeToString(sum[:]); v2.ContentHash != want {
		t.Errorf("ContentHash = %q, want %q", v2.ContentHash, want)
	}
	if v2.FileSize != int64(len("second draft")) {
		t.Errorf("FileSize = %d, want %d", v2.FileSize, len("second draft"))
	}

	// The document row tracks the latest version's path and size.
	current, _ := env.docRepo.GetByID(ctx, doc.ID)
	if current.CurrentVersion != 2 {
		t.Errorf("CurrentVersion = %d, want 2", current.CurrentVersion)
	}
	if current.StoragePath != v2.StoragePath {
		t.Errorf("StoragePath = %q, want %q", current.StoragePath, v2.StoragePath)
	}
	if current.FileSize != v2.FileSize {
		t.Errorf("FileSize = %d, want %d", current.FileSize, v2.FileSize)
	}
}

func TestAppend_EarlierVersionsRemainReadable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doc := env.mustCreateDocument(t, "brief.docx", "user-a", "first draft")

	revisions := []string{"second draft", "third draft"}
	for _, r := range revisions {
		if _, err := env.versionSvc.Append(ctx, doc.ID, strings.NewReader(r), "", "user-a"); err != nil {
			t.Fatalf("Append(%q) error = %v", r, err)
		}
	}

	// Every historical version still round-trips its exact bytes.
	want := map[int]string{1: "first draft", 2: "second draft", 3: "third draft"}
	for number, content := range want {
		v, err := env.versionSvc.Get(ctx, doc.ID, number)
		if err != nil {
			t.Fatalf("Get(v%d) error = %v", number, err)
		}
		got, err := os.ReadFile(v.StoragePath)
		if err != nil {
			t.Fatalf("read v%d bytes: %v", number, err)
		}
		if string(got) != content {
			t.Errorf("v%d bytes = %q, want %q", number, got, content)
		}
		sum := sha256.Sum256([]byte(content))
		if v.ContentHash != hex.EncodeToString(sum[:]) {
			t.Errorf("v%d fingerprint mismatch", number)
		}
	}
}

func TestAppend_LockedByOtherUserRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doc := env.mustCreateDocument(t, "brief.docx", "user-a", "first draft")

	if _, err := env.lockSvc.Checkout(ctx, doc.ID, "user-a"); err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}

	_, err := env.versionSvc.Append(ctx, doc.ID, strings.NewReader("outsider edit"), "", "user-b")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("Append() against foreign lock error = %v, want ErrForbidden", err)
	}

	current, _ := env.docRepo.GetByID(ctx, doc.ID)
	if current.CurrentVersion != 1 {
		t.Errorf("CurrentVersion = %d, want 1", current.CurrentVersion)
	}
}

func TestAppend_ByLockHolderAllowed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doc := env.mustCreateDocument(t, "brief.docx", "user-a", "first draft")

	if _, err := env.lockSvc.Checkout(ctx, doc.ID, "user-a"); err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}

	v2, err := env.versionSvc.Append(ctx, doc.ID, strings.NewReader("holder edit"), "", "user-a")
	if err != nil {
		t.Fatalf("Append() by lock holder error = %v", err)
	}
	if v2.Number != 2 {
		t.Errorf("Number = %d, want 2", v2.Number)
	}
}

func TestAppend_DeletedDocumentRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doc := env.mustCreateDocument(t, "brief.docx", "user-a", "first draft")

	if err := env.docSvc.Delete(ctx, doc.ID, false); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := env.versionSvc.Append(ctx, doc.ID, strings.NewReader("too late"), "", "user-a")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Append() on soft-deleted document error = %v, want ErrNotFound", err)
	}
}

func TestAppend_MissingContentRejected(t *testing.T) {
	env := newTestEnv(t)
	doc := env.mustCreateDocument(t, "brief.docx", "user-a", "first draft")

	_, err := env.versionSvc.Append(context.Background(), doc.ID, nil, "", "user-a")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Append() without content error = %v, want ErrValidation", err)
	}
}

func TestVersionGet_Validation(t *testing.T) {
	env := newTestEnv(t)
	doc := env.mustCreateDocument(t, "brief.docx", "user-a", "first draft")

	if _, err := env.versionSvc.Get(context.Background(), doc.ID, 0); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Get(v0) error = %v, want ErrValidation", err)
	}
	if _, err := env.versionSvc.Get(context.Background(), doc.ID, 99); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get(v99) error = %v, want ErrNotFound", err)
	}
}

func TestVersionList_MissingDocument(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.versionSvc.List(context.Background(), "no-such-doc")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("List() of missing document error = %v, want ErrNotFound", err)
	}
}

func TestVersionList_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doc := env.mustCreateDocument(t, "brief.docx", "user-a", "v1")

	for _, r := range []string{"v2", "v3"} {
		if _, err := env.versionSvc.Append(ctx, doc.ID, strings.NewReader(r), "", "user-a"); err != nil {
			t.Fatalf("Append(%q) error = %v", r, err)
		}
	}

	versions, err := env.versionSvc.List(ctx, doc.ID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(versions) != 3 {
		t.Fatalf("len(versions) = %d, want 3", len(versions))
	}
	for i, v := range versions {
		if want := 3 - i; v.Number != want {
			t.Errorf("versions[%d].Number = %d, want %d", i, v.Number, want)
		}
	}
}

func TestAppend_ConcurrentWritersSerialize(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doc := env.mustCreateDocument(t, "brief.docx", "user-a", "base")

	// Simulate a lost race: the second writer starts from a stale
	// current_version after the first one already advanced it.
	if _, err := env.versionSvc.Append(ctx, doc.ID, strings.NewReader("winner"), "", "user-a"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	advanced, err := env.docRepo.AdvanceVersion(ctx, doc.ID, 1, "/stale/path", 5, doc.UpdatedAt)
	if err != nil {
		t.Fatalf("AdvanceVersion() error = %v", err)
	}
	if advanced {
		t.Error("stale compare-and-increment succeeded, want refusal")
	}

	current, _ := env.docRepo.GetByID(ctx, doc.ID)
	if current.CurrentVersion != 2 {
		t.Errorf("CurrentVersion = %d, want 2", current.CurrentVersion)
	}
}
