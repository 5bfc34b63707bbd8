package docstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"lexvault/internal/domain"
	models "lexvault/internal/domain/models/docstore"
	"lexvault/internal/domain/repositories"
	docstoreSvc "lexvault/internal/domain/services/docstore"
	"lexvault/internal/storage"
)

// fakeTxManager runs the function directly; the in-memory fakes apply
// writes immediately, which is enough for single-goroutine tests.
type fakeTxManager struct{}

var _ repositories.TransactionManager = (*fakeTxManager)(nil)

func (m *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

// fakeDocumentRepo is an in-memory DocumentRepository with the same
// conditional-update semantics as the SQL implementation.
type fakeDocumentRepo struct {
	mu   sync.Mutex
	docs map[string]models.Document
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[string]models.Document)}
}

func (r *fakeDocumentRepo) Create(ctx context.Context, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[doc.ID]; ok {
		return &domain.ConflictError{Message: "duplicate document", ResourceType: "document", ResourceID: doc.ID}
	}
	r.docs[doc.ID] = *doc
	return nil
}

func (r *fakeDocumentRepo) GetByID(ctx context.Context, id string) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	copied := doc
	return &copied, nil
}

func (r *fakeDocumentRepo) UpdateMetadata(ctx context.Context, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.docs[doc.ID]
	if !ok {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
	}
	stored.Title = doc.Title
	stored.Description = doc.Description
	stored.Type = doc.Type
	stored.Status = doc.Status
	stored.FolderID = doc.FolderID
	stored.CaseID = doc.CaseID
	stored.AccessLevel = doc.AccessLevel
	stored.UpdatedAt = doc.UpdatedAt
	r.docs[doc.ID] = stored
	return nil
}

func (r *fakeDocumentRepo) List(ctx context.Context, filter *models.DocumentFilter) ([]models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Document
	for _, doc := range r.docs {
		if filter.Status != nil {
			if doc.Status != *filter.Status {
				continue
			}
		} else if doc.Status == models.StatusDeleted {
			continue
		}
		if filter.FolderID != nil && (doc.FolderID == nil || *doc.FolderID != *filter.FolderID) {
			continue
		}
		if filter.CaseID != nil && (doc.CaseID == nil || *doc.CaseID != *filter.CaseID) {
			continue
		}
		if filter.Type != nil && doc.Type != *filter.Type {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			haystack := strings.ToLower(doc.Title + " " + doc.Filename + " " + doc.Description)
			if !strings.Contains(haystack, needle) {
				continue
			}
		}
		out = append(out, doc)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *fakeDocumentRepo) ListByFolder(ctx context.Context, folderID string) ([]models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Document
	for _, doc := range r.docs {
		if doc.FolderID != nil && *doc.FolderID == folderID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) SetStatus(ctx context.Context, id string, status models.DocumentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	doc.Status = status
	doc.UpdatedAt = time.Now()
	r.docs[id] = doc
	return nil
}

func (r *fakeDocumentRepo) DeleteRow(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, id)
	return nil
}

func (r *fakeDocumentRepo) AcquireLock(ctx context.Context, id, userID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok || doc.LockedBy != nil || doc.Status != models.StatusActive {
		return false, nil
	}
	doc.LockedBy = &userID
	doc.LockedAt = &at
	doc.Status = models.StatusLocked
	r.docs[id] = doc
	return true, nil
}

func (r *fakeDocumentRepo) ReleaseLock(ctx context.Context, id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok || doc.LockedBy == nil || *doc.LockedBy != userID {
		return false, nil
	}
	doc.LockedBy = nil
	doc.LockedAt = nil
	if doc.Status == models.StatusLocked {
		doc.Status = models.StatusActive
	}
	r.docs[id] = doc
	return true, nil
}

func (r *fakeDocumentRepo) ForceReleaseLock(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	if doc.LockedBy != nil {
		doc.LockedBy = nil
		doc.LockedAt = nil
		if doc.Status == models.StatusLocked {
			doc.Status = models.StatusActive
		}
		r.docs[id] = doc
	}
	return nil
}

func (r *fakeDocumentRepo) AdvanceVersion(ctx context.Context, id string, fromVersion int, storagePath string, fileSize int64, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok || doc.CurrentVersion != fromVersion {
		return false, nil
	}
	doc.CurrentVersion = fromVersion + 1
	doc.StoragePath = storagePath
	doc.FileSize = fileSize
	doc.UpdatedAt = at
	r.docs[id] = doc
	return true, nil
}

// fakeVersionRepo is an in-memory VersionRepository.
type fakeVersionRepo struct {
	mu       sync.Mutex
	versions map[string][]models.DocumentVersion
}

func newFakeVersionRepo() *fakeVersionRepo {
	return &fakeVersionRepo{versions: make(map[string][]models.DocumentVersion)}
}

func (r *fakeVersionRepo) Create(ctx context.Context, version *models.DocumentVersion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.versions[version.DocumentID] {
		if v.Number == version.Number {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("version %d already exists", version.Number),
				ResourceType: "document_version",
				ResourceID:   version.DocumentID,
			}
		}
	}
	r.versions[version.DocumentID] = append(r.versions[version.DocumentID], *version)
	return nil
}

func (r *fakeVersionRepo) GetByNumber(ctx context.Context, documentID string, number int) (*models.DocumentVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.versions[documentID] {
		if v.Number == number {
			copied := v
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("version %d of document %s: %w", number, documentID, domain.ErrNotFound)
}

func (r *fakeVersionRepo) ListByDocument(ctx context.Context, documentID string) ([]models.DocumentVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]models.DocumentVersion(nil), r.versions[documentID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	return out, nil
}

func (r *fakeVersionRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.versions, documentID)
	return nil
}

// fakeFolderRepo is an in-memory FolderRepository.
type fakeFolderRepo struct {
	mu      sync.Mutex
	folders map[string]models.Folder
}

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{folders: make(map[string]models.Folder)}
}

func (r *fakeFolderRepo) Create(ctx context.Context, folder *models.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.folders[folder.ID] = *folder
	return nil
}

func (r *fakeFolderRepo) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	folder, ok := r.folders[id]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	copied := folder
	return &copied, nil
}

func (r *fakeFolderRepo) ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Folder
	for _, folder := range r.folders {
		switch {
		case parentID == nil && folder.ParentID == nil:
			out = append(out, folder)
		case parentID != nil && folder.ParentID != nil && *folder.ParentID == *parentID:
			out = append(out, folder)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeFolderRepo) CountChildren(ctx context.Context, id string) (int, error) {
	children, _ := r.ListChildren(ctx, &id)
	return len(children), nil
}

func (r *fakeFolderRepo) Update(ctx context.Context, folder *models.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.folders[folder.ID]; !ok {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}
	r.folders[folder.ID] = *folder
	return nil
}

func (r *fakeFolderRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.folders, id)
	return nil
}

// fakeAuthorizer returns a fixed decision.
type fakeAuthorizer struct {
	decision docstoreSvc.AccessDecision
}

func (a *fakeAuthorizer) AuthorizeForceUnlock(ctx context.Context, actorID, documentID string) (docstoreSvc.AccessDecision, error) {
	return a.decision, nil
}

// testEnv wires the full service graph over in-memory repositories and a
// real filesystem blob store rooted in a temp directory.
type testEnv struct {
	docRepo     *fakeDocumentRepo
	versionRepo *fakeVersionRepo
	folderRepo  *fakeFolderRepo
	authorizer  *fakeAuthorizer
	blobs       storage.BlobStore
	baseDir     string

	versionSvc docstoreSvc.VersionService
	lockSvc    docstoreSvc.LockService
	docSvc     docstoreSvc.DocumentService
	folderSvc  docstoreSvc.FolderService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mimes, err := NewMimeRegistry()
	if err != nil {
		t.Fatalf("NewMimeRegistry() error = %v", err)
	}

	env := &testEnv{
		docRepo:     newFakeDocumentRepo(),
		versionRepo: newFakeVersionRepo(),
		folderRepo:  newFakeFolderRepo(),
		authorizer:  &fakeAuthorizer{decision: docstoreSvc.AccessDecision{Allowed: true}},
		blobs:       storage.NewFileStore(),
		baseDir:     t.TempDir(),
	}
	tx := &fakeTxManager{}

	env.versionSvc = NewVersionService(env.docRepo, env.versionRepo, tx, env.blobs, env.baseDir, logger)
	env.lockSvc = NewLockService(env.docRepo, env.versionSvc, logger)
	env.docSvc = NewDocumentService(
		env.docRepo, env.versionRepo, env.folderRepo,
		env.versionSvc, env.lockSvc, env.authorizer,
		tx, env.blobs, mimes, logger,
	)
	env.folderSvc = NewFolderService(env.folderRepo, env.docRepo, env.docSvc, logger)

	return env
}

// mustCreateDocument seeds a document through the real facade.
func (e *testEnv) mustCreateDocument(t *testing.T, filename, owner, content string) *models.Document {
	t.Helper()
	doc, err := e.docSvc.Create(context.Background(), &docstoreSvc.CreateDocumentRequest{
		Filename: filename,
		OwnerID:  owner,
		Content:  strings.NewReader(content),
	})
	if err != nil {
		t.Fatalf("create document %s: %v", filename, err)
	}
	return doc
}

// mustCreateFolder seeds a folder through the real service.
func (e *testEnv) mustCreateFolder(t *testing.T, name string, parentID *string) *models.Folder {
	t.Helper()
	folder, err := e.folderSvc.Create(context.Background(), &docstoreSvc.CreateFolderRequest{
		Name:     name,
		ParentID: parentID,
		OwnerID:  "user-owner",
	})
	if err != nil {
		t.Fatalf("create folder %s: %v", name, err)
	}
	return folder
}
