package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	models "lexvault/internal/domain/models/docstore"
	docstoreSvc "lexvault/internal/domain/services/docstore"
	"lexvault/internal/httputil"
)

// maxUploadMemory caps how much of a multipart upload is held in memory
// before spilling to temporary files.
const maxUploadMemory = 32 << 20 // 32MB

// DocumentHandler handles document HTTP requests
type DocumentHandler struct {
	docService     docstoreSvc.DocumentService
	versionService docstoreSvc.VersionService
	logger         *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService docstoreSvc.DocumentService, versionService docstoreSvc.VersionService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService:     docService,
		versionService: versionService,
		logger:         logger,
	}
}

// HealthCheck reports service liveness
// GET /health
func (h *DocumentHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateDocument creates a new document with its initial version
// POST /api/documents (multipart: "file" part + metadata fields)
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "file part is required")
		return
	}
	defer file.Close()

	req := &docstoreSvc.CreateDocumentRequest{
		Filename:          header.Filename,
		Title:             r.FormValue("title"),
		Description:       r.FormValue("description"),
		Type:              models.DocumentType(r.FormValue("type")),
		ChangeDescription: r.FormValue("change_description"),
		OwnerID:           userID,
		Content:           file,
	}
	if v := r.FormValue("folder_id"); v != "" {
		req.FolderID = &v
	}
	if v := r.FormValue("case_id"); v != "" {
		req.CaseID = &v
	}
	if v := r.FormValue("access_level"); v != "" {
		level, err := strconv.Atoi(v)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "access_level must be an integer")
			return
		}
		req.AccessLevel = models.AccessLevel(level)
	}

	doc, err := h.docService.Create(r.Context(), req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// GetDocument retrieves a document by ID
// GET /api/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document ID is required")
		return
	}

	doc, err := h.docService.Get(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// UpdateDocument updates document metadata
// PATCH /api/documents/{id}
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document ID is required")
		return
	}

	var req docstoreSvc.UpdateDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.docService.Update(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// DeleteDocument deletes a document (soft by default)
// DELETE /api/documents/{id}?permanent=true
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document ID is required")
		return
	}

	permanent := r.URL.Query().Get("permanent") == "true"

	if err := h.docService.Delete(r.Context(), id, permanent); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListDocuments returns documents matching query filters
// GET /api/documents?folder_id=&case_id=&type=&status=&search=&limit=&offset=
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	docs, err := h.docService.List(r.Context(), filter)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"count":     len(docs),
	})
}

// DownloadDocument streams a version's bytes
// GET /api/documents/{id}/download?version=N (default: current)
func (h *DocumentHandler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document ID is required")
		return
	}

	version := 0
	if v := r.URL.Query().Get("version"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			httputil.RespondError(w, http.StatusBadRequest, "version must be a positive integer")
			return
		}
		version = n
	}

	doc, err := h.docService.Get(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	content, ver, err := h.docService.Download(r.Context(), id, version)
	if err != nil {
		handleError(w, err)
		return
	}
	defer content.Close()

	w.Header().Set("Content-Type", doc.MimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(ver.FileSize, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("ETag", fmt.Sprintf("%q", ver.ContentHash))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, content); err != nil {
		// Headers are gone; nothing to do but log the broken stream.
		h.logger.Error("download stream interrupted", "document_id", id, "version", ver.Number, "error", err)
	}
}

// ListVersions returns every version of a document, newest first
// GET /api/documents/{id}/versions
func (h *DocumentHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document ID is required")
		return
	}

	versions, err := h.versionService.List(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"versions": versions,
		"count":    len(versions),
	})
}

// GetVersion returns one version record
// GET /api/documents/{id}/versions/{n}
func (h *DocumentHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document ID is required")
		return
	}

	number, err := strconv.Atoi(r.PathValue("n"))
	if err != nil || number < 1 {
		httputil.RespondError(w, http.StatusBadRequest, "version number must be a positive integer")
		return
	}

	ver, err := h.versionService.Get(r.Context(), id, number)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, ver)
}

// UploadVersion appends a new version outside the check-out protocol.
// Uploads against a document locked by someone else are refused.
// POST /api/documents/{id}/versions (multipart)
func (h *DocumentHandler) UploadVersion(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document ID is required")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "file part is required")
		return
	}
	defer file.Close()

	ver, err := h.versionService.Append(r.Context(), id, file, r.FormValue("change_description"), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, ver)
}

// CheckoutDocument acquires the exclusive edit lock
// POST /api/documents/{id}/checkout
func (h *DocumentHandler) CheckoutDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document ID is required")
		return
	}

	doc, err := h.docService.Checkout(r.Context(), id, userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// CheckinDocument releases the lock, optionally recording new content
// POST /api/documents/{id}/checkin (multipart, "file" part optional)
func (h *DocumentHandler) CheckinDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document ID is required")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}
	defer r.MultipartForm.RemoveAll()

	req := &docstoreSvc.CheckinRequest{
		DocumentID:        id,
		UserID:            userID,
		ChangeDescription: r.FormValue("change_description"),
	}

	// A check-in without a file just releases the lock.
	if file, _, err := r.FormFile("file"); err == nil {
		defer file.Close()
		req.Content = file
	}

	doc, err := h.docService.Checkin(r.Context(), req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// ForceUnlock clears another user's lock after an authorization check
// POST /api/documents/{id}/unlock
func (h *DocumentHandler) ForceUnlock(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document ID is required")
		return
	}

	if err := h.docService.ForceUnlock(r.Context(), id, userID); err != nil {
		handleError(w, err)
		return
	}

	doc, err := h.docService.Get(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// filterFromQuery builds a DocumentFilter from list query parameters.
func filterFromQuery(r *http.Request) (*models.DocumentFilter, error) {
	q := r.URL.Query()
	filter := &models.DocumentFilter{
		Search: q.Get("search"),
	}

	if v := q.Get("folder_id"); v != "" {
		filter.FolderID = &v
	}
	if v := q.Get("case_id"); v != "" {
		filter.CaseID = &v
	}
	if v := q.Get("type"); v != "" {
		t := models.DocumentType(v)
		filter.Type = &t
	}
	if v := q.Get("status"); v != "" {
		s := models.DocumentStatus(v)
		filter.Status = &s
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("limit must be an integer")
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("offset must be an integer")
		}
		filter.Offset = n
	}

	return filter, nil
}
