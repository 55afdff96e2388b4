// internal/app/features/library/documents.go
package library

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dalemusser/dealdocs/internal/app/store/audit"
	documentstore "github.com/dalemusser/dealdocs/internal/app/store/document"
	"github.com/dalemusser/dealdocs/internal/app/system/auth"
	"github.com/dalemusser/dealdocs/internal/app/system/htmlsanitize"
	"github.com/dalemusser/dealdocs/internal/app/system/jsonutil"
	"github.com/dalemusser/dealdocs/internal/app/system/timeouts"
	"github.com/dalemusser/dealdocs/internal/domain/catalog"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// listDocuments returns documents matching the query parameters:
// ?folder= scopes to a folder's descendant closure, ?vehicle= and
// ?deal= scope by ownership, ?search= filters by folded name.
func (h *Handler) listDocuments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	q := r.URL.Query()

	filter := catalog.DocumentFilter{
		Search: strings.TrimSpace(q.Get("search")),
	}

	if folderStr := q.Get("folder"); folderStr != "" {
		folderID, err := primitive.ObjectIDFromHex(folderStr)
		if err != nil {
			jsonutil.BadRequest(w, "invalid folder id")
			return
		}
		if err := h.engine.Refresh(ctx); err != nil {
			h.errLog.Log(r, "failed to refresh folder tree", err)
			jsonutil.InternalError(w, "failed to load documents")
			return
		}
		scope := h.engine.DescendantIDs(folderID)
		filter.ScopeToFolders = true
		for id := range scope {
			filter.FolderIDs = append(filter.FolderIDs, id)
		}
	}

	if vehicleStr := q.Get("vehicle"); vehicleStr != "" {
		id, err := primitive.ObjectIDFromHex(vehicleStr)
		if err != nil {
			jsonutil.BadRequest(w, "invalid vehicle id")
			return
		}
		filter.VehicleID = &id
	}

	if dealStr := q.Get("deal"); dealStr != "" {
		id, err := primitive.ObjectIDFromHex(dealStr)
		if err != nil {
			jsonutil.BadRequest(w, "invalid deal id")
			return
		}
		filter.DealID = &id
	}

	docs, err := h.engine.LoadDocuments(ctx, filter)
	if err != nil {
		h.errLog.Log(r, "failed to list documents", err)
		jsonutil.InternalError(w, "failed to load documents")
		return
	}

	jsonutil.OK(w, docs)
}

// dataRoom returns a deal's documents for data-room browsing.
func (h *Handler) dataRoom(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	dealID, ok := pathID(r)
	if !ok {
		jsonutil.BadRequest(w, "invalid deal id")
		return
	}

	deal, err := h.deals.GetByID(ctx, dealID)
	if err != nil {
		jsonutil.NotFound(w, "deal not found")
		return
	}

	docs, err := h.engine.LoadDocuments(ctx, catalog.DocumentFilter{DealID: &dealID})
	if err != nil {
		h.errLog.Log(r, "failed to list deal documents", err)
		jsonutil.InternalError(w, "failed to load documents")
		return
	}

	jsonutil.OK(w, map[string]any{
		"deal":      deal,
		"documents": docs,
	})
}

// download streams a document from storage.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	doc, err := h.docStore.GetByID(ctx, id)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	reader, err := h.fileStorage.Get(ctx, doc.StoragePath)
	if err != nil {
		h.errLog.Log(r, "failed to get document from storage", err)
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Name))

	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("failed to stream document",
			zap.String("path", doc.StoragePath),
			zap.Error(err))
	}
}

// upload handles a multipart document upload. The blob goes to
// storage first; if the record insert fails the blob is removed.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()
	actor, _ := auth.CurrentUser(r)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.errLog.Log(r, "failed to parse multipart form", err)
		jsonutil.Error(w, http.StatusRequestEntityTooLarge, "file too large (max 32MB)")
		return
	}

	folderID, ok := optionalIDField(r, "folder_id")
	if !ok {
		jsonutil.BadRequest(w, "invalid folder id")
		return
	}
	vehicleID, ok := optionalIDField(r, "vehicle_id")
	if !ok {
		jsonutil.BadRequest(w, "invalid vehicle id")
		return
	}
	dealID, ok := optionalIDField(r, "deal_id")
	if !ok {
		jsonutil.BadRequest(w, "invalid deal id")
		return
	}

	if folderID != nil {
		if _, err := h.folderStore.GetByID(ctx, *folderID); err != nil {
			jsonutil.NotFound(w, "folder not found")
			return
		}
	}

	uploadedFile, header, err := r.FormFile("file")
	if err != nil {
		jsonutil.BadRequest(w, "please select a file to upload")
		return
	}
	defer uploadedFile.Close()

	description := htmlsanitize.Sanitize(strings.TrimSpace(r.FormValue("description")))

	var tags []string
	for _, t := range strings.Split(r.FormValue("tags"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	// Storage path: documents/YYYY/MM/uuid-prefix+ext
	now := time.Now().UTC()
	ext := filepath.Ext(header.Filename)
	uniqueName := fmt.Sprintf("%s%s", uuid.New().String()[:8], ext)
	storagePath := fmt.Sprintf("documents/%04d/%02d/%s", now.Year(), int(now.Month()), uniqueName)

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	opts := &storage.PutOptions{
		ContentType: contentType,
	}
	if err := h.fileStorage.Put(ctx, storagePath, uploadedFile, opts); err != nil {
		h.errLog.Log(r, "failed to upload file", err)
		jsonutil.InternalError(w, "failed to upload file")
		return
	}

	input := documentstore.CreateInput{
		FolderID:    folderID,
		VehicleID:   vehicleID,
		DealID:      dealID,
		Name:        header.Filename,
		StoragePath: storagePath,
		Size:        header.Size,
		ContentType: contentType,
		Tags:        tags,
		Description: description,
		CreatedByID: actor.UserID(),
	}

	doc, err := h.docStore.Create(ctx, input)
	if err != nil {
		// Clean up uploaded blob on DB error
		_ = h.fileStorage.Delete(ctx, storagePath)
		h.errLog.Log(r, "failed to create document record", err)
		jsonutil.InternalError(w, "failed to save document")
		return
	}

	if err := h.folderStore.IncDocumentCount(ctx, folderID, 1); err != nil {
		h.logger.Warn("failed to bump folder document count",
			zap.Error(err))
	}

	actorID := actor.UserID()
	h.auditLogger.LogDocumentEvent(r, &actorID, &doc.ID, audit.EventDocumentUpload, map[string]string{
		"name": doc.Name,
	})

	jsonutil.Created(w, doc)
}

// renameDocument renames a document. The body's name is compared to
// the stored name; an equal name is a no-op that still succeeds.
func (h *Handler) renameDocument(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	actor, _ := auth.CurrentUser(r)

	id, ok := pathID(r)
	if !ok {
		jsonutil.BadRequest(w, "invalid document id")
		return
	}

	var req renameRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "invalid request body")
		return
	}

	doc, err := h.docStore.GetByID(ctx, id)
	if err != nil {
		jsonutil.NotFound(w, "document not found")
		return
	}

	if err := h.engine.RenameDocument(ctx, id, doc.Name, req.Name); err != nil {
		h.writeCatalogError(w, r, err)
		return
	}

	actorID := actor.UserID()
	h.auditLogger.LogDocumentEvent(r, &actorID, &id, audit.EventDocumentUpdated, map[string]string{
		"name": strings.TrimSpace(req.Name),
	})

	jsonutil.NoContent(w)
}

// moveDocument moves a document to another folder, or to the root
// when the body carries no folder id.
func (h *Handler) moveDocument(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	actor, _ := auth.CurrentUser(r)

	id, ok := pathID(r)
	if !ok {
		jsonutil.BadRequest(w, "invalid document id")
		return
	}

	var req moveRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "invalid request body")
		return
	}

	targetID, ok := parseOptionalID(req.FolderID)
	if !ok {
		jsonutil.BadRequest(w, "invalid folder id")
		return
	}
	if targetID != nil {
		if _, err := h.folderStore.GetByID(ctx, *targetID); err != nil {
			jsonutil.NotFound(w, "target folder not found")
			return
		}
	}

	if err := h.engine.MoveDocument(ctx, id, targetID); err != nil {
		h.writeCatalogError(w, r, err)
		return
	}

	details := map[string]string{}
	if targetID != nil {
		details["target_folder_id"] = targetID.Hex()
	}
	actorID := actor.UserID()
	h.auditLogger.LogDocumentEvent(r, &actorID, &id, audit.EventDocumentMoved, details)

	jsonutil.NoContent(w)
}

// updateTags replaces a document's tag set.
func (h *Handler) updateTags(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	actor, _ := auth.CurrentUser(r)

	id, ok := pathID(r)
	if !ok {
		jsonutil.BadRequest(w, "invalid document id")
		return
	}

	var req tagsRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "invalid request body")
		return
	}

	tags := make([]string, 0, len(req.Tags))
	for _, t := range req.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	if err := h.engine.UpdateDocumentTags(ctx, id, tags); err != nil {
		h.writeCatalogError(w, r, err)
		return
	}

	actorID := actor.UserID()
	h.auditLogger.LogDocumentEvent(r, &actorID, &id, audit.EventDocumentUpdated, map[string]string{
		"tags": strings.Join(tags, ","),
	})

	jsonutil.NoContent(w)
}

// deleteDocument deletes a document record and its stored blob.
func (h *Handler) deleteDocument(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	actor, _ := auth.CurrentUser(r)

	id, ok := pathID(r)
	if !ok {
		jsonutil.BadRequest(w, "invalid document id")
		return
	}

	doc, err := h.docStore.GetByID(ctx, id)
	if err != nil {
		jsonutil.NotFound(w, "document not found")
		return
	}

	if err := h.engine.DeleteDocument(ctx, id); err != nil {
		h.writeCatalogError(w, r, err)
		return
	}

	if err := h.fileStorage.Delete(ctx, doc.StoragePath); err != nil {
		h.logger.Warn("failed to delete blob",
			zap.String("path", doc.StoragePath),
			zap.Error(err))
	}

	actorID := actor.UserID()
	h.auditLogger.LogDocumentEvent(r, &actorID, &id, audit.EventDocumentDeleted, map[string]string{
		"name": doc.Name,
	})

	jsonutil.NoContent(w)
}

// bulkMove moves a set of documents one at a time, returning per-item
// accounting. Failures do not stop the batch.
func (h *Handler) bulkMove(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()
	actor, _ := auth.CurrentUser(r)

	var req bulkRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "invalid request body")
		return
	}

	ids, ok := parseIDList(req.DocumentIDs)
	if !ok {
		jsonutil.BadRequest(w, "invalid document id")
		return
	}

	targetID, ok := parseOptionalID(req.FolderID)
	if !ok {
		jsonutil.BadRequest(w, "invalid folder id")
		return
	}
	if targetID != nil {
		if _, err := h.folderStore.GetByID(ctx, *targetID); err != nil {
			jsonutil.NotFound(w, "target folder not found")
			return
		}
	}

	result := h.engine.BulkMoveDocuments(ctx, ids, targetID, nil)

	h.navFor(r).ClearSelection()

	actorID := actor.UserID()
	h.auditLogger.LogDocumentEvent(r, &actorID, nil, audit.EventBulkMove, map[string]string{
		"attempted": fmt.Sprintf("%d", result.Attempted),
		"succeeded": fmt.Sprintf("%d", result.Succeeded),
		"failed":    fmt.Sprintf("%d", result.Failed),
	})

	jsonutil.OK(w, result)
}

// bulkDelete deletes a set of documents one at a time. Blobs for
// successfully deleted records are removed best-effort.
func (h *Handler) bulkDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()
	actor, _ := auth.CurrentUser(r)

	var req bulkRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "invalid request body")
		return
	}

	ids, ok := parseIDList(req.DocumentIDs)
	if !ok {
		jsonutil.BadRequest(w, "invalid document id")
		return
	}

	// Fetch storage paths up front; the records are gone after delete.
	paths := make(map[primitive.ObjectID]string, len(ids))
	for _, id := range ids {
		if doc, err := h.docStore.GetByID(ctx, id); err == nil {
			paths[id] = doc.StoragePath
		}
	}

	result := h.engine.BulkDeleteDocuments(ctx, ids, nil)

	failed := make(map[primitive.ObjectID]bool, len(result.FailedIDs))
	for _, id := range result.FailedIDs {
		failed[id] = true
	}
	for id, path := range paths {
		if failed[id] {
			continue
		}
		if err := h.fileStorage.Delete(ctx, path); err != nil {
			h.logger.Warn("failed to delete blob",
				zap.String("path", path),
				zap.Error(err))
		}
	}

	h.navFor(r).ClearSelection()

	actorID := actor.UserID()
	h.auditLogger.LogDocumentEvent(r, &actorID, nil, audit.EventBulkDelete, map[string]string{
		"attempted": fmt.Sprintf("%d", result.Attempted),
		"succeeded": fmt.Sprintf("%d", result.Succeeded),
		"failed":    fmt.Sprintf("%d", result.Failed),
	})

	jsonutil.OK(w, result)
}

// optionalIDField parses a form field as an ObjectID. Absent or empty
// fields return (nil, true); malformed values return (nil, false).
func optionalIDField(r *http.Request, field string) (*primitive.ObjectID, bool) {
	return parseOptionalID(r.FormValue(field))
}

func parseOptionalID(s string) (*primitive.ObjectID, bool) {
	if s == "" {
		return nil, true
	}
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return nil, false
	}
	return &id, true
}

func parseIDList(raw []string) ([]primitive.ObjectID, bool) {
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, s := range raw {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}
