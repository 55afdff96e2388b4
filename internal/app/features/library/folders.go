// internal/app/features/library/folders.go
package library

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/dealdocs/internal/app/store/audit"
	folderstore "github.com/dalemusser/dealdocs/internal/app/store/folder"
	"github.com/dalemusser/dealdocs/internal/app/system/auth"
	"github.com/dalemusser/dealdocs/internal/app/system/jsonutil"
	"github.com/dalemusser/dealdocs/internal/app/system/timeouts"
	"github.com/dalemusser/dealdocs/internal/domain/catalog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// tree returns the folder tree with the session's expansion state. An
// optional ?query= filters the tree to matching chains and
// auto-expands the ancestors of every match for this session.
func (h *Handler) tree(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	nav := h.navFor(r)

	if err := h.engine.Refresh(ctx); err != nil {
		h.errLog.Log(r, "failed to refresh folder tree", err)
		jsonutil.InternalError(w, "failed to load folders")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		nav.SetSearchExpansion(nil)
		jsonutil.OK(w, TreeVM{Nodes: buildTreeVM(h.engine.Tree(), nav)})
		return
	}

	filtered, expand := h.engine.Search(query)
	nav.SetSearchExpansion(expand)
	jsonutil.OK(w, TreeVM{Nodes: buildTreeVM(filtered, nav), Query: query})
}

// folderContents returns a folder with its breadcrumbs, subfolders,
// and the documents in its descendant closure.
func (h *Handler) folderContents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	id, ok := pathID(r)
	if !ok {
		jsonutil.BadRequest(w, "invalid folder id")
		return
	}

	folder, err := h.folderStore.GetByID(ctx, id)
	if err != nil {
		jsonutil.NotFound(w, "folder not found")
		return
	}

	breadcrumbs, err := h.folderStore.GetAncestors(ctx, id)
	if err != nil {
		h.errLog.Log(r, "failed to load folder ancestors", err)
		jsonutil.InternalError(w, "failed to load folder")
		return
	}

	subfolders, err := h.folderStore.ListByParent(ctx, &id, folderstore.ListOptions{})
	if err != nil {
		h.errLog.Log(r, "failed to list subfolders", err)
		jsonutil.InternalError(w, "failed to load folder")
		return
	}

	if err := h.engine.Refresh(ctx); err != nil {
		h.errLog.Log(r, "failed to refresh folder tree", err)
		jsonutil.InternalError(w, "failed to load folder")
		return
	}

	scope := h.engine.DescendantIDs(id)
	folderIDs := make([]primitive.ObjectID, 0, len(scope))
	for fid := range scope {
		folderIDs = append(folderIDs, fid)
	}

	docs, err := h.engine.LoadDocuments(ctx, catalog.DocumentFilter{
		FolderIDs:      folderIDs,
		ScopeToFolders: true,
	})
	if err != nil {
		h.errLog.Log(r, "failed to list documents", err)
		jsonutil.InternalError(w, "failed to load folder")
		return
	}

	jsonutil.OK(w, FolderContentsVM{
		Folder:      *folder,
		Deletable:   folder.Deletable(),
		Breadcrumbs: breadcrumbs,
		Subfolders:  subfolders,
		Documents:   docs,
	})
}

// listVehicles returns all vehicles with their deals.
func (h *Handler) listVehicles(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	vehicles, err := h.vehicles.ListAll(ctx)
	if err != nil {
		h.errLog.Log(r, "failed to list vehicles", err)
		jsonutil.InternalError(w, "failed to load vehicles")
		return
	}

	out := make([]VehicleVM, 0, len(vehicles))
	for _, v := range vehicles {
		deals, err := h.deals.ListByVehicle(ctx, v.ID)
		if err != nil {
			h.errLog.Log(r, "failed to list deals", err)
			jsonutil.InternalError(w, "failed to load vehicles")
			return
		}
		out = append(out, VehicleVM{Vehicle: v, Deals: deals})
	}

	jsonutil.OK(w, out)
}

// createFolder creates a custom folder under an optional parent.
func (h *Handler) createFolder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	actor, _ := auth.CurrentUser(r)

	var req createFolderRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "invalid request body")
		return
	}

	var parentID *primitive.ObjectID
	if req.ParentID != "" {
		id, err := primitive.ObjectIDFromHex(req.ParentID)
		if err != nil {
			jsonutil.BadRequest(w, "invalid parent id")
			return
		}
		parentID = &id
	}

	folder, err := h.engine.CreateFolder(ctx, req.Name, parentID, actor.UserID())
	if err != nil {
		h.writeCatalogError(w, r, err)
		return
	}

	actorID := actor.UserID()
	h.auditLogger.LogFolderEvent(r, &actorID, &folder.ID, audit.EventFolderCreated, map[string]string{
		"name": folder.Name,
		"path": folder.Path,
	})

	jsonutil.Created(w, folder)
}

// renameFolder renames a folder. Renaming to the current name is a
// no-op and succeeds without touching the store.
func (h *Handler) renameFolder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	actor, _ := auth.CurrentUser(r)

	id, ok := pathID(r)
	if !ok {
		jsonutil.BadRequest(w, "invalid folder id")
		return
	}

	var req renameRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "invalid request body")
		return
	}

	if err := h.engine.RenameFolder(ctx, id, req.Name); err != nil {
		h.writeCatalogError(w, r, err)
		return
	}

	actorID := actor.UserID()
	h.auditLogger.LogFolderEvent(r, &actorID, &id, audit.EventFolderRenamed, map[string]string{
		"name": strings.TrimSpace(req.Name),
	})

	jsonutil.NoContent(w)
}

// deleteFolder deletes an empty custom folder. Vehicle roots,
// category folders, and folders still holding documents are refused.
func (h *Handler) deleteFolder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()
	actor, _ := auth.CurrentUser(r)

	id, ok := pathID(r)
	if !ok {
		jsonutil.BadRequest(w, "invalid folder id")
		return
	}

	// The delete guard reads the snapshot; refresh so it sees current
	// folder types and document counts.
	if err := h.engine.Refresh(ctx); err != nil {
		h.errLog.Log(r, "failed to refresh folder tree", err)
		jsonutil.InternalError(w, "failed to delete folder")
		return
	}

	// Gather documents in the subtree first so their blobs can be
	// cleaned up after the cascade removes the records.
	scope := h.engine.DescendantIDs(id)
	folderIDs := make([]primitive.ObjectID, 0, len(scope))
	for fid := range scope {
		folderIDs = append(folderIDs, fid)
	}
	docs, err := h.engine.LoadDocuments(ctx, catalog.DocumentFilter{
		FolderIDs:      folderIDs,
		ScopeToFolders: true,
	})
	if err != nil {
		h.errLog.Log(r, "failed to list documents for cleanup", err)
		jsonutil.InternalError(w, "failed to delete folder")
		return
	}

	if err := h.engine.DeleteFolder(ctx, id); err != nil {
		h.writeCatalogError(w, r, err)
		return
	}

	for _, doc := range docs {
		if err := h.fileStorage.Delete(ctx, doc.StoragePath); err != nil {
			h.logger.Warn("failed to delete blob",
				zap.String("path", doc.StoragePath),
				zap.Error(err))
		}
	}

	h.logger.Info("folder deleted",
		zap.String("folder_id", id.Hex()),
		zap.String("actor", actor.ID))

	actorID := actor.UserID()
	h.auditLogger.LogFolderEvent(r, &actorID, &id, audit.EventFolderDeleted, nil)

	jsonutil.NoContent(w)
}
