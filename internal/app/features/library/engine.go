// Package library provides the document library feature: the folder
// hierarchy engine and its HTTP surface.
package library

import (
	"context"
	"strings"
	"sync"

	"github.com/dalemusser/dealdocs/internal/app/system/hierarchy"
	"github.com/dalemusser/dealdocs/internal/domain/catalog"
	"github.com/dalemusser/dealdocs/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Engine owns the folder tree snapshot and runs every mutation through
// the catalog. The tree is immutable between refreshes: a mutation
// never patches nodes in place, it completes against the catalog and
// then rebuilds the whole snapshot from a fresh folder list.
type Engine struct {
	cat    catalog.Catalog
	logger *zap.Logger

	mu      sync.RWMutex
	folders []models.Folder
	tree    []*hierarchy.Node

	// docs is the currently displayed document listing, the target of
	// optimistic removal on moves and deletes.
	docs []models.Document
}

// NewEngine creates an Engine over the given catalog. Call Refresh
// before first use to load the folder snapshot.
func NewEngine(cat catalog.Catalog, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cat:    cat,
		logger: logger,
	}
}

// Refresh reloads the flat folder list and rebuilds the tree snapshot.
func (e *Engine) Refresh(ctx context.Context) error {
	folders, err := e.cat.ListFolders(ctx)
	if err != nil {
		return err
	}
	tree := hierarchy.Build(folders)

	e.mu.Lock()
	e.folders = folders
	e.tree = tree
	e.mu.Unlock()

	e.logger.Debug("folder snapshot refreshed", zap.Int("folders", len(folders)))
	return nil
}

// Tree returns the current tree snapshot. Callers must treat the
// returned nodes as read-only.
func (e *Engine) Tree() []*hierarchy.Node {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tree
}

// Folders returns the current flat folder snapshot.
func (e *Engine) Folders() []models.Folder {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.folders
}

// FolderByID looks up a folder in the snapshot.
func (e *Engine) FolderByID(id primitive.ObjectID) (*models.Folder, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for i := range e.folders {
		if e.folders[i].ID == id {
			f := e.folders[i]
			return &f, true
		}
	}
	return nil, false
}

// DescendantIDs returns the descendant closure of a folder, including
// the folder itself, computed from the snapshot.
func (e *Engine) DescendantIDs(id primitive.ObjectID) map[primitive.ObjectID]struct{} {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return hierarchy.DescendantIDs(id, e.folders)
}

// Search filters the snapshot tree by query and reports the ancestor
// ids to force-expand so every match stays visible.
func (e *Engine) Search(query string) ([]*hierarchy.Node, map[primitive.ObjectID]struct{}) {
	e.mu.RLock()
	tree := e.tree
	e.mu.RUnlock()

	return hierarchy.Filter(tree, query), hierarchy.ExpandForQuery(tree, query)
}

// LoadDocuments fetches a document listing and caches it as the
// currently displayed list.
func (e *Engine) LoadDocuments(ctx context.Context, filter catalog.DocumentFilter) ([]models.Document, error) {
	docs, err := e.cat.ListDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.docs = docs
	e.mu.Unlock()
	return docs, nil
}

// Documents returns the currently displayed document listing.
func (e *Engine) Documents() []models.Document {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.docs
}

// CreateFolder validates the name locally, creates the folder through
// the catalog and refreshes the snapshot. There is no optimistic
// insert: the catalog assigns the id and computed path.
func (e *Engine) CreateFolder(ctx context.Context, name string, parentID *primitive.ObjectID, createdBy primitive.ObjectID) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &catalog.ValidationError{Field: "name", Reason: "folder name is required"}
	}

	folder, err := e.cat.CreateFolder(ctx, name, parentID, createdBy)
	if err != nil {
		return nil, err
	}
	if err := e.Refresh(ctx); err != nil {
		return folder, err
	}
	return folder, nil
}

// RenameFolder renames a folder. Renaming to the current name is a
// no-op that never reaches the catalog.
func (e *Engine) RenameFolder(ctx context.Context, id primitive.ObjectID, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return &catalog.ValidationError{Field: "name", Reason: "folder name is required"}
	}

	if current, ok := e.FolderByID(id); ok && current.Name == newName {
		return nil
	}

	if err := e.cat.RenameFolder(ctx, id, newName); err != nil {
		return err
	}
	return e.Refresh(ctx)
}

// RenameDocument renames a document. currentName comes from the
// caller's displayed row; renaming to the same name is a no-op.
func (e *Engine) RenameDocument(ctx context.Context, id primitive.ObjectID, currentName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return &catalog.ValidationError{Field: "name", Reason: "document name is required"}
	}
	if newName == currentName {
		return nil
	}

	return e.cat.UpdateDocument(ctx, id, catalog.DocumentUpdate{Name: &newName})
}

// DeleteFolder deletes a folder after the local guard: only custom
// folders holding no documents may go. The guard rejects before any
// catalog call. Subtree deletion is the catalog's cascade; the engine
// never recurses.
func (e *Engine) DeleteFolder(ctx context.Context, id primitive.ObjectID) error {
	folder, ok := e.FolderByID(id)
	if !ok {
		return &catalog.NotFoundError{Kind: "folder", ID: id.Hex()}
	}
	if !folder.Deletable() {
		if folder.FolderType != models.FolderTypeCustom {
			return &catalog.ValidationError{Field: "folder_type", Reason: "only custom folders can be deleted"}
		}
		return &catalog.ValidationError{Field: "document_count", Reason: "folder is not empty"}
	}

	if err := e.cat.DeleteFolder(ctx, id); err != nil {
		return err
	}
	return e.Refresh(ctx)
}

// MoveDocument moves a document to targetFolderID (nil moves it to
// root). The document is removed from the displayed listing before
// the catalog call resolves; on failure the removal is not rolled
// back, the caller reconciles with a fresh LoadDocuments.
func (e *Engine) MoveDocument(ctx context.Context, documentID primitive.ObjectID, targetFolderID *primitive.ObjectID) error {
	e.removeFromListing(documentID)

	err := e.cat.UpdateDocument(ctx, documentID, catalog.DocumentUpdate{
		FolderID:  targetFolderID,
		SetFolder: true,
	})
	if err != nil {
		return err
	}
	return e.Refresh(ctx)
}

// UpdateDocumentTags replaces a document's tag set.
func (e *Engine) UpdateDocumentTags(ctx context.Context, id primitive.ObjectID, tags []string) error {
	return e.cat.UpdateDocument(ctx, id, catalog.DocumentUpdate{Tags: tags, SetTags: true})
}

// DeleteDocument deletes a document, removing it from the displayed
// listing optimistically like MoveDocument.
func (e *Engine) DeleteDocument(ctx context.Context, id primitive.ObjectID) error {
	e.removeFromListing(id)

	if err := e.cat.DeleteDocument(ctx, id); err != nil {
		return err
	}
	return e.Refresh(ctx)
}

func (e *Engine) removeFromListing(id primitive.ObjectID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.docs {
		if e.docs[i].ID == id {
			e.docs = append(e.docs[:i:i], e.docs[i+1:]...)
			return
		}
	}
}

// BulkResult reports per-item accounting for a bulk operation.
type BulkResult struct {
	Attempted int                  `json:"attempted"`
	Succeeded int                  `json:"succeeded"`
	Failed    int                  `json:"failed"`
	FailedIDs []primitive.ObjectID `json:"failed_ids,omitempty"`
}

// ProgressFunc receives (current, total) after each item of a bulk
// operation completes, success or not.
type ProgressFunc func(current, total int)

// BulkMoveDocuments moves documents one at a time, in order. A failed
// item is counted and the batch continues; succeeded items stay moved.
func (e *Engine) BulkMoveDocuments(ctx context.Context, documentIDs []primitive.ObjectID, targetFolderID *primitive.ObjectID, progress ProgressFunc) BulkResult {
	result := BulkResult{Attempted: len(documentIDs)}

	for i, id := range documentIDs {
		err := e.cat.UpdateDocument(ctx, id, catalog.DocumentUpdate{
			FolderID:  targetFolderID,
			SetFolder: true,
		})
		if err != nil {
			result.Failed++
			result.FailedIDs = append(result.FailedIDs, id)
			e.logger.Warn("bulk move item failed",
				zap.String("document_id", id.Hex()),
				zap.Error(err))
		} else {
			result.Succeeded++
			e.removeFromListing(id)
		}
		if progress != nil {
			progress(i+1, len(documentIDs))
		}
	}

	if err := e.Refresh(ctx); err != nil {
		e.logger.Warn("refresh after bulk move failed", zap.Error(err))
	}
	return result
}

// BulkDeleteDocuments deletes documents one at a time, in order, with
// the same per-item accounting as BulkMoveDocuments.
func (e *Engine) BulkDeleteDocuments(ctx context.Context, documentIDs []primitive.ObjectID, progress ProgressFunc) BulkResult {
	result := BulkResult{Attempted: len(documentIDs)}

	for i, id := range documentIDs {
		if err := e.cat.DeleteDocument(ctx, id); err != nil {
			result.Failed++
			result.FailedIDs = append(result.FailedIDs, id)
			e.logger.Warn("bulk delete item failed",
				zap.String("document_id", id.Hex()),
				zap.Error(err))
		} else {
			result.Succeeded++
			e.removeFromListing(id)
		}
		if progress != nil {
			progress(i+1, len(documentIDs))
		}
	}

	if err := e.Refresh(ctx); err != nil {
		e.logger.Warn("refresh after bulk delete failed", zap.Error(err))
	}
	return result
}
