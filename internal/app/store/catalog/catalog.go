// Package catalog adapts the Mongo folder and document stores to the
// domain catalog interface the hierarchy engine depends on.
package catalog

import (
	"context"
	"errors"

	documentstore "github.com/dalemusser/dealdocs/internal/app/store/document"
	folderstore "github.com/dalemusser/dealdocs/internal/app/store/folder"
	domcatalog "github.com/dalemusser/dealdocs/internal/domain/catalog"
	"github.com/dalemusser/dealdocs/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Mongo implements the domain catalog over the folder and document
// collections. Folder deletes cascade to the folder's subtree and the
// documents inside it; document moves keep the per-folder document
// counters in step.
type Mongo struct {
	folders   *folderstore.Store
	documents *documentstore.Store
}

// New creates a Mongo catalog over the given database.
func New(db *mongo.Database) *Mongo {
	return &Mongo{
		folders:   folderstore.New(db),
		documents: documentstore.New(db),
	}
}

var _ domcatalog.Catalog = (*Mongo)(nil)

// ListFolders returns the full flat folder table, name-ascending.
func (m *Mongo) ListFolders(ctx context.Context) ([]models.Folder, error) {
	folders, err := m.folders.ListAll(ctx, folderstore.ListOptions{})
	if err != nil {
		return nil, &domcatalog.TransientError{Op: "list folders", Err: err}
	}
	return folders, nil
}

// ListDocuments returns documents matching the filter.
func (m *Mongo) ListDocuments(ctx context.Context, filter domcatalog.DocumentFilter) ([]models.Document, error) {
	docs, err := m.documents.List(ctx, documentstore.ListOptions{
		FolderIDs:      filter.FolderIDs,
		ScopeToFolders: filter.ScopeToFolders,
		IncludeRoot:    filter.IncludeRoot,
		Search:         filter.Search,
		VehicleID:      filter.VehicleID,
		DealID:         filter.DealID,
	})
	if err != nil {
		return nil, &domcatalog.TransientError{Op: "list documents", Err: err}
	}
	return docs, nil
}

// CreateFolder inserts a custom folder under parentID. The vehicle
// scope is inherited from the parent inside the store.
func (m *Mongo) CreateFolder(ctx context.Context, name string, parentID *primitive.ObjectID, createdBy primitive.ObjectID) (*models.Folder, error) {
	f, err := m.folders.Create(ctx, folderstore.CreateInput{
		Name:        name,
		ParentID:    parentID,
		FolderType:  models.FolderTypeCustom,
		CreatedByID: createdBy,
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &domcatalog.NotFoundError{Kind: "folder", ID: hexOrEmpty(parentID)}
		}
		return nil, &domcatalog.TransientError{Op: "create folder", Err: err}
	}
	return f, nil
}

// RenameFolder renames a folder and rewrites descendant paths.
func (m *Mongo) RenameFolder(ctx context.Context, id primitive.ObjectID, name string) error {
	if err := m.folders.Rename(ctx, id, name); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &domcatalog.NotFoundError{Kind: "folder", ID: id.Hex()}
		}
		return &domcatalog.TransientError{Op: "rename folder", Err: err}
	}
	return nil
}

// DeleteFolder deletes a folder together with its subtree and every
// document inside. The engine guards on folder type and emptiness
// before calling; here the cascade is unconditional.
func (m *Mongo) DeleteFolder(ctx context.Context, id primitive.ObjectID) error {
	deleted, err := m.folders.DeleteSubtree(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &domcatalog.NotFoundError{Kind: "folder", ID: id.Hex()}
		}
		return &domcatalog.TransientError{Op: "delete folder", Err: err}
	}
	if len(deleted) > 0 {
		if _, err := m.documents.DeleteByFolderIDs(ctx, deleted); err != nil {
			return &domcatalog.TransientError{Op: "delete folder documents", Err: err}
		}
	}
	return nil
}

// UpdateDocument applies a partial document update. When the update
// moves the document between folders, the source and destination
// document counters are adjusted.
func (m *Mongo) UpdateDocument(ctx context.Context, id primitive.ObjectID, update domcatalog.DocumentUpdate) error {
	var prevFolder *primitive.ObjectID
	if update.SetFolder {
		doc, err := m.documents.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return &domcatalog.NotFoundError{Kind: "document", ID: id.Hex()}
			}
			return &domcatalog.TransientError{Op: "load document", Err: err}
		}
		prevFolder = doc.FolderID
	}

	err := m.documents.Update(ctx, id, documentstore.UpdateInput{
		Name:      update.Name,
		Tags:      update.Tags,
		SetTags:   update.SetTags,
		FolderID:  update.FolderID,
		SetFolder: update.SetFolder,
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &domcatalog.NotFoundError{Kind: "document", ID: id.Hex()}
		}
		return &domcatalog.TransientError{Op: "update document", Err: err}
	}

	if update.SetFolder && !sameFolder(prevFolder, update.FolderID) {
		if err := m.folders.IncDocumentCount(ctx, prevFolder, -1); err != nil {
			return &domcatalog.TransientError{Op: "adjust source folder count", Err: err}
		}
		if err := m.folders.IncDocumentCount(ctx, update.FolderID, 1); err != nil {
			return &domcatalog.TransientError{Op: "adjust target folder count", Err: err}
		}
	}
	return nil
}

// DeleteDocument deletes a document and decrements its folder counter.
func (m *Mongo) DeleteDocument(ctx context.Context, id primitive.ObjectID) error {
	doc, err := m.documents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &domcatalog.NotFoundError{Kind: "document", ID: id.Hex()}
		}
		return &domcatalog.TransientError{Op: "load document", Err: err}
	}

	if err := m.documents.Delete(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &domcatalog.NotFoundError{Kind: "document", ID: id.Hex()}
		}
		return &domcatalog.TransientError{Op: "delete document", Err: err}
	}

	if err := m.folders.IncDocumentCount(ctx, doc.FolderID, -1); err != nil {
		return &domcatalog.TransientError{Op: "adjust folder count", Err: err}
	}
	return nil
}

func sameFolder(a, b *primitive.ObjectID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func hexOrEmpty(id *primitive.ObjectID) string {
	if id == nil {
		return ""
	}
	return id.Hex()
}
