// Package catalog defines the backing collaborator for the folder
// hierarchy engine: the flat folder list, document listings, and the
// mutations the engine issues. The Mongo stores implement it; the
// engine and its tests depend only on this interface.
package catalog

import (
	"context"

	"github.com/dalemusser/dealdocs/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DocumentFilter narrows a document listing. Zero value lists
// everything. FolderIDs of length zero with ScopeToFolders false means
// no folder scoping; set ScopeToFolders when an empty set should
// return nothing.
type DocumentFilter struct {
	FolderIDs      []primitive.ObjectID
	ScopeToFolders bool
	IncludeRoot    bool // include documents with no folder
	Search         string
	VehicleID      *primitive.ObjectID
	DealID         *primitive.ObjectID
}

// DocumentUpdate carries the mutable document fields for UpdateDocument.
// nil fields are left untouched. SetFolder distinguishes "move to
// root" (SetFolder true, FolderID nil) from "don't change the folder"
// (SetFolder false).
type DocumentUpdate struct {
	Name      *string
	Tags      []string
	SetTags   bool
	FolderID  *primitive.ObjectID
	SetFolder bool
}

// Catalog is the synchronous source of truth for folders and
// documents. All engine mutations go through it and are followed by a
// full ListFolders refresh; the engine never patches its tree in
// place.
type Catalog interface {
	ListFolders(ctx context.Context) ([]models.Folder, error)
	ListDocuments(ctx context.Context, filter DocumentFilter) ([]models.Document, error)

	CreateFolder(ctx context.Context, name string, parentID *primitive.ObjectID, createdBy primitive.ObjectID) (*models.Folder, error)
	RenameFolder(ctx context.Context, id primitive.ObjectID, name string) error
	DeleteFolder(ctx context.Context, id primitive.ObjectID) error

	UpdateDocument(ctx context.Context, id primitive.ObjectID, update DocumentUpdate) error
	DeleteDocument(ctx context.Context, id primitive.ObjectID) error
}
