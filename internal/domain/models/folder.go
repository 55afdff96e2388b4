// internal/domain/models/folder.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Folder types. Only custom folders may ever be deleted by staff;
// vehicle roots and category folders are seeded and fixed.
const (
	FolderTypeVehicleRoot = "vehicle_root"
	FolderTypeCategory    = "category"
	FolderTypeCustom      = "custom"
)

// Folder represents a folder in the document hierarchy.
//
// Path is the full slash-delimited display path from root to this
// folder. It is recomputed by the folder store on create and rename
// (including descendants) and consumed for breadcrumbs and search —
// never for identity.
type Folder struct {
	ID       primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name     string              `bson:"name" json:"name"`
	NameCI   string              `bson:"name_ci" json:"-"` // Case-insensitive for sorting/search
	Path     string              `bson:"path" json:"path"`
	ParentID *primitive.ObjectID `bson:"parent_id,omitempty" json:"parent_folder_id,omitempty"` // nil = root

	// FolderType is one of vehicle_root, category, custom.
	FolderType string `bson:"folder_type" json:"folder_type"`

	// VehicleID partitions folders by investment vehicle for display
	// grouping. nil for folders outside any vehicle context.
	VehicleID *primitive.ObjectID `bson:"vehicle_id,omitempty" json:"vehicle_id,omitempty"`

	// DocumentCount is a denormalized counter maintained by the
	// document store ($inc on create/move/delete) and reconciled by a
	// background task. SubfolderCount is recomputed when the tree is
	// built and stored only for display queries.
	DocumentCount  int64 `bson:"document_count" json:"document_count"`
	SubfolderCount int64 `bson:"subfolder_count" json:"subfolder_count"`

	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
	CreatedByID primitive.ObjectID `bson:"created_by_id" json:"-"`
}

// IsRoot returns true if the folder is at the root level.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}

// Deletable returns true if staff may delete this folder: only custom
// folders with no documents. Subfolder emptiness is enforced by the
// folder store, not here.
func (f *Folder) Deletable() bool {
	return f.FolderType == FolderTypeCustom && f.DocumentCount == 0
}
