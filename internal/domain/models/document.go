// internal/domain/models/document.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document represents an uploaded file in the portal.
type Document struct {
	ID       primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FolderID *primitive.ObjectID `bson:"folder_id,omitempty" json:"folder_id,omitempty"` // nil = root level
	Name     string              `bson:"name" json:"name"`                               // Original filename
	NameCI   string              `bson:"name_ci" json:"-"`                               // Case-insensitive for sorting/search

	// VehicleID scopes the document to an investment vehicle; DealID is
	// set when the document belongs to a deal's data room.
	VehicleID *primitive.ObjectID `bson:"vehicle_id,omitempty" json:"vehicle_id,omitempty"`
	DealID    *primitive.ObjectID `bson:"deal_id,omitempty" json:"deal_id,omitempty"`

	StoragePath string   `bson:"storage_path" json:"-"`            // Path in storage backend
	Size        int64    `bson:"size" json:"size"`                 // File size in bytes
	ContentType string   `bson:"content_type" json:"content_type"` // MIME type
	Tags        []string `bson:"tags,omitempty" json:"tags,omitempty"`
	Description string   `bson:"description,omitempty" json:"description,omitempty"`

	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
	CreatedByID primitive.ObjectID `bson:"created_by_id" json:"-"`
}

// IsInRoot returns true if the document is at the root level (not in any folder).
func (d *Document) IsInRoot() bool {
	return d.FolderID == nil
}
