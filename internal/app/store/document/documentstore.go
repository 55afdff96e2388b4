// Package document provides storage for document metadata.
package document

import (
	"context"
	"regexp"
	"time"

	"github.com/dalemusser/dealdocs/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the documents collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new document store.
func New(db *mongo.Database) *Store {
	return &Store{
		c: db.Collection("documents"),
	}
}

// CreateInput contains the input for creating a document record.
type CreateInput struct {
	FolderID    *primitive.ObjectID
	VehicleID   *primitive.ObjectID
	DealID      *primitive.ObjectID
	Name        string
	StoragePath string
	Size        int64
	ContentType string
	Tags        []string
	Description string
	CreatedByID primitive.ObjectID
}

// Create creates a new document record.
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.Document, error) {
	now := time.Now()
	doc := models.Document{
		ID:          primitive.NewObjectID(),
		FolderID:    input.FolderID,
		VehicleID:   input.VehicleID,
		DealID:      input.DealID,
		Name:        input.Name,
		NameCI:      text.Fold(input.Name),
		StoragePath: input.StoragePath,
		Size:        input.Size,
		ContentType: input.ContentType,
		Tags:        input.Tags,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedByID: input.CreatedByID,
	}

	if _, err := s.c.InsertOne(ctx, doc); err != nil {
		return nil, err
	}

	return &doc, nil
}

// GetByID retrieves a document by ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Document, error) {
	var doc models.Document
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// UpdateInput contains the input for updating a document. nil fields
// are left untouched; SetFolder distinguishes "move to root" from
// "leave the folder alone".
type UpdateInput struct {
	Name        *string
	Description *string
	Tags        []string
	SetTags     bool
	FolderID    *primitive.ObjectID
	SetFolder   bool
}

// Update updates a document.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, input UpdateInput) error {
	set := bson.M{"updated_at": time.Now()}

	if input.Name != nil {
		set["name"] = *input.Name
		set["name_ci"] = text.Fold(*input.Name)
	}
	if input.Description != nil {
		set["description"] = *input.Description
	}
	if input.SetTags {
		set["tags"] = input.Tags
	}
	if input.SetFolder {
		set["folder_id"] = input.FolderID
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete deletes a document record.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteByFolderIDs deletes all documents in the given folders,
// returning the number removed. Used by the folder cascade.
func (s *Store) DeleteByFolderIDs(ctx context.Context, folderIDs []primitive.ObjectID) (int64, error) {
	if len(folderIDs) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"folder_id": bson.M{"$in": folderIDs}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListOptions contains options for listing documents.
type ListOptions struct {
	SortBy    string // "name", "created_at", "size", "content_type"
	SortOrder int    // 1 = asc, -1 = desc

	// FolderIDs scopes the listing to a folder set (typically a
	// descendant closure). ScopeToFolders distinguishes an empty scope
	// from no scoping. IncludeRoot adds root-level documents.
	FolderIDs      []primitive.ObjectID
	ScopeToFolders bool
	IncludeRoot    bool

	Search    string // folded-name contains match
	VehicleID *primitive.ObjectID
	DealID    *primitive.ObjectID
}

// List returns documents matching the options.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]models.Document, error) {
	filter := bson.M{}

	if opts.ScopeToFolders {
		scope := bson.M{"folder_id": bson.M{"$in": opts.FolderIDs}}
		if opts.IncludeRoot {
			filter["$or"] = []bson.M{scope, {"folder_id": nil}}
		} else {
			filter["folder_id"] = bson.M{"$in": opts.FolderIDs}
		}
	} else if opts.IncludeRoot {
		filter["folder_id"] = nil
	}

	if opts.Search != "" {
		filter["name_ci"] = bson.M{"$regex": regexp.QuoteMeta(text.Fold(opts.Search))}
	}
	if opts.VehicleID != nil {
		filter["vehicle_id"] = *opts.VehicleID
	}
	if opts.DealID != nil {
		filter["deal_id"] = *opts.DealID
	}

	sortField := "name_ci"
	switch opts.SortBy {
	case "created_at", "date":
		sortField = "created_at"
	case "size":
		sortField = "size"
	case "content_type", "type":
		sortField = "content_type"
	}

	sortOrder := 1
	if opts.SortOrder != 0 {
		sortOrder = opts.SortOrder
	}

	findOpts := options.Find().SetSort(bson.D{{Key: sortField, Value: sortOrder}})

	cursor, err := s.c.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []models.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	return docs, nil
}

// CountByFolderID returns the number of documents directly in a
// folder. The reconciliation task uses this to repair drifted
// denormalized counters.
func (s *Store) CountByFolderID(ctx context.Context, folderID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"folder_id": folderID})
}

// NameExistsInFolder checks if a document with the given name exists
// in the folder. Pass excludeID to exclude a specific document.
func (s *Store) NameExistsInFolder(ctx context.Context, name string, folderID *primitive.ObjectID, excludeID *primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"folder_id": folderID,
		"name_ci":   text.Fold(name),
	}

	if excludeID != nil {
		filter["_id"] = bson.M{"$ne": *excludeID}
	}

	count, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

