// Package folder provides storage for the document folder hierarchy.
package folder

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/dealdocs/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the folders collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new folder store.
func New(db *mongo.Database) *Store {
	return &Store{
		c: db.Collection("folders"),
	}
}

// CreateInput contains the input for creating a folder.
type CreateInput struct {
	Name        string
	ParentID    *primitive.ObjectID
	FolderType  string
	VehicleID   *primitive.ObjectID
	CreatedByID primitive.ObjectID
}

// Create creates a new folder. The stored path is derived from the
// parent's path; a folder created under a parent also inherits the
// parent's vehicle when the input carries none.
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.Folder, error) {
	path := input.Name
	vehicleID := input.VehicleID
	if input.ParentID != nil {
		parent, err := s.GetByID(ctx, *input.ParentID)
		if err != nil {
			return nil, err
		}
		path = parent.Path + "/" + input.Name
		if vehicleID == nil {
			vehicleID = parent.VehicleID
		}
	}

	folderType := input.FolderType
	if folderType == "" {
		folderType = models.FolderTypeCustom
	}

	now := time.Now()
	folder := models.Folder{
		ID:          primitive.NewObjectID(),
		Name:        input.Name,
		NameCI:      text.Fold(input.Name),
		Path:        path,
		ParentID:    input.ParentID,
		FolderType:  folderType,
		VehicleID:   vehicleID,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedByID: input.CreatedByID,
	}

	if _, err := s.c.InsertOne(ctx, folder); err != nil {
		return nil, err
	}

	return &folder, nil
}

// GetByID retrieves a folder by ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Folder, error) {
	var folder models.Folder
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&folder); err != nil {
		return nil, err
	}
	return &folder, nil
}

// ListOptions contains options for listing folders.
type ListOptions struct {
	SortBy    string // "name", "created_at", "updated_at"
	SortOrder int    // 1 = asc, -1 = desc
	VehicleID *primitive.ObjectID
}

// ListAll returns the full flat folder list, the raw input for tree
// construction. Sorted name-ascending by default so sibling order in
// the built tree is alphabetical.
func (s *Store) ListAll(ctx context.Context, opts ListOptions) ([]models.Folder, error) {
	filter := bson.M{}
	if opts.VehicleID != nil {
		filter["vehicle_id"] = *opts.VehicleID
	}
	return s.find(ctx, filter, opts)
}

// ListByParent returns all folders within a parent folder.
// Pass nil for parentID to list root folders.
func (s *Store) ListByParent(ctx context.Context, parentID *primitive.ObjectID, opts ListOptions) ([]models.Folder, error) {
	return s.find(ctx, bson.M{"parent_id": parentID}, opts)
}

func (s *Store) find(ctx context.Context, filter bson.M, opts ListOptions) ([]models.Folder, error) {
	sortField := "name_ci"
	switch opts.SortBy {
	case "created_at", "date":
		sortField = "created_at"
	case "updated_at":
		sortField = "updated_at"
	case "path":
		sortField = "path"
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

	var folders []models.Folder
	if err := cursor.All(ctx, &folders); err != nil {
		return nil, err
	}

	return folders, nil
}

// Rename updates a folder's name and recomputes its path and the
// paths of every descendant. Descendant paths are rewritten by prefix
// replacement, one update per folder; folder counts are small enough
// that a loop beats the complexity of an aggregation pipeline here.
func (s *Store) Rename(ctx context.Context, id primitive.ObjectID, name string) error {
	folder, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	newPath := name
	if idx := strings.LastIndex(folder.Path, "/"); idx >= 0 {
		newPath = folder.Path[:idx+1] + name
	}

	_, err = s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"name":       name,
		"name_ci":    text.Fold(name),
		"path":       newPath,
		"updated_at": time.Now(),
	}})
	if err != nil {
		return err
	}

	return s.rewriteDescendantPaths(ctx, folder.Path, newPath)
}

// rewriteDescendantPaths replaces the oldPrefix of every path under it
// with newPrefix.
func (s *Store) rewriteDescendantPaths(ctx context.Context, oldPrefix, newPrefix string) error {
	if oldPrefix == newPrefix {
		return nil
	}

	cursor, err := s.c.Find(ctx, bson.M{"path": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(oldPrefix) + "/"}})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var descendants []models.Folder
	if err := cursor.All(ctx, &descendants); err != nil {
		return err
	}

	for _, d := range descendants {
		rewritten := newPrefix + strings.TrimPrefix(d.Path, oldPrefix)
		_, err := s.c.UpdateOne(ctx, bson.M{"_id": d.ID}, bson.M{"$set": bson.M{
			"path":       rewritten,
			"updated_at": time.Now(),
		}})
		if err != nil {
			return err
		}
	}
	return nil
}


// Delete deletes a single folder record. Subtree semantics are in
// DeleteSubtree; callers that honor the cascade contract use that.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// DeleteSubtree deletes a folder and every descendant folder,
// returning the ids of all deleted folders so the caller can remove
// their documents. This is the server-side cascade the browsing
// client relies on instead of recursing itself.
func (s *Store) DeleteSubtree(ctx context.Context, id primitive.ObjectID) ([]primitive.ObjectID, error) {
	root, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cursor, err := s.c.Find(ctx, bson.M{"path": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(root.Path) + "/"}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var descendants []models.Folder
	if err := cursor.All(ctx, &descendants); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(descendants)+1)
	ids = append(ids, root.ID)
	for _, d := range descendants {
		ids = append(ids, d.ID)
	}

	if _, err := s.c.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return nil, err
	}
	return ids, nil
}

// CountByParent returns the number of folders within a parent folder.
func (s *Store) CountByParent(ctx context.Context, parentID *primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"parent_id": parentID})
}

// HasSubfolders checks if a folder has any subfolders.
func (s *Store) HasSubfolders(ctx context.Context, id primitive.ObjectID) (bool, error) {
	count, err := s.c.CountDocuments(ctx, bson.M{"parent_id": id})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// NameExistsInParent checks if a folder with the given name exists in
// the parent. Pass excludeID to exclude a specific folder (useful for
// renames).
func (s *Store) NameExistsInParent(ctx context.Context, name string, parentID *primitive.ObjectID, excludeID *primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"parent_id": parentID,
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

// IncDocumentCount adjusts the denormalized document counter. Pass nil
// folderID for root-level documents (no counter to adjust).
func (s *Store) IncDocumentCount(ctx context.Context, folderID *primitive.ObjectID, delta int64) error {
	if folderID == nil {
		return nil
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": *folderID}, bson.M{"$inc": bson.M{"document_count": delta}})
	return err
}

// SetDocumentCount overwrites the denormalized counter, used by the
// reconciliation task.
func (s *Store) SetDocumentCount(ctx context.Context, folderID primitive.ObjectID, count int64) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": folderID}, bson.M{"$set": bson.M{"document_count": count}})
	return err
}

// GetAncestors returns all ancestors of a folder, ordered from root to
// immediate parent. Used for breadcrumb trails.
func (s *Store) GetAncestors(ctx context.Context, id primitive.ObjectID) ([]models.Folder, error) {
	folder, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var ancestors []models.Folder
	currentParentID := folder.ParentID
	for currentParentID != nil {
		parent, err := s.GetByID(ctx, *currentParentID)
		if err != nil {
			return nil, err
		}
		ancestors = append([]models.Folder{*parent}, ancestors...)
		currentParentID = parent.ParentID
	}

	return ancestors, nil
}
