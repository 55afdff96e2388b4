// Package vehicle provides storage for investment vehicles.
package vehicle

import (
	"context"
	"time"

	"github.com/dalemusser/dealdocs/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the vehicles collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new vehicle store.
func New(db *mongo.Database) *Store {
	return &Store{
		c: db.Collection("vehicles"),
	}
}

// CreateInput contains the input for creating a vehicle.
type CreateInput struct {
	Name string
	Type string
}

// Create creates a new vehicle.
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.Vehicle, error) {
	now := time.Now()
	v := models.Vehicle{
		ID:        primitive.NewObjectID(),
		Name:      input.Name,
		NameCI:    text.Fold(input.Name),
		Type:      input.Type,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.c.InsertOne(ctx, v); err != nil {
		return nil, err
	}

	return &v, nil
}

// GetByID retrieves a vehicle by ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error) {
	var v models.Vehicle
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

// ListAll returns all vehicles, name-ascending.
func (s *Store) ListAll(ctx context.Context) ([]models.Vehicle, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})

	cursor, err := s.c.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var vehicles []models.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, err
	}

	return vehicles, nil
}

// ExistsByName checks whether a vehicle with the given name exists.
func (s *Store) ExistsByName(ctx context.Context, name string) (bool, error) {
	count, err := s.c.CountDocuments(ctx, bson.M{"name_ci": text.Fold(name)})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
