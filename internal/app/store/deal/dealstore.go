// Package deal provides storage for deals and their data rooms.
package deal

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

// Store provides access to the deals collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new deal store.
func New(db *mongo.Database) *Store {
	return &Store{
		c: db.Collection("deals"),
	}
}

// CreateInput contains the input for creating a deal.
type CreateInput struct {
	VehicleID primitive.ObjectID
	Name      string
	Status    string
}

// Create creates a new deal.
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.Deal, error) {
	status := input.Status
	if status == "" {
		status = models.DealStatusActive
	}

	now := time.Now()
	d := models.Deal{
		ID:        primitive.NewObjectID(),
		VehicleID: input.VehicleID,
		Name:      input.Name,
		NameCI:    text.Fold(input.Name),
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.c.InsertOne(ctx, d); err != nil {
		return nil, err
	}

	return &d, nil
}

// GetByID retrieves a deal by ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Deal, error) {
	var d models.Deal
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListByVehicle returns all deals under a vehicle, name-ascending.
func (s *Store) ListByVehicle(ctx context.Context, vehicleID primitive.ObjectID) ([]models.Deal, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})

	cursor, err := s.c.Find(ctx, bson.M{"vehicle_id": vehicleID}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var deals []models.Deal
	if err := cursor.All(ctx, &deals); err != nil {
		return nil, err
	}

	return deals, nil
}
