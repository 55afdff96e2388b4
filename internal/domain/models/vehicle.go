// internal/domain/models/vehicle.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vehicle represents an investment vehicle (fund, SPV, holding entity).
// Vehicles are owned by the upstream portfolio system; the document
// service references them to partition top-level folder groups.
type Vehicle struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name   string             `bson:"name" json:"name"`
	NameCI string             `bson:"name_ci" json:"-"`
	Type   string             `bson:"type,omitempty" json:"type,omitempty"` // fund, spv, holding

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
