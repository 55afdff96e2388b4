// internal/domain/models/deal.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Deal statuses.
const (
	DealStatusActive = "active"
	DealStatusClosed = "closed"
)

// Deal represents a deal under an investment vehicle. Each deal has a
// data room: a flat, non-folder document listing scoped to the deal.
type Deal struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleID primitive.ObjectID `bson:"vehicle_id" json:"vehicle_id"`
	Name      string             `bson:"name" json:"name"`
	NameCI    string             `bson:"name_ci" json:"-"`
	Status    string             `bson:"status" json:"status"` // active, closed

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
