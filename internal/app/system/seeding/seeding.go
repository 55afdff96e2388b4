// internal/app/system/seeding/seeding.go
package seeding

import (
	"context"

	folderstore "github.com/dalemusser/dealdocs/internal/app/store/folder"
	vehiclestore "github.com/dalemusser/dealdocs/internal/app/store/vehicle"
	"github.com/dalemusser/dealdocs/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// defaultCategories are the category folders created under every
// vehicle root. Admins can add custom folders beneath them later.
var defaultCategories = []string{
	"Legal",
	"Financials",
	"Tax",
	"Investor Reports",
}

// SeedAll seeds default data if not already present.
func SeedAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return seedVehicleFolders(ctx, db, logger)
}

// seedVehicleFolders ensures every vehicle has a root folder with the
// default category folders beneath it. Vehicles created before this
// run (or by hand) get their folder scaffolding here, so the routine
// must be safe to re-run.
func seedVehicleFolders(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	vehicles := vehiclestore.New(db)
	folders := folderstore.New(db)

	all, err := vehicles.ListAll(ctx)
	if err != nil {
		logger.Error("failed to list vehicles for folder seeding", zap.Error(err))
		return err
	}

	for _, v := range all {
		root, err := findVehicleRoot(ctx, db, v.ID)
		if err != nil {
			logger.Error("failed to look up vehicle root folder",
				zap.String("vehicle_id", v.ID.Hex()),
				zap.Error(err))
			return err
		}

		if root == nil {
			root, err = folders.Create(ctx, folderstore.CreateInput{
				Name:       v.Name,
				FolderType: models.FolderTypeVehicleRoot,
				VehicleID:  &v.ID,
			})
			if err != nil {
				logger.Error("failed to seed vehicle root folder",
					zap.String("vehicle", v.Name),
					zap.Error(err))
				return err
			}
			logger.Info("seeded vehicle root folder",
				zap.String("vehicle", v.Name),
				zap.String("folder_id", root.ID.Hex()))
		}

		for _, name := range defaultCategories {
			exists, err := folders.NameExistsInParent(ctx, name, &root.ID, nil)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			child, err := folders.Create(ctx, folderstore.CreateInput{
				Name:       name,
				ParentID:   &root.ID,
				FolderType: models.FolderTypeCategory,
				VehicleID:  &v.ID,
			})
			if err != nil {
				logger.Error("failed to seed category folder",
					zap.String("vehicle", v.Name),
					zap.String("name", name),
					zap.Error(err))
				return err
			}
			logger.Info("seeded category folder",
				zap.String("vehicle", v.Name),
				zap.String("path", child.Path))
		}
	}

	return nil
}

// findVehicleRoot returns the vehicle_root folder for a vehicle, or
// nil when none exists yet.
func findVehicleRoot(ctx context.Context, db *mongo.Database, vehicleID primitive.ObjectID) (*models.Folder, error) {
	var f models.Folder
	err := db.Collection("folders").FindOne(ctx, bson.M{
		"vehicle_id":  vehicleID,
		"folder_type": models.FolderTypeVehicleRoot,
	}).Decode(&f)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}
