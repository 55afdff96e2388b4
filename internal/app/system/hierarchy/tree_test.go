package hierarchy

import (
	"testing"

	"github.com/dalemusser/dealdocs/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fixtureForest builds the flat list for this structure:
//
//	Fund I (vehicle_root)
//	├── Legal (category)
//	│   └── Side Letters (custom)
//	├── Reports (category)
//	Fund II (vehicle_root)
func fixtureForest() ([]models.Folder, map[string]primitive.ObjectID) {
	ids := map[string]primitive.ObjectID{
		"fund1":   primitive.NewObjectID(),
		"legal":   primitive.NewObjectID(),
		"side":    primitive.NewObjectID(),
		"reports": primitive.NewObjectID(),
		"fund2":   primitive.NewObjectID(),
	}
	fund1 := ids["fund1"]
	legal := ids["legal"]

	folders := []models.Folder{
		{ID: ids["fund1"], Name: "Fund I", Path: "Fund I", FolderType: models.FolderTypeVehicleRoot},
		{ID: ids["legal"], Name: "Legal", Path: "Fund I/Legal", ParentID: &fund1, FolderType: models.FolderTypeCategory},
		{ID: ids["side"], Name: "Side Letters", Path: "Fund I/Legal/Side Letters", ParentID: &legal, FolderType: models.FolderTypeCustom},
		{ID: ids["reports"], Name: "Reports", Path: "Fund I/Reports", ParentID: &fund1, FolderType: models.FolderTypeCategory},
		{ID: ids["fund2"], Name: "Fund II", Path: "Fund II", FolderType: models.FolderTypeVehicleRoot},
	}
	return folders, ids
}

func TestBuild(t *testing.T) {
	folders, ids := fixtureForest()
	forest := Build(folders)

	if len(forest) != 2 {
		t.Fatalf("Build() roots = %d, want 2", len(forest))
	}
	if forest[0].Folder.ID != ids["fund1"] || forest[1].Folder.ID != ids["fund2"] {
		t.Error("root order not preserved from input")
	}

	fund1 := forest[0]
	if len(fund1.Children) != 2 {
		t.Fatalf("Fund I children = %d, want 2", len(fund1.Children))
	}
	if fund1.Children[0].Folder.Name != "Legal" || fund1.Children[1].Folder.Name != "Reports" {
		t.Errorf("sibling order = [%s, %s], want [Legal, Reports]",
			fund1.Children[0].Folder.Name, fund1.Children[1].Folder.Name)
	}
	if got := fund1.Folder.SubfolderCount; got != 2 {
		t.Errorf("Fund I SubfolderCount = %d, want 2", got)
	}

	side := fund1.Children[0].Children
	if len(side) != 1 || side[0].Folder.ID != ids["side"] {
		t.Error("Side Letters not nested under Legal")
	}
	if len(side[0].Children) != 0 {
		t.Error("leaf folder should have no children")
	}
}

func TestBuild_Empty(t *testing.T) {
	if forest := Build(nil); len(forest) != 0 {
		t.Errorf("Build(nil) = %d roots, want 0", len(forest))
	}
}

// Every folder in a valid forest must appear exactly once in the
// pre-order flattening of the built tree.
func TestBuild_Roundtrip(t *testing.T) {
	folders, _ := fixtureForest()
	flat := Flatten(Build(folders))

	if len(flat) != len(folders) {
		t.Fatalf("flattened %d folders, want %d", len(flat), len(folders))
	}
	seen := make(map[primitive.ObjectID]int)
	for _, f := range flat {
		seen[f.ID]++
	}
	for _, f := range folders {
		if seen[f.ID] != 1 {
			t.Errorf("folder %s appears %d times, want 1", f.Name, seen[f.ID])
		}
	}
}

func TestDescendantIDs(t *testing.T) {
	folders, ids := fixtureForest()

	got := DescendantIDs(ids["fund1"], folders)
	want := []string{"fund1", "legal", "side", "reports"}
	if len(got) != len(want) {
		t.Fatalf("DescendantIDs(fund1) size = %d, want %d", len(got), len(want))
	}
	for _, key := range want {
		if _, ok := got[ids[key]]; !ok {
			t.Errorf("DescendantIDs(fund1) missing %s", key)
		}
	}
}

func TestDescendantIDs_Leaf(t *testing.T) {
	folders, ids := fixtureForest()

	got := DescendantIDs(ids["side"], folders)
	if len(got) != 1 {
		t.Fatalf("leaf descendant set size = %d, want 1", len(got))
	}
	if _, ok := got[ids["side"]]; !ok {
		t.Error("descendant set must include the folder itself")
	}
}

// The descendant set of a folder must contain the descendant set of
// every direct child.
func TestDescendantIDs_Closure(t *testing.T) {
	folders, _ := fixtureForest()

	for _, f := range folders {
		parentSet := DescendantIDs(f.ID, folders)
		for _, c := range folders {
			if c.ParentID == nil || *c.ParentID != f.ID {
				continue
			}
			for id := range DescendantIDs(c.ID, folders) {
				if _, ok := parentSet[id]; !ok {
					t.Errorf("descendants(%s) missing %s from child %s", f.Name, id.Hex(), c.Name)
				}
			}
		}
	}
}
