package navigation

import (
	"testing"

	"github.com/dalemusser/dealdocs/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func folder(name string, vehicleID *primitive.ObjectID) *models.Folder {
	return &models.Folder{
		ID:         primitive.NewObjectID(),
		Name:       name,
		FolderType: models.FolderTypeCustom,
		VehicleID:  vehicleID,
	}
}

func TestNew(t *testing.T) {
	s := New()
	if s.CurrentFolderID() != nil {
		t.Error("initial state should be at root")
	}
	if s.SelectedVehicleID() != nil {
		t.Error("initial state should have no vehicle context")
	}
	if s.DataRoomMode().Active {
		t.Error("initial state should not be in a data room")
	}
}

func TestNavigateThenBack(t *testing.T) {
	s := New()
	a := folder("A", nil)
	b := folder("B", nil)

	s.NavigateToFolder(a)
	s.NavigateToFolder(b)

	got, ok := s.NavigateBack()
	if !ok || got == nil || *got != a.ID {
		t.Fatalf("first back: got %v, want folder A", got)
	}
	if cur := s.CurrentFolderID(); cur == nil || *cur != a.ID {
		t.Error("current folder should be A after first back")
	}

	got, ok = s.NavigateBack()
	if !ok || got != nil {
		t.Fatalf("second back: got %v, want root", got)
	}
	if s.CurrentFolderID() != nil {
		t.Error("current folder should be root after second back")
	}

	if _, ok := s.NavigateBack(); ok {
		t.Error("back at root with empty history should be a no-op")
	}
}

func TestNavigateToFolder_NoHistoryPushForSameFolder(t *testing.T) {
	s := New()
	a := folder("A", nil)

	s.NavigateToFolder(a)
	s.NavigateToFolder(a)

	if s.HistoryDepth() != 0 {
		t.Errorf("history depth = %d, want 0 after re-entering the same folder", s.HistoryDepth())
	}
}

func TestNavigateToFolder_TracksVehicle(t *testing.T) {
	s := New()
	vehicleID := primitive.NewObjectID()
	a := folder("A", &vehicleID)

	s.NavigateToFolder(a)
	if got := s.SelectedVehicleID(); got == nil || *got != vehicleID {
		t.Error("vehicle context should follow the target folder")
	}

	s.NavigateToFolder(nil)
	if s.SelectedVehicleID() != nil {
		t.Error("navigating to root should clear the vehicle context")
	}
}

func TestNavigateToFolder_ClearsDataRoomAndSelection(t *testing.T) {
	s := New()
	s.EnterDataRoom(primitive.NewObjectID(), "Project Atlas", nil)
	docID := primitive.NewObjectID()
	s.ToggleSelected(docID)

	s.NavigateToFolder(folder("A", nil))

	if s.DataRoomMode().Active {
		t.Error("folder navigation must clear data-room mode")
	}
	if len(s.SelectedDocuments()) != 0 {
		t.Error("folder navigation must clear the document selection")
	}
}

func TestNavigateToVehicle(t *testing.T) {
	s := New()
	a := folder("A", nil)
	s.NavigateToFolder(a)

	vehicleID := primitive.NewObjectID()
	s.NavigateToVehicle(vehicleID)

	if s.CurrentFolderID() != nil {
		t.Error("vehicle navigation should clear the open folder")
	}
	if got := s.SelectedVehicleID(); got == nil || *got != vehicleID {
		t.Error("vehicle context not set")
	}
	if !s.IsVehicleExpanded(vehicleID) {
		t.Error("destination vehicle must be expanded in the sidebar")
	}
	if s.HistoryDepth() != 1 {
		t.Errorf("history depth = %d, want 1 (previous folder pushed)", s.HistoryDepth())
	}
}

func TestDataRoom(t *testing.T) {
	s := New()
	vehicleID := primitive.NewObjectID()
	s.NavigateToFolder(folder("A", &vehicleID))

	dealID := primitive.NewObjectID()
	s.EnterDataRoom(dealID, "Project Atlas", &vehicleID)

	dr := s.DataRoomMode()
	if !dr.Active || dr.DealID != dealID || dr.DealName != "Project Atlas" {
		t.Errorf("data room = %+v, want active Project Atlas", dr)
	}
	if s.CurrentFolderID() != nil {
		t.Error("entering a data room must clear the open folder")
	}
	if got := s.SelectedVehicleID(); got == nil || *got != vehicleID {
		t.Error("entering a data room must retain vehicle context")
	}

	s.ExitDataRoom()
	if s.DataRoomMode().Active {
		t.Error("ExitDataRoom should clear data-room mode")
	}
	if s.CurrentFolderID() != nil {
		t.Error("ExitDataRoom must not re-enter any folder")
	}
}

func TestExpansion(t *testing.T) {
	s := New()
	manual := primitive.NewObjectID()
	fromSearch := primitive.NewObjectID()

	if !s.ToggleExpanded(manual) {
		t.Error("first toggle should expand")
	}
	s.SetSearchExpansion(map[primitive.ObjectID]struct{}{fromSearch: {}})

	if !s.IsExpanded(manual) || !s.IsExpanded(fromSearch) {
		t.Error("both manual and search expansion should render open")
	}

	// Clearing the query drops only the search overlay.
	s.SetSearchExpansion(nil)
	if !s.IsExpanded(manual) {
		t.Error("manual expansion must survive a cleared search")
	}
	if s.IsExpanded(fromSearch) {
		t.Error("search expansion must clear with the query")
	}

	if s.ToggleExpanded(manual) {
		t.Error("second toggle should collapse")
	}
}

func TestSelection(t *testing.T) {
	s := New()
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	s.ToggleSelected(a)
	s.ToggleSelected(b)
	if len(s.SelectedDocuments()) != 2 {
		t.Fatalf("selection size = %d, want 2", len(s.SelectedDocuments()))
	}
	s.ToggleSelected(a)
	if len(s.SelectedDocuments()) != 1 {
		t.Error("toggling again should deselect")
	}
	s.ClearSelection()
	if len(s.SelectedDocuments()) != 0 {
		t.Error("ClearSelection should empty the set")
	}
}
