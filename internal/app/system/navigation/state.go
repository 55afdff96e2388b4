// Package navigation holds per-session browsing state for the
// document library: the open folder, back history, vehicle context,
// data-room mode, and the expansion and selection sets the tree UI
// renders from. It is the single mutable state-holder over the pure
// hierarchy functions; all changes go through explicit transitions.
package navigation

import (
	"sync"

	"github.com/dalemusser/dealdocs/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DataRoom describes the active deal data-room mode. Active and an
// open folder are mutually exclusive: entering one clears the other.
type DataRoom struct {
	Active   bool
	DealID   primitive.ObjectID
	DealName string
}

// State is one browsing session's navigation state. Safe for
// concurrent use; HTTP handlers for the same session may overlap.
type State struct {
	mu sync.Mutex

	currentFolderID   *primitive.ObjectID
	history           []primitive.ObjectID
	selectedVehicleID *primitive.ObjectID
	dataRoom          DataRoom

	// expanded is the user's manual tree expansion; searchExpanded is
	// the additive overlay computed from the active search query.
	expanded         map[primitive.ObjectID]struct{}
	searchExpanded   map[primitive.ObjectID]struct{}
	expandedVehicles map[primitive.ObjectID]struct{}
	selectedDocs     map[primitive.ObjectID]struct{}
}

// New returns a session state at the root: no folder, no vehicle, no
// data room.
func New() *State {
	return &State{
		expanded:         make(map[primitive.ObjectID]struct{}),
		searchExpanded:   make(map[primitive.ObjectID]struct{}),
		expandedVehicles: make(map[primitive.ObjectID]struct{}),
		selectedDocs:     make(map[primitive.ObjectID]struct{}),
	}
}

// NavigateToFolder opens a folder (nil = root). The previous folder is
// pushed onto history when it differs and was non-nil. Data-room mode,
// the document selection, and any deal scoping are cleared; the
// vehicle context follows the target folder.
func (s *State) NavigateToFolder(target *models.Folder) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var targetID *primitive.ObjectID
	if target != nil {
		id := target.ID
		targetID = &id
	}

	s.pushHistory(targetID)
	s.currentFolderID = targetID
	s.dataRoom = DataRoom{}
	s.selectedDocs = make(map[primitive.ObjectID]struct{})

	if target != nil && target.VehicleID != nil {
		id := *target.VehicleID
		s.selectedVehicleID = &id
	} else {
		s.selectedVehicleID = nil
	}
}

// NavigateToVehicle clears the open folder but retains vehicle
// context, showing the vehicle's default folder set. The vehicle is
// also marked expanded in the sidebar so the destination is visible —
// a presentation side effect, but part of this transition's contract.
func (s *State) NavigateToVehicle(vehicleID primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pushHistory(nil)
	s.currentFolderID = nil
	s.selectedVehicleID = &vehicleID
	s.dataRoom = DataRoom{}
	s.selectedDocs = make(map[primitive.ObjectID]struct{})
	s.expandedVehicles[vehicleID] = struct{}{}
}

// NavigateBack pops one history entry and re-enters that folder
// without pushing a new entry. Returns the folder id to re-enter and
// false when history is empty (no-op).
func (s *State) NavigateBack() (*primitive.ObjectID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) == 0 {
		if s.currentFolderID == nil {
			return nil, false
		}
		// History exhausted: back from the first folder returns to root.
		s.currentFolderID = nil
		s.selectedVehicleID = nil
		s.dataRoom = DataRoom{}
		return nil, true
	}

	last := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	s.currentFolderID = &last
	s.dataRoom = DataRoom{}
	id := last
	return &id, true
}

// EnterDataRoom switches to the deal's data room, clearing any open
// folder but retaining the vehicle context.
func (s *State) EnterDataRoom(dealID primitive.ObjectID, dealName string, vehicleID *primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentFolderID = nil
	s.dataRoom = DataRoom{Active: true, DealID: dealID, DealName: dealName}
	if vehicleID != nil {
		id := *vehicleID
		s.selectedVehicleID = &id
	}
	s.selectedDocs = make(map[primitive.ObjectID]struct{})
}

// ExitDataRoom clears data-room mode. It does not re-enter any folder;
// callers navigate explicitly.
func (s *State) ExitDataRoom() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataRoom = DataRoom{}
}

// pushHistory records the previous folder before a navigation, only
// when it was non-nil and differs from the destination. Caller holds
// the lock.
func (s *State) pushHistory(targetID *primitive.ObjectID) {
	if s.currentFolderID == nil {
		return
	}
	if targetID != nil && *targetID == *s.currentFolderID {
		return
	}
	s.history = append(s.history, *s.currentFolderID)
}

// CurrentFolderID returns the open folder id, nil at root.
func (s *State) CurrentFolderID() *primitive.ObjectID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentFolderID == nil {
		return nil
	}
	id := *s.currentFolderID
	return &id
}

// SelectedVehicleID returns the active vehicle context, if any.
func (s *State) SelectedVehicleID() *primitive.ObjectID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedVehicleID == nil {
		return nil
	}
	id := *s.selectedVehicleID
	return &id
}

// DataRoomMode returns the current data-room state.
func (s *State) DataRoomMode() DataRoom {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dataRoom
}

// HistoryDepth returns the number of folders on the back stack.
func (s *State) HistoryDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// ToggleExpanded flips a folder's manual expansion and reports the new
// state.
func (s *State) ToggleExpanded(folderID primitive.ObjectID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expanded[folderID]; ok {
		delete(s.expanded, folderID)
		return false
	}
	s.expanded[folderID] = struct{}{}
	return true
}

// SetSearchExpansion replaces the search-induced expansion overlay.
// Pass nil (or an empty set) when the query clears, falling back to
// manual expansion only.
func (s *State) SetSearchExpansion(ids map[primitive.ObjectID]struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchExpanded = make(map[primitive.ObjectID]struct{}, len(ids))
	for id := range ids {
		s.searchExpanded[id] = struct{}{}
	}
}

// IsExpanded reports whether the tree should render a folder open:
// manually expanded, or force-expanded by the active search.
func (s *State) IsExpanded(folderID primitive.ObjectID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expanded[folderID]; ok {
		return true
	}
	_, ok := s.searchExpanded[folderID]
	return ok
}

// IsVehicleExpanded reports whether a vehicle group is open in the
// sidebar.
func (s *State) IsVehicleExpanded(vehicleID primitive.ObjectID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.expandedVehicles[vehicleID]
	return ok
}

// ToggleSelected flips a document in the selection set and reports the
// new state.
func (s *State) ToggleSelected(docID primitive.ObjectID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.selectedDocs[docID]; ok {
		delete(s.selectedDocs, docID)
		return false
	}
	s.selectedDocs[docID] = struct{}{}
	return true
}

// SelectedDocuments returns the selected document ids in no particular
// order.
func (s *State) SelectedDocuments() []primitive.ObjectID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]primitive.ObjectID, 0, len(s.selectedDocs))
	for id := range s.selectedDocs {
		out = append(out, id)
	}
	return out
}

// ClearSelection empties the document selection set.
func (s *State) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedDocs = make(map[primitive.ObjectID]struct{})
}
