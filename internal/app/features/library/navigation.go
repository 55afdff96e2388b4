// internal/app/features/library/navigation.go
package library

import (
	"context"
	"net/http"

	"github.com/dalemusser/dealdocs/internal/app/system/hierarchy"
	"github.com/dalemusser/dealdocs/internal/app/system/jsonutil"
	"github.com/dalemusser/dealdocs/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// navState returns the session's current navigation state.
func (h *Handler) navState(w http.ResponseWriter, r *http.Request) {
	jsonutil.OK(w, navStateVM(h.navFor(r)))
}

// navFolderRequest is the body for opening a folder. An empty
// FolderID opens the root.
type navFolderRequest struct {
	FolderID string `json:"folder_id,omitempty"`
}

// navFolder opens a folder for the session. Opening a folder leaves
// data-room mode and clears the document selection.
func (h *Handler) navFolder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	nav := h.navFor(r)

	var req navFolderRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "invalid request body")
		return
	}

	if req.FolderID == "" {
		nav.NavigateToFolder(nil)
		jsonutil.OK(w, navStateVM(nav))
		return
	}

	id, err := primitive.ObjectIDFromHex(req.FolderID)
	if err != nil {
		jsonutil.BadRequest(w, "invalid folder id")
		return
	}

	folder, err := h.folderStore.GetByID(ctx, id)
	if err != nil {
		jsonutil.NotFound(w, "folder not found")
		return
	}

	nav.NavigateToFolder(folder)
	jsonutil.OK(w, navStateVM(nav))
}

type navVehicleRequest struct {
	VehicleID string `json:"vehicle_id"`
}

// navVehicle selects a vehicle context for the session.
func (h *Handler) navVehicle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	nav := h.navFor(r)

	var req navVehicleRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "invalid request body")
		return
	}

	id, err := primitive.ObjectIDFromHex(req.VehicleID)
	if err != nil {
		jsonutil.BadRequest(w, "invalid vehicle id")
		return
	}

	if _, err := h.vehicles.GetByID(ctx, id); err != nil {
		jsonutil.NotFound(w, "vehicle not found")
		return
	}

	nav.NavigateToVehicle(id)
	jsonutil.OK(w, navStateVM(nav))
}

// navBack steps the session back one entry in its folder history,
// falling back to the root when the history is empty.
func (h *Handler) navBack(w http.ResponseWriter, r *http.Request) {
	nav := h.navFor(r)
	nav.NavigateBack()
	jsonutil.OK(w, navStateVM(nav))
}

type navDataRoomRequest struct {
	DealID string `json:"deal_id"`
}

// navEnterDataRoom switches the session into a deal's data room.
func (h *Handler) navEnterDataRoom(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	nav := h.navFor(r)

	var req navDataRoomRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "invalid request body")
		return
	}

	id, err := primitive.ObjectIDFromHex(req.DealID)
	if err != nil {
		jsonutil.BadRequest(w, "invalid deal id")
		return
	}

	deal, err := h.deals.GetByID(ctx, id)
	if err != nil {
		jsonutil.NotFound(w, "deal not found")
		return
	}

	nav.EnterDataRoom(deal.ID, deal.Name, &deal.VehicleID)
	jsonutil.OK(w, navStateVM(nav))
}

// navExitDataRoom leaves data-room mode, restoring the vehicle
// context the session entered from.
func (h *Handler) navExitDataRoom(w http.ResponseWriter, r *http.Request) {
	nav := h.navFor(r)
	nav.ExitDataRoom()
	jsonutil.OK(w, navStateVM(nav))
}

// navToggleExpanded flips a folder's expansion in the session's tree.
func (h *Handler) navToggleExpanded(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonutil.BadRequest(w, "invalid folder id")
		return
	}

	expanded := h.navFor(r).ToggleExpanded(id)
	jsonutil.OK(w, map[string]bool{"expanded": expanded})
}

// navToggleSelected flips a document in the session's selection.
func (h *Handler) navToggleSelected(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonutil.BadRequest(w, "invalid document id")
		return
	}

	nav := h.navFor(r)
	selected := nav.ToggleSelected(id)
	jsonutil.OK(w, map[string]any{
		"selected":  selected,
		"selection": nav.SelectedDocuments(),
	})
}

// navClearSelection empties the session's document selection.
func (h *Handler) navClearSelection(w http.ResponseWriter, r *http.Request) {
	h.navFor(r).ClearSelection()
	jsonutil.NoContent(w)
}

// interpretDrop classifies a drop payload as a document move, a file
// upload, or nothing actionable. A payload carrying a document id is
// always a move, even when native files ride along.
func (h *Handler) interpretDrop(w http.ResponseWriter, r *http.Request) {
	var req dropRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "invalid request body")
		return
	}

	drop := hierarchy.InterpretDrop(hierarchy.Transfer{
		Data:  req.Data,
		Files: req.Files,
	})

	jsonutil.OK(w, dropResponse{
		Kind:         drop.Kind,
		DocumentID:   drop.DocumentID,
		DocumentName: drop.DocumentName,
		Files:        drop.Files,
	})
}

// dropZoneEnter records a drag entering a drop zone and reports
// whether the zone should highlight.
func (h *Handler) dropZoneEnter(w http.ResponseWriter, r *http.Request) {
	zone := chi.URLParam(r, "zone")
	if zone == "" {
		jsonutil.BadRequest(w, "zone is required")
		return
	}
	became := h.zones.Enter(zone)
	jsonutil.OK(w, map[string]bool{
		"active":        true,
		"became_active": became,
	})
}

// dropZoneLeave records a drag leaving a drop zone. The zone stays
// active until every enter has a matching leave.
func (h *Handler) dropZoneLeave(w http.ResponseWriter, r *http.Request) {
	zone := chi.URLParam(r, "zone")
	if zone == "" {
		jsonutil.BadRequest(w, "zone is required")
		return
	}
	became := h.zones.Leave(zone)
	jsonutil.OK(w, map[string]bool{
		"active":          h.zones.Active(zone),
		"became_inactive": became,
	})
}
