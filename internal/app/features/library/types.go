// internal/app/features/library/types.go
package library

import (
	"github.com/dalemusser/dealdocs/internal/app/system/hierarchy"
	"github.com/dalemusser/dealdocs/internal/app/system/navigation"
	"github.com/dalemusser/dealdocs/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TreeNodeVM is a folder tree node decorated with the session's
// expansion state. Deletable drives the disabled state of the delete
// action in the client.
type TreeNodeVM struct {
	Folder        models.Folder `json:"folder"`
	Expanded      bool          `json:"expanded"`
	Deletable     bool          `json:"deletable"`
	ChildCount    int           `json:"child_count"`
	DocumentCount int64         `json:"document_count"`
	Children      []TreeNodeVM  `json:"children,omitempty"`
}

// TreeVM is the response for the tree endpoint.
type TreeVM struct {
	Nodes []TreeNodeVM `json:"nodes"`
	Query string       `json:"query,omitempty"`
}

// buildTreeVM converts hierarchy nodes into view models, marking each
// node expanded per the navigation state plus any search expansion.
func buildTreeVM(nodes []*hierarchy.Node, nav *navigation.State) []TreeNodeVM {
	out := make([]TreeNodeVM, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, TreeNodeVM{
			Folder:        n.Folder,
			Expanded:      nav.IsExpanded(n.Folder.ID),
			Deletable:     n.Folder.Deletable(),
			ChildCount:    len(n.Children),
			DocumentCount: n.Folder.DocumentCount,
			Children:      buildTreeVM(n.Children, nav),
		})
	}
	return out
}

// FolderContentsVM is the response for browsing a folder.
type FolderContentsVM struct {
	Folder      models.Folder     `json:"folder"`
	Deletable   bool              `json:"deletable"`
	Breadcrumbs []models.Folder   `json:"breadcrumbs"`
	Subfolders  []models.Folder   `json:"subfolders"`
	Documents   []models.Document `json:"documents"`
}

// NavStateVM is the JSON shape of the session's navigation state.
type NavStateVM struct {
	CurrentFolderID   *primitive.ObjectID  `json:"current_folder_id,omitempty"`
	SelectedVehicleID *primitive.ObjectID  `json:"selected_vehicle_id,omitempty"`
	DataRoom          *DataRoomVM          `json:"data_room,omitempty"`
	HistoryDepth      int                  `json:"history_depth"`
	SelectedDocuments []primitive.ObjectID `json:"selected_documents"`
}

// DataRoomVM describes an active deal data-room session.
type DataRoomVM struct {
	DealID   primitive.ObjectID `json:"deal_id"`
	DealName string             `json:"deal_name"`
}

func navStateVM(st *navigation.State) NavStateVM {
	vm := NavStateVM{
		CurrentFolderID:   st.CurrentFolderID(),
		SelectedVehicleID: st.SelectedVehicleID(),
		HistoryDepth:      st.HistoryDepth(),
		SelectedDocuments: st.SelectedDocuments(),
	}
	if dr := st.DataRoomMode(); dr.Active {
		vm.DataRoom = &DataRoomVM{
			DealID:   dr.DealID,
			DealName: dr.DealName,
		}
	}
	return vm
}

// VehicleVM is a vehicle with its deals for the sidebar listing.
type VehicleVM struct {
	Vehicle models.Vehicle `json:"vehicle"`
	Deals   []models.Deal  `json:"deals"`
}

// createFolderRequest is the body for folder creation.
type createFolderRequest struct {
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
}

// renameRequest is the body for folder and document renames.
type renameRequest struct {
	Name string `json:"name"`
}

// moveRequest is the body for moving a document. An empty FolderID
// moves the document to the root level.
type moveRequest struct {
	FolderID string `json:"folder_id,omitempty"`
}

// tagsRequest is the body for replacing a document's tags.
type tagsRequest struct {
	Tags []string `json:"tags"`
}

// bulkRequest is the body for bulk move and bulk delete. FolderID is
// only consulted for moves.
type bulkRequest struct {
	DocumentIDs []string `json:"document_ids"`
	FolderID    string   `json:"folder_id,omitempty"`
}

// dropRequest mirrors the browser's DataTransfer payload: typed string
// entries plus file metadata for external file drops.
type dropRequest struct {
	Data  map[string]string     `json:"data"`
	Files []hierarchy.FileEntry `json:"files"`
}

// dropResponse tells the client how to treat the drop.
type dropResponse struct {
	Kind         string                `json:"kind"` // "none", "upload", or "move"
	DocumentID   string                `json:"document_id,omitempty"`
	DocumentName string                `json:"document_name,omitempty"`
	Files        []hierarchy.FileEntry `json:"files,omitempty"`
}
