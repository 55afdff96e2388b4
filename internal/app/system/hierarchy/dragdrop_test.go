package hierarchy

import "testing"

func TestInterpretDrop_Move(t *testing.T) {
	drop := InterpretDrop(Transfer{
		Data: map[string]string{
			TransferKeyDocumentID:   "doc-123",
			TransferKeyDocumentName: "subscription-agreement.pdf",
		},
	})

	if drop.Kind != DropMove {
		t.Fatalf("Kind = %s, want %s", drop.Kind, DropMove)
	}
	if drop.DocumentID != "doc-123" {
		t.Errorf("DocumentID = %s, want doc-123", drop.DocumentID)
	}
	if drop.DocumentName != "subscription-agreement.pdf" {
		t.Errorf("DocumentName = %s, want subscription-agreement.pdf", drop.DocumentName)
	}
}

func TestInterpretDrop_Upload(t *testing.T) {
	files := []FileEntry{{Name: "kyc.pdf", Size: 1024, ContentType: "application/pdf"}}
	drop := InterpretDrop(Transfer{Files: files})

	if drop.Kind != DropUpload {
		t.Fatalf("Kind = %s, want %s", drop.Kind, DropUpload)
	}
	if len(drop.Files) != 1 || drop.Files[0].Name != "kyc.pdf" {
		t.Error("upload drop should carry the file entries")
	}
}

// A payload carrying both a document id and native files is a move:
// the document-identity check must run before the file check.
func TestInterpretDrop_MoveWinsOverFiles(t *testing.T) {
	drop := InterpretDrop(Transfer{
		Data:  map[string]string{TransferKeyDocumentID: "doc-9"},
		Files: []FileEntry{{Name: "shadow.pdf"}},
	})

	if drop.Kind != DropMove {
		t.Fatalf("Kind = %s, want %s (document key must win over files)", drop.Kind, DropMove)
	}
	if drop.DocumentID != "doc-9" {
		t.Errorf("DocumentID = %s, want doc-9", drop.DocumentID)
	}
}

func TestInterpretDrop_Empty(t *testing.T) {
	if drop := InterpretDrop(Transfer{}); drop.Kind != DropNone {
		t.Errorf("Kind = %s, want %s", drop.Kind, DropNone)
	}
	// An empty document id does not count as a document payload.
	drop := InterpretDrop(Transfer{Data: map[string]string{TransferKeyDocumentID: ""}})
	if drop.Kind != DropNone {
		t.Errorf("Kind = %s, want %s for blank document id", drop.Kind, DropNone)
	}
}

func TestZoneTracker(t *testing.T) {
	z := NewZoneTracker()

	if !z.Enter("folder-a") {
		t.Error("first Enter should activate the zone")
	}
	// Pointer crosses into a nested child element: a second enter fires
	// before the child's leave.
	if z.Enter("folder-a") {
		t.Error("nested Enter should not re-activate")
	}
	if z.Leave("folder-a") {
		t.Error("leaving the child must not deactivate the zone")
	}
	if !z.Active("folder-a") {
		t.Error("zone should remain active while one enter is unmatched")
	}
	if !z.Leave("folder-a") {
		t.Error("final Leave should deactivate the zone")
	}
	if z.Active("folder-a") {
		t.Error("zone should be inactive after balanced leaves")
	}
}

func TestZoneTracker_UnbalancedLeave(t *testing.T) {
	z := NewZoneTracker()
	if z.Leave("folder-b") {
		t.Error("Leave on inactive zone should be a no-op")
	}
	z.Enter("folder-b")
	z.Reset("folder-b")
	if z.Active("folder-b") {
		t.Error("Reset should clear the zone")
	}
}
