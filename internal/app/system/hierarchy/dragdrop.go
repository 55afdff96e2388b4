// internal/app/system/hierarchy/dragdrop.go
package hierarchy

import "sync"

// Payload keys set by the drag source when an existing document card
// is dragged. Their presence is what distinguishes an intra-tree move
// from a native file upload.
const (
	TransferKeyDocumentID   = "application/x-dealdocs-document-id"
	TransferKeyDocumentName = "application/x-dealdocs-document-name"
)

// FileEntry is one native file in a drop payload.
type FileEntry struct {
	Name        string
	Size        int64
	ContentType string
}

// Transfer is the payload of a single drop gesture: string data keyed
// by type plus any native file entries.
type Transfer struct {
	Data  map[string]string
	Files []FileEntry
}

// Drop kinds.
const (
	DropNone   = "none"
	DropUpload = "upload"
	DropMove   = "move"
)

// Drop is the interpreted outcome of a drop gesture on a folder target.
type Drop struct {
	Kind         string
	Files        []FileEntry // set for uploads
	DocumentID   string      // set for moves
	DocumentName string
}

// InterpretDrop decides whether a drop on a folder is a document move
// or a file upload. The document-identity check runs first: a payload
// carrying a document id is a move even when native files are also
// present, so the same tree node can serve as both a move target and
// an upload target. Reordering these checks would misclassify moves
// as uploads. A payload with neither is a no-op.
func InterpretDrop(t Transfer) Drop {
	if id, ok := t.Data[TransferKeyDocumentID]; ok && id != "" {
		return Drop{
			Kind:         DropMove,
			DocumentID:   id,
			DocumentName: t.Data[TransferKeyDocumentName],
		}
	}
	if len(t.Files) > 0 {
		return Drop{Kind: DropUpload, Files: t.Files}
	}
	return Drop{Kind: DropNone}
}

// ZoneTracker keeps a reference count of drag-enter/leave events per
// drop zone. Nested child elements fire their own enter/leave pairs,
// so a boolean would flicker as the pointer crosses child boundaries;
// the zone stays active until every enter has a matching leave.
type ZoneTracker struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewZoneTracker creates an empty tracker.
func NewZoneTracker() *ZoneTracker {
	return &ZoneTracker{counts: make(map[string]int)}
}

// Enter records a drag entering the zone and returns true if the zone
// became active.
func (z *ZoneTracker) Enter(zone string) bool {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.counts[zone]++
	return z.counts[zone] == 1
}

// Leave records a drag leaving the zone and returns true if the zone
// became inactive. Unbalanced leaves are clamped at zero.
func (z *ZoneTracker) Leave(zone string) bool {
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.counts[zone] == 0 {
		return false
	}
	z.counts[zone]--
	if z.counts[zone] == 0 {
		delete(z.counts, zone)
		return true
	}
	return false
}

// Active reports whether the zone currently has an unmatched enter.
func (z *ZoneTracker) Active(zone string) bool {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.counts[zone] > 0
}

// Reset clears a zone, used when a drop completes or a drag is
// cancelled mid-gesture.
func (z *ZoneTracker) Reset(zone string) {
	z.mu.Lock()
	defer z.mu.Unlock()
	delete(z.counts, zone)
}
