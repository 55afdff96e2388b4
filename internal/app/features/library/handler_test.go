package library

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	errorsfeature "github.com/dalemusser/dealdocs/internal/app/features/errors"
	dealstore "github.com/dalemusser/dealdocs/internal/app/store/deal"
	folderstore "github.com/dalemusser/dealdocs/internal/app/store/folder"
	vehiclestore "github.com/dalemusser/dealdocs/internal/app/store/vehicle"
	"github.com/dalemusser/dealdocs/internal/app/system/auth"
	"github.com/dalemusser/dealdocs/internal/domain/models"
	"github.com/dalemusser/dealdocs/internal/testutil"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// testHarness bundles the handler, its router, and the stores used
// for seeding fixtures.
type testHarness struct {
	handler *Handler
	router  http.Handler
	db      *mongo.Database
	folders *folderstore.Store
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	db := testutil.SetupTestDB(t)

	fileStorage, err := storage.NewLocal(storage.LocalConfig{
		BasePath: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}

	logger := zap.NewNop()
	h := NewHandler(db, fileStorage, errorsfeature.NewErrorLogger(logger), nil, logger)

	return &testHarness{
		handler: h,
		router:  Routes(h, &auth.SessionManager{}),
		db:      db,
		folders: folderstore.New(db),
	}
}

func (th *testHarness) do(t *testing.T, user *testutil.TestUser, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req = testutil.WithUser(req, *user)
	}

	rec := httptest.NewRecorder()
	th.router.ServeHTTP(rec, req)
	return rec
}

func (th *testHarness) seedFolder(t *testing.T, name, folderType string, parentID *primitive.ObjectID) *models.Folder {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f, err := th.folders.Create(ctx, folderstore.CreateInput{
		Name:        name,
		ParentID:    parentID,
		FolderType:  folderType,
		CreatedByID: primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("failed to seed folder %q: %v", name, err)
	}
	return f
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return out
}

func TestRoutes_RequireAuth(t *testing.T) {
	th := newTestHarness(t)

	rec := th.do(t, nil, http.MethodGet, "/tree", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRoutes_AdminOnly(t *testing.T) {
	th := newTestHarness(t)
	staff := testutil.StaffUser()

	rec := th.do(t, &staff, http.MethodPost, "/folders", map[string]string{"name": "Nope"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestTree(t *testing.T) {
	th := newTestHarness(t)
	admin := testutil.AdminUser()

	root := th.seedFolder(t, "Fund I", models.FolderTypeVehicleRoot, nil)
	legal := th.seedFolder(t, "Legal", models.FolderTypeCategory, &root.ID)
	th.seedFolder(t, "Tax", models.FolderTypeCategory, &root.ID)
	th.seedFolder(t, "Side Letters", models.FolderTypeCustom, &legal.ID)

	rec := th.do(t, &admin, http.MethodGet, "/tree", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	vm := decodeBody[TreeVM](t, rec)
	if len(vm.Nodes) != 1 {
		t.Fatalf("root nodes = %d, want 1", len(vm.Nodes))
	}
	fund := vm.Nodes[0]
	if fund.Folder.Name != "Fund I" {
		t.Errorf("root name = %q, want %q", fund.Folder.Name, "Fund I")
	}
	if fund.ChildCount != 2 {
		t.Errorf("ChildCount = %d, want 2", fund.ChildCount)
	}

	// Only empty custom folders present as deletable.
	if fund.Deletable {
		t.Error("vehicle root should not be deletable")
	}
	for _, child := range fund.Children {
		if child.Deletable {
			t.Errorf("category %q should not be deletable", child.Folder.Name)
		}
		for _, grandchild := range child.Children {
			if !grandchild.Deletable {
				t.Errorf("empty custom folder %q should be deletable", grandchild.Folder.Name)
			}
		}
	}
}

func TestFolderContents(t *testing.T) {
	th := newTestHarness(t)
	admin := testutil.AdminUser()

	root := th.seedFolder(t, "Fund I", models.FolderTypeVehicleRoot, nil)
	legal := th.seedFolder(t, "Legal", models.FolderTypeCategory, &root.ID)
	nested := th.seedFolder(t, "Side Letters", models.FolderTypeCustom, &legal.ID)

	// A document in a nested subfolder is in scope for the parent.
	up := th.uploadFile(t, admin, "letter.pdf", "x", map[string]string{"folder_id": nested.ID.Hex()})
	if up.Code != http.StatusCreated {
		t.Fatalf("seed upload failed: %s", up.Body.String())
	}

	rec := th.do(t, &admin, http.MethodGet, "/folders/"+legal.ID.Hex(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	vm := decodeBody[FolderContentsVM](t, rec)
	if vm.Folder.ID != legal.ID {
		t.Errorf("Folder.ID = %s, want %s", vm.Folder.ID.Hex(), legal.ID.Hex())
	}
	if vm.Deletable {
		t.Error("category folder should not be deletable")
	}
	if len(vm.Breadcrumbs) != 1 || vm.Breadcrumbs[0].Name != "Fund I" {
		t.Errorf("Breadcrumbs = %+v, want just the Fund I ancestor", vm.Breadcrumbs)
	}
	if len(vm.Subfolders) != 1 || vm.Subfolders[0].Name != "Side Letters" {
		t.Errorf("Subfolders = %+v, want Side Letters", vm.Subfolders)
	}
	if len(vm.Documents) != 1 || vm.Documents[0].Name != "letter.pdf" {
		t.Errorf("Documents = %+v, want the nested letter.pdf", vm.Documents)
	}
}

func TestTree_Search(t *testing.T) {
	th := newTestHarness(t)
	admin := testutil.AdminUser()

	root := th.seedFolder(t, "Fund I", models.FolderTypeVehicleRoot, nil)
	legal := th.seedFolder(t, "Legal", models.FolderTypeCategory, &root.ID)
	th.seedFolder(t, "Side Letters", models.FolderTypeCustom, &legal.ID)
	th.seedFolder(t, "Tax", models.FolderTypeCategory, &root.ID)

	rec := th.do(t, &admin, http.MethodGet, "/tree?query=side", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	vm := decodeBody[TreeVM](t, rec)
	if vm.Query != "side" {
		t.Errorf("Query = %q, want %q", vm.Query, "side")
	}
	if len(vm.Nodes) != 1 {
		t.Fatalf("root nodes = %d, want 1", len(vm.Nodes))
	}

	// The chain Fund I > Legal > Side Letters survives; Tax does not.
	fund := vm.Nodes[0]
	if len(fund.Children) != 1 || fund.Children[0].Folder.Name != "Legal" {
		t.Fatalf("filtered tree should keep only the Legal chain, got %+v", fund.Children)
	}

	// Ancestors of the match auto-expand for this session.
	if !fund.Expanded {
		t.Error("Fund I should be expanded by search")
	}
	if !fund.Children[0].Expanded {
		t.Error("Legal should be expanded by search")
	}
}

func TestCreateFolder(t *testing.T) {
	th := newTestHarness(t)
	admin := testutil.AdminUser()

	root := th.seedFolder(t, "Fund I", models.FolderTypeVehicleRoot, nil)

	rec := th.do(t, &admin, http.MethodPost, "/folders", map[string]string{
		"name":      "  Board Materials  ",
		"parent_id": root.ID.Hex(),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	created := decodeBody[models.Folder](t, rec)
	if created.Name != "Board Materials" {
		t.Errorf("Name = %q, want %q (trimmed)", created.Name, "Board Materials")
	}
	if created.FolderType != models.FolderTypeCustom {
		t.Errorf("FolderType = %q, want %q", created.FolderType, models.FolderTypeCustom)
	}
	if created.Path != "Fund I/Board Materials" {
		t.Errorf("Path = %q, want %q", created.Path, "Fund I/Board Materials")
	}
}

func TestCreateFolder_EmptyName(t *testing.T) {
	th := newTestHarness(t)
	admin := testutil.AdminUser()

	rec := th.do(t, &admin, http.MethodPost, "/folders", map[string]string{"name": "   "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRenameFolder(t *testing.T) {
	th := newTestHarness(t)
	admin := testutil.AdminUser()

	f := th.seedFolder(t, "Drafts", models.FolderTypeCustom, nil)

	rec := th.do(t, &admin, http.MethodPost, "/folders/"+f.ID.Hex()+"/rename", map[string]string{"name": "Final Drafts"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusNoContent, rec.Body.String())
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	got, err := th.folders.GetByID(ctx, f.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "Final Drafts" {
		t.Errorf("Name = %q, want %q", got.Name, "Final Drafts")
	}
}

func TestRenameFolder_StaleNode(t *testing.T) {
	th := newTestHarness(t)
	admin := testutil.AdminUser()

	f := th.seedFolder(t, "Ghost", models.FolderTypeCustom, nil)

	// Warm the snapshot so it holds the folder.
	if rec := th.do(t, &admin, http.MethodGet, "/tree", nil); rec.Code != http.StatusOK {
		t.Fatalf("tree status = %d", rec.Code)
	}

	// Another session deletes the folder behind the snapshot's back.
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if _, err := th.folders.DeleteSubtree(ctx, f.ID); err != nil {
		t.Fatalf("DeleteSubtree() error = %v", err)
	}

	rec := th.do(t, &admin, http.MethodPost, "/folders/"+f.ID.Hex()+"/rename", map[string]string{"name": "Renamed"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusNotFound, rec.Body.String())
	}

	// The 404 refreshes the snapshot, so the stale node is already gone.
	if _, ok := th.handler.engine.FolderByID(f.ID); ok {
		t.Error("stale folder should leave the snapshot after the 404")
	}
}

func TestDeleteFolder_Guard(t *testing.T) {
	th := newTestHarness(t)
	admin := testutil.AdminUser()

	root := th.seedFolder(t, "Fund I", models.FolderTypeVehicleRoot, nil)

	rec := th.do(t, &admin, http.MethodDelete, "/folders/"+root.ID.Hex(), nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("deleting a vehicle root: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if _, err := th.folders.GetByID(ctx, root.ID); err != nil {
		t.Errorf("vehicle root should survive, got %v", err)
	}
}

func TestDeleteFolder_EmptyCustom(t *testing.T) {
	th := newTestHarness(t)
	admin := testutil.AdminUser()

	f := th.seedFolder(t, "Scratch", models.FolderTypeCustom, nil)

	rec := th.do(t, &admin, http.MethodDelete, "/folders/"+f.ID.Hex(), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusNoContent, rec.Body.String())
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if _, err := th.folders.GetByID(ctx, f.ID); err != mongo.ErrNoDocuments {
		t.Errorf("GetByID() after delete = %v, want ErrNoDocuments", err)
	}
}

// uploadFile posts a multipart document upload through the router.
func (th *testHarness) uploadFile(t *testing.T, user testutil.TestUser, filename, content string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField(%q) error = %v", k, err)
		}
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("writing file content: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = testutil.WithUser(req, user)

	rec := httptest.NewRecorder()
	th.router.ServeHTTP(rec, req)
	return rec
}

func TestUploadAndDownload(t *testing.T) {
	th := newTestHarness(t)
	admin := testutil.AdminUser()

	folder := th.seedFolder(t, "Reports", models.FolderTypeCustom, nil)

	rec := th.uploadFile(t, admin, "q2-report.pdf", "pdf bytes here", map[string]string{
		"folder_id": folder.ID.Hex(),
		"tags":      "quarterly, reports",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	doc := decodeBody[models.Document](t, rec)
	if doc.Name != "q2-report.pdf" {
		t.Errorf("Name = %q, want %q", doc.Name, "q2-report.pdf")
	}
	if len(doc.Tags) != 2 {
		t.Errorf("Tags = %v, want 2 entries", doc.Tags)
	}

	// The folder counter follows the upload.
	ctx, cancel := testutil.TestContext()
	defer cancel()
	f, err := th.folders.GetByID(ctx, folder.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if f.DocumentCount != 1 {
		t.Errorf("DocumentCount = %d, want 1", f.DocumentCount)
	}

	dl := th.do(t, &admin, http.MethodGet, "/documents/"+doc.ID.Hex()+"/download", nil)
	if dl.Code != http.StatusOK {
		t.Fatalf("download status = %d: %s", dl.Code, dl.Body.String())
	}
	if dl.Body.String() != "pdf bytes here" {
		t.Errorf("download body = %q, want %q", dl.Body.String(), "pdf bytes here")
	}
	if cd := dl.Header().Get("Content-Disposition"); !strings.Contains(cd, "q2-report.pdf") {
		t.Errorf("Content-Disposition = %q, want filename", cd)
	}
}

func TestMoveDocument(t *testing.T) {
	th := newTestHarness(t)
	admin := testutil.AdminUser()

	src := th.seedFolder(t, "Inbox", models.FolderTypeCustom, nil)
	dst := th.seedFolder(t, "Archive", models.FolderTypeCustom, nil)

	up := th.uploadFile(t, admin, "note.txt", "hello", map[string]string{"folder_id": src.ID.Hex()})
	doc := decodeBody[models.Document](t, up)

	rec := th.do(t, &admin, http.MethodPost, "/documents/"+doc.ID.Hex()+"/move", map[string]string{
		"folder_id": dst.ID.Hex(),
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	srcAfter, _ := th.folders.GetByID(ctx, src.ID)
	dstAfter, _ := th.folders.GetByID(ctx, dst.ID)
	if srcAfter.DocumentCount != 0 {
		t.Errorf("source DocumentCount = %d, want 0", srcAfter.DocumentCount)
	}
	if dstAfter.DocumentCount != 1 {
		t.Errorf("target DocumentCount = %d, want 1", dstAfter.DocumentCount)
	}
}

func TestBulkDelete(t *testing.T) {
	th := newTestHarness(t)
	admin := testutil.AdminUser()

	folder := th.seedFolder(t, "Temp", models.FolderTypeCustom, nil)

	var ids []string
	for i := 0; i < 3; i++ {
		up := th.uploadFile(t, admin, fmt.Sprintf("doc-%d.txt", i), "x", map[string]string{"folder_id": folder.ID.Hex()})
		if up.Code != http.StatusCreated {
			t.Fatalf("seed upload %d failed: %s", i, up.Body.String())
		}
		ids = append(ids, decodeBody[models.Document](t, up).ID.Hex())
	}

	rec := th.do(t, &admin, http.MethodPost, "/documents/bulk/delete", map[string]any{
		"document_ids": ids,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	result := decodeBody[BulkResult](t, rec)
	if result.Attempted != 3 || result.Succeeded != 3 || result.Failed != 0 {
		t.Errorf("result = %+v, want 3/3/0", result)
	}
}

func TestNavFolderAndBack(t *testing.T) {
	th := newTestHarness(t)
	admin := testutil.AdminUser()

	a := th.seedFolder(t, "Alpha", models.FolderTypeCustom, nil)
	b := th.seedFolder(t, "Beta", models.FolderTypeCustom, nil)

	rec := th.do(t, &admin, http.MethodPost, "/nav/folder", map[string]string{"folder_id": a.ID.Hex()})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = th.do(t, &admin, http.MethodPost, "/nav/folder", map[string]string{"folder_id": b.ID.Hex()})
	state := decodeBody[NavStateVM](t, rec)
	if state.CurrentFolderID == nil || *state.CurrentFolderID != b.ID {
		t.Fatalf("CurrentFolderID = %v, want %s", state.CurrentFolderID, b.ID.Hex())
	}
	if state.HistoryDepth != 1 {
		t.Errorf("HistoryDepth = %d, want 1", state.HistoryDepth)
	}

	rec = th.do(t, &admin, http.MethodPost, "/nav/back", nil)
	state = decodeBody[NavStateVM](t, rec)
	if state.CurrentFolderID == nil || *state.CurrentFolderID != a.ID {
		t.Fatalf("after back: CurrentFolderID = %v, want %s", state.CurrentFolderID, a.ID.Hex())
	}

	// Back with empty history falls back to the root.
	rec = th.do(t, &admin, http.MethodPost, "/nav/back", nil)
	state = decodeBody[NavStateVM](t, rec)
	if state.CurrentFolderID != nil {
		t.Errorf("after second back: CurrentFolderID = %v, want nil (root)", state.CurrentFolderID)
	}
}

func TestNavDataRoom(t *testing.T) {
	th := newTestHarness(t)
	admin := testutil.AdminUser()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	vehicles := vehiclestore.New(th.db)
	deals := dealstore.New(th.db)

	v, err := vehicles.Create(ctx, vehiclestore.CreateInput{Name: "Fund I", Type: "fund"})
	if err != nil {
		t.Fatalf("failed to create vehicle: %v", err)
	}
	d, err := deals.Create(ctx, dealstore.CreateInput{VehicleID: v.ID, Name: "Project Neptune"})
	if err != nil {
		t.Fatalf("failed to create deal: %v", err)
	}

	rec := th.do(t, &admin, http.MethodPost, "/nav/dataroom", map[string]string{"deal_id": d.ID.Hex()})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	state := decodeBody[NavStateVM](t, rec)
	if state.DataRoom == nil {
		t.Fatal("DataRoom should be active")
	}
	if state.DataRoom.DealName != "Project Neptune" {
		t.Errorf("DealName = %q, want %q", state.DataRoom.DealName, "Project Neptune")
	}
	if state.CurrentFolderID != nil {
		t.Error("entering a data room should close any open folder")
	}

	rec = th.do(t, &admin, http.MethodDelete, "/nav/dataroom", nil)
	state = decodeBody[NavStateVM](t, rec)
	if state.DataRoom != nil {
		t.Error("DataRoom should be cleared after exit")
	}
	if state.SelectedVehicleID == nil || *state.SelectedVehicleID != v.ID {
		t.Errorf("SelectedVehicleID = %v, want %s", state.SelectedVehicleID, v.ID.Hex())
	}
}

func TestInterpretDropEndpoint(t *testing.T) {
	th := newTestHarness(t)
	admin := testutil.AdminUser()

	docID := primitive.NewObjectID().Hex()

	// A payload with a document id is a move even when files are present.
	rec := th.do(t, &admin, http.MethodPost, "/drop", map[string]any{
		"data": map[string]string{
			"application/x-dealdocs-document-id":   docID,
			"application/x-dealdocs-document-name": "note.txt",
		},
		"files": []map[string]any{
			{"name": "shadow.txt", "size": 10},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeBody[dropResponse](t, rec)
	if resp.Kind != "move" {
		t.Errorf("Kind = %q, want %q", resp.Kind, "move")
	}
	if resp.DocumentID != docID {
		t.Errorf("DocumentID = %q, want %q", resp.DocumentID, docID)
	}

	// Files alone are an upload.
	rec = th.do(t, &admin, http.MethodPost, "/drop", map[string]any{
		"files": []map[string]any{{"name": "new.pdf", "size": 42}},
	})
	resp = decodeBody[dropResponse](t, rec)
	if resp.Kind != "upload" {
		t.Errorf("Kind = %q, want %q", resp.Kind, "upload")
	}

	// Neither is a no-op.
	rec = th.do(t, &admin, http.MethodPost, "/drop", map[string]any{})
	resp = decodeBody[dropResponse](t, rec)
	if resp.Kind != "none" {
		t.Errorf("Kind = %q, want %q", resp.Kind, "none")
	}
}

func TestDropZoneRefcount(t *testing.T) {
	th := newTestHarness(t)
	admin := testutil.AdminUser()

	enter := func() map[string]bool {
		rec := th.do(t, &admin, http.MethodPost, "/drop/zones/folder-1/enter", nil)
		return decodeBody[map[string]bool](t, rec)
	}
	leave := func() map[string]bool {
		rec := th.do(t, &admin, http.MethodPost, "/drop/zones/folder-1/leave", nil)
		return decodeBody[map[string]bool](t, rec)
	}

	if got := enter(); !got["became_active"] {
		t.Error("first enter should activate the zone")
	}
	if got := enter(); got["became_active"] {
		t.Error("nested enter should not re-activate")
	}

	// One leave from a nested child keeps the zone highlighted.
	if got := leave(); got["became_inactive"] || !got["active"] {
		t.Errorf("after first leave: %v, want still active", got)
	}
	if got := leave(); !got["became_inactive"] || got["active"] {
		t.Errorf("after final leave: %v, want inactive", got)
	}
}
