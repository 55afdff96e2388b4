package auditlog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	errorsfeature "github.com/dalemusser/dealdocs/internal/app/features/errors"
	"github.com/dalemusser/dealdocs/internal/app/store/audit"
	"github.com/dalemusser/dealdocs/internal/app/system/auth"
	"github.com/dalemusser/dealdocs/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (http.Handler, *mongo.Database) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	h := NewHandler(db, errorsfeature.NewErrorLogger(logger), logger)
	return Routes(h, &auth.SessionManager{}), db
}

func get(t *testing.T, router http.Handler, user testutil.TestUser, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	req = testutil.WithUser(req, user)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestQuery_StaffForbidden(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := get(t, router, testutil.StaffUser(), "/")
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestQuery_FilterByEventType(t *testing.T) {
	router, db := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := audit.New(db)
	folderID := primitive.NewObjectID()

	events := []audit.Event{
		{Category: audit.CategoryLibrary, EventType: audit.EventFolderCreated, FolderID: &folderID, Success: true},
		{Category: audit.CategoryLibrary, EventType: audit.EventFolderDeleted, FolderID: &folderID, Success: true},
		{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, Success: true},
	}
	for _, e := range events {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log() error = %v", err)
		}
	}

	rec := get(t, router, testutil.AdminUser(), "/?event_type=folder_created")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var vm ListVM
	if err := json.NewDecoder(rec.Body).Decode(&vm); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if vm.Total != 1 {
		t.Errorf("Total = %d, want 1", vm.Total)
	}
	if len(vm.Events) != 1 || vm.Events[0].EventType != audit.EventFolderCreated {
		t.Errorf("Events = %+v, want one folder_created", vm.Events)
	}
}

func TestQuery_InvalidParams(t *testing.T) {
	router, _ := newTestRouter(t)
	admin := testutil.AdminUser()

	for _, target := range []string{
		"/?actor=nothex",
		"/?start=notatime",
		"/?limit=0",
		"/?offset=-1",
	} {
		rec := get(t, router, admin, target)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want %d", target, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestByFolder(t *testing.T) {
	router, db := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := audit.New(db)
	folderID := primitive.NewObjectID()
	otherID := primitive.NewObjectID()

	for _, e := range []audit.Event{
		{Category: audit.CategoryLibrary, EventType: audit.EventFolderRenamed, FolderID: &folderID, Success: true},
		{Category: audit.CategoryLibrary, EventType: audit.EventFolderRenamed, FolderID: &otherID, Success: true},
	} {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log() error = %v", err)
		}
	}

	rec := get(t, router, testutil.AdminUser(), "/folders/"+folderID.Hex())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var vm ListVM
	if err := json.NewDecoder(rec.Body).Decode(&vm); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(vm.Events) != 1 {
		t.Errorf("Events = %d, want 1", len(vm.Events))
	}
}
