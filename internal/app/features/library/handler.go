// internal/app/features/library/handler.go
package library

import (
	"net/http"
	"sync"

	errorsfeature "github.com/dalemusser/dealdocs/internal/app/features/errors"
	catalogstore "github.com/dalemusser/dealdocs/internal/app/store/catalog"
	dealstore "github.com/dalemusser/dealdocs/internal/app/store/deal"
	documentstore "github.com/dalemusser/dealdocs/internal/app/store/document"
	folderstore "github.com/dalemusser/dealdocs/internal/app/store/folder"
	vehiclestore "github.com/dalemusser/dealdocs/internal/app/store/vehicle"
	"github.com/dalemusser/dealdocs/internal/app/system/auditlog"
	"github.com/dalemusser/dealdocs/internal/app/system/auth"
	"github.com/dalemusser/dealdocs/internal/app/system/hierarchy"
	"github.com/dalemusser/dealdocs/internal/app/system/jsonutil"
	"github.com/dalemusser/dealdocs/internal/app/system/navigation"
	"github.com/dalemusser/dealdocs/internal/domain/catalog"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const maxUploadSize = 32 << 20 // 32MB

// Handler provides the document library JSON API.
type Handler struct {
	engine      *Engine
	folderStore *folderstore.Store
	docStore    *documentstore.Store
	vehicles    *vehiclestore.Store
	deals       *dealstore.Store
	fileStorage storage.Store
	errLog      *errorsfeature.ErrorLogger
	auditLogger *auditlog.Logger
	logger      *zap.Logger

	// One navigation state per session user, created on first touch.
	navMu sync.Mutex
	nav   map[string]*navigation.State

	// zones tracks drag highlight refcounts across drop zones.
	zones *hierarchy.ZoneTracker
}

// NewHandler creates a new library Handler.
func NewHandler(
	db *mongo.Database,
	fileStorage storage.Store,
	errLog *errorsfeature.ErrorLogger,
	auditLogger *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		engine:      NewEngine(catalogstore.New(db), logger),
		folderStore: folderstore.New(db),
		docStore:    documentstore.New(db),
		vehicles:    vehiclestore.New(db),
		deals:       dealstore.New(db),
		fileStorage: fileStorage,
		errLog:      errLog,
		auditLogger: auditLogger,
		logger:      logger,
		nav:         make(map[string]*navigation.State),
		zones:       hierarchy.NewZoneTracker(),
	}
}

// Engine exposes the handler's engine for startup warm-up.
func (h *Handler) Engine() *Engine {
	return h.engine
}

// Routes returns a chi.Router with library routes mounted.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireAuth) // All routes require authentication

	// Browse routes (all authenticated users)
	r.Get("/tree", h.tree)
	r.Get("/folders/{id}", h.folderContents)
	r.Get("/documents", h.listDocuments)
	r.Get("/documents/{id}/download", h.download)
	r.Get("/vehicles", h.listVehicles)
	r.Get("/deals/{id}/documents", h.dataRoom)

	// Navigation state (per session)
	r.Get("/nav", h.navState)
	r.Post("/nav/folder", h.navFolder)
	r.Post("/nav/vehicle", h.navVehicle)
	r.Post("/nav/back", h.navBack)
	r.Post("/nav/dataroom", h.navEnterDataRoom)
	r.Delete("/nav/dataroom", h.navExitDataRoom)
	r.Post("/nav/expand/{id}", h.navToggleExpanded)
	r.Post("/nav/select/{id}", h.navToggleSelected)
	r.Delete("/nav/select", h.navClearSelection)

	// Drop interpretation
	r.Post("/drop", h.interpretDrop)
	r.Post("/drop/zones/{zone}/enter", h.dropZoneEnter)
	r.Post("/drop/zones/{zone}/leave", h.dropZoneLeave)

	// Admin-only mutation routes
	r.Group(func(r chi.Router) {
		r.Use(sessionMgr.RequireRole("admin"))

		r.Post("/folders", h.createFolder)
		r.Post("/folders/{id}/rename", h.renameFolder)
		r.Delete("/folders/{id}", h.deleteFolder)

		r.Post("/documents", h.upload)
		r.Post("/documents/{id}/rename", h.renameDocument)
		r.Post("/documents/{id}/move", h.moveDocument)
		r.Put("/documents/{id}/tags", h.updateTags)
		r.Delete("/documents/{id}", h.deleteDocument)

		r.Post("/documents/bulk/move", h.bulkMove)
		r.Post("/documents/bulk/delete", h.bulkDelete)
	})

	return r
}

// APIRoutes returns read-only routes for external API consumers.
// Callers authenticate with a bearer API key instead of a browser
// session, so only stateless browse endpoints are exposed here.
func APIRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/documents", h.listDocuments)
	r.Get("/folders/{id}", h.folderContents)
	r.Get("/vehicles", h.listVehicles)
	r.Get("/deals/{id}/documents", h.dataRoom)
	return r
}

// navFor returns the navigation state for the session user, creating
// it on first use.
func (h *Handler) navFor(r *http.Request) *navigation.State {
	user, _ := auth.CurrentUser(r)
	key := ""
	if user != nil {
		key = user.ID
	}

	h.navMu.Lock()
	defer h.navMu.Unlock()
	st, ok := h.nav[key]
	if !ok {
		st = navigation.New()
		h.nav[key] = st
	}
	return st
}

// pathID parses the {id} URL parameter as an ObjectID.
func pathID(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	return id, err == nil
}

// writeCatalogError maps the catalog error taxonomy onto HTTP status
// codes: validation to 400, not-found to 404, anything else to 502.
// A not-found means another session deleted the target, so the tree
// snapshot is refreshed to drop the stale node.
func (h *Handler) writeCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	switch e := err.(type) {
	case *catalog.ValidationError:
		jsonutil.ValidationError(w, map[string]string{e.Field: e.Reason})
	case *catalog.NotFoundError:
		if refreshErr := h.engine.Refresh(r.Context()); refreshErr != nil {
			h.logger.Warn("refresh after stale reference failed", zap.Error(refreshErr))
		}
		jsonutil.NotFound(w, e.Error())
	default:
		h.errLog.Log(r, "library operation failed", err)
		jsonutil.Error(w, http.StatusBadGateway, "operation failed")
	}
}
