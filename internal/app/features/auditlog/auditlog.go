// internal/app/features/auditlog/auditlog.go
// Package auditlog provides the admin audit trail query API.
package auditlog

import (
	"context"
	"net/http"
	"strconv"
	"time"

	errorsfeature "github.com/dalemusser/dealdocs/internal/app/features/errors"
	"github.com/dalemusser/dealdocs/internal/app/store/audit"
	"github.com/dalemusser/dealdocs/internal/app/system/auth"
	"github.com/dalemusser/dealdocs/internal/app/system/jsonutil"
	"github.com/dalemusser/dealdocs/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler provides audit log query handlers.
type Handler struct {
	auditStore *audit.Store
	errLog     *errorsfeature.ErrorLogger
	logger     *zap.Logger
}

// NewHandler creates a new auditlog Handler.
func NewHandler(db *mongo.Database, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		auditStore: audit.New(db),
		errLog:     errLog,
		logger:     logger,
	}
}

// Routes returns a chi.Router with audit log routes mounted. Admin only.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireAuth)
	r.Use(sessionMgr.RequireRole("admin"))

	r.Get("/", h.query)
	r.Get("/folders/{id}", h.byFolder)

	return r
}

// ListVM is the response for audit log queries.
type ListVM struct {
	Events []audit.Event `json:"events"`
	Total  int64         `json:"total"`
}

// query returns audit events filtered by the query parameters:
// category, event_type, actor, folder, document, start, end (RFC3339),
// limit, offset.
func (h *Handler) query(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	q := r.URL.Query()

	filter := audit.QueryFilter{
		Category:  q.Get("category"),
		EventType: q.Get("event_type"),
	}

	for param, dst := range map[string]**primitive.ObjectID{
		"actor":    &filter.ActorID,
		"folder":   &filter.FolderID,
		"document": &filter.DocumentID,
	} {
		if s := q.Get(param); s != "" {
			id, err := primitive.ObjectIDFromHex(s)
			if err != nil {
				jsonutil.BadRequest(w, "invalid "+param+" id")
				return
			}
			*dst = &id
		}
	}

	if s := q.Get("start"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			jsonutil.BadRequest(w, "invalid start time")
			return
		}
		filter.StartTime = &t
	}
	if s := q.Get("end"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			jsonutil.BadRequest(w, "invalid end time")
			return
		}
		filter.EndTime = &t
	}

	if s := q.Get("limit"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 1 {
			jsonutil.BadRequest(w, "invalid limit")
			return
		}
		filter.Limit = n
	}
	if s := q.Get("offset"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 0 {
			jsonutil.BadRequest(w, "invalid offset")
			return
		}
		filter.Offset = n
	}

	events, err := h.auditStore.Query(ctx, filter)
	if err != nil {
		h.errLog.Log(r, "failed to query audit log", err)
		jsonutil.InternalError(w, "failed to load audit log")
		return
	}

	total, err := h.auditStore.CountByFilter(ctx, filter)
	if err != nil {
		h.errLog.Log(r, "failed to count audit events", err)
		jsonutil.InternalError(w, "failed to load audit log")
		return
	}

	jsonutil.OK(w, ListVM{Events: events, Total: total})
}

// byFolder returns the recent audit trail for one folder.
func (h *Handler) byFolder(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid folder id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	events, err := h.auditStore.GetByFolder(ctx, id, 100)
	if err != nil {
		h.errLog.Log(r, "failed to load folder audit trail", err)
		jsonutil.InternalError(w, "failed to load audit log")
		return
	}

	jsonutil.OK(w, ListVM{Events: events, Total: int64(len(events))})
}
