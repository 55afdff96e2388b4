// internal/app/features/systemusers/systemusers.go
// Package systemusers provides admin management of staff accounts.
package systemusers

import (
	"context"
	"net/http"
	"strings"

	errorsfeature "github.com/dalemusser/dealdocs/internal/app/features/errors"
	userstore "github.com/dalemusser/dealdocs/internal/app/store/users"
	"github.com/dalemusser/dealdocs/internal/app/system/auth"
	"github.com/dalemusser/dealdocs/internal/app/system/authutil"
	"github.com/dalemusser/dealdocs/internal/app/system/inputval"
	"github.com/dalemusser/dealdocs/internal/app/system/jsonutil"
	"github.com/dalemusser/dealdocs/internal/app/system/timeouts"
	"github.com/dalemusser/dealdocs/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler provides system user management handlers.
type Handler struct {
	userStore *userstore.Store
	errLog    *errorsfeature.ErrorLogger
	logger    *zap.Logger
}

// NewHandler creates a new systemusers Handler.
func NewHandler(db *mongo.Database, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		userStore: userstore.New(db),
		errLog:    errLog,
		logger:    logger,
	}
}

// Routes returns a chi.Router with user management routes mounted.
// All routes require an admin session.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireAuth)
	r.Use(sessionMgr.RequireRole("admin"))

	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)

	return r
}

type createRequest struct {
	FullName string `json:"full_name" validate:"required,max=200" label:"Full name"`
	LoginID  string `json:"login_id" validate:"required,max=254" label:"Login ID"`
	Role     string `json:"role" validate:"required,role" label:"Role"`
	Password string `json:"password" validate:"required,min=8" label:"Password"`
}

type updateRequest struct {
	FullName *string `json:"full_name,omitempty"`
	LoginID  *string `json:"login_id,omitempty"`
	Role     *string `json:"role,omitempty"`
	Status   *string `json:"status,omitempty"`
	Password *string `json:"password,omitempty"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	users, err := h.userStore.ListAll(ctx)
	if err != nil {
		h.errLog.Log(r, "failed to list users", err)
		jsonutil.InternalError(w, "failed to load users")
		return
	}
	jsonutil.OK(w, users)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var req createRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "invalid request body")
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.LoginID = strings.TrimSpace(req.LoginID)
	if res := inputval.Validate(req); res.HasErrors() {
		jsonutil.ValidationError(w, res.FieldMap())
		return
	}
	if err := authutil.ValidatePassword(req.Password); err != nil {
		jsonutil.ValidationError(w, map[string]string{"password": err.Error()})
		return
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		h.errLog.Log(r, "failed to hash password", err)
		jsonutil.InternalError(w, "failed to create user")
		return
	}

	user, err := h.userStore.Create(ctx, userstore.CreateInput{
		FullName:     req.FullName,
		LoginID:      req.LoginID,
		Role:         req.Role,
		PasswordHash: hash,
		Status:       models.UserStatusActive,
	})
	if err != nil {
		if err == userstore.ErrDuplicateLoginID {
			jsonutil.ValidationError(w, map[string]string{"login_id": "already in use"})
			return
		}
		h.errLog.Log(r, "failed to create user", err)
		jsonutil.InternalError(w, "failed to create user")
		return
	}

	jsonutil.Created(w, user)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid user id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.userStore.GetByID(ctx, id)
	if err != nil {
		jsonutil.NotFound(w, "user not found")
		return
	}
	jsonutil.OK(w, user)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid user id")
		return
	}

	var req updateRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "invalid request body")
		return
	}

	if req.Role != nil && !inputval.IsValidRole(*req.Role) {
		jsonutil.ValidationError(w, map[string]string{"role": "must be admin or staff"})
		return
	}

	input := userstore.UpdateInput{
		FullName: req.FullName,
		LoginID:  req.LoginID,
		Role:     req.Role,
		Status:   req.Status,
	}

	if req.Password != nil {
		if len(*req.Password) < 8 {
			jsonutil.ValidationError(w, map[string]string{"password": "must be at least 8 characters"})
			return
		}
		if err := authutil.ValidatePassword(*req.Password); err != nil {
			jsonutil.ValidationError(w, map[string]string{"password": err.Error()})
			return
		}
		hash, err := authutil.HashPassword(*req.Password)
		if err != nil {
			h.errLog.Log(r, "failed to hash password", err)
			jsonutil.InternalError(w, "failed to update user")
			return
		}
		input.PasswordHash = &hash
	}

	// Demoting or disabling the last active admin would lock everyone
	// out of user management.
	if req.Role != nil || req.Status != nil {
		current, err := h.userStore.GetByID(ctx, id)
		if err != nil {
			jsonutil.NotFound(w, "user not found")
			return
		}
		if current.Role == models.RoleAdmin && current.Status == models.UserStatusActive {
			losesAdmin := req.Role != nil && *req.Role != models.RoleAdmin
			losesActive := req.Status != nil && *req.Status != models.UserStatusActive
			if losesAdmin || losesActive {
				count, err := h.userStore.CountActiveAdmins(ctx)
				if err != nil {
					h.errLog.Log(r, "failed to count active admins", err)
					jsonutil.InternalError(w, "failed to update user")
					return
				}
				if count <= 1 {
					jsonutil.ValidationError(w, map[string]string{"role": "cannot remove the last active admin"})
					return
				}
			}
		}
	}

	if err := h.userStore.Update(ctx, id, input); err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "user not found")
			return
		}
		if err == userstore.ErrDuplicateLoginID {
			jsonutil.ValidationError(w, map[string]string{"login_id": "already in use"})
			return
		}
		h.errLog.Log(r, "failed to update user", err)
		jsonutil.InternalError(w, "failed to update user")
		return
	}

	jsonutil.NoContent(w)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid user id")
		return
	}

	actor, _ := auth.CurrentUser(r)
	if actor != nil && actor.ID == id.Hex() {
		jsonutil.BadRequest(w, "cannot delete your own account")
		return
	}

	user, err := h.userStore.GetByID(ctx, id)
	if err != nil {
		jsonutil.NotFound(w, "user not found")
		return
	}

	if user.Role == models.RoleAdmin && user.Status == models.UserStatusActive {
		count, err := h.userStore.CountActiveAdmins(ctx)
		if err != nil {
			h.errLog.Log(r, "failed to count active admins", err)
			jsonutil.InternalError(w, "failed to delete user")
			return
		}
		if count <= 1 {
			jsonutil.BadRequest(w, "cannot delete the last active admin")
			return
		}
	}

	if _, err := h.userStore.Delete(ctx, id); err != nil {
		h.errLog.Log(r, "failed to delete user", err)
		jsonutil.InternalError(w, "failed to delete user")
		return
	}

	h.logger.Info("user deleted", zap.String("user_id", id.Hex()))
	jsonutil.NoContent(w)
}
