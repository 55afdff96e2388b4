// internal/app/features/login/login.go
package login

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - LoginID / loginID / login_id: The human-readable string users type to log in

import (
	"net/http"
	"strings"

	errorsfeature "github.com/dalemusser/dealdocs/internal/app/features/errors"
	userstore "github.com/dalemusser/dealdocs/internal/app/store/users"
	"github.com/dalemusser/dealdocs/internal/app/system/auditlog"
	"github.com/dalemusser/dealdocs/internal/app/system/auth"
	"github.com/dalemusser/dealdocs/internal/app/system/authutil"
	"github.com/dalemusser/dealdocs/internal/app/system/jsonutil"
	"github.com/dalemusser/dealdocs/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler provides login handlers.
type Handler struct {
	userStore   *userstore.Store
	sessionMgr  *auth.SessionManager
	errLog      *errorsfeature.ErrorLogger
	auditLogger *auditlog.Logger
	logger      *zap.Logger
}

// NewHandler creates a new login Handler.
func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	errLog *errorsfeature.ErrorLogger,
	auditLogger *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		userStore:   userstore.New(db),
		sessionMgr:  sessionMgr,
		errLog:      errLog,
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// Routes returns a chi.Router with login routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.handleLogin)
	return r
}

type loginRequest struct {
	LoginID  string `json:"login_id"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID   string `json:"user_id"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// handleLogin authenticates a user by login id and password and
// creates a session. Lookup failures and wrong passwords both answer
// "invalid credentials" so the response does not reveal which part
// was wrong.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "invalid request body")
		return
	}

	loginID := strings.TrimSpace(req.LoginID)
	if loginID == "" || req.Password == "" {
		jsonutil.BadRequest(w, "login_id and password are required")
		return
	}

	user, err := h.userStore.GetByLoginID(ctx, loginID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			h.auditLogger.LoginFailedUserNotFound(ctx, r, loginID)
			jsonutil.Unauthorized(w, "invalid credentials")
			return
		}
		h.errLog.Log(r, "database error during login lookup", err)
		jsonutil.InternalError(w, "service temporarily unavailable")
		return
	}

	if user.Status != models.UserStatusActive {
		h.auditLogger.LoginFailedUserDisabled(ctx, r, user.ID, loginID)
		jsonutil.Forbidden(w, "account is disabled")
		return
	}

	if user.PasswordHash == "" || !authutil.CheckPassword(req.Password, user.PasswordHash) {
		h.auditLogger.LoginFailedWrongPassword(ctx, r, user.ID, loginID)
		jsonutil.Unauthorized(w, "invalid credentials")
		return
	}

	if err := h.sessionMgr.CreateSession(w, r, user.ID, user.Role, ""); err != nil {
		h.errLog.Log(r, "failed to create session", err)
		jsonutil.InternalError(w, "failed to sign in")
		return
	}

	h.auditLogger.LoginSuccess(ctx, r, user.ID, loginID)
	h.logger.Info("user signed in",
		zap.String("user_id", user.ID.Hex()),
		zap.String("role", user.Role))

	jsonutil.OK(w, loginResponse{
		UserID:   user.ID.Hex(),
		FullName: user.FullName,
		Role:     user.Role,
	})
}
