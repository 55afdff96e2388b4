// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"
	"strings"
	"time"

	auditlogfeature "github.com/dalemusser/dealdocs/internal/app/features/auditlog"
	errorsfeature "github.com/dalemusser/dealdocs/internal/app/features/errors"
	healthfeature "github.com/dalemusser/dealdocs/internal/app/features/health"
	libraryfeature "github.com/dalemusser/dealdocs/internal/app/features/library"
	loginfeature "github.com/dalemusser/dealdocs/internal/app/features/login"
	logoutfeature "github.com/dalemusser/dealdocs/internal/app/features/logout"
	systemusersfeature "github.com/dalemusser/dealdocs/internal/app/features/systemusers"
	"github.com/dalemusser/dealdocs/internal/app/store/audit"
	userstore "github.com/dalemusser/dealdocs/internal/app/store/users"
	"github.com/dalemusser/dealdocs/internal/app/system/apicors"
	"github.com/dalemusser/dealdocs/internal/app/system/auditlog"
	"github.com/dalemusser/dealdocs/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// Browser routes use session auth + CSRF; /api/* routes use bearer API
// key auth with permissive CORS and no CSRF.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Set up the UserFetcher so LoadSessionUser fetches fresh user data on each request.
	// This ensures role changes and disabled accounts take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase, logger))

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	// Create audit store and logger for security and mutation event tracking.
	auditStore := audit.New(deps.MongoDatabase)
	auditConfig := auditlog.Config{
		Auth:    appCfg.AuditLogAuth,
		Library: appCfg.AuditLogLibrary,
	}
	auditLogger := auditlog.New(auditStore, logger, auditConfig)

	r := chi.NewRouter()

	// Global middleware.

	// Request timeout middleware: prevents requests from hanging indefinitely.
	r.Use(chimw.Timeout(30 * time.Second))

	// CORS middleware: must be early in the chain to handle preflight requests.
	r.Use(middleware.CORSFromConfig(coreCfg))

	// Security headers middleware: adds X-Frame-Options, X-Content-Type-Options, etc.
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// Session middleware: loads SessionUser into context if logged in.
	// API routes will simply have no session, which is fine.
	r.Use(sessionMgr.LoadSessionUser)

	// CSRF protection middleware with path-based exemption for API routes.
	// Cookie name is "dealdocs_csrf" to avoid collisions with other services
	// on the same domain.
	csrfOpts := []csrf.Option{
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName("dealdocs_csrf"),
		csrf.FieldName("csrf_token"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger.Warn("CSRF validation failed",
				zap.String("path", req.URL.Path),
				zap.String("method", req.Method),
				zap.String("reason", csrf.FailureReason(req).Error()),
			)
			http.Error(w, "CSRF token invalid or missing", http.StatusForbidden)
		})),
	}
	// In dev mode, trust localhost origins for CSRF validation.
	if !secure {
		csrfOpts = append(csrfOpts, csrf.TrustedOrigins([]string{
			"localhost:8080",
			"localhost:3000",
			"127.0.0.1:8080",
			"127.0.0.1:3000",
		}))
	}
	if appCfg.SessionDomain != "" {
		csrfOpts = append(csrfOpts, csrf.Domain(appCfg.SessionDomain))
	}
	csrfProtect := csrf.Protect([]byte(appCfg.CSRFKey), csrfOpts...)

	// Wrap CSRF middleware to skip for API key routes (no browser session).
	csrfMiddleware := func(next http.Handler) http.Handler {
		csrfHandler := csrfProtect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if strings.HasPrefix(req.URL.Path, "/api/") {
				next.ServeHTTP(w, req)
				return
			}
			csrfHandler.ServeHTTP(w, req)
		})
	}
	r.Use(csrfMiddleware)

	// Health check endpoints for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	// Authentication.
	loginHandler := loginfeature.NewHandler(deps.MongoDatabase, sessionMgr, errLog, auditLogger, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLogger, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	// Document library (all authenticated users can browse, admins can manage).
	libraryHandler := libraryfeature.NewHandler(deps.MongoDatabase, deps.FileStorage, errLog, auditLogger, logger)
	r.Mount("/library", libraryfeature.Routes(libraryHandler, sessionMgr))

	// Warm the folder tree snapshot so the first request does not pay
	// for the initial load.
	warmCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := libraryHandler.Engine().Refresh(warmCtx); err != nil {
		logger.Warn("initial folder tree load failed", zap.Error(err))
	}

	// External API surface (bearer API key, permissive CORS, no CSRF).
	if appCfg.APIKey != "" {
		r.Route("/api/library", func(sr chi.Router) {
			sr.Use(apicors.Middleware())
			sr.Use(auth.APIKeyAuth(appCfg.APIKey, logger))
			sr.Mount("/", libraryfeature.APIRoutes(libraryHandler))
		})
		logger.Info("API key authentication enabled for /api/library")
	}

	// System user management (admin only).
	sysUsersHandler := systemusersfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/system-users", systemusersfeature.Routes(sysUsersHandler, sessionMgr))

	// Audit log (admin only).
	auditLogHandler := auditlogfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/audit", auditlogfeature.Routes(auditLogHandler, sessionMgr))

	// Error responses for unmatched or rejected requests.
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)
	r.NotFound(errorsHandler.NotFound)

	return r, nil
}
