// internal/app/bootstrap/startup.go
package bootstrap

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - LoginID / loginID / login_id: The human-readable string users type to log in

import (
	"context"
	"errors"
	"strings"

	userstore "github.com/dalemusser/dealdocs/internal/app/store/users"
	"github.com/dalemusser/dealdocs/internal/app/system/authutil"
	"github.com/dalemusser/dealdocs/internal/app/system/tasks"
	"github.com/dalemusser/dealdocs/internal/app/system/timeouts"
	"github.com/dalemusser/dealdocs/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs once after DB connections and schema/index setup are complete,
// but before the HTTP handler is built and requests are served.
//
// Returning a non-nil error will abort startup and prevent the server from
// starting. The context will be cancelled if the process is asked to shut
// down while Startup is running; honor it in any long-running work.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	// Apply DEALDOCS_TIMEOUT_* overrides to the operation deadlines.
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		cur := timeouts.Current()
		logger.Info("operation timeouts overridden from environment",
			zap.Int("overridden", n),
			zap.Duration("short", cur.Short),
			zap.Duration("medium", cur.Medium),
			zap.Duration("long", cur.Long),
			zap.Duration("batch", cur.Batch))
	}

	// Seed admin user if configured
	if appCfg.SeedAdminLoginID != "" {
		if err := ensureAdminUser(ctx, deps, appCfg, logger); err != nil {
			logger.Error("failed to seed admin user", zap.Error(err))
			return err
		}
	}

	// Start background task runner
	startTaskRunner(deps.MongoDatabase, appCfg, logger)

	return nil
}

// taskRunner is the global task runner instance, used for graceful shutdown.
var taskRunner *tasks.Runner

// startTaskRunner initializes and starts the background task runner.
func startTaskRunner(db *mongo.Database, appCfg AppConfig, logger *zap.Logger) {
	taskRunner = tasks.New(logger)

	// Folder document_count is denormalized and can drift when
	// concurrent mutations race; reconcile it periodically.
	taskRunner.Register(tasks.CounterReconciliationJob(db, logger))

	// Prune audit events past the configured retention window.
	taskRunner.Register(tasks.AuditRetentionJob(db, appCfg.AuditRetention, logger))

	taskRunner.Start()
}

// ensureAdminUser ensures an admin user exists with the configured login_id.
// If a user exists with this login_id, ensure they have the admin role.
// If no user exists, create a new admin user with the configured password.
func ensureAdminUser(ctx context.Context, deps DBDeps, appCfg AppConfig, logger *zap.Logger) error {
	store := userstore.New(deps.MongoDatabase)

	loginID := strings.ToLower(strings.TrimSpace(appCfg.SeedAdminLoginID))
	name := strings.TrimSpace(appCfg.SeedAdminName)
	if name == "" {
		name = "Admin"
	}

	existing, err := store.GetByLoginID(ctx, loginID)
	if err == nil {
		if existing.Role == models.RoleAdmin {
			logger.Debug("admin user already configured", zap.String("login_id", loginID))
			return nil
		}

		adminRole := models.RoleAdmin
		if err := store.Update(ctx, existing.ID, userstore.UpdateInput{Role: &adminRole}); err != nil {
			return err
		}
		logger.Info("promoted existing user to admin",
			zap.String("login_id", loginID),
			zap.String("user_id", existing.ID.Hex()),
			zap.String("previous_role", existing.Role))
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	hash, err := authutil.HashPassword(appCfg.SeedAdminPassword)
	if err != nil {
		return err
	}

	user, err := store.Create(ctx, userstore.CreateInput{
		FullName:     name,
		LoginID:      loginID,
		Role:         models.RoleAdmin,
		PasswordHash: hash,
		Status:       models.UserStatusActive,
	})
	if err != nil {
		return err
	}

	logger.Info("created admin user",
		zap.String("login_id", loginID),
		zap.String("user_id", user.ID.Hex()))
	return nil
}
