// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	router "bike-wallet/internal/api"
	"bike-wallet/internal/api/handler"
	"bike-wallet/internal/config"
	"bike-wallet/internal/lock"
	"bike-wallet/internal/repository"
	"bike-wallet/internal/repository/postgres"
	"bike-wallet/internal/service"
	"bike-wallet/internal/util"
	"bike-wallet/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB
	Redis  *redis.Client // nil when locks are in-process

	// Repositories
	ClientRepository      repository.ClientRepository
	WalletRepository      repository.WalletRepository
	TransactionRepository repository.TransactionRepository

	Locker lock.Locker

	// Services
	WalletService service.WalletService
	ClientService service.ClientService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{Logger: util.GetLogger()}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger(cfg.LogLevel)
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Connect to Database and apply migrations
	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	if err := db.Migrate(ctx, app.DB, app.Logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// 4. Owner lock
	if err := app.initLocker(ctx); err != nil {
		return err
	}

	// 5. Initialize Repositories
	app.ClientRepository = postgres.NewClientRepository()
	app.WalletRepository = postgres.NewWalletRepository()
	app.TransactionRepository = postgres.NewTransactionRepository()
	app.Logger.Info("Repositories initialized.")

	// 6. Initialize Services
	// Pass the concrete db.BeginTx, db.CommitTx, db.RollbackTx functions from pkg/db
	app.WalletService = service.NewWalletService(
		app.DB, // This is the DBTxBeginner
		app.DB, // This is the DBExecutor
		app.ClientRepository,
		app.WalletRepository,
		app.TransactionRepository,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
		app.Locker,
		app.Logger,
		app.Config.Lock.MaxSaveAttempts,
	)
	app.ClientService = service.NewClientService(app.DB, app.ClientRepository, app.Logger)
	app.Logger.Info("Services initialized.")

	// 7. Initialize HTTP Handlers and Router
	walletHandler := handler.NewWalletHandler(app.WalletService, app.Logger)
	clientHandler := handler.NewClientHandler(app.ClientService, app.Logger)
	app.HTTPHandler = router.NewRouter(walletHandler, clientHandler, app.Logger, app.Config.AllowedOrigins)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

func (app *Application) initLocker(ctx context.Context) error {
	lockCfg := app.Config.Lock
	if lockCfg.RedisURL == "" {
		app.Locker = lock.NewLocalLocker()
		app.Logger.Info("Using in-process wallet locks.")
		return nil
	}

	client, err := lock.NewRedisClient(ctx, lockCfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	app.Redis = client
	app.Locker = lock.NewRedisLocker(client, lock.RedisOptions{
		TTL:         lockCfg.TTL,
		WaitTimeout: lockCfg.WaitTimeout,
	}, app.Logger)
	app.Logger.Info("Using Redis wallet locks.", "ttl", lockCfg.TTL, "wait", lockCfg.WaitTimeout)
	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			app.Logger.Error("Failed to close redis connection", "error", err)
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
