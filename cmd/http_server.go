package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/frahmantamala/docflow/internal"
	"github.com/frahmantamala/docflow/internal/auth"
	authpg "github.com/frahmantamala/docflow/internal/auth/postgres"
	"github.com/frahmantamala/docflow/internal/document"
	docpg "github.com/frahmantamala/docflow/internal/document/postgres"
	"github.com/frahmantamala/docflow/internal/folder"
	folderpg "github.com/frahmantamala/docflow/internal/folder/postgres"
	"github.com/frahmantamala/docflow/internal/permission"
	"github.com/frahmantamala/docflow/internal/role"
	rolepg "github.com/frahmantamala/docflow/internal/role/postgres"
	"github.com/frahmantamala/docflow/internal/stats"
	statspg "github.com/frahmantamala/docflow/internal/stats/postgres"
	"github.com/frahmantamala/docflow/internal/storage"
	"github.com/frahmantamala/docflow/internal/task"
	taskpg "github.com/frahmantamala/docflow/internal/task/postgres"
	"github.com/frahmantamala/docflow/internal/transport/rest"
	"github.com/frahmantamala/docflow/internal/user"
	userpg "github.com/frahmantamala/docflow/internal/user/postgres"
	"github.com/frahmantamala/docflow/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	log := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// gorm shares the pgx pool instead of opening its own
	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	store, err := storage.NewMinioStore(config.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object store: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket: %w", err)
	}

	tokenGen := auth.NewJWTTokenGenerator(config.Security.JWTSecret, config.Security.AccessTokenDuration)
	authService := auth.NewService(authpg.NewRepository(gormDB), tokenGen, log)

	documentService := document.NewService(docpg.NewRepository(gormDB), store, config.Storage.ObjectURL, log)
	taskService := task.NewService(taskpg.NewRepository(gormDB), log)
	folderService := folder.NewService(folderpg.NewRepository(gormDB), log)
	roleService := role.NewService(rolepg.NewRepository(gormDB), log)
	userService := user.NewService(userpg.NewRepository(gormDB), config.Security.BCryptCost, log)
	statsService := stats.NewService(statspg.NewRepository(gormDB), log)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, rest.Handlers{
		Auth:       auth.NewHandler(authService),
		Permission: permission.NewHandler(),
		Document:   document.NewHandler(documentService),
		Task:       task.NewHandler(taskService),
		Folder:     folder.NewHandler(folderService),
		Role:       role.NewHandler(roleService),
		User:       user.NewHandler(userService),
		Stats:      stats.NewHandler(statsService),
	}, log)

	return &Dependencies{
		Config: config,
		Logger: log,
		DB:     db,
		Router: router,
	}, nil
}

// initDB opens the pgx-backed pool shared by sqlx and gorm.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
