// Package server initializes and runs the capsule server. It validates the
// configuration, prepares the database and object storage, and serves the
// HTTP API until the process is signalled.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/timecapsule/internal/logging"
	"github.com/dmitrijs2005/timecapsule/internal/server/auth"
	"github.com/dmitrijs2005/timecapsule/internal/server/clock"
	"github.com/dmitrijs2005/timecapsule/internal/server/config"
	"github.com/dmitrijs2005/timecapsule/internal/server/httpserver"
	"github.com/dmitrijs2005/timecapsule/internal/server/objectstore"
	"github.com/dmitrijs2005/timecapsule/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/timecapsule/internal/server/services"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Seams for tests.
var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}
	newRepoManager = repomanager.NewPostgresRepositoryManager
	newPresigner   = func(ctx context.Context, c *config.Config) (services.Presigner, error) {
		return objectstore.NewS3Presigner(ctx, c)
	}
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server runner
}

type runner interface {
	Run(ctx context.Context) error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	policy, err := clock.New(c.TimeZone)
	if err != nil {
		return nil, err
	}

	codec, err := auth.NewCodec([]byte(c.SecretKey), c.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("session codec: %w", err)
	}

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := newRepoManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	presigner, err := newPresigner(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("object storage init error: %w", err)
	}

	router := httpserver.NewRouter(httpserver.Deps{
		Sessions:      auth.NewCookieStore(codec, c.IsProduction(), logger),
		Authenticator: auth.NewAuthenticator(c.Credentials),
		Clock:         policy,
		Ledger:        services.NewLedgerService(db, rm, logger.With("module", "ledger")),
		Board:         services.NewBoardService(db, rm, presigner, policy, logger.With("module", "board")),
		Prompts:       services.NewPromptBank(nil),
		Logger:        logger,
	})

	return &App{
		config: c,
		logger: logger,
		db:     db,
		server: httpserver.NewHTTPServer(c.HTTPAddr, logger, router),
	}, nil
}

func (app *App) initSignalHandler(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := app.initSignalHandler(ctx)
	defer cancel()

	defer func() {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "closing database", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting app...", "environment", app.config.Environment)

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		return err
	}

	app.logger.Info(ctx, "App stopped")
	return nil
}
