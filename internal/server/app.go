// Package server wires configuration, storage, services and the gRPC, HTTP and
// cron front ends into one runnable application with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/httpapi"
	"github.com/dmitrijs2005/gophauth/internal/server/jobs"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	users     *services.UserService
	blacklist *services.BlacklistService
	auth      *services.AuthService
	scheduler *jobs.Scheduler
}

// NewApp opens storage, applies migrations and builds the services. Logs go to out.
func NewApp(ctx context.Context, c *config.Config, out io.Writer) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.NewJSONLogger(out, c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "Loaded config", "config", fmt.Sprintf("%+v", c.Redacted()))

	rm, db, err := openStorage(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	us := services.NewUserService(db, rm, c.BcryptCost, nil)
	bs := services.NewBlacklistService(db, rm, nil)

	secret := []byte(c.SecretKey)
	iss, err := auth.NewIssuer(secret, nil)
	if err != nil {
		closeDB(db)
		return nil, err
	}
	val, err := auth.NewValidator(secret, bs, nil)
	if err != nil {
		closeDB(db)
		return nil, err
	}

	return &App{
		config:    c,
		logger:    logger,
		db:        db,
		users:     us,
		blacklist: bs,
		auth:      services.NewAuthService(us, bs, iss, val),
		scheduler: jobs.NewScheduler(bs, c.PurgeSchedule, logger),
	}, nil
}

func openStorage(ctx context.Context, dsn string) (repomanager.RepositoryManager, *sql.DB, error) {
	if dsn == config.MemoryDSN {
		return repomanager.NewInMemoryRepositoryManager(), nil, nil
	}

	db, err := repomanager.OpenPostgres(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		closeDB(db)
		return nil, nil, fmt.Errorf("migrations error: %w", err)
	}
	return rm, db, nil
}

func closeDB(db *sql.DB) {
	if db != nil {
		_ = db.Close()
	}
}

func (app *App) Users() *services.UserService { return app.users }

func (app *App) Scheduler() *jobs.Scheduler { return app.scheduler }

func (app *App) Logger() logging.Logger { return app.logger }

// Close releases the database connection.
func (app *App) Close() error {
	if app.db == nil {
		return nil
	}
	return app.db.Close()
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run starts the purge schedule and the enabled servers, and blocks until ctx
// is cancelled, a signal arrives or a server fails.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.scheduler.Start(); err != nil {
		return err
	}
	defer app.scheduler.Stop()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	serve := func(name string, run func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := run(ctx); err != nil {
				app.logger.Error(ctx, name+" server failed", "error", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				mu.Unlock()
				cancelFunc()
			}
		}()
	}

	if app.config.EndpointAddrGRPC != "" {
		serve("grpc", gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.auth).Run)
	}
	if app.config.EndpointAddrHTTP != "" {
		serve("http", httpapi.NewServer(app.config.EndpointAddrHTTP, app.logger, app.auth, app.config.ShutdownTimeout).Run)
	}

	wg.Wait()
	app.logger.Info(context.Background(), "App stopped")

	return errors.Join(errs...)
}
