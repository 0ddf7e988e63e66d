// Command staffd serves the staff API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/bun"

	staff "github.com/goliatone/go-staff"
	"github.com/goliatone/go-staff/activity"
	"github.com/goliatone/go-staff/api"
	"github.com/goliatone/go-staff/auth"
	"github.com/goliatone/go-staff/config"
	"github.com/goliatone/go-staff/logging"
	"github.com/goliatone/go-staff/store"
)

type App struct {
	config   *config.Config
	logger   *logging.BaseLogger
	bunDB    *bun.DB
	repo     staff.RepositoryManager
	logs     activity.Store
	closeLog func(context.Context) error
	services *api.Services
	srv      *fiber.App
}

func (a *App) GetLogger(name string) *logging.BaseLogger {
	return a.logger.GetLogger(name)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	app := &App{
		config: cfg,
		logger: logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}),
	}

	ctx := context.Background()
	steps := []func(context.Context, *App) error{
		WithPersistence,
		WithActivityStore,
		WithServices,
		WithHTTPServer,
	}
	for _, step := range steps {
		if err := step(ctx, app); err != nil {
			app.logger.Error("startup failed: %v", err)
			app.Close()
			os.Exit(1)
		}
	}

	sweepCtx, stopSweeper := context.WithCancel(ctx)
	go RunSweeper(sweepCtx, app.repo.Registry(), cfg.Registry.SweepInterval, app.GetLogger("sweeper"))

	app.logger.Info("listening on %s", cfg.Server.Address)
	serveErr := Serve(func() error {
		return app.srv.Listen(cfg.Server.Address)
	}, ExitSignals(), app.logger)

	stopSweeper()
	if serveErr != nil {
		app.logger.Error("server stopped: %v", serveErr)
		app.Close()
		os.Exit(1)
	}
	if err := app.srv.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
		app.logger.Error("shutdown: %v", err)
	}
	app.Close()
}

// Serve runs listen until it returns or a signal arrives. It returns nil
// when a signal asked for shutdown and the listener error otherwise.
func Serve(listen func() error, signals <-chan os.Signal, logger logging.Logger) error {
	errc := make(chan error, 1)
	go func() {
		errc <- listen()
	}()

	select {
	case err := <-errc:
		if err == nil {
			err = errServerClosed
		}
		return err
	case sig := <-signals:
		logger.Info("received %s, shutting down", sig)
		return nil
	}
}

func WithPersistence(ctx context.Context, app *App) error {
	var opts []store.Option
	if app.config.Database.Debug {
		opts = append(opts, store.WithQueryLog(app.GetLogger("bun").Writer()))
	}
	db, err := store.Open(app.config.Database, opts...)
	if err != nil {
		return err
	}
	app.bunDB = db

	if app.config.Database.AutoMigrate {
		if err := store.Migrate(ctx, db); err != nil {
			return err
		}
	}

	app.repo = staff.NewRepositoryManager(db, app.config.Auth.GetRegistrySalt(),
		auth.WithRegistryLogger(app.GetLogger("auth:registry")),
	)
	return app.repo.Validate()
}

// WithActivityStore selects the activity log backend.
func WithActivityStore(ctx context.Context, app *App) error {
	switch app.config.Activity.Backend {
	case config.ActivityBackendMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		s, err := activity.ConnectMongo(connectCtx, app.config.Activity.MongoURI, app.config.Activity.MongoDatabase)
		if err != nil {
			return err
		}
		app.logs = s
		app.closeLog = s.Close
	default:
		app.logs = app.repo.ActivityLogs()
	}
	return nil
}

func WithServices(_ context.Context, app *App) error {
	svc, err := api.NewServices(app.config, app.repo, app.logs, app.logger)
	if err != nil {
		return err
	}
	app.services = svc
	return nil
}

func WithHTTPServer(_ context.Context, app *App) error {
	app.srv = api.New(app.config, app.services, app.GetLogger("http"),
		api.WithAccessLog(app.GetLogger("access").Writer()),
	)
	return nil
}

// Close releases the database and the activity backend.
func (a *App) Close() {
	if a.closeLog != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.closeLog(ctx); err != nil {
			a.logger.Warn("close activity store: %v", err)
		}
	}
	if a.bunDB != nil {
		if err := a.bunDB.Close(); err != nil {
			a.logger.Warn("close database: %v", err)
		}
	}
}

var errServerClosed = errors.New("server closed before a shutdown signal")

func ExitSignals() <-chan os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return ch
}
