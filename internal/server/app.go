// Package server wires the credvault components together and runs them:
// storage, the auth service, the notification dispatcher, the HTTP API and
// the gRPC health endpoint, plus the background janitor and health loop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/credvault/internal/dbx"
	"github.com/dmitrijs2005/credvault/internal/logging"
	"github.com/dmitrijs2005/credvault/internal/server/auth"
	"github.com/dmitrijs2005/credvault/internal/server/config"
	"github.com/dmitrijs2005/credvault/internal/server/httpapi"
	"github.com/dmitrijs2005/credvault/internal/server/metrics"
	"github.com/dmitrijs2005/credvault/internal/server/notify"
	"github.com/dmitrijs2005/credvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/credvault/internal/server/services"

	gs "github.com/dmitrijs2005/credvault/internal/server/grpc"
)

const (
	purgeInterval  = time.Hour
	purgeRetention = 24 * time.Hour
	healthInterval = 15 * time.Second
	pingTimeout    = 5 * time.Second
)

// pinger is satisfied by *sql.DB.
type pinger interface {
	PingContext(ctx context.Context) error
}

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	pinger     pinger
	metrics    *metrics.Metrics
	auth       *services.AuthService
	dispatcher *notify.Dispatcher
	http       *httpapi.Server
	health     *gs.HealthServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger, err := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	app := &App{config: c, logger: logger, metrics: metrics.NewWithRegistry()}

	repos, tx, err := app.openStore(ctx)
	if err != nil {
		return nil, err
	}

	issuer, err := auth.NewTokenIssuer(c.SecretKey, c.JWTAlgorithm, c.AccessTokenValidityDuration)
	if err != nil {
		app.closeDB()
		return nil, fmt.Errorf("token issuer init error: %w", err)
	}

	resets, err := services.NewResetTokenManager(repos, c.ResetTokenValidityDuration)
	if err != nil {
		app.closeDB()
		return nil, fmt.Errorf("reset token manager init error: %w", err)
	}

	sender, err := app.newSender()
	if err != nil {
		app.closeDB()
		return nil, fmt.Errorf("notification sender init error: %w", err)
	}
	app.dispatcher = notify.NewDispatcher(sender, c.NotifyQueueSize, logger, app.metrics)

	app.auth = services.NewAuthService(tx, repos, auth.NewBcryptHasher(c.HashCost), issuer, resets, app.dispatcher, logger, app.metrics)

	app.http = httpapi.NewServer(c.HTTPAddr, app.auth, issuer, app.metrics, logger)
	app.health = gs.NewHealthServer(c.GRPCAddr, logger)

	return app, nil
}

// openStore connects to PostgreSQL and migrates it, or falls back to the
// in-memory store when no DSN is configured.
func (app *App) openStore(ctx context.Context) (repomanager.RepositoryManager, dbx.Transactor, error) {
	if app.config.DatabaseDSN == "" {
		app.logger.Warn(ctx, "No database DSN configured, using in-memory store; data is lost on exit")
		m := repomanager.NewInMemoryRepositoryManager()
		return m, m, nil
	}

	db, err := sql.Open("pgx", app.config.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db ping error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db migration error: %w", err)
	}

	app.db = db
	app.pinger = db
	return m, dbx.NewSQLTransactor(db, nil), nil
}

func (app *App) newSender() (notify.Sender, error) {
	composer := notify.Composer{ProjectName: app.config.ProjectName, ResetBaseURL: app.config.ResetBaseURL}

	if app.config.SMTPSuppressSend {
		app.logger.Warn(context.Background(), "SMTP sending is suppressed, reset links are written to the log")
		return notify.NewLogSender(app.logger, composer), nil
	}

	return notify.NewSMTPSender(notify.SMTPSettings{
		Host:     app.config.SMTPHost,
		Port:     app.config.SMTPPort,
		Username: app.config.SMTPUsername,
		Password: app.config.SMTPPassword,
		From:     app.config.SMTPSender,
		UseTLS:   app.config.SMTPUseTLS,
	}, composer)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.health.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// checkHealth pings the database once and publishes the result to the gRPC
// health service and the metrics gauge.
func (app *App) checkHealth(ctx context.Context) {
	ok := true
	if app.pinger != nil {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := app.pinger.PingContext(pingCtx)
		cancel()
		if err != nil {
			app.logger.Warn(ctx, "database ping failed", "error", err)
			ok = false
		}
	}

	app.health.SetServing(ok)
	app.metrics.SetDatabaseHealthy(ok)
}

func (app *App) runHealthLoop(ctx context.Context) {
	app.checkHealth(ctx)

	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.checkHealth(ctx)
		}
	}
}

func (app *App) purgeExpiredTokens(ctx context.Context) {
	n, err := app.auth.PurgeExpiredResetTokens(ctx, purgeRetention)
	if err != nil {
		app.logger.Error(ctx, "reset token purge failed", "error", err)
		return
	}
	if n > 0 {
		app.logger.Info(ctx, "purged expired reset tokens", "count", n)
	}
}

func (app *App) runJanitor(ctx context.Context) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.purgeExpiredTokens(ctx)
		}
	}
}

// Run blocks until ctx is cancelled, a signal arrives or a server fails,
// then waits for every component to stop and releases resources.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	for _, run := range []func(){
		func() { app.startHTTPServer(ctx, cancelFunc) },
		func() { app.startGRPCServer(ctx, cancelFunc) },
		func() { app.runHealthLoop(ctx) },
		func() { app.runJanitor(ctx) },
	} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run()
		}()
	}

	wg.Wait()

	app.dispatcher.Close()
	app.closeDB()

	app.logger.Info(context.Background(), "App stopped")
}

func (app *App) closeDB() {
	if app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close error", "error", err)
	}
}
