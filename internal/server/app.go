// Package server wires the zkpauth server together: configuration, the
// authenticator, optional PostgreSQL persistence, the gRPC endpoint, the admin
// endpoint and the background sweepers. It handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/zkpauth/internal/common"
	"github.com/dmitrijs2005/zkpauth/internal/logging"
	"github.com/dmitrijs2005/zkpauth/internal/server/admin"
	"github.com/dmitrijs2005/zkpauth/internal/server/auth"
	"github.com/dmitrijs2005/zkpauth/internal/server/authenticator"
	"github.com/dmitrijs2005/zkpauth/internal/server/config"
	"github.com/dmitrijs2005/zkpauth/internal/server/ratelimit"
	"github.com/dmitrijs2005/zkpauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/zkpauth/internal/server/services"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/zkpauth/internal/server/grpc"
)

// limiterCleanupInterval is how often idle rate-limit buckets are dropped.
const limiterCleanupInterval = time.Minute

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	service  *services.AuthService
	sessions auth.Issuer
	limiter  *ratelimit.Limiter
}

// NewApp validates c, builds the authenticator and, when a DSN is set, opens
// the database, migrates it and restores registrations for the configured
// group.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger, err := logging.New(os.Stdout, c.LogLevel, c.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	group, err := c.GroupParams()
	if err != nil {
		return nil, fmt.Errorf("group: %w", err)
	}

	sessions, err := auth.NewIssuer(c.SessionFormat, []byte(c.SecretKey), c.SessionValidityDuration, common.CryptoSource)
	if err != nil {
		return nil, fmt.Errorf("sessions: %w", err)
	}

	a, err := authenticator.New(authenticator.Options{
		Group:     group,
		Sessions:  sessions,
		AuthIDTTL: c.AuthIDValidityDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("authenticator init error: %w", err)
	}

	app := &App{config: c, logger: logger, sessions: sessions}

	var rm repomanager.RepositoryManager
	if c.DatabaseDSN != "" {
		db, err := repomanager.Open(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		rm = repomanager.NewPostgresRepositoryManager()
		if err := rm.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("db migration error: %w", err)
		}
		app.db = db
	}

	app.service = services.NewAuthService(app.db, rm, a)

	n, err := app.service.Restore(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	logger.Info(ctx, "Authenticator ready",
		"group", group.Fingerprint(),
		"restored_users", n,
		"persistent", app.db != nil,
		"session_format", c.SessionFormat,
	)

	app.limiter = ratelimit.New(ratelimit.Config{
		RequestsPerMinute: c.RateLimitPerMinute,
		Burst:             c.RateLimitBurst,
	})

	return app, nil
}

// Close releases the database connection, if any.
func (app *App) Close() {
	if app.db != nil {
		_ = app.db.Close()
	}
}

func (app *App) healthChecks() map[string]admin.HealthChecker {
	if app.db == nil {
		return nil
	}
	return map[string]admin.HealthChecker{
		"database": app.db.PingContext,
	}
}

// adminServer builds the admin endpoint. Session introspection is served
// only for session formats that can be verified without server state.
func (app *App) adminServer() *admin.Server {
	s := admin.NewServer(app.config.EndpointAddrAdmin, app.logger, app.healthChecks())
	if v, ok := app.sessions.(admin.SessionVerifier); ok {
		s.WithSessions(v)
	}
	return s
}

// Run serves until ctx is done, a termination signal arrives or one of the
// servers fails. Everything is stopped before it returns.
func (app *App) Run(ctx context.Context) error {
	defer app.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.service, app.limiter)
		return s.Run(ctx)
	})

	if app.config.EndpointAddrAdmin != "" {
		g.Go(func() error {
			return app.adminServer().Run(ctx)
		})
	}

	g.Go(func() error {
		app.service.RunSweeper(ctx, app.config.SweepInterval)
		return nil
	})

	g.Go(func() error {
		app.limiter.Run(ctx, limiterCleanupInterval)
		return nil
	})

	err := g.Wait()
	app.logger.Info(context.Background(), "App stopped")
	return err
}
