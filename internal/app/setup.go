package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"

	"github.com/schoolmind/schoolmind/api"
	"github.com/schoolmind/schoolmind/db"
	"github.com/schoolmind/schoolmind/internal/chat"
	"github.com/schoolmind/schoolmind/internal/config"
	"github.com/schoolmind/schoolmind/internal/directory"
	"github.com/schoolmind/schoolmind/internal/gateway"
	"github.com/schoolmind/schoolmind/internal/log"
	"github.com/schoolmind/schoolmind/internal/profile"
	"github.com/schoolmind/schoolmind/internal/session"
	"github.com/schoolmind/schoolmind/internal/tools"
)

// Model rate limiting applied across all callers. The provider
// enforces its own quota; this keeps bursts from tripping it.
const (
	modelRateInterval = 200 * time.Millisecond
	modelRateBurst    = 5
)

// Setup creates and initializes the application.
// Returns an App with embedded cleanup; call Close() to release.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (_ *App, retErr error) {
	a := &App{Config: cfg, Logger: logger}

	// On error, clean up everything already initialized.
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	pool, err := provideDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.DBPool = pool

	a.Sessions = session.New(session.NewQueries(pool), logger)

	dir := directory.New(pool, logger)
	resolver := profile.NewResolver(dir, logger)

	registry, err := tools.NewRegistry(
		tools.NewRecentNotices(dir),
	)
	if err != nil {
		return nil, fmt.Errorf("building tool registry: %w", err)
	}

	gw, err := gateway.NewClient(ctx, gateway.Config{
		APIKey: cfg.GeminiAPIKey,
		Model:  cfg.ModelName,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating model gateway: %w", err)
	}

	assistant, err := chat.New(&chat.Config{
		Gateway:       gw,
		Sessions:      a.Sessions,
		Resolver:      resolver,
		Registry:      registry,
		Logger:        logger,
		MaxToolRounds: cfg.MaxToolRounds,
		HistoryWindow: int(cfg.HistoryWindow),
		Limiter:       rate.NewLimiter(rate.Every(modelRateInterval), modelRateBurst),
	})
	if err != nil {
		return nil, fmt.Errorf("creating assistant: %w", err)
	}
	a.Assistant = assistant

	a.Server = api.NewServer(assistant, a.Sessions, pool, logger)

	return a, nil
}

// provideDBPool runs migrations and creates the PostgreSQL connection
// pool.
func provideDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if err := db.Migrate(cfg.MigrateURL()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w", err)
	}
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}
