// Package app provides application initialization and dependency
// wiring. Setup builds the full service graph from configuration;
// Close releases it in reverse order.
package app

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/schoolmind/schoolmind/api"
	"github.com/schoolmind/schoolmind/internal/chat"
	"github.com/schoolmind/schoolmind/internal/config"
	"github.com/schoolmind/schoolmind/internal/log"
	"github.com/schoolmind/schoolmind/internal/session"
)

// App is the core application container.
type App struct {
	Config *config.Config
	Logger log.Logger

	DBPool    *pgxpool.Pool
	Sessions  *session.Store
	Assistant *chat.Assistant
	Server    *api.Server
}

// Close releases all resources. Safe to call on a partially built App.
func (a *App) Close() error {
	if a.Logger != nil {
		a.Logger.Info("shutting down application")
	}

	if a.DBPool != nil {
		a.DBPool.Close()
		if a.Logger != nil {
			a.Logger.Debug("database pool closed")
		}
	}

	return nil
}
