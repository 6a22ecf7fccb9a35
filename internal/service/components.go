// File: internal/service/components.go
package service

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/xkilldash9x/socialbot/internal/dispatch"
	"github.com/xkilldash9x/socialbot/internal/i18n"
	"github.com/xkilldash9x/socialbot/internal/modes"
	"github.com/xkilldash9x/socialbot/internal/modes/likemode"
	"github.com/xkilldash9x/socialbot/internal/observability"
	"github.com/xkilldash9x/socialbot/internal/store"
)

// BrowserSession is the single browser tab the bot drives.
type BrowserSession interface {
	dispatch.Navigator
	likemode.Feed
	ID() string
	Close() error
}

// Components holds all the initialized services required for a run.
// This struct centralizes the lifecycle management of the bot's dependencies.
type Components struct {
	RunID      string
	Session    BrowserSession
	Dispatcher *dispatch.Dispatcher
	Registry   *modes.Registry
	Journal    store.Journal
	Translator *i18n.Translator
	Metrics    *observability.Metrics
	DBPool     *pgxpool.Pool

	// BrowserAllocatorCancel terminates the browser process.
	BrowserAllocatorCancel context.CancelFunc

	shutdownOnce sync.Once
}

// Shutdown closes all components in reverse dependency order. It is safe to
// call more than once and on partially initialized components.
func (c *Components) Shutdown() {
	c.shutdownOnce.Do(c.shutdown)
}

func (c *Components) shutdown() {
	logger := observability.GetLogger()
	logger.Debug("Beginning components shutdown sequence.")

	// 1. Close the tab.
	if c.Session != nil {
		if err := c.Session.Close(); err != nil {
			logger.Warn("Error during browser session close.", zap.Error(err))
		} else {
			logger.Debug("Browser session closed.")
		}
	}

	// 2. Terminate the browser process.
	if c.BrowserAllocatorCancel != nil {
		c.BrowserAllocatorCancel()
		logger.Debug("Browser allocator canceled.")
	}

	// 3. Close the database connection pool.
	if c.DBPool != nil {
		c.DBPool.Close()
		logger.Debug("Database connection pool closed.")
	}

	logger.Info("All components shut down successfully.", zap.String("run_id", c.RunID))
}
