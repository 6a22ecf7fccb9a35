// File: internal/service/initializers.go
package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/xkilldash9x/socialbot/internal/config"
	"github.com/xkilldash9x/socialbot/internal/store"
)

// InitializeJournal connects the like journal to PostgreSQL, or falls back to
// a process-local journal when no database URL is configured. The returned
// pool is nil for the in-memory journal.
func InitializeJournal(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (store.Journal, *pgxpool.Pool, error) {
	if cfg.URL == "" {
		logger.Warn("No database configured; liked posts are remembered for this run only (hint: set SOCIALBOT_DATABASE_URL).")
		return store.NewMemoryJournal(), nil, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to parse PGX pool config: %w", err)
	}
	// The journal sees one writer per run.
	poolConfig.MaxConns = 4
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create PGX connection pool: %w", err)
	}

	journal, err := store.New(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	logger.Info("Like journal connected to PostgreSQL.", zap.String("host", poolConfig.ConnConfig.Host))
	return journal, pool, nil
}

// ServeMetrics serves handler on ln until ctx is done.
func ServeMetrics(ctx context.Context, ln net.Listener, handler http.Handler, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Serving metrics.", zap.String("address", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down metrics server: %w", err)
	}
	<-errCh
	return nil
}
