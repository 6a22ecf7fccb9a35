package service

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/xkilldash9x/socialbot/internal/config"
	"github.com/xkilldash9x/socialbot/internal/observability"
	"github.com/xkilldash9x/socialbot/internal/store"
)

func TestInitializeJournal(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("InMemoryDefault", func(t *testing.T) {
		journal, pool, err := InitializeJournal(ctx, config.DatabaseConfig{}, logger)
		require.NoError(t, err)
		assert.IsType(t, &store.MemoryJournal{}, journal)
		assert.Nil(t, pool)
	})

	t.Run("MalformedURL", func(t *testing.T) {
		journal, pool, err := InitializeJournal(ctx, config.DatabaseConfig{URL: "postgres://localhost:notaport/db"}, logger)
		assert.Error(t, err)
		assert.Nil(t, journal)
		assert.Nil(t, pool)
		assert.Contains(t, err.Error(), "unable to parse PGX pool config")
	})
}

func TestServeMetrics(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	metrics := observability.NewMetrics()
	metrics.ObserveNavigation("home", true, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ServeMetrics(ctx, ln, metrics.Handler(), zap.NewNop()) }()

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + ln.Addr().String() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "socialbot_navigations_total")
	client.CloseIdleConnections()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("metrics server did not stop")
	}
}
