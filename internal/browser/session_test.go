// internal/browser/session_test.go
package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/socialbot/internal/config"
)

func TestSession_ClosedSessionRejectsWork(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{id: "closed", ctx: ctx, cancel: cancel, logger: zaptest.NewLogger(t), cfg: config.NewDefaultConfig()}

	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "Close must be idempotent")

	assert.ErrorIs(t, s.Navigate(context.Background(), "https://www.facebook.com/"), ErrSessionClosed)
	_, err := s.FeedPosts(context.Background())
	assert.ErrorIs(t, err, ErrSessionClosed)
}

// findChrome skips the test unless a Chrome/Chromium binary is installed.
func findChrome(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("browser integration test skipped in short mode")
	}
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell"} {
		if _, err := exec.LookPath(name); err == nil {
			return
		}
	}
	t.Skip("no Chrome binary found")
}

func newTestSession(t *testing.T, cfg *config.Config) *Session {
	t.Helper()
	allocCtx, allocCancel := NewAllocator(context.Background(), cfg.Browser())
	t.Cleanup(allocCancel)

	s, err := NewSession(allocCtx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSession_Navigate_Integration(t *testing.T) {
	findChrome(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div role="feed"></div></body></html>`)
	}))
	defer srv.Close()

	cfg := config.NewDefaultConfig()
	cfg.NetworkCfg.PostLoadWait = 10 * time.Millisecond
	s := newTestSession(t, cfg)

	t.Run("Success", func(t *testing.T) {
		require.NoError(t, s.Navigate(context.Background(), srv.URL))

		posts, err := s.FeedPosts(context.Background())
		require.NoError(t, err)
		assert.Empty(t, posts)
	})

	t.Run("ConnectionRefused", func(t *testing.T) {
		err := s.Navigate(context.Background(), "http://127.0.0.1:1/")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "net::ERR_")
	})

	t.Run("CallerCancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := s.Navigate(ctx, srv.URL)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
