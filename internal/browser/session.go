// internal/browser/session.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/socialbot/internal/config"
)

const (
	defaultNavigationTimeout = 60 * time.Second
	defaultPostLoadWait      = 1500 * time.Millisecond
	stabilizeTimeout         = 30 * time.Second
)

// ErrSessionClosed is returned by operations on a closed session.
var ErrSessionClosed = errors.New("browser session is closed")

// Session is a single browser tab. It is the Navigation capability of the bot:
// one page, driven by one writer at a time.
type Session struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
	cfg    config.Interface

	// navMu serializes page-changing operations; a tab cannot go two places at once.
	navMu sync.Mutex

	mu       sync.Mutex
	isClosed bool
}

// NewSession opens a new tab in the browser owned by allocCtx and applies the
// configured user agent and extra headers.
func NewSession(allocCtx context.Context, cfg config.Interface, logger *zap.Logger) (*Session, error) {
	sessionID := uuid.New().String()
	sessionLogger := logger.Named("browser").With(zap.String("session_id", sessionID))

	opts := []chromedp.ContextOption{
		chromedp.WithErrorf(sessionLogger.Sugar().Errorf),
	}
	if cfg.Browser().Debug {
		opts = append(opts, chromedp.WithDebugf(sessionLogger.Sugar().Debugf))
	}
	ctx, cancel := chromedp.NewContext(allocCtx, opts...)

	s := &Session{
		id:     sessionID,
		ctx:    ctx,
		cancel: cancel,
		logger: sessionLogger,
		cfg:    cfg,
	}

	if err := s.initialize(); err != nil {
		cancel()
		return nil, err
	}
	s.logger.Info("Browser session opened.")
	return s, nil
}

func (s *Session) initialize() error {
	// The first Run launches the browser (if needed) and attaches to the new target.
	if err := chromedp.Run(s.ctx); err != nil {
		return fmt.Errorf("failed to initialize browser context/target connection: %w", err)
	}

	var tasks chromedp.Tasks
	if ua := s.cfg.Browser().UserAgent; ua != "" {
		tasks = append(tasks, emulation.SetUserAgentOverride(ua))
	}
	if hdrs := s.cfg.Network().Headers; len(hdrs) > 0 {
		headers := make(network.Headers, len(hdrs))
		for k, v := range hdrs {
			headers[k] = v
		}
		tasks = append(tasks, network.Enable(), network.SetExtraHTTPHeaders(headers))
	}
	if len(tasks) == 0 {
		return nil
	}
	if err := chromedp.Run(s.ctx, tasks); err != nil {
		return fmt.Errorf("failed to run session initialization tasks: %w", err)
	}
	return nil
}

// ID returns the unique identifier for the session.
func (s *Session) ID() string { return s.id }

func (s *Session) closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isClosed
}

// Navigate loads url and waits for the page to settle. It fails when the
// browser reports a load error, when network.navigation_timeout elapses, or
// when ctx is done.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if s.closed() {
		return ErrSessionClosed
	}
	s.navMu.Lock()
	defer s.navMu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("navigation to %s canceled: %w", url, err)
	}
	s.logger.Debug("Navigating session.", zap.String("url", url))

	opCtx, opCancel := CombineContext(s.ctx, ctx)
	defer opCancel()

	navTimeout := s.cfg.Network().NavigationTimeout
	if navTimeout <= 0 {
		navTimeout = defaultNavigationTimeout
	}
	navCtx, navCancel := context.WithTimeout(opCtx, navTimeout)
	defer navCancel()

	if err := chromedp.Run(navCtx, chromedp.Navigate(url)); err != nil {
		if errors.Is(navCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("navigation to %s timed out after %s: %w", url, navTimeout, context.DeadlineExceeded)
		}
		if ctx.Err() != nil {
			return fmt.Errorf("navigation to %s canceled: %w", url, ctx.Err())
		}
		if s.ctx.Err() != nil {
			return fmt.Errorf("navigation to %s canceled: %w", url, ErrSessionClosed)
		}
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}

	if err := s.stabilize(opCtx); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("navigation to %s canceled: %w", url, ctx.Err())
		}
		s.logger.Warn("Page stabilization failed after navigation (non-critical).", zap.Error(err))
	}
	return nil
}

// stabilize waits for the body to be ready, then for the post-load quiet period.
func (s *Session) stabilize(ctx context.Context) error {
	stabCtx, cancel := context.WithTimeout(ctx, stabilizeTimeout)
	defer cancel()

	if err := chromedp.Run(stabCtx, chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return fmt.Errorf("waiting for body: %w", err)
	}

	wait := s.cfg.Network().PostLoadWait
	if wait <= 0 {
		wait = defaultPostLoadWait
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runActions executes chromedp actions bounded by both the session lifetime and ctx.
func (s *Session) runActions(ctx context.Context, actions ...chromedp.Action) error {
	if s.closed() {
		return ErrSessionClosed
	}
	runCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// Close closes the tab. It is idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.isClosed {
		s.mu.Unlock()
		return nil
	}
	s.isClosed = true
	s.mu.Unlock()

	s.logger.Debug("Closing browser session.")
	s.cancel()
	return nil
}
