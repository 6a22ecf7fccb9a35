// File: internal/service/factory.go
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/socialbot/internal/browser"
	"github.com/xkilldash9x/socialbot/internal/config"
	"github.com/xkilldash9x/socialbot/internal/dispatch"
	"github.com/xkilldash9x/socialbot/internal/i18n"
	"github.com/xkilldash9x/socialbot/internal/modes"
	"github.com/xkilldash9x/socialbot/internal/observability"
	"github.com/xkilldash9x/socialbot/internal/store"
)

// ComponentFactory defines the interface for creating the set of components needed for a run.
// This abstraction is the key to making the commands testable.
type ComponentFactory interface {
	Create(ctx context.Context, cfg config.Interface, logger *zap.Logger) (*Components, error)
}

// sessionOpener starts the browser and opens the bot's tab.
type sessionOpener func(ctx context.Context, cfg config.Interface, logger *zap.Logger) (BrowserSession, context.CancelFunc, error)

// concreteFactory is the production implementation of the ComponentFactory.
type concreteFactory struct {
	openSession sessionOpener
}

// NewComponentFactory creates a new production-ready component factory.
func NewComponentFactory() ComponentFactory {
	return &concreteFactory{openSession: openChromeSession}
}

func openChromeSession(ctx context.Context, cfg config.Interface, logger *zap.Logger) (BrowserSession, context.CancelFunc, error) {
	// The allocator outlives ctx cancellation of individual commands; Shutdown ends it.
	allocCtx, allocCancel := browser.NewAllocator(context.WithoutCancel(ctx), cfg.Browser())
	session, err := browser.NewSession(allocCtx, cfg, logger)
	if err != nil {
		allocCancel()
		return nil, nil, err
	}
	return session, allocCancel, nil
}

// Create handles the full dependency injection and initialization of the bot's components.
func (f *concreteFactory) Create(ctx context.Context, cfg config.Interface, logger *zap.Logger) (*Components, error) {
	components := &Components{RunID: uuid.NewString()}
	logger = logger.With(zap.String("run_id", components.RunID))

	// Ensure cleanup happens if initialization fails midway.
	var initializationErr error
	defer func() {
		if initializationErr != nil {
			logger.Warn("Initialization failed, shutting down partially created components.", zap.Error(initializationErr))
			components.Shutdown()
		}
	}()

	// 1. Translator
	translator, err := i18n.New(cfg.Locale().Language)
	if err != nil {
		initializationErr = fmt.Errorf("failed to load translations: %w", err)
		return nil, initializationErr
	}
	components.Translator = translator
	logger.Debug("Translator initialized.", zap.String("language", translator.Language()))

	// 2. Metrics
	components.Metrics = observability.NewMetrics()

	// 3. Like journal
	journal, pool, err := InitializeJournal(ctx, cfg.Database(), logger)
	if err != nil {
		initializationErr = fmt.Errorf("failed to initialize like journal: %w", err)
		return nil, initializationErr
	}
	components.Journal = journal
	components.DBPool = pool

	// 4. Browser
	session, allocCancel, err := f.openSession(ctx, cfg, logger)
	if err != nil {
		initializationErr = fmt.Errorf("failed to open browser session: %w", err)
		return nil, initializationErr
	}
	components.Session = session
	components.BrowserAllocatorCancel = allocCancel
	logger.Debug("Browser session initialized.", zap.String("session_id", session.ID()))

	// 5. Dispatcher
	actionLogger := observability.NewActionLogger(logger, cfg.Logger())
	components.Dispatcher = dispatch.New(session, actionLogger, translator,
		dispatch.WithRecorder(components.Metrics))

	// 6. Mode registry. A conflicting table is a programming error and fatal.
	registry, err := NewRegistry(cfg, logger, Deps{
		Home:       components.Dispatcher,
		Feed:       session,
		Journal:    journal,
		Translator: translator,
		Recorder:   components.Metrics,
		RunID:      components.RunID,
	})
	if err != nil {
		initializationErr = err
		return nil, initializationErr
	}
	components.Registry = registry

	logger.Info("All components initialized successfully.")
	return components, nil
}

// Deps are the runtime collaborators of the built-in modes.
type Deps = modes.Deps

// NewRegistry builds the mode registry from cfg. Collaborators missing from
// deps are left nil, which is enough to list the modes.
func NewRegistry(cfg config.Interface, logger *zap.Logger, deps Deps) (*modes.Registry, error) {
	deps.Config = cfg
	deps.Logger = logger
	if deps.Journal == nil {
		deps.Journal = store.NewMemoryJournal()
	}
	registry, err := modes.NewDefaultRegistry(deps)
	if err != nil {
		return nil, fmt.Errorf("failed to build mode registry: %w", err)
	}
	return registry, nil
}
