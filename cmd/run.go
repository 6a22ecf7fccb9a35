// File: cmd/run.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/socialbot/internal/observability"
	"github.com/xkilldash9x/socialbot/internal/service"
)

// newRunCmd creates the `run` command, which resolves a mode and runs it until
// it finishes or the process is interrupted.
func newRunCmd(factory service.ComponentFactory) *cobra.Command {
	var mode string
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a mode (default: modes.default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			mode := mode
			if mode == "" {
				mode = cfg.Modes().Default
			}

			// Fail on an unknown mode before a browser is launched.
			known, err := service.NewRegistry(cfg, logger, service.Deps{})
			if err != nil {
				return err
			}
			if _, err := known.Resolve(mode); err != nil {
				return err
			}

			components, err := factory.Create(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize components: %w", err)
			}
			defer components.Shutdown()

			strategy, err := components.Registry.Resolve(mode)
			if err != nil {
				return err
			}

			var ln net.Listener
			if cfg.Metrics().Enabled {
				ln, err = net.Listen("tcp", cfg.Metrics().Address)
				if err != nil {
					return fmt.Errorf("failed to listen for metrics on %s: %w", cfg.Metrics().Address, err)
				}
			}

			logger.Info("Running mode.", zap.String("mode", mode), zap.String("run_id", components.RunID))
			g, gctx := errgroup.WithContext(ctx)
			runCtx, stop := context.WithCancel(gctx)

			g.Go(func() error {
				defer stop()
				return strategy.Run(runCtx)
			})
			if ln != nil {
				g.Go(func() error {
					return service.ServeMetrics(runCtx, ln, components.Metrics.Handler(), logger)
				})
			}

			err = g.Wait()
			stop()
			if err != nil {
				return fmt.Errorf("mode %s failed: %w", mode, err)
			}
			if errors.Is(ctx.Err(), context.Canceled) {
				logger.Info("Mode interrupted.", zap.String("mode", mode))
			}
			return nil
		},
	}
	runCmd.Flags().StringVarP(&mode, "mode", "m", "", "mode to run (see `socialbot modes`)")
	return runCmd
}
