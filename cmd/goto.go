// File: cmd/goto.go
package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/socialbot/internal/dispatch"
	"github.com/xkilldash9x/socialbot/internal/observability"
	"github.com/xkilldash9x/socialbot/internal/service"
)

// actionFailedError is returned when a goto action settles with Status=false,
// so the process exits non-zero after printing the outcome.
type actionFailedError struct {
	action string
	err    error
}

func (e *actionFailedError) Error() string {
	return fmt.Sprintf("goto %s failed: %v", e.action, e.err)
}

func (e *actionFailedError) Unwrap() error { return e.err }

// gotoAction runs one dispatcher operation on the command's arguments.
type gotoAction func(ctx context.Context, d *dispatch.Dispatcher, args []string) dispatch.Outcome

type gotoOptions struct {
	headed  bool
	timeout time.Duration
}

// newGotoCmd creates the `goto` command and one subcommand per destination.
func newGotoCmd(factory service.ComponentFactory) *cobra.Command {
	opts := &gotoOptions{}

	gotoCmd := &cobra.Command{
		Use:   "goto",
		Short: "Navigate the browser to a page and print the outcome as JSON",
	}
	gotoCmd.PersistentFlags().BoolVar(&opts.headed, "headed", false, "show the browser window")
	gotoCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 0, "navigation timeout (overrides network.navigation_timeout)")

	subcommands := []struct {
		use    string
		short  string
		args   cobra.PositionalArgs
		action gotoAction
	}{
		{
			use: "post <id>", short: "Go to a post by its id", args: cobra.ExactArgs(1),
			action: func(ctx context.Context, d *dispatch.Dispatcher, args []string) dispatch.Outcome {
				return d.Post(ctx, args[0])
			},
		},
		{
			use: "hashtag <tag>", short: "Go to a hashtag page; the leading # is optional", args: cobra.ExactArgs(1),
			action: func(ctx context.Context, d *dispatch.Dispatcher, args []string) dispatch.Outcome {
				return d.Hashtag(ctx, args[0])
			},
		},
		{
			use: "location <gps-id>", short: "Go to a location page", args: cobra.ExactArgs(1),
			action: func(ctx context.Context, d *dispatch.Dispatcher, args []string) dispatch.Outcome {
				return d.Location(ctx, args[0])
			},
		},
		{
			use: "profile <handle>", short: "Go to a profile; the leading @ is optional", args: cobra.ExactArgs(1),
			action: func(ctx context.Context, d *dispatch.Dispatcher, args []string) dispatch.Outcome {
				return d.Profile(ctx, args[0])
			},
		},
		{
			use: "login", short: "Go to the login page", args: cobra.NoArgs,
			action: func(ctx context.Context, d *dispatch.Dispatcher, _ []string) dispatch.Outcome {
				return d.Login(ctx)
			},
		},
		{
			use: "home", short: "Go to the home feed", args: cobra.NoArgs,
			action: func(ctx context.Context, d *dispatch.Dispatcher, _ []string) dispatch.Outcome {
				return d.Home(ctx)
			},
		},
	}

	for _, sc := range subcommands {
		name := strings.Fields(sc.use)[0]
		gotoCmd.AddCommand(&cobra.Command{
			Use:   sc.use,
			Short: sc.short,
			Args:  sc.args,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runGoto(cmd, factory, opts, name, sc.action, args)
			},
		})
	}
	return gotoCmd
}

func runGoto(cmd *cobra.Command, factory service.ComponentFactory, opts *gotoOptions, name string, action gotoAction, args []string) error {
	ctx := cmd.Context()
	cfg, err := getConfigFromContext(ctx)
	if err != nil {
		return err
	}
	if opts.headed {
		cfg.SetBrowserHeadless(false)
	}
	if opts.timeout > 0 {
		cfg.SetNetworkNavigationTimeout(opts.timeout)
	}

	components, err := factory.Create(ctx, cfg, observability.GetLogger())
	if err != nil {
		return fmt.Errorf("failed to initialize components: %w", err)
	}
	defer components.Shutdown()

	outcome := action(ctx, components.Dispatcher, args)

	out, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to encode outcome: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if !outcome.OK() {
		return &actionFailedError{action: name, err: outcome.Err}
	}
	return nil
}
