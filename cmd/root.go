// -- cmd/root.go --
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/socialbot/internal/config"
	"github.com/xkilldash9x/socialbot/internal/observability"
	"github.com/xkilldash9x/socialbot/internal/service"
)

type contextKey string

// configKey stores the validated config in the command context.
const configKey contextKey = "config"

// rootOptions holds the persistent flags of one command tree.
type rootOptions struct {
	cfgFile string
}

// NewRootCommand builds a fresh command tree wired to the production component factory.
func NewRootCommand() *cobra.Command {
	return newRootCommand(service.NewComponentFactory())
}

func newRootCommand(factory service.ComponentFactory) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "socialbot",
		Short:         "socialbot drives a browser through a social network on your behalf.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			config.SetDefaults(v)

			// 1. Initialize configuration loading
			if err := initializeConfig(v, opts.cfgFile); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			// 2. Create the configuration object from viper.
			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				observability.InitializeLogger(config.NewDefaultConfig().Logger())
				return fmt.Errorf("failed to load or validate config: %w", err)
			}

			// 3. Initialize the logger with the loaded config.
			observability.Initialize(cfg.Logger(), zapcore.AddSync(cmd.ErrOrStderr()))
			observability.GetLogger().Debug("Starting socialbot", zap.String("version", Version))

			// 4. Store the validated config in the command's context for subcommands.
			cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
			return nil
		},
	}
	cmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	cmd.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "", "config file (default is ./config.yaml)")

	cmd.AddCommand(newGotoCmd(factory))
	cmd.AddCommand(newModesCmd())
	cmd.AddCommand(newRunCmd(factory))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute runs the command line against ctx, logging the failure if any.
func Execute(ctx context.Context) error {
	defer observability.Sync()

	err := NewRootCommand().ExecuteContext(ctx)
	var failed *actionFailedError
	// A failed action has already printed its outcome.
	if err != nil && !errors.Is(err, context.Canceled) && !errors.As(err, &failed) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

// initializeConfig reads in config file and ENV variables if set.
func initializeConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("SOCIALBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; proceed with defaults/env vars
	}
	return nil
}

// getConfigFromContext returns the config stored by PersistentPreRunE.
func getConfigFromContext(ctx context.Context) (*config.Config, error) {
	cfg, ok := ctx.Value(configKey).(*config.Config)
	if !ok || cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	return cfg, nil
}
