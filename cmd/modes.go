// File: cmd/modes.go
package cmd

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/socialbot/internal/observability"
	"github.com/xkilldash9x/socialbot/internal/service"
)

func newModesCmd() *cobra.Command {
	var asJSON bool
	modesCmd := &cobra.Command{
		Use:   "modes",
		Short: "List the available modes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			registry, err := service.NewRegistry(cfg, observability.GetLogger(), service.Deps{})
			if err != nil {
				return err
			}

			keys := registry.Keys()
			if asJSON {
				out, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(keys)
				if err != nil {
					return fmt.Errorf("failed to encode modes: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}
			for _, key := range keys {
				marker := " "
				if key == cfg.Modes().Default {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, key)
			}
			return nil
		},
	}
	modesCmd.Flags().BoolVar(&asJSON, "json", false, "print the modes as a JSON array")
	return modesCmd
}
