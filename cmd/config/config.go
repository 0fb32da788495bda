// Package config implements the config command.
package config

import (
	"github.com/spf13/cobra"

	"github.com/tphakala/prodcon/internal/conf"
)

// Command creates a command that prints the effective configuration.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Long: "Print the configuration after defaults, the config file, PRODCON_* environment " +
			"variables and flags are applied. The output is a valid prodcon.yaml.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return conf.DumpYAML(settings, cmd.OutOrStdout())
		},
	}

	return cmd
}
