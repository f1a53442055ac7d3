// Package commands implements CLI commands.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yobatis-go/yobatis/internal/config"
	"github.com/yobatis-go/yobatis/internal/debug"
	"github.com/yobatis-go/yobatis/internal/version"
)

// NewRootCommand creates the yobatis command tree.
func NewRootCommand() *cobra.Command {
	var (
		verbose bool
		logJSON bool
	)

	rootCmd := &cobra.Command{
		Use:   "yobatis",
		Short: "yobatis DB code generator",
		Long: `yobatis compiles XML mapper documents into C functions that run
MySQL prepared statements, and scaffolds those documents from a live database.`,
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			debug.Init(debug.Options{
				Verbose: verbose,
				JSON:    logJSON,
				Output:  cmd.ErrOrStderr(),
			})
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write logs as JSON")

	rootCmd.AddCommand(NewInitCommand())
	rootCmd.AddCommand(NewGenCommand())
	rootCmd.AddCommand(NewRenderCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// loadConfig binds the command's flags to their configuration keys, loads
// the configuration and enforces its required_version.
func loadConfig(cmd *cobra.Command, keys map[string]string) (*config.Config, error) {
	if err := config.BindFlags(cmd.Flags(), keys); err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := version.CheckRequired(cfg.RequiredVersion); err != nil {
		return nil, err
	}
	return cfg, nil
}
