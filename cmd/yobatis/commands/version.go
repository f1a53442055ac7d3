package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yobatis-go/yobatis/internal/config"
	"github.com/yobatis-go/yobatis/internal/debug"
	"github.com/yobatis-go/yobatis/internal/ui"
	"github.com/yobatis-go/yobatis/internal/version"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Display version information for the yobatis CLI, and whether it satisfies
the required_version of the project configuration.`,
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Get()
			if cfg, err := config.LoadConfig(); err == nil {
				info = info.Against(cfg.RequiredVersion)
			} else {
				debug.Debug("Version shown without project constraint", "error", err)
			}

			if short {
				fmt.Fprintln(ui.Out, info.String())
				return
			}
			printVersionInfo(info)
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Print a single line")

	return cmd
}

func printVersionInfo(info version.Info) {
	printers := ui.GetColorPrinters()
	ui.ColorPrint(printers["primary"], "yobatis version %s\n", info.Version)
	fmt.Fprintf(ui.Out, "  Git Commit: %s\n", info.GitCommit)
	fmt.Fprintf(ui.Out, "  Build Date: %s\n", info.BuildDate)
	fmt.Fprintf(ui.Out, "  Go Version: %s\n", info.GoVersion)
	fmt.Fprintf(ui.Out, "  OS/Arch: %s\n", info.Platform)

	if info.Constraint == "" {
		return
	}
	if info.Satisfied() {
		ui.ColorPrint(printers["success"], "  Required: %s (satisfied)\n", info.Constraint)
		return
	}
	ui.ColorPrint(printers["warning"], "  Required: %s (%s)\n", info.Constraint, info.Problem)
}
