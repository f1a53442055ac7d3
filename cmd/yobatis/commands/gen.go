package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yobatis-go/yobatis/internal/config"
	"github.com/yobatis-go/yobatis/internal/debug"
	"github.com/yobatis-go/yobatis/internal/mapper"
	"github.com/yobatis-go/yobatis/internal/service"
	"github.com/yobatis-go/yobatis/internal/ui"
	"github.com/yobatis-go/yobatis/internal/watch"
)

// NewGenCommand creates the gen command.
func NewGenCommand() *cobra.Command {
	var (
		watchMode bool
		report    bool
	)

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Compile mapper documents into C",
		Long: `Compile every mapper document of the input directory into a C header and
source pair, and write the shared runtime files next to them.`,
		Example: `  yobatis gen -i mappers -o src/db
  yobatis gen --pattern 'user*-mapper.xml' --report
  yobatis gen -w`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, map[string]string{
				"input":          "input",
				"output":         "output",
				"mapper_pattern": "pattern",
				"jobs":           "jobs",
			})
			if err != nil {
				return err
			}

			input := service.GenerateInput{
				InputDir:  cfg.Input,
				OutputDir: cfg.Output,
				Pattern:   cfg.MapperPattern,
				Jobs:      cfg.Jobs,
			}

			if watchMode {
				return runGenWatch(cmd.Context(), input)
			}
			return runGen(cmd.Context(), input, report)
		},
	}

	cmd.Flags().StringP("input", "i", ".", "Directory holding mapper documents")
	cmd.Flags().StringP("output", "o", ".", "Directory receiving generated C files")
	cmd.Flags().String("pattern", mapper.DefaultPattern, "Glob selecting mapper documents")
	cmd.Flags().IntP("jobs", "j", 0, "Documents compiled in parallel (0 = one per CPU)")
	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Regenerate when mapper documents change")
	cmd.Flags().BoolVar(&report, "report", false, "Print a Markdown summary of the generated API")

	return cmd
}

func runGen(ctx context.Context, input service.GenerateInput, report bool) error {
	ui.PrintHeader("yobatis", "Generating C mappers")

	start := time.Now()
	spinner, _ := ui.PrintSpinner("Compiling mapper documents...")
	res, err := service.NewGenerateService(config.AppFs).Generate(ctx, input)
	if spinner != nil {
		_ = spinner.Stop()
	}
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	summary := res.Summarize()
	if summary.Documents == 0 {
		ui.PrintWarning("No document in %s matches %s", input.InputDir, input.Pattern)
	}
	ui.PrintSuccess("Compiled %d documents into %s in %s", summary.Documents, input.OutputDir, time.Since(start).Round(time.Millisecond))

	if report {
		return ui.PrintMarkdown(service.Report(res))
	}

	ui.PrintSection("Files")
	ui.PrintList(res.Files)
	return nil
}

func runGenWatch(ctx context.Context, input service.GenerateInput) error {
	gen := service.NewGenerateService(config.AppFs)
	callback := func() error {
		res, err := gen.Generate(ctx, input)
		if err != nil {
			ui.PrintError("Generation failed: %v", err)
			return nil
		}
		ui.PrintSuccess("Regenerated %d documents", len(res.Outputs))
		return nil
	}

	w, err := watch.NewWatcher(input.InputDir, input.Pattern, callback)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer func() {
		if err := w.Stop(); err != nil {
			debug.Warn("Failed to stop watcher", "error", err)
		}
	}()

	ui.PrintInfo("Watching %s for changes. Press Ctrl+C to stop.", input.InputDir)
	<-ctx.Done()
	ui.PrintInfo("Stopping watcher...")
	return nil
}
