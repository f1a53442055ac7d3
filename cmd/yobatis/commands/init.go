package commands

import (
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/yobatis-go/yobatis/internal/config"
	"github.com/yobatis-go/yobatis/internal/debug"
	"github.com/yobatis-go/yobatis/internal/introspect"
	"github.com/yobatis-go/yobatis/internal/service"
	"github.com/yobatis-go/yobatis/internal/ui"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var saveConfig bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold mapper documents from a MySQL database",
		Long: `Connect to a MySQL database and write db.xml plus one mapper document
per table, with insert, update, select and delete statements keyed by each
primary-key column.`,
		Example: `  yobatis init -u root -d shop -o mappers
  yobatis init -H db.local -P 3307 -u app -d shop --save-config`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, map[string]string{
				"mysql.host":     "host",
				"mysql.port":     "port",
				"mysql.user":     "user",
				"mysql.password": "password",
				"mysql.database": "database",
				"input":          "output",
			})
			if err != nil {
				return err
			}
			if err := cfg.ValidateConnection(); err != nil {
				return err
			}
			if cfg.MySQL.Password == "" && stdinIsTerminal() {
				prompt := &survey.Password{
					Message: fmt.Sprintf("Password for %s@%s:", cfg.MySQL.User, cfg.MySQL.Host),
				}
				if err := survey.AskOne(prompt, &cfg.MySQL.Password); err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
			}
			return runInit(cmd, cfg, saveConfig)
		},
	}

	cmd.Flags().StringP("host", "H", "localhost", "MySQL host")
	cmd.Flags().IntP("port", "P", 3306, "MySQL port")
	cmd.Flags().StringP("user", "u", "", "MySQL user")
	cmd.Flags().StringP("password", "p", "", "MySQL password (prompted when empty)")
	cmd.Flags().StringP("database", "d", "", "Database to scaffold")
	cmd.Flags().StringP("output", "o", ".", "Directory receiving the mapper documents")
	cmd.Flags().BoolVar(&saveConfig, "save-config", false, "Write the connection settings to .yobatis.yaml")

	return cmd
}

func runInit(cmd *cobra.Command, cfg *config.Config, saveConfig bool) error {
	ctx := cmd.Context()
	total := 3
	if saveConfig {
		total++
	}

	ui.PrintHeader("yobatis", "Scaffolding mapper documents")

	ui.PrintStep(1, total, fmt.Sprintf("Connecting to %s:%d", cfg.MySQL.Host, cfg.MySQL.Port))
	db, err := introspect.Connect(ctx, introspect.Options{
		Host:     cfg.MySQL.Host,
		Port:     cfg.MySQL.Port,
		User:     cfg.MySQL.User,
		Password: cfg.MySQL.Password,
		Database: cfg.MySQL.Database,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			debug.Warn("Failed to close database", "error", err)
		}
	}()

	ui.PrintStep(2, total, fmt.Sprintf("Introspecting %s", cfg.MySQL.Database))
	svc := service.NewInitService(config.AppFs, introspect.NewMySQLIntrospector(db, cfg.MySQL.Database))
	files, err := svc.Init(ctx, service.InitInput{OutputDir: cfg.Input})
	if err != nil {
		return fmt.Errorf("init failed: %w", err)
	}

	ui.PrintStep(3, total, "Writing mapper documents")
	ui.PrintList(files)

	if saveConfig {
		ui.PrintStep(4, total, "Saving configuration")
		path, err := config.SaveConfig(cfg, ".")
		if err != nil {
			return err
		}
		ui.PrintInfo("Configuration written to %s", path)
	}

	ui.PrintSuccess("Scaffolded %d tables into %s", len(files)-1, cfg.Input)
	return nil
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
