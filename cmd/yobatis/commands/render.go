package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yobatis-go/yobatis/internal/config"
	"github.com/yobatis-go/yobatis/internal/service"
	"github.com/yobatis-go/yobatis/internal/ui"
)

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "render <document> <statement-id>",
		Short: "Show the SQL a statement runs for a record",
		Long: `Evaluate one statement of a mapper document against a record built from
--set values, and print the resulting SQL together with its bindings.
Unset fields keep their null value.`,
		Example: `  yobatis render user-mapper.xml update_by_id_selective -s id=7 -s name=bob`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseSets(sets)
			if err != nil {
				return err
			}

			out, err := service.NewRenderService(config.AppFs).Render(cmd.Context(), service.RenderInput{
				Document:  args[0],
				Statement: args[1],
				Values:    values,
			})
			if err != nil {
				return err
			}

			ui.PrintHeader(out.Mapper.Namespace, fmt.Sprintf("%s %s", out.Statement.Kind, out.Statement.ID))
			ui.PrintSection("SQL")
			ui.PrintCodeBlock(out.SQL, "sql")
			ui.PrintSection("Prepared")
			ui.PrintCodeBlock(out.Prepared, "sql")

			if len(out.Bindings) == 0 {
				return nil
			}
			ui.PrintSection("Bindings")
			rows := make([][]string, 0, len(out.Bindings))
			for _, b := range out.Bindings {
				rows = append(rows, []string{
					strconv.Itoa(b.Position),
					b.Field.Property,
					b.MySQLType(),
					b.Display(),
				})
			}
			return ui.PrintTable([]string{"Slot", "Field", "Type", "Value"}, rows)
		},
	}

	cmd.Flags().StringArrayVarP(&sets, "set", "s", nil, "Field value as property=value (repeatable)")

	return cmd
}

func parseSets(sets []string) (map[string]string, error) {
	values := make(map[string]string, len(sets))
	for _, s := range sets {
		name, value, ok := strings.Cut(s, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q: expected property=value", s)
		}
		values[name] = value
	}
	return values, nil
}
