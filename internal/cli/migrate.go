package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back the embedded SQL migrations",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		direction := "up"
		if len(args) == 1 {
			direction = args[0]
		}
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		if a.db == nil {
			return fmt.Errorf("migrate needs DB_DRIVER=mysql")
		}
		return a.migrate(cmd.Context(), direction)
	},
}
