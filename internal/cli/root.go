// Package cli wires configuration, storage and transport into the
// skycomfort command and its subcommands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "skycomfort",
	Short: "SkyComfort in-flight ordering server",
	Long: `SkyComfort serves the in-flight ordering API: catalog, orders,
payments, offline sync and the demo payment bridge.

Running without a subcommand is the same as "skycomfort serve".`,
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, serveCmd} {
		c.Flags().BoolVar(&serveMigrate, "migrate", false, "apply pending migrations before serving")
	}
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, workerCmd)
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
