// Package migrate applies the database schema migrations.
package migrate

import (
	"fmt"

	"sms-ledger/cmd/common"

	"github.com/spf13/cobra"
)

// Cmd represents the migrate command
var Cmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Long: `Apply the embedded goose migrations for the configured driver. Needed only when
database.auto_migrate is disabled.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := common.Container()
		if err != nil {
			return err
		}
		if err := c.GetStore().Migrate(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date")
		return nil
	},
}
