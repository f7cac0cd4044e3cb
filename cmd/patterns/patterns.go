// Package patterns lists the registered extraction patterns.
package patterns

import (
	"fmt"
	"io"

	"sms-ledger/cmd/common"
	"sms-ledger/internal/smsparser"

	"github.com/spf13/cobra"
)

// Cmd represents the patterns command
var Cmd = &cobra.Command{
	Use:   "patterns",
	Short: "List the SMS patterns in evaluation order",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := common.Container()
		if err != nil {
			return err
		}
		Print(c.GetExtractor().Registry(), cmd.OutOrStdout())
		return nil
	},
}

// Print writes one numbered line per pattern.
func Print(r *smsparser.Registry, out io.Writer) {
	for i, name := range r.Names() {
		fmt.Fprintf(out, "%d. %s\n", i+1, name)
	}
}
