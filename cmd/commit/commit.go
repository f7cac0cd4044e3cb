// Package commit implements the commit command for saved previews.
package commit

import (
	"context"
	"fmt"
	"io"

	"sms-ledger/cmd/common"
	"sms-ledger/cmd/root"
	"sms-ledger/internal/container"
	"sms-ledger/internal/ingest"

	"github.com/spf13/cobra"
)

var drop string

// Cmd represents the commit command
var Cmd = &cobra.Command{
	Use:   "commit",
	Short: "Commit a saved preview as one atomic batch",
	Long: `Load a preview written by the import command, optionally discard some rows and store
the remaining drafts in a single transaction. Nothing is stored if any row fails.

Example:
  sms-ledger commit -i previews/3f2c.yaml --drop 4`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := common.Container()
		if err != nil {
			return err
		}
		input, err := root.RequireInput("commit")
		if err != nil {
			return err
		}
		return Run(cmd.Context(), c, input, drop, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVar(&drop, "drop", "", "Comma-separated preview positions (1-based) to discard")
}

// Run commits the preview stored at path.
func Run(ctx context.Context, c *container.Container, path, dropList string, out io.Writer) error {
	positions, err := common.ParsePositions(dropList)
	if err != nil {
		return err
	}
	preview, err := ingest.LoadPreview(path)
	if err != nil {
		return err
	}
	ids, err := common.CommitPreview(ctx, c, preview, positions)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Committed %d transactions from %s\n", len(ids), path)
	return nil
}
