// Package categorize handles transaction recategorization commands
package categorize

import (
	"context"
	"fmt"
	"io"

	"sms-ledger/cmd/common"
	"sms-ledger/internal/container"
	"sms-ledger/internal/feedback"

	"github.com/spf13/cobra"
)

// Options are the categorize command flags.
type Options struct {
	TransactionID int64
	CategoryID    int64
	Bulk          bool
	Description   string
	OldCategoryID int64
	Learn         bool
}

var opts Options

// Cmd represents the categorize command
var Cmd = &cobra.Command{
	Use:   "categorize",
	Short: "Move a transaction, or all identical ones, to another category",
	Long: `Recategorize one transaction, or with --bulk every transaction whose description
matches exactly and whose category is --old-category-id. --learn also records the
description as a mapping so future imports resolve to the new category.

Example:
  sms-ledger categorize --id 42 --category-id 3 --learn
  sms-ledger categorize --id 42 --category-id 3 --bulk --old-category-id 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := common.Container()
		if err != nil {
			return err
		}
		return Run(cmd.Context(), c, opts, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().Int64Var(&opts.TransactionID, "id", 0, "Transaction id")
	Cmd.Flags().Int64Var(&opts.CategoryID, "category-id", 0, "New category id")
	Cmd.Flags().BoolVar(&opts.Bulk, "bulk", false, "Move every transaction with the same description and old category")
	Cmd.Flags().StringVar(&opts.Description, "description", "", "Description to match in bulk mode (default: the transaction's)")
	Cmd.Flags().Int64Var(&opts.OldCategoryID, "old-category-id", 0, "Category to move from in bulk mode (default: the transaction's)")
	Cmd.Flags().BoolVar(&opts.Learn, "learn", false, "Save the description as a mapping to the new category")
	_ = Cmd.MarkFlagRequired("id")
	_ = Cmd.MarkFlagRequired("category-id")
}

// Run applies o through the feedback service.
func Run(ctx context.Context, c *container.Container, o Options, out io.Writer) error {
	res, err := c.GetFeedback().Apply(ctx, feedback.Request{
		TransactionID: o.TransactionID,
		CategoryID:    o.CategoryID,
		Bulk:          o.Bulk,
		Description:   o.Description,
		OldCategoryID: o.OldCategoryID,
		Learn:         o.Learn,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Updated %d transactions\n", res.Updated)
	if res.Learned != nil {
		fmt.Fprintf(out, "Learned %q -> %s\n", res.Learned.Description, res.Learned.Category)
	}
	return nil
}
