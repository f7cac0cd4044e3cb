// Package categories lists and creates spending categories.
package categories

import (
	"context"
	"fmt"
	"io"

	"sms-ledger/cmd/common"
	"sms-ledger/cmd/root"
	"sms-ledger/internal/container"

	"github.com/spf13/cobra"
)

// Cmd represents the categories command
var Cmd = &cobra.Command{
	Use:   "categories",
	Short: "List or add categories",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories by name",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := common.Container()
		if err != nil {
			return err
		}
		return List(cmd.Context(), c, cmd.OutOrStdout())
	},
}

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := common.Container()
		if err != nil {
			return err
		}
		return Add(cmd.Context(), c, args[0], cmd.OutOrStdout())
	},
}

func init() {
	Cmd.AddCommand(listCmd, addCmd)
}

// List prints every category.
func List(ctx context.Context, c *container.Container, out io.Writer) error {
	list, err := c.GetStore().Categories(ctx)
	if err != nil {
		return err
	}
	tw := root.NewTable(out, "ID", "CATEGORY")
	for _, cat := range list {
		fmt.Fprintf(tw, "%d\t%s\n", cat.ID, cat.Name)
	}
	return tw.Flush()
}

// Add creates the category name.
func Add(ctx context.Context, c *container.Container, name string, out io.Writer) error {
	cat, err := c.GetStore().CreateCategory(ctx, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Created category %d %s\n", cat.ID, cat.Name)
	return nil
}
