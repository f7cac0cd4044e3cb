// Package mappings manages the description to category mapping table.
package mappings

import (
	"context"
	"fmt"
	"io"

	"sms-ledger/cmd/common"
	"sms-ledger/cmd/root"
	"sms-ledger/internal/container"
	"sms-ledger/internal/models"

	"github.com/spf13/cobra"
)

// Cmd represents the mappings command
var Cmd = &cobra.Command{
	Use:   "mappings",
	Short: "List or add description to category mappings",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List description mappings in match order",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := common.Container()
		if err != nil {
			return err
		}
		return List(cmd.Context(), c, cmd.OutOrStdout())
	},
}

var addCmd = &cobra.Command{
	Use:     "add <description> <category>",
	Short:   "Add or overwrite a description mapping",
	Example: `  sms-ledger mappings add uber Transport`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := common.Container()
		if err != nil {
			return err
		}
		return Add(cmd.Context(), c, args[0], args[1], cmd.OutOrStdout())
	},
}

func init() {
	Cmd.AddCommand(listCmd, addCmd)
}

// List prints every description mapping.
func List(ctx context.Context, c *container.Container, out io.Writer) error {
	list, err := c.GetStore().DescriptionMappings(ctx)
	if err != nil {
		return err
	}
	tw := root.NewTable(out, "DESCRIPTION", "CATEGORY")
	for _, m := range list {
		fmt.Fprintf(tw, "%s\t%s\n", m.Description, m.Category)
	}
	return tw.Flush()
}

// Add upserts one description mapping.
func Add(ctx context.Context, c *container.Container, description, category string, out io.Writer) error {
	mapping := models.DescriptionMapping{Description: description, Category: category}
	if err := c.GetStore().UpsertDescriptionMapping(ctx, mapping); err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved %q -> %s\n", description, category)
	return nil
}
