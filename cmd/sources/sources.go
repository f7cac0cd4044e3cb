// Package sources manages the source reference mapping table.
package sources

import (
	"context"
	"fmt"
	"io"

	"sms-ledger/cmd/common"
	"sms-ledger/cmd/root"
	"sms-ledger/internal/container"
	"sms-ledger/internal/store"

	"github.com/spf13/cobra"
)

const defaultSeedFile = "mappings.yaml"

// Cmd represents the sources command
var Cmd = &cobra.Command{
	Use:   "sources",
	Short: "List source mappings or import mapping seeds",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List source reference mappings",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := common.Container()
		if err != nil {
			return err
		}
		return List(cmd.Context(), c, cmd.OutOrStdout())
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import description and source mappings from a YAML seed file",
	Long: `Upsert the descriptions and sources listed in a YAML seed file. Without --input the
file is looked up as mappings.yaml in ., ./config, ./database and ~/.config/sms-ledger.

Example:
  sms-ledger sources import -i seeds.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := common.Container()
		if err != nil {
			return err
		}
		return Import(cmd.Context(), c, root.SharedFlags.Input, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.AddCommand(listCmd, importCmd)
}

// List prints every source mapping.
func List(ctx context.Context, c *container.Container, out io.Writer) error {
	list, err := c.GetStore().SourceMappings(ctx)
	if err != nil {
		return err
	}
	tw := root.NewTable(out, "REFERENCE", "SOURCE")
	for _, m := range list {
		fmt.Fprintf(tw, "%s\t%s\n", m.Reference, m.Source)
	}
	return tw.Flush()
}

// Import loads the seed file at path (or the default seed file) into the store.
func Import(ctx context.Context, c *container.Container, path string, out io.Writer) error {
	if path == "" {
		found, err := store.FindSeedFile(defaultSeedFile)
		if err != nil {
			return fmt.Errorf("no --input given and %s not found: %w", defaultSeedFile, err)
		}
		path = found
	}
	seed, err := store.LoadSeedFile(path)
	if err != nil {
		return err
	}
	n, err := c.GetStore().ImportSeed(ctx, seed)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Imported %d mappings from %s\n", n, path)
	return nil
}
