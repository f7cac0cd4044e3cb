// Package importer implements the import command: CSV of messages to preview.
package importer

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"sms-ledger/cmd/common"
	"sms-ledger/cmd/root"
	"sms-ledger/internal/container"
	"sms-ledger/internal/fileutils"
	"sms-ledger/internal/ingest"
	"sms-ledger/internal/logging"

	"github.com/spf13/cobra"
)

// Options are the import command flags.
type Options struct {
	Input  string
	Output string
	Drop   string
	Commit bool
	Export string
}

var opts Options

// Cmd represents the import command
var Cmd = &cobra.Command{
	Use:   "import",
	Short: "Extract transaction drafts from a CSV of SMS messages",
	Long: `Read a CSV export whose header contains an "sms" column, extract a draft from every
message a registered pattern recognizes and resolve categories and sources from the mapping
tables. The preview is saved as YAML for the commit command unless --commit is given.

Example:
  sms-ledger import -i messages.csv -o preview.yaml
  sms-ledger import -i messages.csv --drop 2,5 --commit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := common.Container()
		if err != nil {
			return err
		}
		input, err := root.RequireInput("import")
		if err != nil {
			return err
		}
		opts.Input = input
		opts.Output = root.SharedFlags.Output
		return Run(cmd.Context(), c, opts, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVar(&opts.Drop, "drop", "", "Comma-separated preview positions (1-based) to discard")
	Cmd.Flags().BoolVar(&opts.Commit, "commit", false, "Commit the preview immediately")
	Cmd.Flags().StringVar(&opts.Export, "export", "", "Also write the drafts to this CSV file")
}

// Run parses o.Input and saves, exports or commits the preview.
func Run(ctx context.Context, c *container.Container, o Options, out io.Writer) error {
	drop, err := common.ParsePositions(o.Drop)
	if err != nil {
		return err
	}

	f, err := fileutils.OpenFile(o.Input)
	if err != nil {
		return err
	}
	defer f.Close()

	preview, err := c.GetPipeline().Parse(ctx, f)
	if err != nil {
		return err
	}
	log := c.GetLogger().WithFields(logging.F(logging.FieldFile, o.Input), logging.F(logging.FieldPreviewID, preview.ID))
	log.Info("Messages parsed",
		logging.F(logging.FieldTotal, preview.Counters.TotalRows),
		logging.F(logging.FieldMatched, preview.Counters.Matched))

	if len(drop) > 0 {
		if err := preview.Remove(drop...); err != nil {
			return err
		}
	}
	if err := common.PrintPreview(out, preview); err != nil {
		return err
	}

	if o.Export != "" {
		if err := exportDrafts(o.Export, preview, c.GetConfig().Delimiter()); err != nil {
			return err
		}
		log.Info("Drafts exported", logging.F(logging.FieldFile, o.Export))
	}

	if o.Commit {
		ids, err := common.CommitPreview(ctx, c, preview, nil)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Committed %d transactions\n", len(ids))
		return nil
	}

	if preview.Outcome() != ingest.OutcomeReady {
		return nil
	}
	path := o.Output
	if path == "" {
		path = filepath.Join(c.GetConfig().Ingest.PreviewDir, preview.ID+".yaml")
	}
	if err := preview.Save(path); err != nil {
		return err
	}
	fmt.Fprintf(out, "Preview saved to %s\n", path)
	return nil
}

func exportDrafts(path string, preview *ingest.Preview, delimiter rune) error {
	f, err := fileutils.CreateFile(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ingest.ExportCSV(f, preview.Drafts, delimiter)
}
