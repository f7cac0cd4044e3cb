// Package root contains the root command for the application
package root

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"sms-ledger/internal/config"
	"sms-ledger/internal/container"
	"sms-ledger/internal/fileutils"
	"sms-ledger/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input    string
	Output   string
	LogLevel string
	Database string
}

var (
	// Log is the shared logger instance for commands
	Log = logging.GetLogger()

	// AppContainer is built by PersistentPreRunE and closed by PersistentPostRun.
	AppContainer *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "sms-ledger",
		Short: "Extract transactions from bank SMS exports and reconcile them into a ledger.",
		Long: `sms-ledger reads CSV exports of bank notification messages, extracts transaction
drafts with a registry of bank-specific patterns, resolves categories and sources from
learned mapping tables and commits confirmed previews to a SQLite or PostgreSQL ledger.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to sms-ledger!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.LoadEnv(); err != nil {
				return fmt.Errorf("failed to load .env: %w", err)
			}
			cfg, err := config.InitializeConfig()
			if err != nil {
				return err
			}
			applyFlagOverrides(cfg)

			c, err := container.NewContainer(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			AppContainer = c
			Log = c.GetLogger()
			logging.SetDefault(Log)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if AppContainer == nil {
				return
			}
			if err := AppContainer.Close(); err != nil {
				Log.WithError(err).Warn("Failed to close database")
			}
			AppContainer = nil
		},
	}

	// Common flags accessible to all commands
	SharedFlags = CommonFlags{}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogLevel, "log-level", "", "Override log.level")
	Cmd.PersistentFlags().StringVar(&SharedFlags.Database, "db", "", "Override database.dsn")
}

func applyFlagOverrides(cfg *config.Config) {
	if SharedFlags.LogLevel != "" {
		cfg.Log.Level = strings.ToLower(SharedFlags.LogLevel)
	}
	if SharedFlags.Database != "" {
		cfg.Database.DSN = SharedFlags.Database
	}
}

// RequireInput returns the --input flag or an error naming the command.
func RequireInput(command string) (string, error) {
	if SharedFlags.Input == "" {
		return "", fmt.Errorf("%s: --input is required", command)
	}
	if !fileutils.FileExists(SharedFlags.Input) {
		return "", fmt.Errorf("%s: file does not exist: %s", command, SharedFlags.Input)
	}
	return SharedFlags.Input, nil
}

// NewTable returns a tab-aligned writer for plain listings.
func NewTable(w io.Writer, header ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	return tw
}
