// Package serve runs the HTTP API.
package serve

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"sms-ledger/cmd/common"
	"sms-ledger/internal/api"
	"sms-ledger/internal/container"
	"sms-ledger/internal/logging"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var address string

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API",
	Long: `Start the HTTP API (import, batch commit, transactions, categories, mappings,
reimbursements and monthly stats). Stops gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := common.Container()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return Run(ctx, c, address)
	},
}

func init() {
	Cmd.Flags().StringVar(&address, "addr", "", "Listen address (default: server.address)")
}

// NewServer builds the http.Server for c.
func NewServer(c *container.Container, addr string) *http.Server {
	cfg := c.GetConfig()
	if addr == "" {
		addr = cfg.Server.Address
	}
	return &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(c.NewHandler(), cfg.Server.Mode),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, c *container.Container, addr string) error {
	log := c.GetLogger()
	server := NewServer(c, addr)

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting API server", logging.F("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("Server exited")
	return nil
}
