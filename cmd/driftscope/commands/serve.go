package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/driftscope/driftscope/internal/server"
)

func newServeCommand() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the drift read path over HTTP",
		Long: `Run the HTTP read path: tenant-scoped snapshot listings and ordered,
filtered, paginated drift event listings as JSON.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, log, err := newService()
			if err != nil {
				return err
			}

			if host == "" {
				host = cfg.Server.Host
			}
			if port == 0 {
				port = cfg.Server.Port
			}

			srv := server.New(server.Config{
				Host:           host,
				Port:           port,
				AllowedOrigins: cfg.Server.AllowedOrigins,
			}, service, log)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "bind address (defaults to config)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (defaults to config)")
	return cmd
}
