package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hejijunhao/camscan/internal/connector"
	"github.com/hejijunhao/camscan/internal/connector/csvfile"
	"github.com/hejijunhao/camscan/internal/output"
	"github.com/hejijunhao/camscan/internal/output/async"
	"github.com/hejijunhao/camscan/internal/output/webhook"
	"github.com/hejijunhao/camscan/internal/server"
)

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "start the web UI and search API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			if addr == "" {
				addr = cfg.Server.Addr
			}

			live, err := newConnector(cfg.Connector.Provider)
			if err != nil {
				return err
			}
			if cfg.Connector.Provider == "shodan" && cfg.Connector.APIKey == "" {
				slog.WarnContext(ctx, "no API key configured: live searches will fail, demo mode still works")
			}

			var out output.Output
			if cfg.Output.WebhookURL != "" {
				var opts []webhook.Option
				if cfg.Output.WebhookChart {
					opts = append(opts, webhook.WithChart())
				}
				out = async.New(webhook.New(cfg.Output.WebhookURL, opts...), async.WithDropOnFull())
			}

			srv := server.New(server.Config{
				Live:       live,
				LiveConfig: liveConnectorConfig(cfg.Connector.BannerBytes),
				Demo:       &csvfile.Connector{},
				DemoConfig: connector.ConnectorConfig{
					Provider:    "csv",
					Path:        cfg.Connector.DemoPath,
					BannerBytes: cfg.Connector.BannerBytes,
				},
				Processor: newEngine(cfg.Engine.Keywords, cfg.Engine),
				Output:    out,
				GinMode:   cfg.Server.GinMode,
			})
			defer srv.Close()

			return srv.Run(ctx, addr, cfg.ShutdownTimeout)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default $CAMSCAN_ADDR or :5000)")
	return cmd
}
