package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hejijunhao/camscan/internal/engine/compactor"
	"github.com/hejijunhao/camscan/internal/model"
	"github.com/hejijunhao/camscan/internal/output/file"
	"github.com/hejijunhao/camscan/internal/pipeline"
)

// defaultScanQuery targets RTSP cameras around Paducah, KY.
const defaultScanQuery = `product:"IP Camera" geo:"36.6103,-88.3148" port:554`

func scanCmd() *cobra.Command {
	var (
		outPath     string
		bannerBytes int
	)
	cmd := &cobra.Command{
		Use:   "scan [QUERY]",
		Short: "run one search and save the devices as CSV",
		Long: "scan queries the configured source once, truncates banners and writes\n" +
			"ip,port,location,org,data rows. The CSV feeds demo mode and classify.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			query := defaultScanQuery
			if len(args) == 1 {
				query = args[0]
			}

			conn, err := newConnector(cfg.Connector.Provider)
			if err != nil {
				return err
			}
			res, err := pipeline.New(conn, liveConnectorConfig(bannerBytes), nil).Collect(ctx, query)
			if err != nil {
				return err
			}

			out, err := file.New(outPath)
			if err != nil {
				return err
			}
			report := &model.Report{Query: query, Total: res.Total, Devices: make([]model.ScoredDevice, len(res.Devices))}
			for i, d := range res.Devices {
				report.Devices[i] = model.ScoredDevice{Device: d}
			}
			if err := out.Write(ctx, report); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}

			slog.InfoContext(ctx, "scan complete", "query", query, "total", res.Total, "saved", out.Rows(), "path", outPath)
			fmt.Fprintf(cmd.OutOrStdout(), "Scan complete. %d devices saved to %s\n", out.Rows(), outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "data/shodan_results.csv", "CSV output path")
	cmd.Flags().IntVar(&bannerBytes, "banner-bytes", compactor.ScanBannerBytes, "banner truncation length in bytes")
	return cmd
}
