package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hejijunhao/camscan/internal/config"
	"github.com/hejijunhao/camscan/internal/connector"
	"github.com/hejijunhao/camscan/internal/engine"
	"github.com/hejijunhao/camscan/internal/engine/classifier"
	"github.com/hejijunhao/camscan/internal/engine/labeler"
	"github.com/hejijunhao/camscan/internal/logging"

	// Register connector implementations.
	_ "github.com/hejijunhao/camscan/internal/connector/csvfile"
	_ "github.com/hejijunhao/camscan/internal/connector/shodan"
)

var (
	cfg       config.Config
	logCloser io.Closer

	flagEnvFile string
	flagVerbose bool
)

func main() {
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "debug logging")

	rootCmd.SilenceErrors = true
	rootCmd.PersistentPreRunE = initCamscan

	rootCmd.AddCommand(serveCmd(), scanCmd(), classifyCmd(), versionCmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if logCloser != nil {
		logCloser.Close()
	}
	if err != nil {
		slog.Error("camscan failed", "error", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "camscan",
	Short:        "Find internet-facing cameras and classify their exposure",
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("camscan: %s\n", config.Version)
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		fmt.Printf("go:      %s\n", info.GoVersion)
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				fmt.Printf("commit:  %s\n", s.Value)
			case "vcs.time":
				fmt.Printf("date:    %s\n", s.Value)
			case "vcs.modified":
				fmt.Printf("dirty:   %s\n", s.Value)
			}
		}
	},
}

// initCamscan loads .env and the environment, validates the result and
// installs the logger. Runs before every subcommand.
func initCamscan(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(flagEnvFile); err != nil {
		return err
	}
	cfg = config.Load()
	if flagVerbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}
	logCloser = logging.Init(logging.Options{
		JSON:  cfg.Log.JSON,
		Level: logging.ParseLevel(cfg.Log.Level),
		File:  cfg.Log.File,
	})
	slog.Debug("configuration loaded", "connector", cfg.Connector, "keywords", cfg.Engine.Keywords)
	return nil
}

// commandContext tags every log line of a subcommand with its name and pid.
func commandContext(cmd *cobra.Command) context.Context {
	return logging.ContextAttrs(cmd.Context(), slog.Group("camscan",
		slog.String("cmd", cmd.Name()),
		slog.Int("pid", os.Getpid()),
	))
}

func newConnector(provider string) (connector.Connector, error) {
	ctor, err := connector.Get(provider)
	if err != nil {
		return nil, err
	}
	return ctor(), nil
}

func liveConnectorConfig(bannerBytes int) connector.ConnectorConfig {
	return connector.ConnectorConfig{
		Provider:    cfg.Connector.Provider,
		APIKey:      cfg.Connector.APIKey,
		Endpoint:    cfg.Connector.Endpoint,
		Timeout:     cfg.Connector.Timeout,
		MaxRetries:  cfg.Connector.MaxRetries,
		BannerBytes: bannerBytes,
		Path:        cfg.Connector.DemoPath,
	}
}

func newEngine(keywords []string, ec config.EngineConfig) *engine.Engine {
	return engine.New(
		labeler.New(keywords),
		classifier.New(classifier.Config{
			MaxFeatures: ec.MaxFeatures,
			TestSize:    ec.TestSize,
			Trees:       ec.Trees,
			Workers:     ec.Workers,
			Seed:        ec.Seed,
		}),
	)
}
