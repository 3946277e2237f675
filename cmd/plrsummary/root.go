package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lei/plr-summary/internal/config"
	"github.com/lei/plr-summary/internal/provider/kube"
	"github.com/lei/plr-summary/internal/service"
	"github.com/lei/plr-summary/internal/storage"
	"github.com/lei/plr-summary/pkg/logger"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "plrsummary",
		Short:         "Summarize Tekton pipeline runs",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	persistent := cmd.PersistentFlags()
	persistent.String("config", "", "config file (default: PLRS_* environment variables)")
	persistent.String("views", defaultViewsFile(), "saved views file")
	persistent.String("format", "pretty", "output format (pretty|json)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSummarizeCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newHistoryCmd())

	return cmd
}

func defaultViewsFile() string {
	if v := os.Getenv("VIEWS_FILE"); v != "" {
		return v
	}
	return "configs/views.yaml"
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("parse --config: %w", err)
	}
	if path == "" {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

func formatFlag(cmd *cobra.Command) (string, error) {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return "", fmt.Errorf("parse --format: %w", err)
	}
	return format, nil
}

// clusterService builds a service talking to the configured cluster. The
// returned close func releases the history store, if any.
func clusterService(cfg *config.Config) (*service.Service, func() error, error) {
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	adapter, err := kube.NewAdapter(&kube.Config{
		URL:                cfg.Cluster.URL,
		Token:              cfg.Cluster.Token,
		TokenFile:          cfg.Cluster.TokenFile,
		InsecureSkipVerify: cfg.Cluster.InsecureSkipVerify,
		Timeout:            cfg.Cluster.Timeout,
	}, log)
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() error { return nil }
	var history service.HistoryStore
	if cfg.Storage.DSN != "" {
		store, err := storage.Open(cfg.Storage.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open history store: %w", err)
		}
		history = store
		closeFn = store.Close
	}

	svc := service.NewService(nil, adapter, history, service.Options{
		SnippetBudget: cfg.Summary.SnippetBudget,
		LogTailLines:  cfg.Summary.LogTailLines,
		WatchInterval: cfg.Watch.Interval,
	}, log)
	return svc, closeFn, nil
}
