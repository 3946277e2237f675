package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/multierr"

	"github.com/lei/plr-summary/internal/api"
	"github.com/lei/plr-summary/internal/config"
	"github.com/lei/plr-summary/internal/models"
	"github.com/lei/plr-summary/internal/provider"
	"github.com/lei/plr-summary/internal/provider/kube"
	"github.com/lei/plr-summary/internal/service"
	"github.com/lei/plr-summary/internal/storage"
	"github.com/lei/plr-summary/pkg/logger"
)

// Gateway represents a pipeline run summary gateway that can be embedded in applications
type Gateway struct {
	config  *Config
	service *service.Service
	store   *storage.Store
	router  http.Handler
	server  *http.Server
	logger  *logger.Logger
}

// Config holds the configuration for the Gateway
type Config struct {
	// Server configuration
	Server ServerConfig

	// Cluster holding the Tekton resources
	Cluster ClusterConfig

	// Provider overrides Cluster when set
	Provider provider.Provider

	// Summary tuning
	Summary SummaryConfig

	// History configuration; an empty DSN disables history
	History HistoryConfig

	// WatchInterval is the polling interval of event streams
	WatchInterval time.Duration

	// Saved views
	Views []*models.View

	// Logger configuration
	Logging LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// ClusterConfig holds Kubernetes API connection settings
type ClusterConfig struct {
	URL                string
	Token              string
	TokenFile          string
	InsecureSkipVerify bool
	Timeout            time.Duration
}

// SummaryConfig tunes summary generation
type SummaryConfig struct {
	SnippetBudget int
	LogTailLines  int
}

// HistoryConfig holds summary history settings
type HistoryConfig struct {
	DSN string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or text
}

// New creates a new Gateway instance with the provided configuration
func New(cfg *Config) (*Gateway, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	// Initialize logger
	appLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	// Initialize provider
	prov := cfg.Provider
	if prov == nil {
		adapter, err := kube.NewAdapter(&kube.Config{
			URL:                cfg.Cluster.URL,
			Token:              cfg.Cluster.Token,
			TokenFile:          cfg.Cluster.TokenFile,
			InsecureSkipVerify: cfg.Cluster.InsecureSkipVerify,
			Timeout:            cfg.Cluster.Timeout,
		}, appLogger)
		if err != nil {
			return nil, fmt.Errorf("initialize cluster provider: %w", err)
		}
		prov = adapter
		appLogger.Info("initialized cluster provider", "url", cfg.Cluster.URL)
	}

	// Initialize history store
	var store *storage.Store
	var history service.HistoryStore
	if cfg.History.DSN != "" {
		s, err := storage.Open(cfg.History.DSN)
		if err != nil {
			return nil, fmt.Errorf("open history store: %w", err)
		}
		store, history = s, s
		appLogger.Info("opened history store", "dsn", cfg.History.DSN)
	}

	// Initialize service layer
	svc := service.NewService(cfg.Views, prov, history, service.Options{
		SnippetBudget: cfg.Summary.SnippetBudget,
		LogTailLines:  cfg.Summary.LogTailLines,
		WatchInterval: cfg.WatchInterval,
	}, appLogger)

	// Initialize API layer
	handlers := api.NewHandlers(svc)
	loggingMiddleware := api.NewLoggingMiddleware(appLogger)
	router := api.NewRouter(handlers, loggingMiddleware)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Gateway{
		config:  cfg,
		service: svc,
		store:   store,
		router:  router,
		server:  srv,
		logger:  appLogger,
	}, nil
}

// Start starts the HTTP server
// This is a blocking call that will run until the context is canceled or an error occurs
func (g *Gateway) Start(ctx context.Context) error {
	serverErrors := make(chan error, 1)

	// Start server in goroutine
	go func() {
		g.logger.Info("starting http server", "port", g.config.Server.Port)
		serverErrors <- g.server.ListenAndServe()
	}()

	// Wait for context cancellation or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return multierr.Append(fmt.Errorf("server error: %w", err), g.Close())
		}
		return g.Close()

	case <-ctx.Done():
		g.logger.Info("shutdown signal received")

		// Graceful shutdown with 30s timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := g.server.Shutdown(shutdownCtx); err != nil {
			g.server.Close()
			return multierr.Append(fmt.Errorf("graceful shutdown failed: %w", err), g.Close())
		}

		g.logger.Info("server stopped gracefully")
		return g.Close()
	}
}

// Close releases the history store and flushes the logger
func (g *Gateway) Close() error {
	var err error
	if g.store != nil {
		err = multierr.Append(err, g.store.Close())
		g.store = nil
	}
	// Syncing stdout fails on some platforms; it is not worth reporting
	_ = g.logger.Sync()
	return err
}

// Handler returns the http.Handler for the gateway
// Use this if you want to integrate the gateway into an existing HTTP server
func (g *Gateway) Handler() http.Handler {
	return g.router
}

// Service returns the underlying service layer
// Use this for direct programmatic access to gateway functionality
func (g *Gateway) Service() *service.Service {
	return g.service
}

// NewFromEnv creates a Gateway instance from PLRS_* environment variables
// and an optional views file
func NewFromEnv(viewsFile string) (*Gateway, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return fromConfig(cfg, viewsFile)
}

// NewFromFile creates a Gateway instance from a YAML config file and an
// optional views file
func NewFromFile(configFile, viewsFile string) (*Gateway, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return fromConfig(cfg, viewsFile)
}

func fromConfig(cfg *config.Config, viewsFile string) (*Gateway, error) {
	views, err := loadViews(viewsFile)
	if err != nil {
		return nil, err
	}
	return New(ConfigFrom(cfg, views))
}

// loadViews reads the views file; a missing file means no views
func loadViews(path string) ([]*models.View, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	views, err := config.LoadViews(path)
	if err != nil {
		return nil, fmt.Errorf("load views: %w", err)
	}
	return views, nil
}

// ConfigFrom converts a loaded configuration to a Gateway config
func ConfigFrom(cfg *config.Config, views []*models.View) *Config {
	return &Config{
		Server: ServerConfig{
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		Cluster: ClusterConfig{
			URL:                cfg.Cluster.URL,
			Token:              cfg.Cluster.Token,
			TokenFile:          cfg.Cluster.TokenFile,
			InsecureSkipVerify: cfg.Cluster.InsecureSkipVerify,
			Timeout:            cfg.Cluster.Timeout,
		},
		Summary: SummaryConfig{
			SnippetBudget: cfg.Summary.SnippetBudget,
			LogTailLines:  cfg.Summary.LogTailLines,
		},
		History:       HistoryConfig{DSN: cfg.Storage.DSN},
		WatchInterval: cfg.Watch.Interval,
		Views:         views,
		Logging: LoggingConfig{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		},
	}
}
