package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lei/plr-summary/pkg/gateway"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the summary HTTP gateway",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	configFile, err := flags.GetString("config")
	if err != nil {
		return fmt.Errorf("parse --config: %w", err)
	}
	viewsFile, err := flags.GetString("views")
	if err != nil {
		return fmt.Errorf("parse --views: %w", err)
	}

	var gw *gateway.Gateway
	if configFile == "" {
		gw, err = gateway.NewFromEnv(viewsFile)
	} else {
		gw, err = gateway.NewFromFile(configFile, viewsFile)
	}
	if err != nil {
		return err
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Start the gateway (blocks until shutdown)
	return gw.Start(ctx)
}
