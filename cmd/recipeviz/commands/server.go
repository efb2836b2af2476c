package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/recipeviz/am"
	"github.com/teranos/recipeviz/errors"
	"github.com/teranos/recipeviz/logger"
	"github.com/teranos/recipeviz/server"
	"github.com/teranos/recipeviz/sym"
)

// ServerCmd starts the canvas server
var ServerCmd = &cobra.Command{
	Use:     "server",
	Aliases: []string{"serve"},
	Short:   sym.Serve + " Start the canvas server",
	Long: `Host canvas sessions over WebSocket (/ws), one-shot snapshots
(/api/render.svg, /api/minimap.png), Prometheus metrics (/metrics) and a
health check (/health).

The active config file is watched; palette and canvas changes apply
without a restart.`,
	RunE: runServer,
}

var (
	serverPort    int
	serverNoWatch bool
)

func init() {
	ServerCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Port to listen on (overrides server.port)")
	ServerCmd.Flags().BoolVar(&serverNoWatch, "no-watch", false, "Do not reload the config file on change")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Default to Info for the server
	verbosity, _ := cmd.Flags().GetCount("verbose")
	if verbosity == 0 {
		verbosity = logger.VerbosityInfo
		logger.SetVerbosity(verbosity)
	}

	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	logger.SetTheme(cfg.Server.LogTheme)

	port := cfg.GetServerPort()
	if serverPort != 0 {
		port = serverPort
	}

	srv, err := server.New(server.Options{
		Config: cfg,
		Logger: logger.Logger.Named("server"),
	})
	if err != nil {
		return errors.Wrap(err, "failed to create server")
	}

	configPath := am.ActiveConfigPath()
	if configPath != "" && !serverNoWatch {
		if err := srv.WatchConfig(configPath); err != nil {
			logger.Warnw("Config hot reload disabled", logger.FieldError, err)
		}
	}

	printStartupBanner(verbosity, port, cfg, configPath)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(port)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			return errors.Wrap(err, "server failed")
		}
		return nil
	case <-sigChan:
		pterm.Info.Println("Shutting down gracefully (press Ctrl+C again to force)...")

		shutdownDone := make(chan error, 1)
		go func() {
			shutdownDone <- srv.Stop()
		}()

		select {
		case err := <-shutdownDone:
			if err != nil {
				return fmt.Errorf("shutdown error: %w", err)
			}
			pterm.Success.Println("Server stopped cleanly")
			return nil
		case <-sigChan:
			pterm.Warning.Println("Force shutdown - exiting immediately")
			os.Exit(1)
			return nil // unreachable
		}
	}
}
