package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/radassist-mcp-server/internal/api"
	"github.com/radassist-mcp-server/internal/app"
)

func main() {
	configFile := flag.String("config", "", "path to config file (default: search ./config.yaml, ./config/, /etc/radassist/)")
	flag.Parse()

	a, err := app.New(app.Options{ConfigFile: *configFile})
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	cfg := a.Config.GetConfig()
	a.Logger.WithField("addr", cfg.Server.Host).WithField("port", cfg.Server.Port).Info("Starting radassist HTTP server")

	server := api.NewServer(a.Config, a.Service, a.Logger)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		a.Logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		a.Logger.WithError(err).Fatal("Server failed")
	}

	a.Logger.Info("Server stopped")
}
