package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/radassist-mcp-server/internal/app"
	"github.com/radassist-mcp-server/internal/clipboard"
	"github.com/radassist-mcp-server/internal/mcp"
)

func main() {
	configFile := flag.String("config", "", "path to config file")
	flag.Parse()

	// stdout carries the protocol stream
	a, err := app.New(app.Options{ConfigFile: *configFile, LogOutput: "stderr"})
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	cfg := a.Config.GetConfig()
	var opts []mcp.Option
	if cfg.Report.CopyToClipboard && clipboard.Supported() {
		opts = append(opts, mcp.WithReportCopier(clipboard.NewCopier(a.Logger)))
	}
	server := mcp.NewServer(cfg.MCP, a.Service, a.Logger, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		a.Logger.Info("Shutdown signal received, stopping MCP server...")
		cancel()
	}()

	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.WithError(err).Fatal("MCP server failed")
	}

	a.Logger.Info("MCP server stopped")
}
