// Package main - Entry point for the inventory valuation API server
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"inventory-valuation/api"
	"inventory-valuation/internal/config"
	"inventory-valuation/internal/logging"
)

const version = "0.1.0"

func main() {
	cfgPath := flag.String("config", config.DefaultPath(), "Path to config file")
	addr := flag.String("addr", "", "Server address (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
	defer logging.Sync()

	fmt.Printf("Inventory Valuation API v%s\n", version)
	fmt.Printf("   API: http://localhost%s/v1\n", cfg.Server.Addr)
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := api.NewServer(version, cfg, logging.Logger).ListenAndServe(ctx); err != nil {
		logging.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}
