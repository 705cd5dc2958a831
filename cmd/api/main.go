package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/clearpathfinancial/clearpath-api/internal/app"
	"github.com/clearpathfinancial/clearpath-api/internal/config"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		<-c
		cancel()
	}()

	cfg := config.LoadConfig()
	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer application.Close()

	if err := application.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
	log.Println("shutting down...")
}
