package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jl681/order-processing/order-service/config"
	"github.com/jl681/order-processing/shared/telemetry"
)

// The outbox worker republishes queued order events after broker outages. It
// runs beside the API so a crashed or scaled-down service instance cannot
// strand its queued events.
func main() {
	cfg, err := config.ReadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Printf("Starting outbox-worker in %s environment\n", cfg.Env)

	ctx := context.Background()
	deps, err := config.BuildWorkerDependencies(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to build dependencies: %v", err)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			log.Printf("Error closing dependencies: %v", err)
		}
	}()

	drainerCtx, stop := context.WithCancel(telemetry.WithTelemetry(ctx, deps.Telemetry))
	go deps.Drainer.Start(drainerCtx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("Shutting down outbox-worker...")
	stop()
	fmt.Println("outbox-worker stopped")
}
