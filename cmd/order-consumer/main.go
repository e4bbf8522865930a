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

// The order consumer reads order events from the queue. Because delivery is
// at least once, its handlers deduplicate by event ID.
func main() {
	cfg, err := config.ReadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Printf("Starting order-consumer in %s environment\n", cfg.Env)

	ctx := context.Background()
	deps, err := config.BuildConsumerDependencies(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to build dependencies: %v", err)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			log.Printf("Error closing dependencies: %v", err)
		}
	}()

	subscriberCtx := telemetry.WithTelemetry(ctx, deps.Telemetry)
	go func() {
		if err := deps.EventSubscriber.Start(subscriberCtx); err != nil {
			log.Printf("Error in event subscriber: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("Shutting down order-consumer...")
	fmt.Println("order-consumer stopped")
}
