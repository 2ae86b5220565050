package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/kyomu-reader/kyomu/internal/config"
	"github.com/kyomu-reader/kyomu/internal/events"
	"github.com/kyomu-reader/kyomu/internal/invalidation"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cdn, err := invalidation.NewCloudFrontInvalidator(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to set up CDN invalidator: %v", err)
	}
	worker := invalidation.NewWorker(invalidation.NewRevalidator(cfg), cdn)

	logger := watermill.NewStdLogger(false, false)
	subscriber, err := events.NewNATSSubscriber(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect event subscriber: %v", err)
	}
	defer subscriber.Close()

	messages, err := subscriber.Subscribe(ctx, cfg.Events.Topic)
	if err != nil {
		log.Fatalf("Failed to subscribe to %s: %v", cfg.Events.Topic, err)
	}

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		log.Println("Shutting down...")
		cancel()
	}()

	log.Printf("Invalidation worker consuming %s", cfg.Events.Topic)
	worker.Consume(ctx, messages)
}
