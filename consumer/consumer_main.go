package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/tnqbao/gau-drive-service/config"
	"github.com/tnqbao/gau-drive-service/consumer/worker"
	infraPkg "github.com/tnqbao/gau-drive-service/infra"
	"github.com/tnqbao/gau-drive-service/repository"
)

func main() {
	err := godotenv.Load("staging.env")
	if err != nil {
		log.Println("No .env file found, continuing with environment variables")
	}

	cfg := config.NewConfig()
	infra := infraPkg.InitInfra(cfg)
	repo := repository.InitRepository(infra)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reconcileConsumer := worker.NewReconcileConsumer(infra.RabbitMQ.Channel, infra, repo)
	if err := reconcileConsumer.Start(ctx); err != nil {
		log.Fatalf("Failed to start reconcile consumer: %v", err)
	}

	log.Println("Consumer started, waiting for messages...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down consumer...")
	cancel()
	infra.RabbitMQ.Close()
}
