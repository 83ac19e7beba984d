package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/tnqbao/gau-drive-service/config"
	"github.com/tnqbao/gau-drive-service/http/controller"
	routes "github.com/tnqbao/gau-drive-service/http/route"
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

	ctx := context.Background()
	if err := infra.Minio.Ping(ctx); err != nil {
		log.Fatalf("MinIO health check failed: %v", err)
	}
	if err := infra.Minio.EnsureBucket(ctx); err != nil {
		log.Fatalf("Failed to ensure bucket: %v", err)
	}

	defer infra.Telemetry.Shutdown(ctx)
	defer func() {
		if err := infra.Logger.Shutdown(ctx); err != nil {
			log.Printf("Logger shutdown failed: %v", err)
		}
	}()
	defer infra.RabbitMQ.Close()

	ctrl := controller.NewController(cfg, infra, repo)

	router := routes.SetupRouter(ctrl)

	log.Println("HTTP Server started on :8080")
	if err := router.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
