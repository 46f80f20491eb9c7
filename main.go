package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"leadboard/internal/config"
	"leadboard/internal/container"
	"leadboard/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}

	server := ui.NewServer(ui.Deps{
		Dashboard: appContainer.Dashboard,
		Admin:     appContainer.Admin,
		Gate:      appContainer.Gate,
		Throttle:  appContainer.Throttle,
		Config:    appConfig.Server,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx, ":"+appConfig.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
