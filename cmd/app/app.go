package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/DRSN-tech/seller-agent/internal/app"
	config "github.com/DRSN-tech/seller-agent/internal/cfg"
	"github.com/DRSN-tech/seller-agent/pkg/logger"
)

func main() {
	log := logger.NewSlogLogger()

	if err := godotenv.Load(); err != nil {
		log.Warnf("no .env file found, relying on environment")
	}

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		os.Exit(1)
	}
}
