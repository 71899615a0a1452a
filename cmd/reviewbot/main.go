package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	corecmd "github.com/m3rciful/reviewbot/core/cmd"
	"github.com/m3rciful/reviewbot/internal/app"
	"github.com/m3rciful/reviewbot/internal/config"
)

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return config.Load(path)
		},
		Bootstrap: func(ctx context.Context, cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			return app.Bootstrap(ctx, cfg.(*config.Config))
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
