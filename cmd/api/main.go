package main

import (
	"context"
	"log"

	"taskmanager/internal/app"
	"taskmanager/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("конфигурация: %v", err)
	}

	ctx := context.Background()

	application := app.New(cfg)
	if err := application.Init(ctx); err != nil {
		log.Fatalf("инициализация: %v", err)
	}

	if err := application.Run(ctx); err != nil {
		log.Fatalf("сервер: %v", err)
	}
}
