package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/app"
)

const appName = "payments_ms"

func main() {
	cfg, err := app.NewEnvConfig(appName)
	if err != nil {
		panic(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	application := app.New(appName, cfg)

	if err := application.Run(ctx); err != nil {
		panic(err)
	}
}
