package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/gin-gonic/gin"

	"sommelier"
	"sommelier/config"
	"sommelier/handler"
	"sommelier/metrics"
	"sommelier/service"
)

// The dataset is loaded before the router exists, so no request can see a
// partially loaded dataset.
func main() {
	log := sommelier.Logger
	inLambda := os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
	if inLambda {
		sommelier.UseJSON()
		log = sommelier.Logger
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error("Error loading config", "error", err)
		os.Exit(1)
	}
	sommelier.SetLevel(cfg.LogLevel)

	ctx := context.Background()
	engine, err := service.New(ctx, cfg)
	if err != nil {
		log.Error("Startup failed", "error", err)
		os.Exit(1)
	}

	gin.SetMode(gin.ReleaseMode)
	metrics.Register()

	if inLambda {
		router := handler.NewRouter(engine, false)
		lambda.Start(handler.Lambda(router))
		return
	}

	router := handler.NewRouter(engine, true)
	log.Info("Listening", "addr", cfg.ListenAddr)
	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
