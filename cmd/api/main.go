package main

import (
	"fmt"

	"rag-ingest/config"
	"rag-ingest/internal/api/healthcheck"
	"rag-ingest/internal/api/ingest"
	"rag-ingest/internal/api/retriever"
	"rag-ingest/internal/api/upload"
	"rag-ingest/internal/database"
	"rag-ingest/internal/middleware"
	"rag-ingest/pkg/logger"

	"github.com/gofiber/fiber/v3"
)

func main() {
	app := fiber.New(fiber.Config{
		AppName:   config.Cfg.Server.AppName,
		BodyLimit: config.Cfg.Server.BodyLimit,
	})

	middleware.Register(app, config.Cfg.Server.Concurrency)

	if err := database.Migrate(); err != nil {
		logger.Error(err, "database migration failed")
	}

	healthcheck.RegisterRoutes(app)
	upload.RegisterRoutes(app)
	ingest.RegisterRoutes(app)
	retriever.RegisterRoutes(app)

	addr := fmt.Sprintf(":%d", config.Cfg.Server.Port)
	logger.Info("listening on %s", addr)
	if err := app.Listen(addr); err != nil {
		logger.Fatal(err, "server error")
	}
}
