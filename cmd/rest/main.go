package main

import (
	"context"
	"log"

	"onboarding-ai-be/internal/bootstrap"
	"onboarding-ai-be/internal/config"
	"onboarding-ai-be/internal/server"
	"onboarding-ai-be/internal/tracer"
	"onboarding-ai-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database (optional; the ask flow works without it)
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Printf("[WARN] Unable to connect to GORM DB, continuing without persistence: %v", err)
		} else {
			gormDB = db
		}
	} else {
		log.Println("[WARN] DB_CONNECTION_STRING not set, continuing without persistence")
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
