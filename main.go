package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"

	"csesociety_backend/internals/configs"
	database "csesociety_backend/internals/databases"
	"csesociety_backend/internals/features/finance/payments/gateway"
	paymentService "csesociety_backend/internals/features/finance/payments/service"
	middlewares "csesociety_backend/internals/middlewares"
	routes "csesociety_backend/internals/route"
	"csesociety_backend/internals/seeds"
)

func main() {
	seed := flag.Bool("seed", false, "seed demo clubs and events, then exit")
	flag.Parse()

	configs.LoadEnv()
	cfg := configs.Load()
	if err := cfg.Payment.Validate(); err != nil {
		log.Fatalf("❌ %v", err)
	}

	// 🔌 DB connect + pool + schema
	database.ConnectDB(cfg.Database)
	database.TunePool()
	if err := database.AutoMigrate(database.DB); err != nil {
		log.Fatalf("❌ migrate failed: %v", err)
	}
	database.WarmUpQueries()

	if *seed {
		if err := seeds.Run(context.Background(), database.DB); err != nil {
			log.Fatalf("❌ seed failed: %v", err)
		}
		return
	}

	gw, err := gateway.New(cfg.Payment)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	log.Printf("💳 Payment gateway: %s", gw.Name())

	// ⏱ reaper after DB is ready
	reaper := paymentService.NewReaper(database.DB, cfg.Payment)
	if err := reaper.Start(); err != nil {
		log.Fatalf("❌ %v", err)
	}

	if len(cfg.TrustedProxies) == 0 {
		log.Println("[INFO] TRUSTED_PROXIES empty, X-Forwarded-For ignored")
	}
	app := fiber.New(middlewares.FiberConfig(cfg.TrustedProxies))

	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
	middlewares.SetupMiddlewares(app, cfg.Payment.ClientBaseURL)

	routes.SetupRoutes(app, database.DB, cfg, gw)

	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 45 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	go func() {
		log.Printf("✅ Listening on :%s", cfg.Port)
		if err := app.Listen("0.0.0.0:" + cfg.Port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown: stop HTTP, let a running sweep finish, close the pool
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)
	reaper.Stop()

	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
