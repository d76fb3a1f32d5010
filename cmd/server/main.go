package main

import (
	"context"
	"net/http"
	"os"

	webAdapter "agrosupply/internal/adapters/web"
	"agrosupply/internal/config"
	"agrosupply/internal/core"
	"agrosupply/internal/db"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	catalog := core.NewCatalogService(pool)
	clients := core.NewClientService(pool)
	stock := core.NewStockService(pool)
	invoices := core.NewInvoiceService(pool)
	users := core.NewUserService(pool)

	handler := webAdapter.NewHandler(catalog, clients, stock, invoices, users, log, webAdapter.Options{
		JWTSecret:      cfg.JWTSecret,
		JWTTTL:         cfg.JWTTTL,
		AllowedOrigins: cfg.AllowedOrigins,
		MaxBodyBytes:   cfg.MaxBodyBytes,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      handler,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	log.WithField("addr", cfg.AppAddr).Info("server starting")
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("server: %v", err)
	}
}
