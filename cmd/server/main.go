package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"catalogapi/internal/config"
	"catalogapi/internal/db"
	"catalogapi/internal/es"
	"catalogapi/internal/events"
	"catalogapi/internal/handlers"
	"catalogapi/internal/logging"
	loggingmw "catalogapi/internal/middleware/logging"
	"catalogapi/internal/search"
	httpserver "catalogapi/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	gdb, err := db.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database error: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	jwtSecret := []byte(cfg.JWTSecret)

	var producer *events.Producer
	if cfg.KafkaAddr != "" {
		producer = events.NewProducer([]string{cfg.KafkaAddr})
	}

	var searchHandler *handlers.SearchHandler
	productHandler := &handlers.ProductHandler{DB: gdb, Producer: producer, Index: search.DefaultIndex}
	if cfg.ESURL != "" {
		esClient, err := es.NewClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch error: %v", err)
		}
		productHandler.ES = esClient
		searchHandler = &handlers.SearchHandler{ES: esClient, Index: search.DefaultIndex}
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:             gdb,
		JWTSecret:      jwtSecret,
		AuthHandler:    &handlers.AuthHandler{DB: gdb, JWTSecret: jwtSecret, Producer: producer},
		ProductHandler: productHandler,
		SearchHandler:  searchHandler,
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := gdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
