package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"table-order-api/config"
	"table-order-api/handlers"
	"table-order-api/logging"
	"table-order-api/middleware"
	"table-order-api/ordering"
	"table-order-api/repository"
	"table-order-api/routes"
	"table-order-api/seed"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {
	seedFlag := flag.Bool("seed", false, "load the demo catalog, tables and staff accounts, then serve")
	flag.Parse()

	cfg := config.Load()
	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	gin.SetMode(cfg.GinMode)

	db, err := config.OpenDB(cfg.DB, logger)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("failed to get database handle", zap.Error(err))
	}
	defer sqlDB.Close()

	if *seedFlag || cfg.SeedOnStart {
		err := seed.Run(context.Background(), db, seed.Options{
			FrontendURL:   cfg.FrontendURL,
			AdminPassword: cfg.SeedAdminPassword,
			StaffPassword: cfg.SeedStaffPassword,
		})
		if err != nil {
			logger.Fatal("failed to seed database", zap.Error(err))
		}
		logger.Info("seed data loaded")
	}

	orders := repository.NewOrderRepository(db)
	sessions := repository.NewSessionRepository(db)
	products := repository.NewProductRepository(db)

	service := ordering.NewService(ordering.Deps{
		Sessions: sessions,
		Catalog:  products,
		Taxes:    repository.NewTaxRateRepository(db),
		Orders:   orders,
		Logger:   logger.Named("ordering"),
	})

	h := handlers.New(handlers.Deps{
		Orders:      service,
		OrderStore:  orders,
		Products:    products,
		Tables:      repository.NewTableRepository(db),
		Sessions:    sessions,
		Users:       repository.NewUserRepository(db),
		DB:          sqlDB,
		JWTSecret:   cfg.JWTSecret,
		SessionTTL:  cfg.SessionTTL,
		FrontendURL: cfg.FrontendURL,
		Logger:      logger.Named("http"),
	})

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger.Named("access")))
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Table Order API",
			"docs":    "/api/state-machine",
			"health":  "/health",
			"roles":   []string{"admin", "staff"},
		})
	})
	routes.SetupRoutes(r, h, middleware.NewRateLimiter(cfg.QRRatePerMinute))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           corsHandler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}
