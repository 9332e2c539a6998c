package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/confinapp/backend-go/internal/api"
	"github.com/confinapp/backend-go/internal/cache"
	"github.com/confinapp/backend-go/internal/config"
	"github.com/confinapp/backend-go/internal/repository/postgres"
	"github.com/confinapp/backend-go/internal/service"
	"github.com/confinapp/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	uow := postgres.NewUnitOfWork(db)

	statementCache, err := cache.NewStatementCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("DRE statement cache unavailable, continuing without it")
		statementCache = cache.NewNoopStatementCache()
	}
	statisticsCache, err := cache.NewStatisticsCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Mortality statistics cache unavailable, continuing without it")
		statisticsCache = cache.NewNoopStatisticsCache()
	}

	services := &api.Services{
		LotService:       service.NewLotService(uow),
		PenService:       service.NewPenService(uow),
		MortalityService: service.NewMortalityService(uow, statisticsCache),
		FinanceService:   service.NewFinanceService(uow, statementCache),
		DREService:       service.NewDREService(uow, statementCache),
	}

	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
