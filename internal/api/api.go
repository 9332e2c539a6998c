package api

import (
	"strings"
	"time"

	"github.com/confinapp/backend-go/internal/api/handlers"
	"github.com/confinapp/backend-go/internal/api/middleware"
	"github.com/confinapp/backend-go/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	LotService       *service.LotService
	PenService       *service.PenService
	MortalityService *service.MortalityService
	FinanceService   *service.FinanceService
	DREService       *service.DREService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.LotService != nil {
			lotHandler := handlers.NewLotHandler(services.LotService)
			lotGroup := apiGroup.Group("/lots")
			{
				lotGroup.POST("", lotHandler.Create)
				lotGroup.GET("", lotHandler.List)
				lotGroup.GET("/:id", lotHandler.Get)
				lotGroup.POST("/:id/reception", lotHandler.RegisterReception)
				lotGroup.POST("/:id/confinement", lotHandler.MarkAsConfined)
				lotGroup.PATCH("/:id/status", lotHandler.UpdateStatus)
				lotGroup.DELETE("/:id", lotHandler.Delete)
				lotGroup.GET("/:id/allocations", lotHandler.Allocations)
				lotGroup.GET("/:id/weighings", lotHandler.Weighings)
			}
		}

		if services.PenService != nil {
			penHandler := handlers.NewPenHandler(services.PenService)
			penGroup := apiGroup.Group("/pens")
			{
				penGroup.POST("", penHandler.Create)
				penGroup.GET("", penHandler.List)
				penGroup.GET("/:id/occupancy", penHandler.Occupancy)
			}
		}

		if services.MortalityService != nil {
			mortalityHandler := handlers.NewMortalityHandler(services.MortalityService)
			mortalityGroup := apiGroup.Group("/mortality")
			{
				mortalityGroup.POST("", mortalityHandler.Record)
				mortalityGroup.GET("", mortalityHandler.List)
				mortalityGroup.DELETE("/:id", mortalityHandler.Delete)
				mortalityGroup.GET("/statistics", mortalityHandler.Statistics)
			}
		}

		if services.FinanceService != nil {
			financeHandler := handlers.NewFinanceHandler(services.FinanceService)
			financeGroup := apiGroup.Group("/finance")
			{
				financeGroup.POST("/entries", financeHandler.Create)
				financeGroup.GET("/entries", financeHandler.List)
				financeGroup.POST("/entries/:id/settle", financeHandler.Settle)
				financeGroup.POST("/entries/:id/cancel", financeHandler.Cancel)
				financeGroup.GET("/cashflow", financeHandler.CashFlow)
			}
		}

		if services.DREService != nil {
			dreHandler := handlers.NewDREHandler(services.DREService)
			dreGroup := apiGroup.Group("/dre")
			{
				dreGroup.POST("/generate", dreHandler.Generate)
				dreGroup.GET("/statement", dreHandler.Get)
				dreGroup.GET("/statements", dreHandler.List)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
