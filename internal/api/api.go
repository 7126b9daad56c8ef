// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/food-insight/backend-go/internal/api/handlers"
	"github.com/andresuchdata/food-insight/backend-go/internal/api/middleware"
)

type Services struct {
	Insights handlers.InsightProvider
	Admin    handlers.AdminProvider
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
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

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.Insights != nil {
			insightHandler := handlers.NewInsightHandler(services.Insights)
			insightGroup := apiGroup.Group("/insights")
			{
				insightGroup.GET("", insightHandler.GetAll)
				insightGroup.GET("/sections", insightHandler.ListSections)
				insightGroup.GET("/:section", insightHandler.GetSection)
				insightGroup.POST("/cache/invalidate", insightHandler.InvalidateCache)
			}
		}

		if services.Admin != nil {
			adminHandler := handlers.NewAdminHandler(services.Admin)
			adminGroup := apiGroup.Group("/admin")
			{
				adminGroup.GET("/channel-costs", adminHandler.GetChannelCosts)
				adminGroup.GET("/channel-costs/:channel", adminHandler.GetChannelCost)
				adminGroup.PUT("/channel-costs", adminHandler.PutChannelCosts)
				adminGroup.GET("/labor-records", adminHandler.GetLaborRecords)
				adminGroup.PUT("/labor-records", adminHandler.PutLaborRecords)
				adminGroup.GET("/import-runs", adminHandler.GetImportRuns)
				adminGroup.GET("/import-runs/:id", adminHandler.GetImportRun)
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
