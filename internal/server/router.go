package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/lotsight/lotsight-backend/internal/handlers"
)

type RouterConfig struct {
	AllowedOrigins    []string
	ImportHandler     *handlers.ImportHandler
	LotHandler        *handlers.LotHandler
	ValidationHandler *handlers.ValidationHandler
	ReportHandler     *handlers.ReportHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("lotsight-backend"))

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Imports
		api.POST("/imports/:source", cfg.ImportHandler.ImportFile)
		api.GET("/imports", cfg.ImportHandler.ListBatches)
		// Lots
		api.GET("/lots/:id/consolidated", cfg.LotHandler.GetConsolidated)
		api.GET("/lots/:id/shipment-status", cfg.LotHandler.GetShipmentStatus)
		api.GET("/lots/:id/audit", cfg.LotHandler.GetAuditTrail)
		// Validation
		api.POST("/validation/run", cfg.ValidationHandler.Run)
		api.GET("/discrepancies", cfg.ValidationHandler.ListDiscrepancies)
		api.PATCH("/discrepancies/:id", cfg.ValidationHandler.Resolve)
		// Reports
		api.GET("/reports/line-issues", cfg.ReportHandler.LineIssues)
		api.GET("/reports/defect-trends", cfg.ReportHandler.DefectTrends)
		api.GET("/reports/defect-summary", cfg.ReportHandler.DefectSummary)
		api.GET("/reports/shipment-summary", cfg.ReportHandler.ShipmentSummary)
	}

	return router
}
