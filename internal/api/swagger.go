package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (s *Server) setupSwagger() {
	s.router.GET("/api/info", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"title":       "SurveiLens Control Plane API",
			"version":     s.config.Version,
			"description": "Control plane for camera monitoring pipelines: alert intake, quiet-window journaling, enrichment, notification, and command relay",
			"swagger_ui":  "/docs/index.html",
			"endpoints": gin.H{
				"health":  "/health",
				"info":    "/",
				"cameras": "/cameras",
				"policy":  "/policy",
				"events":  "/events",
				"alerts":  "/alerts",
				"system":  "/system",
				"metrics": "/metrics",
			},
			"environment": s.config.Environment,
			"port":        s.config.Port,
		})
	})

	s.router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	s.router.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/docs/index.html")
	})
}

var SwaggerInfo = struct {
	Version     string
	Host        string
	BasePath    string
	Schemes     []string
	Title       string
	Description string
}{
	Version:     "1.0.0",
	Host:        "localhost:8080",
	BasePath:    "/",
	Schemes:     []string{"http", "https"},
	Title:       "SurveiLens Control Plane API",
	Description: "Camera monitoring control plane that ingests detection events, maintains alert state, writes quiet-window journals, and relays commands to pipeline workers",
}
