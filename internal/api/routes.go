package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) setupRoutes() {
	s.router.GET("/", s.healthHandler.ServiceInfo)
	s.router.GET("/health", s.healthHandler.HealthCheck)

	cameras := s.router.Group("/cameras")
	{
		cameras.POST("/:site/:camera/start", s.cameraHandler.StartCamera)
		cameras.POST("/:site/:camera/stop", s.cameraHandler.StopCamera)
		cameras.GET("/:site/:camera/status", s.cameraHandler.GetStatus)
	}

	policy := s.router.Group("/policy")
	{
		policy.POST("/compile", s.policyHandler.Compile)
	}

	s.router.POST("/events", s.eventsHandler.Ingest)

	alerts := s.router.Group("/alerts")
	{
		alerts.GET("", s.alertsHandler.ListAlerts)
		alerts.GET("/:id", s.alertsHandler.GetAlert)
	}

	system := s.router.Group("/system")
	{
		system.GET("/stats", s.systemHandler.GetStats)
	}

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
