package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"surveilens-control-plane/internal/api/handlers"
	"surveilens-control-plane/internal/config"
	"surveilens-control-plane/internal/services"
)

type Server struct {
	config *config.Config
	router *gin.Engine
	server *http.Server

	healthHandler *handlers.HealthHandler
	cameraHandler *handlers.CameraHandler
	policyHandler *handlers.PolicyHandler
	eventsHandler *handlers.EventsHandler
	alertsHandler *handlers.AlertsHandler
	systemHandler *handlers.SystemHandler
}

func NewServer(cfg *config.Config, container *services.ServiceContainer) (*Server, error) {
	if container == nil {
		return nil, errors.New("api: service container is required")
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config:        cfg,
		router:        gin.New(),
		healthHandler: handlers.NewHealthHandler(cfg.Version),
		cameraHandler: handlers.NewCameraHandler(container.RelaySvc, container.JournalSvc, cfg.DefaultRTSP),
		policyHandler: handlers.NewPolicyHandler(container.RelaySvc),
		eventsHandler: handlers.NewEventsHandler(container.AlertingSvc),
		alertsHandler: handlers.NewAlertsHandler(container.Store),
		systemHandler: handlers.NewSystemHandler(cfg.Version, container.Store, container.TranscribeSvc),
	}

	s.setupMiddleware()

	s.setupRoutes()

	s.setupSwagger()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: s.router,
	}

	return s, nil
}

func (s *Server) Start() error {
	log.Info().Int("port", s.config.Port).Msg("Starting control plane API")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}
