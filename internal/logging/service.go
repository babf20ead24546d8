package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"surveilens-control-plane/internal/config"
)

func NewServiceLogger(cfg *config.Config, service string) zerolog.Logger {
	return log.With().Str("environment", cfg.Environment).Str("service", service).Logger()
}

func WithCamera(base zerolog.Logger, siteID, cameraID string) zerolog.Logger {
	return base.With().Str("site_id", siteID).Str("camera_id", cameraID).Logger()
}
