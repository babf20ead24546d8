package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const serviceName = "control-plane"

type HealthHandler struct {
	Version string
}

func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{Version: version}
}

type HealthResponse struct {
	OK      bool   `json:"ok" example:"true"`
	Service string `json:"service" example:"control-plane"`
}

type ServiceInfoResponse struct {
	Service      string   `json:"service" example:"control-plane"`
	Status       string   `json:"status" example:"running"`
	Version      string   `json:"version" example:"1.0.0"`
	Capabilities []string `json:"capabilities"`
}

// @Summary Health check
// @Description Check if the control plane is healthy and responsive
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		OK:      true,
		Service: serviceName,
	})
}

// @Summary Service information
// @Description Get basic control plane information and capabilities
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} ServiceInfoResponse
// @Router / [get]
func (h *HealthHandler) ServiceInfo(c *gin.Context) {
	c.JSON(http.StatusOK, ServiceInfoResponse{
		Service: serviceName,
		Status:  "running",
		Version: h.Version,
		Capabilities: []string{
			"event_ingest",
			"quiet_window_journal",
			"alert_enrichment",
			"command_relay",
		},
	})
}
