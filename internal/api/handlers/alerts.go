package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"surveilens-control-plane/internal/store"
)

const defaultAlertLimit = 50

type AlertsHandler struct {
	store *store.Store
}

func NewAlertsHandler(st *store.Store) *AlertsHandler {
	return &AlertsHandler{
		store: st,
	}
}

// ListAlerts returns recent alerts
// @Summary List recent alerts
// @Description Return the most recent alerts, newest last
// @Tags alerts
// @Produce json
// @Param limit query int false "Maximum number of alerts to return" default(50)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /alerts [get]
func (h *AlertsHandler) ListAlerts(c *gin.Context) {
	limit := defaultAlertLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	alerts := h.store.Recent(limit)
	c.JSON(http.StatusOK, gin.H{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// GetAlert returns a single alert by ID
// @Summary Get an alert
// @Description Return the alert with the given ID
// @Tags alerts
// @Produce json
// @Param id path string true "Alert ID"
// @Success 200 {object} models.AlertRecord
// @Failure 404 {object} ErrorResponse
// @Router /alerts/{id} [get]
func (h *AlertsHandler) GetAlert(c *gin.Context) {
	id := c.Param("id")

	alert, ok := h.store.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		return
	}

	c.JSON(http.StatusOK, alert)
}
