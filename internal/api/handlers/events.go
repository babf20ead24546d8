package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"surveilens-control-plane/internal/logging"
	"surveilens-control-plane/internal/models"
)

// EventSink accepts detection events for alerting and journaling.
type EventSink interface {
	HandleEvent(ev models.DetectionEvent) (string, error)
}

type EventsHandler struct {
	sink EventSink
}

func NewEventsHandler(sink EventSink) *EventsHandler {
	return &EventsHandler{
		sink: sink,
	}
}

// Ingest accepts a detection event over HTTP
// @Summary Ingest a detection event
// @Description Accept a detection event from a pipeline worker and run the alerting flow
// @Tags events
// @Accept json
// @Produce json
// @Param event body models.DetectionEvent true "Detection event"
// @Success 202 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /events [post]
func (h *EventsHandler) Ingest(c *gin.Context) {
	var ev models.DetectionEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		logging.Error(c).Err(err).Msg("Invalid detection event")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if ev.SiteID == "" || ev.CameraID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "site_id and camera_id are required"})
		return
	}

	id, err := h.sink.HandleEvent(ev)
	if err != nil {
		logging.Error(c).Err(err).Str("site_id", ev.SiteID).Str("camera_id", ev.CameraID).Msg("Event not fully recorded")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "event not fully recorded"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"accepted": true, "id": id})
}
