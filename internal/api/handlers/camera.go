package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"surveilens-control-plane/internal/logging"
	"surveilens-control-plane/internal/models"
	"surveilens-control-plane/internal/services/relay"
)

// PipelineClient relays camera commands to the pipeline worker.
type PipelineClient interface {
	StartCamera(ctx context.Context, site, camera, sourceURI string) (relay.Ack, error)
	StopCamera(ctx context.Context, site, camera string) (relay.Ack, error)
	SetParams(ctx context.Context, site, camera string, params map[string]interface{}) (relay.Ack, error)
}

// LogReader reads the most recent journal entry for a camera.
type LogReader interface {
	Latest(site, camera string) (models.LogEntry, bool, error)
}

type CameraHandler struct {
	pipeline    PipelineClient
	journal     LogReader
	defaultRTSP string
}

func NewCameraHandler(pipeline PipelineClient, journal LogReader, defaultRTSP string) *CameraHandler {
	return &CameraHandler{
		pipeline:    pipeline,
		journal:     journal,
		defaultRTSP: defaultRTSP,
	}
}

// StartCamera starts monitoring a camera feed
// @Summary Start a camera feed
// @Description Relay a start command for the given camera to the pipeline worker
// @Tags cameras
// @Produce json
// @Param site path string true "Site ID"
// @Param camera path string true "Camera ID"
// @Param rtsp query string false "RTSP source URI, falls back to DEFAULT_RTSP"
// @Success 200 {object} relay.Ack
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /cameras/{site}/{camera}/start [post]
func (h *CameraHandler) StartCamera(c *gin.Context) {
	site := c.Param("site")
	camera := c.Param("camera")

	source := c.Query("rtsp")
	if source == "" {
		source = h.defaultRTSP
	}
	if source == "" {
		logging.Warn(c).Str("site_id", site).Str("camera_id", camera).Msg("Start request without a source URI")
		c.JSON(http.StatusBadRequest, gin.H{"error": "no rtsp source provided"})
		return
	}

	ack, err := h.pipeline.StartCamera(c.Request.Context(), site, camera, source)
	if err != nil {
		logging.Error(c).Err(err).Str("site_id", site).Str("camera_id", camera).Msg("Failed to relay start command")
		c.JSON(http.StatusBadGateway, gin.H{"error": "pipeline worker unavailable"})
		return
	}

	logging.Info(c).Str("site_id", site).Str("camera_id", camera).Bool("ok", ack.OK).Msg("Camera start relayed")
	c.JSON(http.StatusOK, ack)
}

// StopCamera stops monitoring a camera feed
// @Summary Stop a camera feed
// @Description Relay a stop command for the given camera to the pipeline worker
// @Tags cameras
// @Produce json
// @Param site path string true "Site ID"
// @Param camera path string true "Camera ID"
// @Success 200 {object} SuccessResponse
// @Failure 502 {object} ErrorResponse
// @Router /cameras/{site}/{camera}/stop [post]
func (h *CameraHandler) StopCamera(c *gin.Context) {
	site := c.Param("site")
	camera := c.Param("camera")

	if _, err := h.pipeline.StopCamera(c.Request.Context(), site, camera); err != nil {
		logging.Error(c).Err(err).Str("site_id", site).Str("camera_id", camera).Msg("Failed to relay stop command")
		c.JSON(http.StatusBadGateway, gin.H{"error": "pipeline worker unavailable"})
		return
	}

	logging.Info(c).Str("site_id", site).Str("camera_id", camera).Msg("Camera stop relayed")
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GetStatus returns the latest journal entry for a camera
// @Summary Latest camera status
// @Description Return the most recent journal entry for the camera, or an empty object when none exists
// @Tags cameras
// @Produce json
// @Param site path string true "Site ID"
// @Param camera path string true "Camera ID"
// @Success 200 {object} models.LogEntry
// @Failure 500 {object} ErrorResponse
// @Router /cameras/{site}/{camera}/status [get]
func (h *CameraHandler) GetStatus(c *gin.Context) {
	site := c.Param("site")
	camera := c.Param("camera")

	entry, ok, err := h.journal.Latest(site, camera)
	if err != nil {
		logging.Error(c).Err(err).Str("site_id", site).Str("camera_id", camera).Msg("Failed to read journal")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "journal read failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{})
		return
	}

	c.JSON(http.StatusOK, entry)
}
