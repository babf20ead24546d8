package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"surveilens-control-plane/internal/logging"
)

type PolicyHandler struct {
	pipeline PipelineClient
}

func NewPolicyHandler(pipeline PipelineClient) *PolicyHandler {
	return &PolicyHandler{
		pipeline: pipeline,
	}
}

// Compile pushes a compiled policy document to a camera
// @Summary Compile and push a policy
// @Description Forward a policy document to the pipeline worker as a set_params command
// @Tags policy
// @Accept json
// @Produce json
// @Param request body map[string]interface{} true "Policy document with site_id and camera_id"
// @Success 200 {object} relay.Ack
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /policy/compile [post]
func (h *PolicyHandler) Compile(c *gin.Context) {
	var doc map[string]interface{}
	if err := c.ShouldBindJSON(&doc); err != nil {
		logging.Error(c).Err(err).Msg("Invalid policy document")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	site, _ := doc["site_id"].(string)
	camera, _ := doc["camera_id"].(string)
	if site == "" || camera == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "site_id and camera_id are required"})
		return
	}
	delete(doc, "site_id")
	delete(doc, "camera_id")

	ack, err := h.pipeline.SetParams(c.Request.Context(), site, camera, doc)
	if err != nil {
		logging.Error(c).Err(err).Str("site_id", site).Str("camera_id", camera).Msg("Failed to push policy")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "policy push failed"})
		return
	}

	logging.Info(c).Str("site_id", site).Str("camera_id", camera).Bool("ok", ack.OK).Msg("Policy pushed")
	c.JSON(http.StatusOK, ack)
}
