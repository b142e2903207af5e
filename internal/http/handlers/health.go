package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	models  ModelCatalog
	version string
}

func NewHealthHandler(models ModelCatalog, version string) *HealthHandler {
	return &HealthHandler{models: models, version: version}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Ready reports 200 once at least one group model is loaded.
func (h *HealthHandler) Ready(c *gin.Context) {
	loaded := h.models.Len()
	status := http.StatusOK
	state := "ready"
	if loaded == 0 {
		status = http.StatusServiceUnavailable
		state = "no_models"
	}
	c.JSON(status, gin.H{
		"status":        state,
		"version":       h.version,
		"models_loaded": loaded,
		"available":     h.models.Available(),
	})
}
