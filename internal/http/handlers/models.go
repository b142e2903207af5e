package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/eduymaz/aller-mind/internal/http/response"
	"github.com/eduymaz/aller-mind/internal/inference/groups"
	"github.com/eduymaz/aller-mind/internal/inference/registry"
)

type ModelHandler struct {
	models    ModelCatalog
	threshold float64
}

func NewModelHandler(models ModelCatalog, threshold float64) *ModelHandler {
	return &ModelHandler{models: models, threshold: threshold}
}

type failureView struct {
	GroupID  int    `json:"group_id"`
	Location string `json:"location,omitempty"`
	Reason   string `json:"reason"`
}

func (h *ModelHandler) ListModels(c *gin.Context) {
	failures := make([]failureView, 0)
	for _, f := range h.models.Failures() {
		failures = append(failures, failureView{GroupID: f.GroupID, Location: f.Location, Reason: f.Reason})
	}
	info := h.models.Info()
	if info == nil {
		info = []registry.ModelInfo{}
	}
	response.RespondOK(c, gin.H{
		"total_models":          h.models.Len(),
		"reliability_threshold": h.threshold,
		"models":                info,
		"failures":              failures,
	})
}

type groupView struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Algorithm   string   `json:"algorithm"`
	Available   bool     `json:"available"`
	Reliable    bool     `json:"reliable"`
	TestR2      *float64 `json:"test_r2,omitempty"`
}

func (h *ModelHandler) ListGroups(c *gin.Context) {
	out := make([]groupView, 0, groups.Count)
	for _, g := range groups.All() {
		v := groupView{ID: g.ID, Name: g.Name, Description: g.Description, Algorithm: g.Algorithm}
		if m, ok := h.models.Get(g.ID); ok {
			r2 := m.Meta.Performance.TestR2
			v.Available = true
			v.Reliable = r2 > h.threshold
			v.TestR2 = &r2
			if m.Meta.Algorithm != "" {
				v.Algorithm = m.Meta.Algorithm
			}
		}
		out = append(out, v)
	}
	response.RespondOK(c, gin.H{"groups": out})
}
