package handlers

import (
	"net/http"

	"github.com/nikhilbhutani/docchat/internal/llm"
	"github.com/nikhilbhutani/docchat/internal/models"
)

type ModelLister interface {
	ListModels() []llm.ModelInfo
}

type ModelHandler struct {
	gw ModelLister
}

func NewModelHandler(gw ModelLister) *ModelHandler {
	return &ModelHandler{gw: gw}
}

func (h *ModelHandler) ChatModels(w http.ResponseWriter, r *http.Request) {
	infos := h.gw.ListModels()
	names := make([]string, len(infos))
	for i, m := range infos {
		names[i] = m.Model
	}
	writeJSON(w, http.StatusOK, names)
}

func (h *ModelHandler) EmbeddingModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.EmbeddingModels)
}

func (h *ModelHandler) Personas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.Personas)
}
