// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Model describes one configured model.
type Model struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	OwnedBy string `json:"owned_by"`
	Purpose string `json:"purpose"`
}

// ModelList is the body returned by GET /v1/models.
type ModelList struct {
	Object string  `json:"object"`
	Data   []Model `json:"data"`
}

// models lists the preprocessing and chat models, without duplicates.
func (h *Handler) models() []Model {
	cfg := h.svc.Config
	owner := cfg.LLM.Provider
	out := []Model{{ID: cfg.Preprocess.ModelID, Object: "model", OwnedBy: owner, Purpose: "preprocess"}}
	if cfg.Chat.ModelID != cfg.Preprocess.ModelID {
		out = append(out, Model{ID: cfg.Chat.ModelID, Object: "model", OwnedBy: owner, Purpose: "chat"})
	}
	return out
}

// handleListModels handles GET /v1/models
func (h *Handler) handleListModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ModelList{Object: "list", Data: h.models()})
}

// handleGetModel handles GET /v1/models/{id}
func (h *Handler) handleGetModel(w http.ResponseWriter, r *http.Request) {
	modelID := chi.URLParam(r, "id")
	for _, m := range h.models() {
		if m.ID == modelID {
			writeJSON(w, http.StatusOK, m)
			return
		}
	}
	h.writeError(w, http.StatusNotFound, "model_not_found", "model not found: "+modelID)
}
