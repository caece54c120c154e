// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"net/http"

	"github.com/leseb/docprep/pkg/preprocess"
)

// PreprocessResponse is the body returned by POST /v1/preprocess.
type PreprocessResponse struct {
	Key       string `json:"key"`
	Format    string `json:"format"`
	Language  string `json:"language"`
	Markdown  string `json:"markdown"`
	OutputKey string `json:"output_key,omitempty"`
}

// handlePreprocess handles POST /v1/preprocess
func (h *Handler) handlePreprocess(w http.ResponseWriter, r *http.Request) {
	up, status, err := h.readUpload(w, r)
	if err != nil {
		h.logger.Error("Failed to read preprocess request", "error", err)
		h.writeError(w, status, "invalid_request", err.Error())
		return
	}

	pipeline, err := h.svc.Pipeline(r.Context(), nil)
	if err != nil {
		h.logger.Error("Failed to build pipeline", "error", err)
		h.writeError(w, http.StatusServiceUnavailable, "model_unavailable", err.Error())
		return
	}

	var doc *preprocess.Document
	if up.content != nil {
		doc, err = pipeline.ExtractBytes(r.Context(), "", up.ref.Key, up.content)
	} else {
		doc, err = pipeline.ExtractObject(r.Context(), up.ref.Bucket, up.ref.Key)
	}
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	res, err := pipeline.PreprocessDocument(r.Context(), doc)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	h.logger.Info("Document preprocessed", "key", res.Key, "language", res.Language, "output_key", res.OutputKey)
	writeJSON(w, http.StatusOK, PreprocessResponse{
		Key:       res.Key,
		Format:    res.Format.String(),
		Language:  res.Language,
		Markdown:  res.Markdown,
		OutputKey: res.OutputKey,
	})
}
