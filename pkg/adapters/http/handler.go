// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/leseb/docprep/pkg/core/services"
	"github.com/leseb/docprep/pkg/extractor"
	"github.com/leseb/docprep/pkg/filestore"
	"github.com/leseb/docprep/pkg/observability/logging"
	"github.com/leseb/docprep/pkg/preprocess"
)

// Handler implements the HTTP adapter
type Handler struct {
	svc    *services.Services
	logger *logging.Logger
	router chi.Router
}

// New creates a new HTTP handler
func New(svc *services.Services, logger *logging.Logger) *Handler {
	h := &Handler{
		svc:    svc,
		logger: logger,
		router: chi.NewRouter(),
	}

	h.router.Use(middleware.RequestID)
	h.router.Use(h.logRequests)
	h.router.Use(middleware.Recoverer)
	if t := svc.Config.Server.Timeout; t > 0 {
		h.router.Use(middleware.Timeout(t))
	}

	h.router.Get("/health", h.handleHealth)
	h.router.Get("/openapi.json", h.handleOpenAPI)

	// Extraction and preprocessing
	h.router.Post("/v1/extract", h.handleExtract)
	h.router.Post("/v1/preprocess", h.handlePreprocess)

	// Chat wrappers
	h.router.Post("/invoke", h.handleInvoke)
	h.router.Post("/v1/chat/completions", h.handleChatCompletions)

	// Models API
	h.router.Get("/v1/models", h.handleListModels)
	h.router.Get("/v1/models/{id}", h.handleGetModel)

	return h
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Info("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).String(),
			"request_id", middleware.GetReqID(r.Context()),
			"remote_addr", r.RemoteAddr)
	})
}

// handleHealth handles health check requests
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// limitBody caps the request body at the configured upload size.
func (h *Handler) limitBody(w http.ResponseWriter, r *http.Request) {
	if n := h.svc.Config.Server.MaxUploadBytes; n > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, n)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, errType, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"type":    errType,
			"message": message,
		},
	})
}

// writeFailure maps a pipeline error to a status code and writes it.
func (h *Handler) writeFailure(w http.ResponseWriter, err error) {
	status, errType := classify(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", "error", err)
	} else {
		h.logger.Warn("Request rejected", "error", err)
	}
	h.writeError(w, status, errType, err.Error())
}

func classify(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "payload_too_large"
	case errors.Is(err, filestore.ErrObjectNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, filestore.ErrInvalidKey):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, preprocess.ErrNoText):
		return http.StatusUnprocessableEntity, "no_text"
	case errors.Is(err, extractor.ErrDecodeFailure):
		return http.StatusUnprocessableEntity, "decode_failure"
	case errors.Is(err, extractor.ErrDependencyMissing):
		return http.StatusNotImplemented, "dependency_missing"
	case errors.Is(err, extractor.ErrUnknown):
		return http.StatusInternalServerError, "extraction_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
