// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"unicode/utf8"

	"github.com/leseb/docprep/pkg/extractor"
)

// multipartMemory is the part of a multipart upload kept in memory before
// spilling to disk.
const multipartMemory = 32 << 20

// ObjectRef names a stored document.
type ObjectRef struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Hint   string `json:"hint,omitempty"`
}

// ExtractResponse is the body returned by POST /v1/extract.
type ExtractResponse struct {
	Format string `json:"format"`
	Text   string `json:"text"`
	Chars  int    `json:"chars"`
}

// upload is a document read from the request, either inline or by
// reference.
type upload struct {
	ref     ObjectRef
	content []byte // nil for a stored-object reference
}

// readUpload accepts a multipart "file" field or a JSON object reference.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (*upload, int, error) {
	h.limitBody(w, r)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return nil, statusForBody(err), errors.New("failed to parse multipart form")
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, http.StatusBadRequest, errors.New("file is required")
		}
		defer file.Close()

		content, err := io.ReadAll(file)
		if err != nil {
			return nil, http.StatusInternalServerError, errors.New("failed to read file content")
		}
		hint := r.FormValue("hint")
		if hint == "" {
			hint = header.Filename
		}
		return &upload{ref: ObjectRef{Key: header.Filename, Hint: hint}, content: content}, 0, nil
	}

	var ref ObjectRef
	if err := json.NewDecoder(r.Body).Decode(&ref); err != nil {
		return nil, statusForBody(err), errors.New("failed to parse request body")
	}
	if ref.Key == "" {
		return nil, http.StatusBadRequest, errors.New("key is required")
	}
	if ref.Hint == "" {
		ref.Hint = ref.Key
	}
	return &upload{ref: ref}, 0, nil
}

func statusForBody(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// handleExtract handles POST /v1/extract
func (h *Handler) handleExtract(w http.ResponseWriter, r *http.Request) {
	up, status, err := h.readUpload(w, r)
	if err != nil {
		h.logger.Error("Failed to read extract request", "error", err)
		h.writeError(w, status, "invalid_request", err.Error())
		return
	}

	content := up.content
	if content == nil {
		content, err = h.svc.Store.GetObject(r.Context(), up.ref.Bucket, up.ref.Key)
		if err != nil {
			h.writeFailure(w, err)
			return
		}
	}

	kind := extractor.KindFromHint(up.ref.Hint)
	h.logger.Info("Extracting document", "key", up.ref.Key, "format", kind.String(), "bytes", len(content))

	text, err := h.svc.Extractor.Extract(r.Context(), extractor.RawDocument{Content: content, Hint: up.ref.Hint})
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ExtractResponse{
		Format: kind.String(),
		Text:   text,
		Chars:  utf8.RuneCountInString(text),
	})
}
