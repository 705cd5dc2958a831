package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clearpathfinancial/clearpath-api/internal/services"
)

type DocumentHandler struct {
	docs *services.DocumentService
}

func NewDocumentHandler(docs *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{docs: docs}
}

// Upload runs the full document pipeline synchronously and returns the
// completed document, analysis text and report reference included.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	var req services.UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	doc, err := h.docs.UploadAndAnalyze(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnsupportedType):
			http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
		case errors.Is(err, services.ErrInvalidUpload):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "document processing failed", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(doc)
}

// GetReport streams the branded report PDF for a document.
func (h *DocumentHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	data, fileName, err := h.docs.Report(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			http.Error(w, "document not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to produce report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.Write(data)
}
