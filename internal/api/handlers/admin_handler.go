package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clearpathfinancial/clearpath-api/internal/models"
	"github.com/clearpathfinancial/clearpath-api/internal/services"
)

// AdminHandler backs the staff dashboard: unfiltered lists, staff replies,
// and destructive operations.
type AdminHandler struct {
	chat *services.ChatService
	docs *services.DocumentService
}

func NewAdminHandler(chat *services.ChatService, docs *services.DocumentService) *AdminHandler {
	return &AdminHandler{chat: chat, docs: docs}
}

func (h *AdminHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.chat.ListAll(r.Context())
	if err != nil {
		http.Error(w, "failed to list messages", http.StatusInternalServerError)
		return
	}
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(msgs)
}

func (h *AdminHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docs.ListAll(r.Context())
	if err != nil {
		http.Error(w, "failed to list documents", http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []models.Document{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(docs)
}

type supportMessageRequest struct {
	SenderName string `json:"sender_name"`
	Body       string `json:"body"`
}

// PostMessage stores a staff reply under the reserved support identity.
func (h *AdminHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req supportMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	msg, err := h.chat.SubmitSupportMessage(r.Context(), req.SenderName, req.Body)
	if err != nil {
		if errors.Is(err, services.ErrInvalidMessage) {
			http.Error(w, "body is required", http.StatusBadRequest)
			return
		}
		http.Error(w, "failed to store message", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(msg)
}

func (h *AdminHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.docs.Delete(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			http.Error(w, "document not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to delete document", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearConversation removes every message and document for a visitor email.
func (h *AdminHandler) ClearConversation(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if email == "" {
		http.Error(w, "email is required", http.StatusBadRequest)
		return
	}

	if err := h.docs.ClearVisitor(r.Context(), email); err != nil {
		http.Error(w, "failed to clear conversation", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
