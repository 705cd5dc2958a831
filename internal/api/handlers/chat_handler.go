package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clearpathfinancial/clearpath-api/internal/models"
	"github.com/clearpathfinancial/clearpath-api/internal/services"
)

type ChatHandler struct {
	chat *services.ChatService
}

func NewChatHandler(chat *services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type chatMessageRequest struct {
	SenderName  string `json:"sender_name"`
	SenderEmail string `json:"sender_email"`
	Body        string `json:"body"`
}

// PostMessage stores a visitor message and acknowledges it immediately.
// The AI reply is generated in the background and shows up in a later poll.
func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req chatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	msg, err := h.chat.SubmitVisitorMessage(r.Context(), req.SenderName, req.SenderEmail, req.Body)
	if err != nil {
		if errors.Is(err, services.ErrInvalidMessage) {
			http.Error(w, "sender_email and body are required", http.StatusBadRequest)
			return
		}
		http.Error(w, "failed to store message", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(msg)
}

// GetMessages returns the conversation for a visitor email, oldest first.
func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		http.Error(w, "email query parameter is required", http.StatusBadRequest)
		return
	}

	msgs, err := h.chat.Conversation(r.Context(), email)
	if err != nil {
		http.Error(w, "failed to load conversation", http.StatusInternalServerError)
		return
	}
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(msgs)
}

type escalateRequest struct {
	Email string `json:"email"`
}

// ConfirmEscalation appends the flagged hand-off confirmation message.
func (h *ChatHandler) ConfirmEscalation(w http.ResponseWriter, r *http.Request) {
	var req escalateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		http.Error(w, "email is required", http.StatusBadRequest)
		return
	}

	msg, err := h.chat.ConfirmEscalation(r.Context(), req.Email)
	if err != nil {
		http.Error(w, "failed to confirm escalation", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(msg)
}
