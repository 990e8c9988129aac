package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nikhilbhutani/docchat/internal/chat"
)

type Conversation interface {
	Converse(ctx context.Context, req chat.Request) (*chat.Response, error)
}

type ConversationHandler struct {
	svc Conversation
}

func NewConversationHandler(svc Conversation) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

func (h *ConversationHandler) Converse(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	slog.Info("conversation request", "session_id", req.SessionID, "model", req.Model, "persona", req.Persona)

	resp, err := h.svc.Converse(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resp)
	case errors.Is(err, chat.ErrEmptyQuestion),
		errors.Is(err, chat.ErrUnknownModel),
		errors.Is(err, chat.ErrUnknownPersona):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, chat.ErrConversationFailed):
		writeError(w, http.StatusInternalServerError, "conversation failed")
	default:
		slog.Error("conversation failed upstream", "error", err)
		writeError(w, http.StatusBadGateway, "language model or retrieval failure")
	}
}
