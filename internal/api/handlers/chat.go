package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/matiasleandrokruk/soksol/internal/domain/chat"
)

// maxChatBodyBytes caps the request body. Thirty messages of two thousand
// characters fit well under it.
const maxChatBodyBytes = 256 << 10

// ChatService is satisfied by *chat.Service.
type ChatService interface {
	Handle(ctx context.Context, req chat.Request) (string, *chat.Failure)
}

type ChatHandler struct {
	chatService ChatService
}

func NewChatHandler(chatService ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

type chatRequest struct {
	Messages []chat.Message `json:"messages"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type chatErrorResponse struct {
	ErrorCode chat.Code `json:"errorCode"`
	Message   string    `json:"message"`
}

// Chat answers POST /api/chat. A body that cannot be decoded is treated as an
// empty conversation so the caller gets the same EMPTY failure either way.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	body := http.MaxBytesReader(w, r.Body, maxChatBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		req.Messages = nil
	}

	ctx := r.Context()
	reply, failure := h.chatService.Handle(ctx, chat.Request{
		ClientKey: getClientKey(ctx),
		UserAgent: r.UserAgent(),
		Locale:    getLocale(ctx),
		Messages:  req.Messages,
	})
	if failure != nil {
		writeJSON(w, failure.Status, chatErrorResponse{ErrorCode: failure.Code, Message: failure.Message})
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}
