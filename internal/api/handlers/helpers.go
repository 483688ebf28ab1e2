// Handler helpers shared by the chat and privacy endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"golang.org/x/text/language"

	"github.com/matiasleandrokruk/soksol/internal/api/ctxkeys"
	"github.com/matiasleandrokruk/soksol/internal/domain/chat"
)

// getClientKey retrieves the rate-limit key injected by the Identity middleware.
func getClientKey(ctx context.Context) string {
	return ctxkeys.String(ctx, ctxkeys.ClientKey)
}

// getLocale retrieves the negotiated locale. Requests that bypassed the
// Identity middleware get the zero Tag, which the chat service treats as its
// configured default.
func getLocale(ctx context.Context) language.Tag {
	name := ctxkeys.String(ctx, ctxkeys.Locale)
	if name == "" {
		return language.Und
	}
	return chat.ParseLocale(name)
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeFailure writes the {errorCode, message} body shared by every /api error.
func writeFailure(w http.ResponseWriter, code chat.Code, message string) {
	writeJSON(w, chat.StatusFor(code), chatErrorResponse{ErrorCode: code, Message: message})
}

// NotFound and MethodNotAllowed replace chi's plain-text defaults.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeFailure(w, chat.CodeNotFound, chat.MessageFor(chat.CodeNotFound, getLocale(r.Context())))
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeFailure(w, chat.CodeMethodNotAllowed, chat.MessageFor(chat.CodeMethodNotAllowed, getLocale(r.Context())))
}
