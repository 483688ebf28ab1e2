package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/matiasleandrokruk/soksol/internal/api/ctxkeys"
	"github.com/matiasleandrokruk/soksol/internal/domain/chat"
)

// maxPanicLen bounds the logged panic value, which may echo request data.
const maxPanicLen = 200

// Recover turns a panic into a classified INTERNAL failure. The panic value is
// logged truncated through logger; the stack only at debug level. Nothing
// goes to stderr directly. Must run after Identity so the locale is known.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				ctx := r.Context()
				logger.LogAttrs(ctx, slog.LevelError, "panic recovered",
					slog.String("panic", truncate(fmt.Sprint(rec), maxPanicLen)),
					slog.String("request_id", chimw.GetReqID(ctx)),
				)
				if logger.Enabled(ctx, slog.LevelDebug) {
					logger.LogAttrs(ctx, slog.LevelDebug, "panic stack", slog.String("stack", string(debug.Stack())))
				}

				locale := chat.ParseLocale(ctxkeys.String(ctx, ctxkeys.Locale))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"errorCode": string(chat.CodeInternal),
					"message":   chat.MessageFor(chat.CodeInternal, locale),
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func truncate(s string, maxRunes int) string {
	r := []rune(s)
	if len(r) <= maxRunes {
		return s
	}
	return string(r[:maxRunes])
}
