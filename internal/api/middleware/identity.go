package middleware

import (
	"net"
	"net/http"
	"strings"

	"golang.org/x/text/language"

	"github.com/matiasleandrokruk/soksol/internal/api/ctxkeys"
	"github.com/matiasleandrokruk/soksol/internal/domain/chat"
)

// AnonymousClientKey is shared by every caller without a forwarded address.
const AnonymousClientKey = "anon"

// Identity derives the per-request client key and response locale and puts
// both in the request context. The client key is the first X-Forwarded-For
// hop; it is used for rate limiting only and is not logged or stored.
func Identity(defaultLocale language.Tag) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := chat.NegotiateLocale(r.Header.Get("Accept-Language"), defaultLocale)

			ctx := ctxkeys.WithValue(r.Context(), ctxkeys.ClientKey, ClientKey(r))
			ctx = ctxkeys.WithValue(ctx, ctxkeys.Locale, locale.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientKey returns the first X-Forwarded-For entry, or AnonymousClientKey
// when the header is absent or its first entry is blank.
func ClientKey(r *http.Request) string {
	fwd := r.Header.Get("X-Forwarded-For")
	if fwd == "" {
		return AnonymousClientKey
	}
	first, _, _ := strings.Cut(fwd, ",")
	first = strings.TrimSpace(first)
	if first == "" {
		return AnonymousClientKey
	}
	if host, _, err := net.SplitHostPort(first); err == nil {
		return host
	}
	return first
}
