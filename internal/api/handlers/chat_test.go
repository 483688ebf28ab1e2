package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/text/language"

	"github.com/matiasleandrokruk/soksol/internal/api/ctxkeys"
	"github.com/matiasleandrokruk/soksol/internal/domain/chat"
)

type chatServiceStub struct {
	got     chat.Request
	reply   string
	failure *chat.Failure
}

func (s *chatServiceStub) Handle(_ context.Context, req chat.Request) (string, *chat.Failure) {
	s.got = req
	return s.reply, s.failure
}

func TestChatHandler_PassesRequestContext(t *testing.T) {
	t.Parallel()

	svc := &chatServiceStub{reply: "안녕"}
	h := NewChatHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"messages":[{"role":"user","content":"hi"}]}`))
	req.Header.Set("User-Agent", "Mozilla/5.0")
	ctx := ctxkeys.WithValue(req.Context(), ctxkeys.ClientKey, "203.0.113.1")
	ctx = ctxkeys.WithValue(ctx, ctxkeys.Locale, "en")
	rr := httptest.NewRecorder()
	h.Chat(rr, req.WithContext(ctx))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"reply":"안녕"`) {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
	if svc.got.ClientKey != "203.0.113.1" || svc.got.UserAgent != "Mozilla/5.0" {
		t.Fatalf("unexpected request %+v", svc.got)
	}
	if svc.got.Locale != language.English {
		t.Fatalf("expected en locale, got %v", svc.got.Locale)
	}
	if len(svc.got.Messages) != 1 || svc.got.Messages[0].Content != "hi" {
		t.Fatalf("unexpected messages %+v", svc.got.Messages)
	}
}

func TestChatHandler_FailureBody(t *testing.T) {
	t.Parallel()

	svc := &chatServiceStub{failure: &chat.Failure{Status: http.StatusGatewayTimeout, Code: chat.CodeTimeout, Message: "slow"}}
	rr := httptest.NewRecorder()
	NewChatHandler(svc).Chat(rr, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"messages":[]}`)))

	if rr.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", rr.Code)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != `{"errorCode":"TIMEOUT","message":"slow"}` {
		t.Fatalf("unexpected body %s", got)
	}
	if svc.got.Locale != language.Und {
		t.Fatalf("missing locale must stay unset, got %v", svc.got.Locale)
	}
}

func TestChatHandler_OversizedBodyIsEmpty(t *testing.T) {
	t.Parallel()

	svc := &chatServiceStub{}
	big := `{"messages":[{"role":"user","content":"` + strings.Repeat("a", maxChatBodyBytes) + `"}]}`
	NewChatHandler(svc).Chat(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(big)))

	if svc.got.Messages != nil {
		t.Fatalf("expected oversized body to decode as empty, got %d messages", len(svc.got.Messages))
	}
}
