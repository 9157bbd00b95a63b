package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nfdbot/telegram-relay/internal/biz/repo"
	"github.com/nfdbot/telegram-relay/internal/biz/usecase"
	"github.com/nfdbot/telegram-relay/internal/conf"
	"github.com/nfdbot/telegram-relay/internal/data"
	"github.com/nfdbot/telegram-relay/internal/service"
	"github.com/nfdbot/telegram-relay/internal/tg"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "s3cret"

// signalGateway satisfies repo.Gateway and signals on the first
// forward so tests can wait for the detached routing goroutine.
type signalGateway struct {
	forwarded chan struct{}
}

func newSignalGateway() *signalGateway {
	return &signalGateway{forwarded: make(chan struct{}, 16)}
}

func (g *signalGateway) SendMessage(ctx context.Context, req repo.SendRequest) (*repo.SentMessage, error) {
	return &repo.SentMessage{MessageID: 1, ChatID: req.ChatID}, nil
}

func (g *signalGateway) CopyMessage(ctx context.Context, toChatID, fromChatID, messageID int64) (*repo.SentMessage, error) {
	return &repo.SentMessage{MessageID: 2, ChatID: toChatID}, nil
}

func (g *signalGateway) ForwardMessage(ctx context.Context, toChatID, fromChatID, messageID int64) (*repo.SentMessage, error) {
	g.forwarded <- struct{}{}
	return &repo.SentMessage{MessageID: 3, ChatID: toChatID}, nil
}

func (g *signalGateway) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	return nil
}

type staticDocs struct{}

func (staticDocs) Fetch(ctx context.Context, url string) (string, error) {
	return "", nil
}

func newTestServer(client *tg.Client) (*Server, *signalGateway) {
	kv := data.NewMemoryKV()
	gateway := newSignalGateway()
	source := staticDocs{}

	blockUC := usecase.NewBlockUsecase(kv)
	gateUC := usecase.NewRateGateUsecase(kv)
	relayUC := usecase.NewRelayUsecase(kv)
	fraudUC := usecase.NewFraudUsecase(source, "")
	profileUC := usecase.NewProfileUsecase(kv)
	notifyUC := usecase.NewNotifyUsecase(usecase.NotifyConfig{AdminChatID: 999}, gateway, source, fraudUC, gateUC, profileUC)

	router := service.NewRouter(service.RouterConfig{
		AdminChatID: 999,
		TipInterval: 10 * time.Second,
		TipLifetime: time.Hour,
	}, gateway, source, blockUC, gateUC, relayUC, notifyUC)

	srv := NewServer(conf.ServerConfig{
		ListenAddr:  ":0",
		WebhookPath: "/endpoint",
		Secret:      testSecret,
	}, router, client)

	return srv, gateway
}

func postUpdate(handler http.Handler, secret string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/endpoint", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set("X-Telegram-Bot-Api-Secret-Token", secret)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

const guestUpdateJSON = `{
	"update_id": 1,
	"message": {
		"message_id": 1,
		"from": {"id": 111, "first_name": "Guest"},
		"chat": {"id": 111},
		"text": "hello"
	}
}`

func TestWebhookRejectsMissingSecret(t *testing.T) {
	srv, gateway := newTestServer(tg.NewClient("token"))

	w := postUpdate(srv.Handler(), "", guestUpdateJSON)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
	if body := w.Body.String(); body != "Unauthorized" {
		t.Errorf("body = %q, want %q", body, "Unauthorized")
	}
	select {
	case <-gateway.forwarded:
		t.Error("unauthorized update must not be routed")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWebhookRejectsWrongSecret(t *testing.T) {
	srv, _ := newTestServer(tg.NewClient("token"))

	w := postUpdate(srv.Handler(), "wrong", guestUpdateJSON)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestWebhookAcknowledgesAndRoutes(t *testing.T) {
	srv, gateway := newTestServer(tg.NewClient("token"))

	w := postUpdate(srv.Handler(), testSecret, guestUpdateJSON)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if body := w.Body.String(); body != "Ok" {
		t.Errorf("body = %q, want %q", body, "Ok")
	}

	select {
	case <-gateway.forwarded:
	case <-time.After(time.Second):
		t.Fatal("update was never routed")
	}
}

func TestWebhookRejectsMalformedBody(t *testing.T) {
	srv, _ := newTestServer(tg.NewClient("token"))

	w := postUpdate(srv.Handler(), testSecret, "{not json")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(tg.NewClient("token"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("health = %d %q", w.Code, w.Body.String())
	}
}

func TestUnknownPathReturns404(t *testing.T) {
	srv, _ := newTestServer(tg.NewClient("token"))

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if body := w.Body.String(); body != "No handler for this request" {
		t.Errorf("body = %q", body)
	}
}

func TestRegisterWebhook(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		payload, _ := io.ReadAll(r.Body)
		json.Unmarshal(payload, &gotBody)
		w.Write([]byte(`{"ok": true, "result": true}`))
	}))
	defer api.Close()

	client := tg.NewClient("token")
	client.SetBaseURL(api.URL)
	srv, _ := newTestServer(client)

	req := httptest.NewRequest(http.MethodGet, "/registerWebhook", nil)
	req.Host = "bot.example.com"
	req.Header.Set("X-Forwarded-Proto", "https")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "Ok" {
		t.Fatalf("register = %d %q", w.Code, w.Body.String())
	}
	if gotPath != "/bottoken/setWebhook" {
		t.Errorf("API path = %q, want %q", gotPath, "/bottoken/setWebhook")
	}
	if gotBody["url"] != "https://bot.example.com/endpoint" {
		t.Errorf("webhook url = %q", gotBody["url"])
	}
	if gotBody["secret_token"] != testSecret {
		t.Errorf("secret_token = %q, want %q", gotBody["secret_token"], testSecret)
	}
}

func TestUnregisterWebhook(t *testing.T) {
	var gotBody map[string]string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, _ := io.ReadAll(r.Body)
		json.Unmarshal(payload, &gotBody)
		w.Write([]byte(`{"ok": true, "result": true}`))
	}))
	defer api.Close()

	client := tg.NewClient("token")
	client.SetBaseURL(api.URL)
	srv, _ := newTestServer(client)

	req := httptest.NewRequest(http.MethodGet, "/unRegisterWebhook", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "Ok" {
		t.Fatalf("unregister = %d %q", w.Code, w.Body.String())
	}
	if url, ok := gotBody["url"]; !ok || url != "" {
		t.Errorf("unregister url = %q, want empty", url)
	}
}
