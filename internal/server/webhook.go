package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nfdbot/telegram-relay/internal/biz/domain"
	"github.com/nfdbot/telegram-relay/internal/conf"
	"github.com/nfdbot/telegram-relay/internal/service"
	"github.com/nfdbot/telegram-relay/internal/tg"
)

const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

// Server is the public HTTP surface: the webhook endpoint, the
// registration helpers and a health probe. The webhook acknowledges
// every authorized update immediately and routes it in a detached
// goroutine tracked for graceful drain.
type Server struct {
	cfg    conf.ServerConfig
	router *service.Router
	client *tg.Client

	engine *gin.Engine
	http   *http.Server
	wg     sync.WaitGroup
}

// NewServer creates the webhook server.
func NewServer(cfg conf.ServerConfig, router *service.Router, client *tg.Client) *Server {
	s := &Server{
		cfg:    cfg,
		router: router,
		client: client,
	}

	engine := gin.Default()
	engine.POST(cfg.WebhookPath, s.handleWebhook)
	engine.GET("/registerWebhook", s.handleRegister)
	engine.GET("/unRegisterWebhook", s.handleUnregister)
	engine.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	engine.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "No handler for this request")
	})
	s.engine = engine

	return s
}

// Handler exposes the HTTP handler. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start begins serving and blocks until the listener stops.
func (s *Server) Start() error {
	s.http = &http.Server{Addr: s.cfg.ListenAddr, Handler: s.engine}
	fmt.Printf("[Webhook] Listening on %s (path %s)\n", s.cfg.ListenAddr, s.cfg.WebhookPath)
	return s.http.ListenAndServe()
}

// Stop shuts the listener down and waits for in-flight updates.
func (s *Server) Stop(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	err := s.http.Shutdown(ctx)
	s.wg.Wait()
	return err
}

// handleWebhook checks the shared secret, acknowledges immediately and
// continues routing detached from the request lifetime. Failures of
// the detached task surface in logs under the update's trace id.
func (s *Server) handleWebhook(c *gin.Context) {
	if c.GetHeader(secretHeader) != s.cfg.Secret {
		c.String(http.StatusForbidden, "Unauthorized")
		return
	}

	var update domain.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	traceID := uuid.NewString()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.router.Route(context.Background(), &update); err != nil {
			fmt.Printf("[Webhook] update %d (%s) failed: %v\n", update.UpdateID, traceID, err)
		}
	}()

	c.String(http.StatusOK, "Ok")
}

// handleRegister installs this server's public URL as the bot webhook.
func (s *Server) handleRegister(c *gin.Context) {
	scheme := c.GetHeader("X-Forwarded-Proto")
	if scheme == "" {
		scheme = "https"
	}
	webhookURL := scheme + "://" + c.Request.Host + s.cfg.WebhookPath

	if err := s.client.SetWebhook(c.Request.Context(), webhookURL, s.cfg.Secret); err != nil {
		c.String(http.StatusOK, err.Error())
		return
	}
	c.String(http.StatusOK, "Ok")
}

// handleUnregister removes the webhook registration.
func (s *Server) handleUnregister(c *gin.Context) {
	if err := s.client.DeleteWebhook(c.Request.Context()); err != nil {
		c.String(http.StatusOK, err.Error())
		return
	}
	c.String(http.StatusOK, "Ok")
}
