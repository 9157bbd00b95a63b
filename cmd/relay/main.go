package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nfdbot/telegram-relay/internal/biz/repo"
	"github.com/nfdbot/telegram-relay/internal/biz/usecase"
	"github.com/nfdbot/telegram-relay/internal/conf"
	"github.com/nfdbot/telegram-relay/internal/data"
	"github.com/nfdbot/telegram-relay/internal/server"
	"github.com/nfdbot/telegram-relay/internal/service"
	"github.com/nfdbot/telegram-relay/internal/tg"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := conf.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	kv, err := data.NewKV(cfg.Store.DBPath)
	if err != nil {
		log.Fatalf("Failed to open KV store: %v", err)
	}
	fmt.Printf("[Main] KV store: %s\n", cfg.Store.DBPath)

	client := tg.NewClient(cfg.Bot.Token)
	gateway := data.NewTelegramGateway(client)
	docs := data.NewRemoteDocs()

	blockUC := usecase.NewBlockUsecase(kv)
	gateUC := usecase.NewRateGateUsecase(kv)
	relayUC := usecase.NewRelayUsecase(kv)
	fraudUC := usecase.NewFraudUsecase(docs, cfg.Docs.FraudListURL)
	profileUC := usecase.NewProfileUsecase(kv)
	notifyUC := usecase.NewNotifyUsecase(usecase.NotifyConfig{
		Enabled:     cfg.Notify.Enabled,
		Interval:    cfg.Notify.Interval,
		AdminChatID: cfg.Bot.AdminChatID,
		TemplateURL: cfg.Docs.NotificationURL,
	}, gateway, docs, fraudUC, gateUC, profileUC)

	router := service.NewRouter(service.RouterConfig{
		AdminChatID:     cfg.Bot.AdminChatID,
		StartMessageURL: cfg.Docs.StartMessageURL,
		StartButton:     repo.InlineButton{Text: cfg.Docs.StartButtonText, URL: cfg.Docs.StartButtonURL},
		TipInterval:     cfg.Notify.TipInterval,
	}, gateway, docs, blockUC, gateUC, relayUC, notifyUC)

	var janitor *service.Janitor
	if cfg.Store.MappingTTLDays > 0 {
		janitor = service.NewJanitor(relayUC, time.Duration(cfg.Store.MappingTTLDays)*24*time.Hour)
		janitor.Start()
	}

	srv := server.NewServer(cfg.Server, router, client)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			fmt.Printf("[Main] Shutdown: %v\n", err)
		}
		if janitor != nil {
			janitor.Stop()
		}
		kv.Close()
		os.Exit(0)
	}()

	fmt.Println("Starting Telegram relay bridge...")
	if err := srv.Start(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
