package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GarvitAggarwal178/real-time-chat-api/internal/chat"
	"github.com/GarvitAggarwal178/real-time-chat-api/internal/config"
	"github.com/GarvitAggarwal178/real-time-chat-api/internal/hub"
	"github.com/GarvitAggarwal178/real-time-chat-api/internal/logging"
	"github.com/GarvitAggarwal178/real-time-chat-api/internal/presence"
	"github.com/GarvitAggarwal178/real-time-chat-api/internal/protocol"
	"github.com/GarvitAggarwal178/real-time-chat-api/internal/store"
	transporthttp "github.com/GarvitAggarwal178/real-time-chat-api/internal/transport/http"
	"github.com/GarvitAggarwal178/real-time-chat-api/internal/transport/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logging.Init(cfg.Env, cfg.LogLevel)

	log.Info().
		Int("http_port", cfg.HTTPPort).
		Int("ws_port", cfg.WSPort).
		Str("database", cfg.DatabaseURL).
		Msg("starting chat server")

	// Initialize store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize store")
	}
	defer db.Close()

	// Initialize hub and presence registry. Every presence mutation fans the
	// updated online list out to all connections.
	connectionHub := hub.NewHub()
	registry := presence.NewRegistry(func(online []string) {
		event := protocol.PresenceChangedMessage{
			BaseMessage: protocol.BaseMessage{Type: protocol.TypePresenceChanged, Ts: time.Now().UnixMilli()},
			OnlineUsers: online,
		}
		if err := connectionHub.BroadcastJSON(event); err != nil {
			log.Warn().Err(err).Msg("presence broadcast failed")
		}
	})

	// Initialize service and servers
	svc := chat.NewService(db, registry)
	wsServer := ws.NewServer(cfg, connectionHub, svc)
	apiEcho := transporthttp.NewAPIServer(cfg, svc, connectionHub)
	wsEcho := transporthttp.NewWSServer(wsServer.HandleWebSocket)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := apiEcho.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start API server")
		}
	}()
	go func() {
		addr := fmt.Sprintf(":%d", cfg.WSPort)
		if err := wsEcho.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start WebSocket server")
		}
	}()

	log.Info().Int("port", cfg.HTTPPort).Msg("API server started")
	log.Info().Int("port", cfg.WSPort).Msg("WebSocket server started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := apiEcho.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("failed to shutdown API server gracefully")
	}
	if err := wsEcho.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("failed to shutdown WebSocket server gracefully")
	}

	log.Info().Msg("chat server stopped")
}
