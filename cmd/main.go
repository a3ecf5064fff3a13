/*
The realtime hub server. It terminates websocket connections for the platform's
clients, fans chat, collaboration, and notification events out between them,
and exposes a small service API for trusted backends to push events in.

All configuration comes from environment variables; see internal/configs.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"venturehub/internal/configs"
	"venturehub/internal/handler"
	"venturehub/internal/hub"
	"venturehub/internal/pkg/logx"
	"venturehub/internal/relay"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		logx.Fatal(err, "Failed to load configuration")
	}

	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Info("Starting realtime hub", "environment", cfg.Environment, "port", cfg.Port, "node_id", cfg.NodeID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hubRelay, redisClient, err := buildRelay(ctx, cfg)
	if err != nil {
		logx.Fatal(err, "Failed to connect to the relay backend", "redis_addr", cfg.RedisAddr)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	h := hub.New(hub.Options{
		HeartbeatInterval: cfg.HeartbeatInterval,
		SendQueueSize:     cfg.SendQueueSize,
		NodeID:            cfg.NodeID,
		Relay:             hubRelay,
	})
	if err := h.Start(ctx); err != nil {
		logx.Fatal(err, "Failed to start hub")
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler.NewRouter(&handler.AppDeps{
			Hub:      h,
			Config:   cfg,
			Verifier: handler.NewJWTVerifier(cfg.JWTSecret),
		}),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logx.Info("HTTP server listening", "addr", server.Addr)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logx.Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Error(err, "HTTP server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "HTTP server shutdown error")
	}
	if err := h.Stop(shutdownCtx); err != nil {
		logx.Error(err, "Hub shutdown error")
	}

	logx.Info("Realtime hub stopped")
	os.Exit(0)
}

// buildRelay wires the cross-process relay. With no REDIS_ADDR configured the
// hub runs standalone on a no-op relay.
func buildRelay(ctx context.Context, cfg *configs.AppConfig) (relay.Relay, *redis.Client, error) {
	if cfg.RedisAddr == "" {
		logx.Info("No REDIS_ADDR configured, running without cross-process relay")
		return relay.Noop{}, nil, nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	logx.Info("Redis relay connected", "redis_addr", cfg.RedisAddr, "channel", cfg.RelayChannel)
	return relay.NewRedis(client, cfg.RelayChannel), client, nil
}
